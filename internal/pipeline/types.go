package pipeline

import (
	"encoding/json"
	"time"
)

// LinkRecord is a deduplicated job-posting URL produced by the discovery
// phase. Records are transient: they live in memory and in the per-run
// JSONL artifact, never in the job store.
type LinkRecord struct {
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`
	Source    string    `json:"source"`
}

// RawJob is an as-scraped posting persisted by the extract phase.
// Processed flips to true exactly once, when a clean row is attached.
type RawJob struct {
	ID         int64           `json:"id"`
	URL        string          `json:"url"`
	Title      string          `json:"title"`
	Company    string          `json:"company"`
	Location   string          `json:"location"`
	RawPayload json.RawMessage `json:"raw_payload"`
	ScrapedAt  time.Time       `json:"scraped_at"`
	Source     string          `json:"source"`
	Processed  bool            `json:"processed"`
}

// CleanJob is the structured result of running LLM extraction over a
// raw job. At most one clean row exists per raw row.
type CleanJob struct {
	RawJobID              int64    `json:"raw_job_id"`
	StandardizedTitle     string   `json:"standardized_title"`
	JobLevel              *string  `json:"job_level"`
	IsInternship          bool     `json:"is_internship"`
	Cities                []string `json:"cities"`
	MinYearsExperience    float64  `json:"min_years_experience"`
	MinGPA                *float64 `json:"min_gpa"`
	EnglishRequirement    *string  `json:"english_requirement"`
	SalaryMin             *float64 `json:"salary_min"`
	SalaryMax             *float64 `json:"salary_max"`
	Currency              *string  `json:"currency"`
	IsSalaryNegotiable    bool     `json:"is_salary_negotiable"`
	TechStack             []string `json:"tech_stack"`
	TechnicalCompetencies []string `json:"technical_competencies"`
	DomainKnowledge       []string `json:"domain_knowledge"`
	Description           *string  `json:"description"`
	Requirement           *string  `json:"requirement"`
	Benefit               *string  `json:"benefit"`
}

// FailureReason classifies why a detail extraction produced no payload.
type FailureReason string

// Extraction failure classifications recorded in diagnostic artifacts.
const (
	FailureBlock         FailureReason = "block"
	FailureSelectorEmpty FailureReason = "selector_empty"
	FailureMissingFields FailureReason = "missing_fields"
	FailureNonDict       FailureReason = "non_dict_payload"
)

// ExtractionFailure is the write-only diagnostic artifact saved when a
// detail page yields no usable payload. Screenshot and HTML are
// best-effort and may be empty.
type ExtractionFailure struct {
	URL        string
	Reason     FailureReason
	Screenshot []byte
	HTML       string
}

// RenderResult is the shape returned by the renderer collaborator. The
// pipeline depends only on this struct, not on how rendering happens.
type RenderResult struct {
	Success      bool
	HTML         string
	Screenshot   []byte
	ErrorMessage string
}

// PayloadKind tags the outcome of reducing a renderer extraction result
// to a single field mapping.
type PayloadKind int

// Payload variants. Consumers switch over these exhaustively instead of
// duck-typing the decoded JSON.
const (
	PayloadFields PayloadKind = iota
	PayloadEmpty
	PayloadNonMapping
)

// DetailPayload is the tagged result of normalizing the extracted
// content of a detail page. Fields is populated only for PayloadFields.
type DetailPayload struct {
	Kind   PayloadKind
	Fields map[string]string
}

// PhaseCounters aggregates per-phase outcomes for end-of-phase logging.
type PhaseCounters struct {
	Saved  int
	Failed int
}
