package pipeline

import (
	"context"
	"time"
)

// Renderer loads a page in a real browser and returns the rendered DOM.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (RenderResult, error)
}

// RenderRequest captures everything needed to render one page.
type RenderRequest struct {
	URL          string
	WaitSelector string
	Screenshot   bool
}

// JobStore persists raw and clean job rows.
type JobStore interface {
	InitSchema(ctx context.Context) error
	// SaveRaw inserts a raw job keyed by its unique URL. Duplicate
	// submissions are no-ops; the bool reports whether a row was created.
	SaveRaw(ctx context.Context, job RawJob) (bool, error)
	// KnownURLs returns the subset of urls that already have a raw row,
	// in a single round trip.
	KnownURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
	// FetchUnprocessed returns raw rows without a clean row, oldest
	// first, bounded by limit.
	FetchUnprocessed(ctx context.Context, limit int) ([]RawJob, error)
	// SaveClean atomically writes the clean row and marks the raw row
	// processed. On error neither write persists.
	SaveClean(ctx context.Context, clean CleanJob) error
	CountRaw(ctx context.Context) (int, error)
	Close()
}

// Structurer turns a raw job into a validated clean job via an LLM.
type Structurer interface {
	Structure(ctx context.Context, job RawJob) (CleanJob, error)
}

// Discoverer produces the deduplicated link batch for a run.
type Discoverer interface {
	Discover(ctx context.Context, runID string) ([]LinkRecord, error)
}

// DetailExtractor fetches one job page and produces a raw job payload,
// or nil when the item failed (diagnostics go to the failure sink).
type DetailExtractor interface {
	Extract(ctx context.Context, url string) (*RawJob, error)
}

// FailureSink records extraction failure artifacts. Writes are
// best-effort and must never block the pipeline.
type FailureSink interface {
	SaveFailure(failure ExtractionFailure)
}

// LinkArtifact persists and restores the per-run link batch so the
// extract phase can resume without re-running discovery.
type LinkArtifact interface {
	Write(links []LinkRecord) (string, error)
	Read(day time.Time) ([]LinkRecord, error)
}

// Clock returns the current time (swappable for tests).
type Clock interface {
	Now() time.Time
}
