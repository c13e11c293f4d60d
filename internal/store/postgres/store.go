// Package postgres provides the Postgres-backed job store.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store persists raw and clean job rows in Postgres.
type Store struct {
	pool dbPool
}

var _ pipeline.JobStore = (*Store)(nil)

// New creates a Postgres-backed store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool dbPool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS raw_jobs (
	id BIGSERIAL PRIMARY KEY,
	url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	raw_payload JSONB NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL,
	source TEXT NOT NULL,
	processed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS clean_jobs (
	raw_job_id BIGINT PRIMARY KEY REFERENCES raw_jobs(id),
	standardized_title TEXT NOT NULL,
	job_level TEXT,
	is_internship BOOLEAN NOT NULL DEFAULT FALSE,
	cities TEXT[] NOT NULL DEFAULT '{}',
	min_years_experience DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_gpa DOUBLE PRECISION,
	english_requirement TEXT,
	salary_min DOUBLE PRECISION,
	salary_max DOUBLE PRECISION,
	currency TEXT,
	is_salary_negotiable BOOLEAN NOT NULL DEFAULT FALSE,
	tech_stack TEXT[] NOT NULL DEFAULT '{}',
	technical_competencies TEXT[] NOT NULL DEFAULT '{}',
	domain_knowledge TEXT[] NOT NULL DEFAULT '{}',
	description TEXT,
	requirement TEXT,
	benefit TEXT
);

CREATE INDEX IF NOT EXISTS idx_raw_jobs_unprocessed ON raw_jobs (id) WHERE NOT processed;
`

// InitSchema creates the raw and clean tables if they do not exist.
// Safe to run on every startup.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveRaw inserts a raw job keyed by its canonical URL. A duplicate URL
// is a silent no-op; the bool reports whether a row was created.
func (s *Store) SaveRaw(ctx context.Context, job pipeline.RawJob) (bool, error) {
	if err := validateRaw(job); err != nil {
		return false, err
	}
	url := pipeline.NormalizeURL(job.URL)

	tag, err := s.pool.Exec(ctx, `
INSERT INTO raw_jobs (url, title, company, location, raw_payload, scraped_at, source)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (url) DO NOTHING`,
		url, job.Title, job.Company, job.Location, job.RawPayload, job.ScrapedAt, job.Source,
	)
	if err != nil {
		return false, fmt.Errorf("insert raw job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func validateRaw(job pipeline.RawJob) error {
	var missing []string
	if strings.TrimSpace(job.URL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(job.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(job.Company) == "" {
		missing = append(missing, "company")
	}
	if len(missing) > 0 {
		return fmt.Errorf("raw job missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// KnownURLs returns the subset of urls that already have a raw row,
// resolved in a single query.
func (s *Store) KnownURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(urls))
	if len(urls) == 0 {
		return known, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT url FROM raw_jobs WHERE url = ANY($1)`, urls)
	if err != nil {
		return nil, fmt.Errorf("query known urls: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan known url: %w", err)
		}
		known[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known urls: %w", err)
	}
	return known, nil
}

// FetchUnprocessed returns raw rows without a clean row, oldest first.
func (s *Store) FetchUnprocessed(ctx context.Context, limit int) ([]pipeline.RawJob, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, url, title, company, location, raw_payload, scraped_at, source, processed
FROM raw_jobs
WHERE NOT processed
ORDER BY id
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed: %w", err)
	}
	defer rows.Close()

	var jobs []pipeline.RawJob
	for rows.Next() {
		var job pipeline.RawJob
		if err := rows.Scan(
			&job.ID, &job.URL, &job.Title, &job.Company, &job.Location,
			&job.RawPayload, &job.ScrapedAt, &job.Source, &job.Processed,
		); err != nil {
			return nil, fmt.Errorf("scan raw job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unprocessed: %w", err)
	}
	return jobs, nil
}

// SaveClean writes the clean row and flips the raw row's processed flag
// in one transaction. On any error neither write persists, so the raw
// row stays eligible for a retry.
func (s *Store) SaveClean(ctx context.Context, clean pipeline.CleanJob) error {
	if clean.RawJobID == 0 {
		return fmt.Errorf("clean job has no raw_job_id")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save clean: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO clean_jobs (
	raw_job_id, standardized_title, job_level, is_internship, cities,
	min_years_experience, min_gpa, english_requirement,
	salary_min, salary_max, currency, is_salary_negotiable,
	tech_stack, technical_competencies, domain_knowledge,
	description, requirement, benefit
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (raw_job_id) DO UPDATE SET
	standardized_title = EXCLUDED.standardized_title,
	job_level = EXCLUDED.job_level,
	is_internship = EXCLUDED.is_internship,
	cities = EXCLUDED.cities,
	min_years_experience = EXCLUDED.min_years_experience,
	min_gpa = EXCLUDED.min_gpa,
	english_requirement = EXCLUDED.english_requirement,
	salary_min = EXCLUDED.salary_min,
	salary_max = EXCLUDED.salary_max,
	currency = EXCLUDED.currency,
	is_salary_negotiable = EXCLUDED.is_salary_negotiable,
	tech_stack = EXCLUDED.tech_stack,
	technical_competencies = EXCLUDED.technical_competencies,
	domain_knowledge = EXCLUDED.domain_knowledge,
	description = EXCLUDED.description,
	requirement = EXCLUDED.requirement,
	benefit = EXCLUDED.benefit`,
		clean.RawJobID, clean.StandardizedTitle, clean.JobLevel, clean.IsInternship, clean.Cities,
		clean.MinYearsExperience, clean.MinGPA, clean.EnglishRequirement,
		clean.SalaryMin, clean.SalaryMax, clean.Currency, clean.IsSalaryNegotiable,
		clean.TechStack, clean.TechnicalCompetencies, clean.DomainKnowledge,
		clean.Description, clean.Requirement, clean.Benefit,
	); err != nil {
		return fmt.Errorf("insert clean job: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE raw_jobs SET processed = TRUE WHERE id = $1`, clean.RawJobID)
	if err != nil {
		return fmt.Errorf("mark raw job processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no raw job with id %d", clean.RawJobID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save clean: %w", err)
	}
	return nil
}

// CountRaw returns the total number of raw rows.
func (s *Store) CountRaw(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM raw_jobs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count raw jobs: %w", err)
	}
	return count, nil
}
