// Package memory provides an in-memory job store for development and
// testing. Semantics mirror the Postgres store: unique canonical URLs,
// an atomic clean-write plus processed flip, oldest-first backlog.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// Store keeps raw and clean rows in maps guarded by one mutex.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	byURL  map[string]*pipeline.RawJob
	clean  map[int64]pipeline.CleanJob
}

var _ pipeline.JobStore = (*Store)(nil)

// New constructs an empty Store.
func New() *Store {
	return &Store{
		byURL: make(map[string]*pipeline.RawJob),
		clean: make(map[int64]pipeline.CleanJob),
	}
}

// InitSchema is a no-op for the in-memory store.
func (s *Store) InitSchema(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}

// SaveRaw inserts a raw job keyed by its canonical URL. Duplicates are
// silent no-ops; the bool reports whether a row was created.
func (s *Store) SaveRaw(_ context.Context, job pipeline.RawJob) (bool, error) {
	if err := validateRaw(job); err != nil {
		return false, err
	}
	url := pipeline.NormalizeURL(job.URL)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byURL[url]; exists {
		return false, nil
	}
	s.nextID++
	job.ID = s.nextID
	job.URL = url
	s.byURL[url] = &job
	return true, nil
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

// KnownURLs returns the subset of urls already stored.
func (s *Store) KnownURLs(_ context.Context, urls []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	known := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if _, ok := s.byURL[url]; ok {
			known[url] = struct{}{}
		}
	}
	return known, nil
}

// FetchUnprocessed returns unprocessed rows oldest first, up to limit.
func (s *Store) FetchUnprocessed(_ context.Context, limit int) ([]pipeline.RawJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var jobs []pipeline.RawJob
	for _, job := range s.byURL {
		if !job.Processed {
			jobs = append(jobs, *job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// SaveClean stores the clean row and marks the raw row processed. The
// two updates happen under one lock, mirroring the transactional
// Postgres behavior.
func (s *Store) SaveClean(_ context.Context, clean pipeline.CleanJob) error {
	if clean.RawJobID == 0 {
		return fmt.Errorf("clean job has no raw_job_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.byURL {
		if job.ID == clean.RawJobID {
			s.clean[clean.RawJobID] = clean
			job.Processed = true
			return nil
		}
	}
	return fmt.Errorf("no raw job with id %d", clean.RawJobID)
}

// CountRaw returns the number of raw rows.
func (s *Store) CountRaw(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byURL), nil
}

// GetClean fetches a clean row by raw job id. Test helper.
func (s *Store) GetClean(rawJobID int64) (pipeline.CleanJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clean, ok := s.clean[rawJobID]
	return clean, ok
}
