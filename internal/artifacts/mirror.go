package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// JobMirror appends saved raw jobs to a per-day JSONL file, mirroring
// what lands in the store for offline inspection.
type JobMirror struct {
	dir   string
	clock pipeline.Clock
}

// NewJobMirror returns a mirror rooted at dir.
func NewJobMirror(dir string, clock pipeline.Clock) (*JobMirror, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create jobs dir %s: %w", dir, err)
	}
	return &JobMirror{dir: dir, clock: clock}, nil
}

// Append writes one job as a JSON line, flushed immediately so a
// killed run loses at most the in-flight record.
func (m *JobMirror) Append(job pipeline.RawJob) error {
	target := filepath.Join(m.dir, m.clock.Now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open job mirror %s: %w", target, err)
	}
	defer f.Close() //nolint:errcheck // write errors surface below

	if err := json.NewEncoder(f).Encode(job); err != nil {
		return fmt.Errorf("encode job record: %w", err)
	}
	return nil
}
