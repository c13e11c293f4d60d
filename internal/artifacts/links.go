// Package artifacts persists the pipeline's file-backed side channels:
// the per-run link batch, the raw-job mirror, and extraction failure
// diagnostics.
package artifacts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// LinkFile stores one discovery run's deduplicated link batch as
// newline-delimited JSON, keyed by calendar date, so a later process
// invocation can resume the extract phase without re-discovering.
type LinkFile struct {
	dir   string
	clock pipeline.Clock
}

// NewLinkFile returns a link artifact rooted at dir.
func NewLinkFile(dir string, clock pipeline.Clock) (*LinkFile, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create links dir %s: %w", dir, err)
	}
	return &LinkFile{dir: dir, clock: clock}, nil
}

// Path returns the artifact path for the given day.
func (l *LinkFile) Path(day time.Time) string {
	return filepath.Join(l.dir, day.Format("2006-01-02")+".jsonl")
}

// Write persists the batch for today, replacing any previous batch for
// the same day, and returns the file path.
func (l *LinkFile) Write(links []pipeline.LinkRecord) (string, error) {
	target := l.Path(l.clock.Now())
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("open link artifact %s: %w", target, err)
	}
	defer f.Close() //nolint:errcheck // write errors surface below

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range links {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("encode link record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flush link artifact %s: %w", target, err)
	}
	return target, nil
}

// Read loads the batch for the given day. A missing file returns
// os.ErrNotExist so callers can distinguish "no discovery ran" from a
// corrupt artifact.
func (l *LinkFile) Read(day time.Time) ([]pipeline.LinkRecord, error) {
	target := l.Path(day)
	f, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("open link artifact %s: %w", target, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	var links []pipeline.LinkRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec pipeline.LinkRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode link record in %s: %w", target, err)
		}
		links = append(links, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan link artifact %s: %w", target, err)
	}
	return links, nil
}
