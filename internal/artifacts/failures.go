package artifacts

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/hash/md5hex"
	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// FailureDir writes per-URL screenshot and HTML snapshots for failed
// extractions. Writes are best-effort: errors are logged and swallowed
// so diagnostics never block the pipeline.
type FailureDir struct {
	dir    string
	hasher *md5hex.Hasher
	logger *zap.Logger
}

// NewFailureDir returns a failure sink rooted at dir.
func NewFailureDir(dir string, logger *zap.Logger) *FailureDir {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailureDir{dir: dir, hasher: md5hex.New(), logger: logger}
}

// SaveFailure writes error_<md5(url)>.png and error_<md5(url)>.html.
func (d *FailureDir) SaveFailure(failure pipeline.ExtractionFailure) {
	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		d.logger.Warn("create errors dir failed", zap.Error(err))
		return
	}
	safeID := d.hasher.Hash([]byte(failure.URL))

	if len(failure.Screenshot) > 0 {
		imgPath := filepath.Join(d.dir, fmt.Sprintf("error_%s.png", safeID))
		if err := os.WriteFile(imgPath, failure.Screenshot, 0o600); err != nil {
			d.logger.Warn("write error screenshot failed", zap.String("path", imgPath), zap.Error(err))
		} else {
			d.logger.Info("saved error screenshot",
				zap.String("path", imgPath),
				zap.String("reason", string(failure.Reason)),
			)
		}
	}

	if failure.HTML != "" {
		htmlPath := filepath.Join(d.dir, fmt.Sprintf("error_%s.html", safeID))
		if err := os.WriteFile(htmlPath, []byte(failure.HTML), 0o600); err != nil {
			d.logger.Warn("write error html failed", zap.String("path", htmlPath), zap.Error(err))
		}
	}
}
