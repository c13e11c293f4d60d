// Package discover implements the link discovery phase: render the
// search page, extract posting URLs, and deduplicate them against the
// store.
package discover

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
	"github.com/parkhip/ai-job-crawler/internal/scrape"
)

// Config controls discovery behavior.
type Config struct {
	SearchURL string
	Source    string
	// Courtesy delay bounds applied before hitting the search page.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Discoverer produces the deduplicated link batch for one run.
type Discoverer struct {
	renderer pipeline.Renderer
	store    pipeline.JobStore
	artifact pipeline.LinkArtifact
	retry    pipeline.RetryPolicy
	pauser   pipeline.Pauser
	clock    pipeline.Clock
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Discoverer.
func New(
	renderer pipeline.Renderer,
	store pipeline.JobStore,
	artifact pipeline.LinkArtifact,
	retry pipeline.RetryPolicy,
	pauser pipeline.Pauser,
	clock pipeline.Clock,
	cfg Config,
	logger *zap.Logger,
) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Source == "" {
		cfg.Source = "topcv"
	}
	if cfg.DelayMin <= 0 {
		cfg.DelayMin = 2 * time.Second
	}
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin + 2*time.Second
	}
	return &Discoverer{
		renderer: renderer,
		store:    store,
		artifact: artifact,
		retry:    retry,
		pauser:   pauser,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Discover fetches the search page under the retry policy, extracts
// and deduplicates posting links, and persists the surviving batch to
// the per-run artifact. Returns pipeline.ErrBlocked when the page is a
// bot-verification challenge and pipeline.ErrNoNewLinks when every
// candidate is already ingested.
func (d *Discoverer) Discover(ctx context.Context, runID string) ([]pipeline.LinkRecord, error) {
	log := d.logger.With(zap.String("run_id", runID), zap.String("phase", "discover"))
	log.Info("fetching search page", zap.String("url", d.cfg.SearchURL))

	d.pauser.Pause(ctx, pipeline.RandomDelay(d.cfg.DelayMin, d.cfg.DelayMax))

	var result pipeline.RenderResult
	err := d.retry.Do(ctx, func(ctx context.Context) error {
		var renderErr error
		result, renderErr = d.renderer.Render(ctx, pipeline.RenderRequest{
			URL:          d.cfg.SearchURL,
			WaitSelector: scrape.LinkWaitSelector,
		})
		return renderErr
	})
	if err != nil {
		return nil, fmt.Errorf("render search page: %w", err)
	}
	if pipeline.IsBlockPage(result.HTML) {
		log.Warn("search page blocked")
		return nil, pipeline.ErrBlocked
	}

	records, err := scrape.Apply(result.HTML, scrape.LinkSchema())
	if err != nil {
		return nil, fmt.Errorf("extract links: %w", err)
	}
	log.Info("jobs found on search page", zap.Int("count", len(records)))

	now := d.clock.Now()
	candidates := make([]pipeline.LinkRecord, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, pipeline.LinkRecord{
			URL:       rec["url"],
			ScrapedAt: now,
			Source:    d.cfg.Source,
		})
	}

	fresh, err := pipeline.FilterNewLinks(ctx, d.store, candidates)
	if err != nil {
		return nil, fmt.Errorf("filter new links: %w", err)
	}
	log.Info("links filtered",
		zap.Int("total", len(candidates)),
		zap.Int("new", len(fresh)),
	)
	if len(fresh) == 0 {
		return nil, pipeline.ErrNoNewLinks
	}

	path, err := d.artifact.Write(fresh)
	if err != nil {
		return nil, fmt.Errorf("write link artifact: %w", err)
	}
	log.Info("link batch persisted", zap.String("links_file", path), zap.Int("links", len(fresh)))
	return fresh, nil
}
