// Package extract implements the detail-page phase: render one posting
// page, pull its raw fields, and classify anything that goes wrong so
// the failure artifacts tell an operator whether the layout drifted or
// the site is blocking us.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
	"github.com/parkhip/ai-job-crawler/internal/scrape"
)

// Fields a posting is unusable without. A payload missing either one is
// recorded as a missing_fields failure rather than persisted.
var criticalFields = []string{"title", "info"}

// Config controls detail extraction behavior.
type Config struct {
	Source string
	// Courtesy delay bounds applied before each posting page. Detail
	// pages get a much wider window than the search page because they
	// are fetched in bursts.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Extractor fetches a single posting page and turns it into a RawJob.
type Extractor struct {
	renderer pipeline.Renderer
	failures pipeline.FailureSink
	retry    pipeline.RetryPolicy
	pauser   pipeline.Pauser
	clock    pipeline.Clock
	cfg      Config
	logger   *zap.Logger
}

// New constructs an Extractor.
func New(
	renderer pipeline.Renderer,
	failures pipeline.FailureSink,
	retry pipeline.RetryPolicy,
	pauser pipeline.Pauser,
	clock pipeline.Clock,
	cfg Config,
	logger *zap.Logger,
) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Source == "" {
		cfg.Source = "topcv"
	}
	if cfg.DelayMin <= 0 {
		cfg.DelayMin = 10 * time.Second
	}
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin + 5*time.Second
	}
	return &Extractor{
		renderer: renderer,
		failures: failures,
		retry:    retry,
		pauser:   pauser,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Extract renders the posting page under the retry policy and builds a
// RawJob from its fields. A nil job with a nil error means the item
// failed and a diagnostic artifact was written; only transport-level
// problems surface as errors.
func (e *Extractor) Extract(ctx context.Context, url string) (*pipeline.RawJob, error) {
	log := e.logger.With(zap.String("url", url))

	e.pauser.Pause(ctx, pipeline.RandomDelay(e.cfg.DelayMin, e.cfg.DelayMax))

	var result pipeline.RenderResult
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		var renderErr error
		result, renderErr = e.renderer.Render(ctx, pipeline.RenderRequest{
			URL:          url,
			WaitSelector: scrape.DetailWaitSelector,
			Screenshot:   true,
		})
		return renderErr
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	if pipeline.IsBlockPage(result.HTML) {
		log.Warn("posting page blocked")
		e.recordFailure(url, pipeline.FailureBlock, result)
		return nil, nil
	}
	if !result.Success {
		log.Warn("render unsuccessful", zap.String("error", result.ErrorMessage))
		e.recordFailure(url, pipeline.FailureSelectorEmpty, result)
		return nil, nil
	}

	raw, err := scrape.ApplyJSON(result.HTML, scrape.DetailSchema())
	if err != nil {
		return nil, fmt.Errorf("apply detail schema: %w", err)
	}

	payload := pipeline.ReduceExtracted(raw)
	switch payload.Kind {
	case pipeline.PayloadEmpty:
		log.Warn("no fields extracted, layout may have changed")
		e.recordFailure(url, pipeline.FailureSelectorEmpty, result)
		return nil, nil
	case pipeline.PayloadNonMapping:
		log.Warn("extraction result is not a field mapping")
		e.recordFailure(url, pipeline.FailureNonDict, result)
		return nil, nil
	}

	if missing := missingCritical(payload.Fields); len(missing) > 0 {
		log.Warn("payload missing critical fields", zap.Strings("missing", missing))
		e.recordFailure(url, pipeline.FailureMissingFields, result)
		return nil, nil
	}

	return e.buildJob(url, payload.Fields)
}

func (e *Extractor) buildJob(url string, fields map[string]string) (*pipeline.RawJob, error) {
	canonical := pipeline.NormalizeURL(url)
	body := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		body[k] = sanitize(v)
	}
	body["url"] = canonical

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode payload for %s: %w", url, err)
	}
	return &pipeline.RawJob{
		URL:        canonical,
		Title:      body["title"],
		Company:    body["company"],
		Location:   body["location"],
		RawPayload: raw,
		ScrapedAt:  e.clock.Now(),
		Source:     e.cfg.Source,
	}, nil
}

func (e *Extractor) recordFailure(url string, reason pipeline.FailureReason, result pipeline.RenderResult) {
	if e.failures == nil {
		return
	}
	e.failures.SaveFailure(pipeline.ExtractionFailure{
		URL:        url,
		Reason:     reason,
		Screenshot: result.Screenshot,
		HTML:       result.HTML,
	})
}

func missingCritical(fields map[string]string) []string {
	var missing []string
	for _, name := range criticalFields {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// sanitize collapses whitespace runs and strips NUL bytes, which some
// layouts leak into text nodes and Postgres rejects.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.Join(strings.Fields(s), " ")
}
