package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/metrics"
)

// RawMirror appends saved raw jobs to a per-run JSONL file for offline
// inspection. Optional; a nil mirror disables it.
type RawMirror interface {
	Append(job RawJob) error
}

// OrchestratorConfig tunes phase behavior.
type OrchestratorConfig struct {
	// Cooldown applied after each failed extraction to avoid hammering
	// a source that may be blocking us.
	Cooldown time.Duration
	// StructureLimit bounds how many unprocessed rows one run structures.
	StructureLimit int
}

// Orchestrator sequences the discover, extract, and structure phases.
// Work is derived from store state at every phase boundary, so a run
// killed mid-phase resumes cleanly on the next invocation.
type Orchestrator struct {
	store      JobStore
	discoverer Discoverer
	extractor  DetailExtractor
	structurer Structurer
	mirror     RawMirror
	pauser     Pauser
	cfg        OrchestratorConfig
	logger     *zap.Logger
}

// NewOrchestrator wires the pipeline. Any of discoverer, extractor, or
// structurer may be nil when the corresponding phase is not invoked.
func NewOrchestrator(
	store JobStore,
	discoverer Discoverer,
	extractor DetailExtractor,
	structurer Structurer,
	mirror RawMirror,
	pauser Pauser,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.StructureLimit <= 0 {
		cfg.StructureLimit = 50
	}
	return &Orchestrator{
		store:      store,
		discoverer: discoverer,
		extractor:  extractor,
		structurer: structurer,
		mirror:     mirror,
		pauser:     pauser,
		cfg:        cfg,
		logger:     logger,
	}
}

// NewRunID returns a short correlation id for one pipeline invocation.
func NewRunID() string {
	return uuid.NewString()[:8]
}

// Run executes all three phases. A blocked or empty discovery skips
// extraction but still structures any backlog of unprocessed rows.
func (o *Orchestrator) Run(ctx context.Context, runID string) error {
	log := o.logger.With(zap.String("run_id", runID))
	log.Info("pipeline start")

	links, err := o.Discover(ctx, runID)
	switch {
	case errors.Is(err, ErrBlocked):
		log.Warn("discovery blocked, skipping extraction this run")
	case errors.Is(err, ErrNoNewLinks):
		log.Info("no new links, skipping extraction this run")
	case err != nil:
		return fmt.Errorf("discover phase: %w", err)
	default:
		if _, err := o.ExtractBatch(ctx, runID, links); err != nil {
			return fmt.Errorf("extract phase: %w", err)
		}
	}

	if _, err := o.StructureBacklog(ctx, runID); err != nil {
		return fmt.Errorf("structure phase: %w", err)
	}
	log.Info("pipeline done")
	return nil
}

// Discover runs the DISCOVER phase and returns the fresh link batch.
// ErrBlocked and ErrNoNewLinks are terminal-for-this-run outcomes, not
// failures.
func (o *Orchestrator) Discover(ctx context.Context, runID string) ([]LinkRecord, error) {
	log := o.logger.With(zap.String("run_id", runID), zap.String("phase", "discover"))
	log.Info("phase start")

	links, err := o.discoverer.Discover(ctx, runID)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			metrics.ObserveBlock("search")
		}
		return nil, err
	}
	log.Info("phase done", zap.Int("new_links", len(links)))
	return links, nil
}

// ExtractBatch runs the EXTRACT phase over a link batch. The batch is
// re-filtered against the store first so a crash between phases never
// double-processes a URL; remaining work comes from store state, not
// in-memory progress.
func (o *Orchestrator) ExtractBatch(ctx context.Context, runID string, links []LinkRecord) (PhaseCounters, error) {
	log := o.logger.With(zap.String("run_id", runID), zap.String("phase", "extract"))
	var counters PhaseCounters

	rawCount, err := o.store.CountRaw(ctx)
	if err != nil {
		return counters, fmt.Errorf("count raw jobs: %w", err)
	}
	remaining, err := FilterNewLinks(ctx, o.store, links)
	if err != nil {
		return counters, fmt.Errorf("filter links: %w", err)
	}
	log.Info("phase start",
		zap.Int("db_raw_jobs", rawCount),
		zap.Int("links_from_batch", len(links)),
		zap.Int("already_in_db", len(links)-len(remaining)),
		zap.Int("remaining", len(remaining)),
	)
	if len(remaining) == 0 {
		log.Info("phase done", zap.String("reason", "no_remaining_links"))
		return counters, nil
	}

	for i, link := range remaining {
		if err := ctx.Err(); err != nil {
			return counters, err
		}
		log.Info("extracting",
			zap.Int("progress", i+1),
			zap.Int("total", len(remaining)),
			zap.String("url", link.URL),
		)
		job, err := o.extractor.Extract(ctx, link.URL)
		if err != nil || job == nil {
			counters.Failed++
			metrics.ObservePage(link.URL, "failed")
			if err != nil {
				log.Warn("extraction failed", zap.String("url", link.URL), zap.Error(err))
			}
			// Back off before the next URL in case the source is
			// throttling or blocking us.
			o.pauser.Pause(ctx, o.cfg.Cooldown)
			continue
		}
		inserted, err := o.store.SaveRaw(ctx, *job)
		if err != nil {
			counters.Failed++
			metrics.ObservePage(link.URL, "store_failed")
			log.Warn("save raw failed", zap.String("url", link.URL), zap.Error(err))
			continue
		}
		counters.Saved++
		metrics.ObservePage(link.URL, "saved")
		if inserted && o.mirror != nil {
			if err := o.mirror.Append(*job); err != nil {
				log.Warn("raw mirror write failed", zap.Error(err))
			}
		}
	}

	log.Info("phase done",
		zap.Int("total", len(remaining)),
		zap.Int("saved", counters.Saved),
		zap.Int("failed", counters.Failed),
	)
	return counters, nil
}

// StructureBacklog runs the STRUCTURE phase: pull unprocessed raw rows
// up to the configured limit and attach clean rows. A failed item stays
// unprocessed and is retried on a future run.
func (o *Orchestrator) StructureBacklog(ctx context.Context, runID string) (PhaseCounters, error) {
	log := o.logger.With(zap.String("run_id", runID), zap.String("phase", "structure"))
	var counters PhaseCounters

	jobs, err := o.store.FetchUnprocessed(ctx, o.cfg.StructureLimit)
	if err != nil {
		return counters, fmt.Errorf("fetch unprocessed: %w", err)
	}
	log.Info("phase start", zap.Int("unprocessed", len(jobs)))

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return counters, err
		}
		clean, err := o.structurer.Structure(ctx, job)
		if err != nil {
			counters.Failed++
			metrics.ObserveStructure("llm_failed")
			log.Warn("structure failed",
				zap.String("title", job.Title),
				zap.String("company", job.Company),
				zap.Error(err),
			)
			continue
		}
		clean.RawJobID = job.ID
		if err := o.store.SaveClean(ctx, clean); err != nil {
			counters.Failed++
			metrics.ObserveStructure("store_failed")
			log.Warn("save clean failed", zap.String("url", job.URL), zap.Error(err))
			continue
		}
		counters.Saved++
		metrics.ObserveStructure("saved")
		log.Info("structured",
			zap.String("standardized_title", clean.StandardizedTitle),
			zap.String("company", job.Company),
		)
	}

	log.Info("phase done",
		zap.Int("total", len(jobs)),
		zap.Int("saved", counters.Saved),
		zap.Int("failed", counters.Failed),
	)
	return counters, nil
}
