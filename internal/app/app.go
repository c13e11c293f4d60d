// Package app initializes and holds long-lived application services,
// acting as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/artifacts"
	"github.com/parkhip/ai-job-crawler/internal/clock/system"
	"github.com/parkhip/ai-job-crawler/internal/config"
	"github.com/parkhip/ai-job-crawler/internal/discover"
	"github.com/parkhip/ai-job-crawler/internal/extract"
	"github.com/parkhip/ai-job-crawler/internal/llm"
	"github.com/parkhip/ai-job-crawler/internal/logging"
	"github.com/parkhip/ai-job-crawler/internal/metrics"
	"github.com/parkhip/ai-job-crawler/internal/pipeline"
	"github.com/parkhip/ai-job-crawler/internal/renderer"
	"github.com/parkhip/ai-job-crawler/internal/store/memory"
	"github.com/parkhip/ai-job-crawler/internal/store/postgres"
)

// App holds the shared, long-lived services for one CLI invocation.
// It is initialized once at startup and passed to the command that
// needs it; Close tears everything down in reverse order.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     pipeline.JobStore
	Renderer  *renderer.Chromedp
	LLMClient llm.Client

	LinkArtifact *artifacts.LinkFile
	FailureSink  *artifacts.FailureDir
	Mirror       *artifacts.JobMirror
	Clock        pipeline.Clock

	metricsSrv *http.Server
}

// Options toggles which services a command needs. Commands that never
// touch the browser or the model skip those startup costs.
type Options struct {
	NeedRenderer bool
	NeedLLM      bool
}

// New creates and initializes the service container. It fails fast if
// any required service cannot be initialized.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Clock: system.New()}

	if cfg.DB.DSN != "" {
		store, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		a.Store = store
		logger.Info("using postgres job store")
	} else {
		a.Store = memory.New()
		logger.Warn("db.dsn not set, using in-memory job store; rows will not survive the process")
	}
	if err := a.Store.InitSchema(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	a.LinkArtifact, err = artifacts.NewLinkFile(cfg.Dirs.Links, a.Clock)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init link artifact dir: %w", err)
	}
	a.Mirror, err = artifacts.NewJobMirror(cfg.Dirs.Jobs, a.Clock)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init job mirror dir: %w", err)
	}
	a.FailureSink = artifacts.NewFailureDir(cfg.Dirs.Errors, logger)

	if opts.NeedRenderer {
		a.Renderer = renderer.New(renderer.Config{
			UserAgent:         cfg.Crawler.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
			SettleDelay:       cfg.SettleDelay(),
		}, logger)
	}

	if opts.NeedLLM {
		apiKey := os.Getenv("GEMINI_API_KEY")
		client, err := llm.NewGeminiClient(ctx, apiKey, cfg.LLM.Model)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init llm client: %w", err)
		}
		a.LLMClient = client
	}

	if cfg.Metrics.Enabled {
		a.startMetricsServer(cfg.Metrics.Port)
	}

	return a, nil
}

// NewDiscoverer builds the discovery phase from the container's services.
func (a *App) NewDiscoverer() *discover.Discoverer {
	minDelay, maxDelay := a.Config.SearchDelayBounds()
	return discover.New(
		a.Renderer,
		a.Store,
		a.LinkArtifact,
		a.fetchRetryPolicy(),
		pipeline.TimerPauser{},
		a.Clock,
		discover.Config{
			SearchURL: a.Config.Crawler.SearchURL,
			Source:    a.Config.Crawler.Source,
			DelayMin:  minDelay,
			DelayMax:  maxDelay,
		},
		a.Logger,
	)
}

// NewExtractor builds the detail extraction phase.
func (a *App) NewExtractor() *extract.Extractor {
	minDelay, maxDelay := a.Config.DetailDelayBounds()
	return extract.New(
		a.Renderer,
		a.FailureSink,
		a.fetchRetryPolicy(),
		pipeline.TimerPauser{},
		a.Clock,
		extract.Config{
			Source:   a.Config.Crawler.Source,
			DelayMin: minDelay,
			DelayMax: maxDelay,
		},
		a.Logger,
	)
}

// NewStructurer builds the LLM structuring phase.
func (a *App) NewStructurer() *llm.Structurer {
	return llm.NewStructurer(a.LLMClient, llm.Config{
		MaxRetries:      a.Config.LLM.MaxRetries,
		RPM:             a.Config.LLM.RPM,
		USDToMillionVND: a.Config.LLM.USDToMillionVND,
	}, a.Logger)
}

// NewOrchestrator wires the full pipeline around the given phases. Any
// phase may be nil when the command does not run it.
func (a *App) NewOrchestrator(
	discoverer pipeline.Discoverer,
	extractor pipeline.DetailExtractor,
	structurer pipeline.Structurer,
) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(
		a.Store,
		discoverer,
		extractor,
		structurer,
		a.Mirror,
		pipeline.TimerPauser{},
		pipeline.OrchestratorConfig{
			Cooldown:       a.Config.Cooldown(),
			StructureLimit: a.Config.LLM.BatchLimit,
		},
		a.Logger,
	)
}

func (a *App) fetchRetryPolicy() pipeline.RetryPolicy {
	policy := pipeline.NewFetchRetryPolicy()
	policy.MaxAttempts = a.Config.Fetch.MaxRetries
	return policy
}

func (a *App) startMetricsServer(port int) {
	metrics.Init()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricsSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.Logger.Info("metrics server listening", zap.Int("port", port))
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

// Close gracefully shuts down all services in the container. Called by
// a Cobra hook after the command finishes.
func (a *App) Close() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(ctx)
	}
	if a.LLMClient != nil {
		if err := a.LLMClient.Close(); err != nil {
			a.Logger.Warn("error closing llm client", zap.Error(err))
		}
	}
	if a.Renderer != nil {
		a.Renderer.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
