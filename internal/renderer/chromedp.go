// Package renderer loads pages in headless Chrome and returns the
// fully rendered DOM, optionally with a screenshot.
package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// Config controls the headless browser.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// SettleDelay is how long the page gets to finish late JS after the
	// wait selector appears. The job board paints salary/info blocks a
	// beat after the title.
	SettleDelay time.Duration
}

// Chromedp implements pipeline.Renderer with a shared browser
// allocator; each Render gets a fresh tab.
type Chromedp struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// New creates a renderer backed by a headless Chrome allocator.
func New(cfg Config, logger *zap.Logger) *Chromedp {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Chromedp{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

// Close tears down the browser allocator.
func (r *Chromedp) Close() {
	r.allocCancel()
}

// Render navigates to the URL, waits for the readiness selector, and
// snapshots the DOM. Network-level failures surface as errors so the
// retry policy can act on them; a page that renders an anti-bot
// challenge still renders successfully and is classified downstream.
func (r *Chromedp) Render(ctx context.Context, req pipeline.RenderRequest) (pipeline.RenderResult, error) {
	taskCtx, taskCancel := chromedp.NewContext(r.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, r.cfg.NavigationTimeout)
	defer cancel()

	// Propagate caller cancellation into the tab context.
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	var (
		html       string
		screenshot []byte
	)
	actions := []chromedp.Action{
		r.networkSetup(),
		chromedp.Navigate(req.URL),
	}
	if req.WaitSelector != "" {
		actions = append(actions, chromedp.WaitReady(req.WaitSelector, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}
	actions = append(actions,
		chromedp.Sleep(r.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if req.Screenshot {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			shot, err := page.CaptureScreenshot().Do(ctx)
			if err != nil {
				// Screenshots are diagnostic only; a capture failure
				// must not fail the render.
				r.logger.Warn("screenshot capture failed", zap.String("url", req.URL), zap.Error(err))
				return nil
			}
			screenshot = shot
			return nil
		}))
	}

	start := time.Now()
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return pipeline.RenderResult{
			Success:      false,
			ErrorMessage: err.Error(),
		}, fmt.Errorf("chromedp run %s: %w", req.URL, err)
	}
	r.logger.Debug("page rendered",
		zap.String("url", req.URL),
		zap.Duration("duration", time.Since(start)),
		zap.Int("html_bytes", len(html)),
	)

	return pipeline.RenderResult{
		Success:    true,
		HTML:       html,
		Screenshot: screenshot,
	}, nil
}

func (r *Chromedp) networkSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if r.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}
