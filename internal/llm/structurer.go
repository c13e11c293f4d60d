package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/parkhip/ai-job-crawler/internal/metrics"
	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

// Config tunes the structurer.
type Config struct {
	// MaxRetries bounds attempts per job across API and validation
	// failures. Free-tier quota errors are frequent so the budget is
	// generous.
	MaxRetries int
	// RPM caps request rate against the model; zero disables the cap.
	RPM int
	// USDToMillionVND standardizes dollar salaries to Million VND.
	USDToMillionVND float64
}

// Structurer implements pipeline.Structurer over an LLM client with
// rate limiting and retry.
type Structurer struct {
	client  Client
	limiter *rate.Limiter
	retry   pipeline.RetryPolicy
	usdRate float64
	logger  *zap.Logger
}

var _ pipeline.Structurer = (*Structurer)(nil)

// NewStructurer wires a structurer around the given client.
func NewStructurer(client Client, cfg Config, logger *zap.Logger) *Structurer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if cfg.USDToMillionVND <= 0 {
		cfg.USDToMillionVND = 25.0
	}
	limit := rate.Inf
	if cfg.RPM > 0 {
		limit = rate.Limit(float64(cfg.RPM) / 60.0)
	}
	return &Structurer{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		// Retries everything: quota errors, transport errors, and
		// responses that fail schema validation all get the same
		// backoff treatment.
		retry: pipeline.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   4 * time.Second,
			MaxDelay:    60 * time.Second,
		},
		usdRate: cfg.USDToMillionVND,
		logger:  logger,
	}
}

// Structure extracts a validated clean job from the raw posting. The
// raw payload's info block is split into narrative sections first; the
// model only standardizes the structured facts.
func (s *Structurer) Structure(ctx context.Context, job pipeline.RawJob) (pipeline.CleanJob, error) {
	var fields map[string]string
	if err := json.Unmarshal(job.RawPayload, &fields); err != nil {
		return pipeline.CleanJob{}, fmt.Errorf("decode raw payload for %s: %w", job.URL, err)
	}

	sections := SplitInfo(fields["info"])
	prompt := BuildExtractionPrompt(PromptInput{
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		Salary:      fields["salary"],
		Experience:  fields["experience"],
		Description: deref(sections.Description),
		Requirement: deref(sections.Requirement),
	}, s.usdRate)

	var clean pipeline.CleanJob
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		waitStart := time.Now()
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		metrics.ObserveRateLimitDelay(time.Since(waitStart))

		callStart := time.Now()
		text, err := s.client.GenerateJSON(ctx, prompt)
		if err != nil {
			metrics.ObserveLLMCall("error", time.Since(callStart))
			return err
		}
		metrics.ObserveLLMCall("ok", time.Since(callStart))

		payload := []byte(text)
		if err := ValidateStandardJob(payload); err != nil {
			s.logger.Warn("model response rejected", zap.String("url", job.URL), zap.Error(err))
			return err
		}
		clean = pipeline.CleanJob{}
		if err := json.Unmarshal(payload, &clean); err != nil {
			return fmt.Errorf("decode model response: %w", err)
		}
		return nil
	})
	if err != nil {
		return pipeline.CleanJob{}, fmt.Errorf("structure %s: %w", job.URL, err)
	}

	clean.RawJobID = job.ID
	clean.Description = sections.Description
	clean.Requirement = sections.Requirement
	clean.Benefit = sections.Benefit
	return clean, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
