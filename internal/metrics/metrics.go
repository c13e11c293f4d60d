// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal            *prometheus.CounterVec
	blocksTotal           *prometheus.CounterVec
	structureTotal        *prometheus.CounterVec
	llmCallsTotal         *prometheus.CounterVec
	llmCallSeconds        prometheus.Histogram
	rateLimitDelaySeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call repeatedly.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobcrawler_pages_total",
				Help: "Detail pages processed, labeled by site and outcome.",
			},
			[]string{"site", "status"},
		)

		blocksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobcrawler_blocks_total",
				Help: "Bot-verification challenges encountered, labeled by page kind.",
			},
			[]string{"page"},
		)

		structureTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobcrawler_structure_total",
				Help: "Structuring attempts, labeled by outcome.",
			},
			[]string{"status"},
		)

		llmCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobcrawler_llm_calls_total",
				Help: "LLM extraction calls, labeled by outcome.",
			},
			[]string{"status"},
		)

		llmCallSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jobcrawler_llm_call_duration_seconds",
				Help:    "Histogram of LLM call latencies.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jobcrawler_rate_limit_delay_seconds",
				Help:    "Histogram of LLM rate-limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from a URL, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the page counter for the given outcome.
func ObservePage(site string, status string) {
	if pagesTotal == nil {
		return
	}
	pagesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
}

// ObserveBlock records a bot-verification challenge.
func ObserveBlock(page string) {
	if blocksTotal == nil {
		return
	}
	blocksTotal.WithLabelValues(page).Inc()
}

// ObserveStructure increments the structuring counter for the outcome.
func ObserveStructure(status string) {
	if structureTotal == nil {
		return
	}
	structureTotal.WithLabelValues(status).Inc()
}

// ObserveLLMCall records one LLM call with its outcome and latency.
func ObserveLLMCall(status string, duration time.Duration) {
	if llmCallsTotal == nil {
		return
	}
	llmCallsTotal.WithLabelValues(status).Inc()
	llmCallSeconds.Observe(duration.Seconds())
}

// ObserveRateLimitDelay records the duration of a rate-limit wait.
func ObserveRateLimitDelay(duration time.Duration) {
	if rateLimitDelaySeconds == nil {
		return
	}
	rateLimitDelaySeconds.Observe(duration.Seconds())
}
