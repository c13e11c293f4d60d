package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if pagesTotal == nil || blocksTotal == nil || structureTotal == nil || llmCallsTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	pagesTotal.WithLabelValues("test.com", "saved").Inc()
	if val := testutil.ToFloat64(pagesTotal.WithLabelValues("test.com", "saved")); val != 1 {
		t.Errorf("Expected pagesTotal to be 1, got %f", val)
	}
}

func TestObserversNilSafe(t *testing.T) {
	// Observers must be no-ops before Init so components can be used in
	// tests without registering collectors.
	saved := pagesTotal
	pagesTotal = nil
	defer func() { pagesTotal = saved }()

	ObservePage("http://example.com", "saved")
	ObserveRateLimitDelay(time.Millisecond)
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
