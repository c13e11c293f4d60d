package pipeline

import "strings"

// NormalizeURL returns the canonical form of a job-posting URL: the
// query string and fragment are stripped and surrounding whitespace is
// trimmed. Two URLs that normalize identically identify the same
// posting. An empty result signals the URL should be discarded.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
