package pipeline

import (
	"context"
	"fmt"
)

// DedupLinks normalizes a candidate batch and collapses intra-batch
// duplicates, first occurrence winning. Candidates that normalize to
// the empty string are dropped. Every surviving record carries its
// canonical URL.
func DedupLinks(candidates []LinkRecord) []LinkRecord {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]LinkRecord, 0, len(candidates))
	for _, rec := range candidates {
		norm := NormalizeURL(rec.URL)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		rec.URL = norm
		out = append(out, rec)
	}
	return out
}

// FilterNewLinks returns the subset of the batch not yet ingested:
// intra-batch duplicates are collapsed and URLs already present in the
// store are subtracted with a single batch query. Calling it again
// after the first result has been persisted yields an empty slice.
func FilterNewLinks(ctx context.Context, store JobStore, candidates []LinkRecord) ([]LinkRecord, error) {
	deduped := DedupLinks(candidates)
	if len(deduped) == 0 {
		return nil, nil
	}
	urls := make([]string, len(deduped))
	for i, rec := range deduped {
		urls[i] = rec.URL
	}
	known, err := store.KnownURLs(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("query known urls: %w", err)
	}
	fresh := deduped[:0]
	for _, rec := range deduped {
		if _, exists := known[rec.URL]; exists {
			continue
		}
		fresh = append(fresh, rec)
	}
	return fresh, nil
}
