package pipeline

import "errors"

// Terminal-for-this-run discovery outcomes. Both are operator-visible
// conditions, not failures: a blocked search page needs backoff or
// rotation, an empty batch means nothing new was posted.
var (
	ErrBlocked    = errors.New("search page served a bot-verification challenge")
	ErrNoNewLinks = errors.New("no new links discovered")
)
