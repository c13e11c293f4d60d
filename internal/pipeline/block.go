package pipeline

import "strings"

// Markers the job board serves instead of content when it suspects
// automation. A page containing any of them is a block, not a layout
// failure, and is never retried automatically.
var blockMarkers = []string{
	"Verify you are human",
	"Just a moment",
}

// IsBlockPage reports whether the rendered HTML is an anti-bot
// challenge rather than posting content.
func IsBlockPage(html string) bool {
	for _, marker := range blockMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}
