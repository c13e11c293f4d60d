package llm

import (
	"strings"
	"unicode/utf8"
)

// Section headers the job board mashes into one info block. Detail
// pages render these as visual headings but the scraped text carries
// them inline, so the block has to be re-split by marker.
var (
	descHeaders = []string{"Mô tả công việc"}
	reqHeaders  = []string{"Yêu cầu ứng viên", "Yêu cầu công việc"}
	benHeaders  = []string{"Quyền lợi"}

	descStops = []string{"Yêu cầu ứng viên", "Yêu cầu công việc", "Quyền lợi", "Địa điểm làm việc"}
	reqStops  = []string{"Quyền lợi", "Địa điểm làm việc", "Cách thức ứng tuyển"}
	benStops  = []string{"Địa điểm làm việc", "Thời gian làm việc", "Cách thức ứng tuyển"}
)

// Sections holds the three narrative parts of a posting's info block.
// A nil field means the corresponding header was absent.
type Sections struct {
	Description *string
	Requirement *string
	Benefit     *string
}

// SplitInfo splits the mashed info block into description, requirement,
// and benefit sections. Matching is case-insensitive; whitespace runs
// are collapsed first so headers match regardless of how the page broke
// its lines.
func SplitInfo(info string) Sections {
	text := strings.Join(strings.Fields(info), " ")
	if text == "" {
		return Sections{}
	}

	return Sections{
		Description: cut(text, descHeaders, descStops),
		Requirement: cut(text, reqHeaders, reqStops),
		Benefit:     cut(text, benHeaders, benStops),
	}
}

// cut extracts the span between the first matching header and the
// nearest following stop marker (or the end of the text).
func cut(text string, headers, stops []string) *string {
	start := -1
	for _, h := range headers {
		if _, e := foldIndex(text, h); e >= 0 && (start < 0 || e < start) {
			start = e
		}
	}
	if start < 0 {
		return nil
	}

	end := len(text)
	for _, stop := range stops {
		if i, _ := foldIndex(text[start:], stop); i >= 0 && start+i < end {
			end = start + i
		}
	}

	section := strings.TrimSpace(strings.TrimLeft(text[start:end], ": "))
	if section == "" {
		return nil
	}
	return &section
}

// foldIndex finds the first case-insensitive occurrence of marker in s
// and returns its byte offsets [start, end) in s, or (-1, -1). Offsets
// index s itself: case folding can change a rune's encoded length, so
// positions found in a lowered copy would not line up.
func foldIndex(s, marker string) (int, int) {
	markerRunes := utf8.RuneCountInString(marker)
	if markerRunes == 0 {
		return -1, -1
	}
	for start := 0; start < len(s); {
		end := start
		for n := 0; n < markerRunes; n++ {
			if end >= len(s) {
				return -1, -1
			}
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
		}
		if strings.EqualFold(s[start:end], marker) {
			return start, end
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		start += size
	}
	return -1, -1
}
