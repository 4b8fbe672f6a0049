package filter

import (
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// Candidate date expressions scanned out of prose before parsing.
// dateparse handles whole strings only, so the scan locates the
// substrings to feed it: ISO dates, slashed dates, and written-out
// month-name forms.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}`),
}

// ExtractDate finds the first recognizable date expression in a text
// body. The earliest match by position wins, not the earliest date.
func ExtractDate(text string) (time.Time, bool) {
	best := -1
	var bestDate time.Time

	for _, pattern := range datePatterns {
		loc := pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		parsed, err := dateparse.ParseAny(text[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best = loc[0]
			bestDate = parsed
		}
	}

	return bestDate, best != -1
}

// MatchesDateRange reports whether the first date found in the text
// falls inside [start, end], bounds inclusive. Text with no
// extractable date never passes.
func MatchesDateRange(text string, start, end time.Time) bool {
	date, ok := ExtractDate(text)
	if !ok {
		return false
	}
	return !date.Before(start) && !date.After(end)
}
