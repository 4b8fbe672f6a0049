// Package filter implements the client-side predicates layered over
// the remote API's weak server-side filtering. Every function here is
// pure: records in, records out, no network.
package filter

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// FuzzyThreshold is the minimum similarity score for a fuzzy match to
// pass. 0.6 keeps one-or-two-letter transcription slips and rejects
// unrelated names.
const FuzzyThreshold = 0.6

// Score returns a similarity score in [0,1] between a query and a
// candidate. Case-insensitive; identical strings score 1.0 and
// substring containment scores just below it.
func Score(query, candidate string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))

	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1.0
	}
	if strings.Contains(c, q) || strings.Contains(q, c) {
		return 0.95
	}

	longest := len(q)
	if len(c) > longest {
		longest = len(c)
	}
	distance := levenshtein.ComputeDistance(q, c)
	return 1.0 - float64(distance)/float64(longest)
}

// MatchesName reports whether a candidate name passes the name filter,
// and with what score. Non-fuzzy matching accepts case-insensitive
// equality or substring containment, mirroring the remote API's own
// partial name matching.
func MatchesName(query, candidate string, fuzzy bool) (bool, float64) {
	score := Score(query, candidate)
	if fuzzy {
		return score >= FuzzyThreshold, score
	}
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	return q != "" && strings.Contains(c, q), score
}

// MatchesTags reports whether a record's tags are a superset of the
// requested tags. AND semantics, case-sensitive, order-independent.
func MatchesTags(recordTags, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(recordTags))
	for _, tag := range recordTags {
		have[tag] = struct{}{}
	}
	for _, tag := range wanted {
		if _, ok := have[tag]; !ok {
			return false
		}
	}
	return true
}

// MatchesSubtype matches the free-form subtype field, exactly
// (case-insensitive) or with the same scorer as names when fuzzy.
func MatchesSubtype(query, subtype string, fuzzy bool) bool {
	if fuzzy {
		return Score(query, subtype) >= FuzzyThreshold
	}
	return strings.EqualFold(strings.TrimSpace(query), strings.TrimSpace(subtype))
}

// MatchesContent reports a case-insensitive full-text match against
// name and body.
func MatchesContent(query, name, body string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), q) ||
		strings.Contains(strings.ToLower(body), q)
}
