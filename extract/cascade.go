package extract

import "strings"

// candidate produces one possible value for a field. Returning an empty or
// whitespace-only string means the strategy found nothing.
type candidate func() string

// firstNonEmpty evaluates candidates in order and returns the first trimmed
// non-empty result. Each field's fallback chain is expressed as one of these
// instead of nested conditionals.
func firstNonEmpty(candidates ...candidate) string {
	for _, c := range candidates {
		if v := strings.TrimSpace(c()); v != "" {
			return v
		}
	}
	return ""
}
