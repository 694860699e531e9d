package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var termPattern = regexp.MustCompile(`[0-9A-Za-z가-힣]+`)

// ExtractTerms returns the lowercased, trimmed question followed by every
// alphanumeric or Hangul run of at least two runes, deduplicated in order.
// When nothing survives it returns []string{""}, which matches every row.
func ExtractTerms(question string) []string {
	candidates := []string{strings.ToLower(strings.TrimSpace(question))}
	for _, tok := range termPattern.FindAllString(question, -1) {
		if utf8.RuneCountInString(tok) >= 2 {
			candidates = append(candidates, strings.ToLower(tok))
		}
	}

	seen := make(map[string]bool, len(candidates))
	terms := make([]string, 0, len(candidates))
	for _, t := range candidates {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return []string{""}
	}
	return terms
}

func nonEmpty(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
