package filter

import (
	"strings"
)

// KeywordFilter applies case-insensitive substring include/exclude lists to title+company.
type KeywordFilter struct {
	include []string
	exclude []string
}

func NewKeywordFilter(include, exclude []string) KeywordFilter {
	return KeywordFilter{include: normalizeTerms(include), exclude: normalizeTerms(exclude)}
}

// Match reports whether a card passes. Any exclude hit rejects it; a non-empty
// include list needs at least one hit.
func (f KeywordFilter) Match(title, company string) bool {
	text := strings.ToLower(title + " " + company)

	if len(f.include) > 0 && !containsAny(text, f.include) {
		return false
	}
	if containsAny(text, f.exclude) {
		return false
	}
	return true
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
