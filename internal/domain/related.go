package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// NameTokens splits a product name on whitespace and drops tokens of a single
// character or less.
func NameTokens(name string) []string {
	fields := strings.Fields(name)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// RelatedNamePattern builds an alternation of the escaped name tokens, meant
// to be matched case-insensitively. It returns an empty string when no token
// survives, in which case no name matches.
func RelatedNamePattern(name string) string {
	tokens := NameTokens(name)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}
