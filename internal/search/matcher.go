package search

import (
	"regexp"
	"strings"
	"unicode"
)

// Matches is the substring/regex gate used by simpler lookups. An empty
// or whitespace-only query always matches. An invalid regex pattern is
// "no match", never an error. Literal matching is case-insensitive
// substring containment over title and body; code-like queries (ticket or
// ID strings) additionally require a word-boundary match so they don't
// hit inside unrelated longer tokens.
func Matches(title, body, query string, isRegex bool) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	haystack := title + " " + body

	if isRegex {
		re, err := regexp.Compile(q)
		if err != nil {
			return false
		}
		return re.MatchString(haystack)
	}

	if isCodeQuery(q) {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(q) + `\b`)
		if err != nil {
			return false
		}
		return re.MatchString(haystack)
	}

	return strings.Contains(strings.ToLower(haystack), strings.ToLower(q))
}

// isCodeQuery detects short identifier-looking queries: at least 4 runes,
// no whitespace, only letters, digits, hyphens or underscores, and at
// least one digit.
func isCodeQuery(q string) bool {
	if len([]rune(q)) < 4 {
		return false
	}
	hasDigit := false
	for _, r := range q {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r) || r == '-' || r == '_':
		default:
			return false
		}
	}
	return hasDigit
}
