package payload

import (
	"regexp"
	"strings"
)

var (
	dataURIPrefix = regexp.MustCompile(`(?i)^data:application/pdf;base64,`)
	// Opening fences may carry a short language tag (```pdf, ```base64). A tag
	// only counts when whitespace or the end of input follows it, so payload
	// text glued to a bare fence survives.
	fenceWithTag = regexp.MustCompile("```(?:[A-Za-z0-9_+-]{1,15}(?:\\s|$)|\\s?)")
)

// Sanitize reduces raw candidate text to a pure base64 alphabet string.
// It trims whitespace, drops a leading PDF data-URI prefix, removes markdown
// code fences and strips every character outside A-Z a-z 0-9 + / =.
// The second return value is false when nothing is left.
func Sanitize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = dataURIPrefix.ReplaceAllString(s, "")
	s = fenceWithTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	// A fenced block may itself start with the data URI.
	s = dataURIPrefix.ReplaceAllString(strings.TrimSpace(s), "")

	s = strings.Map(func(r rune) rune {
		if isAlphabet(r) {
			return r
		}
		return -1
	}, s)

	if s == "" {
		return "", false
	}
	return s, true
}

// IsSanitized reports whether s is non-empty and contains only base64 alphabet characters.
func IsSanitized(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isAlphabet(r) {
			return false
		}
	}
	return true
}

func isAlphabet(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '/', r == '=':
		return true
	}
	return false
}
