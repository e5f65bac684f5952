// Package textutil provides the text normalization helpers shared by
// extraction and message formatting.
package textutil

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Clean normalizes whitespace: carriage returns become newlines, runs of
// spaces and tabs collapse to one space, three or more consecutive newlines
// collapse to two, and surrounding whitespace is stripped.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Truncate cleans s and caps it at limit runes, replacing the final rune
// with an ellipsis when the text had to be cut. A non-positive limit
// means no cap.
func Truncate(s string, limit int) string {
	s = Clean(s)
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit-1]), " \t\n") + Ellipsis
}
