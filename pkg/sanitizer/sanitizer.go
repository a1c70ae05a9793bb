// Package sanitizer normalizes user-supplied profile and request
// fields before validation. City names are only whitespace-trimmed:
// matching compares city strings literally, so anything beyond
// trimming would silently change match results.
package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reCollapseSpaces = regexp.MustCompile(`\s+`)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func collapseSpaces(s string) string {
	return reCollapseSpaces.ReplaceAllString(s, " ")
}

// Text trims and collapses interior whitespace. Used for names,
// addresses, notes, and other free text.
func Text(input string) string {
	p := Pipeline{trim, collapseSpaces}
	return p.Apply(input)
}

// City trims only. See the package comment.
func City(input string) string {
	return trim(input)
}

// Tag normalizes an age-group or weekday tag: trimmed, no interior
// whitespace changes beyond collapsing.
func Tag(input string) string {
	p := Pipeline{trim, collapseSpaces}
	return p.Apply(input)
}
