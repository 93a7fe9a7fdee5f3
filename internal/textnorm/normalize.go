// Package textnorm holds the text cleaning shared by dataset loading, model
// training and inference. Every code path that feeds the vectorizer must go
// through Normalize, otherwise vocabulary lookups silently stop matching.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var bracketed = regexp.MustCompile(`(?s)\[.*?\]`)

// Normalize lower-cases text, removes [bracketed] annotations (even when they
// span lines) and collapses whitespace runs into single spaces.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = bracketed.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeValue normalizes v when it is a string (or *string) and returns ""
// for anything else, including nil.
func NormalizeValue(v any) string {
	switch s := v.(type) {
	case string:
		return Normalize(s)
	case *string:
		if s == nil {
			return ""
		}
		return Normalize(*s)
	default:
		return ""
	}
}

// Title renders a normalized label for display, e.g. "fungal infection" ->
// "Fungal Infection".
func Title(label string) string {
	// A Caser keeps state between calls, so one per call.
	return cases.Title(language.English).String(label)
}
