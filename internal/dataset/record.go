// Package dataset loads the labelled symptom sources, reduces them to a
// uniform (symptoms, disease) shape and applies the rarity filter.
package dataset

import (
	"errors"
	"sort"
)

var (
	// ErrSourceMissing is returned when a configured input file does not exist.
	// Loaders skip such sources instead of failing.
	ErrSourceMissing = errors.New("data source missing")
	// ErrEmptyDataset means no usable training records remain.
	ErrEmptyDataset = errors.New("no usable training records")
)

// Record is one normalized (symptoms, disease) training example.
type Record struct {
	Symptoms string
	Disease  string
}

// Valid reports whether both fields are non-empty.
func (r Record) Valid() bool {
	return r.Symptoms != "" && r.Disease != ""
}

// LabelSet is the set of disease labels retained for training.
type LabelSet map[string]struct{}

// NewLabelSet builds a set from labels.
func NewLabelSet(labels ...string) LabelSet {
	s := make(LabelSet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Contains reports whether label is in the set.
func (s LabelSet) Contains(label string) bool {
	_, ok := s[label]
	return ok
}

// Sorted returns the labels in lexical order.
func (s LabelSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Texts returns the symptom texts of records, in order.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symptoms
	}
	return out
}

// Labels returns the disease labels of records, in order.
func Labels(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Disease
	}
	return out
}

// LabelCounts counts records per disease label.
func LabelCounts(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Disease]++
	}
	return counts
}

// Consolidate drops records whose label occurs fewer than minCount times and
// returns the survivors together with the retained label set.
func Consolidate(records []Record, minCount int) ([]Record, LabelSet) {
	counts := LabelCounts(records)
	keep := make(LabelSet)
	for label, n := range counts {
		if n >= minCount {
			keep[label] = struct{}{}
		}
	}
	return FilterToLabels(records, keep), keep
}

// FilterToLabels keeps only records whose label is in labels.
func FilterToLabels(records []Record, labels LabelSet) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if labels.Contains(r.Disease) {
			out = append(out, r)
		}
	}
	return out
}
