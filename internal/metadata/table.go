// Package metadata serves the per-disease description, precautions,
// medications, diet and workout tables that accompany a prediction.
package metadata

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key folds a disease name for matching.
func Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(norm.NFKC.String(name)), " "))
}

// MatchExact returns the index of the first key equal to name after folding.
func MatchExact(keys []string, name string) (int, bool) {
	q := Key(name)
	if q == "" {
		return -1, false
	}
	for i, k := range keys {
		if Key(k) == q {
			return i, true
		}
	}
	return -1, false
}

// MatchSubstring returns the index of the first key containing name after
// folding.
func MatchSubstring(keys []string, name string) (int, bool) {
	q := Key(name)
	if q == "" {
		return -1, false
	}
	for i, k := range keys {
		if strings.Contains(Key(k), q) {
			return i, true
		}
	}
	return -1, false
}

// Table maps disease names to a list of values. Rows keep insertion order so
// the first match wins.
type Table struct {
	Name string
	keys []string
	rows [][]string
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// Add appends values for disease. Empty values are dropped; a row with no
// values is still recorded so the disease is known.
func (t *Table) Add(disease string, values ...string) {
	clean := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !strings.EqualFold(v, "nan") {
			clean = append(clean, v)
		}
	}
	t.keys = append(t.keys, strings.TrimSpace(disease))
	t.rows = append(t.rows, clean)
}

// Append adds value to the existing row of disease, creating it if needed.
func (t *Table) Append(disease, value string) {
	if i, ok := MatchExact(t.keys, disease); ok {
		if v := strings.TrimSpace(value); v != "" {
			t.rows[i] = append(t.rows[i], v)
		}
		return
	}
	t.Add(disease, value)
}

// Len is the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Lookup tries an exact match, then a substring match.
func (t *Table) Lookup(disease string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := MatchExact(t.keys, disease)
	if !ok {
		i, ok = MatchSubstring(t.keys, disease)
	}
	if !ok {
		return nil, false
	}
	return append([]string(nil), t.rows[i]...), true
}
