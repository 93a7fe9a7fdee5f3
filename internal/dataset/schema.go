package dataset

import (
	"fmt"
	"regexp"
	"strings"
)

// Schema kinds accepted by NewSchema.
const (
	KindNarrative = "narrative"
	KindDelimited = "delimited"
	KindColumns   = "columns"
)

// DefaultNarrativePattern pulls the symptom clause out of sentences such as
// "... symptoms: fever, cough may indicate influenza".
const DefaultNarrativePattern = `symptoms: (.*?)\s*may indicate`

// Row gives access to one CSV row by header name.
type Row interface {
	Get(column string) string
}

// Schema maps a raw row of one source layout to symptom text and label.
// Returned values are raw; callers normalize them.
type Schema interface {
	Kind() string
	RequiredColumns() []string
	Extract(row Row) (symptoms, disease string)
}

// SchemaOptions configures NewSchema. Zero fields fall back to the column
// names of the bundled datasets.
type SchemaOptions struct {
	TextColumn     string
	LabelColumn    string
	SymptomColumns []string
	Separator      string
	Pattern        string
}

// NewSchema builds the schema for kind.
func NewSchema(kind string, opts SchemaOptions) (Schema, error) {
	switch strings.ToLower(kind) {
	case KindNarrative:
		pattern := opts.Pattern
		if pattern == "" {
			pattern = DefaultNarrativePattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile narrative pattern: %w", err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("narrative pattern %q has no capture group", pattern)
		}
		return &NarrativeSchema{
			TextColumn:  orDefault(opts.TextColumn, "text"),
			LabelColumn: orDefault(opts.LabelColumn, "diagnosis"),
			pattern:     re,
		}, nil
	case KindDelimited:
		return &DelimitedSchema{
			SymptomColumn: orDefault(opts.TextColumn, "Symptoms"),
			LabelColumn:   orDefault(opts.LabelColumn, "Name"),
		}, nil
	case KindColumns:
		cols := opts.SymptomColumns
		if len(cols) == 0 {
			cols = []string{"Symptom_1", "Symptom_2", "Symptom_3"}
		}
		return &ColumnsSchema{
			SymptomColumns: cols,
			LabelColumn:    orDefault(opts.LabelColumn, "Diagnosis"),
			Separator:      orDefault(opts.Separator, ", "),
		}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

// NarrativeSchema extracts the symptoms from a free sentence column with a
// single capture group.
type NarrativeSchema struct {
	TextColumn  string
	LabelColumn string
	pattern     *regexp.Regexp
}

func (s *NarrativeSchema) Kind() string { return KindNarrative }

func (s *NarrativeSchema) RequiredColumns() []string {
	return []string{s.TextColumn, s.LabelColumn}
}

func (s *NarrativeSchema) Extract(row Row) (string, string) {
	m := s.pattern.FindStringSubmatch(row.Get(s.TextColumn))
	if m == nil {
		return "", ""
	}
	return m[1], row.Get(s.LabelColumn)
}

// DelimitedSchema reads symptoms stored as one free-text column.
type DelimitedSchema struct {
	SymptomColumn string
	LabelColumn   string
}

func (s *DelimitedSchema) Kind() string { return KindDelimited }

func (s *DelimitedSchema) RequiredColumns() []string {
	return []string{s.SymptomColumn, s.LabelColumn}
}

func (s *DelimitedSchema) Extract(row Row) (string, string) {
	return row.Get(s.SymptomColumn), row.Get(s.LabelColumn)
}

// ColumnsSchema joins one-symptom-per-column layouts, skipping blank cells.
type ColumnsSchema struct {
	SymptomColumns []string
	LabelColumn    string
	Separator      string
}

func (s *ColumnsSchema) Kind() string { return KindColumns }

func (s *ColumnsSchema) RequiredColumns() []string {
	return append(append([]string(nil), s.SymptomColumns...), s.LabelColumn)
}

func (s *ColumnsSchema) Extract(row Row) (string, string) {
	parts := make([]string, 0, len(s.SymptomColumns))
	for _, col := range s.SymptomColumns {
		if v := strings.TrimSpace(row.Get(col)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, s.Separator), row.Get(s.LabelColumn)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
