package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/logging"
	"github.com/Skufu/medirec/internal/textnorm"
)

// Source is one labelled CSV file and the schema used to read it.
type Source struct {
	Name   string
	Path   string
	Schema Schema
}

type headerRow struct {
	index  map[string]int
	fields []string
}

func (r headerRow) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// LoadSource reads src and returns its normalized, valid records. A missing
// file yields an error wrapping ErrSourceMissing.
func LoadSource(src Source) ([]Record, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, src.Path)
		}
		return nil, fmt.Errorf("open %s: %w", src.Path, err)
	}
	defer f.Close()

	return ReadRecords(f, src.Schema)
}

// ReadRecords parses CSV data with a header row using schema.
func ReadRecords(r io.Reader, schema Schema) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range schema.RequiredColumns() {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s source: missing column %q", schema.Kind(), col)
		}
	}

	var out []Record
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		symptoms, disease := schema.Extract(headerRow{index: index, fields: fields})
		rec := Record{
			Symptoms: textnorm.Normalize(symptoms),
			Disease:  textnorm.Normalize(disease),
		}
		if rec.Valid() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// LoadAndMerge loads every source and concatenates the records in source
// order. Missing sources are logged and skipped; any other failure aborts.
func LoadAndMerge(sources []Source, log *logrus.Entry) ([]Record, error) {
	log = logging.OrDiscard(log)

	var merged []Record
	for _, src := range sources {
		entry := log.WithFields(logrus.Fields{"source": src.Name, "path": src.Path})
		records, err := LoadSource(src)
		if err != nil {
			if errors.Is(err, ErrSourceMissing) {
				entry.Warn("data source not found, skipping")
				continue
			}
			return nil, fmt.Errorf("load source %s: %w", src.Name, err)
		}
		entry.WithField("records", len(records)).Info("loaded data source")
		merged = append(merged, records...)
	}
	return merged, nil
}
