package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/logging"
)

// tableFile describes how one CSV maps onto a table.
type tableFile struct {
	table     string
	file      string
	key       string
	values    []string
	listCells bool
	// aggregate merges repeated disease rows instead of keeping the first.
	aggregate bool
}

var tableFiles = []tableFile{
	{table: TableDescription, file: "description.csv", key: "Disease", values: []string{"Description"}},
	{table: TablePrecautions, file: "precautions_df.csv", key: "Disease",
		values: []string{"Precaution_1", "Precaution_2", "Precaution_3", "Precaution_4"}},
	{table: TableMedications, file: "medications.csv", key: "Disease", values: []string{"Medication"}, listCells: true},
	{table: TableDiets, file: "diets.csv", key: "Disease", values: []string{"Diet"}, listCells: true},
	{table: TableWorkouts, file: "workout_df.csv", key: "disease", values: []string{"workout"}, aggregate: true},
	{table: TableTreatments, file: "treatment_lookup.csv", key: "Name", values: []string{"Treatments"}},
}

// LoadCSV reads every known metadata file under dir. Missing files leave
// their table empty and are logged.
func LoadCSV(dir string, log *logrus.Entry) (*Store, error) {
	log = logging.OrDiscard(log)
	tables := make([]*Table, 0, len(tableFiles))
	for _, tf := range tableFiles {
		path := filepath.Join(dir, tf.file)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			log.WithField("file", path).Warn("metadata file not found; table left empty")
			tables = append(tables, NewTable(tf.table))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		t, err := readTable(f, tf)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		log.WithFields(logrus.Fields{"table": tf.table, "rows": t.Len()}).Debug("metadata table loaded")
		tables = append(tables, t)
	}
	return NewStore(tables...), nil
}

func readTable(r io.Reader, tf tableFile) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	keyIdx, ok := cols[strings.ToLower(tf.key)]
	if !ok {
		return nil, fmt.Errorf("missing column %q", tf.key)
	}
	valIdx := make([]int, 0, len(tf.values))
	for _, v := range tf.values {
		i, ok := cols[strings.ToLower(v)]
		if !ok {
			return nil, fmt.Errorf("missing column %q", v)
		}
		valIdx = append(valIdx, i)
	}

	t := NewTable(tf.table)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		disease := cell(rec, keyIdx)
		if disease == "" {
			continue
		}
		var values []string
		for _, i := range valIdx {
			v := cell(rec, i)
			if tf.listCells {
				values = append(values, ParseList(v)...)
			} else {
				values = append(values, v)
			}
		}
		if tf.aggregate {
			for _, v := range values {
				t.Append(disease, v)
			}
			continue
		}
		t.Add(disease, values...)
	}
	return t, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ParseList expands a bracketed list cell such as "['a', 'b']". Anything
// else is returned as a single value.
func ParseList(s string) []string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if v := strings.TrimSpace(cur.String()); v != "" {
			out = append(out, v)
		}
		cur.Reset()
	}
	for _, r := range s[1 : len(s)-1] {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
