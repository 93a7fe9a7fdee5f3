package metadata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/logging"
)

// Querier is the subset of *pgxpool.Pool used by LoadPostgres.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const metadataQuery = `SELECT disease, field, position, value
FROM disease_metadata
ORDER BY disease, field, position`

// LoadPostgres builds a store from the disease_metadata table. Rows whose
// field is not a known table name are skipped.
func LoadPostgres(ctx context.Context, q Querier, log *logrus.Entry) (*Store, error) {
	log = logging.OrDiscard(log)
	rows, err := q.Query(ctx, metadataQuery)
	if err != nil {
		return nil, fmt.Errorf("query disease_metadata: %w", err)
	}
	defer rows.Close()

	tables := map[string]*Table{}
	for _, name := range []string{TableDescription, TablePrecautions, TableMedications, TableDiets, TableWorkouts, TableTreatments} {
		tables[name] = NewTable(name)
	}
	skipped := 0
	for rows.Next() {
		var (
			disease, field, value string
			position              int
		)
		if err := rows.Scan(&disease, &field, &position, &value); err != nil {
			return nil, fmt.Errorf("scan disease_metadata: %w", err)
		}
		t, ok := tables[field]
		if !ok {
			skipped++
			continue
		}
		t.Append(disease, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read disease_metadata: %w", err)
	}
	if skipped > 0 {
		log.WithField("rows", skipped).Warn("skipped metadata rows with unknown field")
	}

	list := make([]*Table, 0, len(tables))
	for _, t := range tables {
		list = append(list, t)
	}
	return NewStore(list...), nil
}
