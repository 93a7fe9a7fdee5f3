package metadata

// Table names used by the loaders.
const (
	TableDescription = "description"
	TablePrecautions = "precautions"
	TableMedications = "medications"
	TableDiets       = "diets"
	TableWorkouts    = "workout"
	TableTreatments  = "treatments"
)

// Field is a looked-up list and whether any table row matched.
type Field struct {
	Values []string
	Found  bool
}

// Info is everything the store knows about one disease. Missing fields are
// reported through Found; choosing fallback text is up to the caller.
type Info struct {
	Disease     string
	Description Field
	Precautions Field
	Medications Field
	Diet        Field
	Workout     Field
	Treatments  Field
}

// Found reports whether any field matched.
func (i Info) Found() bool {
	return i.Description.Found || i.Precautions.Found || i.Medications.Found ||
		i.Diet.Found || i.Workout.Found || i.Treatments.Found
}

// Store groups the metadata tables. It is read-only after loading.
type Store struct {
	tables map[string]*Table
}

// NewStore builds a store from tables keyed by their Name.
func NewStore(tables ...*Table) *Store {
	s := &Store{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		s.tables[t.Name] = t
	}
	return s
}

// Table returns the named table, or nil.
func (s *Store) Table(name string) *Table {
	if s == nil {
		return nil
	}
	return s.tables[name]
}

// Lookup collects every table's entry for disease.
func (s *Store) Lookup(disease string) Info {
	field := func(name string) Field {
		v, ok := s.Table(name).Lookup(disease)
		return Field{Values: v, Found: ok}
	}
	return Info{
		Disease:     disease,
		Description: field(TableDescription),
		Precautions: field(TablePrecautions),
		Medications: field(TableMedications),
		Diet:        field(TableDiets),
		Workout:     field(TableWorkouts),
		Treatments:  field(TableTreatments),
	}
}

// Sizes reports the row count per table.
func (s *Store) Sizes() map[string]int {
	out := make(map[string]int)
	if s == nil {
		return out
	}
	for name, t := range s.tables {
		out[name] = t.Len()
	}
	return out
}
