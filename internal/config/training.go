package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one CSV dataset and its layout.
type SourceConfig struct {
	Name           string   `yaml:"name"`
	Path           string   `yaml:"path"`
	Kind           string   `yaml:"kind"`
	TextColumn     string   `yaml:"text_column,omitempty"`
	LabelColumn    string   `yaml:"label_column,omitempty"`
	SymptomColumns []string `yaml:"symptom_columns,omitempty"`
	Separator      string   `yaml:"separator,omitempty"`
	Pattern        string   `yaml:"pattern,omitempty"`
}

// VectorizerConfig mirrors vectorize.Options.
type VectorizerConfig struct {
	MinNGram    int   `yaml:"min_ngram"`
	MaxNGram    int   `yaml:"max_ngram"`
	MaxFeatures int   `yaml:"max_features"`
	StopWords   *bool `yaml:"stop_words,omitempty"`
}

// BalanceConfig mirrors balance.Policy plus an on/off switch.
type BalanceConfig struct {
	Enabled        *bool `yaml:"enabled,omitempty"`
	MinMinority    int   `yaml:"min_minority"`
	NeighborOffset int   `yaml:"neighbor_offset"`
}

// ClassifierConfig mirrors svm.Options.
type ClassifierConfig struct {
	C       float64 `yaml:"c"`
	Tol     float64 `yaml:"tol"`
	MaxIter int     `yaml:"max_iter"`
	Seed    int64   `yaml:"seed"`
}

// Training is the root configuration of cmd/train.
type Training struct {
	Sources       []SourceConfig   `yaml:"sources"`
	Test          *SourceConfig    `yaml:"test,omitempty"`
	MinLabelCount int              `yaml:"min_label_count"`
	Vectorizer    VectorizerConfig `yaml:"vectorizer"`
	Balance       BalanceConfig    `yaml:"balance"`
	Classifier    ClassifierConfig `yaml:"classifier"`
	Output        string           `yaml:"output"`
	Report        string           `yaml:"report,omitempty"`
	TopErrors     int              `yaml:"top_errors"`
}

// LoadTraining reads a config from path. If the file does not exist, returns
// defaults. Relative source paths resolve against the config file directory.
func LoadTraining(path string) (*Training, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultTraining(), nil
		}
		return nil, err
	}
	var cfg Training
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyTrainingDefaults(&cfg)
	resolvePaths(&cfg, filepath.Dir(path))
	defaultNames(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveTraining writes cfg to path, creating directories as needed.
func SaveTraining(path string, cfg *Training) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultTraining lists the three bundled training datasets and the held-out
// split.
func DefaultTraining() *Training {
	cfg := &Training{
		Sources: []SourceConfig{
			{Name: "narrative", Path: "train-00000-of-00001.csv", Kind: "narrative"},
			{Name: "symptom-lists", Path: "Diseases_Symptoms.csv", Kind: "delimited"},
			{Name: "symptom-columns", Path: "disease_diagnosis.csv", Kind: "columns"},
		},
		Test: &SourceConfig{Name: "held-out", Path: "test-00000-of-00001.csv", Kind: "narrative"},
	}
	applyTrainingDefaults(cfg)
	return cfg
}

func applyTrainingDefaults(cfg *Training) {
	if cfg.MinLabelCount == 0 {
		cfg.MinLabelCount = 2
	}
	if cfg.Vectorizer.MinNGram == 0 {
		cfg.Vectorizer.MinNGram = 1
	}
	if cfg.Vectorizer.MaxNGram == 0 {
		cfg.Vectorizer.MaxNGram = 2
	}
	if cfg.Vectorizer.MaxFeatures == 0 {
		cfg.Vectorizer.MaxFeatures = 5000
	}
	if cfg.Vectorizer.StopWords == nil {
		cfg.Vectorizer.StopWords = boolPtr(true)
	}
	if cfg.Balance.Enabled == nil {
		cfg.Balance.Enabled = boolPtr(true)
	}
	if cfg.Balance.MinMinority == 0 {
		cfg.Balance.MinMinority = 1
	}
	if cfg.Balance.NeighborOffset == 0 {
		cfg.Balance.NeighborOffset = 1
	}
	if cfg.Classifier.C == 0 {
		cfg.Classifier.C = 1
	}
	if cfg.Classifier.Tol == 0 {
		cfg.Classifier.Tol = 1e-4
	}
	if cfg.Classifier.MaxIter == 0 {
		cfg.Classifier.MaxIter = 1000
	}
	if cfg.Classifier.Seed == 0 {
		cfg.Classifier.Seed = 42
	}
	if cfg.Output == "" {
		cfg.Output = "disease_model.gob"
	}
	if cfg.TopErrors == 0 {
		cfg.TopErrors = 15
	}
}

// defaultNames labels unnamed sources by their path. Runs after resolvePaths
// so report names match the files actually read.
func defaultNames(cfg *Training) {
	for i := range cfg.Sources {
		if cfg.Sources[i].Name == "" {
			cfg.Sources[i].Name = cfg.Sources[i].Path
		}
	}
	if cfg.Test != nil && cfg.Test.Name == "" {
		cfg.Test.Name = cfg.Test.Path
	}
}

func resolvePaths(cfg *Training, base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range cfg.Sources {
		cfg.Sources[i].Path = resolve(cfg.Sources[i].Path)
	}
	if cfg.Test != nil {
		cfg.Test.Path = resolve(cfg.Test.Path)
	}
	cfg.Output = resolve(cfg.Output)
	cfg.Report = resolve(cfg.Report)
}

// Validate rejects settings the training stages cannot run with.
func (cfg *Training) Validate() error {
	if len(cfg.Sources) == 0 {
		return errors.New("at least one training source is required")
	}
	for _, s := range cfg.Sources {
		if s.Path == "" {
			return fmt.Errorf("source %q has no path", s.Name)
		}
	}
	if cfg.MinLabelCount < 1 {
		return fmt.Errorf("min_label_count must be >= 1, got %d", cfg.MinLabelCount)
	}
	if cfg.Vectorizer.MinNGram < 1 || cfg.Vectorizer.MaxNGram < cfg.Vectorizer.MinNGram {
		return fmt.Errorf("invalid ngram range [%d, %d]", cfg.Vectorizer.MinNGram, cfg.Vectorizer.MaxNGram)
	}
	if cfg.Vectorizer.MaxFeatures < 0 {
		return fmt.Errorf("max_features must not be negative")
	}
	if cfg.Balance.NeighborOffset < 0 {
		return fmt.Errorf("neighbor_offset must not be negative")
	}
	if cfg.Classifier.C <= 0 {
		return fmt.Errorf("classifier c must be positive")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
