// Package model fits and persists the {vectorizer, classifier} bundle. The two
// halves are only ever written and read together.
package model

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Skufu/medirec/internal/sparse"
	"github.com/Skufu/medirec/internal/svm"
	"github.com/Skufu/medirec/internal/textnorm"
	"github.com/Skufu/medirec/internal/vectorize"
)

// FormatVersion is bumped whenever the on-disk layout changes.
const FormatVersion = 1

// ErrArtifactMissing is returned by Load when the file does not exist.
var ErrArtifactMissing = errors.New("model artifact missing")

// Metadata describes how an artifact was produced.
type Metadata struct {
	CreatedAt     time.Time
	Labels        []string
	TrainRecords  int
	TrainedRows   int
	Features      int
	SMOTENeighbor int
	// Accuracy on held-out data, -1 when not evaluated.
	Accuracy float64
}

// Artifact is the fitted pipeline. It is read-only once built or loaded.
type Artifact struct {
	Vectorizer *vectorize.Vectorizer
	Classifier *svm.Model
	Metadata   Metadata
}

// Label predicts the raw (normalized, lower-case) label for symptom text.
func (a *Artifact) Label(text string) (string, error) {
	x, err := a.Vectorize(text)
	if err != nil {
		return "", err
	}
	return a.Classifier.Predict(x)
}

// Vectorize normalizes text and applies the frozen vectorizer.
func (a *Artifact) Vectorize(text string) (sparse.Vector, error) {
	if a == nil || a.Vectorizer == nil || a.Classifier == nil {
		return sparse.Vector{}, errors.New("artifact incomplete")
	}
	return a.Vectorizer.Transform(textnorm.Normalize(text))
}

type bundle struct {
	Version    int
	Vectorizer vectorize.State
	Classifier svm.State
	Metadata   Metadata
}

// Encode writes the artifact as a single gob value.
func (a *Artifact) Encode(w io.Writer) error {
	if a.Vectorizer == nil || a.Classifier == nil {
		return errors.New("artifact incomplete")
	}
	b := bundle{
		Version:    FormatVersion,
		Vectorizer: a.Vectorizer.State(),
		Classifier: a.Classifier.State(),
		Metadata:   a.Metadata,
	}
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}

// Decode reads an artifact written by Encode.
func Decode(r io.Reader) (*Artifact, error) {
	var b bundle
	if err := gob.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("artifact format version %d, want %d", b.Version, FormatVersion)
	}
	vec, err := vectorize.FromState(b.Vectorizer)
	if err != nil {
		return nil, err
	}
	clf, err := svm.FromState(b.Classifier)
	if err != nil {
		return nil, err
	}
	if vec.Dim() != clf.Dim() {
		return nil, fmt.Errorf("artifact mismatch: vectorizer has %d features, classifier %d", vec.Dim(), clf.Dim())
	}
	return &Artifact{Vectorizer: vec, Classifier: clf, Metadata: b.Metadata}, nil
}

// Save writes the artifact to path atomically: a temp file in the same
// directory is renamed over the destination.
func (a *Artifact) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := a.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// Load reads the artifact at path.
func Load(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
