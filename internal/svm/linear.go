// Package svm trains one-vs-rest linear support vector machines with an
// L2-regularised squared hinge loss, solved by dual coordinate descent.
package svm

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/Skufu/medirec/internal/sparse"
)

// Options configures training.
type Options struct {
	C       float64
	Tol     float64
	MaxIter int
	Seed    int64
}

// DefaultOptions mirror a standard linear SVC: C=1, tol=1e-4, 1000 epochs.
func DefaultOptions() Options {
	return Options{C: 1, Tol: 1e-4, MaxIter: 1000, Seed: 42}
}

// Model is a fitted one-vs-rest linear classifier. Row i of the weight matrix
// scores Classes[i].
type Model struct {
	classes    []string
	weights    *mat.Dense
	intercepts []float64
}

// Train fits one binary separator per class.
func Train(X []sparse.Vector, y []string, dim int, opts Options) (*Model, error) {
	if len(X) == 0 {
		return nil, errors.New("svm: no training samples")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("svm: %d samples but %d labels", len(X), len(y))
	}
	if dim <= 0 {
		return nil, fmt.Errorf("svm: invalid dimension %d", dim)
	}
	for i, x := range X {
		if x.MaxIndex() >= dim {
			return nil, fmt.Errorf("svm: sample %d has index %d beyond dimension %d", i, x.MaxIndex(), dim)
		}
	}
	if opts.C <= 0 {
		opts.C = 1
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}

	seen := make(map[string]struct{})
	for _, l := range y {
		seen[l] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	if len(classes) < 2 {
		return nil, fmt.Errorf("svm: need at least 2 classes, got %d", len(classes))
	}

	m := &Model{
		classes:    classes,
		weights:    mat.NewDense(len(classes), dim, nil),
		intercepts: make([]float64, len(classes)),
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	signs := make([]float64, len(y))
	for c, class := range classes {
		for i, l := range y {
			if l == class {
				signs[i] = 1
			} else {
				signs[i] = -1
			}
		}
		w, b := trainBinary(X, signs, dim, opts, rng)
		m.weights.SetRow(c, w)
		m.intercepts[c] = b
	}
	return m, nil
}

// trainBinary solves the dual of the squared hinge loss problem with the bias
// folded in as a constant feature of value 1.
func trainBinary(X []sparse.Vector, signs []float64, dim int, opts Options, rng *rand.Rand) ([]float64, float64) {
	n := len(X)
	w := make([]float64, dim)
	var b float64
	alpha := make([]float64, n)
	diag := 0.5 / opts.C
	qd := make([]float64, n)
	for i, x := range X {
		qd[i] = x.SquaredNorm() + 1 + diag
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for iter := 0; iter < opts.MaxIter; iter++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		pgMax, pgMin := math.Inf(-1), math.Inf(1)
		for _, i := range order {
			yi := signs[i]
			g := yi*(X[i].DotDense(w)+b) - 1 + diag*alpha[i]
			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			pgMax = math.Max(pgMax, pg)
			pgMin = math.Min(pgMin, pg)
			if math.Abs(pg) <= 1e-12 {
				continue
			}
			old := alpha[i]
			alpha[i] = math.Max(old-g/qd[i], 0)
			d := (alpha[i] - old) * yi
			X[i].AddScaledDense(d, w)
			b += d
		}
		if pgMax-pgMin <= opts.Tol {
			break
		}
	}
	return w, b
}

// Classes returns the labels in score order.
func (m *Model) Classes() []string { return append([]string(nil), m.classes...) }

// Dim is the expected feature dimension.
func (m *Model) Dim() int {
	_, c := m.weights.Dims()
	return c
}

// Scores returns the decision value of every class for x.
func (m *Model) Scores(x sparse.Vector) ([]float64, error) {
	if m == nil || m.weights == nil {
		return nil, errors.New("svm: model not trained")
	}
	if x.MaxIndex() >= m.Dim() {
		return nil, fmt.Errorf("svm: feature index %d beyond dimension %d", x.MaxIndex(), m.Dim())
	}
	out := make([]float64, len(m.classes))
	for c := range m.classes {
		out[c] = x.DotDense(m.weights.RawRowView(c)) + m.intercepts[c]
	}
	return out, nil
}

// Predict returns the class with the highest decision value. Ties go to the
// class that sorts first.
func (m *Model) Predict(x sparse.Vector) (string, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return "", err
	}
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return m.classes[best], nil
}

// State is the serialisable form of a Model. Weights are row-major.
type State struct {
	Classes    []string
	Dim        int
	Weights    []float64
	Intercepts []float64
}

// State exports the model.
func (m *Model) State() State {
	rows, cols := m.weights.Dims()
	w := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		w = append(w, m.weights.RawRowView(r)...)
	}
	return State{
		Classes:    m.Classes(),
		Dim:        cols,
		Weights:    w,
		Intercepts: append([]float64(nil), m.intercepts...),
	}
}

// FromState rebuilds a Model.
func FromState(s State) (*Model, error) {
	if len(s.Classes) == 0 || s.Dim <= 0 {
		return nil, errors.New("svm state: empty model")
	}
	if len(s.Weights) != len(s.Classes)*s.Dim {
		return nil, fmt.Errorf("svm state: %d weights for %d classes x %d features", len(s.Weights), len(s.Classes), s.Dim)
	}
	if len(s.Intercepts) != len(s.Classes) {
		return nil, fmt.Errorf("svm state: %d intercepts for %d classes", len(s.Intercepts), len(s.Classes))
	}
	return &Model{
		classes:    append([]string(nil), s.Classes...),
		weights:    mat.NewDense(len(s.Classes), s.Dim, append([]float64(nil), s.Weights...)),
		intercepts: append([]float64(nil), s.Intercepts...),
	}, nil
}
