// Package vectorize fits and applies the TF-IDF transform over symptom text.
// A fitted Vectorizer is immutable: Transform never extends the vocabulary.
package vectorize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Skufu/medirec/internal/sparse"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Options controls fitting.
type Options struct {
	MinN        int
	MaxN        int
	MaxFeatures int
	StopWords   bool
}

// DefaultOptions are unigrams and bigrams, English stop words removed, at most
// 5000 terms.
func DefaultOptions() Options {
	return Options{MinN: 1, MaxN: 2, MaxFeatures: 5000, StopWords: true}
}

// ErrNotFitted is returned by Transform on a vectorizer without vocabulary.
var ErrNotFitted = errors.New("vectorizer not fitted")

// Vectorizer is a fitted TF-IDF transform.
type Vectorizer struct {
	opts  Options
	terms []string
	index map[string]int
	idf   []float64
}

// Fit learns the vocabulary and IDF weights from docs.
func Fit(docs []string, opts Options) (*Vectorizer, error) {
	if opts.MinN < 1 || opts.MaxN < opts.MinN {
		return nil, fmt.Errorf("invalid n-gram range [%d,%d]", opts.MinN, opts.MaxN)
	}
	if len(docs) == 0 {
		return nil, errors.New("empty corpus")
	}

	v := &Vectorizer{opts: opts}
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, g := range v.analyze(doc) {
			tf[g]++
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				df[g]++
			}
		}
	}
	if len(df) == 0 {
		return nil, errors.New("no terms found in corpus")
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	if opts.MaxFeatures > 0 && len(terms) > opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:opts.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.terms = terms
	v.index = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, t := range terms {
		v.index[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v, nil
}

// Dim is the feature dimension.
func (v *Vectorizer) Dim() int { return len(v.terms) }

// Options returns the fit options.
func (v *Vectorizer) Options() Options { return v.opts }

// Terms returns a copy of the vocabulary in index order.
func (v *Vectorizer) Terms() []string { return append([]string(nil), v.terms...) }

// Index returns the feature index of term.
func (v *Vectorizer) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Transform maps text to an L2-normalised TF-IDF vector. Unknown terms are
// ignored; text with no known terms yields the zero vector.
func (v *Vectorizer) Transform(text string) (sparse.Vector, error) {
	if v == nil || len(v.terms) == 0 {
		return sparse.Vector{}, ErrNotFitted
	}
	counts := make(map[int]float64)
	for _, g := range v.analyze(text) {
		if i, ok := v.index[g]; ok {
			counts[i]++
		}
	}
	for i := range counts {
		counts[i] *= v.idf[i]
	}
	return sparse.FromMap(counts).Normalize(), nil
}

// TransformAll applies Transform to every doc.
func (v *Vectorizer) TransformAll(docs []string) ([]sparse.Vector, error) {
	out := make([]sparse.Vector, len(docs))
	for i, d := range docs {
		x, err := v.Transform(d)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (v *Vectorizer) analyze(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if v.opts.StopWords {
			if _, stop := englishStopWords[t]; stop {
				continue
			}
		}
		tokens = append(tokens, t)
	}
	var grams []string
	for n := v.opts.MinN; n <= v.opts.MaxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// State is the serialisable form of a fitted Vectorizer.
type State struct {
	Terms       []string
	IDF         []float64
	MinN        int
	MaxN        int
	MaxFeatures int
	StopWords   bool
}

// State exports the fitted state.
func (v *Vectorizer) State() State {
	return State{
		Terms:       v.Terms(),
		IDF:         append([]float64(nil), v.idf...),
		MinN:        v.opts.MinN,
		MaxN:        v.opts.MaxN,
		MaxFeatures: v.opts.MaxFeatures,
		StopWords:   v.opts.StopWords,
	}
}

// FromState rebuilds a Vectorizer from State.
func FromState(s State) (*Vectorizer, error) {
	if len(s.Terms) != len(s.IDF) {
		return nil, fmt.Errorf("vectorizer state: %d terms but %d idf weights", len(s.Terms), len(s.IDF))
	}
	if len(s.Terms) == 0 {
		return nil, ErrNotFitted
	}
	v := &Vectorizer{
		opts:  Options{MinN: s.MinN, MaxN: s.MaxN, MaxFeatures: s.MaxFeatures, StopWords: s.StopWords},
		terms: append([]string(nil), s.Terms...),
		index: make(map[string]int, len(s.Terms)),
		idf:   append([]float64(nil), s.IDF...),
	}
	for i, t := range v.terms {
		if _, dup := v.index[t]; dup {
			return nil, fmt.Errorf("vectorizer state: duplicate term %q", t)
		}
		v.index[t] = i
	}
	return v, nil
}
