// Package evaluate scores a fitted classifier on held-out records.
package evaluate

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/Skufu/medirec/internal/dataset"
)

// DefaultTopErrors is the number of misclassification pairs kept in a report.
const DefaultTopErrors = 15

// Labeler predicts a label for symptom text.
type Labeler interface {
	Label(text string) (string, error)
}

// ClassMetrics holds per-class scores.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Misclassification counts how often True was predicted as Predicted.
type Misclassification struct {
	True      string
	Predicted string
	Count     int
}

// Report is the outcome of an evaluation.
type Report struct {
	Total       int
	Accuracy    float64
	Labels      []string
	Classes     []ClassMetrics
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	// Confusion[i][j] counts records of Labels[i] predicted as Labels[j].
	Confusion *mat.Dense
	Errors    []Misclassification
}

// Run predicts every record with l and computes the report.
func Run(l Labeler, records []dataset.Record) (*Report, error) {
	if len(records) == 0 {
		return nil, errors.New("evaluate: no held-out records")
	}
	yTrue := make([]string, len(records))
	yPred := make([]string, len(records))
	for i, r := range records {
		p, err := l.Label(r.Symptoms)
		if err != nil {
			return nil, fmt.Errorf("predict record %d: %w", i, err)
		}
		yTrue[i] = r.Disease
		yPred[i] = p
	}
	return Compute(yTrue, yPred)
}

// Compute builds a report from aligned true and predicted labels.
func Compute(yTrue, yPred []string) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("evaluate: %d true labels but %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, errors.New("evaluate: no labels")
	}

	set := dataset.NewLabelSet(yTrue...)
	for _, p := range yPred {
		set[p] = struct{}{}
	}
	labels := set.Sorted()
	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}

	cm := mat.NewDense(len(labels), len(labels), nil)
	correct := 0
	for i := range yTrue {
		r, c := pos[yTrue[i]], pos[yPred[i]]
		cm.Set(r, c, cm.At(r, c)+1)
		if r == c {
			correct++
		}
	}

	rep := &Report{
		Total:     len(yTrue),
		Accuracy:  float64(correct) / float64(len(yTrue)),
		Labels:    labels,
		Confusion: cm,
	}

	var sumP, sumR, sumF, wP, wR, wF float64
	for i, l := range labels {
		tp := cm.At(i, i)
		predicted := mat.Sum(cm.ColView(i))
		actual := mat.Sum(cm.RowView(i))
		m := ClassMetrics{
			Label:     l,
			Precision: safeDiv(tp, predicted),
			Recall:    safeDiv(tp, actual),
			Support:   int(actual),
		}
		m.F1 = safeDiv(2*m.Precision*m.Recall, m.Precision+m.Recall)
		rep.Classes = append(rep.Classes, m)

		sumP += m.Precision
		sumR += m.Recall
		sumF += m.F1
		wP += m.Precision * actual
		wR += m.Recall * actual
		wF += m.F1 * actual

		for j, other := range labels {
			if n := int(cm.At(i, j)); i != j && n > 0 {
				rep.Errors = append(rep.Errors, Misclassification{True: l, Predicted: other, Count: n})
			}
		}
	}
	n := float64(len(labels))
	total := float64(len(yTrue))
	rep.MacroAvg = ClassMetrics{Label: "macro avg", Precision: sumP / n, Recall: sumR / n, F1: sumF / n, Support: len(yTrue)}
	rep.WeightedAvg = ClassMetrics{Label: "weighted avg", Precision: wP / total, Recall: wR / total, F1: wF / total, Support: len(yTrue)}

	sort.SliceStable(rep.Errors, func(a, b int) bool {
		ea, eb := rep.Errors[a], rep.Errors[b]
		if ea.Count != eb.Count {
			return ea.Count > eb.Count
		}
		if ea.True != eb.True {
			return ea.True < eb.True
		}
		return ea.Predicted < eb.Predicted
	})
	return rep, nil
}

// TopErrors returns at most n of the most frequent misclassifications.
func (r *Report) TopErrors(n int) []Misclassification {
	if n < 0 || n > len(r.Errors) {
		n = len(r.Errors)
	}
	return r.Errors[:n]
}

// WriteText renders the report in a fixed-width table.
func (r *Report) WriteText(w io.Writer, topErrors int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Accuracy: %.2f%% (%d records)\n\n", r.Accuracy*100, r.Total)
	fmt.Fprintln(tw, "\tprecision\trecall\tf1-score\tsupport\t")
	for _, m := range append(append([]ClassMetrics(nil), r.Classes...), r.MacroAvg, r.WeightedAvg) {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	top := r.TopErrors(topErrors)
	if len(top) == 0 {
		_, err := fmt.Fprintln(w, "\nNo misclassifications found.")
		return err
	}
	fmt.Fprintf(w, "\nTop %d errors (actual -> predicted):\n", len(top))
	for _, e := range top {
		if _, err := fmt.Fprintf(w, "%s -> %s (%d)\n", e.True, e.Predicted, e.Count); err != nil {
			return err
		}
	}
	return nil
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
