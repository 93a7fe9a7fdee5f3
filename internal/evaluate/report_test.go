package evaluate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/medirec/internal/dataset"
)

type mapLabeler map[string]string

func (m mapLabeler) Label(text string) (string, error) {
	if l, ok := m[text]; ok {
		return l, nil
	}
	return "", errors.New("unknown")
}

func TestComputePerfect(t *testing.T) {
	rep, err := Compute([]string{"a", "b", "b"}, []string{"a", "b", "b"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, rep.Accuracy)
	assert.Empty(t, rep.Errors)
	assert.Equal(t, []string{"a", "b"}, rep.Labels)
	assert.Equal(t, 2.0, rep.Confusion.At(1, 1))
}

func TestComputeZeroDivisionSafe(t *testing.T) {
	// "c" is predicted but never true; "a" is true but never predicted.
	rep, err := Compute([]string{"a", "b"}, []string{"c", "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, rep.Labels)
	byLabel := map[string]ClassMetrics{}
	for _, m := range rep.Classes {
		byLabel[m.Label] = m
	}
	assert.Equal(t, ClassMetrics{Label: "a", Support: 1}, byLabel["a"])
	assert.Equal(t, ClassMetrics{Label: "c", Support: 0}, byLabel["c"])
	assert.Equal(t, 1.0, byLabel["b"].F1)
	assert.Equal(t, 0.5, rep.Accuracy)
	assert.InDelta(t, 1.0/3, rep.MacroAvg.F1, 1e-12)
	assert.InDelta(t, 0.5, rep.WeightedAvg.F1, 1e-12)
}

func TestTopErrorsOrdering(t *testing.T) {
	yTrue := []string{"flu", "flu", "flu", "cold", "cold", "allergy", "allergy"}
	yPred := []string{"cold", "cold", "allergy", "flu", "flu", "cold", "flu"}

	rep, err := Compute(yTrue, yPred)
	require.NoError(t, err)

	assert.Equal(t, []Misclassification{
		{True: "cold", Predicted: "flu", Count: 2},
		{True: "flu", Predicted: "cold", Count: 2},
		{True: "allergy", Predicted: "cold", Count: 1},
	}, rep.TopErrors(3))
	assert.Len(t, rep.TopErrors(100), 5)
}

func TestComputeErrors(t *testing.T) {
	_, err := Compute([]string{"a"}, nil)
	assert.Error(t, err)
	_, err = Compute(nil, nil)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	l := mapLabeler{"itching": "fungal infection", "chest pain": "fungal infection"}
	records := []dataset.Record{
		{Symptoms: "itching", Disease: "fungal infection"},
		{Symptoms: "chest pain", Disease: "heart disease"},
	}

	rep, err := Run(l, records)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rep.Accuracy)
	assert.Equal(t, []Misclassification{{True: "heart disease", Predicted: "fungal infection", Count: 1}}, rep.Errors)

	_, err = Run(l, []dataset.Record{{Symptoms: "??", Disease: "x"}})
	assert.Error(t, err)

	_, err = Run(l, nil)
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	rep, err := Compute([]string{"flu", "cold"}, []string{"flu", "flu"})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, rep.WriteText(&sb, DefaultTopErrors))
	out := sb.String()
	assert.Contains(t, out, "Accuracy: 50.00%")
	assert.Contains(t, out, "weighted avg")
	assert.Contains(t, out, "cold -> flu (1)")

	perfect, err := Compute([]string{"flu"}, []string{"flu"})
	require.NoError(t, err)
	sb.Reset()
	require.NoError(t, perfect.WriteText(&sb, 5))
	assert.Contains(t, sb.String(), "No misclassifications")
}
