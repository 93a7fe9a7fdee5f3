package svm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/medirec/internal/sparse"
)

func v(pairs ...float64) sparse.Vector {
	m := make(map[int]float64)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[int(pairs[i])] = pairs[i+1]
	}
	return sparse.FromMap(m)
}

func trainingSet() ([]sparse.Vector, []string) {
	X := []sparse.Vector{
		v(0, 1), v(0, 0.9, 3, 0.1),
		v(1, 1), v(1, 0.8, 3, 0.2),
		v(2, 1), v(2, 0.7, 3, 0.3),
	}
	y := []string{"alpha", "alpha", "beta", "beta", "gamma", "gamma"}
	return X, y
}

func TestTrainSeparatesClasses(t *testing.T) {
	X, y := trainingSet()
	m, err := Train(X, y, 4, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, m.Classes())
	for i, x := range X {
		got, err := m.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, y[i], got)
	}

	got, err := m.Predict(v(1, 0.5))
	require.NoError(t, err)
	assert.Equal(t, "beta", got)
}

func TestTrainTwoClasses(t *testing.T) {
	X := []sparse.Vector{v(0, 1), v(0, 1), v(1, 1), v(1, 1)}
	y := []string{"fungal infection", "fungal infection", "heart disease", "heart disease"}

	m, err := Train(X, y, 2, DefaultOptions())
	require.NoError(t, err)

	got, _ := m.Predict(v(0, 0.7))
	assert.Equal(t, "fungal infection", got)
	got, _ = m.Predict(v(1, 0.7))
	assert.Equal(t, "heart disease", got)
}

func TestPredictOnlyReturnsTrainedClasses(t *testing.T) {
	X, y := trainingSet()
	m, err := Train(X, y, 4, DefaultOptions())
	require.NoError(t, err)

	known := map[string]bool{"alpha": true, "beta": true, "gamma": true}
	for _, x := range []sparse.Vector{{}, v(3, 1), v(0, 1, 1, 1, 2, 1)} {
		got, err := m.Predict(x)
		require.NoError(t, err)
		assert.True(t, known[got], "unexpected label %q", got)
	}
}

func TestTrainErrors(t *testing.T) {
	_, err := Train(nil, nil, 3, DefaultOptions())
	assert.Error(t, err)

	_, err = Train([]sparse.Vector{v(0, 1)}, []string{"a", "b"}, 3, DefaultOptions())
	assert.Error(t, err)

	_, err = Train([]sparse.Vector{v(0, 1), v(1, 1)}, []string{"a", "a"}, 3, DefaultOptions())
	assert.Error(t, err)

	_, err = Train([]sparse.Vector{v(5, 1), v(1, 1)}, []string{"a", "b"}, 3, DefaultOptions())
	assert.Error(t, err)
}

func TestScoresRejectsOutOfRangeFeatures(t *testing.T) {
	X, y := trainingSet()
	m, err := Train(X, y, 4, DefaultOptions())
	require.NoError(t, err)

	_, err = m.Scores(v(10, 1))
	assert.Error(t, err)
}

func TestStateRoundTrip(t *testing.T) {
	X, y := trainingSet()
	m, err := Train(X, y, 4, DefaultOptions())
	require.NoError(t, err)

	restored, err := FromState(m.State())
	require.NoError(t, err)

	for _, x := range X {
		a, _ := m.Scores(x)
		b, _ := restored.Scores(x)
		assert.Equal(t, a, b)
	}
}

func TestFromStateValidates(t *testing.T) {
	_, err := FromState(State{})
	assert.Error(t, err)

	_, err = FromState(State{Classes: []string{"a", "b"}, Dim: 2, Weights: []float64{1}, Intercepts: []float64{0, 0}})
	assert.Error(t, err)

	_, err = FromState(State{Classes: []string{"a", "b"}, Dim: 1, Weights: []float64{1, 2}, Intercepts: []float64{0}})
	assert.Error(t, err)
}
