package predict

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/medirec/internal/dataset"
	"github.com/Skufu/medirec/internal/model"
)

type stubModel struct {
	label string
	err   error
	panic bool
}

func (s stubModel) Label(string) (string, error) {
	if s.panic {
		var m map[string]int
		m["boom"]++
	}
	return s.label, s.err
}

func TestDegradedModeWithoutModel(t *testing.T) {
	svc := NewService(nil, nil)

	res := svc.Predict("fever and cough")
	assert.False(t, res.OK())
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Empty(t, res.Label)
	assert.False(t, svc.Available())

	var nilSvc *Service
	assert.Equal(t, StatusUnavailable, nilSvc.Predict("fever").Status)
}

func TestPredictTitleCases(t *testing.T) {
	res := NewService(stubModel{label: "fungal infection"}, nil).Predict("itching")
	require.True(t, res.OK())
	assert.Equal(t, "Fungal Infection", res.Label)
	assert.Equal(t, "fungal infection", res.Raw)
}

func TestPredictErrorBecomesFailure(t *testing.T) {
	res := NewService(stubModel{err: errors.New("bad state")}, nil).Predict("itching")
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, errors.Is(res.Err, ErrInferenceFailure))
}

func TestPredictPanicBecomesFailure(t *testing.T) {
	res := NewService(stubModel{panic: true}, nil).Predict("itching")
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, errors.Is(res.Err, ErrInferenceFailure))
}

func TestPredictEndToEnd(t *testing.T) {
	records := []dataset.Record{
		{Symptoms: "itching skin rash", Disease: "fungal infection"},
		{Symptoms: "itching skin rash", Disease: "fungal infection"},
		{Symptoms: "chest pain shortness of breath", Disease: "heart disease"},
		{Symptoms: "chest pain shortness of breath", Disease: "heart disease"},
	}
	art, _, err := model.Fit(records, model.DefaultFitOptions(), nil)
	require.NoError(t, err)

	svc := NewService(art, nil)
	res := svc.Predict("severe itching and rash on skin")
	require.True(t, res.OK(), "err: %v", res.Err)
	assert.Equal(t, "Fungal Infection", res.Label)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Heart Disease", svc.Predict("chest pain").Label)
		}()
	}
	wg.Wait()
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "unavailable", StatusUnavailable.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
