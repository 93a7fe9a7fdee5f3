// Package predict is the request-time entry point: text in, disease label or
// a typed failure out. It never panics or returns bare errors to callers.
package predict

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/logging"
	"github.com/Skufu/medirec/internal/textnorm"
)

// ErrInferenceFailure wraps any error raised while vectorizing or classifying.
var ErrInferenceFailure = errors.New("inference failure")

// Status tells callers whether Result.Label may be used.
type Status int

const (
	StatusOK Status = iota
	// StatusUnavailable: no model was loaded at startup.
	StatusUnavailable
	// StatusFailed: the model was present but prediction failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of one prediction.
type Result struct {
	Label  string
	Raw    string
	Status Status
	Err    error
}

// OK reports whether Label is a real prediction.
func (r Result) OK() bool { return r.Status == StatusOK }

// Model is the fitted pipeline the service wraps.
type Model interface {
	Label(text string) (string, error)
}

// Service predicts diseases from free text. A Service with a nil model runs
// in degraded mode. It holds no mutable state and is safe for concurrent use.
type Service struct {
	model Model
	log   *logrus.Entry
}

// NewService wraps m. m may be nil.
func NewService(m Model, log *logrus.Entry) *Service {
	return &Service{model: m, log: logging.OrDiscard(log)}
}

// Available reports whether a model is loaded.
func (s *Service) Available() bool {
	return s != nil && s.model != nil
}

// Predict returns the title-cased disease for text.
func (s *Service) Predict(text string) (res Result) {
	if !s.Available() {
		return Result{Status: StatusUnavailable}
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("prediction panicked")
			res = Result{Status: StatusFailed, Err: fmt.Errorf("%w: %v", ErrInferenceFailure, r)}
		}
	}()

	label, err := s.model.Label(text)
	if err != nil {
		s.log.WithError(err).Warn("prediction failed")
		return Result{Status: StatusFailed, Err: fmt.Errorf("%w: %v", ErrInferenceFailure, err)}
	}
	label = textnorm.Normalize(label)
	if label == "" {
		return Result{Status: StatusFailed, Err: fmt.Errorf("%w: empty label", ErrInferenceFailure)}
	}
	return Result{Label: textnorm.Title(label), Raw: label, Status: StatusOK}
}
