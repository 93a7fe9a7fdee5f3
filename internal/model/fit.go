package model

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/balance"
	"github.com/Skufu/medirec/internal/dataset"
	"github.com/Skufu/medirec/internal/logging"
	"github.com/Skufu/medirec/internal/svm"
	"github.com/Skufu/medirec/internal/textnorm"
	"github.com/Skufu/medirec/internal/vectorize"
)

// FitOptions groups the knobs of every training stage.
type FitOptions struct {
	Vectorizer vectorize.Options
	Balance    balance.Policy
	Balancing  bool
	Classifier svm.Options
}

// DefaultFitOptions returns the production defaults.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		Vectorizer: vectorize.DefaultOptions(),
		Balance:    balance.DefaultPolicy(),
		Balancing:  true,
		Classifier: svm.DefaultOptions(),
	}
}

// FitStats describes what Fit did.
type FitStats struct {
	OriginalSize     int
	TrainedSize      int
	MinorityCount    int
	Neighbors        int
	BalancingSkipped bool
	Duration         time.Duration
}

// Fit vectorizes records, balances classes and trains the classifier. The
// returned artifact is ready to persist.
func Fit(records []dataset.Record, opts FitOptions, log *logrus.Entry) (*Artifact, FitStats, error) {
	log = logging.OrDiscard(log)
	start := time.Now()
	stats := FitStats{OriginalSize: len(records)}

	if len(records) == 0 {
		return nil, stats, dataset.ErrEmptyDataset
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = textnorm.Normalize(r.Symptoms)
	}
	vec, err := vectorize.Fit(texts, opts.Vectorizer)
	if err != nil {
		return nil, stats, fmt.Errorf("fit vectorizer: %w", err)
	}
	log.WithField("features", vec.Dim()).Info("vectorizer fitted")

	X, err := vec.TransformAll(texts)
	if err != nil {
		return nil, stats, fmt.Errorf("transform training text: %w", err)
	}
	y := dataset.Labels(records)

	stats.MinorityCount = balance.MinorityCount(y)
	k, ok := opts.Balance.Neighbors(stats.MinorityCount)
	switch {
	case !opts.Balancing:
		stats.BalancingSkipped = true
		log.Info("class balancing disabled")
	case !ok:
		stats.BalancingSkipped = true
		log.WithField("minority", stats.MinorityCount).Warn("smallest class too small for oversampling, training on unbalanced data")
	default:
		stats.Neighbors = k
		X, y = balance.SMOTE{K: k, Seed: opts.Classifier.Seed}.Resample(X, y)
		log.WithFields(logrus.Fields{
			"minority":  stats.MinorityCount,
			"neighbors": k,
			"original":  stats.OriginalSize,
			"resampled": len(X),
		}).Info("applied SMOTE")
	}
	stats.TrainedSize = len(X)

	clf, err := svm.Train(X, y, vec.Dim(), opts.Classifier)
	if err != nil {
		return nil, stats, fmt.Errorf("train classifier: %w", err)
	}
	stats.Duration = time.Since(start)

	art := &Artifact{
		Vectorizer: vec,
		Classifier: clf,
		Metadata: Metadata{
			CreatedAt:     time.Now().UTC(),
			Labels:        clf.Classes(),
			TrainRecords:  stats.OriginalSize,
			TrainedRows:   stats.TrainedSize,
			Features:      vec.Dim(),
			SMOTENeighbor: stats.Neighbors,
			Accuracy:      -1,
		},
	}
	return art, stats, nil
}
