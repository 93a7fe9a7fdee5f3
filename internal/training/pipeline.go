// Package training runs the offline job: load and consolidate datasets, fit
// the model, evaluate it on held-out data and save the artifact.
package training

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/balance"
	"github.com/Skufu/medirec/internal/config"
	"github.com/Skufu/medirec/internal/dataset"
	"github.com/Skufu/medirec/internal/evaluate"
	"github.com/Skufu/medirec/internal/logging"
	"github.com/Skufu/medirec/internal/model"
	"github.com/Skufu/medirec/internal/svm"
	"github.com/Skufu/medirec/internal/vectorize"
)

// Outcome summarises a finished run.
type Outcome struct {
	Artifact     *model.Artifact
	Stats        model.FitStats
	Report       *evaluate.Report
	TrainRecords int
	TestRecords  int
	Labels       int
	Output       string
	Duration     time.Duration
}

// Evaluated reports whether held-out metrics were computed.
func (o *Outcome) Evaluated() bool { return o.Report != nil }

// Run executes the whole job described by cfg. ctx is checked between stages.
func Run(ctx context.Context, cfg *config.Training, log *logrus.Entry) (*Outcome, error) {
	log = logging.OrDiscard(log).WithField("component", "training")
	start := time.Now()

	sources, err := Sources(cfg.Sources)
	if err != nil {
		return nil, err
	}
	raw, err := dataset.LoadAndMerge(sources, log)
	if err != nil {
		return nil, err
	}
	train, labels := dataset.Consolidate(raw, cfg.MinLabelCount)
	log.WithFields(logrus.Fields{
		"loaded":    len(raw),
		"retained":  len(train),
		"labels":    len(labels),
		"min_count": cfg.MinLabelCount,
	}).Info("consolidated training data")
	if len(train) == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	test, err := loadHeldOut(cfg.Test, labels, log)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	art, stats, err := model.Fit(train, FitOptions(cfg), log)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Outcome{
		Artifact:     art,
		Stats:        stats,
		TrainRecords: len(train),
		TestRecords:  len(test),
		Labels:       len(labels),
		Output:       cfg.Output,
	}

	if len(test) == 0 {
		log.Warn("no held-out records, skipping evaluation")
	} else {
		report, err := evaluate.Run(art, test)
		if err != nil {
			return nil, fmt.Errorf("evaluate: %w", err)
		}
		art.Metadata.Accuracy = report.Accuracy
		out.Report = report
		log.WithFields(logrus.Fields{
			"accuracy": fmt.Sprintf("%.4f", report.Accuracy),
			"records":  report.Total,
			"errors":   len(report.Errors),
		}).Info("evaluated on held-out data")
		if cfg.Report != "" {
			if err := writeReport(cfg.Report, report, cfg.TopErrors); err != nil {
				return nil, err
			}
		}
	}

	if err := art.Save(cfg.Output); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	out.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"path":     cfg.Output,
		"duration": out.Duration.Round(time.Millisecond),
	}).Info("model artifact saved")
	return out, nil
}

// Sources builds dataset sources from their configuration.
func Sources(cfgs []config.SourceConfig) ([]dataset.Source, error) {
	out := make([]dataset.Source, 0, len(cfgs))
	for _, c := range cfgs {
		src, err := source(c)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func source(c config.SourceConfig) (dataset.Source, error) {
	schema, err := dataset.NewSchema(c.Kind, dataset.SchemaOptions{
		TextColumn:     c.TextColumn,
		LabelColumn:    c.LabelColumn,
		SymptomColumns: c.SymptomColumns,
		Separator:      c.Separator,
		Pattern:        c.Pattern,
	})
	if err != nil {
		return dataset.Source{}, fmt.Errorf("source %s: %w", c.Name, err)
	}
	return dataset.Source{Name: c.Name, Path: c.Path, Schema: schema}, nil
}

// FitOptions maps the training configuration onto model.FitOptions.
func FitOptions(cfg *config.Training) model.FitOptions {
	opts := model.DefaultFitOptions()
	opts.Vectorizer = vectorize.Options{
		MinN:        cfg.Vectorizer.MinNGram,
		MaxN:        cfg.Vectorizer.MaxNGram,
		MaxFeatures: cfg.Vectorizer.MaxFeatures,
		StopWords:   cfg.Vectorizer.StopWords == nil || *cfg.Vectorizer.StopWords,
	}
	opts.Balance = balance.Policy{
		MinMinority:    cfg.Balance.MinMinority,
		NeighborOffset: cfg.Balance.NeighborOffset,
	}
	opts.Balancing = cfg.Balance.Enabled == nil || *cfg.Balance.Enabled
	opts.Classifier = svm.Options{
		C:       cfg.Classifier.C,
		Tol:     cfg.Classifier.Tol,
		MaxIter: cfg.Classifier.MaxIter,
		Seed:    cfg.Classifier.Seed,
	}
	return opts
}

func loadHeldOut(c *config.SourceConfig, labels dataset.LabelSet, log *logrus.Entry) ([]dataset.Record, error) {
	if c == nil {
		return nil, nil
	}
	src, err := source(*c)
	if err != nil {
		return nil, err
	}
	entry := log.WithFields(logrus.Fields{"source": src.Name, "path": src.Path})
	records, err := dataset.LoadSource(src)
	if errors.Is(err, dataset.ErrSourceMissing) {
		entry.Warn("held-out source not found")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load held-out source %s: %w", src.Name, err)
	}
	kept := dataset.FilterToLabels(records, labels)
	entry.WithFields(logrus.Fields{
		"loaded":  len(records),
		"removed": len(records) - len(kept),
	}).Info("loaded held-out data")
	return kept, nil
}

func writeReport(path string, r *evaluate.Report, topErrors int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := r.WriteText(f, topErrors); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
