package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/config"
	"github.com/Skufu/medirec/internal/dataset"
	"github.com/Skufu/medirec/internal/logging"
	"github.com/Skufu/medirec/internal/training"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", config.Getenv("TRAIN_CONFIG", "train.yaml"), "training config file")
	output := flag.String("out", "", "override the artifact output path")
	writeDefaults := flag.Bool("write-config", false, "write the default config to -config and exit")
	flag.Parse()

	logger := logging.New(config.Getenv("LOG_LEVEL", "info"), config.Getenv("LOG_FORMAT", "text"))
	log := logger.WithField("cmd", "train")

	if *writeDefaults {
		if err := config.SaveTraining(*configPath, config.DefaultTraining()); err != nil {
			log.WithError(err).Fatal("write default config")
		}
		log.WithField("path", *configPath).Info("default config written")
		return
	}

	cfg, err := config.LoadTraining(*configPath)
	if err != nil {
		log.WithError(err).Fatal("config error")
	}
	if *output != "" {
		cfg.Output = *output
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := training.Run(ctx, cfg, log)
	if err != nil {
		if errors.Is(err, dataset.ErrEmptyDataset) {
			log.Error("no usable training data; check source paths and min_label_count")
		}
		log.WithError(err).Error("training failed")
		stop()
		os.Exit(1)
	}

	if out.Evaluated() {
		if err := out.Report.WriteText(os.Stdout, cfg.TopErrors); err != nil {
			log.WithError(err).Warn("print report")
		}
	}
	log.WithFields(logrus.Fields{
		"records":  out.TrainRecords,
		"labels":   out.Labels,
		"features": out.Artifact.Metadata.Features,
		"output":   out.Output,
		"duration": out.Duration.Round(time.Millisecond),
	}).Info("training finished")
}
