// Command evalmap computes per-class average precision and mAP for a set of
// object detections against ground-truth annotations.
package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-ml-eval/config"
	"github.com/nvr-ai/go-ml-eval/dataset"
	"github.com/nvr-ai/go-ml-eval/eval"
)

func main() {
	parser := argparse.NewParser("evalmap", "Compute per-class AP and mean AP for object detections")
	configPath := parser.String("c", "config", &argparse.Options{Help: "Path to evaluation config YAML", Required: true})
	iou := parser.Float("", "iou", &argparse.Options{Help: "Override the config IoU threshold", Default: 0.0})
	method := parser.Selector("m", "method", []string{"area", "interp"}, &argparse.Options{Help: "Override the config AP method"})
	workers := parser.Int("w", "workers", &argparse.Options{Help: "Override the number of classes evaluated concurrently", Default: 0})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Enable debug logging"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if *iou != 0 {
		cfg.IoUThreshold = float32(*iou)
	}
	if *method != "" {
		cfg.Method = *method
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	batch, err := dataset.LoadDirectories(cfg.GroundTruthDir, cfg.DetectionsDir, cfg.Labels)
	if err != nil {
		log.WithError(err).Fatal("failed to load dataset")
	}
	log.WithFields(logrus.Fields{
		"images":  len(batch.Stems),
		"iou":     cfg.IoUThreshold,
		"method":  cfg.Method,
		"gt_dir":  cfg.GroundTruthDir,
		"det_dir": cfg.DetectionsDir,
	}).Info("dataset loaded")

	result, err := eval.Evaluate(batch.Predictions, batch.GroundTruth, cfg.EvalOptions())
	if err != nil {
		log.WithError(err).Fatal("evaluation failed")
	}

	fmt.Println("Class Wise Average Precisions")
	for _, label := range result.Classes {
		ap := result.PerClass[label]
		if ap.Defined() {
			fmt.Printf("AP for class %s = %.4f\n", label, ap.AP)
		} else {
			fmt.Printf("AP for class %s = undefined (no ground truth)\n", label)
		}
	}
	fmt.Printf("Mean Average Precision : %.4f\n", result.MeanAP)
}
