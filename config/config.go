// Package config - Evaluation run configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-ml-eval/dataset"
	"github.com/nvr-ai/go-ml-eval/eval"
)

// Config describes one evaluation run: where the annotation files live, how
// class ids map to names, and how AP is computed.
type Config struct {
	// Labels maps numeric class ids to class names.
	Labels dataset.Labels `yaml:"labels"`
	// GroundTruthDir holds the per-image ground-truth annotation files.
	GroundTruthDir string `yaml:"gt_dir"`
	// DetectionsDir holds the per-image detection files.
	DetectionsDir string `yaml:"det_dir"`
	// IoUThreshold is the matching threshold. Zero selects the 0.5
	// default.
	IoUThreshold float32 `yaml:"iou_threshold"`
	// Method is the AP integration policy, "area" or "interp".
	Method string `yaml:"method"`
	// Workers is the number of classes evaluated concurrently.
	Workers int `yaml:"workers"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks the config for problems that would otherwise surface
// halfway through a run.
func (c *Config) Validate() error {
	if len(c.Labels) == 0 {
		return errors.New("labels table is empty")
	}
	if c.GroundTruthDir == "" {
		return errors.New("gt_dir is required")
	}
	if c.DetectionsDir == "" {
		return errors.New("det_dir is required")
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Errorf("iou_threshold %v outside (0, 1]", c.IoUThreshold)
	}
	if _, err := eval.ParseMethod(c.Method); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// EvalOptions converts the config into engine options. Validate must have
// passed.
func (c *Config) EvalOptions() eval.Options {
	method, _ := eval.ParseMethod(c.Method)
	return eval.Options{
		IoUThreshold: c.IoUThreshold,
		Method:       method,
		Workers:      c.Workers,
	}
}
