package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-ml-eval/eval"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
labels:
  0: person
  1: car
gt_dir: /data/test/annotations
det_dir: /data/test/detections
iou_threshold: 0.5
method: interp
workers: 4
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "person", cfg.Labels[0])
	assert.Equal(t, "car", cfg.Labels[1])
	assert.Equal(t, float32(0.5), cfg.IoUThreshold)
	assert.Equal(t, 4, cfg.Workers)

	opts := cfg.EvalOptions()
	assert.Equal(t, eval.MethodInterp, opts.Method)
	assert.Equal(t, float32(0.5), opts.IoUThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown method",
			mutate:  func(c *Config) { c.Method = "trapezoid" },
			wantErr: "trapezoid",
		},
		{
			name:    "empty labels",
			mutate:  func(c *Config) { c.Labels = nil },
			wantErr: "labels",
		},
		{
			name:    "missing gt dir",
			mutate:  func(c *Config) { c.GroundTruthDir = "" },
			wantErr: "gt_dir",
		},
		{
			name:    "missing det dir",
			mutate:  func(c *Config) { c.DetectionsDir = "" },
			wantErr: "det_dir",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.IoUThreshold = 1.2 },
			wantErr: "iou_threshold",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Workers = -1 },
			wantErr: "workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfig))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
