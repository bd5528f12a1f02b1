package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosubgroup/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DATABASE_URL", "PORT", "BEAM_WIDTH", "PERCENTILE_SCHEDULE", "READ_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10, cfg.Search.BeamWidth)
	assert.Equal(t, 2, cfg.Search.Depth)
	assert.Equal(t, "reciprocal", cfg.Search.Schedule)
	assert.InDelta(t, 0.02, cfg.Search.MinCoverage, 1e-12)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/subgroups?sslmode=disable")
	t.Setenv("BEAM_WIDTH", "25")
	t.Setenv("ENSURE_DIVERSITY", "true")
	t.Setenv("DEPTH", "not-a-number")
	t.Setenv("PERMUTATIONS", "500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Search.BeamWidth)
	assert.True(t, cfg.Search.EnsureDiversity)
	assert.Equal(t, 500, cfg.Search.Permutations)
	assert.Equal(t, 2, cfg.Search.Depth, "unparseable values fall back to the default")
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PERCENTILE_SCHEDULE", "uniform")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PERCENTILE_SCHEDULE", "even")
	t.Setenv("PERMUTATIONS", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestParseTask(t *testing.T) {
	defaults := LoadSearchConfig()
	task, err := ParseTask([]byte(`
dataset: data/ionosphere.csv
target: target
standardize: true
reader:
  no_header: true
  kinds:
    attribute1: categorical
search:
  depth: 3
  schedule: even
  features: [attribute0, attribute1]
`), defaults)
	require.NoError(t, err)

	assert.Equal(t, "data/ionosphere.csv", task.Dataset)
	assert.True(t, task.Standardize)
	assert.True(t, task.Reader.NoHeader)
	assert.Equal(t, "categorical", task.Reader.Kinds["attribute1"])
	assert.Equal(t, 3, task.Search.Depth)
	assert.Equal(t, "even", task.Search.Schedule)
	assert.Equal(t, defaults.BeamWidth, task.Search.BeamWidth, "unset fields keep the defaults")
	assert.Equal(t, []string{"attribute0", "attribute1"}, task.Search.Features)
}

func TestParseTask_Rejects(t *testing.T) {
	defaults := LoadSearchConfig()

	_, err := ParseTask([]byte("target: target\n"), defaults)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err), "dataset is required")

	_, err = ParseTask([]byte("dataset: a.csv\ntarget: t\nsearch:\n  beam_widht: 3\n"), defaults)
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ParseTask([]byte("dataset: a.csv\ntarget: t\nsearch:\n  depth: 0\n"), defaults)
	assert.Error(t, err)
}

func TestLoadTask_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: a.csv\ntarget: t\n"), 0o644))

	task, err := LoadTask(path, LoadSearchConfig())
	require.NoError(t, err)
	assert.Equal(t, "a.csv", task.Dataset)

	_, err = LoadTask(filepath.Join(t.TempDir(), "missing.yaml"), LoadSearchConfig())
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
}
