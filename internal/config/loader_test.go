package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
panel: GDSC
input:
  response_path: "/data/GDSC_prediction.csv"
  smiles_path: "/data/new.txt"
  header_rows: 2
output:
  dir: "/tmp/out"
reference:
  gdsc_map_path: "/data/GDSC_map.csv"
fingerprint:
  size: 1024
regression:
  c: 2.5
  epsilon: 0.05
  concurrency: 4
log:
  level: debug
  format: json
storage:
  minio:
    enabled: true
    endpoint: "localhost:9000"
    bucket: "predictions"
`

func createTempConfigFile(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "GDSC", cfg.Panel)
	assert.Equal(t, "/data/GDSC_prediction.csv", cfg.Input.ResponsePath)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, "/data/GDSC_map.csv", cfg.Reference.GDSCMapPath)
	assert.Equal(t, DefaultPRISMMapPath, cfg.Reference.PRISMMapPath)
	assert.Equal(t, 1024, cfg.Fingerprint.Size)
	assert.Equal(t, DefaultMaxPath, cfg.Fingerprint.MaxPath)
	assert.Equal(t, 2.5, cfg.Regression.C)
	assert.Equal(t, 0.05, cfg.Regression.Epsilon)
	assert.Equal(t, 4, cfg.Regression.Concurrency)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Storage.MinIO.Enabled)
	assert.Equal(t, DefaultMinIOPrefix, cfg.Storage.MinIO.Prefix)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "panel: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "molecule:\n  invalid_policy: ignore\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "molecule.invalid_policy")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("NEWDRUG_REGRESSION_C", "7")
	t.Setenv("NEWDRUG_PANEL", "PRISM")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7.0, cfg.Regression.C)
	assert.Equal(t, "PRISM", cfg.Panel)
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultPanel, cfg.Panel)
	assert.Equal(t, DefaultEpsilon, cfg.Regression.Epsilon)
	assert.Equal(t, DefaultFingerprintSize, cfg.Fingerprint.Size)
}

func TestLoadFromEnv_NestedKey(t *testing.T) {
	t.Setenv("NEWDRUG_MOLECULE_INVALID_POLICY", "skip")
	t.Setenv("NEWDRUG_STORAGE_MINIO_BUCKET", "runs")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "skip", cfg.Molecule.InvalidPolicy)
	assert.Equal(t, "runs", cfg.Storage.MinIO.Bucket)
}

func TestLoadFromEnv_ZeroEpsilonIsKept(t *testing.T) {
	t.Setenv("NEWDRUG_REGRESSION_EPSILON", "0")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Regression.Epsilon)
}

func TestLoad_EmptyPathFallsBackToEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPanel, cfg.Panel)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

//Personal.AI order the ending
