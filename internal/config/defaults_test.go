package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultPanel, cfg.Panel)
	assert.Equal(t, DefaultHeaderRows, cfg.Input.HeaderRows)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.Equal(t, DefaultWideFile, cfg.Output.WideFile)
	assert.Equal(t, DefaultLongFile, cfg.Output.LongFile)
	assert.Equal(t, DefaultPRISMMapPath, cfg.Reference.PRISMMapPath)
	assert.Equal(t, DefaultGDSCMapPath, cfg.Reference.GDSCMapPath)
	assert.Equal(t, 2048, cfg.Fingerprint.Size)
	assert.Equal(t, 1, cfg.Fingerprint.MinPath)
	assert.Equal(t, 7, cfg.Fingerprint.MaxPath)
	assert.Equal(t, "abort", cfg.Molecule.InvalidPolicy)
	assert.Equal(t, 1.0, cfg.Regression.C)
	assert.Equal(t, runtime.NumCPU(), cfg.Regression.Concurrency)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.False(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, DefaultRedisMode, cfg.Cache.Redis.Mode)
	assert.Equal(t, DefaultRedisPrefix, cfg.Cache.Redis.Prefix)
	assert.Equal(t, DefaultRedisTTL, cfg.Cache.Redis.TTL)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{Panel: "GDSC"}
	cfg.Fingerprint.Size = 1024
	cfg.Regression.C = 10
	ApplyDefaults(cfg)

	assert.Equal(t, "GDSC", cfg.Panel)
	assert.Equal(t, 1024, cfg.Fingerprint.Size)
	assert.Equal(t, 10.0, cfg.Regression.C)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
