// Package config provides configuration loading, defaults, and validation for
// the new-drug response predictor.
package config

import (
	"runtime"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultPanel      = "PRISM"
	DefaultHeaderRows = 2

	DefaultOutputDir = "./"
	DefaultWideFile  = "new_drug_prediction.csv"
	DefaultLongFile  = "drug_level_prediction.csv"

	DefaultPRISMMapPath = "/scDrug/data/PRISM_drugID_smiles_map.csv"
	DefaultGDSCMapPath  = "/scDrug/data/GDSC_drugID_smiles_map.csv"
	DefaultSMILESColumn = "smiles"

	DefaultFingerprintSize = 2048
	DefaultMinPath         = 1
	DefaultMaxPath         = 7
	DefaultBitsPerHash     = 2

	DefaultInvalidPolicy = "abort"

	DefaultC         = 1.0
	DefaultEpsilon   = 0.1
	DefaultTolerance = 1e-3

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultMetricsJob  = "newdrug_prediction"
	DefaultPushTimeout = 10 * time.Second

	DefaultMinIORegion = "us-east-1"
	DefaultMinIOPrefix = "newdrug"

	DefaultRedisMode        = "standalone"
	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisPrefix      = "newdrug:fp:"
	DefaultRedisTTL         = 7 * 24 * time.Hour
	DefaultRedisDialTimeout = 5 * time.Second
)

// NewDefaultConfig returns a Config with every field set to its default.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set by the caller are left unchanged so explicit configuration
// always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Panel == "" {
		cfg.Panel = DefaultPanel
	}

	// ── Input / Output ────────────────────────────────────────────────────────
	if cfg.Input.HeaderRows == 0 {
		cfg.Input.HeaderRows = DefaultHeaderRows
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.WideFile == "" {
		cfg.Output.WideFile = DefaultWideFile
	}
	if cfg.Output.LongFile == "" {
		cfg.Output.LongFile = DefaultLongFile
	}

	// ── Reference ─────────────────────────────────────────────────────────────
	if cfg.Reference.PRISMMapPath == "" {
		cfg.Reference.PRISMMapPath = DefaultPRISMMapPath
	}
	if cfg.Reference.GDSCMapPath == "" {
		cfg.Reference.GDSCMapPath = DefaultGDSCMapPath
	}
	if cfg.Reference.SMILESColumn == "" {
		cfg.Reference.SMILESColumn = DefaultSMILESColumn
	}

	// ── Fingerprint ───────────────────────────────────────────────────────────
	if cfg.Fingerprint.Size == 0 {
		cfg.Fingerprint.Size = DefaultFingerprintSize
	}
	if cfg.Fingerprint.MinPath == 0 {
		cfg.Fingerprint.MinPath = DefaultMinPath
	}
	if cfg.Fingerprint.MaxPath == 0 {
		cfg.Fingerprint.MaxPath = DefaultMaxPath
	}
	if cfg.Fingerprint.BitsPerHash == 0 {
		cfg.Fingerprint.BitsPerHash = DefaultBitsPerHash
	}

	if cfg.Molecule.InvalidPolicy == "" {
		cfg.Molecule.InvalidPolicy = DefaultInvalidPolicy
	}

	// ── Regression ────────────────────────────────────────────────────────────
	// Epsilon and Gamma accept 0 as a meaningful value, so only C, Tolerance
	// and Concurrency are defaulted here; viper defaults cover Epsilon.
	if cfg.Regression.C == 0 {
		cfg.Regression.C = DefaultC
	}
	if cfg.Regression.Tolerance == 0 {
		cfg.Regression.Tolerance = DefaultTolerance
	}
	if cfg.Regression.Concurrency == 0 {
		cfg.Regression.Concurrency = runtime.NumCPU()
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.JobName == "" {
		cfg.Metrics.JobName = DefaultMetricsJob
	}
	if cfg.Metrics.PushTimeout == 0 {
		cfg.Metrics.PushTimeout = DefaultPushTimeout
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.MinIO.Region == "" {
		cfg.Storage.MinIO.Region = DefaultMinIORegion
	}
	if cfg.Storage.MinIO.Prefix == "" {
		cfg.Storage.MinIO.Prefix = DefaultMinIOPrefix
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Redis.Mode == "" {
		cfg.Cache.Redis.Mode = DefaultRedisMode
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.Prefix == "" {
		cfg.Cache.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.Cache.Redis.TTL == 0 {
		cfg.Cache.Redis.TTL = DefaultRedisTTL
	}
	if cfg.Cache.Redis.DialTimeout == 0 {
		cfg.Cache.Redis.DialTimeout = DefaultRedisDialTimeout
	}
}

//Personal.AI order the ending
