// Package config defines the configuration structures of the new-drug
// response predictor.  No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// InputConfig locates the two run inputs.
type InputConfig struct {
	ResponsePath string `mapstructure:"response_path"` // per-cluster prediction CSV
	SMILESPath   string `mapstructure:"smiles_path"`   // newline-separated SMILES
	HeaderRows   int    `mapstructure:"header_rows"`   // header lines in the response CSV (1 or 2)
}

// OutputConfig controls where the two tables are written.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	WideFile string `mapstructure:"wide_file"`
	LongFile string `mapstructure:"long_file"`
}

// ReferenceConfig locates the panel-specific drug id → SMILES libraries.
type ReferenceConfig struct {
	PRISMMapPath string `mapstructure:"prism_map_path"`
	GDSCMapPath  string `mapstructure:"gdsc_map_path"`
	SMILESColumn string `mapstructure:"smiles_column"`
}

// FingerprintConfig holds the topological fingerprint parameters.
type FingerprintConfig struct {
	Size        int `mapstructure:"size"`
	MinPath     int `mapstructure:"min_path"`
	MaxPath     int `mapstructure:"max_path"`
	BitsPerHash int `mapstructure:"bits_per_hash"`
}

// MoleculeConfig holds the SMILES handling policy.
type MoleculeConfig struct {
	InvalidPolicy string `mapstructure:"invalid_policy"` // "abort" | "skip"
}

// RegressionConfig holds the epsilon-SVR parameters and fan-out settings.
type RegressionConfig struct {
	C           float64 `mapstructure:"c"`
	Epsilon     float64 `mapstructure:"epsilon"`
	Gamma       float64 `mapstructure:"gamma"` // 0 selects the "scale" heuristic
	Tolerance   float64 `mapstructure:"tolerance"`
	MaxIter     int     `mapstructure:"max_iter"` // 0 selects max(1e7, 100·n)
	Concurrency int     `mapstructure:"concurrency"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "console" | "json"
}

// MetricsConfig holds Prometheus settings.  The predictor is a batch job, so
// metrics are pushed to a Pushgateway at the end of a run instead of scraped.
type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	PushGatewayURL string        `mapstructure:"push_gateway_url"`
	JobName        string        `mapstructure:"job_name"`
	PushTimeout    time.Duration `mapstructure:"push_timeout"`
}

// MinIOConfig holds object-storage parameters for uploading the output tables.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// StorageConfig groups artifact sinks.
type StorageConfig struct {
	MinIO MinIOConfig `mapstructure:"minio"`
}

// RedisConfig holds the connection and retention settings of the fingerprint
// cache.
type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Mode          string        `mapstructure:"mode"` // standalone, sentinel, cluster
	Addr          string        `mapstructure:"addr"`
	MasterName    string        `mapstructure:"master_name"`
	SentinelAddrs []string      `mapstructure:"sentinel_addrs"`
	ClusterAddrs  []string      `mapstructure:"cluster_addrs"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
}

// CacheConfig groups fingerprint caches.
type CacheConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration.  Panel is deliberately not validated here:
// an unsupported selector is reported by the stage that consumes it.
type Config struct {
	Panel       string            `mapstructure:"panel"`
	Input       InputConfig       `mapstructure:"input"`
	Output      OutputConfig      `mapstructure:"output"`
	Reference   ReferenceConfig   `mapstructure:"reference"`
	Fingerprint FingerprintConfig `mapstructure:"fingerprint"`
	Molecule    MoleculeConfig    `mapstructure:"molecule"`
	Regression  RegressionConfig  `mapstructure:"regression"`
	Log         LogConfig         `mapstructure:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Input
	if c.Input.HeaderRows < 1 || c.Input.HeaderRows > 2 {
		return fmt.Errorf("config: input.header_rows %d is invalid; expected 1 or 2", c.Input.HeaderRows)
	}

	// Output
	if c.Output.WideFile == "" || c.Output.LongFile == "" {
		return fmt.Errorf("config: output.wide_file and output.long_file are required")
	}

	// Reference
	if c.Reference.SMILESColumn == "" {
		return fmt.Errorf("config: reference.smiles_column is required")
	}

	// Fingerprint
	if c.Fingerprint.Size < 1 {
		return fmt.Errorf("config: fingerprint.size must be ≥ 1, got %d", c.Fingerprint.Size)
	}
	if c.Fingerprint.MinPath < 1 {
		return fmt.Errorf("config: fingerprint.min_path must be ≥ 1, got %d", c.Fingerprint.MinPath)
	}
	if c.Fingerprint.MaxPath < c.Fingerprint.MinPath {
		return fmt.Errorf("config: fingerprint.max_path %d is below min_path %d", c.Fingerprint.MaxPath, c.Fingerprint.MinPath)
	}
	if c.Fingerprint.BitsPerHash < 1 {
		return fmt.Errorf("config: fingerprint.bits_per_hash must be ≥ 1, got %d", c.Fingerprint.BitsPerHash)
	}

	// Molecule
	switch c.Molecule.InvalidPolicy {
	case "abort", "skip":
	default:
		return fmt.Errorf("config: molecule.invalid_policy %q is invalid; expected abort|skip", c.Molecule.InvalidPolicy)
	}

	// Regression
	if c.Regression.C <= 0 {
		return fmt.Errorf("config: regression.c must be > 0, got %g", c.Regression.C)
	}
	if c.Regression.Epsilon < 0 {
		return fmt.Errorf("config: regression.epsilon must be ≥ 0, got %g", c.Regression.Epsilon)
	}
	if c.Regression.Gamma < 0 {
		return fmt.Errorf("config: regression.gamma must be ≥ 0, got %g", c.Regression.Gamma)
	}
	if c.Regression.Tolerance <= 0 {
		return fmt.Errorf("config: regression.tolerance must be > 0, got %g", c.Regression.Tolerance)
	}
	if c.Regression.MaxIter < 0 {
		return fmt.Errorf("config: regression.max_iter must be ≥ 0, got %d", c.Regression.MaxIter)
	}
	if c.Regression.Concurrency < 1 {
		return fmt.Errorf("config: regression.concurrency must be ≥ 1, got %d", c.Regression.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.JobName == "" {
		return fmt.Errorf("config: metrics.job_name is required when metrics are enabled")
	}
	if c.Metrics.Enabled && c.Metrics.PushGatewayURL == "" {
		return fmt.Errorf("config: metrics.push_gateway_url is required when metrics are enabled")
	}

	// Storage
	if c.Storage.MinIO.Enabled {
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("config: storage.minio.endpoint is required when upload is enabled")
		}
		if c.Storage.MinIO.Bucket == "" {
			return fmt.Errorf("config: storage.minio.bucket is required when upload is enabled")
		}
	}

	// Cache
	if r := c.Cache.Redis; r.Enabled {
		switch r.Mode {
		case "standalone":
			if r.Addr == "" {
				return fmt.Errorf("config: cache.redis.addr is required in standalone mode")
			}
		case "sentinel":
			if r.MasterName == "" || len(r.SentinelAddrs) == 0 {
				return fmt.Errorf("config: cache.redis.master_name and cache.redis.sentinel_addrs are required in sentinel mode")
			}
		case "cluster":
			if len(r.ClusterAddrs) == 0 {
				return fmt.Errorf("config: cache.redis.cluster_addrs is required in cluster mode")
			}
		default:
			return fmt.Errorf("config: cache.redis.mode %q is invalid; expected standalone|sentinel|cluster", r.Mode)
		}
		if r.TTL < 0 {
			return fmt.Errorf("config: cache.redis.ttl must be ≥ 0, got %s", r.TTL)
		}
	}

	return nil
}

//Personal.AI order the ending
