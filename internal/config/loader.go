package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all predictor settings.
const envPrefix = "NEWDRUG"

// newViper builds a Viper instance with the predictor's standard settings:
// YAML file type, NEWDRUG_ env prefix, automatic env binding, and a key
// replacer that maps "." → "_" so that "regression.c" resolves to
// "NEWDRUG_REGRESSION_C".  Every known key is registered with its default
// because AutomaticEnv only feeds Unmarshal for keys viper already knows.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v, NewDefaultConfig())
	return v
}

func registerDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("panel", d.Panel)

	v.SetDefault("input.response_path", d.Input.ResponsePath)
	v.SetDefault("input.smiles_path", d.Input.SMILESPath)
	v.SetDefault("input.header_rows", d.Input.HeaderRows)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.wide_file", d.Output.WideFile)
	v.SetDefault("output.long_file", d.Output.LongFile)

	v.SetDefault("reference.prism_map_path", d.Reference.PRISMMapPath)
	v.SetDefault("reference.gdsc_map_path", d.Reference.GDSCMapPath)
	v.SetDefault("reference.smiles_column", d.Reference.SMILESColumn)

	v.SetDefault("fingerprint.size", d.Fingerprint.Size)
	v.SetDefault("fingerprint.min_path", d.Fingerprint.MinPath)
	v.SetDefault("fingerprint.max_path", d.Fingerprint.MaxPath)
	v.SetDefault("fingerprint.bits_per_hash", d.Fingerprint.BitsPerHash)

	v.SetDefault("molecule.invalid_policy", d.Molecule.InvalidPolicy)

	v.SetDefault("regression.c", d.Regression.C)
	v.SetDefault("regression.epsilon", DefaultEpsilon)
	v.SetDefault("regression.gamma", d.Regression.Gamma)
	v.SetDefault("regression.tolerance", d.Regression.Tolerance)
	v.SetDefault("regression.max_iter", d.Regression.MaxIter)
	v.SetDefault("regression.concurrency", d.Regression.Concurrency)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.push_gateway_url", d.Metrics.PushGatewayURL)
	v.SetDefault("metrics.job_name", d.Metrics.JobName)
	v.SetDefault("metrics.push_timeout", d.Metrics.PushTimeout)

	v.SetDefault("storage.minio.enabled", d.Storage.MinIO.Enabled)
	v.SetDefault("storage.minio.endpoint", d.Storage.MinIO.Endpoint)
	v.SetDefault("storage.minio.access_key", d.Storage.MinIO.AccessKey)
	v.SetDefault("storage.minio.secret_key", d.Storage.MinIO.SecretKey)
	v.SetDefault("storage.minio.bucket", d.Storage.MinIO.Bucket)
	v.SetDefault("storage.minio.prefix", d.Storage.MinIO.Prefix)
	v.SetDefault("storage.minio.region", d.Storage.MinIO.Region)
	v.SetDefault("storage.minio.use_ssl", d.Storage.MinIO.UseSSL)

	v.SetDefault("cache.redis.enabled", d.Cache.Redis.Enabled)
	v.SetDefault("cache.redis.mode", d.Cache.Redis.Mode)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.master_name", d.Cache.Redis.MasterName)
	v.SetDefault("cache.redis.username", d.Cache.Redis.Username)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("cache.redis.prefix", d.Cache.Redis.Prefix)
	v.SetDefault("cache.redis.ttl", d.Cache.Redis.TTL)
	v.SetDefault("cache.redis.dial_timeout", d.Cache.Redis.DialTimeout)
}

// Load reads the YAML file at configPath, merges any NEWDRUG_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  An empty configPath behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from NEWDRUG_* environment variables and
// defaults, with no config file required.
//
//	NEWDRUG_<SECTION>_<FIELD>   e.g.  NEWDRUG_PANEL, NEWDRUG_REGRESSION_C
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
