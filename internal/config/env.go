// internal/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LIFESYNC_"

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(cfg *Config) error {
	e := envReader{}

	e.str("HOST", &cfg.Server.Host)
	e.int("PORT", &cfg.Server.Port)
	e.str("LOG_LEVEL", &cfg.Server.LogLevel)

	e.str("DATASET", &cfg.Data.Dataset)
	e.str("FEATURE_IMPORTANCE", &cfg.Data.FeatureImportance)
	e.str("SHAP_DIR", &cfg.Data.ShapDir)
	e.bool("WATCH", &cfg.Data.Watch)

	e.str("MODEL_BACKEND", &cfg.Models.Backend)
	e.str("MODEL_DIR", &cfg.Models.Dir)
	e.str("MODEL_URL", &cfg.Models.URL)
	e.duration("MODEL_TIMEOUT", &cfg.Models.Timeout)

	e.str("COUNTRY_FALLBACK", &cfg.Encoder.CountryFallback)

	e.str("HISTORY_PATH", &cfg.History.Path)
	e.str("HISTORY_SECONDARY_PATH", &cfg.History.SecondaryPath)
	e.bool("HISTORY_POSTGRES", &cfg.History.Postgres)

	// Cache settings
	e.int("CACHE_CAPACITY", &cfg.Cache.Capacity)
	e.duration("CACHE_TTL", &cfg.Cache.TTL)

	e.str("ARCHIVE_BACKEND", &cfg.Archive.Backend)
	e.str("ARCHIVE_PATH", &cfg.Archive.Path)
	e.str("ARCHIVE_BUCKET", &cfg.Archive.Bucket)
	e.str("ARCHIVE_ENDPOINT", &cfg.Archive.Endpoint)
	e.str("ARCHIVE_REGION", &cfg.Archive.Region)
	e.str("ARCHIVE_ACCESS_KEY", &cfg.Archive.AccessKey)
	e.str("ARCHIVE_SECRET_KEY", &cfg.Archive.SecretKey)

	e.float("RATE_LIMIT_PER_SECOND", &cfg.RateLimit.PerSecond)
	e.int("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)

	e.str("DATABASE_URL", &cfg.Database.URL)

	e.str("DOWNLOAD_SECRET", &cfg.Auth.DownloadSecret)
	e.duration("DOWNLOAD_TTL", &cfg.Auth.DownloadTTL)

	return e.err
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader applies set variables and keeps the first parse error.
type envReader struct {
	err error
}

func (e *envReader) lookup(name string) (string, bool) {
	v := os.Getenv(EnvPrefix + name)
	return v, v != ""
}

func (e *envReader) fail(name, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%s%s=%q: %w", EnvPrefix, name, v, err)
	}
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e *envReader) int(name string, dst *int) {
	if v, ok := e.lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(name string, dst *float64) {
	if v, ok := e.lookup(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(name string, dst *bool) {
	if v, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	if v, ok := e.lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = d
	}
}
