// internal/config/config.go
package config

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/FairForge/lifesync/internal/archive"
	"github.com/FairForge/lifesync/internal/database"
	"github.com/FairForge/lifesync/internal/encoder"
	"github.com/FairForge/lifesync/internal/model"
	"github.com/FairForge/lifesync/internal/reporting"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Models    ModelsConfig    `yaml:"models"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	History   HistoryConfig   `yaml:"history"`
	Reports   ReportsConfig   `yaml:"reports"`
	Cache     CacheConfig     `yaml:"cache"`
	Archive   archive.Config  `yaml:"archive"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  database.Config `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" default:"8080"`
	LogLevel        string        `yaml:"log_level" default:"info"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DataConfig struct {
	Dataset           string        `yaml:"dataset" default:"data/mental_health_and_lifestyle.csv"`
	FeatureImportance string        `yaml:"feature_importance" default:"data/feature_importance.csv"`
	ShapDir           string        `yaml:"shap_dir" default:"models"`
	Watch             bool          `yaml:"watch" default:"true"`
	WatchQuiet        time.Duration `yaml:"watch_quiet" default:"500ms"`
}

type ModelsConfig struct {
	Backend   string        `yaml:"backend" default:"file"`
	Dir       string        `yaml:"dir" default:"models"`
	URL       string        `yaml:"url"`
	Happiness string        `yaml:"happiness"`
	Stress    string        `yaml:"stress"`
	Timeout   time.Duration `yaml:"timeout" default:"10s"`
}

// Source converts the section into a model registry source.
func (m ModelsConfig) Source() model.Source {
	return model.Source{
		Backend:       m.Backend,
		Dir:           m.Dir,
		BaseURL:       m.URL,
		HappinessName: m.Happiness,
		StressName:    m.Stress,
		Timeout:       m.Timeout,
	}
}

type EncoderConfig struct {
	CountryFallback string `yaml:"country_fallback" default:"USA"`
}

type HistoryConfig struct {
	Path          string `yaml:"path" default:"outputs/prediction_history.csv"`
	SecondaryPath string `yaml:"secondary_path"`
	Postgres      bool   `yaml:"postgres"`
}

type ReportsConfig struct {
	Prefix string `yaml:"prefix" default:"LifeSync_Wellness_Report"`
}

type CacheConfig struct {
	Capacity int           `yaml:"capacity" default:"64"`
	TTL      time.Duration `yaml:"ttl" default:"1h"`
}

type RateLimitConfig struct {
	PerSecond float64       `yaml:"per_second" default:"0.5"`
	Burst     int           `yaml:"burst" default:"5"`
	Idle      time.Duration `yaml:"idle" default:"10m"`
}

// Enabled reports whether report generation is rate limited.
func (r RateLimitConfig) Enabled() bool {
	return r.PerSecond > 0
}

type AuthConfig struct {
	DownloadSecret string        `yaml:"download_secret"`
	DownloadTTL    time.Duration `yaml:"download_ttl" default:"15m"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Data: DataConfig{
			Dataset:           "data/mental_health_and_lifestyle.csv",
			FeatureImportance: "data/feature_importance.csv",
			ShapDir:           "models",
			Watch:             true,
			WatchQuiet:        500 * time.Millisecond,
		},
		Models: ModelsConfig{
			Backend: model.BackendFile,
			Dir:     "models",
			Timeout: 10 * time.Second,
		},
		Encoder: EncoderConfig{CountryFallback: encoder.DefaultCountryFallback},
		History: HistoryConfig{Path: "outputs/prediction_history.csv"},
		Reports: ReportsConfig{Prefix: reporting.DefaultPrefix},
		Cache:   CacheConfig{Capacity: 64, TTL: time.Hour},
		Archive: archive.Config{Prefix: "reports"},
		RateLimit: RateLimitConfig{
			PerSecond: 0.5,
			Burst:     5,
			Idle:      10 * time.Minute,
		},
		Auth: AuthConfig{DownloadTTL: 15 * time.Minute},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and LIFESYNC_* variables, in
// that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("server.log_level %q is not one of debug, info, warn, error", c.Server.LogLevel))
	}
	if c.Data.Dataset == "" {
		problems = append(problems, "data.dataset is required")
	}
	switch c.Models.Backend {
	case model.BackendFile:
		if c.Models.Dir == "" {
			problems = append(problems, "models.dir is required for the file backend")
		}
	case model.BackendHTTP:
		if c.Models.URL == "" {
			problems = append(problems, "models.url is required for the http backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("models.backend %q is not file or http", c.Models.Backend))
	}
	if c.History.Path == "" {
		problems = append(problems, "history.path is required")
	}
	if c.History.Postgres && !c.Database.Enabled() {
		problems = append(problems, "history.postgres needs database.url or database.host")
	}
	if c.Cache.Capacity < 1 {
		problems = append(problems, "cache.capacity must be at least 1")
	}
	switch c.Archive.Backend {
	case "", "local", "s3":
	default:
		problems = append(problems, fmt.Sprintf("archive.backend %q is not local or s3", c.Archive.Backend))
	}
	if c.Archive.Backend == "s3" && c.Archive.Bucket == "" {
		problems = append(problems, "archive.bucket is required for the s3 backend")
	}
	if c.RateLimit.Burst < 1 {
		problems = append(problems, "rate_limit.burst must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
