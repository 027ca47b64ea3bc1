package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/readiness"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Policy    PolicyConfig    `yaml:"policy"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// IngestPerMinute caps export uploads per user. Zero means 30.
	IngestPerMinute int `yaml:"ingest_per_minute"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

// PolicyConfig holds the coaching thresholds. Zero values fall back to the
// engine defaults.
type PolicyConfig struct {
	KnownMaxStaleDays    int     `yaml:"known_max_stale_days"`
	HistoryWindowDays    int     `yaml:"history_window_days"`
	HighConfidenceDays   int     `yaml:"high_confidence_days"`
	MediumConfidenceDays int     `yaml:"medium_confidence_days"`
	ConsistencyTolerance float64 `yaml:"consistency_tolerance"`

	Fatigue  readiness.FatigueModel  `yaml:"fatigue"`
	Deload   readiness.DeloadPolicy  `yaml:"deload"`
	Forecast readiness.ForecastBands `yaml:"forecast"`

	DiscomfortWindowDays int           `yaml:"discomfort_window_days"`
	VarietyLookbackDays  int           `yaml:"variety_lookback_days"`
	PreferencesTTL       time.Duration `yaml:"preferences_ttl"`
	UsageTTL             time.Duration `yaml:"usage_ttl"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// CoachPolicy merges the configured thresholds over the engine defaults.
func (p PolicyConfig) CoachPolicy() coach.Policy {
	out := coach.DefaultPolicy()
	if p.KnownMaxStaleDays > 0 {
		out.Strength.KnownMaxStaleAfter = days(p.KnownMaxStaleDays)
	}
	if p.HistoryWindowDays > 0 {
		out.Strength.HistoryWindow = days(p.HistoryWindowDays)
	}
	if p.HighConfidenceDays > 0 {
		out.Strength.HighConfidenceAge = days(p.HighConfidenceDays)
	}
	if p.MediumConfidenceDays > 0 {
		out.Strength.MediumConfidenceAge = days(p.MediumConfidenceDays)
	}
	if p.ConsistencyTolerance > 0 {
		out.Strength.ConsistencyTolerance = p.ConsistencyTolerance
	}
	mergeFatigue(&out.Fatigue, p.Fatigue)
	mergeDeload(&out.Deload, p.Deload)
	mergeForecast(&out.Forecast, p.Forecast)
	if p.DiscomfortWindowDays > 0 {
		out.DiscomfortWindow = days(p.DiscomfortWindowDays)
	}
	return out
}

// VarietyLookback returns the usage lookback, zero meaning the default.
func (p PolicyConfig) VarietyLookback() time.Duration {
	return days(p.VarietyLookbackDays)
}

func mergeFatigue(dst *readiness.FatigueModel, src readiness.FatigueModel) {
	if src.AccumulationPerRPE > 0 {
		dst.AccumulationPerRPE = src.AccumulationPerRPE
	}
	if src.DecayPerRestDay > 0 {
		dst.DecayPerRestDay = src.DecayPerRestDay
	}
}

func mergeDeload(dst *readiness.DeloadPolicy, src readiness.DeloadPolicy) {
	if src.FatigueThreshold > 0 {
		dst.FatigueThreshold = src.FatigueThreshold
	}
	if src.CompletionThreshold > 0 {
		dst.CompletionThreshold = src.CompletionThreshold
	}
	if src.MissedSessions > 0 {
		dst.MissedSessions = src.MissedSessions
	}
	if src.RPECreepWindow > 0 {
		dst.RPECreepWindow = src.RPECreepWindow
	}
	if src.RPECreepMinIncrease > 0 {
		dst.RPECreepMinIncrease = src.RPECreepMinIncrease
	}
}

func mergeForecast(dst *readiness.ForecastBands, src readiness.ForecastBands) {
	if src.Maintain > 0 {
		dst.Maintain = src.Maintain
	}
	if src.Reduce > 0 {
		dst.Reduce = src.Reduce
	}
	if src.Deload > 0 {
		dst.Deload = src.Deload
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix REPCOACH_ and underscore-separated paths:
//
//	REPCOACH_SERVER_HOST, REPCOACH_SERVER_PORT,
//	REPCOACH_DB_HOST, REPCOACH_DB_PORT, REPCOACH_DB_NAME,
//	REPCOACH_DB_USER, REPCOACH_DB_PASSWORD, REPCOACH_DB_SSLMODE,
//	REPCOACH_AUTH_API_KEY, REPCOACH_TAILSCALE_ENABLED,
//	REPCOACH_TAILSCALE_HOSTNAME, REPCOACH_CATALOG_PATH
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "exercises.yaml"
	}
	if cfg.Server.IngestPerMinute == 0 {
		cfg.Server.IngestPerMinute = 30
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPCOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPCOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPCOACH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPCOACH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPCOACH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPCOACH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPCOACH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPCOACH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPCOACH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPCOACH_TAILSCALE_ENABLED"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = on
		}
	}
	if v := os.Getenv("REPCOACH_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("REPCOACH_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Server.IngestPerMinute < 0 {
		return fmt.Errorf("server.ingest_per_minute must not be negative")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Policy.ConsistencyTolerance < 0 || c.Policy.ConsistencyTolerance >= 1 {
		return fmt.Errorf("policy.consistency_tolerance must be in [0,1)")
	}
	if d := c.Policy.Deload.CompletionThreshold; d < 0 || d > 100 {
		return fmt.Errorf("policy.deload.completion_threshold must be a percentage")
	}
	return nil
}
