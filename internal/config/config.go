// Package config provides Viper-based configuration loading for taleweaver.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects the session snapshot backend.
type StorageConfig struct {
	// Driver is one of "postgres", "sqlite", or "memory".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used when Driver is "sqlite".
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File redirects log output away from stderr, which the console shares.
	File string `mapstructure:"file"`
}

// GeneratorConfig holds the narrative generator settings.
type GeneratorConfig struct {
	// Provider is one of "gemini", "claude", or "scripted".
	Provider string `mapstructure:"provider"`
	// Model is the provider model name used for narration and sub-generations.
	Model string `mapstructure:"model"`
	// APIKey authenticates against the provider. Usually supplied through the environment.
	APIKey          string  `mapstructure:"api_key"`
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top_p"`
	TopK            int32   `mapstructure:"top_k"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
	// ImageModel is the image model name; empty disables illustrations.
	ImageModel string `mapstructure:"image_model"`
	// ImageEndpoint overrides the Gemini API base URL for image generation; empty keeps the SDK default.
	ImageEndpoint string `mapstructure:"image_endpoint"`
	// Timeout bounds every single generator round trip.
	Timeout time.Duration `mapstructure:"timeout"`
}

// EngineConfig holds orchestration loop and history policy settings.
type EngineConfig struct {
	// MaxToolDepth is the number of generator round trips allowed for one user turn.
	MaxToolDepth int `mapstructure:"max_tool_depth"`
	// SummaryTriggerTokens is the history size above which compaction is attempted.
	SummaryTriggerTokens int `mapstructure:"summary_trigger_tokens"`
	// KeepRecentTurns is the number of trailing turns never compacted.
	KeepRecentTurns int `mapstructure:"keep_recent_turns"`
	// MinSummarySpan is the minimum number of new turns worth compacting.
	MinSummarySpan int `mapstructure:"min_summary_span"`
	// StatRepairPolicy is "floor_then_log" or "floor_then_rescale".
	StatRepairPolicy string `mapstructure:"stat_repair_policy"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGenerator(c.Generator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTracing(c.Tracing); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case "postgres", "memory":
		return nil
	case "sqlite":
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty when storage.driver is sqlite")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [postgres, sqlite, memory], got %q", s.Driver)
	}
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGenerator(g GeneratorConfig) error {
	var errs []string
	validProviders := map[string]bool{"gemini": true, "claude": true, "scripted": true}
	if !validProviders[g.Provider] {
		errs = append(errs, fmt.Sprintf("generator.provider must be one of [gemini, claude, scripted], got %q", g.Provider))
	}
	if g.Provider != "scripted" && g.Model == "" {
		errs = append(errs, "generator.model must not be empty")
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("generator.temperature must be 0-2, got %v", g.Temperature))
	}
	if g.TopP < 0 || g.TopP > 1 {
		errs = append(errs, fmt.Sprintf("generator.top_p must be 0-1, got %v", g.TopP))
	}
	if g.TopK < 0 {
		errs = append(errs, fmt.Sprintf("generator.top_k must be >= 0, got %d", g.TopK))
	}
	if g.MaxOutputTokens < 1 {
		errs = append(errs, fmt.Sprintf("generator.max_output_tokens must be >= 1, got %d", g.MaxOutputTokens))
	}
	if g.Timeout < 0 {
		errs = append(errs, "generator.timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.MaxToolDepth < 1 {
		errs = append(errs, fmt.Sprintf("engine.max_tool_depth must be >= 1, got %d", e.MaxToolDepth))
	}
	if e.SummaryTriggerTokens < 1 {
		errs = append(errs, fmt.Sprintf("engine.summary_trigger_tokens must be >= 1, got %d", e.SummaryTriggerTokens))
	}
	if e.KeepRecentTurns < 1 {
		errs = append(errs, fmt.Sprintf("engine.keep_recent_turns must be >= 1, got %d", e.KeepRecentTurns))
	}
	if e.MinSummarySpan < 1 {
		errs = append(errs, fmt.Sprintf("engine.min_summary_span must be >= 1, got %d", e.MinSummarySpan))
	}
	validPolicies := map[string]bool{"floor_then_log": true, "floor_then_rescale": true}
	if !validPolicies[e.StatRepairPolicy] {
		errs = append(errs, fmt.Sprintf("engine.stat_repair_policy must be one of [floor_then_log, floor_then_rescale], got %q", e.StatRepairPolicy))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTracing(t TracingConfig) error {
	if t.Enabled && t.Endpoint == "" {
		return errors.New("tracing.endpoint must not be empty when tracing is enabled")
	}
	if t.ServiceName == "" {
		return errors.New("tracing.service_name must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with TALEWEAVER_ prefix
	v.SetEnvPrefix("TALEWEAVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Config populated only from built-in defaults.
//
// Postcondition: The returned Config passes Validate.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: unmarshalling defaults: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "taleweaver")
	v.SetDefault("database.password", "taleweaver")
	v.SetDefault("database.name", "taleweaver")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "taleweaver.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	v.SetDefault("generator.provider", "gemini")
	v.SetDefault("generator.model", "gemini-2.5-flash")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.temperature", 0.7)
	v.SetDefault("generator.top_p", 0.95)
	v.SetDefault("generator.top_k", 40)
	v.SetDefault("generator.max_output_tokens", 2048)
	v.SetDefault("generator.image_model", "imagen-4.0-generate-001")
	v.SetDefault("generator.image_endpoint", "")
	v.SetDefault("generator.timeout", "2m")

	v.SetDefault("engine.max_tool_depth", 5)
	v.SetDefault("engine.summary_trigger_tokens", 4000)
	v.SetDefault("engine.keep_recent_turns", 6)
	v.SetDefault("engine.min_summary_span", 10)
	v.SetDefault("engine.stat_repair_policy", "floor_then_log")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "taleweaver")
}
