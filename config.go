package shardrecon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration of the reconstruction tool.
type Config struct {
	// Workers sets how many goroutines share the subset enumeration.
	Workers int `yaml:"workers"`

	// Limits bound the accepted share documents.
	Limits LimitsConfig `yaml:"limits"`

	// Audit controls audit event emission.
	Audit AuditConfig `yaml:"audit"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`
}

// LimitsConfig bounds accepted share documents, mirroring the share set
// validator's knobs.
type LimitsConfig struct {
	MaxShares      int   `yaml:"max_shares"`
	MaxThreshold   int   `yaml:"max_threshold"`
	MaxEnumeration int64 `yaml:"max_enumeration"`
}

// AuditConfig controls audit event emission.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // production or development
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers: 1,

		Limits: LimitsConfig{
			MaxShares:      256,
			MaxThreshold:   256,
			MaxEnumeration: DefaultMaxEnumeration,
		},

		Audit: AuditConfig{
			Enabled: true,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "production",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults; a present file overlays them and is then validated. Environment
// overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ErrInvalidConfig.
			WithDetails("cannot parse config file").
			WithContext("path", path).
			WithCause(err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides lets the environment win over file settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHARDRECON_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			c.Workers = workers
		}
	}
	if v := os.Getenv("SHARDRECON_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return ErrInvalidConfig.
			WithDetails("workers cannot be negative").
			WithContext("workers", c.Workers)
	}
	if c.Limits.MaxShares < 1 || c.Limits.MaxThreshold < 1 {
		return ErrInvalidConfig.
			WithDetails("limits must be positive").
			WithContext("max_shares", c.Limits.MaxShares).
			WithContext("max_threshold", c.Limits.MaxThreshold)
	}
	if c.Limits.MaxEnumeration < 1 {
		return ErrInvalidConfig.
			WithDetails("max_enumeration must be positive").
			WithContext("max_enumeration", c.Limits.MaxEnumeration)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return ErrInvalidConfig.
			WithDetails("unknown log level").
			WithContext("level", c.Logging.Level).
			WithCause(err)
	}
	switch c.Logging.Format {
	case "production", "development":
	default:
		return ErrInvalidConfig.
			WithDetails("log format must be production or development").
			WithContext("format", c.Logging.Format)
	}
	return nil
}

// Validator builds a share set validator honoring the configured limits.
func (c *Config) Validator() *ShareSetValidator {
	validator := NewDefaultShareSetValidator()
	validator.MaxShares = c.Limits.MaxShares
	validator.MaxThreshold = c.Limits.MaxThreshold
	validator.MaxEnumeration = c.Limits.MaxEnumeration
	return validator
}

// Reconstructor builds a reconstructor honoring the configured worker count,
// emitting audit events through logger when auditing is enabled.
func (c *Config) Reconstructor(logger *zap.Logger) *Reconstructor {
	var handler AuditEventHandler = &NullAuditHandler{}
	if c.Audit.Enabled {
		handler = NewZapAuditHandler(logger)
	}
	return NewReconstructor(ReconstructorConfig{
		Workers: c.Workers,
		Audit:   handler,
	})
}

// Build constructs a zap logger per the logging configuration.
func (lc LoggingConfig) Build() (*zap.Logger, error) {
	var zapConfig zap.Config
	if lc.Format == "development" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}
