// Package config loads mdbgw settings from an optional config file and
// MDBGW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Lookup connection modes for the gateway.
const (
	LookupModeShared     = "shared"
	LookupModePerRequest = "per-request"
)

// Config is the complete mdbgw configuration
type Config struct {
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
	Gateway GatewayConfig `json:"gateway" mapstructure:"gateway"`
	Lookup  LookupConfig  `json:"lookup" mapstructure:"lookup"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// GatewayConfig contains settings for the HTTP front end
type GatewayConfig struct {
	// LookupMode is "shared" (one persistent lookup connection) or "per-request"
	LookupMode string `json:"lookupMode" mapstructure:"lookupMode"`
	// AccessDB is an optional SQLite file that receives every access-log entry
	AccessDB string `json:"accessDB" mapstructure:"accessDB"`
	// MaxRequestLine bounds the bytes read for the request line
	MaxRequestLine int `json:"maxRequestLine" mapstructure:"maxRequestLine"`
}

// LookupConfig contains settings for the lookup server
type LookupConfig struct {
	// MaxKeyLen is the hard truncation bound applied to every query key
	MaxKeyLen int `json:"maxKeyLen" mapstructure:"maxKeyLen"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Gateway: GatewayConfig{
			LookupMode:     LookupModeShared,
			MaxRequestLine: 8192,
		},
		Lookup: LookupConfig{
			MaxKeyLen: 15,
		},
	}
}

// LoadConfig reads configuration. An explicit path must exist; otherwise
// mdbgw.{json,toml,yaml} in dir is used when present. Environment variables
// such as MDBGW_LOGGING_LEVEL override file values.
func LoadConfig(path, dir string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.maxSize", def.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", def.Logging.MaxBackups)
	v.SetDefault("gateway.lookupMode", def.Gateway.LookupMode)
	v.SetDefault("gateway.accessDB", def.Gateway.AccessDB)
	v.SetDefault("gateway.maxRequestLine", def.Gateway.MaxRequestLine)
	v.SetDefault("lookup.maxKeyLen", def.Lookup.MaxKeyLen)

	v.SetEnvPrefix("MDBGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mdbgw")
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for obviously broken values
func (c *Config) Validate() error {
	switch c.Gateway.LookupMode {
	case LookupModeShared, LookupModePerRequest:
	default:
		return &ConfigError{Field: "gateway.lookupMode", Message: fmt.Sprintf("unknown mode %q", c.Gateway.LookupMode)}
	}
	if c.Lookup.MaxKeyLen <= 0 {
		return &ConfigError{Field: "lookup.maxKeyLen", Message: "must be positive"}
	}
	if c.Gateway.MaxRequestLine <= 0 {
		return &ConfigError{Field: "gateway.maxRequestLine", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
