// Package config loads and validates portsweep configuration files.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/logging"
)

const (
	// DefaultFDMargin is the number of descriptors kept free below RLIMIT_NOFILE.
	DefaultFDMargin = 100
	// DefaultMaxCIDRHosts caps how many addresses a single CIDR token may expand to.
	DefaultMaxCIDRHosts = 1 << 24

	defaultDNSTimeout = 2 * time.Second

	configDirPerm  = 0755
	configFilePerm = 0644
)

// Config represents the complete portsweep configuration
type Config struct {
	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ScanningConfig holds scanning-related settings
type ScanningConfig struct {
	// Per-connection timeout; zero derives it from the target classification
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`

	// Maximum in-flight connection attempts; zero derives it from the target classification
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"gte=0"`

	// Descriptors left free below the process open-file limit
	FDMargin int `yaml:"fd_margin" json:"fd_margin" validate:"gte=0"`

	// Largest CIDR expansion accepted for a single address token
	MaxCIDRHosts int `yaml:"max_cidr_hosts" json:"max_cidr_hosts" validate:"gt=0"`

	// Resolvers queried when the system resolver cannot resolve a host
	DNSServers []string `yaml:"dns_servers" json:"dns_servers" validate:"dive,hostname_port"`

	// Timeout for a single DNS exchange
	DNSTimeout time.Duration `yaml:"dns_timeout" json:"dns_timeout" validate:"gt=0"`

	// Annotate open ports with the well-known service name
	ServiceNames bool `yaml:"service_names" json:"service_names"`

	// Result output format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output" validate:"required"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	// Listen address for the /metrics endpoint; empty disables it
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" validate:"omitempty,tcp_addr"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Scanning: ScanningConfig{
			Timeout:      0,
			Concurrency:  0,
			FDMargin:     DefaultFDMargin,
			MaxCIDRHosts: DefaultMaxCIDRHosts,
			DNSServers:   []string{"8.8.8.8:53", "8.8.4.4:53"},
			DNSTimeout:   defaultDNSTimeout,
			ServiceNames: true,
			Format:       "text",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeFileNotFound, "failed to read config file", err)
	}

	// JSON is a subset of YAML, so both extensions share the decoder
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to parse config %s", filepath.Base(path)), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.ErrConfigInvalid(fe.Namespace(), fe.Value(), err)
	}
	return errors.WrapConfigError(errors.CodeValidation, "invalid configuration", err)
}

// LoggingConfig converts the logging section into a logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.Level == "debug",
	}
}

// IsMetricsEnabled returns true if the metrics endpoint should be served
func (c *Config) IsMetricsEnabled() bool {
	return c.Metrics.ListenAddr != ""
}
