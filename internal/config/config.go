// Package config reads and validates sqlift.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andressep95/SQLift/internal/generator"
	"github.com/andressep95/SQLift/internal/strategy"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when no --config flag is given
const DefaultPath = "sqlift.yaml"

var (
	ErrUnsupportedEngine = generator.ErrUnsupportedEngine
	ErrUnsupportedMode   = strategy.ErrUnsupportedMode
	ErrMissingField      = errors.New("sqlift: required field missing")
	ErrConfigExists      = errors.New("sqlift: configuration file already exists")
)

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("sqlift: invalid configuration %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("sqlift: invalid configuration %s=%q: %v", e.Field, e.Value, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

type Config struct {
	Version string `mapstructure:"version" yaml:"version"`
	SQL     SQL    `mapstructure:"sql" yaml:"sql"`
}

type SQL struct {
	Engine string `mapstructure:"engine" yaml:"engine"`
	Schema string `mapstructure:"schema" yaml:"schema"` // file, or directory of .sql files
	Output Output `mapstructure:"output" yaml:"output"`
}

type Output struct {
	Package   string  `mapstructure:"package" yaml:"package"`
	Directory string  `mapstructure:"directory" yaml:"directory,omitempty"`
	Options   Options `mapstructure:"options" yaml:"options"`
}

type Options struct {
	Lombok bool `mapstructure:"lombok" yaml:"lombok"`
	JPA    JPA  `mapstructure:"jpa" yaml:"jpa"`
}

type JPA struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Type    string `mapstructure:"type" yaml:"type"` // jakarta | javax
}

// Default returns the configuration written by `sqlift init`
func Default() *Config {
	return &Config{
		Version: "1",
		SQL: SQL{
			Engine: "postgresql",
			Schema: "db/schema.sql",
			Output: Output{
				Package:   "com.example.demo.entity",
				Directory: "src/main/java",
				Options: Options{
					JPA: JPA{Enabled: true, Type: strategy.JakartaMode},
				},
			},
		},
	}
}

// Load reads a configuration file. SQLIFT_* environment variables override
// file values, e.g. SQLIFT_SQL_OUTPUT_PACKAGE for sql.output.package.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SQLIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so environment overrides are seen by Unmarshal
	v.SetDefault("version", "")
	v.SetDefault("sql.engine", "")
	v.SetDefault("sql.schema", "")
	v.SetDefault("sql.output.package", "")
	v.SetDefault("sql.output.directory", "src/main/java")
	v.SetDefault("sql.output.options.lombok", false)
	v.SetDefault("sql.output.options.jpa.enabled", false)
	v.SetDefault("sql.output.options.jpa.type", strategy.JakartaMode)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.SQL.Output.Directory == "" {
		cfg.SQL.Output.Directory = "src/main/java"
	}
	return &cfg, nil
}

// Validate checks every field the generation run depends on
func (c *Config) Validate() error {
	required := []struct{ field, value string }{
		{"version", c.Version},
		{"sql.engine", c.SQL.Engine},
		{"sql.schema", c.SQL.Schema},
		{"sql.output.package", c.SQL.Output.Package},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ConfigError{Field: r.field, Cause: ErrMissingField}
		}
	}

	if _, err := generator.NewEngine(c.SQL.Engine, nil); err != nil {
		return &ConfigError{Field: "sql.engine", Value: c.SQL.Engine, Cause: ErrUnsupportedEngine}
	}
	if _, err := c.Strategies(); err != nil {
		return &ConfigError{Field: "sql.output.options.jpa.type", Value: c.SQL.Output.Options.JPA.Type, Cause: ErrUnsupportedMode}
	}
	return nil
}

// Strategies builds the annotation strategies selected by the options
func (c *Config) Strategies() ([]strategy.Strategy, error) {
	opts := c.SQL.Output.Options
	return strategy.New(opts.Lombok, opts.JPA.Enabled, opts.JPA.Type)
}

// Settings converts the configuration into generator settings
func (c *Config) Settings() (generator.Settings, error) {
	strategies, err := c.Strategies()
	if err != nil {
		return generator.Settings{}, err
	}
	return generator.Settings{
		Engine:      c.SQL.Engine,
		BasePackage: c.SQL.Output.Package,
		OutputDir:   c.SQL.Output.Directory,
		Strategies:  strategies,
	}, nil
}

// WriteDefault writes the default configuration to path. An existing file is
// kept unless force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
