// Package config loads the configuration of the formula command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration.
type Config struct {
	Evaluator   EvaluatorConfig   `yaml:"evaluator"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// EvaluatorConfig holds evaluation settings.
type EvaluatorConfig struct {
	// Precision is the precision of calculations in bits.
	Precision uint `yaml:"precision"`
	// Digits is the number of significant digits in displayed results.
	Digits int `yaml:"digits"`
}

// SuggestionsConfig selects the suggestion source. File takes priority over
// URL; with neither, no words resolve to variables.
type SuggestionsConfig struct {
	URL     string        `yaml:"url"`
	File    string        `yaml:"file"`
	Timeout time.Duration `yaml:"timeout"`
	// Wait is how long the interactive prompt lets a lookup run before it
	// commits the typed word anyway.
	Wait time.Duration `yaml:"wait"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Evaluator: EvaluatorConfig{
			Precision: 64,
			Digits:    15,
		},
		Suggestions: SuggestionsConfig{
			Timeout: 5 * time.Second,
			Wait:    300 * time.Millisecond,
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path gives the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Evaluator.Precision == 0 {
		errs = append(errs, errors.New("evaluator.precision must be positive"))
	}
	if c.Evaluator.Digits <= 0 {
		errs = append(errs, errors.New("evaluator.digits must be positive"))
	}
	if c.Suggestions.Timeout < 0 || c.Suggestions.Wait < 0 {
		errs = append(errs, errors.New("suggestions timeouts must not be negative"))
	}
	if c.Suggestions.URL != "" && !strings.HasPrefix(c.Suggestions.URL, "http://") && !strings.HasPrefix(c.Suggestions.URL, "https://") {
		errs = append(errs, fmt.Errorf("suggestions.url %q is not an HTTP URL", c.Suggestions.URL))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not console or json", c.Logging.Format))
	}
	switch c.Logging.Output {
	case "stdout", "stderr", "both":
	case "file":
	default:
		errs = append(errs, fmt.Errorf("logging.output %q is not stdout, stderr, file, or both", c.Logging.Output))
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		errs = append(errs, errors.New("logging.file_path is required for file output"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
