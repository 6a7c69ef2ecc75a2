package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/perspective"
)

// Output formats understood by `critic analyze`.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config holds the complete application configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service" json:"service"`
	Defaults DefaultsConfig `yaml:"defaults" json:"defaults"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// ServiceConfig locates the analysis service.
type ServiceConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	APIPrefix      string        `yaml:"api_prefix" json:"api_prefix"`
	AnalyzeTimeout time.Duration `yaml:"analyze_timeout" json:"analyze_timeout"`
	ExportTimeout  time.Duration `yaml:"export_timeout" json:"export_timeout"`
	HealthTimeout  time.Duration `yaml:"health_timeout" json:"health_timeout"`
}

// DefaultsConfig seeds a new session.
type DefaultsConfig struct {
	AnswerLength string `yaml:"answer_length" json:"answer_length"` // long|short
}

// OutputConfig controls where reports go and how results print.
type OutputConfig struct {
	ReportDir string `yaml:"report_dir" json:"report_dir"`
	Format    string `yaml:"format" json:"format"` // text|json|markdown
}

// LoggingConfig controls diagnostics.
type LoggingConfig struct {
	Verbose bool   `yaml:"verbose" json:"verbose"`
	File    string `yaml:"file" json:"file"` // TUI log destination
}

// DefaultConfig returns a configuration pointing at a local service.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:        api.DefaultBaseURL,
			APIPrefix:      api.DefaultPrefix,
			AnalyzeTimeout: 3 * time.Minute,
			ExportTimeout:  2 * time.Minute,
			HealthTimeout:  10 * time.Second,
		},
		Defaults: DefaultsConfig{
			AnswerLength: string(perspective.DefaultAnswerLength),
		},
		Output: OutputConfig{
			ReportDir: ".",
			Format:    FormatText,
		},
		Logging: LoggingConfig{
			File: "critic.log",
		},
	}
}

// AnswerLength returns the parsed default length.
func (c *Config) AnswerLength() perspective.AnswerLength {
	length, err := perspective.ParseAnswerLength(c.Defaults.AnswerLength)
	if err != nil {
		return perspective.DefaultAnswerLength
	}
	return length
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(strings.TrimSpace(c.Service.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("service.base_url must be an absolute http(s) URL, got %q", c.Service.BaseURL))
	}
	if c.Service.AnalyzeTimeout <= 0 {
		errs = append(errs, errors.New("service.analyze_timeout must be positive"))
	}
	if c.Service.ExportTimeout <= 0 {
		errs = append(errs, errors.New("service.export_timeout must be positive"))
	}
	if c.Service.HealthTimeout <= 0 {
		errs = append(errs, errors.New("service.health_timeout must be positive"))
	}
	if _, err := perspective.ParseAnswerLength(c.Defaults.AnswerLength); err != nil {
		errs = append(errs, fmt.Errorf("defaults.answer_length: %w", err))
	}
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		errs = append(errs, fmt.Errorf("output.format must be text, json or markdown, got %q", c.Output.Format))
	}
	return errors.Join(errs...)
}
