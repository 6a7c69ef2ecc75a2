package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order.
var ConfigPaths = []string{
	"./.critic.yaml",
	"~/.config/critic/config.yaml",
}

// Loader merges defaults, YAML files and CRITIC_* environment variables.
type Loader struct {
	configPaths []string
	dotenv      string
}

func NewLoader() *Loader {
	return &Loader{configPaths: ConfigPaths, dotenv: ".env"}
}

// LoadConfig loads configuration with priority:
// flags (caller) > env > ./.critic.yaml > ~/.config/critic/config.yaml > defaults.
// A .env file in the working directory is read into the environment first
// without overriding variables that are already set.
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	if l.dotenv != "" && fileExists(l.dotenv) {
		if err := godotenv.Load(l.dotenv); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.dotenv, err)
		}
	}

	cfg := DefaultConfig()
	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := loadFromFile(cfg, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			if err := loadFromFile(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// FindConfigFile returns the highest-priority config file that exists.
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expanded := expandPath(path)
		if fileExists(expanded) {
			return expanded, true
		}
	}
	return "", false
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	merge(cfg, &fileConfig)
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	envMappings := map[string]func(string) error{
		"CRITIC_BASE_URL":        func(v string) error { cfg.Service.BaseURL = v; return nil },
		"CRITIC_API_PREFIX":      func(v string) error { cfg.Service.APIPrefix = v; return nil },
		"CRITIC_ANALYZE_TIMEOUT": func(v string) error { return parseDuration(v, &cfg.Service.AnalyzeTimeout) },
		"CRITIC_EXPORT_TIMEOUT":  func(v string) error { return parseDuration(v, &cfg.Service.ExportTimeout) },
		"CRITIC_HEALTH_TIMEOUT":  func(v string) error { return parseDuration(v, &cfg.Service.HealthTimeout) },
		"CRITIC_ANSWER_LENGTH":   func(v string) error { cfg.Defaults.AnswerLength = strings.ToLower(v); return nil },
		"CRITIC_REPORT_DIR":      func(v string) error { cfg.Output.ReportDir = v; return nil },
		"CRITIC_OUTPUT_FORMAT":   func(v string) error { cfg.Output.Format = strings.ToLower(v); return nil },
		"CRITIC_VERBOSE":         func(v string) error { return parseBool(v, &cfg.Logging.Verbose) },
		"CRITIC_LOG_FILE":        func(v string) error { cfg.Logging.File = v; return nil },
	}
	for envVar, setter := range envMappings {
		if value := strings.TrimSpace(os.Getenv(envVar)); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}
	return nil
}

// merge copies non-zero values from src into dst.
func merge(dst, src *Config) {
	if src.Service.BaseURL != "" {
		dst.Service.BaseURL = src.Service.BaseURL
	}
	if src.Service.APIPrefix != "" {
		dst.Service.APIPrefix = src.Service.APIPrefix
	}
	if src.Service.AnalyzeTimeout != 0 {
		dst.Service.AnalyzeTimeout = src.Service.AnalyzeTimeout
	}
	if src.Service.ExportTimeout != 0 {
		dst.Service.ExportTimeout = src.Service.ExportTimeout
	}
	if src.Service.HealthTimeout != 0 {
		dst.Service.HealthTimeout = src.Service.HealthTimeout
	}
	if src.Defaults.AnswerLength != "" {
		dst.Defaults.AnswerLength = strings.ToLower(src.Defaults.AnswerLength)
	}
	if src.Output.ReportDir != "" {
		dst.Output.ReportDir = src.Output.ReportDir
	}
	if src.Output.Format != "" {
		dst.Output.Format = strings.ToLower(src.Output.Format)
	}
	// A file cannot switch verbose logging back off; use CRITIC_VERBOSE=false.
	if src.Logging.Verbose {
		dst.Logging.Verbose = true
	}
	if src.Logging.File != "" {
		dst.Logging.File = src.Logging.File
	}
}

func validateConfigPath(path string) error {
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	ext := strings.ToLower(filepath.Ext(clean))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
