package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the diffgate configuration.
type Config struct {
	RulesFile      string         `json:"rulesFile,omitempty"`
	BoundariesFile string         `json:"boundariesFile,omitempty"`
	Format         string         `json:"format"`
	FailOn         string         `json:"failOn"`
	MaxFindings    int            `json:"maxFindings"`
	ContextLines   int            `json:"contextLines"`
	Exclude        []string       `json:"exclude"`
	MaxDiffBytes   int            `json:"maxDiffBytes"`
	Baseline       BaselineConfig `json:"baseline"`
	Redact         RedactConfig   `json:"redact"`
}

// BaselineConfig controls the cross-run fingerprint baseline.
type BaselineConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir,omitempty"`
}

// RedactConfig controls snippet redaction for LLM task handoff.
type RedactConfig struct {
	Secrets bool     `json:"secrets"`
	Paths   []string `json:"paths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:       "text",
		FailOn:       "none",
		MaxFindings:  200,
		ContextLines: 3,
		Exclude:      []string{"vendor/**", "**/*.gen.go", "**/dist/**", "**/node_modules/**"},
		MaxDiffBytes: 2000000,
		Baseline: BaselineConfig{
			Enabled: true,
		},
		Redact: RedactConfig{
			Secrets: true,
			Paths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for diffgate.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffgate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "diffgate"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "diffgate"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "diffgate"), nil
	default:
		return filepath.Join(home, ".config", "diffgate"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.RulesFile != "" {
		dst.RulesFile = src.RulesFile
	}
	if src.BoundariesFile != "" {
		dst.BoundariesFile = src.BoundariesFile
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if src.MaxFindings > 0 {
		dst.MaxFindings = src.MaxFindings
	}
	if src.ContextLines > 0 {
		dst.ContextLines = src.ContextLines
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.MaxDiffBytes > 0 {
		dst.MaxDiffBytes = src.MaxDiffBytes
	}
	if src.Baseline.Dir != "" {
		dst.Baseline.Dir = src.Baseline.Dir
	}
	// Bool fields from file: JSON can't distinguish unset from false in a
	// simple merge, so file values only turn features on, never off.
	dst.Baseline.Enabled = src.Baseline.Enabled || dst.Baseline.Enabled
	dst.Redact.Secrets = src.Redact.Secrets || dst.Redact.Secrets
	if len(src.Redact.Paths) > 0 {
		dst.Redact.Paths = src.Redact.Paths
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("DIFFGATE_RULES"); v != "" {
		cfg.RulesFile = v
	}
	if v := os.Getenv("DIFFGATE_BOUNDARIES"); v != "" {
		cfg.BoundariesFile = v
	}
	if v := os.Getenv("DIFFGATE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("DIFFGATE_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("DIFFGATE_MAX_FINDINGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v := os.Getenv("DIFFGATE_CONTEXT_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["rulesFile"]; ok && v != "" {
		cfg.RulesFile = v
	}
	if v, ok := overrides["boundariesFile"]; ok && v != "" {
		cfg.BoundariesFile = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["failOn"]; ok && v != "" {
		cfg.FailOn = v
	}
	if v, ok := overrides["maxFindings"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v, ok := overrides["contextLines"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
	if v, ok := overrides["maxDiffBytes"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDiffBytes = n
		}
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "rulesFile":
		cfg.RulesFile = value
	case "boundariesFile":
		cfg.BoundariesFile = value
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "maxFindings":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFindings must be an integer: %w", err)
		}
		cfg.MaxFindings = n
	case "contextLines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("contextLines must be an integer: %w", err)
		}
		cfg.ContextLines = n
	case "maxDiffBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffBytes must be an integer: %w", err)
		}
		cfg.MaxDiffBytes = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
