package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Format != "text" {
		t.Errorf("default format = %q, want text", cfg.Format)
	}
	if cfg.FailOn != "none" {
		t.Errorf("default failOn = %q, want none", cfg.FailOn)
	}
	if cfg.MaxFindings != 200 {
		t.Errorf("default maxFindings = %d, want 200", cfg.MaxFindings)
	}
	if !cfg.Baseline.Enabled {
		t.Error("baseline should be enabled by default")
	}
	if !cfg.Redact.Secrets {
		t.Error("secret redaction should be enabled by default")
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/tmp/xdg-test", "diffgate")
	if dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Format != "" {
		t.Errorf("missing file should yield zero config, got %+v", cfg)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Default()
	cfg.RulesFile = "team-rules.json"
	cfg.FailOn = "major"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RulesFile != "team-rules.json" || loaded.FailOn != "major" {
		t.Errorf("round-trip lost fields: %+v", loaded)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	fileCfg := Default()
	fileCfg.Format = "json"
	fileCfg.FailOn = "minor"
	if err := Save(fileCfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DIFFGATE_FAIL_ON", "major")

	cfg, err := Load(map[string]string{"format": "sarif"})
	if err != nil {
		t.Fatal(err)
	}
	// Flag beats env beats file beats default.
	if cfg.Format != "sarif" {
		t.Errorf("flag override should win: format = %q", cfg.Format)
	}
	if cfg.FailOn != "major" {
		t.Errorf("env should beat file: failOn = %q", cfg.FailOn)
	}
}

func TestLoad_EnvIntegers(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DIFFGATE_MAX_FINDINGS", "50")
	t.Setenv("DIFFGATE_CONTEXT_LINES", "not-a-number")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxFindings != 50 {
		t.Errorf("maxFindings = %d, want 50", cfg.MaxFindings)
	}
	if cfg.ContextLines != 3 {
		t.Errorf("bad integer env var should be ignored, contextLines = %d", cfg.ContextLines)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "failOn", "critical"); err != nil {
		t.Fatal(err)
	}
	if cfg.FailOn != "critical" {
		t.Errorf("failOn = %q", cfg.FailOn)
	}
	if err := SetField(&cfg, "maxFindings", "10"); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxFindings != 10 {
		t.Errorf("maxFindings = %d", cfg.MaxFindings)
	}
	if err := SetField(&cfg, "maxFindings", "xyz"); err == nil {
		t.Error("non-integer maxFindings should error")
	}
	if err := SetField(&cfg, "nope", "v"); err == nil {
		t.Error("unknown key should error")
	}
}

func TestLoad_FileTakesDirFields(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	data := `{"baseline": {"dir": "/custom/baseline"}}`
	dir := filepath.Join(tmp, "diffgate")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Baseline.Dir != "/custom/baseline" {
		t.Errorf("baseline dir = %q", cfg.Baseline.Dir)
	}
	if !cfg.Baseline.Enabled {
		t.Error("file without enabled=true must not disable the baseline default")
	}
}
