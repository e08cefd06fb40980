package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name to follow config name, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		c := ServiceConfig{Name: "svc", Environment: env}
		c.Logging.ApplyDefaults()
		return c
	}
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", valid("development"), false, ""},
		{"valid staging", valid("staging"), false, ""},
		{"valid production", valid("production"), false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

type testPipelineConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Gate          struct {
		MaxConcurrent int `mapstructure:"max_concurrent"`
	} `mapstructure:"gate"`
	Chunking struct {
		ChunkDuration time.Duration `mapstructure:"chunk_duration"`
	} `mapstructure:"chunking"`
}

func (c *testPipelineConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Gate.MaxConcurrent == 0 {
		c.Gate.MaxConcurrent = 2
	}
}

func (c *testPipelineConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Gate.MaxConcurrent < 1 {
		return fmt.Errorf("gate.max_concurrent must be positive")
	}
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	writeFile(t, configPath, `
name: chunkscribe
environment: staging
version: "1.0.0"
gate:
  max_concurrent: 4
chunking:
  chunk_duration: 10s
`)

	var cfg testPipelineConfig
	if err := LoadConfig("chunkscribe", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "chunkscribe" {
		t.Errorf("expected name 'chunkscribe', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Gate.MaxConcurrent != 4 {
		t.Errorf("expected max_concurrent 4, got %d", cfg.Gate.MaxConcurrent)
	}
	if cfg.Chunking.ChunkDuration != 10*time.Second {
		t.Errorf("expected chunk duration 10s, got %v", cfg.Chunking.ChunkDuration)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	writeFile(t, configPath, "name: chunkscribe\ngate:\n  max_concurrent: 4\n")
	t.Setenv("GATE_MAX_CONCURRENT", "3")

	var cfg testPipelineConfig
	if err := Load("chunkscribe", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Gate.MaxConcurrent != 3 {
		t.Errorf("expected env override to win, got %d", cfg.Gate.MaxConcurrent)
	}
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	writeFile(t, configPath, "environment: production\n")
	t.Setenv("NAME", "")

	var cfg testPipelineConfig
	err := Load("chunkscribe", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env")))
	if err == nil {
		t.Fatal("expected validation error for missing name")
	}
	if !strings.Contains(err.Error(), "config.name is required") {
		t.Errorf("unexpected error %v", err)
	}
	if cfg.Gate.MaxConcurrent != 2 {
		t.Errorf("expected defaults applied before validation, got %d", cfg.Gate.MaxConcurrent)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testPipelineConfig
	if err := LoadConfig("chunkscribe", &cfg, WithConfigFile("/nonexistent/path.yml")); err == nil {
		t.Fatal("expected an error for an explicit config file that does not exist")
	}
	if err := LoadConfig("chunkscribe", &cfg, WithConfigFile(filepath.Join(t.TempDir(), "none.yml"))); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	writeFile(t, configPath, "gate: [unclosed\n")

	var cfg testPipelineConfig
	if err := LoadConfig("chunkscribe", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env"))); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadConfigEnvWithoutFileKey(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	writeFile(t, configPath, "name: chunkscribe\n")
	t.Setenv("CHUNKING_CHUNK_DURATION", "15s")
	t.Setenv("LOGGING_LEVEL", "debug")

	var cfg testPipelineConfig
	if err := LoadConfig("chunkscribe", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Chunking.ChunkDuration != 15*time.Second {
		t.Errorf("chunk_duration = %v, want 15s from the environment", cfg.Chunking.ChunkDuration)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	envPath := filepath.Join(dir, ".env")
	writeFile(t, configPath, "name: chunkscribe\n")
	writeFile(t, envPath, "GATE_MAX_CONCURRENT=6\nENVIRONMENT=staging\n")
	t.Setenv("ENVIRONMENT", "production")
	t.Cleanup(func() { os.Unsetenv("GATE_MAX_CONCURRENT") })

	var cfg testPipelineConfig
	if err := LoadConfig("chunkscribe", &cfg, WithConfigFile(configPath), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Gate.MaxConcurrent != 6 {
		t.Errorf("max_concurrent = %d, want 6 from .env", cfg.Gate.MaxConcurrent)
	}
	if cfg.Environment != "production" {
		t.Errorf("environment = %q, the process environment must win over .env", cfg.Environment)
	}
}

func TestLoadConfigServiceConfigVariable(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "alt.yml")
	writeFile(t, configPath, "name: from-variable\n")
	t.Setenv("CHUNKSCRIBE_CONFIG", configPath)

	var cfg testPipelineConfig
	if err := LoadConfig("chunkscribe", &cfg, WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "from-variable" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestLoadConfigSearchesStandardLocations(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "cmd", "chunkscribe"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "cmd", "chunkscribe", "config.yml"), "name: from-cmd\n")
	writeFile(t, filepath.Join(root, "config.yml"), "name: from-root\n")
	t.Chdir(root)

	var cfg testPipelineConfig
	if err := LoadConfig("chunkscribe", &cfg); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "from-cmd" {
		t.Errorf("name = %q, want the cmd/<service> file to win", cfg.Name)
	}
}

func TestStructKeys(t *testing.T) {
	type engine struct {
		URL string `mapstructure:"url"`
	}
	type cfg struct {
		ServiceConfig `mapstructure:",squash"`
		Gate          struct {
			MaxConcurrent int `mapstructure:"max_concurrent"`
		} `mapstructure:"gate"`
		Engines []engine          `mapstructure:"engines"`
		Routes  map[string]string `mapstructure:"routes"`
		Tags    []string          `mapstructure:"tags"`
		Hook    func()            `mapstructure:"-"`
	}

	keys := structKeys(reflect.TypeOf(&cfg{}), "")
	got := strings.Join(keys, " ")
	for _, want := range []string{"name", "environment", "logging.level", "gate.max_concurrent", "tags"} {
		if !slices.Contains(keys, want) {
			t.Errorf("missing key %q in %s", want, got)
		}
	}
	for _, unwanted := range []string{"engines", "routes", "hook"} {
		if slices.Contains(keys, unwanted) {
			t.Errorf("unexpected key %q in %s", unwanted, got)
		}
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"gate.max_concurrent":         "GATE_MAX_CONCURRENT",
		"chunkscribe":                 "CHUNKSCRIBE",
		"observability.otlp-endpoint": "OBSERVABILITY_OTLP_ENDPOINT",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
