package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/viewrouter/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Inspect.Addr != DefaultAddr {
		t.Errorf("Inspect.Addr = %q, want %q", cfg.Inspect.Addr, DefaultAddr)
	}
	if cfg.Inspect.StartURL != "/" {
		t.Errorf("Inspect.StartURL = %q, want /", cfg.Inspect.StartURL)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v, want defaults", cfg.Log)
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if cfg.Tracing.Name != DefaultTracerName {
		t.Errorf("Tracing.Name = %q, want %q", cfg.Tracing.Name, DefaultTracerName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if errors.CodeOf(err) != "C001" {
		t.Errorf("code = %q, want C001", errors.CodeOf(err))
	}

	configJSON := `{
  "manifest": "s3://routes/app.yaml",
  "basePath": "/app",
  "log": {"level": "debug", "format": "json"},
  "inspect": {"addr": ":9000"},
  "s3": {"region": "eu-west-1", "pathStyle": true}
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Manifest != "s3://routes/app.yaml" {
		t.Errorf("Manifest = %q", cfg.Manifest)
	}
	if cfg.BasePath != "/app" {
		t.Errorf("BasePath = %q", cfg.BasePath)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Inspect.Addr != ":9000" {
		t.Errorf("Inspect.Addr = %q", cfg.Inspect.Addr)
	}
	if cfg.Inspect.StartURL != "/" {
		t.Errorf("Inspect.StartURL = %q, want default", cfg.Inspect.StartURL)
	}
	if cfg.S3.Region != "eu-west-1" || !cfg.S3.PathStyle {
		t.Errorf("S3 = %+v", cfg.S3)
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(configPath, []byte("{invalid"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if errors.CodeOf(err) != "C002" {
		t.Errorf("code = %q, want C002", errors.CodeOf(err))
	}
}

func TestLoadWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.Inspect.Addr != DefaultAddr {
		t.Errorf("Inspect.Addr = %q, want default", cfg.Inspect.Addr)
	}
}

func TestLoadFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(ConfigFileName, []byte(`{"basePath": "/wd"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(".") {
		t.Fatal("Exists(.) = false")
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.BasePath != "/wd" {
		t.Errorf("BasePath = %q, want /wd", cfg.BasePath)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "other.json"))
	if errors.CodeOf(err) != "C001" {
		t.Errorf("code = %q, want C001", errors.CodeOf(err))
	}
}

func TestEnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{"basePath": "/file", "log": {"level": "warn"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ROUTECTL_BASE_PATH", "/env")
	t.Setenv("ROUTECTL_LOG_FORMAT", "json")
	t.Setenv("ROUTECTL_ADDR", "0.0.0.0:8080")
	t.Setenv("ROUTECTL_METRICS_NAMESPACE", "shop")
	t.Setenv("ROUTECTL_TRACER_NAME", "shop-router")
	t.Setenv("ROUTECTL_S3_PATH_STYLE", "true")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.BasePath != "/env" {
		t.Errorf("BasePath = %q, want /env", cfg.BasePath)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want file value warn", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Inspect.Addr != "0.0.0.0:8080" {
		t.Errorf("Inspect.Addr = %q", cfg.Inspect.Addr)
	}
	if cfg.Metrics.Namespace != "shop" {
		t.Errorf("Metrics.Namespace = %q", cfg.Metrics.Namespace)
	}
	if cfg.Tracing.Name != "shop-router" {
		t.Errorf("Tracing.Name = %q", cfg.Tracing.Name)
	}
	if !cfg.S3.PathStyle {
		t.Error("S3.PathStyle should be true")
	}
}

func TestEnvOverrideInvalidBool(t *testing.T) {
	t.Setenv("ROUTECTL_S3_PATH_STYLE", "maybe")

	err := New().ApplyEnv()
	if errors.CodeOf(err) != "C003" {
		t.Errorf("code = %q, want C003", errors.CodeOf(err))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		detail string
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"relative base path", func(c *Config) { c.BasePath = "app" }, "basePath"},
		{"relative start url", func(c *Config) { c.Inspect.StartURL = "users" }, "inspect.startURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if errors.CodeOf(err) != "C003" {
				t.Errorf("code = %q, want C003", errors.CodeOf(err))
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}

	cfg := New()
	cfg.Log.Level = "WARNING"
	if err := cfg.Validate(); err != nil {
		t.Errorf("level names are case-insensitive: %v", err)
	}
}

func TestSave(t *testing.T) {
	cfg := New()
	if err := cfg.Save(); err == nil {
		t.Error("Save without a path should fail")
	}

	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	cfg.BasePath = "/saved"
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.BasePath != "/saved" {
		t.Errorf("BasePath = %q, want /saved", loaded.BasePath)
	}

	loaded.Manifest = "routes.yaml"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	again, err := LoadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if again.Manifest != "routes.yaml" {
		t.Errorf("Manifest = %q, want routes.yaml", again.Manifest)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "route", "/users/:id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["route"] != "/users/:id" {
		t.Errorf("record = %v", rec)
	}

	buf.Reset()
	LogConfig{Level: "nonsense", Format: "text"}.NewLogger(&buf).Debug("dropped")
	if buf.Len() != 0 {
		t.Errorf("invalid level should fall back to info, got %q", buf.String())
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
