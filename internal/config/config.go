package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/viewrouter/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "routectl.json"

	// DefaultAddr is the default inspector listen address.
	DefaultAddr = "localhost:7070"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler.
	DefaultLogFormat = "text"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "viewrouter"

	// DefaultTracerName is the default OpenTelemetry instrumentation name.
	DefaultTracerName = "github.com/vango-dev/viewrouter"
)

// Config represents the complete routectl.json configuration.
type Config struct {
	// Manifest is the default route manifest location (file or s3:// URL).
	Manifest string `json:"manifest,omitempty" env:"ROUTECTL_MANIFEST"`

	// BasePath overrides the manifest's base path when set.
	BasePath string `json:"basePath,omitempty" env:"ROUTECTL_BASE_PATH"`

	Log     LogConfig     `json:"log"`
	Inspect InspectConfig `json:"inspect"`
	Metrics MetricsConfig `json:"metrics"`
	Tracing TracingConfig `json:"tracing"`
	S3      S3Config      `json:"s3"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" env:"ROUTECTL_LOG_LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"ROUTECTL_LOG_FORMAT"`
}

// InspectConfig contains inspector server settings.
type InspectConfig struct {
	// Addr is the address the inspector listens on.
	Addr string `json:"addr,omitempty" env:"ROUTECTL_ADDR"`

	// StartURL is the path the inspected router starts at.
	StartURL string `json:"startURL,omitempty" env:"ROUTECTL_START_URL"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty" env:"ROUTECTL_METRICS_NAMESPACE"`
	Subsystem string `json:"subsystem,omitempty" env:"ROUTECTL_METRICS_SUBSYSTEM"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Name string `json:"name,omitempty" env:"ROUTECTL_TRACER_NAME"`
}

// S3Config contains settings for s3:// manifest sources. Credentials come
// from the default AWS chain.
type S3Config struct {
	Region    string `json:"region,omitempty" env:"ROUTECTL_S3_REGION"`
	Endpoint  string `json:"endpoint,omitempty" env:"ROUTECTL_S3_ENDPOINT"`
	PathStyle bool   `json:"pathStyle,omitempty" env:"ROUTECTL_S3_PATH_STYLE"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from path. An empty path means routectl.json in
// the working directory, which may be absent. Environment overrides are
// applied and the result is validated.
func Load(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		if !Exists(".") {
			cfg = New()
		} else if cfg, err = LoadFile(ConfigFileName); err != nil {
			return nil, err
		}
	} else if cfg, err = LoadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. Environment
// overrides are not applied.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create the file or omit --config to use defaults")
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv overrides fields from ROUTECTL_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return errors.New("C003").WithDetail("environment").Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C002").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("C002").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultAddr
	}
	if c.Inspect.StartURL == "" {
		c.Inspect.StartURL = "/"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Tracing.Name == "" {
		c.Tracing.Name = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("C003").
			WithDetailf("log.level %q", c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C003").
			WithDetailf("log.format %q", c.Log.Format).
			WithSuggestion("Use text or json")
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return errors.New("C003").
			WithDetailf("basePath %q must start with /", c.BasePath)
	}
	if !strings.HasPrefix(c.Inspect.StartURL, "/") {
		return errors.New("C003").
			WithDetailf("inspect.startURL %q must start with /", c.Inspect.StartURL)
	}
	return nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// NewLogger builds a slog logger writing to w. Invalid settings fall back
// to the defaults.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, ok := parseLevel(l.Level)
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
