package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/patchwork/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "patchwork.yaml"

	// AltConfigFileName is accepted when ConfigFileName is absent.
	AltConfigFileName = "patchwork.json"

	// DefaultRootID is the id of the host element the root mounts into.
	DefaultRootID = "app"

	// DefaultAddr is the default server listen address.
	DefaultAddr = "localhost:8080"

	// DefaultPath is the default websocket endpoint.
	DefaultPath = "/ws"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "patchwork"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "github.com/vango-dev/patchwork"
)

// Drain modes accepted in DrainMode.
const (
	DrainSync     = "sync"
	DrainDeferred = "deferred"
)

// Config represents the complete patchwork.yaml configuration.
type Config struct {
	// RootID is the id of the host element the root component mounts into.
	RootID string `yaml:"rootId,omitempty"`

	// DrainMode is "sync" or "deferred".
	DrainMode string `yaml:"drainMode,omitempty"`

	// Debug enables debug logging regardless of LogLevel.
	Debug bool `yaml:"debug,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`

	// Server contains remote host transport settings.
	Server ServerConfig `yaml:"server,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `yaml:"tracing,omitempty"`

	configPath string
}

// ServerConfig contains remote host transport settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`

	// Path is the websocket endpoint.
	Path string `yaml:"path,omitempty"`

	// Route is the path each new session navigates to first.
	Route string `yaml:"route,omitempty"`

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration `yaml:"writeTimeout,omitempty"`

	// ReadLimit is the largest client frame accepted, in bytes.
	ReadLimit int64 `yaml:"readLimit,omitempty"`

	// BinaryOps sends ops frames in the binary encoding.
	BinaryOps bool `yaml:"binaryOps,omitempty"`

	// AllowedOrigins lists origins permitted to open sessions. Empty allows
	// same-origin requests only.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	TracerName string `yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Default is an alias for New.
func Default() *Config {
	return New()
}

// Load reads configuration from the specified directory. It looks for
// patchwork.yaml, then patchwork.json.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		alt := filepath.Join(dir, AltConfigFileName)
		if _, err := os.Stat(alt); err == nil {
			path = alt
		}
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. JSON files
// are accepted as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigUnreadable).
				WithDetail("no %s found in %s", ConfigFileName, filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New(errors.CodeConfigUnreadable).Wrap(err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigUnreadable).
			WithDetail("failed to parse %s", filepath.Base(path)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration as YAML to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(errors.CodeConfigUnreadable).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigUnreadable).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.RootID == "" {
		c.RootID = DefaultRootID
	}
	if c.DrainMode == "" {
		c.DrainMode = DrainSync
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.Server.Route == "" {
		c.Server.Route = "/"
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ReadLimit == 0 {
		c.Server.ReadLimit = 64 * 1024
	}

	// Telemetry
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.DrainMode {
	case DrainSync, DrainDeferred:
	default:
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("drainMode must be %q or %q, got %q", DrainSync, DrainDeferred, c.DrainMode)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("unknown logLevel %q", c.LogLevel)
	}
	if strings.ContainsAny(c.RootID, " \t\n") {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("rootId %q contains whitespace", c.RootID)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("server.path %q must start with /", c.Server.Path)
	}
	if !strings.HasPrefix(c.Server.Route, "/") {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("server.route %q must start with /", c.Server.Route)
	}
	if c.Server.ReadLimit < 0 || c.Server.WriteTimeout < 0 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("server limits must not be negative")
	}
	return nil
}

// Deferred reports whether the scheduler should leave draining to the
// embedder.
func (c *Config) Deferred() bool {
	return c.DrainMode == DrainDeferred
}

// Level returns the slog level for LogLevel, or debug when Debug is set.
func (c *Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, AltConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the directory holding a
// config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigUnreadable).
				WithDetail("no %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}
