package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/layout"
)

// Environment overrides, applied after the file is read.
const (
	EnvAPIURL     = "TRIPGRAPH_API_URL"
	EnvTimeout    = "TRIPGRAPH_TIMEOUT_SECONDS"
	EnvLogLevel   = "TRIPGRAPH_LOG_LEVEL"
	EnvViewerAddr = "TRIPGRAPH_VIEWER_ADDR"
)

// Config holds tripgraph configuration.
type Config struct {
	API    APIConfig      `toml:"api"`
	Layout layout.Physics `toml:"layout"`
	UI     UIConfig       `toml:"ui"`
	Log    LogConfig      `toml:"log"`
	Viewer ViewerConfig   `toml:"viewer"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL        string        `toml:"base_url" validate:"required,url"`
	TimeoutSeconds int           `toml:"timeout_seconds" validate:"gt=0"`
	Breaker        BreakerConfig `toml:"breaker"`
}

// BreakerConfig tunes the circuit breaker around backend calls.
type BreakerConfig struct {
	MaxRequests      uint32  `toml:"max_requests" validate:"gt=0"`
	IntervalSeconds  int     `toml:"interval_seconds" validate:"gte=0"`
	TimeoutSeconds   int     `toml:"timeout_seconds" validate:"gt=0"`
	FailureThreshold float64 `toml:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32  `toml:"min_requests"`
}

// UIConfig controls display options.
type UIConfig struct {
	Color    bool   `toml:"color"`
	Markdown bool   `toml:"markdown"`
	Style    string `toml:"style"` // glamour style: "auto", "dark", "light", "notty"
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
	File  string `toml:"file"` // empty uses tripgraph.log in the config dir
}

// ViewerConfig controls the local browser viewer.
type ViewerConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// Default returns the default configuration.
func Default() *Config {
	b := api.DefaultBreakerSettings()
	return &Config{
		API: APIConfig{
			BaseURL:        api.DefaultBaseURL,
			TimeoutSeconds: int(api.DefaultTimeout / time.Second),
			Breaker: BreakerConfig{
				MaxRequests:      b.MaxRequests,
				IntervalSeconds:  int(b.Interval / time.Second),
				TimeoutSeconds:   int(b.Timeout / time.Second),
				FailureThreshold: b.FailureThreshold,
				MinRequests:      b.MinRequests,
			},
		},
		Layout: layout.DefaultPhysics(),
		UI:     UIConfig{Color: true, Markdown: true, Style: "auto"},
		Log:    LogConfig{Level: "info"},
		Viewer: ViewerConfig{Addr: "127.0.0.1:8765"},
	}
}

// Timeout is the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// BreakerSettings converts the [api.breaker] section for the client.
func (c *Config) BreakerSettings() api.BreakerSettings {
	b := c.API.Breaker
	return api.BreakerSettings{
		MaxRequests:      b.MaxRequests,
		Interval:         time.Duration(b.IntervalSeconds) * time.Second,
		Timeout:          time.Duration(b.TimeoutSeconds) * time.Second,
		FailureThreshold: b.FailureThreshold,
		MinRequests:      b.MinRequests,
	}
}

// LogFile is the path the TUI logs to.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(ConfigDir(), "tripgraph.log")
}

var validate = validator.New()

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigDir returns the tripgraph config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tripgraph")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ProjectFile is the per-project override file looked up from the working
// directory upwards.
const ProjectFile = ".tripgraph.toml"

// Load reads the config file at path (Path when empty) over the defaults,
// then the nearest project file, then .env and environment overrides.
// Missing files are not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	for _, p := range []string{path, findProjectConfig()} {
		if p == "" {
			continue
		}
		if _, err := toml.DecodeFile(p, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
	}

	// .env in the working directory never overrides the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.API.TimeoutSeconds = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvViewerAddr); v != "" {
		c.Viewer.Addr = v
	}
	return nil
}

func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes the config to path (Path when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
// It reports whether a file was written.
func EnsureExists(path string) (bool, error) {
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	return true, Save(Default(), path)
}
