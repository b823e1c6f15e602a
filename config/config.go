package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvBackendURL       = "NEXT_PUBLIC_BACKEND_URL"
	EnvBackendURLNative = "SHOPADMIN_BACKEND_URL"
	EnvProject          = "SHOPADMIN_PROJECT"
	EnvAddr             = "SHOPADMIN_ADDR"
	EnvLogLevel         = "SHOPADMIN_LOG_LEVEL"
	EnvPrefsDriver      = "SHOPADMIN_PREFS_DRIVER"
	EnvPrefsDSN         = "SHOPADMIN_PREFS_DSN"
)

// Preference store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Config holds the service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Search  SearchConfig  `yaml:"search"`
	Export  ExportConfig  `yaml:"export"`
	Prefs   PrefsConfig   `yaml:"prefs"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
	Metrics  bool   `yaml:"metrics"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// BackendConfig points at the cache and search APIs.
type BackendConfig struct {
	URL              string            `yaml:"url"`
	Project          string            `yaml:"project"`
	Tables           map[string]string `yaml:"tables"`
	Timeout          time.Duration     `yaml:"timeout"`
	ChunkConcurrency int               `yaml:"chunk_concurrency"`
	SampleSize       int               `yaml:"sample_size"`
	Offline          bool              `yaml:"offline"`
	RefreshRetries   int               `yaml:"refresh_retries"`
}

// Table returns the cache table for entity, defaulting to the entity name.
func (b BackendConfig) Table(entity string) string {
	if table := strings.TrimSpace(b.Tables[entity]); table != "" {
		return table
	}
	return entity
}

// SearchConfig tunes remote search.
type SearchConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Debounce    time.Duration `yaml:"debounce"`
	HitsPerPage int           `yaml:"hits_per_page"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	DefaultFormat string    `yaml:"default_format"`
	MaxRows       int       `yaml:"max_rows"`
	Locale        string    `yaml:"locale"`
	Timezone      string    `yaml:"timezone"`
	PDF           PDFConfig `yaml:"pdf"`
}

// PDFConfig configures the PDF renderer.
type PDFConfig struct {
	Engine      string        `yaml:"engine"`
	BrowserPath string        `yaml:"browser_path"`
	Timeout     time.Duration `yaml:"timeout"`
	PageSize    string        `yaml:"page_size"`
}

// PrefsConfig selects the preference store.
type PrefsConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:     "localhost",
			Port:     "8080",
			BasePath: "/admin/catalog",
			Metrics:  true,
		},
		Backend: BackendConfig{
			URL:              "http://localhost:8000",
			Project:          "shopify",
			Tables:           map[string]string{},
			Timeout:          15 * time.Second,
			ChunkConcurrency: 4,
			SampleSize:       50,
			RefreshRetries:   2,
		},
		Search: SearchConfig{
			Enabled:     true,
			Debounce:    300 * time.Millisecond,
			HitsPerPage: 50,
		},
		Export: ExportConfig{
			DefaultFormat: "csv",
			MaxRows:       100000,
			Locale:        "en-US",
			PDF: PDFConfig{
				Engine:   "auto",
				Timeout:  30 * time.Second,
				PageSize: "LETTER",
			},
		},
		Prefs: PrefsConfig{
			Driver: DriverMemory,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns defaults, overlaid by the YAML file at path when path is not
// empty, then by environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// ApplyEnv overlays environment values read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get(EnvBackendURL); ok {
		c.Backend.URL = v
	}
	if v, ok := get(EnvBackendURLNative); ok {
		c.Backend.URL = v
	}
	if v, ok := get(EnvProject); ok {
		c.Backend.Project = v
	}
	if v, ok := get(EnvAddr); ok {
		if host, port, found := strings.Cut(v, ":"); found {
			if host != "" {
				c.Server.Host = host
			}
			c.Server.Port = port
		} else {
			c.Server.Port = v
		}
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := get(EnvPrefsDriver); ok {
		c.Prefs.Driver = v
	}
	if v, ok := get(EnvPrefsDSN); ok {
		c.Prefs.DSN = v
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" && !c.Backend.Offline {
		return fmt.Errorf("backend.url is required")
	}
	if c.Backend.ChunkConcurrency < 0 {
		return fmt.Errorf("backend.chunk_concurrency must not be negative")
	}
	if c.Backend.RefreshRetries < 0 {
		return fmt.Errorf("backend.refresh_retries must not be negative")
	}
	switch c.Prefs.Driver {
	case DriverMemory:
	case DriverSQLite, DriverFile:
		if strings.TrimSpace(c.Prefs.DSN) == "" {
			return fmt.Errorf("prefs.dsn is required for driver %q", c.Prefs.Driver)
		}
	default:
		return fmt.Errorf("unknown prefs.driver %q", c.Prefs.Driver)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}
