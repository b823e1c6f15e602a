package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Backend.URL != "http://localhost:8000" || cfg.Server.BasePath != "/admin/catalog" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Backend.Table("orders") != "orders" {
		t.Fatalf("expected table to default to entity name")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopadmin.yaml")
	body := `
server:
  port: "9090"
backend:
  url: http://cache.internal:8000
  tables:
    products: shopify_products
  timeout: 5s
search:
  debounce: 150ms
prefs:
  driver: sqlite
  dsn: file:prefs.db
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvBackendURL, "http://env.internal:8000")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.Host != "localhost" {
		t.Fatalf("unexpected server %+v", cfg.Server)
	}
	if cfg.Backend.URL != "http://env.internal:8000" {
		t.Fatalf("expected env override, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.Table("products") != "shopify_products" || cfg.Backend.Timeout != 5*time.Second {
		t.Fatalf("unexpected backend %+v", cfg.Backend)
	}
	if cfg.Search.Debounce != 150*time.Millisecond || cfg.Search.HitsPerPage != 50 {
		t.Fatalf("unexpected search %+v", cfg.Search)
	}
	if cfg.Prefs.Driver != DriverSQLite || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected prefs/log %+v %+v", cfg.Prefs, cfg.Log)
	}
}

func TestApplyEnv_NativeURLWinsAndAddrSplits(t *testing.T) {
	cfg := Defaults()
	env := map[string]string{
		EnvBackendURL:       "http://public:8000",
		EnvBackendURLNative: "http://native:8000",
		EnvAddr:             "0.0.0.0:7000",
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if cfg.Backend.URL != "http://native:8000" {
		t.Fatalf("expected native url, got %q", cfg.Backend.URL)
	}
	if cfg.Server.Addr() != "0.0.0.0:7000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr())
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing url", func(c *Config) { c.Backend.URL = "" }},
		{"sqlite without dsn", func(c *Config) { c.Prefs.Driver = DriverSQLite }},
		{"unknown driver", func(c *Config) { c.Prefs.Driver = "redis" }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative refresh retries", func(c *Config) { c.Backend.RefreshRetries = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
