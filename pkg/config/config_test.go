package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/survfit/pkg/cache"
	"github.com/matzehuels/survfit/pkg/errors"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "localhost:8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.CacheTTL != 168*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	want, _ := DefaultCacheDir()
	if cfg.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, want)
	}
	if cfg.Backend() != "file" {
		t.Errorf("Backend() = %q, want file", cfg.Backend())
	}
}

func TestLoadFrom(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		name    string
		vars    map[string]string
		check   func(*Config) bool
		backend string
	}{
		{
			name:    "ttl",
			vars:    map[string]string{"SURVFIT_CACHE_TTL": "90m"},
			check:   func(c *Config) bool { return c.CacheTTL == 90*time.Minute },
			backend: "file",
		},
		{
			name:    "home dir",
			vars:    map[string]string{"SURVFIT_CACHE_DIR": "~/figs"},
			check:   func(c *Config) bool { return c.CacheDir == filepath.Join(home, "figs") },
			backend: "file",
		},
		{
			name:    "redis",
			vars:    map[string]string{"SURVFIT_REDIS_URL": "redis://localhost:6379/0"},
			check:   func(c *Config) bool { return c.RedisPrefix == "survfit:" },
			backend: "redis",
		},
		{
			name:    "disabled wins",
			vars:    map[string]string{"SURVFIT_REDIS_URL": "redis://localhost:6379/0", "SURVFIT_NO_CACHE": "true"},
			check:   func(c *Config) bool { return c.NoCache },
			backend: "none",
		},
		{
			name:    "addr",
			vars:    map[string]string{"SURVFIT_ADDR": ":9000"},
			check:   func(c *Config) bool { return c.Addr == ":9000" },
			backend: "file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.vars)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
			if got := cfg.Backend(); got != tt.backend {
				t.Errorf("Backend() = %q, want %q", got, tt.backend)
			}
		})
	}
}

func TestLoadFromErrors(t *testing.T) {
	for _, vars := range []map[string]string{
		{"SURVFIT_CACHE_TTL": "soon"},
		{"SURVFIT_CACHE_TTL": "-1h"},
		{"SURVFIT_NO_CACHE": "maybe"},
	} {
		if _, err := LoadFrom(vars); !errors.Is(err, errors.ErrCodeConfiguration) {
			t.Errorf("LoadFrom(%v) error = %v, want CONFIGURATION", vars, err)
		}
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	cfg, _ := LoadFrom(map[string]string{"SURVFIT_CACHE_DIR": t.TempDir()})
	c, err := cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("OpenCache() = %T, want *cache.FileCache", c)
	}

	cfg, _ = LoadFrom(map[string]string{"SURVFIT_NO_CACHE": "1"})
	c, err = cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("OpenCache() = %T, want cache.NullCache", c)
	}
}
