// Package config reads survfit's runtime settings from the environment.
//
//	SURVFIT_CACHE_DIR   file cache directory (default ~/.cache/survfit)
//	SURVFIT_REDIS_URL   use a shared redis cache instead of files
//	SURVFIT_CACHE_TTL   artifact lifetime (default 168h)
//	SURVFIT_NO_CACHE    disable caching entirely
//	SURVFIT_ADDR        preview server listen address (default localhost:8080)
//
// Figure recipes are configured separately, in TOML; see package recipe.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/survfit/pkg/cache"
	"github.com/matzehuels/survfit/pkg/errors"
)

// Config holds the runtime settings.
type Config struct {
	CacheDir    string        `env:"SURVFIT_CACHE_DIR"`
	RedisURL    string        `env:"SURVFIT_REDIS_URL"`
	RedisPrefix string        `env:"SURVFIT_REDIS_PREFIX" envDefault:"survfit:"`
	CacheTTL    time.Duration `env:"SURVFIT_CACHE_TTL" envDefault:"168h"`
	NoCache     bool          `env:"SURVFIT_NO_CACHE"`
	Addr        string        `env:"SURVFIT_ADDR" envDefault:"localhost:8080"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads settings from vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "read environment")
	}
	if cfg.CacheTTL < 0 {
		return nil, errors.Configuration("SURVFIT_CACHE_TTL cannot be negative")
	}
	if cfg.CacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}
	cfg.CacheDir = expandHome(cfg.CacheDir)
	return &cfg, nil
}

// DefaultCacheDir returns ~/.cache/survfit.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfiguration, err, "locate home directory")
	}
	return filepath.Join(home, ".cache", "survfit"), nil
}

// Backend names the cache backend the settings select.
func (c *Config) Backend() string {
	switch {
	case c.NoCache:
		return "none"
	case c.RedisURL != "":
		return "redis"
	default:
		return "file"
	}
}

// OpenCache opens the selected cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Backend() {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: c.RedisURL, Prefix: c.RedisPrefix})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(c.CacheDir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open cache dir %s", c.CacheDir)
		}
		return fc, nil
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
