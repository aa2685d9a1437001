// Package config loads mcbuilder settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. $XDG_CONFIG_HOME/mcbuilder/config.toml
//  3. mcbuilder.toml in the pack directory
//  4. MCBUILDER_CATALOG_URL, MCBUILDER_API_KEY and MCBUILDER_REDIS_URL
//
// Missing files are skipped. Unknown keys are rejected so that typos do
// not go unnoticed.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "mcbuilder"

// FileName is the per-pack configuration file.
const FileName = "mcbuilder.toml"

// Environment overrides.
const (
	EnvCatalogURL = "MCBUILDER_CATALOG_URL"
	EnvAPIKey     = "MCBUILDER_API_KEY"
	EnvRedisURL   = "MCBUILDER_REDIS_URL"
)

//go:embed defaults.toml
var defaults string

// Config holds every setting.
type Config struct {
	Catalog Catalog `toml:"catalog"`
	Cache   Cache   `toml:"cache"`
	Resolve Resolve `toml:"resolve"`
	Install Install `toml:"install"`
}

// Catalog configures the remote catalog.
type Catalog struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Cache configures the catalog response cache.
type Cache struct {
	TTL      time.Duration `toml:"ttl"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
}

// Resolve configures dependency resolution.
type Resolve struct {
	Concurrency int `toml:"concurrency"`
}

// Install configures artifact synchronization.
type Install struct {
	Concurrency int    `toml:"concurrency"`
	ModsDir     string `toml:"mods_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	if _, err := toml.Decode(defaults, &cfg); err != nil {
		panic("config: invalid built-in defaults: " + err.Error())
	}
	return &cfg
}

// UserPath returns the per-user configuration file path.
func UserPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// Load reads the configuration for the pack in packDir.
func Load(packDir string) (*Config, error) {
	return LoadFrom([]string{UserPath(), filepath.Join(packDir, FileName)}, os.Getenv)
}

// LoadFrom layers the given files over the defaults, then applies
// environment overrides read through getenv.
func LoadFrom(paths []string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	for _, path := range paths {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		return errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}
	if v := getenv(EnvCatalogURL); v != "" {
		c.Catalog.URL = v
	}
	if v := getenv(EnvAPIKey); v != "" {
		c.Catalog.APIKey = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Catalog.URL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "catalog.url must be set")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Resolve.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "resolve.concurrency must be at least 1")
	}
	if c.Install.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "install.concurrency must be at least 1")
	}
	dir := c.Install.ModsDir
	if dir == "" || filepath.IsAbs(dir) || !filepath.IsLocal(dir) {
		return errors.New(errors.ErrCodeInvalidInput, "install.mods_dir %q must be a relative path inside the pack", dir)
	}
	return nil
}

// CacheDir returns the file cache directory.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(xdg.CacheHome, AppName)
}

// ModsDir returns the artifact directory of the pack in packDir.
func (c *Config) ModsDir(packDir string) string {
	return filepath.Join(packDir, c.Install.ModsDir)
}
