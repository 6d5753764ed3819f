package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	SeedFile string `yaml:"seedFile"`
	MaxConns int32  `yaml:"maxConns"`
}

type Config struct {
	OutputDir     string      `yaml:"outputDir"`
	RoutesDir     string      `yaml:"routesDir"`
	ComponentsDir string      `yaml:"componentsDir"`
	PublicDir     string      `yaml:"publicDir"`
	DebugHeaders  bool        `yaml:"debugHeaders"`
	DebugLogs     bool        `yaml:"debugLogs"`
	Store         StoreConfig `yaml:"store"`
}

// ProjectRoot is the directory layout directives are resolved against.
func (c Config) ProjectRoot() string {
	return filepath.Dir(filepath.Clean(c.RoutesDir))
}

func defaultConfig() *Config {
	return &Config{
		OutputDir:     "./cache",
		RoutesDir:     "routes",
		ComponentsDir: "components",
		PublicDir:     "public",
		Store: StoreConfig{
			Driver: "memory",
		},
	}
}

// LoadConfig reads the project config at path. A missing file yields the
// defaults; an unreadable or malformed one is an error.
var LoadConfig = func(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var loaded Config
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = &loaded
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.RoutesDir == "" {
		cfg.RoutesDir = def.RoutesDir
	}
	if cfg.ComponentsDir == "" {
		cfg.ComponentsDir = def.ComponentsDir
	}
	if cfg.PublicDir == "" {
		cfg.PublicDir = def.PublicDir
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = def.Store.Driver
	}
}

func applyEnv(cfg *Config) {
	if driver := os.Getenv("LIBRARY_STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Store.DSN = dsn
	}
}
