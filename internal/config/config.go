// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultFile = "classjs.toml"

type Config struct {
	SourcePaths     []string      `toml:"source_paths"`
	OutputDir       string        `toml:"output_dir"`
	LibraryCatalogs []string      `toml:"library_catalogs"`
	Generator       Generator     `toml:"generator"`
	Exclude         Exclude       `toml:"exclude"`
	Watch           Watch         `toml:"watch"`
	Cache           Cache         `toml:"cache"`
	Observability   Observability `toml:"observability"`
	Trace           Trace         `toml:"trace"`
}

type Generator struct {
	RuntimeNamespace string `toml:"runtime_namespace"`
	DisableMainCall  bool   `toml:"disable_main_call"`
	SourceMaps       *bool  `toml:"source_maps"`
	Metadata         *bool  `toml:"metadata"`
	VerifyOutput     *bool  `toml:"verify_output"`
	// GlobalTypes are qualified class names whose static members are
	// emitted without a class prefix.
	GlobalTypes []string `toml:"global_types"`
	Workers     int      `toml:"workers"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"` // glob patterns matched against base names
}

type Watch struct {
	Debounce             time.Duration `toml:"debounce"`
	MaxRebuildsPerSecond float64       `toml:"max_rebuilds_per_second"`
}

type Cache struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

type Trace struct {
	Root string `toml:"root"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TOML text and applies defaults and environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.SourcePaths) == 0 {
		cfg.SourcePaths = []string{"."}
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = "build/js"
	}
	if strings.TrimSpace(cfg.Generator.RuntimeNamespace) == "" {
		cfg.Generator.RuntimeNamespace = "stjs"
	}
	if cfg.Generator.SourceMaps == nil {
		enabled := true
		cfg.Generator.SourceMaps = &enabled
	}
	if cfg.Generator.Metadata == nil {
		enabled := true
		cfg.Generator.Metadata = &enabled
	}
	if cfg.Generator.VerifyOutput == nil {
		enabled := true
		cfg.Generator.VerifyOutput = &enabled
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git"}
	}
	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRebuildsPerSecond == 0 {
		cfg.Watch.MaxRebuildsPerSecond = 2
	}
	if cfg.Cache.Enabled == nil {
		enabled := true
		cfg.Cache.Enabled = &enabled
	}
	if strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = ".classjs/cache.db"
	}
	if strings.TrimSpace(cfg.Trace.Root) == "" {
		cfg.Trace.Root = "."
	}
}

func validate(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.MaxRebuildsPerSecond < 0 {
		return fmt.Errorf("watch.max_rebuilds_per_second must not be negative, got %g", cfg.Watch.MaxRebuildsPerSecond)
	}
	if cfg.Generator.Workers < 0 {
		return fmt.Errorf("generator.workers must not be negative, got %d", cfg.Generator.Workers)
	}
	ns := cfg.Generator.RuntimeNamespace
	for i, r := range ns {
		letter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return fmt.Errorf("generator.runtime_namespace must be a JavaScript identifier, got %q", ns)
		}
	}
	for _, p := range cfg.SourcePaths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("source_paths must not contain empty entries")
		}
	}
	return nil
}

// Enabled reads an optional switch that defaults to on.
func Enabled(b *bool) bool {
	return b == nil || *b
}
