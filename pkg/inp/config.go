package inp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v2"
)

// Config is the file form of the parse, load and reporting settings. It is
// read from YAML (.yaml, .yml) or HCL (.hcl) files. Keys left out of the
// file keep the values of DefaultConfig.
//
// YAML:
//
//	validate: true
//	workers: 4
//	store: decks.db
//
// HCL:
//
//	validate = true
//	workers  = 4
//	store    = "decks.db"
type Config struct {
	Debug            bool   `yaml:"debug" hcl:"debug,optional"`
	Validate         bool   `yaml:"validate" hcl:"validate,optional"`
	ProgressInterval int    `yaml:"progress_interval" hcl:"progress_interval,optional"`
	MaxLineLength    int    `yaml:"max_line_length" hcl:"max_line_length,optional"`
	Workers          int    `yaml:"workers" hcl:"workers,optional"`
	SkipErrors       bool   `yaml:"skip_errors" hcl:"skip_errors,optional"`
	CacheMemory      int64  `yaml:"cache_memory" hcl:"cache_memory,optional"`
	Store            string `yaml:"store" hcl:"store,optional"`
	Format           string `yaml:"format" hcl:"format,optional"`
	LogLevel         string `yaml:"log_level" hcl:"log_level,optional"`
	LogFormat        string `yaml:"log_format" hcl:"log_format,optional"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	parse := DefaultParseOptions()
	load := DefaultLoadOptions()
	return Config{
		Validate:         parse.Validate,
		ProgressInterval: parse.ProgressInterval,
		MaxLineLength:    parse.MaxLineLength,
		Workers:          load.Workers,
		SkipErrors:       load.SkipErrors,
		Format:           "text",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// LoadConfig reads and validates a configuration file, choosing the decoder
// by file extension.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".hcl":
		file, diags := hclparse.NewParser().ParseHCL(data, path)
		if diags.HasErrors() {
			return cfg, fmt.Errorf("failed to parse HCL config %s: %w", path, diags)
		}
		if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
			return cfg, fmt.Errorf("failed to decode HCL config %s: %w", path, diags)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every setting out of range.
func (c Config) Validate() error {
	var errs []error
	if c.ProgressInterval < 0 {
		errs = append(errs, fmt.Errorf("progress_interval must not be negative, got %d", c.ProgressInterval))
	}
	if c.MaxLineLength < 0 {
		errs = append(errs, fmt.Errorf("max_line_length must not be negative, got %d", c.MaxLineLength))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.CacheMemory < 0 {
		errs = append(errs, fmt.Errorf("cache_memory must not be negative, got %d", c.CacheMemory))
	}
	switch c.Format {
	case "text", "markdown", "html":
	default:
		errs = append(errs, fmt.Errorf("format must be text, markdown or html, got %q", c.Format))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// ParseOptions returns the parse options the configuration describes.
func (c Config) ParseOptions() ParseOptions {
	opts := DefaultParseOptions()
	opts.Debug = c.Debug
	opts.Validate = c.Validate
	if c.ProgressInterval > 0 {
		opts.ProgressInterval = c.ProgressInterval
	}
	if c.MaxLineLength > 0 {
		opts.MaxLineLength = c.MaxLineLength
	}
	return opts
}

// LoadOptions returns the load options the configuration describes.
func (c Config) LoadOptions() LoadOptions {
	opts := DefaultLoadOptions()
	opts.Parse = c.ParseOptions()
	opts.SkipErrors = c.SkipErrors
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	opts.Parallel = opts.Workers > 1
	return opts
}

// ErrNoConfig is returned by FindConfig when no candidate file exists.
var ErrNoConfig = errors.New("no config file found")

// FindConfig returns the first of inpdeck.yaml, inpdeck.yml and inpdeck.hcl
// present in dir.
func FindConfig(dir string) (string, error) {
	for _, name := range []string{"inpdeck.yaml", "inpdeck.yml", "inpdeck.hcl"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNoConfig
}
