// Package config loads fastscope.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/t14raptor/fastscope/resolver"
)

// FileName is the name searched for by Find.
const FileName = "fastscope.toml"

type Config struct {
	Resolver ResolverConfig `toml:"resolver"`
	Modules  ModulesConfig  `toml:"modules"`
	Output   OutputConfig   `toml:"output"`
	// Jobs bounds the files resolved in parallel; zero means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

type ResolverConfig struct {
	Strict                     bool     `toml:"strict"`
	WarnUndefined              bool     `toml:"warn-undefined"`
	KnownGlobals               []string `toml:"known-globals"`
	AllowReturnOutsideFunction bool     `toml:"allow-return-outside-function"`
}

type ModulesConfig struct {
	Enabled bool `toml:"enabled"`
	// Root is the directory bare specifiers are resolved against.
	Root string `toml:"root"`
	// Aliases map a specifier prefix to a directory below Root.
	Aliases map[string]string `toml:"aliases"`
}

type ColorMode string

const (
	ColorAuto ColorMode = "auto"
	ColorOn   ColorMode = "on"
	ColorOff  ColorMode = "off"
)

type OutputConfig struct {
	Color          ColorMode `toml:"color"`
	MaxDiagnostics int       `toml:"max-diagnostics"`
}

func Default() Config {
	return Config{
		Resolver: ResolverConfig{WarnUndefined: true},
		Modules:  ModulesConfig{Root: "."},
		Output:   OutputConfig{Color: ColorAuto, MaxDiagnostics: 200},
	}
}

// Load decodes path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !filepath.IsAbs(cfg.Modules.Root) {
		cfg.Modules.Root = filepath.Join(filepath.Dir(path), cfg.Modules.Root)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find walks up from dir looking for FileName.
func Find(dir string) (string, bool, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.Output.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		errs = append(errs, fmt.Errorf("[output].color must be auto, on or off, got %q", c.Output.Color))
	}
	if c.Output.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("[output].max-diagnostics must not be negative"))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative"))
	}
	for _, g := range c.Resolver.KnownGlobals {
		if strings.TrimSpace(g) == "" {
			errs = append(errs, fmt.Errorf("[resolver].known-globals contains an empty name"))
			break
		}
	}
	for prefix := range c.Modules.Aliases {
		if prefix == "" {
			errs = append(errs, fmt.Errorf("[modules].aliases contains an empty prefix"))
		}
	}
	return errors.Join(errs...)
}

// ResolverOptions converts the [resolver] table.
func (c Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		Strict:                     c.Resolver.Strict,
		WarnUndefined:              c.Resolver.WarnUndefined,
		KnownGlobals:               c.Resolver.KnownGlobals,
		AllowReturnOutsideFunction: c.Resolver.AllowReturnOutsideFunction,
	}
}
