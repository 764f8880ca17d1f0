package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/t14raptor/fastscope/config"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
jobs = 4

[resolver]
strict = true
warn-undefined = false
known-globals = ["jQuery", "$"]

[modules]
enabled = true
root = "src"
aliases = { "@app" = "app" }

[output]
color = "off"
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 4 {
		t.Errorf("got jobs %d, want 4", cfg.Jobs)
	}
	if !cfg.Resolver.Strict || cfg.Resolver.WarnUndefined {
		t.Errorf("got resolver %+v", cfg.Resolver)
	}
	if want := filepath.Join(dir, "src"); cfg.Modules.Root != want {
		t.Errorf("got root %q, want %q", cfg.Modules.Root, want)
	}
	if cfg.Modules.Aliases["@app"] != "app" {
		t.Errorf("got aliases %v", cfg.Modules.Aliases)
	}
	if cfg.Output.Color != config.ColorOff {
		t.Errorf("got color %q, want off", cfg.Output.Color)
	}
	if cfg.Output.MaxDiagnostics != config.Default().Output.MaxDiagnostics {
		t.Errorf("got max-diagnostics %d, want the default", cfg.Output.MaxDiagnostics)
	}

	opts := cfg.ResolverOptions()
	if !opts.Strict || !slices.Equal(opts.KnownGlobals, []string{"jQuery", "$"}) {
		t.Errorf("got options %+v", opts)
	}
}

func TestLoadDefaultsRootToConfigDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(writeConfig(t, dir, "[modules]\nenabled = true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Modules.Root != dir {
		t.Errorf("got root %q, want %q", cfg.Modules.Root, dir)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "jobs = ", "failed to parse TOML"},
		{"unknown key", "[resolver]\nstrictness = true\n", "unknown keys: resolver.strictness"},
		{"bad color", "[output]\ncolor = \"rainbow\"\n", "[output].color must be auto, on or off"},
		{"negative jobs", "jobs = -1\n", "jobs must not be negative"},
		{"empty global", "[resolver]\nknown-globals = [\" \"]\n", "known-globals contains an empty name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, t.TempDir(), tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := config.Find(nested)
	if err != nil || !ok {
		t.Fatalf("got %q, %t, %v, want the root config", got, ok, err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}
}

func TestValidateDefault(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
}
