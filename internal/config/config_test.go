package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadArgsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.FPS != 60 {
		t.Fatalf("expected fps 60, got %d", cfg.App.FPS)
	}
	if !cfg.App.Watch {
		t.Fatalf("expected watch enabled by default")
	}
	if cfg.App.Placeholder != "Loading…" {
		t.Fatalf("expected default placeholder, got %q", cfg.App.Placeholder)
	}
	if cfg.File != "" {
		t.Fatalf("expected no config file, got %q", cfg.File)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadArgsFlagsOverrideEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	env := []string{
		"NODE_BROWSER_WIDTH=100",
		"NODE_BROWSER_MAX_WORKERS=2",
		"NODE_BROWSER_TRACE=true",
		"NODE_BROWSER_LOG_FILE=/tmp/env.log",
	}
	cfg, err := LoadArgs([]string{"--width", "80", "--fps=30", "pkg/...", "shop.db"}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Width != 80 {
		t.Fatalf("expected flag width 80, got %d", cfg.App.Width)
	}
	if cfg.App.MaxWorkers != 2 {
		t.Fatalf("expected env max workers 2, got %d", cfg.App.MaxWorkers)
	}
	if cfg.App.FPS != 30 {
		t.Fatalf("expected fps 30, got %d", cfg.App.FPS)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "/tmp/env.log" {
		t.Fatalf("expected env logging config, got %+v", cfg.Logging)
	}
	if len(cfg.App.Sources) != 2 || cfg.App.Sources[1] != "shop.db" {
		t.Fatalf("expected positional sources, got %v", cfg.App.Sources)
	}
	if cfg.Flags["width"] != "80" {
		t.Fatalf("expected width flag recorded, got %q", cfg.Flags["width"])
	}
}

func TestLoadArgsReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "width = 90\nfooter = true\nwatch = false\nplaceholder = \"...\"\nsources = [\"a.db\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadArgs([]string{"--config", path}, []string{"NODE_BROWSER_FOOTER=false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("expected file %s, got %s", path, cfg.File)
	}
	if cfg.App.Width != 90 {
		t.Fatalf("expected file width 90, got %d", cfg.App.Width)
	}
	if cfg.App.ShowFooter {
		t.Fatalf("expected env to override file footer")
	}
	if cfg.App.Watch {
		t.Fatalf("expected watch disabled by file")
	}
	if cfg.App.Placeholder != "..." {
		t.Fatalf("expected file placeholder, got %q", cfg.App.Placeholder)
	}
	if len(cfg.App.Sources) != 1 || cfg.App.Sources[0] != "a.db" {
		t.Fatalf("expected sources from file, got %v", cfg.App.Sources)
	}
}

func TestLoadArgsMissingExplicitFile(t *testing.T) {
	_, err := LoadArgs([]string{"--config=" + filepath.Join(t.TempDir(), "nope.toml")}, nil)
	if err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadArgsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("width = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArgs(nil, []string{"NODE_BROWSER_CONFIG=" + path}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadArgsUnknownFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := LoadArgs([]string{"--socket", "x"}, nil); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestLoadArgsHelpCarriesUsage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, arg := range []string{"--help", "-h"} {
		_, err := LoadArgs([]string{arg}, nil)
		var help *HelpError
		if !errors.As(err, &help) {
			t.Fatalf("expected HelpError for %s, got %v", arg, err)
		}
		if !errors.Is(err, pflag.ErrHelp) {
			t.Fatalf("expected %s to unwrap to pflag.ErrHelp", arg)
		}
		for _, want := range []string{"Usage: node-browser", "--max-workers", "--watch"} {
			if !strings.Contains(help.Usage, want) {
				t.Fatalf("expected usage to mention %q, got %q", want, help.Usage)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := [][]string{
		{"--width=-1"},
		{"--fps", "0"},
		{"--max-workers=-3"},
		{"--print"},
	}
	for _, args := range cases {
		cfg, err := LoadArgs(args, nil)
		if err != nil {
			t.Fatalf("unexpected parse error for %v: %v", args, err)
		}
		if err := Validate(cfg); err == nil {
			t.Fatalf("expected validation error for %v", args)
		}
	}
}
