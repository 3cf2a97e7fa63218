package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/atomicstack/node-browser/internal/app"
	"github.com/atomicstack/node-browser/internal/frame"
	"github.com/atomicstack/node-browser/internal/loader"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the config file that was read, empty when none existed.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfig      = "NODE_BROWSER_CONFIG"
	envWidth       = "NODE_BROWSER_WIDTH"
	envHeight      = "NODE_BROWSER_HEIGHT"
	envShowFooter  = "NODE_BROWSER_FOOTER"
	envFPS         = "NODE_BROWSER_FPS"
	envMaxWorkers  = "NODE_BROWSER_MAX_WORKERS"
	envPlaceholder = "NODE_BROWSER_PLACEHOLDER"
	envWatch       = "NODE_BROWSER_WATCH"
	envTrace       = "NODE_BROWSER_TRACE"
	envLogFile     = "NODE_BROWSER_LOG_FILE"

	defaultConfigPath = "~/.config/node-browser/config.toml"
)

// fileConfig mirrors the TOML file. Pointers distinguish unset keys.
type fileConfig struct {
	Width       *int     `toml:"width"`
	Height      *int     `toml:"height"`
	Footer      *bool    `toml:"footer"`
	FPS         *int     `toml:"fps"`
	MaxWorkers  *int     `toml:"max_workers"`
	Placeholder *string  `toml:"placeholder"`
	Watch       *bool    `toml:"watch"`
	Trace       *bool    `toml:"trace"`
	LogFile     *string  `toml:"log_file"`
	Sources     []string `toml:"sources"`
}

// Load parses configuration from CLI arguments, environment variables and the
// config file.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Flags override
// the environment, which overrides the config file.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	configPath, explicit := configFlag(args)
	if !explicit {
		configPath = envOrDefault(env, envConfig, defaultConfigPath)
		explicit = configPath != defaultConfigPath
	}
	file, resolved, err := readFile(configPath, explicit)
	if err != nil {
		return Config{}, err
	}

	fs := pflag.NewFlagSet("node-browser", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	fs.SortFlags = false

	fs.String("config", configPath, "path to the TOML config file")
	width := fs.Int("width", envOrInt(env, envWidth, intOr(file.Width, 0)), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, intOr(file.Height, 0)), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, boolOr(file.Footer, false)), "enable footer hint row")
	fps := fs.Int("fps", envOrInt(env, envFPS, intOr(file.FPS, frame.DefaultFPS)), "frame rate of the render loop")
	maxWorkers := fs.Int("max-workers", envOrInt(env, envMaxWorkers, intOr(file.MaxWorkers, 0)), "cap on concurrent detail computations (0 is unbounded)")
	placeholder := fs.String("placeholder", envOrDefault(env, envPlaceholder, stringOr(file.Placeholder, loader.DefaultPlaceholder)), "text shown while a detail is loading")
	watch := fs.Bool("watch", envOrBool(env, envWatch, boolOr(file.Watch, true)), "reload documents when they change on disk")
	trace := fs.Bool("trace", envOrBool(env, envTrace, boolOr(file.Trace, false)), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, stringOr(file.LogFile, "")), "path to the log file")
	printMode := fs.Bool("print", false, "print an outline of each source instead of starting the UI")
	depth := fs.Int("depth", 2, "levels to expand with --print")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Config{}, &HelpError{Usage: "Usage: node-browser [flags] SOURCE...\n\n" + fs.FlagUsages()}
		}
		return Config{}, err
	}

	sources := fs.Args()
	if len(sources) == 0 {
		sources = append([]string(nil), file.Sources...)
	}

	cfg := Config{
		App: app.Config{
			Width:       *width,
			Height:      *height,
			ShowFooter:  *footer,
			FPS:         *fps,
			MaxWorkers:  *maxWorkers,
			Placeholder: *placeholder,
			Watch:       *watch,
			Sources:     sources,
			Print:       *printMode,
			PrintDepth:  *depth,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		File: resolved,
		Flags: map[string]string{
			"config":      configPath,
			"width":       strconv.Itoa(*width),
			"height":      strconv.Itoa(*height),
			"footer":      strconv.FormatBool(*footer),
			"fps":         strconv.Itoa(*fps),
			"max-workers": strconv.Itoa(*maxWorkers),
			"placeholder": *placeholder,
			"watch":       strconv.FormatBool(*watch),
			"trace":       strconv.FormatBool(*trace),
			"logFile":     *logFile,
			"print":       strconv.FormatBool(*printMode),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// configFlag finds --config before the full flag set exists, since the file
// supplies the other flags' defaults.
func configFlag(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v, true
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// readFile loads path. A missing default file is not an error; a missing
// explicitly requested one is.
func readFile(path string, explicit bool) (fileConfig, string, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return fileConfig{}, "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return fileConfig{}, "", nil
		}
		return fileConfig{}, "", fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, "", fmt.Errorf("parse config %s: %w", resolved, err)
	}
	return fc, resolved, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("config path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

// HelpError is returned by LoadArgs when -h or --help was passed.
type HelpError struct {
	Usage string
}

func (e *HelpError) Error() string { return pflag.ErrHelp.Error() }

func (e *HelpError) Unwrap() error { return pflag.ErrHelp }

// MustLoad returns configuration or exits. Help requests print usage and exit 0.
func MustLoad() Config {
	cfg, err := Load()
	var help *HelpError
	if errors.As(err, &help) {
		fmt.Fprint(os.Stdout, help.Usage)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	switch {
	case cfg.App.Width < 0:
		return fmt.Errorf("width must be >= 0 (got %d)", cfg.App.Width)
	case cfg.App.Height < 0:
		return fmt.Errorf("height must be >= 0 (got %d)", cfg.App.Height)
	case cfg.App.FPS <= 0:
		return fmt.Errorf("fps must be > 0 (got %d)", cfg.App.FPS)
	case cfg.App.MaxWorkers < 0:
		return fmt.Errorf("max-workers must be >= 0 (got %d)", cfg.App.MaxWorkers)
	case cfg.App.Print && len(cfg.App.Sources) == 0:
		return errors.New("--print needs at least one source")
	}
	return nil
}
