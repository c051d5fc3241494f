// Package config loads the loopbar command configuration.
//
// Values come from command-line flags, then LOOPBAR_* environment
// variables, then a .env file, then defaults. Flag names use dashes; the
// matching variable upper-cases the name and swaps dashes for underscores
// (--cache-size is LOOPBAR_CACHE_SIZE).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix is the prefix of every environment variable.
const EnvPrefix = "LOOPBAR"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config is the resolved command configuration.
type Config struct {
	LogLevel   string
	LogFormat  string
	Output     string
	Workers    int // 0 means one per CPU
	CacheSize  int
	Width      int
	Debounce   time.Duration
	Extensions []string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		LogLevel:   "info",
		LogFormat:  "console",
		Output:     OutputText,
		Workers:    0,
		CacheSize:  4096,
		Width:      80,
		Debounce:   250 * time.Millisecond,
		Extensions: []string{".flac", ".ogg", ".oga", ".opus", ".mp3", ".m4a", ".m4b", ".mp4"},
	}
}

// RegisterFlags defines the persistent flags every command shares.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("env-file", ".env", "dotenv file to load before reading LOOPBAR_* variables")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("log-format", d.LogFormat, "log encoding (console, json)")
	fs.StringP("output", "o", d.Output, "output format (text, json)")
	fs.IntP("workers", "j", d.Workers, "files resolved in parallel (0 = one per CPU)")
	fs.Int("cache-size", d.CacheSize, "resolved loops kept in memory")
	fs.Int("width", d.Width, "seekbar width in columns")
	fs.Duration("debounce", d.Debounce, "quiet period before a changed file is re-read")
	fs.StringSlice("extensions", d.Extensions, "file extensions to scan")
}

// NewViper returns a viper instance bound to fs and the environment.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v, nil
}

// LoadEnvFile applies a dotenv file to the process environment. Variables
// already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := gotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogLevel:   v.GetString("log-level"),
		LogFormat:  v.GetString("log-format"),
		Output:     v.GetString("output"),
		Workers:    v.GetInt("workers"),
		CacheSize:  v.GetInt("cache-size"),
		Width:      v.GetInt("width"),
		Debounce:   v.GetDuration("debounce"),
		Extensions: normalizeExtensions(v.GetStringSlice("extensions")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Output != OutputText && c.Output != OutputJSON:
		return fmt.Errorf("unknown output format %q", c.Output)
	case c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	case c.CacheSize <= 0:
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	case c.Width <= 0:
		return fmt.Errorf("width must be positive, got %d", c.Width)
	case c.Debounce < 0:
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	case len(c.Extensions) == 0:
		return errors.New("no file extensions configured")
	}
	return nil
}

// WorkerCount returns the effective parallelism.
func (c Config) WorkerCount() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// Matches reports whether path has one of the configured extensions.
func (c Config) Matches(path string) bool {
	return slices.Contains(c.Extensions, strings.ToLower(filepath.Ext(path)))
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range strings.Split(strings.Join(exts, ","), ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}
