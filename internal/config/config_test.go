package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	v, err := NewViper(newFlags(t, args...))
	require.NoError(t, err)
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := load(t, "-o", "json", "-j", "3", "--width", "120", "--debounce", "1s", "--extensions", "FLAC,ogg")
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, []string{".flac", ".ogg"}, cfg.Extensions)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("LOOPBAR_CACHE_SIZE", "16")
	t.Setenv("LOOPBAR_LOG_LEVEL", "debug")
	t.Setenv("LOOPBAR_EXTENSIONS", ".mp3,.opus")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{".mp3", ".opus"}, cfg.Extensions)

	cfg, err = load(t, "--cache-size", "32")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.CacheSize, "flags win over the environment")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOOPBAR_WIDTH=64\n"), 0o644))
	// Registers a restore of the original value before gotenv sets it.
	t.Setenv("LOOPBAR_WIDTH", "")
	require.NoError(t, os.Unsetenv("LOOPBAR_WIDTH"))

	require.NoError(t, LoadEnvFile(path))

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, LoadEnvFile(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"output", func(c *Config) { c.Output = "yaml" }, "output format"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"cache size", func(c *Config) { c.CacheSize = 0 }, "cache size"},
		{"width", func(c *Config) { c.Width = 0 }, "width"},
		{"debounce", func(c *Config) { c.Debounce = -time.Second }, "debounce"},
		{"extensions", func(c *Config) { c.Extensions = nil }, "extensions"},
	}

	require.NoError(t, Defaults().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestWorkerCount(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, runtime.NumCPU(), cfg.WorkerCount())
	cfg.Workers = 2
	assert.Equal(t, 2, cfg.WorkerCount())
}

func TestMatches(t *testing.T) {
	cfg := Defaults()
	assert.True(t, cfg.Matches("/music/Field.FLAC"))
	assert.True(t, cfg.Matches("bgm.opus"))
	assert.False(t, cfg.Matches("cover.jpg"))
	assert.False(t, cfg.Matches("README"))
}
