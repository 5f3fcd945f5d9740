package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a fresh directory so config-file discovery never
// picks up a developer's real squint.yaml.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(orig)
		ResetConfig()
	})
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.True(t, cfg.History)
	assert.False(t, cfg.StrictOverlays)
	assert.False(t, cfg.Simulate)
	assert.Equal(t, int64(DefaultSeed), cfg.Seed)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := chdir(t)

	content := "state_path: custom.db\nstrict_overlays: true\nseed: 99\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "squint.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.StatePath)
	assert.True(t, cfg.StrictOverlays)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, "squint.yaml", GetConfigFileUsed())
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := chdir(t)

	explicit := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("simulate: true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "squint.yaml"), []byte("simulate: false\n"), 0o644))

	cfg, err := LoadConfig(explicit, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Simulate, "explicit path wins over squint.yaml")
	assert.Equal(t, explicit, GetConfigFileUsed())
}

func TestLoadConfigYmlFallback(t *testing.T) {
	dir := chdir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "squint.yml"), []byte("log_format: yaml\n"), 0o644))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.LogFormat)
	assert.Equal(t, "squint.yml", GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := chdir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "squint.yaml"), []byte("state_path: from_file.db\n"), 0o644))
	t.Setenv("SQUINT_STATE_PATH", "from_env.db")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env.db", cfg.StatePath)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	chdir(t)
	t.Setenv("SQUINT_STATE_PATH", "from_env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "")
	flags.Bool("strict-overlays", false, "")
	require.NoError(t, flags.Set("state", "from_flag.db"))
	require.NoError(t, flags.Set("strict-overlays", "true"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag.db", cfg.StatePath, "--state maps onto state_path")
	assert.True(t, cfg.StrictOverlays, "kebab-case flag maps onto snake_case key")
}

func TestLoadConfigUnchangedFlagsIgnored(t *testing.T) {
	chdir(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "flag_default.db", "")

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultStateFile, cfg.StatePath,
		"flag defaults never override config defaults")
}

func TestLoadConfigBadFile(t *testing.T) {
	dir := chdir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "squint.yaml"), []byte("state_path: [unclosed\n"), 0o644))

	_, err := LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetCurrentConfig(t *testing.T) {
	chdir(t)

	assert.Nil(t, GetCurrentConfig())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Same(t, cfg, GetCurrentConfig())

	ResetConfig()
	assert.Nil(t, GetCurrentConfig())
}

func TestGetLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	fallback := GetLogger(context.Background())
	require.NotNil(t, fallback)
	assert.False(t, fallback.Enabled(context.Background(), slog.LevelError))
}
