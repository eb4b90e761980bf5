package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/star-coach/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flagCmd parses args into the global flag variables the way the root
// command does.
func flagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	t.Cleanup(func() {
		verbose, configPath, serverURL, dbPath = false, "", "", ""
	})

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "")
	cmd.Flags().StringVar(&configPath, "config", "", "")
	cmd.Flags().StringVar(&serverURL, "server", "", "")
	cmd.Flags().StringVar(&dbPath, "db", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		config.EnvAPIKey, config.EnvDatabaseURL, config.EnvServerURL, config.EnvDBPath, config.EnvPort,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadSettings(flagCmd(t))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, config.DefaultDBPath(), cfg.DBPath)
	assert.Empty(t, cfg.ServerURL)
	assert.False(t, cfg.Verbose)
}

func TestLoadSettings_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAPIKey, "env-key")
	t.Setenv(config.EnvServerURL, "http://env.example")
	t.Setenv(config.EnvPort, "9000")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://file.example","db_path":"/tmp/file.db"}`), 0o600))

	cfg, err := loadSettings(flagCmd(t, "--config", path, "--db", "/tmp/flag.db", "-v"))

	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "http://file.example", cfg.ServerURL)
	assert.Equal(t, "/tmp/flag.db", cfg.DBPath)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadSettings_ServerFlagWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvServerURL, "http://env.example")

	cfg, err := loadSettings(flagCmd(t, "--server", "https://proxy.example"))

	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example", cfg.ServerURL)
}

func TestLoadSettings_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := loadSettings(flagCmd(t, "--server", "ftp://proxy.example"))
	assert.ErrorContains(t, err, "server_url")

	_, err = loadSettings(flagCmd(t, "--config", filepath.Join(t.TempDir(), "missing.json")))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.log")

	log, err := newLogger(true, path)
	require.NoError(t, err)
	log.Debug("hello from the test")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
}

func TestLogFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u/.star-coach", "coach.log"), logFilePath("/home/u/.star-coach/sessions.db"))
}
