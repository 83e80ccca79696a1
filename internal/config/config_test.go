package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.Equal(t, time.Hour, cfg.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 10*time.Minute, cfg.PurgeGrace)
	assert.Equal(t, 1000, cfg.HistoryCapacity)
	assert.Equal(t, 15*time.Second, cfg.ExecTimeout)
	assert.Empty(t, cfg.WorkspaceRoot)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echod.yaml")
	body := "listen_addr: \":9100\"\nidle_timeout: 30m\nhistory_capacity: 50\nworkspace_root: /srv/echod\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 50, cfg.HistoryCapacity)
	assert.Equal(t, "/srv/echod", cfg.WorkspaceRoot)
	// Untouched keys keep their defaults.
	assert.Equal(t, time.Minute, cfg.SweepInterval)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9100\"\n"), 0o644))
	t.Setenv("ECHOD_LISTEN_ADDR", ":9200")
	t.Setenv("ECHOD_EXEC_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9200", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.ExecTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(*Config){
		"empty listen addr":    func(c *Config) { c.ListenAddr = "  " },
		"zero idle timeout":    func(c *Config) { c.IdleTimeout = 0 },
		"zero sweep interval":  func(c *Config) { c.SweepInterval = 0 },
		"negative purge grace": func(c *Config) { c.PurgeGrace = -time.Second },
		"zero history cap":     func(c *Config) { c.HistoryCapacity = 0 },
		"zero exec timeout":    func(c *Config) { c.ExecTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
