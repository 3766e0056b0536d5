package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSaneValues(t *testing.T) {
	cfg := DefaultConfig()
	require.NotEmpty(t, cfg.SocketPath)
	require.NotEmpty(t, cfg.CacheDir)
	require.Equal(t, "default", cfg.DefaultWorkspace)
	require.Equal(t, 500*time.Millisecond, cfg.EscapeTime)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmuxccd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_workspace: scratch\nescape_time: 10ms\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "scratch", cfg.DefaultWorkspace)
	require.Equal(t, 10*time.Millisecond, cfg.EscapeTime)
	require.Equal(t, DefaultConfig().SocketPath, cfg.SocketPath)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmuxccd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_workspace: one\n"), 0o644))

	changed := make(chan Config, 4)
	stop, err := Watch(path, func(c Config) { changed <- c })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("default_workspace: two\n"), 0o644))

	select {
	case cfg := <-changed:
		require.Equal(t, "two", cfg.DefaultWorkspace)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
