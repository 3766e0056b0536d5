// Package config loads tmuxccd's configuration: built-in defaults,
// overlaid by an optional YAML file, with an optional fsnotify watch for
// hot-reloading the parts of it that are safe to change live.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the control-mode daemon.
type Config struct {
	SocketPath string `yaml:"socket_path"`
	CacheDir   string `yaml:"cache_dir"`
	AuditDB    string `yaml:"audit_db"`

	// DefaultWorkspace is the host-mux workspace every new connection
	// attaches to.
	DefaultWorkspace string `yaml:"default_workspace"`

	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	CommandTimeout   time.Duration `yaml:"command_timeout"`
	NotifyTickPeriod time.Duration `yaml:"notify_tick_period"`

	// EscapeTime is loaded but not read elsewhere: show-options reports a
	// fixed escape-time of 500, and no input timing is modeled.
	EscapeTime time.Duration `yaml:"escape_time"`
}

func DefaultConfig() Config {
	return Config{
		SocketPath:       defaultSocketPath(),
		CacheDir:         defaultCacheDir(),
		AuditDB:          defaultAuditDBPath(),
		DefaultWorkspace: "default",
		ConnectTimeout:   3 * time.Second,
		CommandTimeout:   5 * time.Second,
		NotifyTickPeriod: 1 * time.Second,
		EscapeTime:       500 * time.Millisecond,
	}
}

func defaultSocketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir != "" {
		return filepath.Join(runtimeDir, "tmuxccd", "tmuxccd.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tmuxccd.sock"
	}
	return filepath.Join(home, ".local", "state", "tmuxccd", "tmuxccd.sock")
}

func defaultCacheDir() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome != "" {
		return filepath.Join(cacheHome, "tmuxccd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cache/tmuxccd"
	}
	return filepath.Join(home, ".cache", "tmuxccd")
}

func defaultAuditDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tmuxccd-audit.db"
	}
	return filepath.Join(home, ".local", "state", "tmuxccd", "audit.db")
}

// Load reads DefaultConfig() overlaid with the YAML file at path, if it
// exists. A missing file is not an error — it just means defaults apply.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "config: read file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "config: parse yaml")
	}
	return cfg, nil
}

// Watch reloads the config file on write events and hands each new
// parsed Config to onChange. It runs until the returned stop func is
// called, which also closes the watcher, matching the fsnotify watch-loop idiom: a single
// watcher goroutine draining both Events and Errors channels.
func Watch(path string, onChange func(Config)) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "config: create watcher")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, errors.Wrap(err, "config: watch dir")
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if cfg, err := Load(path); err == nil {
					onChange(cfg)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() error {
		close(done)
		return watcher.Close()
	}, nil
}
