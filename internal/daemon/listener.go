package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/g960059/tmuxccd/internal/audit"
	"github.com/g960059/tmuxccd/internal/config"
	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/pastebuf"
)

// Daemon owns the Unix-domain socket listener tmux CC clients dial into,
// the shared host-mux handle, and the daemon-wide paste buffer store
// every connection's Session shares.
type Daemon struct {
	cfg     config.Config
	mux     hostmux.Mux
	buffers *pastebuf.Store
	audit   *audit.Log

	waiters *waitRegistry

	mu       sync.Mutex
	listener net.Listener
	lockFile *os.File
	cancel   context.CancelFunc
	conns    map[net.Conn]struct{}
}

// registerConn and unregisterConn track every open client connection so
// kill-server can force-close them all, not just the connection that
// issued it.
func (d *Daemon) registerConn(c net.Conn) {
	d.mu.Lock()
	if d.conns == nil {
		d.conns = make(map[net.Conn]struct{})
	}
	d.conns[c] = struct{}{}
	d.mu.Unlock()
}

func (d *Daemon) unregisterConn(c net.Conn) {
	d.mu.Lock()
	delete(d.conns, c)
	d.mu.Unlock()
}

func (d *Daemon) closeAllConns() {
	d.mu.Lock()
	conns := d.conns
	d.conns = nil
	d.mu.Unlock()
	for c := range conns {
		c.Close() //nolint:errcheck
	}
}

// configSnapshot returns the daemon's current config, safe to call
// concurrently with UpdateConfig.
func (d *Daemon) configSnapshot() config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// UpdateConfig swaps in a freshly reloaded config. Only fields read per
// connection (DefaultWorkspace, and SocketPath as reported to clients)
// take effect, for new connections; the socket actually listened on is
// fixed for the life of a Serve call.
func (d *Daemon) UpdateConfig(cfg config.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
}

// Shutdown cancels the context Serve is running under, closing the
// listener, then force-closes every open client connection. Used by
// kill-server; the connection that issued kill-server has already
// written its own %exit by the time this runs, so closing it again here
// is a harmless no-op.
func (d *Daemon) Shutdown() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	d.closeAllConns()
}

// NewDaemon wires a Daemon to a host mux implementation and audit log; a
// nil audit log disables command auditing.
func NewDaemon(cfg config.Config, mux hostmux.Mux, auditLog *audit.Log) *Daemon {
	return &Daemon{
		cfg:     cfg,
		mux:     mux,
		buffers: pastebuf.NewStore(),
		audit:   auditLog,
		waiters: newWaitRegistry(),
	}
}

// Serve binds the control socket and accepts connections until ctx is
// cancelled, spawning one goroutine per connection supervised by an
// errgroup the way the daemon's background loops are supervised
// elsewhere in this codebase.
func (d *Daemon) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(d.cfg.SocketPath), 0o755); err != nil {
		return errors.Wrap(err, "create socket dir")
	}
	if err := d.acquireLock(); err != nil {
		return err
	}
	defer d.releaseLock() //nolint:errcheck

	if err := removeStaleSocket(d.cfg.SocketPath); err != nil {
		return err
	}

	ln, err := net.Listen("unix", d.cfg.SocketPath)
	if err != nil {
		return errors.Wrap(err, "listen uds")
	}
	if err := os.Chmod(d.cfg.SocketPath, 0o600); err != nil {
		ln.Close() //nolint:errcheck
		return errors.Wrap(err, "chmod socket")
	}

	servCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.mu.Lock()
	d.listener = ln
	d.cancel = cancel
	d.mu.Unlock()

	group, groupCtx := errgroup.WithContext(servCtx)
	group.Go(func() error {
		<-groupCtx.Done()
		return ln.Close()
	})

	for {
		conn, err := ln.Accept()
		if err != nil {
			if groupCtx.Err() != nil {
				break
			}
			return errors.Wrap(err, "accept")
		}
		group.Go(func() error {
			d.handleConn(groupCtx, conn)
			return nil
		})
	}

	err = group.Wait()
	os.Remove(d.cfg.SocketPath) //nolint:errcheck
	if err != nil && groupCtx.Err() == nil {
		return err
	}
	return nil
}

func removeStaleSocket(path string) error {
	st, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "stat socket path")
	}
	if st.Mode()&os.ModeSocket == 0 {
		return errors.Errorf("socket path exists and is not a unix socket: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return errors.Wrap(err, "remove stale socket")
	}
	return nil
}

func (d *Daemon) acquireLock() error {
	lockPath := d.cfg.SocketPath + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return errors.Wrap(err, "create lock dir")
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return errors.Wrap(err, "open lock file")
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close() //nolint:errcheck
		return errors.New("daemon already running")
	}
	d.mu.Lock()
	d.lockFile = f
	d.mu.Unlock()
	return nil
}

func (d *Daemon) releaseLock() error {
	d.mu.Lock()
	f := d.lockFile
	d.lockFile = nil
	d.mu.Unlock()
	if f == nil {
		return nil
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}
