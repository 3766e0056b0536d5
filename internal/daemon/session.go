// Package daemon implements the per-connection control-mode protocol
// state machine, command dispatch, and the Unix-socket listener that
// accepts tmux CC clients.
package daemon

import (
	"os"
	"sync"
	"time"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/idmap"
	"github.com/g960059/tmuxccd/internal/model"
	"github.com/g960059/tmuxccd/internal/pastebuf"
	"github.com/g960059/tmuxccd/internal/response"
)

// Session is the per-client state for one control-mode connection: the id
// map, the response writer with its own %begin/%end counter, the active
// pane/window/session pointers, and the bits that feed format-string
// expansion.
type Session struct {
	mux     hostmux.Mux
	idmap   *idmap.Map
	buffers *pastebuf.Store
	writer  *response.Writer
	waiters  *waitRegistry
	shutdown func()

	workspace string

	activePaneID    uint64
	hasActivePaneID bool

	activeWindowID    uint64
	hasActiveWindowID bool

	activeSessionID    uint64
	hasActiveSessionID bool

	// pendingNotifications holds notification lines queued by a handler
	// (e.g. attach-session's %session-changed) to be flushed immediately
	// after the command's own response block.
	pendingNotifications []string

	// detachRequested is set by detach-client (or kill-server); the
	// connection loop sends %exit and closes after the response is
	// flushed.
	detachRequested bool
	// exitReason carries the %exit reason string, if any, for the pending
	// detach (e.g. "server killed"); empty means a bare %exit.
	exitReason string
	// terminateServer is set by kill-server to tell the connection loop
	// to tear down the whole daemon, not just this one connection.
	terminateServer bool

	// suppressWindowChanged counts select-window and select-pane calls
	// this client issued; while it is non-zero, each EventPaneActivated
	// decrements it instead of being reported as %window-pane-changed.
	suppressWindowChanged uint32

	clientName string
	socketPath string

	// subMu guards subscriptions against concurrent access from the
	// connection's own command loop (refresh-client -B) and the
	// subscription poll ticker.
	subMu         sync.Mutex
	subscriptions map[string]*model.Subscription

	// pauseMu guards the pause/flow-control state below, touched from
	// both the connection's command loop (-f pause-after, -A) and the
	// per-pane output tap goroutines spawned by the notification pump.
	pauseMu sync.Mutex
	// pauseAfter is the refresh-client "-f pause-after=N" threshold; zero
	// means flow-control pausing is disarmed and every pane always uses
	// plain %output.
	pauseAfter time.Duration
	// pauseWaitExit records the ",wait-exit" suffix on pause-after.
	pauseWaitExit bool
	pausedPanes   map[hostmux.PaneID]bool
	lastOutputAt  map[hostmux.PaneID]time.Time

	// tapMu guards paneTaps, the set of live TapPaneOutput subscriptions
	// this session has registered with the mux.
	tapMu    sync.Mutex
	paneTaps map[hostmux.PaneID]func()
}

// NewSession creates a per-connection Session attached to workspace,
// sharing buffers (a daemon-wide paste buffer store) across connections
// the way tmux shares paste buffers across all clients of one server.
func NewSession(mux hostmux.Mux, buffers *pastebuf.Store, workspace string) *Session {
	return &Session{
		mux:           mux,
		idmap:         idmap.New(),
		buffers:       buffers,
		writer:        response.NewWriter(),
		workspace:     workspace,
		subscriptions: make(map[string]*model.Subscription),
		pausedPanes:   make(map[hostmux.PaneID]bool),
		lastOutputAt:  make(map[hostmux.PaneID]time.Time),
		paneTaps:      make(map[hostmux.PaneID]func()),
	}
}

func serverPID() uint64 {
	return uint64(os.Getpid())
}
