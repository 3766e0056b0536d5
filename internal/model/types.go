// Package model holds the plain data types shared across the tmux
// control-mode compatibility daemon: sessions, windows, panes, and thin
// aliases for the parsed target/format/layout/paste-buffer types each
// lower-level package already defines.
//
// This package imports only the leaf packages those types come from — it
// has no outgoing dependency on internal/daemon, internal/hostmux, or
// internal/config, so any of those packages can depend on model without a
// cycle.
package model

import (
	"time"

	"github.com/g960059/tmuxccd/internal/layout"
	"github.com/g960059/tmuxccd/internal/pastebuf"
	"github.com/g960059/tmuxccd/internal/tmuxfmt"
	"github.com/g960059/tmuxccd/internal/tmuxtarget"
)

// Target is a parsed tmux -t TARGET string.
type Target = tmuxtarget.Target

// FormatContext carries the per-row state used to expand #{} format
// strings for a pane, window, session, or buffer.
type FormatContext = tmuxfmt.Context

// LayoutNode is a node in a pane-geometry tree, as rendered into a
// %layout-change description.
type LayoutNode = layout.Node

// PasteBuffer is a single named paste buffer entry.
type PasteBuffer = pastebuf.Buffer

// Session is a tmux session, backed 1:1 by a host-mux workspace.
type Session struct {
	ID        uint64
	Workspace string
	Name      string
	Attached  uint64
	Created   time.Time
}

// Window is a tmux window, backed 1:1 by a host-mux tab.
type Window struct {
	ID        uint64
	HostTab   string
	SessionID uint64
	Index     uint64
	Name      string
	Active    bool
	Layout    LayoutNode
}

// Pane is a tmux pane, backed 1:1 by a host-mux pane.
type Pane struct {
	ID             uint64
	HostPane       string
	WindowID       uint64
	Index          uint64
	Width          uint64
	Height         uint64
	Left           uint64
	Top            uint64
	Active         bool
	Dead           bool
	Title          string
	CurrentCommand string
	CurrentPath    string
	PID            uint64
	Mode           string
}

// SubscriptionKind tags which refresh-client -B subscription variety a
// Subscription describes.
type SubscriptionKind int

const (
	// SubscriptionFormat re-evaluates a format string against Target on
	// every tick and emits %subscription-changed when the rendered value
	// differs from the last tick.
	SubscriptionFormat SubscriptionKind = iota
	// SubscriptionWindow fires %subscription-changed whenever the set of
	// windows in Target's session changes.
	SubscriptionWindow
)

// Subscription is one refresh-client -B ... subscription registered by a
// client connection. Target is the raw tmux target string (re-resolved
// against the current mux state on every poll, since the pane/window it
// points at can move between ticks).
type Subscription struct {
	Name   string
	Kind   SubscriptionKind
	Target string
	Format string
	// Last is the last value reported for this subscription, used to
	// suppress no-op %subscription-changed notifications.
	Last string
}

// ConnState tracks where a client connection is in its control-mode
// lifecycle.
type ConnState int

const (
	// ConnHandshake is the brief window between accept and the first
	// command, before the connection has attached to a session.
	ConnHandshake ConnState = iota
	// ConnAttached is the steady state: the connection is attached to a
	// session and receiving its notifications.
	ConnAttached
	// ConnDetaching means a detach-client or switch-client has been
	// issued against this connection and it is being torn down.
	ConnDetaching
	// ConnClosed means the underlying socket is gone.
	ConnClosed
)

func (s ConnState) String() string {
	switch s {
	case ConnHandshake:
		return "handshake"
	case ConnAttached:
		return "attached"
	case ConnDetaching:
		return "detaching"
	case ConnClosed:
		return "closed"
	default:
		return "unknown"
	}
}
