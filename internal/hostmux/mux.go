// Package hostmux defines the capability interface the control-mode
// daemon drives instead of shelling out to a real tmux: a small set of
// read/write operations over workspaces, tabs, and panes that any GPU
// terminal-multiplexer host can implement once to gain tmux CC client
// compatibility.
//
// internal/hostmux/memmux provides an in-memory reference implementation
// used by tests and by the daemon's own test harness; a real host mux
// wires this interface to its own window/pane manager.
package hostmux

import "context"

// WorkspaceID names a host-mux workspace — the thing a tmux client calls a
// session.
type WorkspaceID = string

// TabID names a host-mux tab — the thing a tmux client calls a window.
type TabID string

// PaneID names a host-mux pane.
type PaneID string

// WindowID names a host OS-level window a tab can be moved into, used by
// move-window's cross-window relocation.
type WindowID string

// Workspace is one host-mux workspace, as reported by Mux.Workspaces.
type Workspace struct {
	Name     string
	Active   bool
	Attached bool
}

// Tab is one host-mux tab, as reported by Mux.Tabs.
type Tab struct {
	ID        TabID
	Workspace string
	WindowID  WindowID
	Name      string
	Active    bool
	Cols      int
	Rows      int
}

// Pane is one host-mux pane, as reported by Mux.Panes/Mux.Pane.
type Pane struct {
	ID             PaneID
	TabID          TabID
	Active         bool
	Dead           bool
	Zoomed         bool
	Left           int
	Top            int
	Width          int
	Height         int
	Title          string
	CurrentCommand string
	CurrentPath    string
	PID            int
}

// SplitDirection selects which way SplitPane divides a pane.
type SplitDirection int

const (
	SplitHorizontal SplitDirection = iota
	SplitVertical
)

// SplitRequest describes a split-window request against an existing pane
// or, when Tab is set and Pane is empty, the active pane of that tab.
type SplitRequest struct {
	Pane      PaneID
	Tab       TabID
	Direction SplitDirection
	// SizePercent is 1-100, or 0 to let the host mux pick an even split.
	SizePercent int
	Cwd         string
	Env         map[string]string
	Before      bool
}

// EventKind tags the variety of an asynchronous Event a Mux reports
// through Subscribe.
type EventKind int

const (
	EventPaneAdded EventKind = iota
	EventPaneRemoved
	EventPaneResized
	EventPaneTitleChanged
	EventPaneActivated
	EventTabAdded
	EventTabRemoved
	EventTabRenamed
	EventTabActivated
	EventTabMoved
	EventWorkspaceAdded
	EventWorkspaceRemoved
	EventWorkspaceRenamed
	EventWorkspaceActivated
	EventLayoutChanged
)

// Event is a single asynchronous change reported by a Mux to every
// callback registered via Subscribe. Only the fields relevant to Kind are
// populated.
type Event struct {
	Kind      EventKind
	Workspace string
	Tab       TabID
	Pane      PaneID
	Name      string
}

// Mux is the capability a host GPU terminal multiplexer exposes to the
// control-mode daemon. All methods are safe to call concurrently; methods
// that mutate mux state should be invoked from within Run when the host
// mux's own data structures are not safe for concurrent access, exactly as
// Rust's tmux_compat_server drives its host mux from a single actor task.
type Mux interface {
	Workspaces(ctx context.Context) ([]Workspace, error)
	Tabs(ctx context.Context, workspace string) ([]Tab, error)
	Panes(ctx context.Context, tabID TabID) ([]Pane, error)
	Pane(ctx context.Context, paneID PaneID) (Pane, error)
	GetLines(ctx context.Context, paneID PaneID, first, last int) ([]string, error)

	SplitPane(ctx context.Context, req SplitRequest) (PaneID, error)
	// SpawnTab creates a brand new tab (tmux window) running a fresh
	// shell, in workspace. If workspace doesn't exist yet it is created,
	// covering both new-window (existing workspace) and new-session
	// (new workspace) in one primitive, mirroring spawn_tab_or_window's
	// dual role in the original host mux.
	SpawnTab(ctx context.Context, workspace string, cwd string, env map[string]string) (TabID, PaneID, error)
	KillPane(ctx context.Context, paneID PaneID) error
	KillTab(ctx context.Context, tabID TabID) error
	MovePaneToTab(ctx context.Context, paneID PaneID, dstTab TabID, before bool) error
	MoveTabToWindow(ctx context.Context, tabID TabID, dstWindow WindowID) error
	ResizePane(ctx context.Context, paneID PaneID, cols, rows int) error
	ResizeTab(ctx context.Context, tabID TabID, cols, rows int) error
	SetZoomed(ctx context.Context, paneID PaneID, zoomed bool) error
	RenameTab(ctx context.Context, tabID TabID, name string) error
	RenameWorkspace(ctx context.Context, old, new string) error
	SetPaneHeader(ctx context.Context, paneID PaneID, text string) error
	SetPaneHeaderVisible(ctx context.Context, paneID PaneID, visible bool) error
	WriteToPane(ctx context.Context, paneID PaneID, data []byte) error
	SendPaste(ctx context.Context, paneID PaneID, data []byte, bracketed bool) error
	SetActivePane(ctx context.Context, paneID PaneID) error
	SetActiveTab(ctx context.Context, tabID TabID) error
	SetActiveWorkspace(ctx context.Context, workspace string) error

	TapPaneOutput(paneID PaneID) (<-chan []byte, func(), error)
	Subscribe(callback func(Event)) (unsubscribe func())
	Run(fn func())
}
