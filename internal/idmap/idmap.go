// Package idmap provides bidirectional ID mapping between host-mux IDs and
// the tmux ID space.
//
// The host mux identifies panes and tabs with opaque strings and
// workspaces with plain names. Tmux uses prefixed IDs: %N (panes), @N
// (windows), $N (sessions). This package provides O(1) bidirectional
// lookups between the two, plus the bookkeeping (window->tabs,
// tab->workspace) and JSON persistence spec's wire-format section
// requires.
package idmap

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Map is a bidirectional mapping between host-mux IDs and tmux IDs. The
// three ID spaces (pane, window, session) are independent, each with its
// own monotonic counter starting at 0.
type Map struct {
	hostToPane map[string]uint64
	paneToHost map[uint64]string
	nextPane   uint64

	hostToWindow map[string]uint64
	windowToHost map[uint64]string
	nextWindow   uint64

	workspaceToSession map[string]uint64
	sessionToWorkspace map[uint64]string
	nextSession        uint64

	// windowTabs tracks which host tab (tmux window) ids belong to which
	// host OS-level window, for move-window/break-pane bookkeeping.
	windowTabs map[string]map[string]struct{}
	// tabWorkspace tracks which workspace a given host tab currently
	// belongs to.
	tabWorkspace map[string]string
}

func New() *Map {
	return &Map{
		hostToPane:         make(map[string]uint64),
		paneToHost:         make(map[uint64]string),
		hostToWindow:       make(map[string]uint64),
		windowToHost:       make(map[uint64]string),
		workspaceToSession: make(map[string]uint64),
		sessionToWorkspace: make(map[uint64]string),
		windowTabs:         make(map[string]map[string]struct{}),
		tabWorkspace:       make(map[string]string),
	}
}

// --- Pane ID mappings ---

// GetOrCreatePaneID returns the tmux pane ID for a host pane ID,
// allocating a fresh one if this is the first time it's seen.
func (m *Map) GetOrCreatePaneID(hostID string) uint64 {
	if id, ok := m.hostToPane[hostID]; ok {
		return id
	}
	id := m.nextPane
	m.nextPane++
	m.hostToPane[hostID] = id
	m.paneToHost[id] = hostID
	return id
}

func (m *Map) HostPaneID(tmuxID uint64) (string, bool) {
	id, ok := m.paneToHost[tmuxID]
	return id, ok
}

func (m *Map) TmuxPaneID(hostID string) (uint64, bool) {
	id, ok := m.hostToPane[hostID]
	return id, ok
}

func (m *Map) RemovePane(hostID string) {
	if id, ok := m.hostToPane[hostID]; ok {
		delete(m.hostToPane, hostID)
		delete(m.paneToHost, id)
	}
}

// --- Tab/Window ID mappings (tmux "window" == host "tab") ---

func (m *Map) GetOrCreateWindowID(hostID string) uint64 {
	if id, ok := m.hostToWindow[hostID]; ok {
		return id
	}
	id := m.nextWindow
	m.nextWindow++
	m.hostToWindow[hostID] = id
	m.windowToHost[id] = hostID
	return id
}

func (m *Map) HostTabID(tmuxID uint64) (string, bool) {
	id, ok := m.windowToHost[tmuxID]
	return id, ok
}

func (m *Map) TmuxWindowID(hostID string) (uint64, bool) {
	id, ok := m.hostToWindow[hostID]
	return id, ok
}

func (m *Map) RemoveWindow(hostID string) {
	if id, ok := m.hostToWindow[hostID]; ok {
		delete(m.hostToWindow, hostID)
		delete(m.windowToHost, id)
	}
	delete(m.tabWorkspace, hostID)
	for win, tabs := range m.windowTabs {
		delete(tabs, hostID)
		if len(tabs) == 0 {
			delete(m.windowTabs, win)
		}
	}
}

// --- Workspace/Session mappings ---

func (m *Map) GetOrCreateSessionID(workspace string) uint64 {
	if id, ok := m.workspaceToSession[workspace]; ok {
		return id
	}
	id := m.nextSession
	m.nextSession++
	m.workspaceToSession[workspace] = id
	m.sessionToWorkspace[id] = workspace
	return id
}

func (m *Map) WorkspaceName(tmuxID uint64) (string, bool) {
	name, ok := m.sessionToWorkspace[tmuxID]
	return name, ok
}

func (m *Map) TmuxSessionID(workspace string) (uint64, bool) {
	id, ok := m.workspaceToSession[workspace]
	return id, ok
}

func (m *Map) RemoveSession(workspace string) {
	if id, ok := m.workspaceToSession[workspace]; ok {
		delete(m.workspaceToSession, workspace)
		delete(m.sessionToWorkspace, id)
	}
}

// --- Window(OS)->tab and tab->workspace bookkeeping ---
//
// Authored fresh (not present in the ported id_map.rs) per spec.md's
// §4.4 description of what the ID map must track; kept alongside the
// ported pane/window/session maps since it is part of the same entity's
// state and persists in the same snapshot.

// SetTabWindow records that host tab tabID currently lives under host
// window winID.
func (m *Map) SetTabWindow(winID, tabID string) {
	if prev, ok := m.tabOwner(tabID); ok && prev != winID {
		delete(m.windowTabs[prev], tabID)
	}
	tabs, ok := m.windowTabs[winID]
	if !ok {
		tabs = make(map[string]struct{})
		m.windowTabs[winID] = tabs
	}
	tabs[tabID] = struct{}{}
}

func (m *Map) tabOwner(tabID string) (string, bool) {
	for win, tabs := range m.windowTabs {
		if _, ok := tabs[tabID]; ok {
			return win, true
		}
	}
	return "", false
}

func (m *Map) SetTabWorkspace(tabID, workspace string) {
	m.tabWorkspace[tabID] = workspace
}

func (m *Map) TabWorkspace(tabID string) (string, bool) {
	ws, ok := m.tabWorkspace[tabID]
	return ws, ok
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// Snapshot is the JSON-serialisable form of a Map, as Save writes it to
// <cache_dir>/tmux-id-map-<sanitised_workspace>.json. The daemon does not
// call Save or Load itself; its id maps live only in memory.
type Snapshot struct {
	PaneMap      map[string]uint64 `json:"pane_map"`
	TabMap       map[string]uint64 `json:"tab_map"`
	SessionMap   map[string]uint64 `json:"session_map"`
	NextPane     uint64            `json:"next_pane"`
	NextWindow   uint64            `json:"next_window"`
	NextSession  uint64            `json:"next_session"`
}

func (m *Map) ToSnapshot() Snapshot {
	s := Snapshot{
		PaneMap:     make(map[string]uint64, len(m.hostToPane)),
		TabMap:      make(map[string]uint64, len(m.hostToWindow)),
		SessionMap:  make(map[string]uint64, len(m.workspaceToSession)),
		NextPane:    m.nextPane,
		NextWindow:  m.nextWindow,
		NextSession: m.nextSession,
	}
	for k, v := range m.hostToPane {
		s.PaneMap[k] = v
	}
	for k, v := range m.hostToWindow {
		s.TabMap[k] = v
	}
	for k, v := range m.workspaceToSession {
		s.SessionMap[k] = v
	}
	return s
}

// LoadSnapshot rebuilds a Map from a Snapshot, pruning any host id not
// present in liveHostIDs (panes/tabs) — the mechanism spec.md requires so
// a stale snapshot from a previous host-mux run doesn't resurrect
// entities that no longer exist.
func LoadSnapshot(s Snapshot, liveTabs, livePanes map[string]bool) *Map {
	m := New()
	m.nextPane = s.NextPane
	m.nextWindow = s.NextWindow
	m.nextSession = s.NextSession

	for host, id := range s.PaneMap {
		if livePanes != nil && !livePanes[host] {
			continue
		}
		m.hostToPane[host] = id
		m.paneToHost[id] = host
	}
	for host, id := range s.TabMap {
		if liveTabs != nil && !liveTabs[host] {
			continue
		}
		m.hostToWindow[host] = id
		m.windowToHost[id] = host
	}
	for ws, id := range s.SessionMap {
		m.workspaceToSession[ws] = id
		m.sessionToWorkspace[id] = ws
	}
	return m
}

// SnapshotPath returns the persistence path for a workspace, sanitising
// path separators out of the name the way spec.md's external interfaces
// section requires.
func SnapshotPath(cacheDir, workspace string) string {
	return filepath.Join(cacheDir, "tmux-id-map-"+sanitise(workspace)+".json")
}

func sanitise(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-' || c == '_':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "default"
	}
	return string(out)
}

// Save writes the map's snapshot to disk via a temp-file-then-rename, so
// a concurrent reader never observes a partially written file.
func (m *Map) Save(cacheDir, workspace string) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return errors.Wrap(err, "idmap: create cache dir")
	}
	path := SnapshotPath(cacheDir, workspace)
	data, err := json.MarshalIndent(m.ToSnapshot(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "idmap: marshal snapshot")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "idmap: write temp snapshot")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "idmap: rename snapshot into place")
	}
	return nil
}

// Load reads a previously saved snapshot for workspace, pruning against
// liveTabs/livePanes. Returns a fresh empty Map if no snapshot exists.
func Load(cacheDir, workspace string, liveTabs, livePanes map[string]bool) (*Map, error) {
	path := SnapshotPath(cacheDir, workspace)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "idmap: read snapshot")
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "idmap: unmarshal snapshot")
	}
	return LoadSnapshot(s, liveTabs, livePanes), nil
}
