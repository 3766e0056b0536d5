// Package memmux is an in-memory reference implementation of
// hostmux.Mux, used by tests and by the daemon's own integration test
// harness in place of a real GPU terminal multiplexer.
//
// Every mutating call is routed through a single goroutine (via Run),
// mirroring the single-writer discipline the teacher applies to its
// SQLite handle — here applied to the in-memory workspace/tab/pane tree
// instead of a database connection.
package memmux

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/hostmux"
)

const scrollbackLines = 2000

type pane struct {
	id             hostmux.PaneID
	tab            hostmux.TabID
	active         bool
	dead           bool
	zoomed         bool
	left, top      int
	width, height  int
	title          string
	headerVisible  bool
	currentCommand string
	currentPath    string
	pid            int
	lines          []string
	subs           map[int]chan []byte
	nextSubID      int
}

type tab struct {
	id        hostmux.TabID
	workspace string
	windowID  hostmux.WindowID
	name      string
	active    bool
	cols      int
	rows      int
	panes     []hostmux.PaneID
}

type workspace struct {
	name     string
	active   bool
	attached bool
	tabs     []hostmux.TabID
}

// Mux is an in-memory hostmux.Mux. The zero value is not usable; use New.
type Mux struct {
	jobs chan func()
	done chan struct{}

	mu         sync.Mutex
	workspaces map[string]*workspace
	tabs       map[hostmux.TabID]*tab
	panes      map[hostmux.PaneID]*pane

	nextTab  int
	nextPane int

	subMu     sync.Mutex
	listeners map[int]func(hostmux.Event)
	nextSub   int
}

// New creates an empty Mux and starts its single-goroutine command loop.
// Call Close to stop it.
func New() *Mux {
	m := &Mux{
		jobs:       make(chan func(), 256),
		done:       make(chan struct{}),
		workspaces: make(map[string]*workspace),
		tabs:       make(map[hostmux.TabID]*tab),
		panes:      make(map[hostmux.PaneID]*pane),
		listeners:  make(map[int]func(hostmux.Event)),
	}
	go m.loop()
	return m
}

func (m *Mux) loop() {
	for {
		select {
		case fn := <-m.jobs:
			fn()
		case <-m.done:
			return
		}
	}
}

// Close stops the command loop. Pending TapPaneOutput subscriber channels
// are left for callers to drain and discard.
func (m *Mux) Close() {
	close(m.done)
}

// Run schedules fn to run on the Mux's single goroutine and blocks until
// it has. All hostmux.Mux mutating methods already call Run internally;
// it is exported for callers (tests, seed helpers) that need to perform
// several mutations as one atomic step.
func (m *Mux) Run(fn func()) {
	done := make(chan struct{})
	m.jobs <- func() {
		defer close(done)
		fn()
	}
	<-done
}

func (m *Mux) emit(ev hostmux.Event) {
	m.subMu.Lock()
	cbs := make([]func(hostmux.Event), 0, len(m.listeners))
	for _, cb := range m.listeners {
		cbs = append(cbs, cb)
	}
	m.subMu.Unlock()
	for _, cb := range cbs {
		cb(ev)
	}
}

// Subscribe registers callback for every future Event. The returned func
// removes it.
func (m *Mux) Subscribe(callback func(hostmux.Event)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = callback
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.listeners, id)
		m.subMu.Unlock()
	}
}

// ---------------------------------------------------------------------------
// Seeding helpers (test-only convenience, not part of hostmux.Mux)
// ---------------------------------------------------------------------------

// AddWorkspace creates a workspace with one tab and one pane, returning
// the new tab and pane ids. It runs synchronously on the Mux's own
// goroutine.
func (m *Mux) AddWorkspace(name string) (hostmux.TabID, hostmux.PaneID) {
	var tabID hostmux.TabID
	var paneID hostmux.PaneID
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		ws := &workspace{name: name}
		m.workspaces[name] = ws
		tabID, paneID = m.newTabLocked(ws, "")
	})
	return tabID, paneID
}

func (m *Mux) newTabLocked(ws *workspace, name string) (hostmux.TabID, hostmux.PaneID) {
	m.nextTab++
	tabID := hostmux.TabID(intToID("tab", m.nextTab))
	t := &tab{id: tabID, workspace: ws.name, name: name, cols: 80, rows: 24}
	m.tabs[tabID] = t
	ws.tabs = append(ws.tabs, tabID)

	m.nextPane++
	paneID := hostmux.PaneID(intToID("pane", m.nextPane))
	p := &pane{
		id: paneID, tab: tabID, active: true,
		width: t.cols, height: t.rows,
		headerVisible: true,
		subs:          make(map[int]chan []byte),
	}
	m.panes[paneID] = p
	t.panes = append(t.panes, paneID)
	return tabID, paneID
}

func intToID(prefix string, n int) string {
	const digits = "0123456789"
	if n == 0 {
		return prefix + "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return prefix + string(b)
}

// ---------------------------------------------------------------------------
// hostmux.Mux implementation
// ---------------------------------------------------------------------------

var _ hostmux.Mux = (*Mux)(nil)

func (m *Mux) Workspaces(ctx context.Context) ([]hostmux.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]hostmux.Workspace, 0, len(m.workspaces))
	for _, ws := range m.workspaces {
		out = append(out, hostmux.Workspace{Name: ws.name, Active: ws.active, Attached: ws.attached})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Mux) Tabs(ctx context.Context, workspace string) ([]hostmux.Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.workspaces[workspace]
	if !ok {
		return nil, errors.Errorf("memmux: unknown workspace %q", workspace)
	}
	out := make([]hostmux.Tab, 0, len(ws.tabs))
	for _, id := range ws.tabs {
		t := m.tabs[id]
		out = append(out, hostmux.Tab{
			ID: t.id, Workspace: t.workspace, WindowID: t.windowID,
			Name: t.name, Active: t.active, Cols: t.cols, Rows: t.rows,
		})
	}
	return out, nil
}

func (m *Mux) Panes(ctx context.Context, tabID hostmux.TabID) ([]hostmux.Pane, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tabs[tabID]
	if !ok {
		return nil, errors.Errorf("memmux: unknown tab %q", tabID)
	}
	out := make([]hostmux.Pane, 0, len(t.panes))
	for _, id := range t.panes {
		out = append(out, m.paneLocked(id))
	}
	return out, nil
}

func (m *Mux) Pane(ctx context.Context, paneID hostmux.PaneID) (hostmux.Pane, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.panes[paneID]; !ok {
		return hostmux.Pane{}, errors.Errorf("memmux: unknown pane %q", paneID)
	}
	return m.paneLocked(paneID), nil
}

func (m *Mux) paneLocked(id hostmux.PaneID) hostmux.Pane {
	p := m.panes[id]
	return hostmux.Pane{
		ID: p.id, TabID: p.tab, Active: p.active, Dead: p.dead, Zoomed: p.zoomed,
		Left: p.left, Top: p.top, Width: p.width, Height: p.height,
		Title: p.title, CurrentCommand: p.currentCommand, CurrentPath: p.currentPath, PID: p.pid,
	}
}

func (m *Mux) GetLines(ctx context.Context, paneID hostmux.PaneID, first, last int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panes[paneID]
	if !ok {
		return nil, errors.Errorf("memmux: unknown pane %q", paneID)
	}
	n := len(p.lines)
	if n == 0 {
		return nil, nil
	}
	clamp := func(i int) int {
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		return i
	}
	first, last = clamp(first), clamp(last)
	if first > last {
		first, last = last, first
	}
	out := make([]string, last-first+1)
	copy(out, p.lines[first:last+1])
	return out, nil
}

func (m *Mux) SplitPane(ctx context.Context, req hostmux.SplitRequest) (hostmux.PaneID, error) {
	var newID hostmux.PaneID
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		srcID := req.Pane
		if srcID == "" {
			t, ok := m.tabs[req.Tab]
			if !ok {
				runErr = errors.Errorf("memmux: unknown tab %q", req.Tab)
				return
			}
			for _, id := range t.panes {
				if m.panes[id].active {
					srcID = id
					break
				}
			}
		}
		src, ok := m.panes[srcID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", srcID)
			return
		}
		t := m.tabs[src.tab]

		m.nextPane++
		newID = hostmux.PaneID(intToID("pane", m.nextPane))
		np := &pane{
			id: newID, tab: t.id, active: true,
			width: src.width, height: src.height,
			currentPath:   req.Cwd,
			headerVisible: true,
			subs:          make(map[int]chan []byte),
		}
		m.panes[newID] = np

		idx := indexOf(t.panes, srcID)
		insertAt := idx + 1
		if req.Before {
			insertAt = idx
		}
		t.panes = insertPane(t.panes, insertAt, newID)
		for _, id := range t.panes {
			m.panes[id].active = id == newID
		}
	})
	if runErr != nil {
		return "", runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventPaneAdded, Pane: newID})
	return newID, nil
}

// SpawnTab creates workspace if it doesn't exist yet, then a fresh tab
// inside it with one pane, covering both new-window and new-session.
func (m *Mux) SpawnTab(ctx context.Context, wsName string, cwd string, env map[string]string) (hostmux.TabID, hostmux.PaneID, error) {
	var tabID hostmux.TabID
	var paneID hostmux.PaneID
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		ws, ok := m.workspaces[wsName]
		wasNew := !ok
		if !ok {
			ws = &workspace{name: wsName}
			m.workspaces[wsName] = ws
		}
		tabID, paneID = m.newTabLocked(ws, "")
		if cwd != "" {
			m.panes[paneID].currentPath = cwd
		}
		if wasNew {
			ws.active = true
		}
	})
	m.emit(hostmux.Event{Kind: hostmux.EventTabAdded, Workspace: wsName, Tab: tabID})
	m.emit(hostmux.Event{Kind: hostmux.EventPaneAdded, Workspace: wsName, Tab: tabID, Pane: paneID})
	return tabID, paneID, nil
}

func indexOf(ids []hostmux.PaneID, target hostmux.PaneID) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

func insertPane(ids []hostmux.PaneID, at int, id hostmux.PaneID) []hostmux.PaneID {
	if at < 0 {
		at = 0
	}
	if at > len(ids) {
		at = len(ids)
	}
	out := make([]hostmux.PaneID, 0, len(ids)+1)
	out = append(out, ids[:at]...)
	out = append(out, id)
	out = append(out, ids[at:]...)
	return out
}

func (m *Mux) KillPane(ctx context.Context, paneID hostmux.PaneID) error {
	var found bool
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			return
		}
		found = true
		t := m.tabs[p.tab]
		t.panes = removePaneID(t.panes, paneID)
		delete(m.panes, paneID)
		for _, ch := range p.subs {
			close(ch)
		}
	})
	if !found {
		return errors.Errorf("memmux: unknown pane %q", paneID)
	}
	m.emit(hostmux.Event{Kind: hostmux.EventPaneRemoved, Pane: paneID})
	return nil
}

func removePaneID(ids []hostmux.PaneID, target hostmux.PaneID) []hostmux.PaneID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func (m *Mux) KillTab(ctx context.Context, tabID hostmux.TabID) error {
	var found bool
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t, ok := m.tabs[tabID]
		if !ok {
			return
		}
		found = true
		for _, pid := range t.panes {
			if p, ok := m.panes[pid]; ok {
				for _, ch := range p.subs {
					close(ch)
				}
			}
			delete(m.panes, pid)
		}
		ws := m.workspaces[t.workspace]
		if ws != nil {
			ws.tabs = removeTabID(ws.tabs, tabID)
		}
		delete(m.tabs, tabID)
	})
	if !found {
		return errors.Errorf("memmux: unknown tab %q", tabID)
	}
	m.emit(hostmux.Event{Kind: hostmux.EventTabRemoved, Tab: tabID})
	return nil
}

func removeTabID(ids []hostmux.TabID, target hostmux.TabID) []hostmux.TabID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func (m *Mux) MovePaneToTab(ctx context.Context, paneID hostmux.PaneID, dstTab hostmux.TabID, before bool) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		dst, ok := m.tabs[dstTab]
		if !ok {
			runErr = errors.Errorf("memmux: unknown tab %q", dstTab)
			return
		}
		src := m.tabs[p.tab]
		src.panes = removePaneID(src.panes, paneID)
		at := 0
		if !before {
			at = len(dst.panes)
		}
		dst.panes = insertPane(dst.panes, at, paneID)
		p.tab = dstTab
	})
	return runErr
}

func (m *Mux) MoveTabToWindow(ctx context.Context, tabID hostmux.TabID, dstWindow hostmux.WindowID) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t, ok := m.tabs[tabID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown tab %q", tabID)
			return
		}
		t.windowID = dstWindow
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventTabMoved, Tab: tabID})
	return nil
}

func (m *Mux) ResizePane(ctx context.Context, paneID hostmux.PaneID, cols, rows int) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		p.width, p.height = cols, rows
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventPaneResized, Pane: paneID})
	return nil
}

func (m *Mux) ResizeTab(ctx context.Context, tabID hostmux.TabID, cols, rows int) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t, ok := m.tabs[tabID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown tab %q", tabID)
			return
		}
		t.cols, t.rows = cols, rows
		for _, id := range t.panes {
			m.panes[id].width, m.panes[id].height = cols, rows
		}
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventLayoutChanged, Tab: tabID})
	return nil
}

func (m *Mux) SetZoomed(ctx context.Context, paneID hostmux.PaneID, zoomed bool) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		p.zoomed = zoomed
	})
	return runErr
}

func (m *Mux) RenameTab(ctx context.Context, tabID hostmux.TabID, name string) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t, ok := m.tabs[tabID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown tab %q", tabID)
			return
		}
		t.name = name
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventTabRenamed, Tab: tabID, Name: name})
	return nil
}

func (m *Mux) RenameWorkspace(ctx context.Context, old, new string) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		ws, ok := m.workspaces[old]
		if !ok {
			runErr = errors.Errorf("memmux: unknown workspace %q", old)
			return
		}
		delete(m.workspaces, old)
		ws.name = new
		for _, tid := range ws.tabs {
			m.tabs[tid].workspace = new
		}
		m.workspaces[new] = ws
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventWorkspaceRenamed, Workspace: new, Name: old})
	return nil
}

func (m *Mux) SetPaneHeader(ctx context.Context, paneID hostmux.PaneID, text string) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		p.title = text
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventPaneTitleChanged, Pane: paneID, Name: text})
	return nil
}

func (m *Mux) SetPaneHeaderVisible(ctx context.Context, paneID hostmux.PaneID, visible bool) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		p.headerVisible = visible
	})
	return runErr
}

func (m *Mux) WriteToPane(ctx context.Context, paneID hostmux.PaneID, data []byte) error {
	var runErr error
	var subs []chan []byte
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		p.appendOutputLocked(data)
		for _, ch := range p.subs {
			subs = append(subs, ch)
		}
	})
	if runErr != nil {
		return runErr
	}
	for _, ch := range subs {
		select {
		case ch <- append([]byte(nil), data...):
		default:
		}
	}
	return nil
}

func (p *pane) appendOutputLocked(data []byte) {
	p.lines = append(p.lines, string(data))
	if len(p.lines) > scrollbackLines {
		p.lines = p.lines[len(p.lines)-scrollbackLines:]
	}
}

func (m *Mux) SendPaste(ctx context.Context, paneID hostmux.PaneID, data []byte, bracketed bool) error {
	if bracketed {
		wrapped := append([]byte("\x1b[200~"), append(append([]byte{}, data...), []byte("\x1b[201~")...)...)
		return m.WriteToPane(ctx, paneID, wrapped)
	}
	return m.WriteToPane(ctx, paneID, data)
}

func (m *Mux) SetActivePane(ctx context.Context, paneID hostmux.PaneID) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		t := m.tabs[p.tab]
		for _, id := range t.panes {
			m.panes[id].active = id == paneID
		}
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventPaneActivated, Pane: paneID})
	return nil
}

func (m *Mux) SetActiveTab(ctx context.Context, tabID hostmux.TabID) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t, ok := m.tabs[tabID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown tab %q", tabID)
			return
		}
		ws := m.workspaces[t.workspace]
		for _, id := range ws.tabs {
			m.tabs[id].active = id == tabID
		}
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventTabActivated, Tab: tabID})
	return nil
}

func (m *Mux) SetActiveWorkspace(ctx context.Context, workspace string) error {
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		target, ok := m.workspaces[workspace]
		if !ok {
			runErr = errors.Errorf("memmux: unknown workspace %q", workspace)
			return
		}
		for _, ws := range m.workspaces {
			ws.active = ws == target
		}
	})
	if runErr != nil {
		return runErr
	}
	m.emit(hostmux.Event{Kind: hostmux.EventWorkspaceActivated, Workspace: workspace})
	return nil
}

// TapPaneOutput registers a subscriber channel that receives a copy of
// every byte slice written to paneID via WriteToPane/SendPaste from this
// point on. The returned func unregisters it; the channel is closed when
// either the subscriber unregisters or the pane is killed.
func (m *Mux) TapPaneOutput(paneID hostmux.PaneID) (<-chan []byte, func(), error) {
	var ch chan []byte
	var subID int
	var runErr error
	m.Run(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p, ok := m.panes[paneID]
		if !ok {
			runErr = errors.Errorf("memmux: unknown pane %q", paneID)
			return
		}
		ch = make(chan []byte, 256)
		subID = p.nextSubID
		p.nextSubID++
		p.subs[subID] = ch
	})
	if runErr != nil {
		return nil, nil, runErr
	}
	cancel := func() {
		m.Run(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if p, ok := m.panes[paneID]; ok {
				if sub, ok := p.subs[subID]; ok {
					delete(p.subs, subID)
					close(sub)
				}
			}
		})
	}
	return ch, cancel, nil
}
