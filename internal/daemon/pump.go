package daemon

import (
	"context"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/layout"
	"github.com/g960059/tmuxccd/internal/response"
)

// startNotificationPump subscribes sess to the daemon's host mux and
// returns a channel of already wire-formatted notification lines for
// sess's workspace, plus a stop func. Events for other workspaces are
// dropped: this session never sees another session's panes, matching
// tmux's own per-client attachment semantics.
//
// Besides translating events, the pump also owns pane-output streaming
// (tapping newly added panes, untapping removed ones) and the
// once-a-second subscription poll, since both feed the same out channel
// this connection's writer drains.
func (d *Daemon) startNotificationPump(ctx context.Context, sess *Session) (<-chan string, func()) {
	out := make(chan string, 64)

	unsub := d.mux.Subscribe(func(ev hostmux.Event) {
		if ev.Workspace != "" && ev.Workspace != sess.workspace {
			return
		}
		if ev.Kind == hostmux.EventPaneAdded && ev.Pane != "" {
			d.tapPane(ctx, sess, out, ev.Pane)
		}
		if ev.Kind == hostmux.EventPaneRemoved && ev.Pane != "" {
			sess.stopTap(ev.Pane)
		}
		line, ok := sess.translateEvent(ctx, ev)
		if !ok {
			return
		}
		select {
		case out <- line:
		case <-ctx.Done():
		}
	})

	d.tapWorkspacePanes(ctx, sess, out)
	go sess.runSubscriptionTicker(ctx, out)

	stop := func() {
		unsub()
		sess.stopAllTaps()
		close(out)
	}
	return out, stop
}

// tapPane registers a TapPaneOutput subscription for paneID and spawns
// the goroutine that forwards every chunk it delivers onto out as
// %output/%extended-output lines, per §4.10's PaneOutput translation row.
// A no-op if paneID is already tapped or the mux rejects the tap (e.g.
// the pane died before the tap call landed).
func (d *Daemon) tapPane(ctx context.Context, sess *Session, out chan<- string, paneID hostmux.PaneID) {
	if sess.hasTap(paneID) {
		return
	}
	ch, cancel, err := d.mux.TapPaneOutput(paneID)
	if err != nil {
		return
	}
	if !sess.registerTap(paneID, cancel) {
		cancel()
		return
	}

	go func() {
		for {
			select {
			case data, ok := <-ch:
				if !ok {
					sess.clearTap(paneID)
					return
				}
				line, ok := sess.formatPaneOutput(paneID, data)
				if !ok {
					continue
				}
				select {
				case out <- line:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// tapWorkspacePanes taps every pane already in sess's workspace, for the
// panes buildInitialHandshake registers into the id map on connect —
// panes that show up afterward are tapped as their EventPaneAdded fires.
func (d *Daemon) tapWorkspacePanes(ctx context.Context, sess *Session, out chan<- string) {
	tabs, err := d.mux.Tabs(ctx, sess.workspace)
	if err != nil {
		return
	}
	for _, tab := range tabs {
		panes, err := d.mux.Panes(ctx, tab.ID)
		if err != nil {
			continue
		}
		for _, pane := range panes {
			d.tapPane(ctx, sess, out, pane.ID)
		}
	}
}

// translateEvent maps one host-mux event to a CC notification line, the
// way the daemon's single source of truth (id_map) expects: events for
// ids this session has never registered are silently dropped, since a
// tmux client can't react to an object it doesn't know exists yet.
func (s *Session) translateEvent(ctx context.Context, ev hostmux.Event) (string, bool) {
	switch ev.Kind {
	case hostmux.EventTabAdded:
		windowID := s.idmap.GetOrCreateWindowID(string(ev.Tab))
		s.idmap.SetTabWorkspace(string(ev.Tab), ev.Workspace)
		return response.WindowAddNotification(windowID), true

	case hostmux.EventTabRemoved:
		windowID, ok := s.idmap.TmuxWindowID(string(ev.Tab))
		if !ok {
			return "", false
		}
		s.idmap.RemoveWindow(string(ev.Tab))
		return response.WindowCloseNotification(windowID), true

	case hostmux.EventTabRenamed:
		windowID, ok := s.idmap.TmuxWindowID(string(ev.Tab))
		if !ok {
			return "", false
		}
		return response.WindowRenamedNotification(windowID, ev.Name), true

	case hostmux.EventPaneActivated:
		windowID, ok := s.idmap.TmuxWindowID(string(ev.Tab))
		if !ok {
			return "", false
		}
		paneID, ok := s.idmap.TmuxPaneID(string(ev.Pane))
		if !ok {
			return "", false
		}
		if s.suppressWindowChanged > 0 {
			s.suppressWindowChanged--
			return "", false
		}
		return response.WindowPaneChangedNotification(windowID, paneID), true

	case hostmux.EventPaneRemoved:
		s.idmap.RemovePane(string(ev.Pane))
		return "", false

	case hostmux.EventPaneResized, hostmux.EventLayoutChanged:
		windowID, ok := s.idmap.TmuxWindowID(string(ev.Tab))
		if !ok {
			return "", false
		}
		node, err := s.buildLayoutForTab(ctx, ev.Tab)
		if err != nil {
			return "", false
		}
		return response.LayoutChangeNotification(windowID, layout.Generate(node)), true

	case hostmux.EventWorkspaceRenamed:
		sessionID, ok := s.idmap.TmuxSessionID(ev.Workspace)
		if !ok {
			return "", false
		}
		return response.SessionRenamedNotification(sessionID, ev.Name), true

	case hostmux.EventWorkspaceAdded, hostmux.EventWorkspaceRemoved:
		return response.SessionsChangedNotification(), true

	default:
		// PaneAdded, PaneTitleChanged, TabActivated, TabMoved,
		// WorkspaceActivated: the original's translate_notification
		// ignores these too — the corresponding window-add/layout-change/
		// session-changed notification already carries the same
		// information a CC client needs.
		return "", false
	}
}

// buildInitialHandshake produces the lines sent immediately on connect:
// an empty guard block (mirroring a no-op first command), a
// %session-changed for the attached workspace, and a %window-add per
// existing tab, registering every tab and pane into the id map as a
// side effect exactly like a fresh `tmux attach`.
func (s *Session) buildInitialHandshake(ctx context.Context) []string {
	lines := []string{s.writer.EmptySuccess()}

	sessionID := s.idmap.GetOrCreateSessionID(s.workspace)
	lines = append(lines, response.SessionChangedNotification(sessionID, s.workspace))
	s.activeSessionID, s.hasActiveSessionID = sessionID, true

	tabs, err := s.mux.Tabs(ctx, s.workspace)
	if err != nil {
		return lines
	}
	for _, tab := range tabs {
		windowID := s.idmap.GetOrCreateWindowID(string(tab.ID))
		s.idmap.SetTabWorkspace(string(tab.ID), s.workspace)
		lines = append(lines, response.WindowAddNotification(windowID))

		panes, err := s.mux.Panes(ctx, tab.ID)
		if err != nil {
			continue
		}
		for _, pane := range panes {
			s.idmap.GetOrCreatePaneID(string(pane.ID))
			if pane.Active {
				s.activeWindowID, s.hasActiveWindowID = windowID, true
				s.activePaneID, s.hasActivePaneID = s.idmap.GetOrCreatePaneID(string(pane.ID)), true
			}
		}
	}
	return lines
}
