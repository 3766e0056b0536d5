package daemon

import (
	"context"

	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/tmuxtarget"
)

// ResolvedTarget holds the host-mux ids a tmux -t TARGET string resolved
// to. Each "Has" flag mirrors the corresponding Rust Option: false means
// that level wasn't resolved (e.g. a tab with no panes).
type ResolvedTarget struct {
	PaneID       hostmux.PaneID
	HasPaneID    bool
	TabID        hostmux.TabID
	HasTabID     bool
	Workspace    string
	HasWorkspace bool
}

// resolveTarget resolves a tmux target string (already parsed into its
// session/window/pane components where given) against the session's mux.
// An empty target string resolves against the session's current
// workspace and active window/pane.
func (s *Session) resolveTarget(ctx context.Context, target string) (ResolvedTarget, error) {
	tmuxTarget, err := tmuxtarget.Parse(target)
	if err != nil {
		return ResolvedTarget{}, errors.Wrap(err, "resolve target")
	}

	var resolved ResolvedTarget

	switch {
	case tmuxTarget.Session != nil && tmuxTarget.Session.Kind == tmuxtarget.SessionRefID:
		ws, ok := s.idmap.WorkspaceName(tmuxTarget.Session.ID)
		if !ok {
			return ResolvedTarget{}, errors.Errorf("session $%d not found", tmuxTarget.Session.ID)
		}
		resolved.Workspace, resolved.HasWorkspace = ws, true
	case tmuxTarget.Session != nil && tmuxTarget.Session.Kind == tmuxtarget.SessionRefName:
		workspaces, err := s.mux.Workspaces(ctx)
		if err != nil {
			return ResolvedTarget{}, err
		}
		if !hasWorkspace(workspaces, tmuxTarget.Session.Name) {
			return ResolvedTarget{}, errors.Errorf("session %q not found", tmuxTarget.Session.Name)
		}
		resolved.Workspace, resolved.HasWorkspace = tmuxTarget.Session.Name, true
	default:
		resolved.Workspace, resolved.HasWorkspace = s.workspace, true
	}

	tabs, err := s.mux.Tabs(ctx, resolved.Workspace)
	if err != nil {
		return ResolvedTarget{}, err
	}

	switch {
	case tmuxTarget.Window != nil && tmuxTarget.Window.Kind == tmuxtarget.WindowRefID:
		tabID, ok := s.idmap.HostTabID(tmuxTarget.Window.ID)
		if !ok {
			return ResolvedTarget{}, errors.Errorf("window @%d not found", tmuxTarget.Window.ID)
		}
		resolved.TabID, resolved.HasTabID = hostmux.TabID(tabID), true
	case tmuxTarget.Window != nil && tmuxTarget.Window.Kind == tmuxtarget.WindowRefIndex:
		idx := int(tmuxTarget.Window.Index)
		if idx < 0 || idx >= len(tabs) {
			return ResolvedTarget{}, errors.Errorf("window index %d out of range", tmuxTarget.Window.Index)
		}
		resolved.TabID, resolved.HasTabID = tabs[idx].ID, true
	case tmuxTarget.Window != nil && tmuxTarget.Window.Kind == tmuxtarget.WindowRefName:
		found := false
		for _, t := range tabs {
			if t.Name == tmuxTarget.Window.Name {
				resolved.TabID, resolved.HasTabID = t.ID, true
				found = true
				break
			}
		}
		if !found {
			return ResolvedTarget{}, errors.Errorf("window %q not found", tmuxTarget.Window.Name)
		}
	default:
		if s.hasActiveWindowID {
			if hostTab, ok := s.idmap.HostTabID(s.activeWindowID); ok {
				resolved.TabID, resolved.HasTabID = hostmux.TabID(hostTab), true
			}
		}
		if !resolved.HasTabID {
			if activeTab, ok := activeTabID(tabs); ok {
				resolved.TabID, resolved.HasTabID = activeTab, true
			} else if len(tabs) > 0 {
				resolved.TabID, resolved.HasTabID = tabs[0].ID, true
			}
		}
	}

	if !resolved.HasTabID {
		resolved.PaneID, resolved.HasPaneID = "", false
		return resolved, nil
	}

	panes, err := s.mux.Panes(ctx, resolved.TabID)
	if err != nil {
		return ResolvedTarget{}, err
	}

	switch {
	case tmuxTarget.Pane != nil && tmuxTarget.Pane.Kind == tmuxtarget.PaneRefID:
		paneID, ok := s.idmap.HostPaneID(tmuxTarget.Pane.ID)
		if !ok {
			return ResolvedTarget{}, errors.Errorf("pane %%%d not found", tmuxTarget.Pane.ID)
		}
		resolved.PaneID, resolved.HasPaneID = hostmux.PaneID(paneID), true
	case tmuxTarget.Pane != nil && tmuxTarget.Pane.Kind == tmuxtarget.PaneRefIndex:
		idx := int(tmuxTarget.Pane.Index)
		if idx < 0 || idx >= len(panes) {
			return ResolvedTarget{}, errors.Errorf("pane index %d out of range", tmuxTarget.Pane.Index)
		}
		resolved.PaneID, resolved.HasPaneID = panes[idx].ID, true
	default:
		if s.hasActivePaneID {
			if hostPane, ok := s.idmap.HostPaneID(s.activePaneID); ok {
				resolved.PaneID, resolved.HasPaneID = hostmux.PaneID(hostPane), true
			}
		}
		if !resolved.HasPaneID {
			if activePane, ok := activePaneID(panes); ok {
				resolved.PaneID, resolved.HasPaneID = activePane, true
			}
		}
	}

	return resolved, nil
}

func hasWorkspace(workspaces []hostmux.Workspace, name string) bool {
	for _, ws := range workspaces {
		if ws.Name == name {
			return true
		}
	}
	return false
}

func activeTabID(tabs []hostmux.Tab) (hostmux.TabID, bool) {
	for _, t := range tabs {
		if t.Active {
			return t.ID, true
		}
	}
	return "", false
}

func activePaneID(panes []hostmux.Pane) (hostmux.PaneID, bool) {
	for _, p := range panes {
		if p.Active {
			return p.ID, true
		}
	}
	return "", false
}
