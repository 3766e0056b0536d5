package daemon

import (
	"context"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/model"
)

// buildFormatContext assembles a format expansion context for one pane,
// positioned inside tab at windowIndex within the workspace's tab list.
// panes and tabs are passed in pre-fetched so callers building a whole
// list-panes/list-windows response don't refetch per row.
func (s *Session) buildFormatContext(pane hostmux.Pane, tab hostmux.Tab, windowIndex int, panes []hostmux.Pane, tabs []hostmux.Tab, workspace string) model.FormatContext {
	ctx := model.FormatContext{
		PaneID:             s.idmap.GetOrCreatePaneID(string(pane.ID)),
		PaneIndex:          uint64(paneIndexIn(panes, pane.ID)),
		PaneWidth:          uint64(pane.Width),
		PaneHeight:         uint64(pane.Height),
		PaneActive:         pane.Active,
		PaneLeft:           uint64(pane.Left),
		PaneTop:            uint64(pane.Top),
		PaneDead:           pane.Dead,
		PaneTitle:          pane.Title,
		PaneCurrentCommand: pane.CurrentCommand,
		PaneCurrentPath:    pane.CurrentPath,
		PanePID:            uint64(pane.PID),

		WindowID:       s.idmap.GetOrCreateWindowID(string(tab.ID)),
		WindowIndex:    uint64(windowIndex),
		WindowName:     tab.Name,
		WindowWidth:    uint64(tab.Cols),
		WindowHeight:   uint64(tab.Rows),
		WindowPanes:    uint64(len(panes)),
		SessionID:      s.idmap.GetOrCreateSessionID(workspace),
		SessionName:    workspace,
		SessionWindows: uint64(len(tabs)),
		// A single CC client is always treated as attached, mirroring
		// the original's default for the connection driving this
		// compatibility session.
		SessionAttached: 1,
		ClientName:      s.clientName,
		SocketPath:      s.socketPath,
		ServerPID:       serverPID(),
	}
	if pane.Zoomed {
		ctx.WindowFlags = "Z"
	}
	ctx.SetWindowActive(tab.Active)
	return ctx
}

// buildFormatContextForTarget resolves a pane/tab by id and builds its
// format context, fetching the sibling pane/tab lists needed for index
// and count fields.
func (s *Session) buildFormatContextForTarget(ctx context.Context, paneID hostmux.PaneID, tabID hostmux.TabID, workspace string) (model.FormatContext, error) {
	pane, err := s.mux.Pane(ctx, paneID)
	if err != nil {
		return model.FormatContext{}, err
	}
	tabs, err := s.mux.Tabs(ctx, workspace)
	if err != nil {
		return model.FormatContext{}, err
	}
	tab, idx, err := tabByID(tabs, tabID)
	if err != nil {
		return model.FormatContext{}, err
	}
	panes, err := s.mux.Panes(ctx, tabID)
	if err != nil {
		return model.FormatContext{}, err
	}
	return s.buildFormatContext(pane, tab, idx, panes, tabs, workspace), nil
}

func paneIndexIn(panes []hostmux.Pane, id hostmux.PaneID) int {
	for i, p := range panes {
		if p.ID == id {
			return i
		}
	}
	return 0
}

func tabByID(tabs []hostmux.Tab, id hostmux.TabID) (hostmux.Tab, int, error) {
	for i, t := range tabs {
		if t.ID == id {
			return t, i, nil
		}
	}
	return hostmux.Tab{}, 0, errTabNotFound(id)
}
