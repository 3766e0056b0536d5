package daemon

import (
	"context"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/layout"
)

// buildLayoutForTab builds the layout.Node tree tmux's %layout-change
// notification describes for one tab's current panes.
//
// Host muxes don't expose an explicit split tree, only positioned
// rectangles, so the tree is inferred from geometry: panes sharing the
// same top edge sit side by side and become children of a horizontal
// split, and panes sharing the same left edge are stacked and become
// children of a vertical split; this mirrors the original's pane_to_layout_node/build_split_node fallback, which itself
// only handles the common single-row/single-column cases and falls back
// to a flat horizontal split otherwise.
func (s *Session) buildLayoutForTab(ctx context.Context, tabID hostmux.TabID) (layout.Node, error) {
	panes, err := s.mux.Panes(ctx, tabID)
	if err != nil {
		return layout.Node{}, err
	}
	tabs, err := s.mux.Tabs(ctx, s.workspace)
	if err != nil {
		return layout.Node{}, err
	}
	tab, _, err := tabByID(tabs, tabID)
	if err != nil {
		return layout.Node{}, err
	}

	if len(panes) == 0 {
		return layout.Node{Kind: layout.KindPane, Width: uint64(tab.Cols), Height: uint64(tab.Rows)}, nil
	}
	if len(panes) == 1 {
		return paneToLayoutNode(s, panes[0]), nil
	}

	if allSameTop(panes) {
		return buildSplitNode(s, panes, layout.KindHorizontalSplit, tab), nil
	}
	if allSameLeft(panes) {
		return buildSplitNode(s, panes, layout.KindVerticalSplit, tab), nil
	}

	// Mixed grid: fall back to a flat horizontal split across every
	// pane in the host mux's pane order, same as the original's fallback.
	return buildSplitNode(s, panes, layout.KindHorizontalSplit, tab), nil
}

func paneToLayoutNode(s *Session, pane hostmux.Pane) layout.Node {
	return layout.Node{
		Kind:   layout.KindPane,
		PaneID: s.idmap.GetOrCreatePaneID(string(pane.ID)),
		Width:  uint64(pane.Width),
		Height: uint64(pane.Height),
		Left:   uint64(pane.Left),
		Top:    uint64(pane.Top),
	}
}

func buildSplitNode(s *Session, panes []hostmux.Pane, kind layout.NodeKind, tab hostmux.Tab) layout.Node {
	children := make([]layout.Node, 0, len(panes))
	for _, p := range panes {
		children = append(children, paneToLayoutNode(s, p))
	}
	return layout.Node{
		Kind:     kind,
		Width:    uint64(tab.Cols),
		Height:   uint64(tab.Rows),
		Children: children,
	}
}

func allSameTop(panes []hostmux.Pane) bool {
	top := panes[0].Top
	for _, p := range panes[1:] {
		if p.Top != top {
			return false
		}
	}
	return true
}

func allSameLeft(panes []hostmux.Pane) bool {
	left := panes[0].Left
	for _, p := range panes[1:] {
		if p.Left != left {
			return false
		}
	}
	return true
}
