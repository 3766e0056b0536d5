package daemon

import (
	"context"
	"testing"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/hostmux/memmux"
	"github.com/g960059/tmuxccd/internal/pastebuf"
	"github.com/stretchr/testify/require"
)

func TestBuildFormatContextPopulatesPaneAndWindowFields(t *testing.T) {
	mux := memmux.New()
	t.Cleanup(mux.Close)
	mux.AddWorkspace("work")
	sess := NewSession(mux, pastebuf.NewStore(), "work")

	pane := hostmux.Pane{ID: "pane-1", Width: 80, Height: 24, Active: true, Left: 0, Top: 0, Title: "shell"}
	tab := hostmux.Tab{ID: "tab-1", Name: "main", Cols: 80, Rows: 24, Active: true}
	panes := []hostmux.Pane{pane}
	tabs := []hostmux.Tab{tab}

	fc := sess.buildFormatContext(pane, tab, 0, panes, tabs, "work")
	require.Equal(t, uint64(0), fc.PaneID)
	require.Equal(t, uint64(0), fc.PaneIndex)
	require.Equal(t, uint64(80), fc.PaneWidth)
	require.True(t, fc.PaneActive)
	require.Equal(t, "shell", fc.PaneTitle)
	require.Equal(t, "main", fc.WindowName)
	require.Equal(t, uint64(1), fc.WindowPanes)
	require.Equal(t, "work", fc.SessionName)
	require.Equal(t, uint64(1), fc.SessionWindows)
	require.Equal(t, uint64(1), fc.SessionAttached)
}

func TestBuildFormatContextSetsZoomFlag(t *testing.T) {
	mux := memmux.New()
	t.Cleanup(mux.Close)
	mux.AddWorkspace("work")
	sess := NewSession(mux, pastebuf.NewStore(), "work")

	pane := hostmux.Pane{ID: "pane-1", Zoomed: true}
	tab := hostmux.Tab{ID: "tab-1"}
	fc := sess.buildFormatContext(pane, tab, 0, []hostmux.Pane{pane}, []hostmux.Tab{tab}, "work")
	require.Equal(t, "Z", fc.WindowFlags)
}

func TestBuildFormatContextForTargetResolvesByID(t *testing.T) {
	mux := memmux.New()
	t.Cleanup(mux.Close)
	tabID, paneID := mux.AddWorkspace("work")
	sess := NewSession(mux, pastebuf.NewStore(), "work")

	fc, err := sess.buildFormatContextForTarget(context.Background(), paneID, tabID, "work")
	require.NoError(t, err)
	require.Equal(t, uint64(0), fc.PaneID)
	require.Equal(t, "work", fc.SessionName)
}

func TestBuildFormatContextForTargetUnknownTabErrors(t *testing.T) {
	mux := memmux.New()
	t.Cleanup(mux.Close)
	_, paneID := mux.AddWorkspace("work")
	sess := NewSession(mux, pastebuf.NewStore(), "work")

	_, err := sess.buildFormatContextForTarget(context.Background(), paneID, hostmux.TabID("no-such-tab"), "work")
	require.Error(t, err)
}

func TestPaneIndexInFindsPosition(t *testing.T) {
	panes := []hostmux.Pane{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	require.Equal(t, 2, paneIndexIn(panes, "c"))
	require.Equal(t, 0, paneIndexIn(panes, "missing"))
}

func TestTabByIDFindsIndexOrErrors(t *testing.T) {
	tabs := []hostmux.Tab{{ID: "t1"}, {ID: "t2"}}
	tab, idx, err := tabByID(tabs, "t2")
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Equal(t, hostmux.TabID("t2"), tab.ID)

	_, _, err = tabByID(tabs, "missing")
	require.Error(t, err)
}
