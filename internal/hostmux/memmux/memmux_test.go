package memmux

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/g960059/tmuxccd/internal/hostmux"
)

func TestAddWorkspaceSeedsOneTabOnePane(t *testing.T) {
	m := New()
	defer m.Close()

	tabID, paneID := m.AddWorkspace("work")

	ctx := context.Background()
	tabs, err := m.Tabs(ctx, "work")
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	require.Equal(t, tabID, tabs[0].ID)

	panes, err := m.Panes(ctx, tabID)
	require.NoError(t, err)
	require.Len(t, panes, 1)
	require.Equal(t, paneID, panes[0].ID)
	require.True(t, panes[0].Active)
}

func TestSplitPaneInsertsAdjacentAndActivates(t *testing.T) {
	m := New()
	defer m.Close()
	ctx := context.Background()

	tabID, paneID := m.AddWorkspace("work")
	newID, err := m.SplitPane(ctx, hostmux.SplitRequest{Pane: paneID, Direction: hostmux.SplitVertical})
	require.NoError(t, err)
	require.NotEqual(t, paneID, newID)

	panes, err := m.Panes(ctx, tabID)
	require.NoError(t, err)
	require.Len(t, panes, 2)

	var active []hostmux.PaneID
	for _, p := range panes {
		if p.Active {
			active = append(active, p.ID)
		}
	}
	require.Equal(t, []hostmux.PaneID{newID}, active)
}

func TestKillPaneRemovesFromTab(t *testing.T) {
	m := New()
	defer m.Close()
	ctx := context.Background()

	tabID, paneID := m.AddWorkspace("work")
	newID, err := m.SplitPane(ctx, hostmux.SplitRequest{Pane: paneID})
	require.NoError(t, err)

	require.NoError(t, m.KillPane(ctx, paneID))

	panes, err := m.Panes(ctx, tabID)
	require.NoError(t, err)
	require.Len(t, panes, 1)
	require.Equal(t, newID, panes[0].ID)

	_, err = m.Pane(ctx, paneID)
	require.Error(t, err)
}

func TestKillTabUnknownReturnsError(t *testing.T) {
	m := New()
	defer m.Close()
	err := m.KillTab(context.Background(), "nope")
	require.Error(t, err)
}

func TestWriteToPaneAppendsScrollbackAndFansOutToTap(t *testing.T) {
	m := New()
	defer m.Close()
	ctx := context.Background()

	_, paneID := m.AddWorkspace("work")
	ch, cancel, err := m.TapPaneOutput(paneID)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, m.WriteToPane(ctx, paneID, []byte("hello")))

	select {
	case got := <-ch:
		require.Equal(t, []byte("hello"), got)
	default:
		t.Fatal("expected tapped output")
	}

	lines, err := m.GetLines(ctx, paneID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"hello"}, lines)
}

func TestTapPaneOutputCancelClosesChannel(t *testing.T) {
	m := New()
	defer m.Close()

	_, paneID := m.AddWorkspace("work")
	ch, cancel, err := m.TapPaneOutput(paneID)
	require.NoError(t, err)
	cancel()

	_, ok := <-ch
	require.False(t, ok)
}

func TestSubscribeReceivesPaneAddedEvent(t *testing.T) {
	m := New()
	defer m.Close()
	ctx := context.Background()

	var got []hostmux.Event
	unsub := m.Subscribe(func(ev hostmux.Event) { got = append(got, ev) })
	defer unsub()

	_, paneID := m.AddWorkspace("work")
	_, err := m.SplitPane(ctx, hostmux.SplitRequest{Pane: paneID})
	require.NoError(t, err)

	require.NotEmpty(t, got)
	require.Equal(t, hostmux.EventPaneAdded, got[len(got)-1].Kind)
}

func TestRenameWorkspaceMovesTabsUnderNewName(t *testing.T) {
	m := New()
	defer m.Close()
	ctx := context.Background()

	tabID, _ := m.AddWorkspace("old")
	require.NoError(t, m.RenameWorkspace(ctx, "old", "new"))

	tabs, err := m.Tabs(ctx, "new")
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	require.Equal(t, tabID, tabs[0].ID)

	_, err = m.Tabs(ctx, "old")
	require.Error(t, err)
}

func TestResizeTabPropagatesToPanes(t *testing.T) {
	m := New()
	defer m.Close()
	ctx := context.Background()

	tabID, paneID := m.AddWorkspace("work")
	require.NoError(t, m.ResizeTab(ctx, tabID, 100, 40))

	p, err := m.Pane(ctx, paneID)
	require.NoError(t, err)
	require.Equal(t, 100, p.Width)
	require.Equal(t, 40, p.Height)
}

func TestSetZoomedTogglesFlag(t *testing.T) {
	m := New()
	defer m.Close()
	ctx := context.Background()

	_, paneID := m.AddWorkspace("work")
	require.NoError(t, m.SetZoomed(ctx, paneID, true))

	p, err := m.Pane(ctx, paneID)
	require.NoError(t, err)
	require.True(t, p.Zoomed)
}
