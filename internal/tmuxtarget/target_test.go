package tmuxtarget

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Target {
	t.Helper()
	tg, err := Parse(s)
	require.NoErrorf(t, err, "Parse(%q)", s)
	return tg
}

func TestEmptyTarget(t *testing.T) {
	require.Equal(t, Target{}, mustParse(t, ""))
}

func TestBarePaneID(t *testing.T) {
	got := mustParse(t, "%5")
	require.Nil(t, got.Session)
	require.Nil(t, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefID, ID: 5}, got.Pane)
}

func TestBareWindowID(t *testing.T) {
	got := mustParse(t, "@3")
	require.Equal(t, &WindowRef{Kind: WindowRefID, ID: 3}, got.Window)
	require.Nil(t, got.Session)
	require.Nil(t, got.Pane)
}

func TestBareSessionID(t *testing.T) {
	got := mustParse(t, "$2")
	require.Equal(t, &SessionRef{Kind: SessionRefID, ID: 2}, got.Session)
	require.Nil(t, got.Window)
	require.Nil(t, got.Pane)
}

func TestFullTargetWithIDs(t *testing.T) {
	got := mustParse(t, "$0:@1.%2")
	require.Equal(t, &SessionRef{Kind: SessionRefID, ID: 0}, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefID, ID: 1}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefID, ID: 2}, got.Pane)
}

func TestSessionNameWithIndices(t *testing.T) {
	got := mustParse(t, "mysession:0.1")
	require.Equal(t, &SessionRef{Kind: SessionRefName, Name: "mysession"}, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefIndex, Index: 0}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefIndex, Index: 1}, got.Pane)
}

func TestNoSessionWithWindowAndPaneIndices(t *testing.T) {
	got := mustParse(t, ":0.0")
	require.Nil(t, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefIndex, Index: 0}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefIndex, Index: 0}, got.Pane)
}

func TestWindowNameWithPaneID(t *testing.T) {
	got := mustParse(t, "mywin.%3")
	require.Equal(t, &WindowRef{Kind: WindowRefName, Name: "mywin"}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefID, ID: 3}, got.Pane)
}

func TestSessionIDAndWindowIDNoPane(t *testing.T) {
	got := mustParse(t, "$1:@2")
	require.Equal(t, &SessionRef{Kind: SessionRefID, ID: 1}, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefID, ID: 2}, got.Window)
	require.Nil(t, got.Pane)
}

func TestSessionNameOnlyWithColon(t *testing.T) {
	got := mustParse(t, "mysession:")
	require.Equal(t, &SessionRef{Kind: SessionRefName, Name: "mysession"}, got.Session)
	require.Nil(t, got.Window)
	require.Nil(t, got.Pane)
}

func TestWindowIndexOnly(t *testing.T) {
	got := mustParse(t, ":3")
	require.Nil(t, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefIndex, Index: 3}, got.Window)
	require.Nil(t, got.Pane)
}

func TestSessionIDWithWindowIndexAndPaneIndex(t *testing.T) {
	got := mustParse(t, "$10:2.7")
	require.Equal(t, &SessionRef{Kind: SessionRefID, ID: 10}, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefIndex, Index: 2}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefIndex, Index: 7}, got.Pane)
}

func TestLargeIDs(t *testing.T) {
	got := mustParse(t, "$999:@1000.%2000")
	require.Equal(t, &SessionRef{Kind: SessionRefID, ID: 999}, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefID, ID: 1000}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefID, ID: 2000}, got.Pane)
}

func TestPaneIndexAfterDot(t *testing.T) {
	got := mustParse(t, ":@1.3")
	require.Nil(t, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefID, ID: 1}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefIndex, Index: 3}, got.Pane)
}

func TestSessionNameAndWindowName(t *testing.T) {
	got := mustParse(t, "sess:win")
	require.Equal(t, &SessionRef{Kind: SessionRefName, Name: "sess"}, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefName, Name: "win"}, got.Window)
	require.Nil(t, got.Pane)
}

func TestColonOnly(t *testing.T) {
	require.Equal(t, Target{}, mustParse(t, ":"))
}

func TestInvalidPaneRef(t *testing.T) {
	_, err := Parse(":0.abc")
	require.Error(t, err)
}

func TestInvalidSessionID(t *testing.T) {
	_, err := Parse("$abc")
	require.Error(t, err)
}

func TestInvalidWindowID(t *testing.T) {
	_, err := Parse(":@abc")
	require.Error(t, err)
}

func TestInvalidPaneID(t *testing.T) {
	_, err := Parse("%xyz")
	require.Error(t, err)
}

func TestBarePaneZero(t *testing.T) {
	got := mustParse(t, "%0")
	require.Equal(t, &PaneRef{Kind: PaneRefID, ID: 0}, got.Pane)
	require.Nil(t, got.Session)
	require.Nil(t, got.Window)
}

func TestWindowDotPaneNoSession(t *testing.T) {
	got := mustParse(t, "0.0")
	require.Nil(t, got.Session)
	require.Equal(t, &WindowRef{Kind: WindowRefIndex, Index: 0}, got.Window)
	require.Equal(t, &PaneRef{Kind: PaneRefIndex, Index: 0}, got.Pane)
}
