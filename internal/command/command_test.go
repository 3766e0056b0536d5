package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParseCommand(t *testing.T, line string) Command {
	t.Helper()
	cmd, err := ParseCommand(line)
	require.NoError(t, err)
	return cmd
}

func TestSplitWindowHorizontal(t *testing.T) {
	cmd := mustParseCommand(t, "split-window -h")
	require.Equal(t, KindSplitWindow, cmd.Kind)
	require.True(t, cmd.Horizontal)
	require.False(t, cmd.Vertical)
	require.False(t, cmd.HasTarget)
}

func TestSplitWindowVerticalWithTarget(t *testing.T) {
	cmd := mustParseCommand(t, "split-window -v -t %3")
	require.True(t, cmd.Vertical)
	require.True(t, cmd.HasTarget)
	require.Equal(t, "%3", cmd.Target)
}

func TestSplitWindowPrintDefaultsFormat(t *testing.T) {
	cmd := mustParseCommand(t, "split-window -P")
	require.True(t, cmd.HasPrint)
	require.Equal(t, defaultPrintFormat, cmd.PrintAndFormat)
}

func TestSplitWindowPrintWithFormat(t *testing.T) {
	cmd := mustParseCommand(t, "split-window -P -F #{pane_id}")
	require.Equal(t, "#{pane_id}", cmd.PrintAndFormat)
}

func TestSplitWindowWithEnvAndCwd(t *testing.T) {
	cmd := mustParseCommand(t, "split-window -c /tmp -e FOO=bar -e BAZ=qux")
	require.Equal(t, "/tmp", cmd.Cwd)
	require.Equal(t, []string{"FOO=bar", "BAZ=qux"}, cmd.Env)
}

func TestSplitWindowUnexpectedArgument(t *testing.T) {
	_, err := ParseCommand("split-window --bogus")
	require.Error(t, err)
}

func TestSendKeysCollectsTrailingWords(t *testing.T) {
	cmd := mustParseCommand(t, `send-keys -t %5 echo hello Enter`)
	require.Equal(t, KindSendKeys, cmd.Kind)
	require.Equal(t, "%5", cmd.Target)
	require.Equal(t, []string{"echo", "hello", "Enter"}, cmd.Keys)
}

func TestSendKeysLiteralAndHex(t *testing.T) {
	cmd := mustParseCommand(t, "send-keys -l -H 41 42")
	require.True(t, cmd.Literal)
	require.True(t, cmd.Hex)
	require.Equal(t, []string{"41", "42"}, cmd.Keys)
}

func TestSendKeysQuotedArgument(t *testing.T) {
	cmd := mustParseCommand(t, `send-keys "echo hello" Enter`)
	require.Equal(t, []string{"echo hello", "Enter"}, cmd.Keys)
}

func TestCapturePaneFlags(t *testing.T) {
	cmd := mustParseCommand(t, "capture-pane -p -t %2 -e -C -S -10 -E 5")
	require.True(t, cmd.Print)
	require.True(t, cmd.Escape)
	require.True(t, cmd.OctalEscape)
	require.Equal(t, int64(-10), cmd.StartLine)
	require.Equal(t, int64(5), cmd.EndLine)
}

func TestCapturePaneInvalidNumber(t *testing.T) {
	_, err := ParseCommand("capture-pane -S notanumber")
	require.Error(t, err)
}

func TestListPanesAll(t *testing.T) {
	cmd := mustParseCommand(t, "list-panes -a -F #{pane_id}")
	require.True(t, cmd.All)
	require.Equal(t, "#{pane_id}", cmd.Format)
}

func TestListWindowsAlias(t *testing.T) {
	cmd := mustParseCommand(t, "lsw -t $0")
	require.Equal(t, KindListWindows, cmd.Kind)
	require.Equal(t, "$0", cmd.Target)
}

func TestListSessionsNoArgs(t *testing.T) {
	cmd := mustParseCommand(t, "list-sessions")
	require.Equal(t, KindListSessions, cmd.Kind)
	require.False(t, cmd.HasFormat)
}

func TestNewWindowPrintAndFormat(t *testing.T) {
	cmd := mustParseCommand(t, "new-window -n mywin -P")
	require.Equal(t, "mywin", cmd.Name)
	require.Equal(t, defaultPrintFormat, cmd.PrintAndFormat)
}

func TestSelectWindowRequiresTargetFlag(t *testing.T) {
	_, err := ParseCommand("select-window foo")
	require.Error(t, err)
}

func TestSelectPaneWithTitleAndStyle(t *testing.T) {
	cmd := mustParseCommand(t, "select-pane -T mytitle -P")
	require.Equal(t, "mytitle", cmd.Title)
	require.Equal(t, "", cmd.Style)
}

func TestKillPaneTarget(t *testing.T) {
	cmd := mustParseCommand(t, "kill-pane -t %1")
	require.Equal(t, "%1", cmd.Target)
}

func TestResizePaneStripsPercent(t *testing.T) {
	cmd := mustParseCommand(t, "resize-pane -x 50% -y 80")
	require.Equal(t, uint64(50), cmd.Width)
	require.Equal(t, uint64(80), cmd.Height)
}

func TestResizePaneZoom(t *testing.T) {
	cmd := mustParseCommand(t, "resize-pane -Z")
	require.True(t, cmd.Zoom)
}

func TestResizeWindowDimensions(t *testing.T) {
	cmd := mustParseCommand(t, "resize-window -x 120 -y 40")
	require.Equal(t, uint64(120), cmd.Width)
	require.Equal(t, uint64(40), cmd.Height)
}

func TestRefreshClientFields(t *testing.T) {
	cmd := mustParseCommand(t, "refresh-client -C 80,24 -f flag -A pane -B sub")
	require.Equal(t, "80,24", cmd.Size)
	require.Equal(t, "flag", cmd.Flags)
	require.Equal(t, "pane", cmd.AdjustPane)
	require.Equal(t, "sub", cmd.Subscription)
}

func TestDisplayMessagePositionalFormat(t *testing.T) {
	cmd := mustParseCommand(t, "display-message -p #{session_name}")
	require.True(t, cmd.Print)
	require.Equal(t, "#{session_name}", cmd.Format)
}

func TestDisplayMessageVerbose(t *testing.T) {
	cmd := mustParseCommand(t, "display-message -v #{pane_id}")
	require.True(t, cmd.Verbose)
	require.Equal(t, "#{pane_id}", cmd.Format)
}

func TestHasSessionTarget(t *testing.T) {
	cmd := mustParseCommand(t, "has-session -t mysession")
	require.Equal(t, "mysession", cmd.Target)
}

func TestListCommandsNoArgs(t *testing.T) {
	cmd := mustParseCommand(t, "list-commands")
	require.Equal(t, KindListCommands, cmd.Kind)
}

func TestKillWindowTarget(t *testing.T) {
	cmd := mustParseCommand(t, "kill-window -t @2")
	require.Equal(t, "@2", cmd.Target)
}

func TestKillSessionTarget(t *testing.T) {
	cmd := mustParseCommand(t, "kill-session -t $1")
	require.Equal(t, "$1", cmd.Target)
}

func TestRenameWindowRequiresName(t *testing.T) {
	_, err := ParseCommand("rename-window -t @0")
	require.Error(t, err)
}

func TestRenameWindowWithName(t *testing.T) {
	cmd := mustParseCommand(t, "rename-window -t @0 newname")
	require.Equal(t, "newname", cmd.NewName)
}

func TestRenameSessionWithName(t *testing.T) {
	cmd := mustParseCommand(t, "rename-session mysession")
	require.Equal(t, "mysession", cmd.NewName)
}

func TestNewSessionFullFlags(t *testing.T) {
	cmd := mustParseCommand(t, "new-session -s work -n main -d -P -c /tmp")
	require.Equal(t, "work", cmd.Name)
	require.Equal(t, "main", cmd.WindowName)
	require.True(t, cmd.Detached)
	require.Equal(t, "/tmp", cmd.Cwd)
	require.Equal(t, defaultPrintFormat, cmd.PrintAndFormat)
}

func TestShowOptionsCombinedFlags(t *testing.T) {
	cmd := mustParseCommand(t, "show-options -gvq")
	require.True(t, cmd.Global)
	require.True(t, cmd.ValueOnly)
	require.True(t, cmd.Quiet)
}

func TestShowOptionsWithName(t *testing.T) {
	cmd := mustParseCommand(t, "show-options status-left")
	require.Equal(t, "status-left", cmd.OptionName)
}

func TestShowWindowOptionsCombinedFlags(t *testing.T) {
	cmd := mustParseCommand(t, "show-window-options -gv")
	require.True(t, cmd.Global)
	require.True(t, cmd.ValueOnly)
}

func TestAttachSessionTarget(t *testing.T) {
	cmd := mustParseCommand(t, "attach-session -t work")
	require.Equal(t, "work", cmd.Target)
}

func TestDetachClientIgnoresFlags(t *testing.T) {
	cmd := mustParseCommand(t, "detach-client -s work")
	require.Equal(t, KindDetachClient, cmd.Kind)
}

func TestSwitchClientTarget(t *testing.T) {
	cmd := mustParseCommand(t, "switch-client -t work")
	require.Equal(t, "work", cmd.Target)
}

func TestListClientsFormat(t *testing.T) {
	cmd := mustParseCommand(t, "list-clients -F #{client_name}")
	require.Equal(t, "#{client_name}", cmd.Format)
}

func TestShowBufferName(t *testing.T) {
	cmd := mustParseCommand(t, "show-buffer -b mybuf")
	require.Equal(t, "mybuf", cmd.BufferName)
}

func TestSetBufferPositionalData(t *testing.T) {
	cmd := mustParseCommand(t, `set-buffer "hello world"`)
	require.Equal(t, "hello world", cmd.Data)
}

func TestSetBufferAppend(t *testing.T) {
	cmd := mustParseCommand(t, "set-buffer -a -b mybuf data")
	require.True(t, cmd.Append)
	require.Equal(t, "mybuf", cmd.BufferName)
	require.Equal(t, "data", cmd.Data)
}

func TestDeleteBufferName(t *testing.T) {
	cmd := mustParseCommand(t, "delete-buffer -b mybuf")
	require.Equal(t, "mybuf", cmd.BufferName)
}

func TestListBuffersFormat(t *testing.T) {
	cmd := mustParseCommand(t, "list-buffers -F #{buffer_name}")
	require.Equal(t, "#{buffer_name}", cmd.Format)
}

func TestPasteBufferFlags(t *testing.T) {
	cmd := mustParseCommand(t, "paste-buffer -b mybuf -t %1 -d -p")
	require.Equal(t, "mybuf", cmd.BufferName)
	require.Equal(t, "%1", cmd.Target)
	require.True(t, cmd.DeleteAfter)
	require.True(t, cmd.Bracketed)
}

func TestMovePaneFlags(t *testing.T) {
	cmd := mustParseCommand(t, "move-pane -s %1 -t %2 -h -b")
	require.Equal(t, "%1", cmd.Src)
	require.Equal(t, "%2", cmd.Dst)
	require.True(t, cmd.Horizontal)
	require.True(t, cmd.Before)
}

func TestMoveWindowFlags(t *testing.T) {
	cmd := mustParseCommand(t, "move-window -s @1 -t @2")
	require.Equal(t, "@1", cmd.Src)
	require.Equal(t, "@2", cmd.Dst)
}

func TestCopyModeQuit(t *testing.T) {
	cmd := mustParseCommand(t, "copy-mode -q -t %1")
	require.True(t, cmd.Quit)
	require.Equal(t, "%1", cmd.Target)
}

func TestSetOptionNameAndValue(t *testing.T) {
	cmd := mustParseCommand(t, "set-option -g status-left left-text")
	require.Equal(t, "status-left", cmd.OptionName)
	require.Equal(t, "left-text", cmd.Value)
}

func TestSelectLayoutName(t *testing.T) {
	cmd := mustParseCommand(t, "select-layout -t @0 tiled")
	require.Equal(t, "tiled", cmd.LayoutName)
}

func TestBreakPaneFlags(t *testing.T) {
	cmd := mustParseCommand(t, "break-pane -d -s %1 -t newsession")
	require.True(t, cmd.Detach)
	require.Equal(t, "%1", cmd.Source)
	require.Equal(t, "newsession", cmd.Target)
}

func TestKillServerNoArgs(t *testing.T) {
	cmd := mustParseCommand(t, "kill-server")
	require.Equal(t, KindKillServer, cmd.Kind)
}

func TestWaitForSignal(t *testing.T) {
	cmd := mustParseCommand(t, "wait-for -S mychannel")
	require.True(t, cmd.Signal)
	require.Equal(t, "mychannel", cmd.Channel)
}

func TestPipePaneDefaultsToOutput(t *testing.T) {
	cmd := mustParseCommand(t, "pipe-pane -t %1 cat")
	require.True(t, cmd.Output)
	require.False(t, cmd.Input)
	require.Equal(t, "cat", cmd.PipeCommand)
}

func TestPipePaneInputExplicit(t *testing.T) {
	cmd := mustParseCommand(t, "pipe-pane -I -t %1 cat")
	require.True(t, cmd.Input)
	require.False(t, cmd.Output)
}

func TestDisplayPopupIgnoresCommandArgs(t *testing.T) {
	cmd := mustParseCommand(t, "display-popup -t %1 -w 50% -h 50% echo hi")
	require.Equal(t, KindDisplayPopup, cmd.Kind)
	require.Equal(t, "%1", cmd.Target)
}

func TestRunShellBackground(t *testing.T) {
	cmd := mustParseCommand(t, "run-shell -b echo hi")
	require.True(t, cmd.Background)
	require.Equal(t, "echo", cmd.ShellCommand)
}

func TestServerInfoAlias(t *testing.T) {
	cmd := mustParseCommand(t, "info")
	require.Equal(t, KindServerInfo, cmd.Kind)
}

func TestUnknownCommand(t *testing.T) {
	_, err := ParseCommand("frobnicate")
	require.Error(t, err)
}

func TestEmptyCommand(t *testing.T) {
	_, err := ParseCommand("   ")
	require.Error(t, err)
}

func TestUnterminatedQuoteErrors(t *testing.T) {
	_, err := ParseCommand(`send-keys "unterminated`)
	require.Error(t, err)
}

func TestAliasesResolveSameKind(t *testing.T) {
	cmd1 := mustParseCommand(t, "splitw -h")
	cmd2 := mustParseCommand(t, "split-window -h")
	require.Equal(t, cmd1.Kind, cmd2.Kind)
}
