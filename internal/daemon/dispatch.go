package daemon

import (
	"context"

	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/command"
)

// dispatch routes a parsed Command to its handler, the Go equivalent of
// the original's big verb match. Every handler returns the string to put
// inside the %begin/%end body (empty for commands with no output).
func (s *Session) dispatch(ctx context.Context, cmd command.Command) (string, error) {
	switch cmd.Kind {
	case command.KindListCommands:
		return s.handleListCommands(), nil
	case command.KindHasSession:
		return s.handleHasSession(ctx, cmd)
	case command.KindListPanes:
		return s.handleListPanes(ctx, cmd)
	case command.KindListWindows:
		return s.handleListWindows(ctx, cmd)
	case command.KindListSessions:
		return s.handleListSessions(ctx, cmd)
	case command.KindListClients:
		return s.handleListClients(ctx, cmd)
	case command.KindDisplayMessage:
		return s.handleDisplayMessage(ctx, cmd)
	case command.KindCapturePane:
		return s.handleCapturePane(ctx, cmd)
	case command.KindSendKeys:
		return s.handleSendKeys(ctx, cmd)
	case command.KindSelectPane:
		return s.handleSelectPane(ctx, cmd)
	case command.KindKillPane:
		return s.handleKillPane(ctx, cmd)
	case command.KindResizePane:
		return s.handleResizePane(ctx, cmd)
	case command.KindSplitWindow:
		return s.handleSplitWindow(ctx, cmd)
	case command.KindMovePane:
		return s.handleMovePane(ctx, cmd)
	case command.KindBreakPane:
		return s.handleBreakPane(ctx, cmd)
	case command.KindCopyMode:
		return "", nil
	case command.KindPipePane:
		return s.handlePipePane(ctx, cmd)
	case command.KindSelectWindow:
		return s.handleSelectWindow(ctx, cmd)
	case command.KindKillWindow:
		return s.handleKillWindow(ctx, cmd)
	case command.KindResizeWindow:
		return s.handleResizeWindow(ctx, cmd)
	case command.KindRenameWindow:
		return s.handleRenameWindow(ctx, cmd)
	case command.KindNewWindow:
		return s.handleNewWindow(ctx, cmd)
	case command.KindMoveWindow:
		return s.handleMoveWindow(ctx, cmd)
	case command.KindSelectLayout:
		return s.handleSelectLayout(ctx, cmd)
	case command.KindNewSession:
		return s.handleNewSession(ctx, cmd)
	case command.KindRenameSession:
		return s.handleRenameSession(ctx, cmd)
	case command.KindKillSession:
		return s.handleKillSession(ctx, cmd)
	case command.KindAttachSession:
		return s.handleAttachSession(ctx, cmd)
	case command.KindDetachClient:
		return s.handleDetachClient(ctx, cmd)
	case command.KindSwitchClient:
		return s.handleSwitchClient(ctx, cmd)
	case command.KindShowOptions:
		return s.handleShowOptions(cmd), nil
	case command.KindShowWindowOptions:
		return s.handleShowWindowOptions(cmd), nil
	case command.KindSetOption:
		// Only the pane-border options act (on the pane header); others are no-ops.
		if cmd.OptionName != "pane-border-format" && cmd.OptionName != "pane-border-status" {
			return "", nil
		}
		resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
		if err != nil {
			return "", err
		} else if !resolved.HasPaneID {
			return "", errPaneNotFound("")
		}
		if cmd.OptionName == "pane-border-format" {
			return "", s.mux.SetPaneHeader(ctx, resolved.PaneID, cmd.Value)
		}
		return "", s.mux.SetPaneHeaderVisible(ctx, resolved.PaneID, cmd.Value == "on")
	case command.KindRefreshClient:
		return s.handleRefreshClient(ctx, cmd)
	case command.KindShowBuffer:
		return s.handleShowBuffer(cmd)
	case command.KindSetBuffer:
		return s.handleSetBuffer(cmd)
	case command.KindDeleteBuffer:
		return s.handleDeleteBuffer(cmd)
	case command.KindListBuffers:
		return s.handleListBuffers(), nil
	case command.KindPasteBuffer:
		return s.handlePasteBuffer(ctx, cmd)
	case command.KindKillServer:
		return "", s.handleKillServer(ctx)
	case command.KindWaitFor:
		return s.handleWaitFor(ctx, cmd)
	case command.KindDisplayPopup:
		return "", nil
	case command.KindRunShell:
		return s.handleRunShell(ctx, cmd)
	case command.KindServerInfo:
		return s.handleServerInfo(), nil
	default:
		return "", errors.Errorf("unhandled command kind: %d", cmd.Kind)
	}
}
