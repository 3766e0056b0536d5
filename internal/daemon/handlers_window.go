package daemon

import (
	"context"

	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/command"
	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/layout"
	"github.com/g960059/tmuxccd/internal/response"
	"github.com/g960059/tmuxccd/internal/tmuxfmt"
)

func (s *Session) handleSelectWindow(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasTabID {
		return "", errTabNotFound("")
	}
	s.suppressWindowChanged++
	if err := s.mux.SetActiveTab(ctx, resolved.TabID); err != nil {
		return "", err
	}
	s.activeWindowID, s.hasActiveWindowID = s.idmap.GetOrCreateWindowID(string(resolved.TabID)), true
	return "", nil
}

func (s *Session) handleKillWindow(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasTabID {
		return "", errTabNotFound("")
	}
	if err := s.mux.KillTab(ctx, resolved.TabID); err != nil {
		return "", err
	}
	s.idmap.RemoveWindow(string(resolved.TabID))
	return "", nil
}

func (s *Session) handleResizeWindow(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasTabID {
		return "", errTabNotFound("")
	}
	tabs, err := s.mux.Tabs(ctx, resolved.Workspace)
	if err != nil {
		return "", err
	}
	tab, _, err := tabByID(tabs, resolved.TabID)
	if err != nil {
		return "", err
	}
	cols, rows := tab.Cols, tab.Rows
	if cmd.HasWidth {
		cols = int(cmd.Width)
	}
	if cmd.HasHeight {
		rows = int(cmd.Height)
	}
	return "", s.mux.ResizeTab(ctx, resolved.TabID, cols, rows)
}

func (s *Session) handleRenameWindow(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasTabID {
		return "", errTabNotFound("")
	}
	return "", s.mux.RenameTab(ctx, resolved.TabID, cmd.NewName)
}

func (s *Session) handleNewWindow(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	workspace := resolved.Workspace
	if workspace == "" {
		workspace = s.workspace
	}

	env := make(map[string]string, len(cmd.Env))
	for _, kv := range cmd.Env {
		if k, v, ok := cutEnv(kv); ok {
			env[k] = v
		}
	}

	tabID, paneID, err := s.mux.SpawnTab(ctx, workspace, cmd.Cwd, env)
	if err != nil {
		return "", err
	}
	if cmd.WindowName != "" {
		if err := s.mux.RenameTab(ctx, tabID, cmd.WindowName); err != nil {
			return "", err
		}
	}

	s.activeWindowID, s.hasActiveWindowID = s.idmap.GetOrCreateWindowID(string(tabID)), true
	s.activePaneID, s.hasActivePaneID = s.idmap.GetOrCreatePaneID(string(paneID)), true
	s.idmap.SetTabWorkspace(string(tabID), workspace)

	if !cmd.HasPrint {
		return "", nil
	}
	fctx, err := s.buildFormatContextForTarget(ctx, paneID, tabID, workspace)
	if err != nil {
		return "", err
	}
	return tmuxfmt.Expand(cmd.PrintAndFormat, &fctx), nil
}

func (s *Session) handleMoveWindow(ctx context.Context, cmd command.Command) (string, error) {
	src := ""
	if cmd.HasSrc {
		src = cmd.Src
	}
	resolved, err := s.resolveTarget(ctx, src)
	if err != nil {
		return "", err
	}
	if !resolved.HasTabID {
		return "", errTabNotFound("")
	}
	if !cmd.HasDst {
		return "", errors.New("move-window: destination required")
	}
	return "", s.mux.MoveTabToWindow(ctx, resolved.TabID, hostmux.WindowID(cmd.Dst))
}

func (s *Session) handleSelectLayout(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasTabID {
		return "", errTabNotFound("")
	}
	node, err := s.buildLayoutForTab(ctx, resolved.TabID)
	if err != nil {
		return "", err
	}
	windowID := s.idmap.GetOrCreateWindowID(string(resolved.TabID))
	s.pendingNotifications = append(s.pendingNotifications, response.LayoutChangeNotification(windowID, layout.Generate(node)))
	return "", nil
}

func cutEnv(kv string) (string, string, bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}
