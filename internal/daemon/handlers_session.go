package daemon

import (
	"context"

	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/command"
	"github.com/g960059/tmuxccd/internal/response"
	"github.com/g960059/tmuxccd/internal/tmuxfmt"
)

func (s *Session) handleNewSession(ctx context.Context, cmd command.Command) (string, error) {
	name := cmd.Name
	if name == "" {
		name = "default"
	}

	workspaces, err := s.mux.Workspaces(ctx)
	if err != nil {
		return "", err
	}
	if hasWorkspace(workspaces, name) {
		return "", errors.Errorf("duplicate session: %s", name)
	}

	env := make(map[string]string, len(cmd.Env))
	for _, kv := range cmd.Env {
		if k, v, ok := cutEnv(kv); ok {
			env[k] = v
		}
	}

	tabID, paneID, err := s.mux.SpawnTab(ctx, name, cmd.Cwd, env)
	if err != nil {
		return "", err
	}

	s.activeSessionID, s.hasActiveSessionID = s.idmap.GetOrCreateSessionID(name), true
	s.activeWindowID, s.hasActiveWindowID = s.idmap.GetOrCreateWindowID(string(tabID)), true
	s.activePaneID, s.hasActivePaneID = s.idmap.GetOrCreatePaneID(string(paneID)), true
	s.idmap.SetTabWorkspace(string(tabID), name)
	s.workspace = name

	if !cmd.HasPrint {
		return "", nil
	}
	fctx, err := s.buildFormatContextForTarget(ctx, paneID, tabID, name)
	if err != nil {
		return "", err
	}
	return tmuxfmt.Expand(cmd.PrintAndFormat, &fctx), nil
}

func (s *Session) handleRenameSession(ctx context.Context, cmd command.Command) (string, error) {
	target := s.targetOrEmpty(cmd)
	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	if err := s.mux.RenameWorkspace(ctx, resolved.Workspace, cmd.NewName); err != nil {
		return "", err
	}
	if resolved.Workspace == s.workspace {
		s.workspace = cmd.NewName
	}
	return "", nil
}

func (s *Session) handleKillSession(ctx context.Context, cmd command.Command) (string, error) {
	target := s.targetOrEmpty(cmd)
	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	tabs, err := s.mux.Tabs(ctx, resolved.Workspace)
	if err != nil {
		return "", err
	}
	for _, tab := range tabs {
		if err := s.mux.KillTab(ctx, tab.ID); err != nil {
			return "", err
		}
		s.idmap.RemoveWindow(string(tab.ID))
	}
	s.idmap.RemoveSession(resolved.Workspace)
	return "", nil
}

func (s *Session) handleAttachSession(ctx context.Context, cmd command.Command) (string, error) {
	target := s.targetOrEmpty(cmd)
	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	if !resolved.HasWorkspace {
		return "", errors.Errorf("session not found")
	}
	s.workspace = resolved.Workspace

	sessionID := s.idmap.GetOrCreateSessionID(resolved.Workspace)
	s.activeSessionID, s.hasActiveSessionID = sessionID, true
	s.pendingNotifications = append(s.pendingNotifications, response.SessionChangedNotification(sessionID, resolved.Workspace))

	tabs, err := s.mux.Tabs(ctx, resolved.Workspace)
	if err != nil {
		return "", nil
	}
	for _, tab := range tabs {
		s.idmap.GetOrCreateWindowID(string(tab.ID))
		s.idmap.SetTabWorkspace(string(tab.ID), resolved.Workspace)
		panes, err := s.mux.Panes(ctx, tab.ID)
		if err != nil {
			continue
		}
		for _, pane := range panes {
			s.idmap.GetOrCreatePaneID(string(pane.ID))
		}
	}
	return "", nil
}

func (s *Session) handleDetachClient(ctx context.Context, cmd command.Command) (string, error) {
	s.detachRequested = true
	return "", nil
}

func (s *Session) handleSwitchClient(ctx context.Context, cmd command.Command) (string, error) {
	// switch-client changes which session THIS client is attached to,
	// same underlying operation attach-session performs for a fresh
	// connection.
	return s.handleAttachSession(ctx, cmd)
}
