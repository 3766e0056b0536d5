package daemon

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/tmuxfmt"

	"github.com/g960059/tmuxccd/internal/command"
)

const (
	defaultPaneFormat    = "#{pane_index}: [#{pane_width}x#{pane_height}] [history 0/0, 0 bytes] #{pane_id}#{?pane_active, (active),}"
	defaultWindowFormat  = "#{window_index}: #{window_name}#{window_flags} (#{window_panes} panes) [#{window_width}x#{window_height}]#{?window_active, (active),}"
	defaultSessionFormat = "#{session_name}: #{session_windows} windows#{?session_attached, (attached),}"
	defaultClientFormat  = "#{client_name}: #{session_name}"
	defaultBufferFormat  = "#{buffer_name}: #{buffer_size} bytes: \"#{buffer_sample}\""
)

// tmuxKnownCommands lists the verbs this daemon understands, for
// list-commands' output — a client-visible capability probe some tmux
// tooling runs before deciding which flags are safe to use.
var tmuxKnownCommands = []string{
	"attach-session", "break-pane", "capture-pane", "copy-mode", "delete-buffer",
	"detach-client", "display-message", "display-popup", "has-session",
	"kill-pane", "kill-server", "kill-session", "kill-window", "list-buffers",
	"list-clients", "list-commands", "list-panes", "list-sessions", "list-windows",
	"move-pane", "move-window", "new-session", "new-window", "paste-buffer",
	"pipe-pane", "refresh-client", "rename-session", "rename-window", "resize-pane",
	"resize-window", "run-shell", "select-layout", "select-pane", "select-window",
	"server-info", "set-buffer", "set-option", "show-buffer", "show-options",
	"show-window-options", "split-window", "switch-client", "wait-for",
}

func (s *Session) handleListCommands() string {
	return strings.Join(tmuxKnownCommands, "\n")
}

func (s *Session) handleHasSession(ctx context.Context, cmd command.Command) (string, error) {
	target := ""
	if cmd.HasTarget {
		target = cmd.Target
	}
	resolved, err := s.resolveTarget(ctx, target)
	if err != nil || !resolved.HasWorkspace {
		return "", err
	}
	return "", nil
}

func (s *Session) handleListPanes(ctx context.Context, cmd command.Command) (string, error) {
	format := defaultPaneFormat
	if cmd.HasFormat {
		format = cmd.Format
	}

	target := ""
	if cmd.HasTarget {
		target = cmd.Target
	}
	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}

	var tabIDs []hostmux.TabID
	if cmd.All || cmd.Session {
		tabs, err := s.mux.Tabs(ctx, resolved.Workspace)
		if err != nil {
			return "", err
		}
		for _, t := range tabs {
			tabIDs = append(tabIDs, t.ID)
		}
	} else if resolved.HasTabID {
		tabIDs = []hostmux.TabID{resolved.TabID}
	}

	var lines []string
	for _, tabID := range tabIDs {
		tabs, err := s.mux.Tabs(ctx, resolved.Workspace)
		if err != nil {
			return "", err
		}
		tab, idx, err := tabByID(tabs, tabID)
		if err != nil {
			return "", err
		}
		panes, err := s.mux.Panes(ctx, tabID)
		if err != nil {
			return "", err
		}
		for _, pane := range panes {
			fctx := s.buildFormatContext(pane, tab, idx, panes, tabs, resolved.Workspace)
			lines = append(lines, tmuxfmt.Expand(format, &fctx))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Session) handleListWindows(ctx context.Context, cmd command.Command) (string, error) {
	format := defaultWindowFormat
	if cmd.HasFormat {
		format = cmd.Format
	}

	target := ""
	if cmd.HasTarget {
		target = cmd.Target
	}
	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}

	tabs, err := s.mux.Tabs(ctx, resolved.Workspace)
	if err != nil {
		return "", err
	}

	var lines []string
	for idx, tab := range tabs {
		panes, err := s.mux.Panes(ctx, tab.ID)
		if err != nil {
			return "", err
		}
		var active hostmux.Pane
		for _, p := range panes {
			if p.Active {
				active = p
				break
			}
		}
		if len(panes) > 0 && active.ID == "" {
			active = panes[0]
		}
		fctx := s.buildFormatContext(active, tab, idx, panes, tabs, resolved.Workspace)
		lines = append(lines, tmuxfmt.Expand(format, &fctx))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Session) handleListSessions(ctx context.Context, cmd command.Command) (string, error) {
	format := defaultSessionFormat
	if cmd.HasFormat {
		format = cmd.Format
	}

	workspaces, err := s.mux.Workspaces(ctx)
	if err != nil {
		return "", err
	}
	sorted := make([]hostmux.Workspace, len(workspaces))
	copy(sorted, workspaces)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var lines []string
	for _, ws := range sorted {
		tabs, err := s.mux.Tabs(ctx, ws.Name)
		if err != nil {
			continue
		}
		fctx := tmuxfmt.Context{
			SessionID:       s.idmap.GetOrCreateSessionID(ws.Name),
			SessionName:     ws.Name,
			SessionWindows:  uint64(len(tabs)),
			SessionAttached: boolToUint64(ws.Attached),
		}
		lines = append(lines, tmuxfmt.Expand(format, &fctx))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Session) handleListClients(ctx context.Context, cmd command.Command) (string, error) {
	format := defaultClientFormat
	if cmd.HasFormat {
		format = cmd.Format
	}
	fctx := tmuxfmt.Context{
		SessionID:       s.idmap.GetOrCreateSessionID(s.workspace),
		SessionName:     s.workspace,
		SessionAttached: 1,
		ClientName:      s.clientName,
		SocketPath:      s.socketPath,
	}
	return tmuxfmt.Expand(format, &fctx), nil
}

func (s *Session) handleServerInfo() string {
	var b strings.Builder
	b.WriteString("socket path: " + s.socketPath + "\n")
	b.WriteString("pid: " + strconv.FormatUint(serverPID(), 10))
	return b.String()
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
