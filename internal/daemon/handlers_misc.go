package daemon

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/g960059/tmuxccd/internal/command"
	"github.com/g960059/tmuxccd/internal/idmap"
	"github.com/g960059/tmuxccd/internal/response"
)

// showOptions/showWindowOptions report a small, hardcoded set of options
// CC clients commonly probe for at attach time. tmuxccd doesn't model a
// real per-session option table — these are the fixed values a host mux
// driving this compatibility layer is expected to behave as.
var serverOptions = [][2]string{
	{"default-terminal", "screen-256color"},
	{"escape-time", "500"},
	{"set-clipboard", "on"},
	{"base-index", "0"},
	{"pane-base-index", "0"},
	{"status", "off"},
	{"focus-events", "on"},
	{"default-shell", "/bin/sh"},
	{"mouse", "off"},
	{"set-titles", "off"},
	{"allow-rename", "on"},
	{"renumber-windows", "off"},
	{"remain-on-exit", "off"},
}

var windowOptions = [][2]string{
	{"aggressive-resize", "off"},
	{"mode-keys", "emacs"},
}

func (s *Session) handleShowOptions(cmd command.Command) string {
	return renderOptionTable(serverOptions, cmd)
}

func (s *Session) handleShowWindowOptions(cmd command.Command) string {
	return renderOptionTable(windowOptions, cmd)
}

func renderOptionTable(table [][2]string, cmd command.Command) string {
	if cmd.HasOption {
		for _, kv := range table {
			if kv[0] == cmd.OptionName {
				if cmd.ValueOnly {
					return kv[1]
				}
				return kv[0] + " " + kv[1]
			}
		}
		return ""
	}
	var lines []string
	for _, kv := range table {
		lines = append(lines, kv[0]+" "+kv[1])
	}
	return strings.Join(lines, "\n")
}

// handleRefreshClient implements refresh-client's four independent
// flags: -C WxH resizes the client's current window; -f pause-after=N
// (or !pause-after) arms/disarms flow-control pausing; -A %P:ACTION
// forces a per-pane pause/continue transition; -B registers or removes a
// subscription. All four are optional and independent, so a command
// touches whichever fields the parser actually filled in.
func (s *Session) handleRefreshClient(ctx context.Context, cmd command.Command) (string, error) {
	if cols, rows, ok := parseRefreshSize(cmd.Size); ok {
		resolved, err := s.resolveTarget(ctx, "")
		if err != nil {
			return "", err
		}
		if resolved.HasTabID {
			if err := s.mux.ResizeTab(ctx, resolved.TabID, cols, rows); err != nil {
				return "", err
			}
		}
	}
	s.applyRefreshFlags(cmd.Flags)
	s.applyAdjustPane(ctx, cmd.AdjustPane)
	s.applySubscription(cmd.Subscription)
	return "", nil
}

// parseRefreshSize parses refresh-client -C's value, which tmux itself
// writes as "width,height" (command_test.go's TestRefreshClientFields
// uses "80,24"); "widthxheight" is also accepted for callers that spell
// it the way spec.md's prose does.
func parseRefreshSize(size string) (cols, rows int, ok bool) {
	w, h, found := strings.Cut(size, ",")
	if !found {
		w, h, found = strings.Cut(size, "x")
	}
	if !found {
		return 0, 0, false
	}
	cw, err1 := strconv.Atoi(w)
	ch, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return cw, ch, true
}

// applyRefreshFlags handles -f's two recognized values: "pause-after=N"
// (optionally ",wait-exit") arms flow-control pausing at N seconds;
// "!pause-after" disarms it and returns every currently paused pane of
// this connection to Running, per the pause-mode state machine's
// "any --(refresh-client -f !pause-after)--> Running" edge.
func (s *Session) applyRefreshFlags(value string) {
	if value == "" {
		return
	}
	if value == "!pause-after" {
		s.pauseMu.Lock()
		s.pauseAfter = 0
		s.pauseWaitExit = false
		for paneID := range s.pausedPanes {
			delete(s.pausedPanes, paneID)
			if tmuxPaneID, ok := s.idmap.TmuxPaneID(string(paneID)); ok {
				s.pendingNotifications = append(s.pendingNotifications, response.ContinueNotification(tmuxPaneID))
			}
		}
		s.pauseMu.Unlock()
		return
	}

	spec, ok := strings.CutPrefix(value, "pause-after=")
	if !ok {
		return
	}
	secs, rest, _ := strings.Cut(spec, ",")
	n, err := strconv.Atoi(secs)
	if err != nil || n <= 0 {
		return
	}
	s.pauseMu.Lock()
	s.pauseAfter = time.Duration(n) * time.Second
	s.pauseWaitExit = rest == "wait-exit"
	s.pauseMu.Unlock()
}

// applyAdjustPane handles -A's "%P:ACTION" form. "continue" and "pause"
// drive the two real transitions in the pause-mode state machine;
// "on"/"off" are accepted but leave the running/paused state unchanged,
// per the state diagram's "Paused --(-A %P:on/off)--> (unchanged)" edge.
func (s *Session) applyAdjustPane(ctx context.Context, value string) {
	if value == "" {
		return
	}
	target, action := value, ""
	if idx := strings.LastIndex(value, ":"); idx >= 0 {
		target, action = value[:idx], value[idx+1:]
	}

	resolved, err := s.resolveTarget(ctx, target)
	if err != nil || !resolved.HasPaneID {
		return
	}
	tmuxPaneID, ok := s.idmap.TmuxPaneID(string(resolved.PaneID))
	if !ok {
		return
	}

	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	switch action {
	case "continue":
		if s.pausedPanes[resolved.PaneID] {
			delete(s.pausedPanes, resolved.PaneID)
			s.pendingNotifications = append(s.pendingNotifications, response.ContinueNotification(tmuxPaneID))
		}
	case "pause":
		if !s.pausedPanes[resolved.PaneID] {
			s.pausedPanes[resolved.PaneID] = true
			s.pendingNotifications = append(s.pendingNotifications, response.PauseNotification(tmuxPaneID))
		}
	}
}

// handleKillServer tears down every pane this mux owns, resets this
// connection's id map, and arms the connection loop to emit
// "%exit server killed" and shut the whole daemon down — not just detach
// this one client, the way detach-client's bare %exit does.
func (s *Session) handleKillServer(ctx context.Context) error {
	workspaces, err := s.mux.Workspaces(ctx)
	if err == nil {
		for _, ws := range workspaces {
			tabs, err := s.mux.Tabs(ctx, ws.Name)
			if err != nil {
				continue
			}
			for _, tab := range tabs {
				_ = s.mux.KillTab(ctx, tab.ID)
			}
		}
	}

	s.idmap = idmap.New()
	s.exitReason = "server killed"
	s.detachRequested = true
	s.terminateServer = true
	return nil
}

func (s *Session) handleWaitFor(ctx context.Context, cmd command.Command) (string, error) {
	if s.waiters == nil {
		return "", nil
	}
	if cmd.Signal {
		s.waiters.signal(cmd.Channel)
		return "", nil
	}
	return "", s.waiters.wait(ctx, cmd.Channel)
}

// handleRunShell is a deliberate no-op: the daemon has no process-spawn
// primitive over hostmux.Mux (by design — arbitrary shell execution from
// the compat layer would need its own privilege story), so run-shell
// commands are accepted and ignored rather than rejected outright.
func (s *Session) handleRunShell(ctx context.Context, cmd command.Command) (string, error) {
	_ = ctx
	_ = cmd
	return "", nil
}
