package daemon

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/g960059/tmuxccd/internal/command"
	"github.com/g960059/tmuxccd/internal/hostmux"
	"github.com/g960059/tmuxccd/internal/tmuxfmt"
)

func (s *Session) targetOrEmpty(cmd command.Command) string {
	if cmd.HasTarget {
		return cmd.Target
	}
	return ""
}

func (s *Session) handleDisplayMessage(ctx context.Context, cmd command.Command) (string, error) {
	format := "#{session_name}:#{window_index}.#{pane_index}"
	if cmd.HasFormat {
		format = cmd.Format
	}
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return tmuxfmt.Expand(format, &tmuxfmt.Context{}), nil
	}
	fctx, err := s.buildFormatContextForTarget(ctx, resolved.PaneID, resolved.TabID, resolved.Workspace)
	if err != nil {
		return "", err
	}
	return tmuxfmt.Expand(format, &fctx), nil
}

func (s *Session) handleCapturePane(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}

	first, last := 0, 0
	if cmd.HasStartLine {
		first = int(cmd.StartLine)
	}
	if cmd.HasEndLine {
		last = int(cmd.EndLine)
	}

	lines, err := s.mux.GetLines(ctx, resolved.PaneID, first, last)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Session) handleSendKeys(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}
	data, err := resolveKeys(cmd.Keys, cmd.Literal, cmd.Hex)
	if err != nil {
		return "", err
	}
	if err := s.mux.WriteToPane(ctx, resolved.PaneID, data); err != nil {
		return "", err
	}
	return "", nil
}

func (s *Session) handleSelectPane(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}

	if cmd.Title != "" {
		if err := s.mux.SetPaneHeader(ctx, resolved.PaneID, cmd.Title); err != nil {
			return "", err
		}
	}

	s.suppressWindowChanged++
	if err := s.mux.SetActivePane(ctx, resolved.PaneID); err != nil {
		return "", err
	}
	s.activePaneID, s.hasActivePaneID = s.idmap.GetOrCreatePaneID(string(resolved.PaneID)), true
	return "", nil
}

func (s *Session) handleKillPane(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}
	if err := s.mux.KillPane(ctx, resolved.PaneID); err != nil {
		return "", err
	}
	s.idmap.RemovePane(string(resolved.PaneID))
	return "", nil
}

func (s *Session) handleResizePane(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}

	if cmd.Zoom {
		pane, err := s.mux.Pane(ctx, resolved.PaneID)
		if err != nil {
			return "", err
		}
		return "", s.mux.SetZoomed(ctx, resolved.PaneID, !pane.Zoomed)
	}

	pane, err := s.mux.Pane(ctx, resolved.PaneID)
	if err != nil {
		return "", err
	}
	cols, rows := pane.Width, pane.Height
	if cmd.HasWidth {
		cols = int(cmd.Width)
	}
	if cmd.HasHeight {
		rows = int(cmd.Height)
	}
	return "", s.mux.ResizePane(ctx, resolved.PaneID, cols, rows)
}

func (s *Session) handleSplitWindow(ctx context.Context, cmd command.Command) (string, error) {
	resolved, err := s.resolveTarget(ctx, s.targetOrEmpty(cmd))
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}

	direction := hostmux.SplitHorizontal
	if cmd.Vertical {
		direction = hostmux.SplitVertical
	}
	percent, _, _, err := parseSplitSize(cmd.Size)
	if err != nil {
		return "", err
	}

	env := make(map[string]string, len(cmd.Env))
	for _, kv := range cmd.Env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	newID, err := s.mux.SplitPane(ctx, hostmux.SplitRequest{
		Pane:        resolved.PaneID,
		Direction:   direction,
		SizePercent: percent,
		Cwd:         cmd.Cwd,
		Env:         env,
	})
	if err != nil {
		return "", err
	}
	s.activePaneID, s.hasActivePaneID = s.idmap.GetOrCreatePaneID(string(newID)), true

	if !cmd.HasPrint {
		return "", nil
	}
	fctx, err := s.buildFormatContextForTarget(ctx, newID, resolved.TabID, resolved.Workspace)
	if err != nil {
		return "", err
	}
	return tmuxfmt.Expand(cmd.PrintAndFormat, &fctx), nil
}

func (s *Session) handleMovePane(ctx context.Context, cmd command.Command) (string, error) {
	src := ""
	if cmd.HasSrc {
		src = cmd.Src
	}
	dst := ""
	if cmd.HasDst {
		dst = cmd.Dst
	}
	srcResolved, err := s.resolveTarget(ctx, src)
	if err != nil {
		return "", err
	}
	dstResolved, err := s.resolveTarget(ctx, dst)
	if err != nil {
		return "", err
	}
	if !srcResolved.HasPaneID || !dstResolved.HasTabID {
		return "", errors.New("move-pane: source pane or destination window not found")
	}
	return "", s.mux.MovePaneToTab(ctx, srcResolved.PaneID, dstResolved.TabID, cmd.Before)
}

func (s *Session) handleBreakPane(ctx context.Context, cmd command.Command) (string, error) {
	source := cmd.Source
	resolved, err := s.resolveTarget(ctx, source)
	if err != nil {
		return "", err
	}
	if !resolved.HasPaneID {
		return "", errPaneNotFound("")
	}
	newTab, _, err := s.mux.SpawnTab(ctx, resolved.Workspace, "", nil)
	if err != nil {
		return "", err
	}
	if err := s.mux.MovePaneToTab(ctx, resolved.PaneID, newTab, false); err != nil {
		return "", err
	}
	return "", nil
}

func (s *Session) handlePipePane(ctx context.Context, cmd command.Command) (string, error) {
	// pipe-pane's shell-side redirection has no analogue over the
	// host-mux capability surface (no process-spawn primitive); accept
	// and no-op the way the original ignores pipe-pane for CC clients
	// that only need in-band capture via capture-pane.
	_ = cmd
	return "", nil
}

func boolToIntStr(b bool) string {
	if b {
		return strconv.Itoa(1)
	}
	return strconv.Itoa(0)
}
