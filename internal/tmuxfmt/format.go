// Package tmuxfmt expands tmux-style format strings such as #{pane_id},
// #{window_id}, and conditional expressions like #{?pane_active,active,}.
package tmuxfmt

import (
	"fmt"
	"strings"
)

// Context holds all the state needed to resolve tmux format variables for
// one row of output (one pane, window, session, or buffer).
type Context struct {
	PaneID             uint64
	PaneIndex          uint64
	PaneWidth          uint64
	PaneHeight         uint64
	PaneActive         bool
	PaneLeft           uint64
	PaneTop            uint64
	PaneDead           bool
	WindowID           uint64
	WindowIndex        uint64
	WindowName         string
	WindowActive       bool
	WindowWidth        uint64
	WindowHeight       uint64
	SessionID          uint64
	SessionName        string
	CursorX            uint64
	CursorY            uint64
	HistoryLimit       uint64
	HistorySize        uint64
	PaneTitle          string
	PaneCurrentCommand string
	PaneCurrentPath    string
	PanePID            uint64
	PaneMode           string
	WindowFlags        string
	WindowPanes        uint64
	SessionWindows     uint64
	SessionAttached    uint64
	ClientName         string
	SocketPath         string
	ServerPID          uint64
	BufferName         string
	BufferSize         uint64
	BufferSample       string
}

// SetWindowActive sets the window as active and prepends '*' to
// WindowFlags, matching tmux's own flag-string convention.
func (c *Context) SetWindowActive(active bool) {
	c.WindowActive = active
	if active && !strings.Contains(c.WindowFlags, "*") {
		c.WindowFlags = "*" + c.WindowFlags
	}
}

// shortAliasToVariable maps a single-character tmux short-form alias to
// the equivalent long-form variable name, matching tmux's format_table[]
// in format.c.
func shortAliasToVariable(ch byte) (string, bool) {
	switch ch {
	case 'D':
		return "pane_id", true
	case 'F':
		return "window_flags", true
	case 'I':
		return "window_index", true
	case 'P':
		return "pane_index", true
	case 'S':
		return "session_name", true
	case 'T':
		return "pane_title", true
	case 'W':
		return "window_name", true
	default:
		return "", false
	}
}

// Expand expands a tmux format string, substituting #{variable}
// placeholders, single-character #X short-form aliases, and evaluating
// #{?condition,true_value,false_value} conditionals using ctx.
//
// ## expands to a literal #. Unknown variables expand to the empty
// string.
func Expand(format string, ctx *Context) string {
	var output strings.Builder
	output.Grow(len(format))
	b := []byte(format)
	n := len(b)
	i := 0

	for i < n {
		if i+1 < n && b[i] == '#' {
			next := b[i+1]
			switch {
			case next == '{':
				start := i + 2
				if end, ok := findMatchingBrace(b, start); ok {
					expr := format[start:end]
					expandExpr(expr, ctx, &output)
					i = end + 1
				} else {
					output.WriteString("#{")
					i += 2
				}
			case next == '#':
				output.WriteByte('#')
				i += 2
			default:
				if varName, ok := shortAliasToVariable(next); ok {
					resolveVariable(varName, ctx, &output)
					i += 2
				} else {
					output.WriteByte('#')
					i++
				}
			}
		} else {
			r, size := decodeRune(format[i:])
			output.WriteRune(r)
			i += size
		}
	}

	return output.String()
}

func decodeRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

// findMatchingBrace finds the index of the '}' that closes the brace
// opened at start, respecting nested brace pairs.
func findMatchingBrace(b []byte, start int) (int, bool) {
	depth := 1
	for i := start; i < len(b); i++ {
		switch b[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// expandExpr expands a single expression (the content between #{ and }):
// either a plain variable name like pane_id, or a conditional expression
// like ?pane_active,active,inactive.
func expandExpr(expr string, ctx *Context, output *strings.Builder) {
	if rest, ok := strings.CutPrefix(expr, "?"); ok {
		expandConditional(rest, ctx, output)
		return
	}
	resolveVariable(expr, ctx, output)
}

// expandConditional expands a conditional expression of the form
// "condition,true_str,false_str". The condition is resolved as a
// variable; if the resolved value is non-empty and not "0", the true
// branch is used, otherwise the false branch. Commas are matched at the
// top level only — commas inside nested #{} expressions do not separate
// branches.
func expandConditional(rest string, ctx *Context, output *strings.Builder) {
	parts := splitConditionalParts(rest)

	var condition, trueStr, falseStr string
	switch len(parts) {
	case 3:
		condition, trueStr, falseStr = parts[0], parts[1], parts[2]
	case 2:
		condition, trueStr = parts[0], parts[1]
	default:
		return
	}

	var condValue strings.Builder
	resolveVariable(condition, ctx, &condValue)
	isTrue := condValue.Len() > 0 && condValue.String() != "0"

	branch := falseStr
	if isTrue {
		branch = trueStr
	}

	output.WriteString(Expand(branch, ctx))
}

// splitConditionalParts splits the conditional body on top-level commas
// (those not nested inside #{} expressions).
func splitConditionalParts(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// resolveVariable resolves a single variable name and writes the result
// into output. Variable names are matched exactly; unknown names produce
// no output.
func resolveVariable(name string, ctx *Context, output *strings.Builder) {
	switch name {
	case "pane_id":
		fmt.Fprintf(output, "%%%d", ctx.PaneID)
	case "window_id":
		fmt.Fprintf(output, "@%d", ctx.WindowID)
	case "session_id":
		fmt.Fprintf(output, "$%d", ctx.SessionID)
	case "pane_index":
		fmt.Fprintf(output, "%d", ctx.PaneIndex)
	case "pane_width":
		fmt.Fprintf(output, "%d", ctx.PaneWidth)
	case "pane_height":
		fmt.Fprintf(output, "%d", ctx.PaneHeight)
	case "pane_active":
		output.WriteString(boolDigit(ctx.PaneActive))
	case "pane_left":
		fmt.Fprintf(output, "%d", ctx.PaneLeft)
	case "pane_top":
		fmt.Fprintf(output, "%d", ctx.PaneTop)
	case "pane_dead":
		output.WriteString(boolDigit(ctx.PaneDead))
	case "window_index":
		fmt.Fprintf(output, "%d", ctx.WindowIndex)
	case "window_name":
		output.WriteString(ctx.WindowName)
	case "window_active":
		output.WriteString(boolDigit(ctx.WindowActive))
	case "window_width":
		fmt.Fprintf(output, "%d", ctx.WindowWidth)
	case "window_height":
		fmt.Fprintf(output, "%d", ctx.WindowHeight)
	case "session_name":
		output.WriteString(ctx.SessionName)
	case "cursor_x":
		fmt.Fprintf(output, "%d", ctx.CursorX)
	case "cursor_y":
		fmt.Fprintf(output, "%d", ctx.CursorY)
	case "history_limit":
		fmt.Fprintf(output, "%d", ctx.HistoryLimit)
	case "history_size":
		fmt.Fprintf(output, "%d", ctx.HistorySize)
	case "pane_title":
		output.WriteString(ctx.PaneTitle)
	case "pane_current_command":
		output.WriteString(ctx.PaneCurrentCommand)
	case "pane_current_path":
		output.WriteString(ctx.PaneCurrentPath)
	case "pane_pid":
		fmt.Fprintf(output, "%d", ctx.PanePID)
	case "pane_mode":
		output.WriteString(ctx.PaneMode)
	case "window_flags":
		output.WriteString(ctx.WindowFlags)
	case "window_panes":
		fmt.Fprintf(output, "%d", ctx.WindowPanes)
	case "session_windows":
		fmt.Fprintf(output, "%d", ctx.SessionWindows)
	case "session_attached":
		fmt.Fprintf(output, "%d", ctx.SessionAttached)
	case "client_name":
		output.WriteString(ctx.ClientName)
	case "socket_path":
		output.WriteString(ctx.SocketPath)
	case "version":
		output.WriteString("3.3a")
	case "pid":
		fmt.Fprintf(output, "%d", ctx.ServerPID)
	case "buffer_name":
		output.WriteString(ctx.BufferName)
	case "buffer_size":
		fmt.Fprintf(output, "%d", ctx.BufferSize)
	case "buffer_sample":
		output.WriteString(ctx.BufferSample)
	default:
		// Unknown variable — expand to empty string.
	}
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ExpandVerbose expands format like Expand, but also returns a slice of
// "name -> value" lines for every #{name} reference encountered, in
// encounter order — used by display-message -v.
func ExpandVerbose(format string, ctx *Context) (string, []string) {
	var refs []string
	b := []byte(format)
	n := len(b)
	i := 0
	for i < n {
		if i+1 < n && b[i] == '#' && b[i+1] == '{' {
			start := i + 2
			if end, ok := findMatchingBrace(b, start); ok {
				expr := format[start:end]
				name := strings.TrimPrefix(expr, "?")
				if !strings.Contains(name, ",") {
					var val strings.Builder
					resolveVariable(name, ctx, &val)
					refs = append(refs, fmt.Sprintf("%s -> %s", name, val.String()))
				}
				i = end + 1
				continue
			}
		}
		i++
	}
	return Expand(format, ctx), refs
}
