// Package command parses tmux CLI command lines, as sent over the
// control-mode wire protocol, into structured Command values the daemon
// can dispatch on.
package command

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies which tmux verb a Command represents.
type Kind int

const (
	KindSplitWindow Kind = iota
	KindSendKeys
	KindCapturePane
	KindListPanes
	KindListWindows
	KindListSessions
	KindNewWindow
	KindSelectWindow
	KindSelectPane
	KindKillPane
	KindResizePane
	KindResizeWindow
	KindRefreshClient
	KindDisplayMessage
	KindHasSession
	KindListCommands
	KindKillWindow
	KindKillSession
	KindRenameWindow
	KindRenameSession
	KindNewSession
	KindShowOptions
	KindShowWindowOptions
	KindAttachSession
	KindDetachClient
	KindSwitchClient
	KindListClients
	KindShowBuffer
	KindSetBuffer
	KindDeleteBuffer
	KindListBuffers
	KindPasteBuffer
	KindMovePane
	KindMoveWindow
	KindCopyMode
	KindSetOption
	KindSelectLayout
	KindBreakPane
	KindKillServer
	KindWaitFor
	KindPipePane
	KindDisplayPopup
	KindRunShell
	KindServerInfo
)

// Command is a parsed tmux CLI command with its flags and arguments.
// Fields not meaningful for a given Kind are left at their zero value.
type Command struct {
	Kind Kind

	Target  string
	HasTarget bool

	// split-window / new-window / new-session
	Horizontal     bool
	Vertical       bool
	Size           string
	PrintAndFormat string
	HasPrint       bool
	Cwd            string
	Env            []string
	Name           string
	WindowName     string
	Detached       bool

	// send-keys
	Literal bool
	Hex     bool
	Keys    []string

	// capture-pane
	Print        bool
	Escape       bool
	OctalEscape  bool
	StartLine    int64
	HasStartLine bool
	EndLine      int64
	HasEndLine   bool

	// list-panes / list-windows
	All     bool
	Session bool
	Format  string
	HasFormat bool

	// select-pane
	Style string
	Title string

	// resize-pane / resize-window
	Width     uint64
	HasWidth  bool
	Height    uint64
	HasHeight bool
	Zoom      bool

	// refresh-client
	Flags        string
	AdjustPane   string
	Subscription string

	// display-message
	Verbose bool

	// rename-window / rename-session
	NewName string

	// show-options / show-window-options
	Global     bool
	ValueOnly  bool
	Quiet      bool
	OptionName string
	HasOption  bool

	// buffers
	BufferName    string
	HasBufferName bool
	Data          string
	HasData       bool
	Append        bool
	DeleteAfter   bool
	Bracketed     bool

	// move-pane / move-window / break-pane
	Src    string
	HasSrc bool
	Dst    string
	HasDst bool
	Before bool

	// copy-mode
	Quit bool

	// set-option
	Value    string
	HasValue bool

	// select-layout
	LayoutName string

	// break-pane
	Detach bool
	Source string

	// wait-for
	Signal  bool
	Channel string

	// pipe-pane
	PipeCommand string
	Output      bool
	Input       bool
	Toggle      bool

	// run-shell
	Background bool
	ShellCommand string
	HasShellCommand bool
	Delay        string
	HasDelay     bool
}

// ParseCommand parses a single tmux CLI command line into a Command. The
// line is split with shell-style word splitting so quoted arguments
// (e.g. `send-keys -t %5 "echo hello" Enter`) are handled correctly.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, errors.New("empty command")
	}

	words, err := splitShellWords(line)
	if err != nil {
		return Command{}, errors.Wrap(err, "split command line")
	}
	if len(words) == 0 {
		return Command{}, errors.New("empty command after splitting")
	}

	name := words[0]
	args := words[1:]

	switch name {
	case "split-window", "splitw":
		return parseSplitWindow(args)
	case "send-keys", "send":
		return parseSendKeys(args)
	case "capture-pane", "capturep":
		return parseCapturePane(args)
	case "list-panes", "lsp":
		return parseListPanes(args)
	case "list-windows", "lsw":
		return parseListWindows(args)
	case "list-sessions", "ls":
		return parseListSessions(args)
	case "new-window", "neww":
		return parseNewWindow(args)
	case "select-window", "selectw":
		return parseSelectWindow(args)
	case "select-pane", "selectp":
		return parseSelectPane(args)
	case "kill-pane", "killp":
		return parseKillPane(args)
	case "resize-pane", "resizep":
		return parseResizePane(args)
	case "resize-window", "resizew":
		return parseResizeWindow(args)
	case "refresh-client", "refresh":
		return parseRefreshClient(args)
	case "display-message", "display":
		return parseDisplayMessage(args)
	case "has-session", "has":
		return parseHasSession(args)
	case "list-commands", "lscm":
		return Command{Kind: KindListCommands}, nil
	case "kill-window", "killw":
		return parseKillWindow(args)
	case "kill-session", "kills":
		return parseKillSession(args)
	case "rename-window", "renamew":
		return parseRenameWindow(args)
	case "rename-session", "rename":
		return parseRenameSession(args)
	case "new-session", "new":
		return parseNewSession(args)
	case "show-options", "show", "show-option":
		return parseShowOptions(args)
	case "show-window-options", "showw", "show-window-option":
		return parseShowWindowOptions(args)
	case "attach-session", "attach":
		return parseAttachSession(args)
	case "detach-client", "detach":
		return parseDetachClient(args)
	case "switch-client", "switchc":
		return parseSwitchClient(args)
	case "list-clients", "lsc":
		return parseListClients(args)
	case "show-buffer", "showb":
		return parseShowBuffer(args)
	case "set-buffer", "setb":
		return parseSetBuffer(args)
	case "delete-buffer", "deleteb":
		return parseDeleteBuffer(args)
	case "list-buffers", "lsb":
		return parseListBuffers(args)
	case "paste-buffer", "pasteb":
		return parsePasteBuffer(args)
	case "move-pane", "movep", "join-pane", "joinp":
		return parseMovePane(args)
	case "move-window", "movew":
		return parseMoveWindow(args)
	case "copy-mode":
		return parseCopyMode(args)
	case "set-option", "set":
		return parseSetOption(args)
	case "select-layout", "selectl":
		return parseSelectLayout(args)
	case "break-pane", "breakp":
		return parseBreakPane(args)
	case "kill-server":
		return Command{Kind: KindKillServer}, nil
	case "wait-for", "wait":
		return parseWaitFor(args)
	case "pipe-pane", "pipep":
		return parsePipePane(args)
	case "display-popup", "popup", "display-menu", "menu":
		return parseDisplayPopup(args)
	case "run-shell", "run":
		return parseRunShell(args)
	case "server-info", "info":
		return Command{Kind: KindServerInfo}, nil
	default:
		return Command{}, errors.Errorf("unknown tmux command: %q", name)
	}
}

// argIter walks a slice of words, handing out flag values on demand.
type argIter struct {
	words []string
	pos   int
}

func newArgIter(words []string) *argIter { return &argIter{words: words} }

func (a *argIter) next() (string, bool) {
	if a.pos >= len(a.words) {
		return "", false
	}
	w := a.words[a.pos]
	a.pos++
	return w, true
}

func (a *argIter) rest() []string {
	r := a.words[a.pos:]
	a.pos = len(a.words)
	return r
}

func takeFlagValue(flag string, it *argIter) (string, error) {
	v, ok := it.next()
	if !ok {
		return "", errors.Errorf("flag %s requires a value", flag)
	}
	return v, nil
}

func parseUint(flag, val string) (uint64, error) {
	trimmed := strings.TrimSuffix(val, "%")
	n, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, errors.Errorf("%s: invalid number: %q", flag, val)
	}
	return n, nil
}

func parseInt64(flag, val string) (int64, error) {
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, errors.Errorf("%s: invalid number: %q", flag, val)
	}
	return n, nil
}

const defaultPrintFormat = "#{session_name}:#{window_index}.#{pane_index}"

func parseSplitWindow(args []string) (Command, error) {
	cmd := Command{Kind: KindSplitWindow}
	var printInfo bool
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-h":
			cmd.Horizontal = true
		case "-v":
			cmd.Vertical = true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-l", "-p":
			v, err := takeFlagValue(arg, it)
			if err != nil {
				return Command{}, err
			}
			cmd.Size = v
		case "-P":
			printInfo = true
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		case "-d", "-b", "-f", "-Z", "-I":
			// accepted, no-op
		case "-e":
			v, err := takeFlagValue("-e", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Env = append(cmd.Env, v)
		case "-c":
			v, err := takeFlagValue("-c", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Cwd = v
		default:
			return Command{}, errors.Errorf("split-window: unexpected argument: %q", arg)
		}
	}
	if printInfo {
		format := cmd.Format
		if !cmd.HasFormat {
			format = defaultPrintFormat
		}
		cmd.PrintAndFormat, cmd.HasPrint = format, true
	}
	return cmd, nil
}

func parseSendKeys(args []string) (Command, error) {
	cmd := Command{Kind: KindSendKeys}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-l":
			cmd.Literal = true
		case "-H":
			cmd.Hex = true
		default:
			cmd.Keys = append(cmd.Keys, arg)
			cmd.Keys = append(cmd.Keys, it.rest()...)
		}
	}
	return cmd, nil
}

func parseCapturePane(args []string) (Command, error) {
	cmd := Command{Kind: KindCapturePane}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-p":
			cmd.Print = true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-e":
			cmd.Escape = true
		case "-C":
			cmd.OctalEscape = true
		case "-S":
			v, err := takeFlagValue("-S", it)
			if err != nil {
				return Command{}, err
			}
			n, err := parseInt64("capture-pane -S", v)
			if err != nil {
				return Command{}, err
			}
			cmd.StartLine, cmd.HasStartLine = n, true
		case "-E":
			v, err := takeFlagValue("-E", it)
			if err != nil {
				return Command{}, err
			}
			n, err := parseInt64("capture-pane -E", v)
			if err != nil {
				return Command{}, err
			}
			cmd.EndLine, cmd.HasEndLine = n, true
		default:
			return Command{}, errors.Errorf("capture-pane: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseListPanes(args []string) (Command, error) {
	cmd := Command{Kind: KindListPanes}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-a":
			cmd.All = true
		case "-s":
			cmd.Session = true
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("list-panes: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseListWindows(args []string) (Command, error) {
	cmd := Command{Kind: KindListWindows}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-a":
			cmd.All = true
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("list-windows: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseListSessions(args []string) (Command, error) {
	cmd := Command{Kind: KindListSessions}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		default:
			return Command{}, errors.Errorf("list-sessions: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseNewWindow(args []string) (Command, error) {
	cmd := Command{Kind: KindNewWindow}
	var printInfo bool
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-n":
			v, err := takeFlagValue("-n", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Name = v
		case "-P":
			printInfo = true
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		case "-d", "-S", "-a", "-b", "-k":
			// accepted, no-op
		case "-e":
			v, err := takeFlagValue("-e", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Env = append(cmd.Env, v)
		case "-c":
			v, err := takeFlagValue("-c", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Cwd = v
		default:
			return Command{}, errors.Errorf("new-window: unexpected argument: %q", arg)
		}
	}
	if printInfo {
		format := cmd.Format
		if !cmd.HasFormat {
			format = defaultPrintFormat
		}
		cmd.PrintAndFormat, cmd.HasPrint = format, true
	}
	return cmd, nil
}

func parseSelectWindow(args []string) (Command, error) {
	cmd := Command{Kind: KindSelectWindow}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("select-window: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseSelectPane(args []string) (Command, error) {
	cmd := Command{Kind: KindSelectPane}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-T":
			v, err := takeFlagValue("-T", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Title = v
		case "-P":
			v, _ := takeFlagValue("-P", it)
			cmd.Style = v
		case "-e", "-d", "-D", "-l", "-M", "-m", "-Z", "-U", "-R", "-L":
			// accepted, no-op
		default:
			return Command{}, errors.Errorf("select-pane: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseKillPane(args []string) (Command, error) {
	cmd := Command{Kind: KindKillPane}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("kill-pane: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseResizePane(args []string) (Command, error) {
	cmd := Command{Kind: KindResizePane}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-Z":
			cmd.Zoom = true
		case "-x":
			v, err := takeFlagValue("-x", it)
			if err != nil {
				return Command{}, err
			}
			n, err := parseUint("resize-pane -x", v)
			if err != nil {
				return Command{}, err
			}
			cmd.Width, cmd.HasWidth = n, true
		case "-y":
			v, err := takeFlagValue("-y", it)
			if err != nil {
				return Command{}, err
			}
			n, err := parseUint("resize-pane -y", v)
			if err != nil {
				return Command{}, err
			}
			cmd.Height, cmd.HasHeight = n, true
		case "-D", "-U", "-L", "-R", "-M":
			// accepted, no-op
		default:
			return Command{}, errors.Errorf("resize-pane: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseResizeWindow(args []string) (Command, error) {
	cmd := Command{Kind: KindResizeWindow}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-x":
			v, err := takeFlagValue("-x", it)
			if err != nil {
				return Command{}, err
			}
			n, err := parseUint("resize-window -x", v)
			if err != nil {
				return Command{}, err
			}
			cmd.Width, cmd.HasWidth = n, true
		case "-y":
			v, err := takeFlagValue("-y", it)
			if err != nil {
				return Command{}, err
			}
			n, err := parseUint("resize-window -y", v)
			if err != nil {
				return Command{}, err
			}
			cmd.Height, cmd.HasHeight = n, true
		default:
			return Command{}, errors.Errorf("resize-window: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseRefreshClient(args []string) (Command, error) {
	cmd := Command{Kind: KindRefreshClient}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-C":
			v, err := takeFlagValue("-C", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Size = v
		case "-f":
			v, err := takeFlagValue("-f", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Flags = v
		case "-A":
			v, err := takeFlagValue("-A", it)
			if err != nil {
				return Command{}, err
			}
			cmd.AdjustPane = v
		case "-B":
			v, err := takeFlagValue("-B", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Subscription = v
		default:
			return Command{}, errors.Errorf("refresh-client: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseDisplayMessage(args []string) (Command, error) {
	cmd := Command{Kind: KindDisplayMessage}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-p":
			cmd.Print = true
		case "-v":
			cmd.Verbose = true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-a", "-I", "-N":
			// accepted, no-op
		case "-c":
			if _, err := takeFlagValue("-c", it); err != nil {
				return Command{}, err
			}
		default:
			cmd.Format, cmd.HasFormat = arg, true
		}
	}
	return cmd, nil
}

func parseHasSession(args []string) (Command, error) {
	cmd := Command{Kind: KindHasSession}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("has-session: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseKillWindow(args []string) (Command, error) {
	cmd := Command{Kind: KindKillWindow}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("kill-window: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseKillSession(args []string) (Command, error) {
	cmd := Command{Kind: KindKillSession}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("kill-session: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseRenameWindow(args []string) (Command, error) {
	cmd := Command{Kind: KindRenameWindow}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			cmd.NewName = arg
		}
	}
	if cmd.NewName == "" {
		return Command{}, errors.New("rename-window: missing new name")
	}
	return cmd, nil
}

func parseRenameSession(args []string) (Command, error) {
	cmd := Command{Kind: KindRenameSession}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			cmd.NewName = arg
		}
	}
	if cmd.NewName == "" {
		return Command{}, errors.New("rename-session: missing new name")
	}
	return cmd, nil
}

func parseNewSession(args []string) (Command, error) {
	cmd := Command{Kind: KindNewSession}
	var printInfo bool
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-s":
			v, err := takeFlagValue("-s", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Name = v
		case "-n":
			v, err := takeFlagValue("-n", it)
			if err != nil {
				return Command{}, err
			}
			cmd.WindowName = v
		case "-d":
			cmd.Detached = true
		case "-P":
			printInfo = true
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		case "-A", "-D", "-E", "-X":
			// accepted, no-op
		case "-t", "-x", "-y", "-f":
			if _, err := takeFlagValue(arg, it); err != nil {
				return Command{}, err
			}
		case "-e":
			v, err := takeFlagValue("-e", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Env = append(cmd.Env, v)
		case "-c":
			v, err := takeFlagValue("-c", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Cwd = v
		default:
			return Command{}, errors.Errorf("new-session: unexpected argument: %q", arg)
		}
	}
	if printInfo {
		format := cmd.Format
		if !cmd.HasFormat {
			format = defaultPrintFormat
		}
		cmd.PrintAndFormat, cmd.HasPrint = format, true
	}
	return cmd, nil
}

func isCombinedFlagSet(arg, allowed string) bool {
	if !strings.HasPrefix(arg, "-") || len(arg) <= 1 {
		return false
	}
	for _, c := range arg[1:] {
		if !strings.ContainsRune(allowed, c) {
			return false
		}
	}
	return true
}

func parseShowOptions(args []string) (Command, error) {
	cmd := Command{Kind: KindShowOptions}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		if isCombinedFlagSet(arg, "gvqs") {
			for _, ch := range arg[1:] {
				switch ch {
				case 'g', 's':
					cmd.Global = true
				case 'v':
					cmd.ValueOnly = true
				case 'q':
					cmd.Quiet = true
				}
			}
		} else {
			cmd.OptionName, cmd.HasOption = arg, true
		}
	}
	return cmd, nil
}

func parseShowWindowOptions(args []string) (Command, error) {
	cmd := Command{Kind: KindShowWindowOptions}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		if isCombinedFlagSet(arg, "gvq") {
			for _, ch := range arg[1:] {
				switch ch {
				case 'g':
					cmd.Global = true
				case 'v':
					cmd.ValueOnly = true
				case 'q':
					cmd.Quiet = true
				}
			}
		} else {
			cmd.OptionName, cmd.HasOption = arg, true
		}
	}
	return cmd, nil
}

func parseAttachSession(args []string) (Command, error) {
	cmd := Command{Kind: KindAttachSession}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("attach-session: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseDetachClient(args []string) (Command, error) {
	cmd := Command{Kind: KindDetachClient}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t", "-s":
			if _, err := takeFlagValue(arg, it); err != nil {
				return Command{}, err
			}
		default:
			return Command{}, errors.Errorf("detach-client: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseSwitchClient(args []string) (Command, error) {
	cmd := Command{Kind: KindSwitchClient}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("switch-client: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseListClients(args []string) (Command, error) {
	cmd := Command{Kind: KindListClients}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		default:
			return Command{}, errors.Errorf("list-clients: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseShowBuffer(args []string) (Command, error) {
	cmd := Command{Kind: KindShowBuffer}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-b":
			v, err := takeFlagValue("-b", it)
			if err != nil {
				return Command{}, err
			}
			cmd.BufferName, cmd.HasBufferName = v, true
		default:
			return Command{}, errors.Errorf("show-buffer: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseSetBuffer(args []string) (Command, error) {
	cmd := Command{Kind: KindSetBuffer}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-b":
			v, err := takeFlagValue("-b", it)
			if err != nil {
				return Command{}, err
			}
			cmd.BufferName, cmd.HasBufferName = v, true
		case "-a":
			cmd.Append = true
		case "-w", "-n", "-t":
			_, _ = takeFlagValue(arg, it)
		case "--":
			rest := it.rest()
			if len(rest) > 0 {
				cmd.Data, cmd.HasData = strings.Join(rest, " "), true
			}
			return cmd, nil
		default:
			rest := it.rest()
			data := arg
			for _, r := range rest {
				data += " " + r
			}
			cmd.Data, cmd.HasData = data, true
			return cmd, nil
		}
	}
	return cmd, nil
}

func parseDeleteBuffer(args []string) (Command, error) {
	cmd := Command{Kind: KindDeleteBuffer}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-b":
			v, err := takeFlagValue("-b", it)
			if err != nil {
				return Command{}, err
			}
			cmd.BufferName, cmd.HasBufferName = v, true
		default:
			return Command{}, errors.Errorf("delete-buffer: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseListBuffers(args []string) (Command, error) {
	cmd := Command{Kind: KindListBuffers}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-F":
			v, err := takeFlagValue("-F", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Format, cmd.HasFormat = v, true
		case "-f", "-O":
			_, _ = takeFlagValue(arg, it)
		case "-r":
			// accepted, no-op
		default:
			return Command{}, errors.Errorf("list-buffers: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parsePasteBuffer(args []string) (Command, error) {
	cmd := Command{Kind: KindPasteBuffer}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-b":
			v, err := takeFlagValue("-b", it)
			if err != nil {
				return Command{}, err
			}
			cmd.BufferName, cmd.HasBufferName = v, true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-d":
			cmd.DeleteAfter = true
		case "-p":
			cmd.Bracketed = true
		case "-r":
			// accepted, no-op
		case "-s":
			_, _ = takeFlagValue("-s", it)
		default:
			return Command{}, errors.Errorf("paste-buffer: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseMovePane(args []string) (Command, error) {
	cmd := Command{Kind: KindMovePane}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-s":
			v, err := takeFlagValue("-s", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Src, cmd.HasSrc = v, true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Dst, cmd.HasDst = v, true
		case "-h":
			cmd.Horizontal = true
		case "-v":
			// vertical is default, no-op
		case "-b":
			cmd.Before = true
		case "-d", "-f":
			// accepted, no-op
		case "-l", "-p":
			_, _ = takeFlagValue(arg, it)
		default:
			return Command{}, errors.Errorf("move-pane: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseMoveWindow(args []string) (Command, error) {
	cmd := Command{Kind: KindMoveWindow}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-s":
			v, err := takeFlagValue("-s", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Src, cmd.HasSrc = v, true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Dst, cmd.HasDst = v, true
		case "-a", "-b", "-d", "-k", "-r":
			// accepted, no-op
		default:
			return Command{}, errors.Errorf("move-window: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseCopyMode(args []string) (Command, error) {
	cmd := Command{Kind: KindCopyMode}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-q":
			cmd.Quit = true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-s":
			if _, err := takeFlagValue("-s", it); err != nil {
				return Command{}, err
			}
		case "-d", "-e", "-H", "-M", "-S", "-u":
			// accepted, no-op
		default:
			return Command{}, errors.Errorf("copy-mode: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseSetOption(args []string) (Command, error) {
	cmd := Command{Kind: KindSetOption}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-g", "-s", "-w", "-p", "-q", "-o", "-u", "-U", "-a", "-F":
			// scope flags, always treated as no-op
		default:
			if !cmd.HasOption {
				cmd.OptionName, cmd.HasOption = arg, true
			} else if !cmd.HasValue {
				cmd.Value, cmd.HasValue = arg, true
			}
		}
	}
	return cmd, nil
}

func parseSelectLayout(args []string) (Command, error) {
	cmd := Command{Kind: KindSelectLayout}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-E", "-n", "-o", "-p":
			// accepted, no-op
		default:
			if cmd.LayoutName == "" {
				cmd.LayoutName = arg
			}
		}
	}
	return cmd, nil
}

func parseBreakPane(args []string) (Command, error) {
	cmd := Command{Kind: KindBreakPane}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-d":
			cmd.Detach = true
		case "-s":
			v, err := takeFlagValue("-s", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Source, cmd.HasSrc = v, true
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-P":
			// accepted, no-op
		case "-F", "-n":
			if _, err := takeFlagValue(arg, it); err != nil {
				return Command{}, err
			}
		default:
			return Command{}, errors.Errorf("break-pane: unexpected argument: %q", arg)
		}
	}
	return cmd, nil
}

func parseWaitFor(args []string) (Command, error) {
	cmd := Command{Kind: KindWaitFor}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-S":
			cmd.Signal = true
		case "-L", "-U":
			// accepted, treated like signal
			cmd.Signal = true
		default:
			cmd.Channel = arg
		}
	}
	return cmd, nil
}

func parsePipePane(args []string) (Command, error) {
	cmd := Command{Kind: KindPipePane}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-O":
			cmd.Output = true
		case "-I":
			cmd.Input = true
		case "-o":
			cmd.Toggle = true
		default:
			cmd.PipeCommand = arg
		}
	}
	if !cmd.Input && !cmd.Output {
		cmd.Output = true
	}
	return cmd, nil
}

func parseDisplayPopup(args []string) (Command, error) {
	cmd := Command{Kind: KindDisplayPopup}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-b", "-c", "-d", "-e", "-h", "-w", "-x", "-y", "-s", "-S", "-T", "-H":
			if _, err := takeFlagValue(arg, it); err != nil {
				return Command{}, err
			}
		case "-B", "-C", "-E", "-k", "-M", "-N", "-O":
			// accepted, no-op
		default:
			// remaining args are the popup/menu command — ignore
		}
	}
	return cmd, nil
}

func parseRunShell(args []string) (Command, error) {
	cmd := Command{Kind: KindRunShell}
	it := newArgIter(args)
	for {
		arg, ok := it.next()
		if !ok {
			break
		}
		switch arg {
		case "-b":
			cmd.Background = true
		case "-C":
			// tmux command mode — ignore
		case "-t":
			v, err := takeFlagValue("-t", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Target, cmd.HasTarget = v, true
		case "-d":
			v, err := takeFlagValue("-d", it)
			if err != nil {
				return Command{}, err
			}
			cmd.Delay, cmd.HasDelay = v, true
		default:
			if !cmd.HasShellCommand {
				cmd.ShellCommand, cmd.HasShellCommand = arg, true
			}
		}
	}
	return cmd, nil
}

// splitShellWords splits a command line the way a POSIX shell would,
// honoring single quotes, double quotes, and backslash escapes.
func splitShellWords(line string) ([]string, error) {
	var words []string
	var cur strings.Builder
	haveWord := false

	const (
		stateNormal = iota
		stateSingle
		stateDouble
	)
	state := stateNormal

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch state {
		case stateNormal:
			switch {
			case c == '\'':
				state = stateSingle
				haveWord = true
			case c == '"':
				state = stateDouble
				haveWord = true
			case c == '\\':
				if i+1 >= len(line) {
					return nil, errors.New("trailing backslash")
				}
				i++
				cur.WriteByte(line[i])
				haveWord = true
			case c == ' ' || c == '\t':
				if haveWord {
					words = append(words, cur.String())
					cur.Reset()
					haveWord = false
				}
			default:
				cur.WriteByte(c)
				haveWord = true
			}
		case stateSingle:
			if c == '\'' {
				state = stateNormal
			} else {
				cur.WriteByte(c)
			}
		case stateDouble:
			switch c {
			case '"':
				state = stateNormal
			case '\\':
				if i+1 < len(line) && (line[i+1] == '"' || line[i+1] == '\\' || line[i+1] == '$' || line[i+1] == '`') {
					i++
					cur.WriteByte(line[i])
				} else {
					cur.WriteByte(c)
				}
			default:
				cur.WriteByte(c)
			}
		}
	}

	switch state {
	case stateSingle:
		return nil, errors.New("unterminated single quote")
	case stateDouble:
		return nil, errors.New("unterminated double quote")
	}

	if haveWord {
		words = append(words, cur.String())
	}
	return words, nil
}
