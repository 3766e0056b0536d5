// Command tmux is the argv-compatible shim placed on $PATH ahead of a
// real tmux binary. It speaks the tmux CLI surface but forwards every
// command to tmuxccd over WEZTERM_TMUX_CC instead of running a real
// tmux server, and falls through to a real tmux binary when that
// socket isn't set.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/g960059/tmuxccd/internal/shimclient"
)

// action is what the shim should do after parsing argv.
type action struct {
	kind        actionKind
	commandText string
}

type actionKind int

const (
	actionVersion actionKind = iota
	actionSessionNoOp
	actionCommand
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	act := parseArgs(args)

	switch act.kind {
	case actionVersion:
		fmt.Println("tmux 3.3a (tmuxccd-compat)")
		return 0

	case actionSessionNoOp:
		// Already "inside" a session as far as the compat layer is
		// concerned — new-session/attach-session are no-ops.
		return 0

	default:
		socketPath := os.Getenv(shimclient.SocketEnvVar)
		if socketPath == "" {
			return execRealTmux(args)
		}

		resp, err := execute(socketPath, act.commandText)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if resp.IsError {
			if msg := strings.TrimRight(resp.Body, "\n"); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			return 1
		}
		fmt.Print(resp.Body)
		return 0
	}
}

// parseArgs reconstructs the shim's action from argv. Connection-mode
// flags (-C, -CC, -L, -S, -f) precede the verb and are stripped; the
// remaining words are re-quoted into one command line tmuxccd's parser
// can split back into the same tokens.
func parseArgs(args []string) action {
	if len(args) <= 1 {
		return action{kind: actionSessionNoOp}
	}
	rest := args[1:]

	i := 0
	for i < len(rest) {
		switch rest[i] {
		case "-V":
			return action{kind: actionVersion}
		case "-C", "-CC":
			i++
		case "-L", "-S", "-f":
			i += 2
		default:
			goto done
		}
	}
done:
	rest = rest[i:]
	if len(rest) == 0 {
		return action{kind: actionSessionNoOp}
	}

	switch rest[0] {
	case "new-session", "new", "attach-session", "attach", "a":
		return action{kind: actionSessionNoOp}
	}

	return action{kind: actionCommand, commandText: shimclient.QuoteArgs(rest)}
}

func execute(socketPath, commandText string) (shimclient.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := shimclient.Dial(ctx, socketPath)
	if err != nil {
		return shimclient.Response{}, fmt.Errorf("failed to connect to tmuxccd at %s: %w", socketPath, err)
	}
	defer client.Close() //nolint:errcheck

	_ = client.SetDeadline(time.Now().Add(5 * time.Second))
	return client.Exchange(commandText)
}

// execRealTmux searches PATH for a tmux binary that isn't this shim
// and execs it, for the common case of this binary having been
// installed ahead of a real tmux without a CC socket configured.
func execRealTmux(args []string) int {
	self, _ := os.Executable()

	for _, dir := range strings.Split(os.Getenv("PATH"), string(os.PathListSeparator)) {
		candidate := filepath.Join(dir, "tmux")
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if self != "" && sameFile(candidate, self) {
			continue
		}
		cmd := exec.Command(candidate, args[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := cmd.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return exitErr.ExitCode()
			}
			return 1
		}
		return 0
	}

	fmt.Fprintln(os.Stderr, "WEZTERM_TMUX_CC is not set and no real tmux binary found on PATH")
	return 1
}

func sameFile(a, b string) bool {
	absA, err1 := filepath.Abs(a)
	absB, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && absA == absB
}
