// Command tmuxenv is a minimal `env`-compatible shim for platforms
// with no native env(1), so launchers that do
// `env KEY=VAL command args...` to set variables before exec keep
// working under the tmux compat layer.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	clearEnv := false
	var unsetVars []string
	var setVars [][2]string
	cmdStart := -1

	i := 0
	for i < len(args) {
		arg := args[i]

		if arg == "--" {
			i++
			if i < len(args) {
				cmdStart = i
			}
			break
		}
		if arg == "-i" || arg == "-" {
			clearEnv = true
			i++
			continue
		}
		if arg == "-u" {
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "env: option '-u' requires an argument")
				return 125
			}
			unsetVars = append(unsetVars, args[i])
			i++
			continue
		}
		if strings.HasPrefix(arg, "-u") {
			unsetVars = append(unsetVars, arg[2:])
			i++
			continue
		}
		if strings.HasPrefix(arg, "-") && !strings.Contains(arg, "=") {
			fmt.Fprintf(os.Stderr, "env: invalid option '%s'\n", arg)
			return 125
		}
		break
	}

	if cmdStart < 0 {
		for i < len(args) {
			if k, v, ok := strings.Cut(args[i], "="); ok {
				setVars = append(setVars, [2]string{k, v})
				i++
			} else {
				cmdStart = i
				break
			}
		}
	}

	if cmdStart < 0 {
		if clearEnv {
			for _, kv := range setVars {
				fmt.Printf("%s=%s\n", kv[0], kv[1])
			}
			return 0
		}
		for _, kv := range setVars {
			os.Setenv(kv[0], kv[1])
		}
		for _, k := range unsetVars {
			os.Unsetenv(k)
		}
		for _, kv := range os.Environ() {
			fmt.Println(kv)
		}
		return 0
	}

	program := args[cmdStart]
	cmdArgs := args[cmdStart+1:]

	cmd := exec.Command(program, cmdArgs...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	env := os.Environ()
	if clearEnv {
		env = nil
	}
	if len(unsetVars) > 0 {
		env = removeVars(env, unsetVars)
	}
	for _, kv := range setVars {
		env = append(env, kv[0]+"="+kv[1])
	}
	cmd.Env = env

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "env: '%s': %v\n", program, err)
		return 127
	}
	return 0
}

func removeVars(env []string, names []string) []string {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := env[:0]
	for _, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && drop[k] {
			continue
		}
		out = append(out, kv)
	}
	return out
}
