// Command tmuxccctl is an admin/debug CLI for tmuxccd: it dials the
// same control socket cmd/tmux does and forwards argv straight
// through as one command, plus a couple of operator-only subcommands
// (idmap dump, server-info) that have no tmux CLI equivalent.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/g960059/tmuxccd/internal/config"
	"github.com/g960059/tmuxccd/internal/idmap"
	"github.com/g960059/tmuxccd/internal/shimclient"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	socketPath := os.Getenv(shimclient.SocketEnvVar)
	cacheDir := ""
	workspace := "default"

	var rest []string
	i := 0
	for i < len(args) {
		switch args[i] {
		case "-socket":
			i++
			if i < len(args) {
				socketPath = args[i]
				i++
			}
		case "-cache-dir":
			i++
			if i < len(args) {
				cacheDir = args[i]
				i++
			}
		case "-workspace":
			i++
			if i < len(args) {
				workspace = args[i]
				i++
			}
		default:
			rest = args[i:]
			i = len(args)
		}
	}

	if socketPath == "" {
		socketPath = config.DefaultConfig().SocketPath
	}
	if cacheDir == "" {
		cacheDir = config.DefaultConfig().CacheDir
	}

	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: tmuxccctl [-socket PATH] [-cache-dir DIR] [-workspace NAME] <command...>")
		return 1
	}

	switch rest[0] {
	case "idmap":
		if len(rest) >= 2 && rest[1] == "dump" {
			return idmapDump(cacheDir, workspace)
		}
		fmt.Fprintln(os.Stderr, "usage: tmuxccctl idmap dump")
		return 1
	case "server-info":
		return sendAndPrint(socketPath, "server-info")
	default:
		return sendAndPrint(socketPath, shimclient.QuoteArgs(rest))
	}
}

func idmapDump(cacheDir, workspace string) int {
	path := idmap.SnapshotPath(cacheDir, workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmuxccctl: read snapshot %s: %v\n", path, err)
		return 1
	}
	os.Stdout.Write(data) //nolint:errcheck
	return 0
}

func sendAndPrint(socketPath, commandText string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := shimclient.Dial(ctx, socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmuxccctl: %v\n", err)
		return 1
	}
	defer client.Close() //nolint:errcheck

	resp, err := client.Exchange(commandText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmuxccctl: %v\n", err)
		return 1
	}
	if resp.IsError {
		fmt.Fprintln(os.Stderr, strings.TrimRight(resp.Body, "\n"))
		return 1
	}
	fmt.Print(resp.Body)
	return 0
}
