package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/g960059/tmuxccd/internal/audit"
	"github.com/g960059/tmuxccd/internal/config"
	"github.com/g960059/tmuxccd/internal/daemon"
	"github.com/g960059/tmuxccd/internal/hostmux/memmux"
)

func main() {
	cfg := config.DefaultConfig()
	configPath := flag.String("config", "", "path to a YAML config overlay")
	flag.StringVar(&cfg.SocketPath, "socket", cfg.SocketPath, "UDS path for the CC server")
	flag.StringVar(&cfg.AuditDB, "audit-db", cfg.AuditDB, "SQLite path for the command audit log")
	flag.StringVar(&cfg.DefaultWorkspace, "workspace", cfg.DefaultWorkspace, "workspace new connections attach to")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatal(logger, err)
		}
		cfg = loaded
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	auditLog, err := audit.Open(ctx, cfg.AuditDB)
	if err != nil {
		fatal(logger, err)
	}
	defer auditLog.Close() //nolint:errcheck

	mux := memmux.New()
	mux.AddWorkspace(cfg.DefaultWorkspace)

	srv := daemon.NewDaemon(cfg, mux, auditLog)

	if *configPath != "" {
		stop, err := config.Watch(*configPath, func(next config.Config) {
			logger.Info("config reloaded", "path", *configPath)
			srv.UpdateConfig(next)
		})
		if err != nil {
			logger.Warn("config watch failed", "err", err)
		} else {
			defer stop() //nolint:errcheck
		}
	}

	logger.Info("tmuxccd starting", "socket", cfg.SocketPath, "workspace", cfg.DefaultWorkspace)
	if err := srv.Serve(ctx); err != nil && err != context.Canceled {
		fatal(logger, err)
	}
}

func fatal(logger *slog.Logger, err error) {
	logger.Error("fatal", "err", err)
	_, _ = fmt.Fprintf(os.Stderr, "tmuxccd: %v\n", err)
	os.Exit(1)
}
