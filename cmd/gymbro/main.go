package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/gymbro/internal/config"
	"github.com/claude/gymbro/internal/live"
	"github.com/claude/gymbro/internal/mcp"
	"github.com/claude/gymbro/internal/server"
	"github.com/claude/gymbro/internal/session"
	"github.com/claude/gymbro/internal/storage"
	"github.com/claude/gymbro/internal/workout"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("Gymbro starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Wire the data layer and the session registry
	bus := live.New(log)
	svc := workout.NewService(repo, bus, cfg.Training.LoadStep, log)
	sessions := session.NewRegistry(svc, svc, log)

	srv := server.New(svc, sessions, cfg.Auth.APIKey, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcp.New(svc, sessions, Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	// Event streams only end with their request context, so cancel it on shutdown
	streamCtx, stopStreams := context.WithCancel(context.Background())
	httpSrv := &http.Server{
		Handler:     srv,
		BaseContext: func(net.Listener) context.Context { return streamCtx },
	}
	httpSrv.RegisterOnShutdown(stopStreams)

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// openRepository connects the configured storage driver. Postgres gets its
// migrations applied first; the SQLite schema is created on open.
func openRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (workout.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := storage.OpenLocal(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite storage opened", "path", cfg.Storage.SQLitePath)
		return db, func() { db.Close() }, nil
	default:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, cfg.Storage.Migrations); err != nil {
			return nil, nil, err
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected")
		return db, db.Close, nil
	}
}
