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

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/discomfort"
	"github.com/claude/repcoach/internal/ingest/alpha"
	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/claude/repcoach/internal/server"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/variety"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Compile-time checks: *storage.DB backs every consumer.
var (
	_ coach.DataSource = (*storage.DB)(nil)
	_ variety.Store    = (*storage.DB)(nil)
	_ server.Store     = (*storage.DB)(nil)
	_ alpha.Store      = (*storage.DB)(nil)
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepCoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Load the exercise catalog (idempotent upsert by ID)
	catalog, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Error("failed to load exercise catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	n, err := db.UpsertExercises(ctx, catalog)
	if err != nil {
		log.Error("failed to store exercise catalog", "error", err)
		os.Exit(1)
	}
	log.Info("exercise catalog loaded", "exercises", len(catalog), "upserted", n)

	// Coaching engines
	policy := cfg.Policy.CoachPolicy()
	cache := variety.NewTTLCache(cfg.Policy.PreferencesTTL, cfg.Policy.UsageTTL, nil)
	selector := variety.NewSelector(db, cache, cfg.Policy.VarietyLookback(), nil)
	svc := coach.New(db, selector, discomfort.NewDetector(nil), policy, log)

	// Create providers
	alphaProvider := alpha.NewProvider(db, selector, log)

	// Create server
	srv := server.New(db, svc, alphaProvider, cfg.Auth.APIKey, log)
	srv.SetIngestLimit(cfg.Server.IngestPerMinute)

	mcpSrv := repmcp.New(repmcp.Local{Service: svc}, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return repmcp.WithUserID(ctx, server.UserID(r))
		}),
	))

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

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

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

	httpSrv := &http.Server{Handler: srv}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
