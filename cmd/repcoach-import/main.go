package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/importer"
	"github.com/claude/repcoach/internal/ingest/alpha"
	"github.com/claude/repcoach/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "directory of Alpha Progression CSV exports (required)")
	user := flag.String("user", "1", "user ID or Tailscale login to import for")
	stateDir := flag.String("state", "", "directory for the import state database (default ~/.repcoach)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repcoach-import -config config.yaml -path /path/to/exports [-user login] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify export directory exists
	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID, err := resolveUser(ctx, db, *user)
	if err != nil {
		log.Error("failed to resolve user", "user", *user, "error", err)
		os.Exit(1)
	}

	// Open state database
	dir := *stateDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(home, ".repcoach")
	}
	state, err := importer.OpenStateDB(dir)
	if err != nil {
		log.Error("failed to open state database", "dir", dir, "error", err)
		os.Exit(1)
	}
	defer func() { _ = state.Close() }()

	// Run import
	start := time.Now()
	imp := importer.New(alpha.NewProvider(db, db, log), state, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath, userID)
	if !*dryRun {
		logImport(ctx, db, log, userID, stats, err, time.Since(start))
	}
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete", "user_id", userID)
}

// resolveUser accepts a numeric user ID or a login, creating the user for an
// unseen login.
func resolveUser(ctx context.Context, db *storage.DB, user string) (int, error) {
	if id, err := strconv.Atoi(user); err == nil {
		if id <= 0 {
			return 0, fmt.Errorf("user ID must be positive, got %d", id)
		}
		return id, nil
	}
	return db.GetOrCreateUser(ctx, user, user)
}

func logImport(ctx context.Context, db *storage.DB, log *slog.Logger, userID int, stats *importer.Stats, importErr error, took time.Duration) {
	ms := int(took.Milliseconds())
	entry := storage.ImportLog{UserID: userID, Source: "alpha-cli", Status: "success", DurationMs: &ms}
	if stats != nil {
		entry.SessionsReceived = stats.SessionsImported
		entry.SetsInserted = stats.SetsInserted
		entry.SetsSkipped = stats.SetsDuplicated
		if stats.FilesErrored > 0 {
			entry.Status = "partial"
		}
	}
	if importErr != nil {
		msg := importErr.Error()
		entry.Status = "error"
		entry.ErrorMessage = &msg
	}
	if _, err := db.InsertImportLog(ctx, entry); err != nil {
		log.Warn("failed to log import", "error", err)
	}
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_imported", stats.SessionsImported,
		"sets_inserted", stats.SetsInserted,
		"sets_duplicated", stats.SetsDuplicated,
		"usage_recorded", stats.UsageRecorded,
	)
	if len(stats.UnknownExercises) > 0 {
		log.Info("exercises not in the catalog (no variety tracking)", "exercises", stats.UnknownExercises)
	}
}
