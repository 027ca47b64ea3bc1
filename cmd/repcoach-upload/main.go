package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/repcoach/internal/importer"
	"github.com/claude/repcoach/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RepCoach server URL (e.g. https://repcoach.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("REPCOACH_AUTH_API_KEY"), "ingest API key (default $REPCOACH_AUTH_API_KEY)")
	exportPath := flag.String("path", "", "directory of Alpha Progression CSV exports")
	userID := flag.Int("user", 1, "user ID to upload for (ignored by servers on Tailscale)")
	dryRun := flag.Bool("dry-run", false, "parse exports but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repcoach-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repcoach-upload -server <URL> -path <export dir> [-api-key KEY] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if (*serverURL == "" || *apiKey == "") && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportPath)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".repcoach-upload")

	state, err := importer.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	ctx := context.Background()
	client := upload.NewClient(*serverURL, *apiKey)

	if *dryRun {
		log.Info("DRY RUN mode: files will be parsed but not sent")
	} else {
		id, err := client.WhoAmI(ctx)
		if err != nil {
			log.Error("server unreachable", "server", *serverURL, "error", err)
			os.Exit(1)
		}
		log.Info("uploading as", "login", id.Login, "name", id.DisplayName)
	}

	// Run upload
	imp := importer.New(client, state, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath, *userID)
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesProcessed)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sessions:         %d\n", stats.SessionsImported)
	fmt.Printf("  Sets inserted:    %d\n", stats.SetsInserted)
	fmt.Printf("  Sets skipped:     %d\n", stats.SetsDuplicated)

	if len(stats.UnknownExercises) > 0 {
		fmt.Printf("\n  Exercises not in the catalog:\n")
		for _, m := range stats.UnknownExercises {
			fmt.Printf("    - %s\n", m)
		}
	}
	fmt.Println()
}
