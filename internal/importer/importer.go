// Package importer bulk-loads a directory of Alpha Progression CSV exports.
package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/ingest/alpha"
)

// Ingester turns one export into stored history. *alpha.Provider satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// State tracks imported files. A nil State imports everything every run.
type State interface {
	IsImported(ctx context.Context, relPath string, userID int, hash string) (bool, error)
	MarkImported(ctx context.Context, relPath string, userID int, hash string, sessions int) error
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsImported int
	SetsInserted     int64
	SetsDuplicated   int64
	UsageRecorded    int

	UnknownExercises []string
}

// Importer walks a directory for *.csv exports and feeds each to an Ingester.
type Importer struct {
	ingester Ingester
	state    State
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. In dry-run mode files are parsed and counted
// but nothing is written.
func New(ingester Ingester, state State, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{ingester: ingester, state: state, log: log, dryRun: dryRun}
}

// Import processes every export under dir for the given user. A file that
// fails to import is counted and logged; the walk continues.
func (imp *Importer) Import(ctx context.Context, dir string, userID int) (*Stats, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return &imp.stats, fmt.Errorf("walking %s: %w", dir, err)
	}
	slices.Sort(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		if err := imp.importFile(ctx, path, rel, userID); err != nil {
			imp.log.Warn("import failed", "file", rel, "error", err)
			imp.stats.FilesErrored++
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path, rel string, userID int) error {
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	if imp.state != nil {
		done, err := imp.state.IsImported(ctx, rel, userID, hash)
		if err != nil {
			return err
		}
		if done {
			imp.log.Debug("already imported", "file", rel)
			imp.stats.FilesSkipped++
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if imp.dryRun {
		sessions, err := alpha.Parse(f)
		if err != nil {
			return err
		}
		imp.stats.FilesProcessed++
		imp.stats.SessionsImported += len(sessions)
		for _, s := range sessions {
			imp.stats.SetsInserted += int64(len(alpha.Rows(userID, s)))
		}
		return nil
	}

	res, err := imp.ingester.Ingest(ctx, f, userID)
	if err != nil {
		return err
	}
	imp.stats.FilesProcessed++
	imp.stats.SessionsImported += res.SessionsReceived
	imp.stats.SetsInserted += res.SetsInserted
	imp.stats.SetsDuplicated += res.SetsSkipped
	imp.stats.UsageRecorded += res.UsageRecorded
	for _, name := range res.UnknownExercises {
		if !slices.Contains(imp.stats.UnknownExercises, name) {
			imp.stats.UnknownExercises = append(imp.stats.UnknownExercises, name)
		}
	}
	imp.log.Info("imported export", "file", rel, "sessions", res.SessionsReceived, "sets", res.SetsInserted)

	if imp.state != nil {
		return imp.state.MarkImported(ctx, rel, userID, hash, res.SessionsReceived)
	}
	return nil
}
