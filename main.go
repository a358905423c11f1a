package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pipeline/cmd"
	"pipeline/internal/db"
	"pipeline/internal/ui"
	"pipeline/internal/views"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if config.ShowVersion {
		return
	}

	// Open database
	database, err := db.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()
	if config.SeedDemo {
		if err := seedIfEmpty(ctx, database); err != nil {
			log.Printf("failed to seed demo data: %v", err)
		}
	}

	store, err := openViewStore(config, database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open saved views: %v\n", err)
		os.Exit(1)
	}

	app, err := ui.New(database, store, ui.Options{
		PageSize:  config.PageSize,
		PrefsPath: config.PrefsPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create and run Bubble Tea app
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

func seedIfEmpty(ctx context.Context, database *sql.DB) error {
	empty, err := db.IsEmpty(ctx, database)
	if err != nil || !empty {
		return err
	}
	return db.SeedDemo(ctx, database, time.Now())
}

func openViewStore(config *cmd.Config, database *sql.DB) (*views.Store, error) {
	var persister views.Persister
	switch config.ViewsBackend {
	case cmd.BackendFile:
		fp := views.NewFilePersister(config.ViewsFile)
		fmt.Fprintf(os.Stderr, "ℹ  Saved views stored in %s\n", fp.Path())
		persister = fp
	case cmd.BackendMemory:
		fmt.Fprintln(os.Stderr, "ℹ  Saved views kept in memory for this session only")
		persister = views.NewMemoryPersister()
	default:
		persister = db.NewViewPersister(database)
	}
	return views.NewStore(persister)
}
