package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/bouwkost/internal/cli"
	"github.com/alexanderramin/bouwkost/internal/config"
	"github.com/alexanderramin/bouwkost/internal/db"
	"github.com/alexanderramin/bouwkost/internal/repository"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine config path: env var or default ~/.bouwkost/config.yaml
	cfgPath := os.Getenv("BOUWKOST_CONFIG")
	if cfgPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		cfgPath = filepath.Join(home, ".bouwkost", "config.yaml")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// BOUWKOST_DB overrides the configured database location.
	dbPath := cfg.SQLite.Path
	if env := os.Getenv("BOUWKOST_DB"); env != "" {
		dbPath = env
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	app := &cli.App{
		Store:    repository.NewSQLiteScheduleStore(database),
		Defaults: cfg.Defaults,
		Out:      os.Stdout,
	}

	// Command telemetry goes to stderr when debugging or when output is
	// piped into another tool; interactive use stays quiet.
	if cfg.Log.Level == "debug" || !isatty.IsTerminal(os.Stdout.Fd()) {
		app.Observer = schedule.NewLogObserver(os.Stderr)
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
