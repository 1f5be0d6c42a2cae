// Package cli implements the freamon command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/blanksteg/freamon/common/version"
	"github.com/blanksteg/freamon/internal/freamon/hal"
	"github.com/blanksteg/freamon/internal/freamon/nlp"
	"github.com/blanksteg/freamon/internal/freamon/store"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "freamon",
	Short:         "freamon - a conversational bot that learns to talk from chat logs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(logLevel, logFormat)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("freamon", version.Info())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "freamon.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "snapshot database path (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(runCmd, trainCmd, generateCmd, snapshotsCmd, versionCmd)
}

// Execute runs the command line interface.
func Execute() error {
	return rootCmd.Execute()
}

// openStore opens the snapshot database named by --db, falling back to
// the config file's database setting, then the default.
func openStore() (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = databaseFromConfig()
	}
	return store.New(path)
}

// databaseFromConfig best-effort resolves the database path from the
// config file; commands that only touch the store work without one.
func databaseFromConfig() string {
	cfg, err := loadConfig()
	if err != nil {
		return "freamon.db"
	}
	return cfg.Database
}

// openBrain restores the most recent snapshot from the store, or
// returns a fresh brain when none exists.
func openBrain(ctx context.Context, db *store.Store, logger *slog.Logger) (*hal.Brain, error) {
	opts := hal.Options{
		Analyzer: nlp.NewAnalyzer(nlp.NewProseParser(), logger),
		Logger:   logger,
	}

	snap, err := db.LoadLatest(ctx)
	if errors.Is(err, store.ErrNoSnapshots) {
		logger.Info("no stored brain, starting fresh")
		return hal.New(opts), nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := hal.Restore(snap.Data)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w", snap.ID, err)
	}
	brain, err := raw.Attach(opts)
	if err != nil {
		return nil, fmt.Errorf("attach snapshot %s: %w", snap.ID, err)
	}

	logger.Info("restored brain", "snapshot", snap.ID, "quads", snap.Quads, "tokens", snap.Tokens)
	return brain, nil
}

// saveBrain snapshots the brain into the store.
func saveBrain(ctx context.Context, db *store.Store, brain *hal.Brain) (*store.Snapshot, error) {
	data, err := brain.Snapshot()
	if err != nil {
		return nil, err
	}
	stats := brain.Stats()
	return db.SaveSnapshot(ctx, stats.Quads, stats.Tokens, stats.PeopleNames, data)
}
