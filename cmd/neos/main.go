package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chalu/neos/internal/config"
	"github.com/chalu/neos/internal/database"
	"github.com/chalu/neos/internal/extract"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "neos",
		Short: "neos — explore near-Earth objects and their close approaches",
		Long:  "neos loads the NASA near-Earth object and close-approach feeds, links them, and answers lookups and multi-criteria queries over the close approaches.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		inspectCmd(),
		queryCmd(),
		statsCmd(),
		serveCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadDatabase reads both feeds and links them into a queryable database.
func loadDatabase(logger *slog.Logger) (*database.Database, error) {
	loader := extract.NewLoader(logger)

	neos, err := loader.LoadNEOs(cfg.Data.NEOPath)
	if err != nil {
		return nil, err
	}
	approaches, err := loader.LoadApproaches(cfg.Data.CADPath)
	if err != nil {
		return nil, err
	}

	db := database.New(neos, approaches,
		database.WithLinkStrategy(database.LinkStrategy(cfg.Link.Strategy)),
		database.WithLogger(logger),
		database.WithProgress(func(linked int) {
			logger.Debug("linking progress", "linked", linked)
		}),
	)
	return db, nil
}
