package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-moodify/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  "Create the Moodify tables and indexes in the database named by DATABASE_URL. Safe to run repeatedly.",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, stop := signalContext()
	defer stop()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	logger.Info().Msg("schema applied")
	return nil
}
