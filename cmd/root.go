package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "batchplant",
	Short:        "Batch plant production orchestration",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file (optional)")
	rootCmd.AddCommand(serveCmd, migrateCmd, newSimulateCmd())
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// setup loads the configuration and the process logger.
func setup() (Config, *slog.Logger, func() error, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return Config{}, nil, nil, err
	}
	logger, cleanup := SetupLogger(cfg.Log.File, level)
	slog.SetDefault(logger)
	return cfg, logger, cleanup, nil
}

func openDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Error("closing database failed", "error", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func joinCleanup(err error, cleanup func() error) error {
	return errors.Join(err, cleanup())
}
