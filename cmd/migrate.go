package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bjj-tournament/internal/config"
	"bjj-tournament/internal/logger"
	"bjj-tournament/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back the embedded database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := store.Migrate(cfg.DatabaseURL, args[0]); err != nil {
			return fmt.Errorf("migrate %s: %w", args[0], err)
		}
		logger.New(cfg.LogLevel).Info("migrations done", "direction", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
