package cmd

import (
	"log/slog"

	"delegation-api/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema to the configured database and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := database.InitDB(cfg.Database); err != nil {
			return err
		}
		slog.Info("schema migrated", "driver", cfg.Database.Driver)
		return nil
	},
}
