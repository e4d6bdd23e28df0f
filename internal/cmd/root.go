package cmd

import (
	"delegation-api/internal/auth"
	"delegation-api/internal/config"
	"delegation-api/internal/logging"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "delegation-api",
	Short: "Task delegation and aggregation service",
	Long: `delegation-api serves the task delegation API: units, plans, tasks
delegated down the unit hierarchy, action checklists and the audit trail
of every change.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig reads configuration and installs the process-wide logger and JWT settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	auth.Configure(cfg.Auth)
	return cfg, nil
}
