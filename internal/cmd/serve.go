package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"delegation-api/internal/database"
	"delegation-api/internal/delegation"
	"delegation-api/internal/realtime"
	"delegation-api/internal/routes"
	"delegation-api/internal/scheduler"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := database.InitDB(cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Scheduler.Enabled {
		sweeper := newOverdueSweeper(delegation.New(database.GetDB()), cfg.Scheduler.OverdueSpec)
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start overdue sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	slog.Info("server starting", "addr", cfg.Addr(), "driver", cfg.Database.Driver)
	return routes.SetupRoutes().Run(cfg.Addr())
}

// newOverdueSweeper pushes a task_overdue event to the executors of every task it marks.
func newOverdueSweeper(engine *delegation.Engine, spec string) *scheduler.OverdueSweeper {
	sweeper := scheduler.NewOverdueSweeper(engine, spec)
	sweeper.OnMarked = func(taskIDs []uint) {
		hub := realtime.GetHub()
		for _, id := range taskIDs {
			executors, err := engine.ExecutorIDs(context.Background(), id)
			if err != nil {
				slog.Warn("failed to load executors for overdue task", "task_id", id, "error", err)
				continue
			}
			hub.Notify(executors, realtime.Event{Type: realtime.TaskOverdue, TaskID: id})
		}
	}
	return sweeper
}
