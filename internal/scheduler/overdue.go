// Package scheduler runs periodic maintenance jobs on robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"delegation-api/internal/logging"
	"delegation-api/internal/models"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
)

// OverdueMarker flips open tasks past their deadline to OVERDUE.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, today datatypes.Date) ([]uint, error)
}

// OverdueSweeper runs an OverdueMarker on a cron schedule.
type OverdueSweeper struct {
	cron    *cron.Cron
	marker  OverdueMarker
	spec    string
	timeout time.Duration
	jobID   cron.EntryID
	log     *slog.Logger

	// OnMarked, when set, receives the ids changed by each run.
	OnMarked func(taskIDs []uint)
	today    func() datatypes.Date
}

// NewOverdueSweeper creates a sweeper for a standard 5-field cron spec.
func NewOverdueSweeper(marker OverdueMarker, spec string) *OverdueSweeper {
	return &OverdueSweeper{
		cron:    cron.New(),
		marker:  marker,
		spec:    spec,
		timeout: time.Minute,
		log:     logging.Component("scheduler"),
		today:   models.Today,
	}
}

// Start schedules the sweep and starts the cron loop.
func (s *OverdueSweeper) Start() error {
	var err error
	s.jobID, err = s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunNow(ctx); err != nil {
			s.log.Error("overdue sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling overdue sweep: %w", err)
	}

	s.cron.Start()
	s.log.Info("overdue sweep scheduled", "spec", s.spec)
	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish.
func (s *OverdueSweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("overdue sweep stopped")
}

// RunNow performs one sweep immediately.
func (s *OverdueSweeper) RunNow(ctx context.Context) ([]uint, error) {
	changed, err := s.marker.MarkOverdue(ctx, s.today())
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 && s.OnMarked != nil {
		s.OnMarked(changed)
	}
	return changed, nil
}
