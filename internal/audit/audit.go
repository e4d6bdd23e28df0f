// Package audit is the append-only log of task status and deadline transitions.
package audit

import (
	"context"
	"time"

	"delegation-api/internal/directory"
	"delegation-api/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Log appends and queries task events. Events are never updated.
type Log struct {
	db    *gorm.DB
	staff *directory.Store
	now   func() time.Time
}

// New creates a Log on db.
func New(db *gorm.DB) *Log {
	return &Log{db: db, staff: directory.New(db), now: time.Now}
}

// WithTx returns a copy bound to tx.
func (l *Log) WithTx(tx *gorm.DB) *Log {
	return &Log{db: tx, staff: l.staff.WithTx(tx), now: l.now}
}

// Entry is a transition to record. Nil fields stay null; a nil ActorID marks a system event.
type Entry struct {
	TaskID       uint
	Note         string
	PrevStatus   *models.TaskStatus
	NextStatus   *models.TaskStatus
	PrevDeadline *datatypes.Date
	NextDeadline *datatypes.Date
	ActorID      *uint
}

// EventView is an event with its author resolved.
type EventView struct {
	ID           uint                 `json:"id"`
	TaskID       uint                 `json:"taskId"`
	Note         string               `json:"note"`
	PrevStatus   *models.TaskStatus   `json:"prevStatus"`
	NextStatus   *models.TaskStatus   `json:"nextStatus"`
	PrevDeadline string               `json:"prevDeadline,omitempty"`
	NextDeadline string               `json:"nextDeadline,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	CreatedBy    *models.StaffSummary `json:"createdBy"`
}

// Append records e, stamped with the current time.
func (l *Log) Append(ctx context.Context, e Entry) (*models.TaskEvent, error) {
	event := models.TaskEvent{
		TaskID:       e.TaskID,
		Note:         e.Note,
		PrevStatus:   e.PrevStatus,
		NextStatus:   e.NextStatus,
		PrevDeadline: e.PrevDeadline,
		NextDeadline: e.NextDeadline,
		CreatedAt:    l.now(),
		CreatedBy:    e.ActorID,
	}
	if err := l.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Query returns the events of a task, newest first.
func (l *Log) Query(ctx context.Context, taskID uint) ([]EventView, error) {
	var events []models.TaskEvent
	if err := l.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at desc, id desc").
		Find(&events).Error; err != nil {
		return nil, err
	}

	var actorIDs []uint
	for _, e := range events {
		if e.CreatedBy != nil {
			actorIDs = append(actorIDs, *e.CreatedBy)
		}
	}
	staff, err := l.staff.GetAllStaff(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	actors := make(map[uint]models.StaffSummary, len(staff))
	for _, st := range staff {
		actors[st.ID] = st.Summary()
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		v := EventView{
			ID:           e.ID,
			TaskID:       e.TaskID,
			Note:         e.Note,
			PrevStatus:   e.PrevStatus,
			NextStatus:   e.NextStatus,
			PrevDeadline: models.FormatDate(e.PrevDeadline),
			NextDeadline: models.FormatDate(e.NextDeadline),
			CreatedAt:    e.CreatedAt,
		}
		if e.CreatedBy != nil {
			if a, ok := actors[*e.CreatedBy]; ok {
				v.CreatedBy = &a
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// DeleteByTask removes the events of a deleted task.
func (l *Log) DeleteByTask(ctx context.Context, taskID uint) error {
	return l.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.TaskEvent{}).Error
}
