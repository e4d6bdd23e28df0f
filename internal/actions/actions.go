// Package actions manages the checklist items of a task and the progress they imply.
package actions

import (
	"context"
	"errors"
	"log/slog"

	"delegation-api/internal/apperr"
	"delegation-api/internal/directory"
	"delegation-api/internal/logging"
	"delegation-api/internal/models"

	"gorm.io/gorm"
)

// Engine owns actions and their executor links.
type Engine struct {
	db    *gorm.DB
	staff *directory.Store
	log   *slog.Logger
}

// New creates an Engine on db.
func New(db *gorm.DB) *Engine {
	return &Engine{db: db, staff: directory.New(db), log: logging.Component("actions")}
}

// WithTx returns a copy bound to tx.
func (e *Engine) WithTx(tx *gorm.DB) *Engine {
	return &Engine{db: tx, staff: e.staff.WithTx(tx), log: e.log}
}

// CreateActionInput describes a new checklist item.
type CreateActionInput struct {
	TaskID      uint   `json:"taskId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" binding:"omitempty,isodate"`
	ExecutorIDs []uint `json:"executors"`
}

// ActionView is an action with its executors resolved.
type ActionView struct {
	ID          uint                  `json:"id"`
	TaskID      uint                  `json:"taskId"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Deadline    string                `json:"deadline,omitempty"`
	Status      models.TaskStatus     `json:"status"`
	Executors   []models.StaffSummary `json:"executors"`
}

// Create stores an action on an existing task. Unknown executor ids are skipped.
func (e *Engine) Create(ctx context.Context, in CreateActionInput) (*ActionView, error) {
	deadline, err := models.DatePtr(in.Deadline)
	if err != nil {
		return nil, apperr.Validation("deadline", "expected yyyy-MM-dd")
	}

	var action models.Action
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).Where("id = ?", in.TaskID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("task", in.TaskID)
		}

		action = models.Action{
			TaskID:      in.TaskID,
			Name:        in.Name,
			Description: in.Description,
			Deadline:    deadline,
			Status:      models.StatusPending,
		}
		if err := tx.Create(&action).Error; err != nil {
			return err
		}

		staff, err := e.staff.WithTx(tx).GetAllStaff(ctx, in.ExecutorIDs)
		if err != nil {
			return err
		}
		if len(staff) == 0 {
			return nil
		}
		links := make([]models.ActionExecutor, 0, len(staff))
		for _, st := range staff {
			links = append(links, models.ActionExecutor{ActionID: action.ID, StaffID: st.ID})
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("action created", "action_id", action.ID, "task_id", action.TaskID)
	views, err := e.views(ctx, []models.Action{action})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes an action and its executor links. Missing ids are a no-op.
func (e *Engine) Delete(ctx context.Context, actionID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("action_id = ?", actionID).Delete(&models.ActionExecutor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Action{}, actionID).Error
	})
}

// DeleteByTask removes every action of a task with their executor links.
func (e *Engine) DeleteByTask(ctx context.Context, taskID uint) error {
	db := e.db.WithContext(ctx)
	ids := db.Model(&models.Action{}).Select("id").Where("task_id = ?", taskID)
	if err := db.Where("action_id IN (?)", ids).Delete(&models.ActionExecutor{}).Error; err != nil {
		return err
	}
	return db.Where("task_id = ?", taskID).Delete(&models.Action{}).Error
}

// ListByTask returns the actions of a task in creation order.
func (e *Engine) ListByTask(ctx context.Context, taskID uint) ([]ActionView, error) {
	var list []models.Action
	if err := e.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return e.views(ctx, list)
}

// ListByExecutor returns the actions a staff member executes, by deadline.
func (e *Engine) ListByExecutor(ctx context.Context, staffID uint) ([]ActionView, error) {
	var list []models.Action
	err := e.db.WithContext(ctx).
		Joins("JOIN action_executors ON action_executors.action_id = actions.id").
		Where("action_executors.staff_id = ?", staffID).
		Order("actions.deadline asc, actions.id asc").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return e.views(ctx, list)
}

// UpdateStatus sets the status of an action on behalf of staffID, who must be one of
// its executors. No audit event is written for actions.
func (e *Engine) UpdateStatus(ctx context.Context, actionID, staffID uint, status models.TaskStatus) (*ActionView, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status", "unknown status")
	}

	var action models.Action
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&action, actionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("action", actionID)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.ActionExecutor{}).
			Where("action_id = ? AND staff_id = ?", actionID, staffID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.Unauthorized(staffID, "not an executor of this action")
		}

		action.Status = status
		return tx.Model(&action).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	views, err := e.views(ctx, []models.Action{action})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Progress returns completed/total over the actions of a task. ok is false when the task
// has no actions.
func (e *Engine) Progress(ctx context.Context, taskID uint) (float64, bool, error) {
	var row struct {
		Total     int64
		Completed int64
	}
	err := e.db.WithContext(ctx).Model(&models.Action{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed", models.StatusCompleted).
		Where("task_id = ?", taskID).
		Scan(&row).Error
	if err != nil {
		return 0, false, err
	}
	if row.Total == 0 {
		return 0, false, nil
	}
	return float64(row.Completed) / float64(row.Total), true, nil
}

func (e *Engine) views(ctx context.Context, list []models.Action) ([]ActionView, error) {
	views := make([]ActionView, 0, len(list))
	if len(list) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	var links []models.ActionExecutor
	if err := e.db.WithContext(ctx).Where("action_id IN ?", ids).Order("id asc").Find(&links).Error; err != nil {
		return nil, err
	}
	var staffIDs []uint
	for _, l := range links {
		staffIDs = append(staffIDs, l.StaffID)
	}
	staff, err := e.staff.GetAllStaff(ctx, staffIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.StaffSummary, len(staff))
	for _, st := range staff {
		byID[st.ID] = st.Summary()
	}
	executors := make(map[uint][]models.StaffSummary, len(list))
	for _, l := range links {
		if s, ok := byID[l.StaffID]; ok {
			executors[l.ActionID] = append(executors[l.ActionID], s)
		}
	}

	for _, a := range list {
		ex := executors[a.ID]
		if ex == nil {
			ex = []models.StaffSummary{}
		}
		views = append(views, ActionView{
			ID:          a.ID,
			TaskID:      a.TaskID,
			Name:        a.Name,
			Description: a.Description,
			Deadline:    models.FormatDate(a.Deadline),
			Status:      a.Status,
			Executors:   ex,
		})
	}
	return views, nil
}
