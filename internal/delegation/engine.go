// Package delegation implements the task graph: creation, delegation chains, recurrence
// grouping and the deadline/status workflow with its audit trail.
package delegation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"delegation-api/internal/actions"
	"delegation-api/internal/apperr"
	"delegation-api/internal/assembler"
	"delegation-api/internal/audit"
	"delegation-api/internal/directory"
	"delegation-api/internal/logging"
	"delegation-api/internal/models"
	"delegation-api/internal/records"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Engine coordinates tasks with their actions, comments, executors and events.
type Engine struct {
	db       *gorm.DB
	actions  *actions.Engine
	audit    *audit.Log
	comments *records.Comments
	staff    *directory.Store
	log      *slog.Logger
	newKey   func() string
}

// New creates an Engine on db.
func New(db *gorm.DB) *Engine {
	return &Engine{
		db:       db,
		actions:  actions.New(db),
		audit:    audit.New(db),
		comments: records.NewComments(db),
		staff:    directory.New(db),
		log:      logging.Component("delegation"),
		newKey:   uuid.NewString,
	}
}

// CreateTaskInput describes one delegation step.
type CreateTaskInput struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	Month            string `json:"month" binding:"omitempty,yearmonth"`
	InitialStartDate string `json:"initialStartDate" binding:"omitempty,isodate"`
	InitialDeadline  string `json:"initialDeadline" binding:"omitempty,isodate"`
	PlanID           uint   `json:"planId"`
	ParentTaskID     *uint  `json:"parentTaskId"`
	AssignerID       uint   `json:"assignerId"`
	AssigneeID       uint   `json:"assigneeId"`
	// GroupKey joins an existing recurrence group; empty starts a new one.
	GroupKey    string `json:"uuid"`
	ExecutorIDs []uint `json:"executors"`
}

func (e *Engine) assemble(ctx context.Context) *assembler.Assembler {
	return assembler.New(ctx, e.db)
}

func findTask(tx *gorm.DB, id uint) (*models.Task, error) {
	var t models.Task
	if err := tx.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func mustFindTask(tx *gorm.DB, id uint) (*models.Task, error) {
	t, err := findTask(tx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task", id)
	}
	return t, nil
}

// CreateTask stores a new task in PENDING with zero progress and its initial executors.
func (e *Engine) CreateTask(ctx context.Context, in CreateTaskInput) (*assembler.TaskView, error) {
	startDate, err := models.DatePtr(in.InitialStartDate)
	if err != nil {
		return nil, apperr.Validation("initialStartDate", "expected yyyy-MM-dd")
	}
	deadline, err := models.DatePtr(in.InitialDeadline)
	if err != nil {
		return nil, apperr.Validation("initialDeadline", "expected yyyy-MM-dd")
	}

	groupKey := in.GroupKey
	if groupKey == "" {
		groupKey = e.newKey()
	}
	var current *datatypes.Date
	if deadline != nil {
		d := *deadline
		current = &d
	}

	task := models.Task{
		GroupKey:         groupKey,
		Name:             in.Name,
		Description:      in.Description,
		Month:            in.Month,
		InitialStartDate: startDate,
		InitialDeadline:  deadline,
		CurrentDeadline:  current,
		PlanID:           in.PlanID,
		AssignerID:       in.AssignerID,
		AssigneeID:       in.AssigneeID,
		Status:           models.StatusPending,
		Progress:         0,
	}
	if in.ParentTaskID != nil && *in.ParentTaskID != 0 {
		pid := *in.ParentTaskID
		task.ParentTaskID = &pid
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if task.ParentTaskID != nil {
			parent, err := findTask(tx, *task.ParentTaskID)
			if err != nil {
				return err
			}
			if parent == nil {
				return apperr.Validation("parentTaskId", "parent task does not exist")
			}
			var siblings int64
			if err := tx.Model(&models.Task{}).Where("parent_task_id = ?", parent.ID).Count(&siblings).Error; err != nil {
				return err
			}
			if siblings > 0 {
				e.log.Warn("parent task already delegated; chain reads follow the first child",
					"parent_task_id", parent.ID, "existing_children", siblings)
			}
		}

		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if len(in.ExecutorIDs) == 0 {
			return nil
		}
		links := make([]models.TaskExecutor, 0, len(in.ExecutorIDs))
		for _, id := range in.ExecutorIDs {
			links = append(links, models.TaskExecutor{TaskID: task.ID, StaffID: id})
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("task created", "task_id", task.ID, "group_key", task.GroupKey, "assignee_id", task.AssigneeID)
	return e.assemble(ctx).Task(&task)
}

// GetTask returns the stored task or a NotFoundError.
func (e *Engine) GetTask(ctx context.Context, taskID uint) (*models.Task, error) {
	return mustFindTask(e.db.WithContext(ctx), taskID)
}

// GetAssignmentChain returns the whole delegation chain containing taskID, rooted at its
// top-level task with each level's child nested below it.
func (e *Engine) GetAssignmentChain(ctx context.Context, taskID uint) (*assembler.TaskView, error) {
	db := e.db.WithContext(ctx)
	current, err := mustFindTask(db, taskID)
	if err != nil {
		return nil, err
	}

	visited := map[uint]bool{current.ID: true}
	for current.ParentTaskID != nil && *current.ParentTaskID != 0 {
		parent, err := findTask(db, *current.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		current = parent
		if visited[current.ID] {
			e.log.Warn("parent links form a cycle", "task_id", taskID, "root_task_id", current.ID)
			break
		}
		visited[current.ID] = true
	}

	asm := e.assemble(ctx)
	root, err := asm.Task(current)
	if err != nil {
		return nil, err
	}

	inChain := map[uint]bool{current.ID: true}
	level := root
	for {
		var children []models.Task
		if err := db.Where("parent_task_id = ?", level.ID).Order("id asc").Find(&children).Error; err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		if len(children) > 1 {
			e.log.Warn("task has more than one child; following the first",
				"task_id", level.ID, "children", len(children))
		}
		child := &children[0]
		if inChain[child.ID] {
			break
		}
		inChain[child.ID] = true

		view, err := asm.Task(child)
		if err != nil {
			return nil, err
		}
		level.ChildTask = view
		level = view
	}

	e.log.Debug("assignment chain assembled", "task_id", taskID, "root_task_id", root.ID, "lookups", asm.Stats())
	return root, nil
}

// GetTasksByPlan groups every task of a plan by recurrence.
func (e *Engine) GetTasksByPlan(ctx context.Context, planID uint) ([]assembler.TaskGroup, error) {
	var tasks []models.Task
	if err := e.db.WithContext(ctx).Where("plan_id = ?", planID).Order("id asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return e.assemble(ctx).Groups(tasks)
}

// GetTasksByPlanAndUnit groups the tasks of a plan that are the first step unitID owns:
// assigned to the unit and not delegated to it by itself.
func (e *Engine) GetTasksByPlanAndUnit(ctx context.Context, planID, unitID uint) ([]assembler.TaskGroup, error) {
	db := e.db.WithContext(ctx)
	ownParents := e.db.Model(&models.Task{}).Select("id").Where("assignee_id = ?", unitID)

	var tasks []models.Task
	err := db.Where("plan_id = ? AND assignee_id = ?", planID, unitID).
		Where(db.Where("parent_task_id IS NULL").Or("parent_task_id NOT IN (?)", ownParents)).
		Order("id asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return e.assemble(ctx).Groups(tasks)
}

// UpdateTaskProgress stores a manual progress value clamped to [0,1]. The value is only
// visible while the task has no actions.
func (e *Engine) UpdateTaskProgress(ctx context.Context, taskID uint, value float64) (*assembler.TaskView, error) {
	if math.IsNaN(value) {
		return nil, apperr.Validation("progress", "must be a number")
	}
	value = math.Max(0, math.Min(1, value))

	db := e.db.WithContext(ctx)
	task, err := mustFindTask(db, taskID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(task).Update("progress", value).Error; err != nil {
		return nil, err
	}
	task.Progress = value
	return e.assemble(ctx).Task(task)
}

// ExtendDeadline moves the current deadline and records the change. The initial deadline
// is never modified. actorID 0 records a system change.
func (e *Engine) ExtendDeadline(ctx context.Context, taskID uint, newDeadline datatypes.Date, reason string, actorID uint) (*assembler.TaskView, error) {
	var task *models.Task
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if task, err = mustFindTask(tx, taskID); err != nil {
			return err
		}
		prev := task.CurrentDeadline
		next := newDeadline
		if err := tx.Model(task).Update("current_deadline", &next).Error; err != nil {
			return err
		}
		task.CurrentDeadline = &next

		_, err = e.audit.WithTx(tx).Append(ctx, audit.Entry{
			TaskID:       taskID,
			Note:         reason,
			PrevDeadline: prev,
			NextDeadline: &next,
			ActorID:      actor(actorID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("deadline extended", "task_id", taskID, "deadline", models.FormatDate(task.CurrentDeadline), "actor_id", actorID)
	return e.assemble(ctx).Task(task)
}

// UpdateTaskStatus moves a task to status and records the transition. The first move to
// IN_PROGRESS stamps the actual start date; COMPLETED stamps the end date.
func (e *Engine) UpdateTaskStatus(ctx context.Context, taskID uint, status models.TaskStatus, note string, actorID uint) (*assembler.TaskView, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status", "unknown status")
	}

	var task *models.Task
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if task, err = mustFindTask(tx, taskID); err != nil {
			return err
		}
		if task.Status == status {
			return nil
		}
		return e.transition(ctx, tx, task, status, note, actor(actorID))
	})
	if err != nil {
		return nil, err
	}
	return e.assemble(ctx).Task(task)
}

func (e *Engine) transition(ctx context.Context, tx *gorm.DB, task *models.Task, status models.TaskStatus, note string, actorID *uint) error {
	prev := task.Status
	updates := map[string]any{"status": status}
	today := models.Today()
	if status == models.StatusInProgress && task.ActualStartDate == nil {
		task.ActualStartDate = &today
		updates["actual_start_date"] = &today
	}
	if status == models.StatusCompleted {
		task.EndDate = &today
		updates["end_date"] = &today
	}
	if err := tx.Model(task).Updates(updates).Error; err != nil {
		return err
	}
	task.Status = status

	_, err := e.audit.WithTx(tx).Append(ctx, audit.Entry{
		TaskID:     task.ID,
		Note:       note,
		PrevStatus: prev.Ptr(),
		NextStatus: status.Ptr(),
		ActorID:    actorID,
	})
	return err
}

// MarkOverdue moves every PENDING or IN_PROGRESS task whose current deadline is before
// today to OVERDUE, recording a system event for each. It returns the ids it changed.
func (e *Engine) MarkOverdue(ctx context.Context, today datatypes.Date) ([]uint, error) {
	var changed []uint
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open []models.Task
		if err := tx.Where("status IN ? AND current_deadline IS NOT NULL",
			[]models.TaskStatus{models.StatusPending, models.StatusInProgress}).
			Order("id asc").
			Find(&open).Error; err != nil {
			return err
		}
		for i := range open {
			t := &open[i]
			if !time.Time(*t.CurrentDeadline).Before(time.Time(today)) {
				continue
			}
			if err := e.transition(ctx, tx, t, models.StatusOverdue, "deadline passed", nil); err != nil {
				return err
			}
			changed = append(changed, t.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		e.log.Info("tasks marked overdue", "count", len(changed))
	}
	return changed, nil
}

// AddExecutorsToTask links staff to a task. Existing links and unknown staff ids are skipped.
func (e *Engine) AddExecutorsToTask(ctx context.Context, taskID uint, staffIDs []uint) (*assembler.TaskView, error) {
	var task *models.Task
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if task, err = mustFindTask(tx, taskID); err != nil {
			return err
		}

		var current []models.TaskExecutor
		if err := tx.Where("task_id = ?", taskID).Find(&current).Error; err != nil {
			return err
		}
		linked := make(map[uint]bool, len(current))
		for _, l := range current {
			linked[l.StaffID] = true
		}

		var candidates []uint
		for _, id := range staffIDs {
			if !linked[id] {
				candidates = append(candidates, id)
			}
		}
		staff, err := e.staff.WithTx(tx).GetAllStaff(ctx, candidates)
		if err != nil {
			return err
		}
		if len(staff) == 0 {
			return nil
		}
		links := make([]models.TaskExecutor, 0, len(staff))
		for _, st := range staff {
			links = append(links, models.TaskExecutor{TaskID: taskID, StaffID: st.ID})
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return nil, err
	}
	return e.assemble(ctx).Task(task)
}

// ExecutorIDs returns the staff linked to a task in link order.
func (e *Engine) ExecutorIDs(ctx context.Context, taskID uint) ([]uint, error) {
	var ids []uint
	err := e.db.WithContext(ctx).Model(&models.TaskExecutor{}).
		Where("task_id = ?", taskID).
		Order("id asc").
		Pluck("staff_id", &ids).Error
	return ids, err
}

// DeleteTask removes a task with its actions, comments, executor links and events.
// Deleting a missing task is a no-op.
func (e *Engine) DeleteTask(ctx context.Context, taskID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findTask(tx, taskID)
		if err != nil || task == nil {
			return err
		}
		if err := e.actions.WithTx(tx).DeleteByTask(ctx, taskID); err != nil {
			return err
		}
		if err := e.comments.WithTx(tx).DeleteByTask(ctx, taskID); err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskExecutor{}).Error; err != nil {
			return err
		}
		if err := e.audit.WithTx(tx).DeleteByTask(ctx, taskID); err != nil {
			return err
		}
		if err := tx.Delete(task).Error; err != nil {
			return err
		}
		e.log.Info("task deleted", "task_id", taskID)
		return nil
	})
}

// TasksByExecutor returns the tasks a staff member executes, by current deadline.
func (e *Engine) TasksByExecutor(ctx context.Context, staffID uint) ([]assembler.TaskView, error) {
	var tasks []models.Task
	err := e.db.WithContext(ctx).
		Joins("JOIN task_executors ON task_executors.task_id = tasks.id").
		Where("task_executors.staff_id = ?", staffID).
		Order("tasks.current_deadline asc, tasks.id asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return e.assemble(ctx).Tasks(tasks)
}

// GetTaskEvents returns the audit trail of a task, newest first.
func (e *Engine) GetTaskEvents(ctx context.Context, taskID uint) ([]audit.EventView, error) {
	return e.audit.Query(ctx, taskID)
}

func actor(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
