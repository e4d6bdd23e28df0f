// Package assembler turns stored tasks into response views: references resolved to
// shallow summaries, executors attached and progress computed from the checklist.
package assembler

import (
	"context"
	"errors"
	"sort"
	"time"

	"delegation-api/internal/actions"
	"delegation-api/internal/cache"
	"delegation-api/internal/directory"
	"delegation-api/internal/models"

	"gorm.io/gorm"
)

// TaskRef identifies a parent task without expanding it.
type TaskRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TaskView is the assembled form of a task. In a chain, ChildTask holds the next level down.
type TaskView struct {
	ID               uint                  `json:"id"`
	UUID             string                `json:"uuid"`
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	Month            string                `json:"month"`
	InitialStartDate string                `json:"initialStartDate,omitempty"`
	ActualStartDate  string                `json:"actualStartDate,omitempty"`
	InitialDeadline  string                `json:"initialDeadline,omitempty"`
	CurrentDeadline  string                `json:"currentDeadline,omitempty"`
	EndDate          string                `json:"endDate,omitempty"`
	Status           models.TaskStatus     `json:"status"`
	Progress         float64               `json:"progress"`
	Plan             *models.PlanSummary   `json:"plan"`
	Assigner         *models.UnitSummary   `json:"assigner"`
	Assignee         *models.UnitSummary   `json:"assignee"`
	ParentTask       *TaskRef              `json:"parentTask"`
	ChildTask        *TaskView             `json:"childTask,omitempty"`
	Executors        []models.StaffSummary `json:"executors"`
}

// TaskGroup is one recurrence group: the tasks sharing a group key.
type TaskGroup struct {
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tasks       []TaskView `json:"tasks"`
}

// Assembler builds views for a single request. Lookups are memoized for its lifetime,
// so create a new one per request and never share it across goroutines.
type Assembler struct {
	ctx     context.Context
	db      *gorm.DB
	actions *actions.Engine

	plans *cache.Memo[uint, *models.Plan]
	units *cache.Memo[uint, *models.Unit]
	staff *cache.Memo[uint, *models.Staff]
	tasks *cache.Memo[uint, *models.Task]
}

// New creates a request-scoped Assembler reading through db.
func New(ctx context.Context, db *gorm.DB) *Assembler {
	dir := directory.New(db)
	conn := db.WithContext(ctx)
	a := &Assembler{ctx: ctx, db: db, actions: actions.New(db)}

	a.plans = cache.NewMemo(func(id uint) (*models.Plan, error) {
		var p models.Plan
		if err := conn.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &p, nil
	}, cache.Options{})
	a.units = cache.NewMemo(func(id uint) (*models.Unit, error) {
		return dir.GetUnit(ctx, id)
	}, cache.Options{})
	a.staff = cache.NewMemo(func(id uint) (*models.Staff, error) {
		return dir.GetStaff(ctx, id)
	}, cache.Options{})
	a.tasks = cache.NewMemo(func(id uint) (*models.Task, error) {
		var t models.Task
		if err := conn.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &t, nil
	}, cache.Options{})
	return a
}

// Task assembles one task without its child.
func (a *Assembler) Task(task *models.Task) (*TaskView, error) {
	a.tasks.Prime(task.ID, task)

	view := &TaskView{
		ID:               task.ID,
		UUID:             task.GroupKey,
		Name:             task.Name,
		Description:      task.Description,
		Month:            task.Month,
		InitialStartDate: models.FormatDate(task.InitialStartDate),
		ActualStartDate:  models.FormatDate(task.ActualStartDate),
		InitialDeadline:  models.FormatDate(task.InitialDeadline),
		CurrentDeadline:  models.FormatDate(task.CurrentDeadline),
		EndDate:          models.FormatDate(task.EndDate),
		Status:           task.Status,
		Progress:         task.Progress,
	}

	plan, err := a.plans.Get(task.PlanID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		s := plan.Summary()
		view.Plan = &s
	}

	if view.Assigner, err = a.unit(task.AssignerID); err != nil {
		return nil, err
	}
	if view.Assignee, err = a.unit(task.AssigneeID); err != nil {
		return nil, err
	}

	if task.ParentTaskID != nil {
		parent, err := a.tasks.Get(*task.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			view.ParentTask = &TaskRef{ID: parent.ID, Name: parent.Name}
		}
	}

	if view.Executors, err = a.executors(task.ID); err != nil {
		return nil, err
	}

	// a non-empty checklist overrides the stored value, for display only
	progress, ok, err := a.actions.Progress(a.ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		view.Progress = progress
	}
	return view, nil
}

// Tasks assembles a list of tasks in order.
func (a *Assembler) Tasks(tasks []models.Task) ([]TaskView, error) {
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		v, err := a.Task(&tasks[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (a *Assembler) unit(id uint) (*models.UnitSummary, error) {
	u, err := a.units.Get(id)
	if err != nil || u == nil {
		return nil, err
	}
	s := u.Summary()
	return &s, nil
}

func (a *Assembler) executors(taskID uint) ([]models.StaffSummary, error) {
	var links []models.TaskExecutor
	if err := a.db.WithContext(a.ctx).Where("task_id = ?", taskID).Order("id asc").Find(&links).Error; err != nil {
		return nil, err
	}
	out := make([]models.StaffSummary, 0, len(links))
	for _, l := range links {
		st, err := a.staff.Get(l.StaffID)
		if err != nil {
			return nil, err
		}
		if st != nil {
			out = append(out, st.Summary())
		}
	}
	return out, nil
}

// Groups partitions tasks by group key. The first task seen in a group supplies its name
// and description; members are ordered by month (unparsable months last) and groups by
// name. tasks should be in id order.
func (a *Assembler) Groups(tasks []models.Task) ([]TaskGroup, error) {
	index := make(map[string]int)
	groups := []TaskGroup{}
	for i := range tasks {
		t := &tasks[i]
		view, err := a.Task(t)
		if err != nil {
			return nil, err
		}
		pos, ok := index[t.GroupKey]
		if !ok {
			pos = len(groups)
			index[t.GroupKey] = pos
			groups = append(groups, TaskGroup{UUID: t.GroupKey, Name: t.Name, Description: t.Description})
		}
		groups[pos].Tasks = append(groups[pos].Tasks, *view)
	}

	for i := range groups {
		members := groups[i].Tasks
		sort.SliceStable(members, func(x, y int) bool {
			return monthBefore(members[x].Month, members[y].Month)
		})
	}
	sort.SliceStable(groups, func(x, y int) bool {
		return groups[x].Name < groups[y].Name
	})
	return groups, nil
}

func monthBefore(a, b string) bool {
	ta, errA := time.Parse(models.MonthLayout, a)
	tb, errB := time.Parse(models.MonthLayout, b)
	switch {
	case errA != nil:
		return false
	case errB != nil:
		return true
	default:
		return ta.Before(tb)
	}
}

// Stats reports memo loads for each lookup kind, for debug logging.
func (a *Assembler) Stats() map[string]int {
	_, plans := a.plans.Stats()
	_, units := a.units.Stats()
	_, staff := a.staff.Stats()
	_, tasks := a.tasks.Stats()
	return map[string]int{"plans": plans, "units": units, "staff": staff, "tasks": tasks}
}
