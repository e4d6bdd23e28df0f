package assembler

import (
	"context"
	"testing"

	"delegation-api/internal/models"
	"delegation-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestTask_ResolvesReferences(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	hq := testutil.SeedUnit(t, db, "HQ", models.RootUnitID)
	ops := testutil.SeedUnit(t, db, "Ops", hq.ID)
	plan := testutil.SeedPlan(t, db, "2024", hq.ID)
	alice := testutil.SeedStaff(t, db, "Alice")
	bob := testutil.SeedStaff(t, db, "Bob")

	parent := testutil.SeedTask(t, db, models.Task{Name: "Report", PlanID: plan.ID, AssignerID: hq.ID, AssigneeID: hq.ID})
	child := testutil.SeedTask(t, db, models.Task{
		Name:            "Report",
		PlanID:          plan.ID,
		ParentTaskID:    &parent.ID,
		AssignerID:      hq.ID,
		AssigneeID:      ops.ID,
		Progress:        0.4,
		InitialDeadline: testutil.Date(t, "2024-03-31"),
		CurrentDeadline: testutil.Date(t, "2024-04-15"),
	})
	require.NoError(t, db.Create(&models.TaskExecutor{TaskID: child.ID, StaffID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.TaskExecutor{TaskID: child.ID, StaffID: alice.ID}).Error)

	view, err := New(ctx, db).Task(&child)
	require.NoError(t, err)
	require.Equal(t, "2024", view.Plan.Name)
	require.Equal(t, "HQ", view.Assigner.Name)
	require.Equal(t, "Ops", view.Assignee.Name)
	require.Equal(t, &TaskRef{ID: parent.ID, Name: "Report"}, view.ParentTask)
	require.Equal(t, "2024-03-31", view.InitialDeadline)
	require.Equal(t, "2024-04-15", view.CurrentDeadline)
	require.Empty(t, view.EndDate)
	require.InDelta(t, 0.4, view.Progress, 1e-9)
	require.Len(t, view.Executors, 2)
	require.Equal(t, "Bob", view.Executors[0].Name)
	require.Nil(t, view.ChildTask)
}

func TestTask_ChecklistOverridesStoredProgress(t *testing.T) {
	db := testutil.NewTestDB(t)
	task := testutil.SeedTask(t, db, models.Task{Name: "T", Progress: 0.9})
	for i, st := range []models.TaskStatus{models.StatusCompleted, models.StatusPending, models.StatusPending, models.StatusPending} {
		require.NoError(t, db.Create(&models.Action{TaskID: task.ID, Name: string(rune('a' + i)), Status: st}).Error)
	}

	view, err := New(context.Background(), db).Task(&task)
	require.NoError(t, err)
	require.InDelta(t, 0.25, view.Progress, 1e-9)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.InDelta(t, 0.9, stored.Progress, 1e-9)
}

func TestTask_MissingReferencesStayNil(t *testing.T) {
	db := testutil.NewTestDB(t)
	orphan := uint(999)
	task := testutil.SeedTask(t, db, models.Task{Name: "T", PlanID: 5, AssigneeID: 6, ParentTaskID: &orphan})

	view, err := New(context.Background(), db).Task(&task)
	require.NoError(t, err)
	require.Nil(t, view.Plan)
	require.Nil(t, view.Assignee)
	require.Nil(t, view.ParentTask)
	require.Empty(t, view.Executors)
}

func TestGroups_PartitionAndOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	unit := testutil.SeedUnit(t, db, "HQ", models.RootUnitID)

	seed := func(key, name, month string) models.Task {
		return testutil.SeedTask(t, db, models.Task{GroupKey: key, Name: name, Month: month, AssignerID: unit.ID, AssigneeID: unit.ID})
	}
	tasks := []models.Task{
		seed("k-report", "Report", "2024-03"),
		seed("k-audit", "Audit", "2024-02"),
		seed("k-report", "Report (renamed)", "2024-01"),
		seed("k-report", "Report", "not-a-month"),
		seed("k-audit", "Audit", "2024-01"),
	}

	a := New(context.Background(), db)
	groups, err := a.Groups(tasks)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	require.Equal(t, "Audit", groups[0].Name)
	require.Equal(t, "k-audit", groups[0].UUID)
	require.Equal(t, []string{"2024-01", "2024-02"}, months(groups[0].Tasks))

	require.Equal(t, "Report", groups[1].Name)
	require.Equal(t, []string{"2024-01", "2024-03", "not-a-month"}, months(groups[1].Tasks))

	total := 0
	for _, g := range groups {
		total += len(g.Tasks)
		for _, v := range g.Tasks {
			require.Equal(t, g.UUID, v.UUID)
		}
	}
	require.Equal(t, len(tasks), total)

	// the shared unit is loaded once for every task
	require.Equal(t, 1, a.Stats()["units"])
}

func TestGroups_Empty(t *testing.T) {
	db := testutil.NewTestDB(t)
	groups, err := New(context.Background(), db).Groups(nil)
	require.NoError(t, err)
	require.NotNil(t, groups)
	require.Empty(t, groups)
}

func months(views []TaskView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Month)
	}
	return out
}
