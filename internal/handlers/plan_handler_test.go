package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"delegation-api/internal/assembler"
	"delegation-api/internal/models"
	"delegation-api/internal/report"
	"delegation-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPlanHandlers(t *testing.T) {
	r, db := newTestRouter(t)
	r.POST("/api/plans", CreatePlan)
	r.GET("/api/plans/:id", GetPlan)
	r.PUT("/api/plans/:id", UpdatePlan)
	r.DELETE("/api/plans/:id", DeletePlan)
	r.GET("/api/plans/:id/tasks", GetPlanTasks)
	r.GET("/api/plans/:id/tasks/export", ExportPlanTasks)
	r.GET("/api/plans/:id/units/:unitId/tasks", GetPlanUnitTasks)
	r.GET("/api/units/:id/plans", GetUnitPlans)
	r.GET("/api/units/:id/participating-plans", GetParticipatingPlans)
	r.GET("/api/me/plans", GetMyPlans)
	r.GET("/api/me/tasks", GetMyTasks)

	hq := testutil.SeedUnit(t, db, "HQ", models.RootUnitID)
	ops := testutil.SeedUnit(t, db, "Ops", hq.ID)
	ann := testutil.SeedStaff(t, db, "Ann")
	token := tokenFor(t, ann.ID)

	w := doJSON(r, http.MethodPost, "/api/plans", token, map[string]any{"name": "2024"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/plans", token, map[string]any{"name": "2024", "startMonth": "2024-01", "endMonth": "2024-12", "unitId": hq.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var plan models.Plan
	decode(t, w, &plan)

	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/plans/%d", plan.ID), token, map[string]any{"name": "FY2024", "unitId": hq.ID})
	require.Equal(t, http.StatusOK, w.Code)

	key := "payroll"
	for _, month := range []string{"2024-02", "2024-01"} {
		task := testutil.SeedTask(t, db, models.Task{GroupKey: key, Name: "Payroll", Month: month, PlanID: plan.ID, AssignerID: hq.ID, AssigneeID: ops.ID})
		require.NoError(t, db.Create(&models.TaskExecutor{TaskID: task.ID, StaffID: ann.ID}).Error)
	}

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/plans/%d/tasks", plan.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grouped struct {
		Groups []assembler.TaskGroup `json:"groups"`
	}
	decode(t, w, &grouped)
	require.Len(t, grouped.Groups, 1)
	require.Equal(t, "2024-01", grouped.Groups[0].Tasks[0].Month)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/plans/%d/units/%d/tasks", plan.ID, ops.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &grouped)
	require.Len(t, grouped.Groups, 1)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/plans/%d/tasks/export", plan.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.NoError(t, f.Close())

	w = doJSON(r, http.MethodGet, "/api/plans/999/tasks/export", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/units/%d/participating-plans", ops.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "FY2024")

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/units/%d/plans", hq.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "FY2024")

	w = doJSON(r, http.MethodGet, "/api/me/plans", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "FY2024")

	w = doJSON(r, http.MethodGet, "/api/me/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Count int `json:"count"`
	}
	decode(t, w, &mine)
	require.Equal(t, 2, mine.Count)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/plans/%d", plan.ID), token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodGet, "/api/plans/999", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
