package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"delegation-api/internal/database"
	"delegation-api/internal/records"
	"delegation-api/internal/report"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func planStore() *records.Plans {
	return records.NewPlans(database.GetDB())
}

// CreatePlan handles POST /api/plans
func CreatePlan(c *gin.Context) {
	var req records.PlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := planStore().Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create plan")
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPlan handles GET /api/plans/:id
func GetPlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	plan, err := planStore().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// UpdatePlan handles PUT /api/plans/:id
func UpdatePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req records.PlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := planStore().Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan handles DELETE /api/plans/:id
func DeletePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := planStore().Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete plan")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPlanTasks handles GET /api/plans/:id/tasks
// Returns the plan's tasks grouped by recurrence.
func GetPlanTasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	groups, err := taskEngine().GetTasksByPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}

// GetPlanUnitTasks handles GET /api/plans/:id/units/:unitId/tasks
func GetPlanUnitTasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	unitID, ok := parseID(c, "unitId")
	if !ok {
		return
	}
	groups, err := taskEngine().GetTasksByPlanAndUnit(c.Request.Context(), id, unitID)
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}

// ExportPlanTasks handles GET /api/plans/:id/tasks/export
func ExportPlanTasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	plan, err := planStore().Get(ctx, id)
	if err != nil {
		respondError(c, err, "Failed to fetch plan")
		return
	}
	groups, err := taskEngine().GetTasksByPlan(ctx, id)
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}

	var buf bytes.Buffer
	if err := report.WritePlanWorkbook(groups, &buf); err != nil {
		respondError(c, err, "Failed to build workbook")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"plan-%d.xlsx\"", plan.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
