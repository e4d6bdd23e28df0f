package handlers

import (
	"net/http"

	"delegation-api/internal/actions"
	"delegation-api/internal/database"
	"delegation-api/internal/middleware"
	"delegation-api/internal/records"

	"github.com/gin-gonic/gin"
)

// GetMyPlans handles GET /api/me/plans
// Returns the plans in which the authenticated staff member executes a task.
func GetMyPlans(c *gin.Context) {
	plans, err := records.NewPlans(database.GetDB()).ListAsMember(c.Request.Context(), middleware.StaffID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

// GetMyTasks handles GET /api/me/tasks
func GetMyTasks(c *gin.Context) {
	tasks, err := taskEngine().TasksByExecutor(c.Request.Context(), middleware.StaffID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// GetMyActions handles GET /api/me/actions
func GetMyActions(c *gin.Context) {
	list, err := actions.New(database.GetDB()).ListByExecutor(c.Request.Context(), middleware.StaffID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch actions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": list, "count": len(list)})
}
