package handlers

import (
	"net/http"

	"delegation-api/internal/actions"
	"delegation-api/internal/apperr"
	"delegation-api/internal/database"
	"delegation-api/internal/middleware"
	"delegation-api/internal/models"

	"github.com/gin-gonic/gin"
)

// UpdateActionStatusRequest changes the status of a checklist item
type UpdateActionStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required,taskstatus"`
}

// CreateAction handles POST /api/actions
func CreateAction(c *gin.Context) {
	var req actions.CreateActionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := actions.New(database.GetDB()).Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create action")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// DeleteAction handles DELETE /api/actions/:id
func DeleteAction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := actions.New(database.GetDB()).Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete action")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateActionStatus handles PATCH /api/actions/:id/status on behalf of the token's staff.
// Only executors of the action may change it; every other failure is a bad request.
func UpdateActionStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateActionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := actions.New(database.GetDB()).UpdateStatus(c.Request.Context(), id, middleware.StaffID(c), req.Status)
	if err != nil {
		switch {
		case apperr.Is(err, apperr.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case apperr.Is(err, apperr.ErrNotFound), apperr.Is(err, apperr.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			respondError(c, err, "Failed to update action status")
		}
		return
	}
	c.JSON(http.StatusOK, view)
}
