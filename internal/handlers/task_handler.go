package handlers

import (
	"context"
	"net/http"

	"delegation-api/internal/actions"
	"delegation-api/internal/database"
	"delegation-api/internal/delegation"
	"delegation-api/internal/middleware"
	"delegation-api/internal/models"
	"delegation-api/internal/realtime"
	"delegation-api/internal/records"

	"github.com/gin-gonic/gin"
)

// UpdateProgressRequest sets the manual progress of a task
type UpdateProgressRequest struct {
	Progress *float64 `json:"progress" binding:"required"`
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required,taskstatus"`
	Note   string            `json:"note"`
}

// ExtendDeadlineRequest moves the current deadline of a task
type ExtendDeadlineRequest struct {
	NewDeadline string `json:"newDeadline" binding:"required"`
	Reason      string `json:"reason"`
}

// AddExecutorsRequest lists staff to attach to a task
type AddExecutorsRequest struct {
	StaffIDs []uint `json:"staffIds" binding:"required"`
}

func taskEngine() *delegation.Engine {
	return delegation.New(database.GetDB())
}

// notifyExecutors pushes an event to the current executors of a task.
func notifyExecutors(ctx context.Context, engine *delegation.Engine, taskID uint, eventType string, data any) {
	ids, err := engine.ExecutorIDs(ctx, taskID)
	if err != nil || len(ids) == 0 {
		return
	}
	realtime.GetHub().Notify(ids, realtime.Event{Type: eventType, TaskID: taskID, Data: data})
}

// CreateTask handles POST /api/tasks
func CreateTask(c *gin.Context) {
	var req delegation.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := taskEngine()
	view, err := engine.CreateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create task")
		return
	}

	notifyExecutors(c.Request.Context(), engine, view.ID, realtime.TaskCreated, gin.H{"name": view.Name})
	c.JSON(http.StatusCreated, view)
}

// GetAssignmentChain handles GET /api/tasks/:id
// Returns the whole delegation chain the task belongs to, from its root down.
func GetAssignmentChain(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	chain, err := taskEngine().GetAssignmentChain(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, chain)
}

// GetTaskEvents handles GET /api/tasks/:id/events
func GetTaskEvents(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	events, err := taskEngine().GetTaskEvents(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch task events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// UpdateTaskProgress handles PATCH /api/tasks/:id/progress
func UpdateTaskProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := taskEngine().UpdateTaskProgress(c.Request.Context(), id, *req.Progress)
	if err != nil {
		respondError(c, err, "Failed to update progress")
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
func UpdateTaskStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := taskEngine()
	view, err := engine.UpdateTaskStatus(c.Request.Context(), id, req.Status, req.Note, middleware.StaffID(c))
	if err != nil {
		respondError(c, err, "Failed to update task status")
		return
	}
	notifyExecutors(c.Request.Context(), engine, id, realtime.StatusChanged, gin.H{"status": view.Status})
	c.JSON(http.StatusOK, view)
}

// ExtendDeadline handles POST /api/tasks/:id/deadline
func ExtendDeadline(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ExtendDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deadline, err := models.ParseDate(req.NewDeadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "newDeadline must be yyyy-MM-dd"})
		return
	}

	engine := taskEngine()
	view, err := engine.ExtendDeadline(c.Request.Context(), id, deadline, req.Reason, middleware.StaffID(c))
	if err != nil {
		respondError(c, err, "Failed to extend deadline")
		return
	}
	notifyExecutors(c.Request.Context(), engine, id, realtime.DeadlineExtended, gin.H{"deadline": view.CurrentDeadline})
	c.JSON(http.StatusOK, view)
}

// AddTaskExecutors handles POST /api/tasks/:id/executors
func AddTaskExecutors(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AddExecutorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := taskEngine()
	view, err := engine.AddExecutorsToTask(c.Request.Context(), id, req.StaffIDs)
	if err != nil {
		respondError(c, err, "Failed to add executors")
		return
	}
	notifyExecutors(c.Request.Context(), engine, id, realtime.ExecutorsAdded, gin.H{"executors": view.Executors})
	c.JSON(http.StatusOK, view)
}

// DeleteTask handles DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	engine := taskEngine()
	executors, err := engine.ExecutorIDs(ctx, id)
	if err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}
	if err := engine.DeleteTask(ctx, id); err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}

	realtime.GetHub().Notify(executors, realtime.Event{Type: realtime.TaskDeleted, TaskID: id})
	c.Status(http.StatusNoContent)
}

// GetTaskActions handles GET /api/tasks/:id/actions
func GetTaskActions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := actions.New(database.GetDB()).ListByTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch actions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": list, "count": len(list)})
}

// GetTaskComments handles GET /api/tasks/:id/comments
func GetTaskComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	thread, err := records.NewComments(database.GetDB()).ListByTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": thread, "count": len(thread)})
}

// AddTaskComment handles POST /api/tasks/:id/comments
func AddTaskComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req records.CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := records.NewComments(database.GetDB()).Add(c.Request.Context(), id, middleware.StaffID(c), req)
	if err != nil {
		respondError(c, err, "Failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}
