package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskStatus represents the status of a task or an action
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
	StatusOverdue    TaskStatus = "OVERDUE"
)

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusOverdue:
		return true
	}
	return false
}

// Ptr returns a pointer to a copy of s, for nullable event columns
func (s TaskStatus) Ptr() *TaskStatus {
	return &s
}

// Task is one delegation step of a recurring work item.
// Tasks sharing a GroupKey are monthly recurrences of the same conceptual task.
type Task struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	GroupKey         string          `json:"uuid" gorm:"column:group_key;index;not null"`
	Name             string          `json:"name" gorm:"not null"`
	Description      string          `json:"description"`
	Month            string          `json:"month"` // YYYY-MM
	InitialStartDate *datatypes.Date `json:"initialStartDate"`
	ActualStartDate  *datatypes.Date `json:"actualStartDate"`
	InitialDeadline  *datatypes.Date `json:"initialDeadline"`
	CurrentDeadline  *datatypes.Date `json:"currentDeadline"`
	EndDate          *datatypes.Date `json:"endDate"`
	PlanID           uint            `json:"planId" gorm:"column:plan_id;index"`
	ParentTaskID     *uint           `json:"parentTaskId" gorm:"column:parent_task_id;index"`
	AssignerID       uint            `json:"assignerId" gorm:"column:assigner_id"`
	AssigneeID       uint            `json:"assigneeId" gorm:"column:assignee_id;index"`
	Status           TaskStatus      `json:"status" gorm:"not null;default:'PENDING'"`
	Progress         float64         `json:"progress" gorm:"not null;default:0"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskExecutor links a task to a staff member carrying it out
type TaskExecutor struct {
	ID      uint `gorm:"primaryKey"`
	TaskID  uint `gorm:"column:task_id;index;not null"`
	StaffID uint `gorm:"column:staff_id;index;not null"`
}

// TableName specifies the table name for TaskExecutor Model
func (TaskExecutor) TableName() string {
	return "task_executors"
}
