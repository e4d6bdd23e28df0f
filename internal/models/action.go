package models

import (
	"time"

	"gorm.io/datatypes"
)

// Action is a checklist item scoped to one task
type Action struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	TaskID      uint            `json:"taskId" gorm:"column:task_id;index;not null"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Deadline    *datatypes.Date `json:"deadline"`
	Status      TaskStatus      `json:"status" gorm:"not null;default:'PENDING'"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for Action Model
func (Action) TableName() string {
	return "actions"
}

// ActionExecutor links an action to one of its executors
type ActionExecutor struct {
	ID       uint `gorm:"primaryKey"`
	ActionID uint `gorm:"column:action_id;index;not null"`
	StaffID  uint `gorm:"column:staff_id;index;not null"`
}

// TableName specifies the table name for ActionExecutor Model
func (ActionExecutor) TableName() string {
	return "action_executors"
}
