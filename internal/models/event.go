package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskEvent is an append-only audit record of a status and/or deadline transition
type TaskEvent struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	TaskID       uint            `json:"taskId" gorm:"column:task_id;index;not null"`
	Note         string          `json:"note"`
	PrevStatus   *TaskStatus     `json:"prevStatus"`
	NextStatus   *TaskStatus     `json:"nextStatus"`
	PrevDeadline *datatypes.Date `json:"prevDeadline"`
	NextDeadline *datatypes.Date `json:"nextDeadline"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    *uint           `json:"createdBy" gorm:"column:created_by"`
}

// TableName specifies the table name for TaskEvent Model
func (TaskEvent) TableName() string {
	return "task_events"
}
