package models

import "time"

// Plan groups the tasks a unit schedules over a month range
type Plan struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	StartMonth string    `json:"startMonth"` // YYYY-MM
	EndMonth   string    `json:"endMonth"`   // YYYY-MM
	UnitID     uint      `json:"unitId" gorm:"column:unit_id;index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Plan Model
func (Plan) TableName() string {
	return "plans"
}

// TaskComment is a message on a task thread, optionally replying to another comment
type TaskComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TaskID    uint      `json:"taskId" gorm:"column:task_id;index;not null"`
	OwnerID   *uint     `json:"ownerId" gorm:"column:owner_id"`
	TargetID  *uint     `json:"targetId" gorm:"column:target_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for TaskComment Model
func (TaskComment) TableName() string {
	return "task_comments"
}
