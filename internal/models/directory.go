package models

import "time"

// UnitLevel is the organizational tier of a unit
type UnitLevel string

const (
	LevelRoot       UnitLevel = "ROOT"
	LevelBranch     UnitLevel = "BRANCH"
	LevelDepartment UnitLevel = "DEPARTMENT"
	LevelTeam       UnitLevel = "TEAM"
)

// RootUnitID is the ParentUnitID of a unit at the top of the tree
const RootUnitID uint = 0

// Unit is a node of the organizational tree
type Unit struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Head         string    `json:"head"` // e-mail of the unit head
	Level        UnitLevel `json:"level"`
	ParentUnitID uint      `json:"parentUnitId" gorm:"column:parent_unit_id;index;not null;default:0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Unit Model
func (Unit) TableName() string {
	return "units"
}

// Staff represents a person who can execute tasks and actions
type Staff struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Picture      string    `json:"picture"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Staff Model
func (Staff) TableName() string {
	return "staff"
}

// UnitStaff links a staff member to the unit they belong to
type UnitStaff struct {
	ID      uint `gorm:"primaryKey"`
	UnitID  uint `gorm:"column:unit_id;index;not null"`
	StaffID uint `gorm:"column:staff_id;index;not null"`
}

// TableName specifies the table name for UnitStaff Model
func (UnitStaff) TableName() string {
	return "unit_staff"
}
