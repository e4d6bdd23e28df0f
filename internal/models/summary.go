package models

import (
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// MonthLayout is the wire format of plan and task months
const MonthLayout = "2006-01"

// StaffSummary is the public projection of a Staff record
type StaffSummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// UnitSummary is a shallow unit reference
type UnitSummary struct {
	ID    uint      `json:"id"`
	Name  string    `json:"name"`
	Head  string    `json:"head,omitempty"`
	Level UnitLevel `json:"level,omitempty"`
}

// PlanSummary is a shallow plan reference
type PlanSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	StartMonth string `json:"startMonth"`
	EndMonth   string `json:"endMonth"`
}

// Summary projects s for responses
func (s Staff) Summary() StaffSummary {
	return StaffSummary{ID: s.ID, Name: s.Name, Email: s.Email, Picture: s.Picture}
}

// Summary projects u for responses
func (u Unit) Summary() UnitSummary {
	return UnitSummary{ID: u.ID, Name: u.Name, Head: u.Head, Level: u.Level}
}

// Summary projects p for responses
func (p Plan) Summary() PlanSummary {
	return PlanSummary{ID: p.ID, Name: p.Name, StartMonth: p.StartMonth, EndMonth: p.EndMonth}
}

// ParseDate parses a yyyy-MM-dd string into a calendar date.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// DatePtr parses an optional yyyy-MM-dd string; empty input yields nil.
func DatePtr(s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatDate renders d as yyyy-MM-dd, or "" when d is nil.
func FormatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(DateLayout)
}

// Today returns the current calendar date in UTC.
func Today() datatypes.Date {
	now := time.Now().UTC()
	return datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}

// AllModels lists every table for AutoMigrate.
func AllModels() []any {
	return []any{
		&Unit{},
		&Staff{},
		&UnitStaff{},
		&Plan{},
		&Task{},
		&TaskExecutor{},
		&Action{},
		&ActionExecutor{},
		&TaskEvent{},
		&TaskComment{},
	}
}
