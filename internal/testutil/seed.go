package testutil

import (
	"fmt"
	"strings"
	"testing"

	"delegation-api/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewTestDB is NewInMemoryDB failing the test on error.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewInMemoryDB()
	require.NoError(t, err)
	return db
}

// SeedStaff inserts a staff member named name with a derived e-mail.
func SeedStaff(t *testing.T, db *gorm.DB, name string) models.Staff {
	t.Helper()
	st := models.Staff{Name: name, Email: fmt.Sprintf("%s@example.com", strings.ToLower(name))}
	require.NoError(t, db.Create(&st).Error)
	return st
}

// SeedUnit inserts a unit under parentID (0 for a root).
func SeedUnit(t *testing.T, db *gorm.DB, name string, parentID uint) models.Unit {
	t.Helper()
	u := models.Unit{Name: name, ParentUnitID: parentID, Level: models.LevelDepartment}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// SeedMember attaches staff to a unit.
func SeedMember(t *testing.T, db *gorm.DB, unitID, staffID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.UnitStaff{UnitID: unitID, StaffID: staffID}).Error)
}

// SeedPlan inserts a plan owned by unitID.
func SeedPlan(t *testing.T, db *gorm.DB, name string, unitID uint) models.Plan {
	t.Helper()
	p := models.Plan{Name: name, StartMonth: "2024-01", EndMonth: "2024-12", UnitID: unitID}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// SeedTask inserts task as-is, filling a group key and status when empty.
func SeedTask(t *testing.T, db *gorm.DB, task models.Task) models.Task {
	t.Helper()
	if task.GroupKey == "" {
		task.GroupKey = fmt.Sprintf("group-%s", task.Name)
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

// Date parses a yyyy-MM-dd literal, failing the test on error.
func Date(t *testing.T, s string) *datatypes.Date {
	t.Helper()
	d, err := models.DatePtr(s)
	require.NoError(t, err)
	return d
}
