// Package records holds the plain CRUD collaborators of the delegation engine: plans and
// task comments.
package records

import (
	"context"
	"errors"

	"delegation-api/internal/apperr"
	"delegation-api/internal/models"

	"gorm.io/gorm"
)

// Plans stores plan records.
type Plans struct {
	db *gorm.DB
}

// NewPlans creates a plan store on db.
func NewPlans(db *gorm.DB) *Plans {
	return &Plans{db: db}
}

// WithTx returns a copy bound to tx.
func (p *Plans) WithTx(tx *gorm.DB) *Plans {
	return &Plans{db: tx}
}

// PlanInput carries the writable plan fields.
type PlanInput struct {
	Name       string `json:"name" binding:"required"`
	StartMonth string `json:"startMonth" binding:"omitempty,yearmonth"`
	EndMonth   string `json:"endMonth" binding:"omitempty,yearmonth"`
	UnitID     uint   `json:"unitId"`
}

func (p *Plans) checkUnit(tx *gorm.DB, unitID uint) error {
	if unitID == 0 {
		return apperr.Validation("unitId", "unit is required")
	}
	var count int64
	if err := tx.Model(&models.Unit{}).Where("id = ?", unitID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.Validation("unitId", "unit does not exist")
	}
	return nil
}

// Create stores a plan owned by an existing unit.
func (p *Plans) Create(ctx context.Context, in PlanInput) (*models.Plan, error) {
	db := p.db.WithContext(ctx)
	if err := p.checkUnit(db, in.UnitID); err != nil {
		return nil, err
	}
	plan := models.Plan{
		Name:       in.Name,
		StartMonth: in.StartMonth,
		EndMonth:   in.EndMonth,
		UnitID:     in.UnitID,
	}
	if err := db.Create(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// Get returns the plan or a NotFoundError.
func (p *Plans) Get(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := p.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("plan", id)
		}
		return nil, err
	}
	return &plan, nil
}

// Find returns the plan or nil when it does not exist.
func (p *Plans) Find(ctx context.Context, id uint) (*models.Plan, error) {
	plan, err := p.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return plan, err
}

// ListByUnit returns the plans owned by a unit.
func (p *Plans) ListByUnit(ctx context.Context, unitID uint) ([]models.Plan, error) {
	plans := []models.Plan{}
	err := p.db.WithContext(ctx).Where("unit_id = ?", unitID).Order("id asc").Find(&plans).Error
	return plans, err
}

// ListParticipating returns the plans in which a unit is the assignee of some task.
func (p *Plans) ListParticipating(ctx context.Context, unitID uint) ([]models.Plan, error) {
	plans := []models.Plan{}
	sub := p.db.Model(&models.Task{}).Select("plan_id").Where("assignee_id = ?", unitID)
	err := p.db.WithContext(ctx).Where("id IN (?)", sub).Order("id asc").Find(&plans).Error
	return plans, err
}

// ListAsMember returns the plans in which a staff member executes some task.
func (p *Plans) ListAsMember(ctx context.Context, staffID uint) ([]models.Plan, error) {
	plans := []models.Plan{}
	sub := p.db.Model(&models.Task{}).
		Select("tasks.plan_id").
		Joins("JOIN task_executors ON task_executors.task_id = tasks.id").
		Where("task_executors.staff_id = ?", staffID)
	err := p.db.WithContext(ctx).Where("id IN (?)", sub).Order("id asc").Find(&plans).Error
	return plans, err
}

// Update overwrites the plan fields.
func (p *Plans) Update(ctx context.Context, id uint, in PlanInput) (*models.Plan, error) {
	var plan *models.Plan
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if plan, err = p.WithTx(tx).Get(ctx, id); err != nil {
			return err
		}
		if err := p.checkUnit(tx, in.UnitID); err != nil {
			return err
		}
		plan.Name = in.Name
		plan.StartMonth = in.StartMonth
		plan.EndMonth = in.EndMonth
		plan.UnitID = in.UnitID
		return tx.Save(plan).Error
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete removes a plan that no task references.
func (p *Plans) Delete(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := p.WithTx(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		var tasks int64
		if err := tx.Model(&models.Task{}).Where("plan_id = ?", id).Count(&tasks).Error; err != nil {
			return err
		}
		if tasks > 0 {
			return apperr.Conflict("plan", id, "plan still has tasks")
		}
		return tx.Delete(plan).Error
	})
}
