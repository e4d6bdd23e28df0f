package records

import (
	"context"
	"time"

	"delegation-api/internal/apperr"
	"delegation-api/internal/directory"
	"delegation-api/internal/models"

	"gorm.io/gorm"
)

// Comments stores the comment thread of each task.
type Comments struct {
	db    *gorm.DB
	staff *directory.Store
}

// NewComments creates a comment store on db.
func NewComments(db *gorm.DB) *Comments {
	return &Comments{db: db, staff: directory.New(db)}
}

// WithTx returns a copy bound to tx.
func (c *Comments) WithTx(tx *gorm.DB) *Comments {
	return &Comments{db: tx, staff: c.staff.WithTx(tx)}
}

// CommentInput is a new comment on a task.
type CommentInput struct {
	Message  string `json:"message" binding:"required"`
	TargetID *uint  `json:"targetId"`
}

// CommentRef is the comment a reply points at.
type CommentRef struct {
	ID      uint                 `json:"id"`
	Message string               `json:"message"`
	Owner   *models.StaffSummary `json:"owner"`
}

// CommentView is a comment with its author and reply target resolved.
type CommentView struct {
	ID        uint                 `json:"id"`
	TaskID    uint                 `json:"taskId"`
	Message   string               `json:"message"`
	Owner     *models.StaffSummary `json:"owner"`
	ReplyTo   *CommentRef          `json:"replyTo,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Add stores a comment by ownerID on taskID. A reply target must belong to the same task.
func (c *Comments) Add(ctx context.Context, taskID, ownerID uint, in CommentInput) (*models.TaskComment, error) {
	var comment models.TaskComment
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("task", taskID)
		}
		if in.TargetID != nil {
			if err := tx.Model(&models.TaskComment{}).
				Where("id = ? AND task_id = ?", *in.TargetID, taskID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperr.Validation("targetId", "reply target is not a comment on this task")
			}
		}

		comment = models.TaskComment{TaskID: taskID, TargetID: in.TargetID, Message: in.Message}
		if ownerID != 0 {
			comment.OwnerID = &ownerID
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTask returns the thread of a task, oldest first.
func (c *Comments) ListByTask(ctx context.Context, taskID uint) ([]CommentView, error) {
	var comments []models.TaskComment
	if err := c.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc, id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.TaskComment, len(comments))
	var ownerIDs []uint
	for _, cm := range comments {
		byID[cm.ID] = cm
		if cm.OwnerID != nil {
			ownerIDs = append(ownerIDs, *cm.OwnerID)
		}
	}
	staff, err := c.staff.GetAllStaff(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	owners := make(map[uint]models.StaffSummary, len(staff))
	for _, st := range staff {
		owners[st.ID] = st.Summary()
	}
	owner := func(id *uint) *models.StaffSummary {
		if id == nil {
			return nil
		}
		if s, ok := owners[*id]; ok {
			return &s
		}
		return nil
	}

	views := make([]CommentView, 0, len(comments))
	for _, cm := range comments {
		v := CommentView{
			ID:        cm.ID,
			TaskID:    cm.TaskID,
			Message:   cm.Message,
			Owner:     owner(cm.OwnerID),
			CreatedAt: cm.CreatedAt,
		}
		if cm.TargetID != nil {
			if target, ok := byID[*cm.TargetID]; ok {
				v.ReplyTo = &CommentRef{ID: target.ID, Message: target.Message, Owner: owner(target.OwnerID)}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// DeleteByTask removes the whole thread of a task.
func (c *Comments) DeleteByTask(ctx context.Context, taskID uint) error {
	return c.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.TaskComment{}).Error
}
