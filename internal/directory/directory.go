// Package directory is the flat store of units, staff and unit membership.
//
// Units form a single-rooted forest: ParentUnitID 0 marks a root. Tree reads build an
// arena (parent id -> children) from one query instead of querying per node.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"delegation-api/internal/apperr"
	"delegation-api/internal/auth"
	"delegation-api/internal/logging"
	"delegation-api/internal/models"

	"gorm.io/gorm"
)

// Store reads and writes directory records.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// New creates a Store on db.
func New(db *gorm.DB) *Store {
	return &Store{db: db, log: logging.Component("directory")}
}

// WithTx returns a copy of the store bound to tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx, log: s.log}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// UnitInput describes a unit to create, optionally with a subtree of children.
type UnitInput struct {
	Name     string           `json:"name" binding:"required"`
	Head     string           `json:"head"`
	Level    models.UnitLevel `json:"level"`
	Children []UnitInput      `json:"children"`
}

// UnitNode is a unit with its nested children.
type UnitNode struct {
	models.UnitSummary
	Children []UnitNode `json:"children"`
}

// GetUnit returns the unit or nil when it does not exist.
func (s *Store) GetUnit(ctx context.Context, id uint) (*models.Unit, error) {
	var u models.Unit
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUnitChildren returns the direct children of a unit.
func (s *Store) GetUnitChildren(ctx context.Context, id uint) ([]models.Unit, error) {
	children := []models.Unit{}
	err := s.conn(ctx).Where("parent_unit_id = ?", id).Order("id asc").Find(&children).Error
	return children, err
}

// GetAllUnits returns every unit ordered by id.
func (s *Store) GetAllUnits(ctx context.Context) ([]models.Unit, error) {
	units := []models.Unit{}
	err := s.conn(ctx).Order("id asc").Find(&units).Error
	return units, err
}

// GetStaff returns the staff member or nil when it does not exist.
func (s *Store) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	var st models.Staff
	if err := s.conn(ctx).First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// GetAllStaff resolves ids to staff records, in the order of ids. Unknown ids are skipped.
func (s *Store) GetAllStaff(ctx context.Context, ids []uint) ([]models.Staff, error) {
	if len(ids) == 0 {
		return []models.Staff{}, nil
	}
	var found []models.Staff
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Staff, len(found))
	for _, st := range found {
		byID[st.ID] = st
	}
	result := make([]models.Staff, 0, len(found))
	for _, id := range ids {
		if st, ok := byID[id]; ok {
			result = append(result, st)
			delete(byID, id)
		}
	}
	return result, nil
}

// FindStaffByEmail returns the staff member with email or nil.
func (s *Store) FindStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var st models.Staff
	if err := s.conn(ctx).Where("email = ?", email).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// CreateUnit persists in (and its children, recursively) under parentID in one
// transaction. parentID 0 creates a root unit.
func (s *Store) CreateUnit(ctx context.Context, in UnitInput, parentID uint) (*UnitNode, error) {
	var node *UnitNode
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != models.RootUnitID {
			var count int64
			if err := tx.Model(&models.Unit{}).Where("id = ?", parentID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperr.NotFound("unit", parentID)
			}
		}
		var err error
		node, err = createUnitTree(tx, in, parentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("unit tree created", "unit_id", node.ID, "parent_id", parentID)
	return node, nil
}

func createUnitTree(tx *gorm.DB, in UnitInput, parentID uint) (*UnitNode, error) {
	if in.Name == "" {
		return nil, apperr.Validation("name", "unit name is required")
	}
	u := models.Unit{
		Name:         in.Name,
		Head:         in.Head,
		Level:        in.Level,
		ParentUnitID: parentID,
	}
	if err := tx.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create unit %q: %w", in.Name, err)
	}
	node := &UnitNode{UnitSummary: u.Summary(), Children: []UnitNode{}}
	for _, child := range in.Children {
		c, err := createUnitTree(tx, child, u.ID)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, *c)
	}
	return node, nil
}

// childrenArena groups units by parent id. Roots are not indexed.
func childrenArena(units []models.Unit) map[uint][]models.Unit {
	arena := make(map[uint][]models.Unit)
	for _, u := range units {
		if u.ParentUnitID == models.RootUnitID {
			continue
		}
		arena[u.ParentUnitID] = append(arena[u.ParentUnitID], u)
	}
	return arena
}

func toTree(root models.Unit, arena map[uint][]models.Unit, seen map[uint]bool) UnitNode {
	seen[root.ID] = true
	node := UnitNode{UnitSummary: root.Summary(), Children: []UnitNode{}}
	for _, c := range arena[root.ID] {
		if seen[c.ID] {
			continue
		}
		node.Children = append(node.Children, toTree(c, arena, seen))
	}
	return node
}

// Structure returns every root unit with its full subtree.
func (s *Store) Structure(ctx context.Context) ([]UnitNode, error) {
	units, err := s.GetAllUnits(ctx)
	if err != nil {
		return nil, err
	}
	arena := childrenArena(units)
	seen := make(map[uint]bool, len(units))
	forest := []UnitNode{}
	for _, u := range units {
		if u.ParentUnitID == models.RootUnitID {
			forest = append(forest, toTree(u, arena, seen))
		}
	}
	return forest, nil
}

// Subtree returns the tree rooted at rootID.
func (s *Store) Subtree(ctx context.Context, rootID uint) (*UnitNode, error) {
	root, err := s.GetUnit(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, apperr.NotFound("unit", rootID)
	}
	units, err := s.GetAllUnits(ctx)
	if err != nil {
		return nil, err
	}
	tree := toTree(*root, childrenArena(units), map[uint]bool{})
	return &tree, nil
}

// DescendantIDs returns rootID and the ids of every unit below it.
func (s *Store) DescendantIDs(ctx context.Context, rootID uint) ([]uint, error) {
	units, err := s.GetAllUnits(ctx)
	if err != nil {
		return nil, err
	}
	arena := childrenArena(units)
	ids := []uint{rootID}
	seen := map[uint]bool{rootID: true}
	for i := 0; i < len(ids); i++ {
		for _, c := range arena[ids[i]] {
			if !seen[c.ID] {
				seen[c.ID] = true
				ids = append(ids, c.ID)
			}
		}
	}
	return ids, nil
}

// DeleteUnit removes a unit that has neither child units nor staff.
func (s *Store) DeleteUnit(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.Unit
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("unit", id)
			}
			return err
		}

		var children int64
		if err := tx.Model(&models.Unit{}).Where("parent_unit_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return apperr.Conflict("unit", id, "unit has child units")
		}

		var staff int64
		if err := tx.Model(&models.UnitStaff{}).Where("unit_id = ?", id).Count(&staff).Error; err != nil {
			return err
		}
		if staff > 0 {
			return apperr.Conflict("unit", id, "unit has assigned staff")
		}

		return tx.Delete(&u).Error
	})
}

// UnitStaff returns the staff directly attached to a unit.
func (s *Store) UnitStaff(ctx context.Context, unitID uint) ([]models.StaffSummary, error) {
	return s.staffOfUnits(ctx, []uint{unitID})
}

// AllStaffUnder returns the staff of a unit and of every unit below it.
func (s *Store) AllStaffUnder(ctx context.Context, unitID uint) ([]models.StaffSummary, error) {
	ids, err := s.DescendantIDs(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return s.staffOfUnits(ctx, ids)
}

func (s *Store) staffOfUnits(ctx context.Context, unitIDs []uint) ([]models.StaffSummary, error) {
	var links []models.UnitStaff
	if err := s.conn(ctx).Where("unit_id IN ?", unitIDs).Order("id asc").Find(&links).Error; err != nil {
		return nil, err
	}
	staffIDs := make([]uint, 0, len(links))
	for _, l := range links {
		staffIDs = append(staffIDs, l.StaffID)
	}
	staff, err := s.GetAllStaff(ctx, staffIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.StaffSummary, 0, len(staff))
	for _, st := range staff {
		out = append(out, st.Summary())
	}
	return out, nil
}

// AddStaffToUnit links staff to a unit, skipping existing links and unknown staff ids.
func (s *Store) AddStaffToUnit(ctx context.Context, unitID uint, staffIDs []uint) (int, error) {
	added := 0
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Unit{}).Where("id = ?", unitID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("unit", unitID)
		}

		var current []models.UnitStaff
		if err := tx.Where("unit_id = ?", unitID).Find(&current).Error; err != nil {
			return err
		}
		existing := make(map[uint]bool, len(current))
		for _, l := range current {
			existing[l.StaffID] = true
		}

		var newLinks []models.UnitStaff
		for _, id := range staffIDs {
			if existing[id] {
				continue
			}
			ok, err := staffExists(tx, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			existing[id] = true
			newLinks = append(newLinks, models.UnitStaff{UnitID: unitID, StaffID: id})
		}
		if len(newLinks) == 0 {
			return nil
		}
		added = len(newLinks)
		return tx.Create(&newLinks).Error
	})
	return added, err
}

func staffExists(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Staff{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// StaffInput carries the writable staff fields.
type StaffInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Picture  string `json:"picture"`
	Password string `json:"password"`
}

// CreateStaff stores a new staff member; a non-empty password is bcrypt-hashed.
func (s *Store) CreateStaff(ctx context.Context, in StaffInput) (*models.Staff, error) {
	st := models.Staff{Name: in.Name, Email: in.Email, Picture: in.Picture}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		st.PasswordHash = hash
	}
	if err := s.conn(ctx).Create(&st).Error; err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}
	return &st, nil
}

// UpdateStaff overwrites the profile fields of a staff member.
func (s *Store) UpdateStaff(ctx context.Context, id uint, in StaffInput) (*models.Staff, error) {
	st, err := s.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apperr.NotFound("staff", id)
	}
	st.Name = in.Name
	st.Email = in.Email
	st.Picture = in.Picture
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		st.PasswordHash = hash
	}
	if err := s.conn(ctx).Save(st).Error; err != nil {
		return nil, err
	}
	return st, nil
}

// ListStaff returns every staff member.
func (s *Store) ListStaff(ctx context.Context) ([]models.StaffSummary, error) {
	var staff []models.Staff
	if err := s.conn(ctx).Order("id asc").Find(&staff).Error; err != nil {
		return nil, err
	}
	out := make([]models.StaffSummary, 0, len(staff))
	for _, st := range staff {
		out = append(out, st.Summary())
	}
	return out, nil
}

// DeleteStaff removes a staff member and their unit memberships. Missing ids are a no-op.
func (s *Store) DeleteStaff(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", id).Delete(&models.UnitStaff{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Staff{}, id).Error
	})
}
