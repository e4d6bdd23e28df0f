package handlers

import (
	"net/http"
	"strconv"

	"delegation-api/internal/database"
	"delegation-api/internal/directory"
	"delegation-api/internal/models"

	"github.com/gin-gonic/gin"
)

// AddUnitStaffRequest lists staff to attach to a unit
type AddUnitStaffRequest struct {
	StaffIDs []uint `json:"staffIds" binding:"required"`
}

func directoryStore() *directory.Store {
	return directory.New(database.GetDB())
}

// CreateUnit handles POST /api/units?parentId=
// Creates the unit and any nested children; parentId 0 or absent creates a root.
func CreateUnit(c *gin.Context) {
	parentID := models.RootUnitID
	if raw := c.Query("parentId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parentId"})
			return
		}
		parentID = uint(id)
	}

	var req directory.UnitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	node, err := directoryStore().CreateUnit(c.Request.Context(), req, parentID)
	if err != nil {
		respondError(c, err, "Failed to create unit")
		return
	}
	c.JSON(http.StatusCreated, node)
}

// GetUnits handles GET /api/units
// Returns every root unit with its subtree.
func GetUnits(c *gin.Context) {
	forest, err := directoryStore().Structure(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch units")
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": forest, "count": len(forest)})
}

// GetUnitStructure handles GET /api/units/:id/structure
func GetUnitStructure(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tree, err := directoryStore().Subtree(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch unit structure")
		return
	}
	c.JSON(http.StatusOK, tree)
}

// GetUnitChildren handles GET /api/units/:id/children
func GetUnitChildren(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	children, err := directoryStore().GetUnitChildren(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch child units")
		return
	}
	out := make([]models.UnitSummary, 0, len(children))
	for _, u := range children {
		out = append(out, u.Summary())
	}
	c.JSON(http.StatusOK, gin.H{"units": out, "count": len(out)})
}

// GetUnitStaff handles GET /api/units/:id/staff
func GetUnitStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	staff, err := directoryStore().UnitStaff(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch unit staff")
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff, "count": len(staff)})
}

// AddUnitStaff handles POST /api/units/:id/staff
func AddUnitStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AddUnitStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := directoryStore()
	added, err := store.AddStaffToUnit(c.Request.Context(), id, req.StaffIDs)
	if err != nil {
		respondError(c, err, "Failed to add staff")
		return
	}
	staff, err := store.UnitStaff(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch unit staff")
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "staff": staff, "count": len(staff)})
}

// GetAllStaffUnderUnit handles GET /api/units/:id/all-staff
func GetAllStaffUnderUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	store := directoryStore()
	unit, err := store.GetUnit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch unit")
		return
	}
	if unit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
		return
	}
	staff, err := store.AllStaffUnder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch staff")
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff, "count": len(staff)})
}

// GetUnitPlans handles GET /api/units/:id/plans
func GetUnitPlans(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	plans, err := planStore().ListByUnit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

// GetParticipatingPlans handles GET /api/units/:id/participating-plans
// Returns the plans in which the unit is assigned at least one task.
func GetParticipatingPlans(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	plans, err := planStore().ListParticipating(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

// DeleteUnit handles DELETE /api/units/:id
func DeleteUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := directoryStore().DeleteUnit(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete unit")
		return
	}
	c.Status(http.StatusNoContent)
}
