package handlers

import (
	"net/http"

	"delegation-api/internal/directory"

	"github.com/gin-gonic/gin"
)

// GetAllStaff returns all staff (protected)
// GET /api/staff
func GetAllStaff(c *gin.Context) {
	staff, err := directoryStore().ListStaff(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staff": staff,
		"count": len(staff),
	})
}

// CreateStaff registers a staff member (public, used for sign-up)
// POST /api/staff
func CreateStaff(c *gin.Context) {
	var req directory.StaffInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := directoryStore()
	existing, err := store.FindStaffByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Failed to create staff")
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	staff, err := store.CreateStaff(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create staff")
		return
	}
	c.JSON(http.StatusCreated, staff.Summary())
}

// UpdateStaff handles PUT /api/staff/:id
func UpdateStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req directory.StaffInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staff, err := directoryStore().UpdateStaff(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update staff")
		return
	}
	c.JSON(http.StatusOK, staff.Summary())
}

// DeleteStaff handles DELETE /api/staff/:id
func DeleteStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := directoryStore().DeleteStaff(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete staff")
		return
	}
	c.Status(http.StatusNoContent)
}
