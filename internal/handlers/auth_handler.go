package handlers

import (
	"net/http"

	"delegation-api/internal/auth"
	"delegation-api/internal/database"
	"delegation-api/internal/directory"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token   string `json:"token"`
	StaffID uint   `json:"staffId"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Login exchanges staff credentials for a bearer token
// POST /api/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Email and password are required.",
		})
		return
	}

	staff, err := directory.New(database.GetDB()).FindStaffByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Failed to look up staff")
		return
	}
	if staff == nil || !auth.CheckPassword(staff.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(staff.ID, staff.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		StaffID: staff.ID,
		Name:    staff.Name,
		Message: "Login successful",
	})
}
