package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"delegation-api/internal/models"
	"delegation-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestStaffHandlers(t *testing.T) {
	r, db := newTestRouter(t)
	public := newPublicRouter()
	public.POST("/api/staff", CreateStaff)
	r.GET("/api/staff", GetAllStaff)
	r.PUT("/api/staff/:id", UpdateStaff)
	r.DELETE("/api/staff/:id", DeleteStaff)

	w := doJSON(public, http.MethodPost, "/api/staff", "", map[string]string{"name": "Bob", "email": "bob@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	var bob models.StaffSummary
	decode(t, w, &bob)
	require.NotContains(t, w.Body.String(), "password")

	w = doJSON(public, http.MethodPost, "/api/staff", "", map[string]string{"name": "Bob 2", "email": "bob@example.com"})
	require.Equal(t, http.StatusConflict, w.Code)

	admin := testutil.SeedStaff(t, db, "Admin")
	token := tokenFor(t, admin.ID)

	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/staff/%d", bob.ID), token, map[string]string{"name": "Robert", "email": "bob@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Robert")

	w = doJSON(r, http.MethodGet, "/api/staff", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	require.Equal(t, 2, list.Count)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/staff/%d", bob.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/staff/%d", bob.ID), token, map[string]string{"name": "Ghost", "email": "ghost@example.com"})
	require.Equal(t, http.StatusNotFound, w.Code)
}
