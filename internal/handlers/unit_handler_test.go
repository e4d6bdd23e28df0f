package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"delegation-api/internal/directory"
	"delegation-api/internal/models"
	"delegation-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestUnitHandlers(t *testing.T) {
	r, db := newTestRouter(t)
	r.POST("/api/units", CreateUnit)
	r.GET("/api/units", GetUnits)
	r.DELETE("/api/units/:id", DeleteUnit)
	r.GET("/api/units/:id/structure", GetUnitStructure)
	r.GET("/api/units/:id/children", GetUnitChildren)
	r.GET("/api/units/:id/staff", GetUnitStaff)
	r.POST("/api/units/:id/staff", AddUnitStaff)
	r.GET("/api/units/:id/all-staff", GetAllStaffUnderUnit)

	ann := testutil.SeedStaff(t, db, "Ann")
	token := tokenFor(t, ann.ID)

	w := doJSON(r, http.MethodPost, "/api/units", token, map[string]any{
		"name":  "HQ",
		"level": "ROOT",
		"children": []map[string]any{
			{"name": "Ops", "level": "DEPARTMENT"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var hq directory.UnitNode
	decode(t, w, &hq)
	require.Len(t, hq.Children, 1)
	ops := hq.Children[0]

	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/units?parentId=%d", ops.ID), token, map[string]any{"name": "Ops Team"})
	require.Equal(t, http.StatusCreated, w.Code)
	var team directory.UnitNode
	decode(t, w, &team)

	w = doJSON(r, http.MethodPost, "/api/units?parentId=999", token, map[string]any{"name": "Lost"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/units", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var forest struct {
		Units []directory.UnitNode `json:"units"`
	}
	decode(t, w, &forest)
	require.Len(t, forest.Units, 1)
	require.Equal(t, "Ops Team", forest.Units[0].Children[0].Children[0].Name)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/units/%d/structure", ops.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/units/%d/children", hq.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var children struct {
		Units []models.UnitSummary `json:"units"`
	}
	decode(t, w, &children)
	require.Len(t, children.Units, 1)

	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/units/%d/staff", ops.ID), token, map[string]any{"staffIds": []uint{ann.ID, 404}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/units/%d/all-staff", hq.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var staff struct {
		Staff []models.StaffSummary `json:"staff"`
	}
	decode(t, w, &staff)
	require.Len(t, staff.Staff, 1)
	require.Equal(t, "Ann", staff.Staff[0].Name)

	w = doJSON(r, http.MethodGet, "/api/units/999/all-staff", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/units/%d", hq.ID), token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// a leaf with staff is still protected
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/units/%d/staff", team.ID), token, map[string]any{"staffIds": []uint{ann.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/units/%d", team.ID), token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/units/999", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
