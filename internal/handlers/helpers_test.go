package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"delegation-api/internal/auth"
	"delegation-api/internal/database"
	"delegation-api/internal/middleware"
	"delegation-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestRouter installs a fresh in-memory database and returns an authenticated router.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := testutil.NewTestDB(t)
	database.DB = db

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	return r, db
}

func newPublicRouter() *gin.Engine {
	return gin.New()
}

func tokenFor(t *testing.T, staffID uint) string {
	t.Helper()
	token, err := auth.GenerateToken(staffID, "tester")
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

