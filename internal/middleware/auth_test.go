package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"delegation-api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(seen *uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware())
	r.GET("/protected", func(c *gin.Context) {
		*seen = StaffID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	var seen uint
	r := newProtectedRouter(&seen)

	token, err := auth.GenerateToken(42, "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, uint(42), seen)
}

func TestJWTAuthMiddleware_QueryToken(t *testing.T) {
	var seen uint
	r := newProtectedRouter(&seen)

	token, err := auth.GenerateToken(5, "bob")
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, uint(5), seen)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	var seen uint
	r := newProtectedRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, seen)
}

func TestJWTAuthMiddleware_BadToken(t *testing.T) {
	var seen uint
	r := newProtectedRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
