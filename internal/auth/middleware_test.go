package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProtectedRouter(secret []byte, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{RequireAuth(secret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	router.GET("/protected", handlers...)
	return router
}

func requestWithCookie(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireAuth_ValidCookie(t *testing.T) {
	router := setupProtectedRouter(testSecret)

	token, err := IssueToken(testSecret, time.Hour, 7, "reader1", "Reader")
	require.NoError(t, err)

	resp := requestWithCookie(router, token)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"user_id":7`)
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	router := setupProtectedRouter(testSecret)

	resp := requestWithCookie(router, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	router := setupProtectedRouter(testSecret)

	token, err := IssueToken(testSecret, -time.Minute, 7, "reader1", "Reader")
	require.NoError(t, err)

	resp := requestWithCookie(router, token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequireRoles_AllowsListedRole(t *testing.T) {
	router := setupProtectedRouter(testSecret, "Admin", "Librarian")

	token, err := IssueToken(testSecret, time.Hour, 3, "librarian1", "Librarian")
	require.NoError(t, err)

	resp := requestWithCookie(router, token)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRequireRoles_RejectsOtherRole(t *testing.T) {
	router := setupProtectedRouter(testSecret, "Admin")

	token, err := IssueToken(testSecret, time.Hour, 7, "reader1", "Reader")
	require.NoError(t, err)

	resp := requestWithCookie(router, token)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
