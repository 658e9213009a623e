package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rotaboard/rota-api/internal/models"
)

func performWithClaims(t *testing.T, claims *models.JWTClaims, guard gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/guarded", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	w := performWithClaims(t, &models.JWTClaims{Role: models.RoleAdmin}, RequireRoles(models.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	w := performWithClaims(t, &models.JWTClaims{Role: models.RoleMember}, RequireRoles(models.RoleAdmin))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsAnonymous(t *testing.T) {
	w := performWithClaims(t, nil, RequireRoles(models.RoleAdmin))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
