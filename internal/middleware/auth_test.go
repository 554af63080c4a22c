package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xZumii/bleepblorp/internal/models"
)

type stubValidator struct {
	user models.User
	err  error
}

func (s stubValidator) Validate(ctx context.Context, token string) (models.User, error) {
	return s.user, s.err
}

func setupAuthRouter(validator SessionValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", SessionAuth(validator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString("userID"),
			"screen_name": c.GetString("screenName"),
		})
	})
	return r
}

func TestSessionAuthMissingHeader(t *testing.T) {
	router := setupAuthRouter(stubValidator{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthMalformedHeader(t *testing.T) {
	router := setupAuthRouter(stubValidator{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "token abc def")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthInvalidToken(t *testing.T) {
	router := setupAuthRouter(stubValidator{err: errors.New("expired")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthSuccess(t *testing.T) {
	router := setupAuthRouter(stubValidator{user: models.User{ID: "u1", ScreenName: "Zed"}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer live")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Zed")
}
