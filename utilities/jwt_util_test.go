package utilities

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	tm := newTestTokens()
	access, refresh, err := tm.GenerateTokens(TokenSubject{UserID: 7, Username: "ana", Role: "admin"})
	require.NoError(t, err)

	claims, err := tm.ValidateToken(access, false)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "7", claims.Subject)

	_, err = tm.ValidateToken(refresh, true)
	require.NoError(t, err)

	// Tokens are not interchangeable.
	_, err = tm.ValidateToken(access, true)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ValidateToken(refresh, false)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	tm := newTestTokens()
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }
	access, _, err := tm.GenerateTokens(TokenSubject{UserID: 1, Username: "x", Role: "creator"})
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = tm.ValidateToken(access, false)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("other", "other-refresh", time.Minute, time.Minute)
	foreign, _, err := other.GenerateTokens(TokenSubject{UserID: 1})
	require.NoError(t, err)
	_, err = newTestTokens().ValidateToken(foreign, false)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.ValidateToken("not-a-token", false)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens(t *testing.T) {
	tm := newTestTokens()
	_, refresh, err := tm.GenerateTokens(TokenSubject{UserID: 3, Username: "luis", Role: "creator"})
	require.NoError(t, err)

	access, newRefresh, claims, err := tm.RefreshTokens(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newRefresh)
	assert.Equal(t, uint(3), claims.UserID)

	got, err := tm.ValidateToken(access, false)
	require.NoError(t, err)
	assert.Equal(t, "luis", got.Username)

	_, _, _, err = tm.RefreshTokens(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthMiddlewareAndRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := newTestTokens()

	r := gin.New()
	r.GET("/me", AuthMiddleware(tm), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "role": c.GetString(CtxRole)})
	})
	r.GET("/admin", AuthMiddleware(tm), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	creator, _, err := tm.GenerateTokens(TokenSubject{UserID: 4, Username: "c", Role: "creator"})
	require.NoError(t, err)

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "Bearer garbage").Code)

	w := do("/me", "Bearer "+creator)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":4,"role":"creator"}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, do("/admin", "Bearer "+creator).Code)
}
