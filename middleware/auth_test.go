package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/E-Commerce-backend/storefront/common/auth"
)

func setupRouter(validator *auth.TokenValidator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(validator)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, err := GetIdentity(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "role": id.Role, "email": id.Email})
	})
	r.GET("/whoami", handlers...)
	return r
}

func TestAuthMiddleware_Headers(t *testing.T) {
	r := setupRouter(nil)

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Role", "customer")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
	assert.Contains(t, w.Body.String(), `"role":"customer"`)
}

func TestAuthMiddleware_CookieFallback(t *testing.T) {
	r := setupRouter(nil)

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "user_id", Value: "u2"})
	req.AddCookie(&http.Cookie{Name: "user_email", Value: "u2@example.com"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"u2@example.com"`)
}

func TestAuthMiddleware_Missing(t *testing.T) {
	r := setupRouter(nil)

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func signedAccessToken(t *testing.T, secret, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"typ":  "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	r := setupRouter(auth.NewTokenValidator("s3cret"))

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signedAccessToken(t, "s3cret", "u3", "seller"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u3"`)

	req, _ = http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signedAccessToken(t, "wrong", "u3", "seller"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := setupRouter(nil, RequireRole("seller", "admin"))

	for role, want := range map[string]int{"seller": http.StatusOK, "admin": http.StatusOK, "customer": http.StatusForbidden, "": http.StatusForbidden} {
		req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-ID", "u1")
		req.Header.Set("X-User-Role", role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %q", role)
	}
}
