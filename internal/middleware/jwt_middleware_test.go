package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.GenerateToken(42, "bob@example.com", "user")
	require.NoError(t, err)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ID)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a", time.Hour).GenerateToken(1, "a@x.com", "user")
	require.NoError(t, err)

	_, err = NewJWT("secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	j := NewJWT("test-secret", -time.Minute)
	token, err := j.GenerateToken(1, "a@x.com", "user")
	require.NoError(t, err)

	_, err = j.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	_, err := j.Parse("not-a-jwt")
	assert.Error(t, err)
}

func protectedEcho(j *JWT) *echo.Echo {
	e := echo.New()
	g := e.Group("")
	g.Use(j.Middleware())
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"email": GetClaims(c).Email})
	})
	return e
}

func TestMiddlewareBearerHeader(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	e := protectedEcho(j)

	token, err := j.GenerateToken(1, "bob@example.com", "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob@example.com")
}

func TestMiddlewareCookieFallback(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	e := protectedEcho(j)

	token, err := j.GenerateToken(1, "bob@example.com", "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRejects(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	e := protectedEcho(j)

	cases := map[string]func(*http.Request){
		"no token":         func(r *http.Request) {},
		"malformed header": func(r *http.Request) { r.Header.Set("Authorization", "Bearer") },
		"bad token":        func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") },
		"wrong scheme":     func(r *http.Request) { r.Header.Set("Authorization", "Basic junk") },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	e := echo.New()
	g := e.Group("/admin")
	g.Use(j.Middleware(), AdminOnly)
	g.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	adminToken, err := j.GenerateToken(1, "root@x.com", "admin")
	require.NoError(t, err)
	userToken, err := j.GenerateToken(2, "bob@x.com", "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
