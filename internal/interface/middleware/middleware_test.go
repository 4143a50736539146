package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":    c.GetString(CtxUserIDKey),
			"role":    c.GetString(CtxRoleKey),
			"request": c.GetString("request_id"),
		})
	})...)
	return r
}

func get(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Minute)
	r := newEngine(Auth(jwt))

	tok, _, err := jwt.GenerateToken("7", helpers.RoleUser)
	require.NoError(t, err)
	w := get(r, map[string]string{"Authorization": "Bearer " + tok})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"7"`)
	assert.Contains(t, w.Body.String(), `"role":"user"`)

	assert.Equal(t, http.StatusUnauthorized, get(r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Basic abc"}).Code)

	foreign, _, _ := helpers.NewJWTManager("other", time.Minute).GenerateToken("7", helpers.RoleOperator)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Bearer " + foreign}).Code)

	expired, _, _ := helpers.NewJWTManager("secret", -time.Minute).GenerateToken("7", helpers.RoleUser)
	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Bearer " + expired}).Code)
}

func TestRequireOperator(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Minute)
	r := newEngine(Auth(jwt), RequireOperator())

	user, _, _ := jwt.GenerateToken("7", helpers.RoleUser)
	op, _, _ := jwt.GenerateToken("1", helpers.RoleOperator)
	assert.Equal(t, http.StatusForbidden, get(r, map[string]string{"Authorization": "Bearer " + user}).Code)
	assert.Equal(t, http.StatusOK, get(r, map[string]string{"Authorization": "Bearer " + op}).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	w := get(r, nil)
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), id)

	given := uuid.NewString()
	w = get(r, map[string]string{RequestIDHeader: given})
	assert.Equal(t, given, w.Header().Get(RequestIDHeader))

	w = get(r, map[string]string{RequestIDHeader: "<script>"})
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestRateLimit_WithoutRedisPassesThrough(t *testing.T) {
	r := newEngine(RateLimit(nil, 1, time.Minute, KeyByIPAndPath(), nil))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, nil).Code)
	}
}

func TestPrivateOnly(t *testing.T) {
	r := newEngine(RealIP(), PrivateOnly())

	assert.Equal(t, http.StatusOK, get(r, map[string]string{"X-Forwarded-For": "10.1.2.3, 203.0.113.9"}).Code)
	assert.Equal(t, http.StatusOK, get(r, map[string]string{"CF-Connecting-IP": "127.0.0.1"}).Code)
	assert.Equal(t, http.StatusForbidden, get(r, map[string]string{"X-Forwarded-For": "203.0.113.9"}).Code)
}
