package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_revenue/internal/utils"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("user_id")) })
	return r
}

func doRequest(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	r := newRouter(NewJWTMiddleware("secret", NewInvalidAuthRateLimiter(5, time.Minute)).Handle())

	token, err := utils.GenerateJWT("u-42", "ops@example.com", "secret", time.Hour)
	require.NoError(t, err)

	w := doRequest(r, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-42", w.Body.String())

	w = doRequest(r, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, "Authorization", "Token "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, "Authorization", "Bearer nope")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_TOKEN", body.Error.Code)
	assert.NotEmpty(t, body.Meta.RequestID)
}

func TestJWTMiddlewareThrottlesInvalidAttempts(t *testing.T) {
	r := newRouter(NewJWTMiddleware("secret", NewInvalidAuthRateLimiter(2, time.Minute)).Handle())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Authorization", "Bearer bad").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Authorization", "Bearer bad").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "Authorization", "Bearer bad").Code)
}

func TestInvalidAuthRateLimiterWindow(t *testing.T) {
	rl := NewInvalidAuthRateLimiter(1, time.Minute)
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	rl.evictExpired()
	assert.Empty(t, rl.attempts)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"dash.example.com"}))

	w := doRequest(r, "Origin", "https://dash.example.com:443/")
	assert.Equal(t, "https://dash.example.com:443", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(r, "Referer", "https://dash.example.com/reports/today")
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(r, "Origin", "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
