package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggerTestRouter(logger *logrus.Logger, config LoggerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.Logger = logger

	router := gin.New()
	router.Use(LoggerMiddleware(config))
	router.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestLoggerMiddleware_RedactsCredentialFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	router := newLoggerTestRouter(logger, LoggerConfig{EnableRequestBody: true})

	body := bytes.NewBufferString(`{"email":"mom@example.com","password":"hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, hook.Entries, 1)
	logged, ok := hook.LastEntry().Data["request_body"].(string)
	require.True(t, ok)
	assert.Contains(t, logged, "[REDACTED]")
	assert.NotContains(t, logged, "hunter2")
	assert.Contains(t, logged, "mom@example.com")
}

func TestLoggerMiddleware_SkipsConfiguredPaths(t *testing.T) {
	logger, hook := test.NewNullLogger()
	router := newLoggerTestRouter(logger, LoggerConfig{SkipPaths: []string{"/health"}})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, hook.Entries)
}

func TestLoggerMiddleware_EchoesRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	router := newLoggerTestRouter(logger, LoggerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "req-123", hook.LastEntry().Data["request_id"])
}

func TestRedactBody_NonJSONLoggedBySize(t *testing.T) {
	assert.Equal(t, "<9 bytes>", redactBody([]byte("not json!")))
}
