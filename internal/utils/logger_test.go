package utils

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewSlogLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))), buf
}

func TestContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(ContextLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		GetLoggerFromContext(c).Info("handled")
		c.Status(http.StatusNoContent)
	})

	t.Run("generates a request id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Contains(t, buf.String(), "request_id="+id)
		assert.Contains(t, buf.String(), "path=/ping")
	})

	t.Run("keeps the caller's request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Contains(t, buf.String(), "request_id=abc-123")
	})
}

func TestLogRequestLevels(t *testing.T) {
	logger, buf := bufferLogger()

	logger.LogRequest(http.MethodGet, "/a", 200, "1ms")
	assert.Contains(t, buf.String(), "level=INFO")

	buf.Reset()
	logger.LogRequest(http.MethodGet, "/a", 404, "1ms")
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	logger.LogRequest(http.MethodGet, "/a", 502, "1ms")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestForSessionAndLogError(t *testing.T) {
	logger, buf := bufferLogger()

	logger.ForSession("s-1", 7).LogError(errors.New("boom"), "Submit failed")
	out := buf.String()
	assert.Contains(t, out, "session_id=s-1")
	assert.Contains(t, out, "paper_id=7")
	assert.Contains(t, out, "error=boom")

	buf.Reset()
	logger.ForSession("s-2", 0).Info("no paper yet")
	assert.NotContains(t, buf.String(), "paper_id")
}

func TestGetLoggerFromContextFallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetLoggerFromContext(c))
	assert.NotNil(t, ToSlogLogger(NewLogger("production")))
}
