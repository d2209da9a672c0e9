//go:build unit

package middleware_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"school-notifier/internal/handler/httperr"
	"school-notifier/internal/handler/middleware"
	"school-notifier/internal/pkg/config"
	"school-notifier/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := middleware.NewLogger(config.LogConfig{Level: "error", TimeZone: "UTC", TimeFormat: "2006-01-02"})

	router := gin.New()
	router.Use(middleware.CustomRecovery(), logger.LoggingMiddleware(), middleware.ErrorHandler())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})
	router.GET("/fail", func(c *gin.Context) {
		httperr.Abort(c, http.StatusTeapot, "nope")
	})
	return router
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router := newLoggedRouter(t)

	t.Run("generates an ID when none is sent", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/id", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		id := rec.Header().Get(middleware.RequestIDHeader)
		assert.Len(t, id, 26)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("keeps an inbound ID", func(t *testing.T) {
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodGet, "/id", nil,
			map[string]string{middleware.RequestIDHeader: "abc-123"})
		assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "abc-123", rec.Body.String())
	})

	t.Run("replaces an oversized inbound ID", func(t *testing.T) {
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodGet, "/id", nil,
			map[string]string{middleware.RequestIDHeader: strings.Repeat("x", 65)})
		assert.Len(t, rec.Body.String(), 26)
	})

	t.Run("error bodies carry the request ID", func(t *testing.T) {
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodGet, "/fail", nil,
			map[string]string{middleware.RequestIDHeader: "req-1"})
		require.Equal(t, http.StatusTeapot, rec.Code)

		var body httperr.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "nope", body.Error.Message)
		assert.Equal(t, "req-1", body.RequestID)
	})
}
