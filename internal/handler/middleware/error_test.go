//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"school-notifier/internal/handler/httperr"
	"school-notifier/internal/handler/middleware"
	"school-notifier/tests/common/httptest"

	"github.com/gin-gonic/gin"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CustomRecovery(), middleware.ErrorHandler())

	router.GET("/public", func(c *gin.Context) {
		httperr.AbortWithError(c, http.StatusConflict, errors.New("busy"), "Check already running", nil)
	})
	router.GET("/private", func(c *gin.Context) {
		_ = c.Error(errors.New("hidden"))
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	t.Run("public error keeps its status and message", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/public", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusConflict, "Check already running")
	})

	t.Run("private error becomes 500", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/private", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "Internal server error")
	})

	t.Run("panic is recovered", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/panic", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "Internal server error")
	})
}
