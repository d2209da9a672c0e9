package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"school-notifier/internal/handler/httperr"
	"school-notifier/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the most recent public error when a handler aborted
// without writing a body. Private errors never leak their message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors.ByType(gin.ErrorTypePrivate) {
			slog.ErrorContext(c.Request.Context(), "unhandled request error",
				"request_id", GetRequestID(c),
				"path", c.Request.URL.Path,
				"error", e.Err.Error(),
				"stack", errs.ExtractStackLines(e.Err, 12))
		}

		if c.Writer.Written() {
			return
		}

		if public := c.Errors.ByType(gin.ErrorTypePublic); len(public) > 0 {
			if resp, ok := public.Last().Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}

		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError, httperr.NewResponse(c, http.StatusInternalServerError, "Internal server error", nil))
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(c.Request.Context(), "recovered from panic",
					"request_id", GetRequestID(c),
					"path", c.Request.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()))
				httperr.Abort(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
