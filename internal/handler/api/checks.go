package api

import (
	"errors"
	"io"
	"net/http"

	"school-notifier/internal/domain/notice"
	reqdto "school-notifier/internal/handler/dto/request"
	resdto "school-notifier/internal/handler/dto/response"
	"school-notifier/internal/handler/httperr"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/checks"

	"github.com/gin-gonic/gin"
)

type CheckHandler struct {
	invoker checks.Invoker
}

func NewCheckHandler(invoker checks.Invoker) *CheckHandler {
	return &CheckHandler{invoker: invoker}
}

// RunAll runs every check sequentially, or only those listed in the body.
// It always answers 200; per-check failures are reported in the body.
func (h *CheckHandler) RunAll(c *gin.Context) {
	var req reqdto.RunChecksRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	var report checks.Report
	if len(req.Checks) == 0 {
		report = h.invoker.RunAll(c.Request.Context())
	} else {
		kinds := make([]notice.Kind, 0, len(req.Checks))
		for _, name := range req.Checks {
			kind, err := notice.ParseKind(name)
			if err != nil {
				httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
				return
			}
			kinds = append(kinds, kind)
		}
		report = h.invoker.RunSelected(c.Request.Context(), kinds)
	}

	resp, err := resdto.FromCheckReport(report)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to build response", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckHandler) RunOne(c *gin.Context) {
	kind, err := notice.ParseKind(c.Param("kind"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Unknown check", nil)
		return
	}

	res, err := h.invoker.Run(c.Request.Context(), kind)
	switch {
	case errs.Is(err, checks.ErrUnknownCheck):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Unknown check", nil)
		return
	case errs.Is(err, checks.ErrCheckRunning):
		httperr.AbortWithError(c, http.StatusConflict, err, "Check already running", gin.H{"check": kind.String()})
		return
	}

	resp, convErr := resdto.FromCheckResult(res)
	if convErr != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, convErr, "Failed to build response", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}
