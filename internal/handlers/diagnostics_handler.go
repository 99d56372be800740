package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nyumba-homes/marketplace/internal/services"
)

// DiagnosticsHandler exposes the tracking self-tests.
type DiagnosticsHandler struct {
	service services.DiagnosticsService
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler instance.
func NewDiagnosticsHandler(service services.DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{service: service}
}

// TestTracking handles GET /api/test-tracking.
// Returns 500 with the step report when any step failed.
func (h *DiagnosticsHandler) TestTracking(c *gin.Context) {
	report := h.service.TestTracking(c.Request.Context())
	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, report)
}

// Diagnose handles GET /api/diagnose-tracking.
func (h *DiagnosticsHandler) Diagnose(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Diagnose(c.Request.Context()))
}
