package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xZumii/bleepblorp/internal/telemetry"
)

// RegisterDebugRoutes mounts operator-only helpers. Enabled via config in
// non-production environments.
func RegisterDebugRoutes(r gin.IRoutes, audit *telemetry.AuditEmitter) {
	r.POST("/debug/audit-test", func(c *gin.Context) {
		var req struct {
			Level string `json:"level"`
			Text  string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Level == "" {
			req.Level = "info"
		}
		if req.Text == "" {
			req.Text = "audit test event"
		}

		requestID := requestIDFromContext(c)
		audit.Emit(c.Request.Context(), req.Level, req.Text, requestID, auditUserID(c))
		c.JSON(http.StatusAccepted, gin.H{"request_id": requestID})
	})
}
