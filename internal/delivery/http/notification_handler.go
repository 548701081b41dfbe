package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SendTestNotification handles POST /api/notifications/test
func (h *Handler) SendTestNotification(c *gin.Context) {
	if h.push == nil || !h.push.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "FCM not configured",
		})
		return
	}

	tokens := h.tokens.GetAll()
	if len(tokens) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "No registered devices",
			"count":   0,
		})
		return
	}

	data := map[string]string{
		"type":      "test",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	err := h.push.SendMulticast(c.Request.Context(), tokens,
		"Test Notification",
		"Screener notifications are working.",
		data)
	if err != nil {
		h.handleError(c, err, http.StatusBadGateway, "failed to send notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Test notification sent successfully",
		"count":   len(tokens),
	})
}
