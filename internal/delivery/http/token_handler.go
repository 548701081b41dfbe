package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type RegisterTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type TokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *Handler) bindToken(c *gin.Context) (string, bool) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return "", false
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		badRequest(c, "token is required")
		return "", false
	}
	return token, true
}

// RegisterToken handles POST /api/tokens/register
func (h *Handler) RegisterToken(c *gin.Context) {
	token, ok := h.bindToken(c)
	if !ok {
		return
	}
	if err := h.tokens.Register(c.Request.Context(), token); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "failed to register token")
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		Success: true,
		Message: "Token registered successfully",
		Count:   h.tokens.Count(),
	})
}

// UnregisterToken handles POST /api/tokens/unregister
func (h *Handler) UnregisterToken(c *gin.Context) {
	token, ok := h.bindToken(c)
	if !ok {
		return
	}
	if err := h.tokens.Unregister(c.Request.Context(), token); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "failed to unregister token")
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		Success: true,
		Message: "Token unregistered successfully",
		Count:   h.tokens.Count(),
	})
}

func (h *Handler) TokenCount(c *gin.Context) {
	c.JSON(http.StatusOK, TokenResponse{
		Success: true,
		Message: "Token count retrieved",
		Count:   h.tokens.Count(),
	})
}
