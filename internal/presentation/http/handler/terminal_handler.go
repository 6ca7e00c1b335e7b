package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint/internal/application/service"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/response"
)

// TerminalHandler reports on the card payment terminal.
type TerminalHandler struct {
	terminalService *service.TerminalService
}

// NewTerminalHandler creates a new terminal handler.
func NewTerminalHandler(terminalService *service.TerminalService) *TerminalHandler {
	return &TerminalHandler{terminalService: terminalService}
}

// GetStatus returns the current terminal connection status.
func (h *TerminalHandler) GetStatus(c *gin.Context) {
	status := h.terminalService.GetStatus(c.Request.Context())
	response.OK(c, "Terminal status retrieved", status)
}
