package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentacheck/internal/port"
)

// FileHandler exposes the file resolver to the serving layer.
type FileHandler struct {
	resolver port.FileResolver
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(resolver port.FileResolver) *FileHandler {
	return &FileHandler{resolver: resolver}
}

type signReadRequest struct {
	Paths       []string `json:"paths"`
	ExpiresSecs int64    `json:"expires_secs"`
}

// SignRead handles POST /api/v1/files/sign-read
func (h *FileHandler) SignRead(c *gin.Context) {
	var req signReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Paths) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "paths is required")
		return
	}

	resolved, err := h.resolver.ResolveReadable(c.Request.Context(), req.Paths, req.ExpiresSecs)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resolved)
}
