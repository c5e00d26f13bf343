package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentacheck/internal/domain"
)

// Searcher is the retrieval contract the handler depends on.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64) []domain.RagMatch
}

// RagHandler exposes the retrieval client as a diagnostic endpoint.
type RagHandler struct {
	client Searcher
}

// NewRagHandler creates a new RagHandler.
func NewRagHandler(client Searcher) *RagHandler {
	return &RagHandler{client: client}
}

type ragSearchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
}

// Search handles POST /api/v1/rag/search
func (h *RagHandler) Search(c *gin.Context) {
	var req ragSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "query is required")
		return
	}

	matches := h.client.Search(c.Request.Context(), req.Query, req.TopK, req.Threshold)
	if matches == nil {
		matches = []domain.RagMatch{}
	}
	RespondOK(c, gin.H{"matches": matches})
}
