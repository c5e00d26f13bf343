package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rentacheck/internal/domain"
	"rentacheck/internal/engine"
	"rentacheck/internal/middleware"
)

// Decider is the decision engine contract the handler depends on.
type Decider interface {
	Decide(ctx context.Context, req domain.DecisionRequest, correlationID string) (*domain.DecisionCandidate, error)
}

// AnalyzeHandler serves the decision endpoint.
type AnalyzeHandler struct {
	engine Decider
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(engine Decider) *AnalyzeHandler {
	return &AnalyzeHandler{engine: engine}
}

// decisionResponse is the accepted decision augmented with the
// request's correlation identifier.
type decisionResponse struct {
	domain.DecisionCandidate
	CorrelationID string `json:"correlationId"`
}

// terminalResponse is the diagnostic payload for exhausted attempts.
type terminalResponse struct {
	Error            string      `json:"error"`
	ValidationErrors []string    `json:"validation_errors"`
	Candidate        interface{} `json:"candidate"`
	CorrelationID    string      `json:"correlationId"`
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	var req domain.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is invalid")
		return
	}
	if req.AnioGravable == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_YEAR", "anio_gravable is required")
		return
	}

	counts := req.Archivos.Counts()
	log.Printf("[%s] analyze: anio=%d exogena=%d prediales=%d vehiculos=%d",
		correlationID, req.AnioGravable, counts.Exogena, counts.Prediales, counts.Vehiculos)

	start := time.Now()
	cand, err := h.engine.Decide(c.Request.Context(), req, correlationID)
	if err != nil {
		var terminal *engine.TerminalError
		if errors.As(err, &terminal) {
			log.Printf("[%s] analyze: terminal failure after %s: %v",
				correlationID, time.Since(start), terminal.Violations)
			c.JSON(http.StatusBadGateway, terminalResponse{
				Error:            "Structured output validation failed",
				ValidationErrors: terminal.Violations,
				Candidate:        terminal.Candidate,
				CorrelationID:    correlationID,
			})
			return
		}
		HandleError(c, err)
		return
	}

	log.Printf("[%s] analyze: decided in %s (debe_declarar=%t)", correlationID, time.Since(start), cand.DebeDeclarar)
	c.JSON(http.StatusOK, decisionResponse{DecisionCandidate: *cand, CorrelationID: correlationID})
}
