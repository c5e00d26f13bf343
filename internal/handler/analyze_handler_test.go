package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"rentacheck/internal/domain"
	"rentacheck/internal/engine"
	"rentacheck/internal/handler"
	"rentacheck/mocks"
)

func analyzeContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestAnalyzeHandler_Success(t *testing.T) {
	mockEngine := new(mocks.MockDecider)
	h := handler.NewAnalyzeHandler(mockEngine)

	cand := &domain.DecisionCandidate{
		AnioGravable:       2024,
		DebeDeclarar:       true,
		Motivos:            []string{"Patrimonio supera el tope."},
		Resumen:            "Debe declarar.",
		UVT:                domain.UVTInfo{ValorUVTCOP: 47065, AnioUVT: 2024},
		VerificacionesRag:  []domain.RagVerification{{Consulta: "q", Fuente: "ET art. 592", Similitud: 0.8, Conclusion: "supera"}},
		ArchivosDetectados: domain.FileCounts{Exogena: 1},
	}
	mockEngine.On("Decide", mock.Anything, mock.AnythingOfType("domain.DecisionRequest"), mock.Anything).
		Return(cand, nil)

	c, w := analyzeContext(t, `{"anio_gravable": 2024, "archivos": {"exogena": [{"storage_path": "uploads/exo.xlsx"}]}}`)
	h.Analyze(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, true, resp["debe_declarar"])
	assert.Equal(t, float64(2024), resp["anio_gravable"])
	assert.Contains(t, resp, "correlationId")
	mockEngine.AssertExpectations(t)
}

func TestAnalyzeHandler_InvalidBody(t *testing.T) {
	h := handler.NewAnalyzeHandler(new(mocks.MockDecider))

	c, w := analyzeContext(t, `{"anio_gravable": "dosmil"}`)
	h.Analyze(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestAnalyzeHandler_MissingYear(t *testing.T) {
	h := handler.NewAnalyzeHandler(new(mocks.MockDecider))

	c, w := analyzeContext(t, `{"archivos": {"exogena": []}}`)
	h.Analyze(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MISSING_YEAR", resp.Error.Code)
}

func TestAnalyzeHandler_TerminalFailureIsBadGateway(t *testing.T) {
	mockEngine := new(mocks.MockDecider)
	h := handler.NewAnalyzeHandler(mockEngine)

	terminal := &engine.TerminalError{
		Violations: []string{"resumen must not be empty"},
		Candidate:  json.RawMessage(`{"anio_gravable": 2024}`),
	}
	mockEngine.On("Decide", mock.Anything, mock.Anything, mock.Anything).Return(nil, terminal)

	c, w := analyzeContext(t, `{"anio_gravable": 2024, "archivos": {}}`)
	h.Analyze(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Structured output validation failed", resp["error"])
	assert.Contains(t, resp, "validation_errors")
	assert.Contains(t, resp, "candidate")
	assert.Contains(t, resp, "correlationId")
}

func TestAnalyzeHandler_UnexpectedErrorIsInternal(t *testing.T) {
	mockEngine := new(mocks.MockDecider)
	h := handler.NewAnalyzeHandler(mockEngine)

	mockEngine.On("Decide", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	c, w := analyzeContext(t, `{"anio_gravable": 2024, "archivos": {}}`)
	h.Analyze(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
