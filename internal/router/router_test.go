package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"rentacheck/internal/handler"
	"rentacheck/internal/router"
	"rentacheck/mocks"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.Setup(
		handler.NewAnalyzeHandler(new(mocks.MockDecider)),
		handler.NewRagHandler(new(mocks.MockRetriever)),
		handler.NewFileHandler(new(mocks.MockFileResolver)),
		handler.NewHealthHandler(nil),
		[]string{"http://localhost:3000"},
	)
}

func TestSetup_Liveness(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-Id"))
}

func TestSetup_AnalyzeRouteRegistered(t *testing.T) {
	r := testRouter()

	// Empty body fails binding, proving the route reached the handler.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetup_RagSearchRouteRegistered(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/rag/search", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetup_SignReadRouteRegistered(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/files/sign-read", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetup_UnknownRouteIs404(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
