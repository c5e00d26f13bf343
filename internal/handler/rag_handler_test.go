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
	"rentacheck/internal/handler"
	"rentacheck/mocks"
)

func ragContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/rag/search", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestRagHandler_Search_Success(t *testing.T) {
	client := new(mocks.MockRetriever)
	h := handler.NewRagHandler(client)

	client.On("Search", mock.Anything, "tope consignaciones", 5, 0.7).
		Return([]domain.RagMatch{{Content: "1400 UVT", Source: "ET art. 594-3", Similarity: 0.91}})

	c, w := ragContext(t, `{"query": "tope consignaciones", "top_k": 5, "threshold": 0.7}`)
	h.Search(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	matches := data["matches"].([]interface{})
	assert.Len(t, matches, 1)
	client.AssertExpectations(t)
}

func TestRagHandler_Search_MissingQuery(t *testing.T) {
	h := handler.NewRagHandler(new(mocks.MockRetriever))

	c, w := ragContext(t, `{"top_k": 5}`)
	h.Search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRagHandler_Search_DegradedSearchYieldsEmptyList(t *testing.T) {
	client := new(mocks.MockRetriever)
	h := handler.NewRagHandler(client)

	client.On("Search", mock.Anything, "q", 0, 0.0).Return(nil)

	c, w := ragContext(t, `{"query": "q"}`)
	h.Search(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	matches, ok := data["matches"].([]interface{})
	assert.True(t, ok)
	assert.Empty(t, matches)
}
