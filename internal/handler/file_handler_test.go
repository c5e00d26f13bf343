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

func signReadContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/files/sign-read", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestFileHandler_SignRead_Success(t *testing.T) {
	resolver := new(mocks.MockFileResolver)
	h := handler.NewFileHandler(resolver)

	resolved := []domain.ResolvedFile{
		{Path: "uploads/exo.xlsx", URL: "https://signed/exo.xlsx"},
		{Path: "uploads/predial.jpg", URL: "https://signed/predial.jpg"},
	}
	resolver.On("ResolveReadable", mock.Anything, []string{"uploads/exo.xlsx", "uploads/predial.jpg"}, int64(600)).
		Return(resolved, nil)

	c, w := signReadContext(t, `{"paths": ["uploads/exo.xlsx", "uploads/predial.jpg"], "expires_secs": 600}`)
	h.SignRead(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.([]interface{}), 2)
	resolver.AssertExpectations(t)
}

func TestFileHandler_SignRead_EmptyPaths(t *testing.T) {
	h := handler.NewFileHandler(new(mocks.MockFileResolver))

	c, w := signReadContext(t, `{"paths": []}`)
	h.SignRead(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileHandler_SignRead_ResolverError(t *testing.T) {
	resolver := new(mocks.MockFileResolver)
	h := handler.NewFileHandler(resolver)

	resolver.On("ResolveReadable", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	c, w := signReadContext(t, `{"paths": ["uploads/exo.xlsx"]}`)
	h.SignRead(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
