package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"designlab-backend/internal/domains/design/model"
)

type fakeDesignService struct {
	createResp  *model.GenerateDesignResponse
	createErr   error
	conceptResp *model.ConceptStatusResponse
	conceptErr  error
	gotRequest  model.GenerateDesignRequest
	gotDesignID string
}

func (f *fakeDesignService) CreateDesign(_ context.Context, req model.GenerateDesignRequest) (*model.GenerateDesignResponse, error) {
	f.gotRequest = req
	return f.createResp, f.createErr
}

func (f *fakeDesignService) GetConcept(_ context.Context, designID string) (*model.ConceptStatusResponse, error) {
	f.gotDesignID = designID
	return f.conceptResp, f.conceptErr
}

func setupRouter(svc *fakeDesignService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDesignHandler(svc)

	router := gin.New()
	router.POST("/designs", h.GenerateDesign)
	router.GET("/concepts/:id", h.GetConcept)
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

// ================================================
// POST /designs
// ================================================

func TestGenerateDesignSuccess(t *testing.T) {
	svc := &fakeDesignService{
		createResp: &model.GenerateDesignResponse{
			DesignID: "d1",
			Design:   &model.Design{Title: "Sunset Rider", Placements: []model.Placement{}},
		},
	}
	router := setupRouter(svc)

	w, env := doRequest(t, router, http.MethodPost, "/designs", gin.H{
		"brief":  "retro surf logo",
		"userId": "user-42",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var resp model.GenerateDesignResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "d1", resp.DesignID)
	assert.Equal(t, "Sunset Rider", resp.Design.Title)
	assert.Empty(t, resp.PreviewURL)

	assert.Equal(t, "retro surf logo", svc.gotRequest.Brief)
	assert.Equal(t, "user-42", svc.gotRequest.UserID)
}

func TestGenerateDesignInvalidBody(t *testing.T) {
	router := setupRouter(&fakeDesignService{})

	req := httptest.NewRequest(http.MethodPost, "/designs", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateDesignMissingBrief(t *testing.T) {
	router := setupRouter(&fakeDesignService{})

	w, env := doRequest(t, router, http.MethodPost, "/designs", gin.H{"userId": "user-42"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestGenerateDesignEmptyBriefError(t *testing.T) {
	svc := &fakeDesignService{createErr: model.NewEmptyBriefError()}
	router := setupRouter(svc)

	w, env := doRequest(t, router, http.MethodPost, "/designs", gin.H{"brief": "   "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, model.ErrCodeEmptyBrief, env.Error.Code)
}

func TestGenerateDesignProviderExhausted(t *testing.T) {
	svc := &fakeDesignService{createErr: model.NewProviderFailedError(errors.New("boom"))}
	router := setupRouter(svc)

	w, env := doRequest(t, router, http.MethodPost, "/designs", gin.H{"brief": "retro surf logo"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, model.ErrCodeProviderFailed, env.Error.Code)
}

func TestGenerateDesignUnknownErrorIs500(t *testing.T) {
	svc := &fakeDesignService{createErr: errors.New("something odd")}
	router := setupRouter(svc)

	w, _ := doRequest(t, router, http.MethodPost, "/designs", gin.H{"brief": "retro surf logo"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ================================================
// GET /concepts/:id
// ================================================

func TestGetConceptSuccess(t *testing.T) {
	svc := &fakeDesignService{
		conceptResp: &model.ConceptStatusResponse{
			Ready:      true,
			Design:     &model.Design{Title: "Sunset Rider", Placements: []model.Placement{}},
			PreviewURL: "https://cdn/p.png",
		},
	}
	router := setupRouter(svc)

	w, env := doRequest(t, router, http.MethodGet, "/concepts/d1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d1", svc.gotDesignID)

	var resp model.ConceptStatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Ready)
	assert.Equal(t, "https://cdn/p.png", resp.PreviewURL)
}

func TestGetConceptNotFound(t *testing.T) {
	svc := &fakeDesignService{conceptErr: model.NewDesignNotFoundError()}
	router := setupRouter(svc)

	w, env := doRequest(t, router, http.MethodGet, "/concepts/unknown", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, model.ErrCodeDesignNotFound, env.Error.Code)
}

func TestGetConceptSentinelNotFound(t *testing.T) {
	// Repositories return the bare sentinel; the handler maps it too.
	svc := &fakeDesignService{conceptErr: model.ErrDesignNotFound}
	router := setupRouter(svc)

	w, _ := doRequest(t, router, http.MethodGet, "/concepts/unknown", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
