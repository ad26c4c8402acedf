package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicui/enhance-go/enhance/fileinput"
	"github.com/civicui/enhance-go/enhance/inpagenav"
	"github.com/civicui/enhance-go/events"
	"github.com/civicui/enhance-go/models"
	"github.com/civicui/enhance-go/registry"
	"github.com/civicui/enhance-go/services"
)

func newTestRouter(secret string) (*gin.Engine, *registry.Registry) {
	gin.SetMode(gin.TestMode)

	reg := registry.NewRegistry()
	hub := services.NewHub()
	h := NewHandlers(
		reg,
		fileinput.NewEnhancer(reg, hub, 0, 64),
		inpagenav.NewEnhancer(reg, hub),
		events.NewProcessor(reg),
		hub,
	)

	r := gin.New()
	r.GET("/api/v1/health", h.HealthHandler)

	v1 := r.Group("/api/v1")
	v1.Use(AuthRequired(secret))
	{
		v1.POST("/enhance/file-input", h.EnhanceFileInputHandler)
		v1.POST("/enhance/in-page-nav", h.EnhanceInPageNavHandler)
		v1.POST("/targets/:id/events", h.ApplyEventsHandler)
		v1.GET("/targets/:id/fragment", h.GetFragmentHandler)
		v1.DELETE("/targets/:id", h.TeardownHandler)
	}
	return r, reg
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnhance(t *testing.T, w *httptest.ResponseRecorder) models.EnhanceResponse {
	t.Helper()
	var resp models.EnhanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestFileInputLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter("")

	// Enhance.
	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input",
		gin.H{"html": `<div class="usa-file-input"><input type="file"/></div>`}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	enhanced := decodeEnhance(t, w)
	require.NotEmpty(t, enhanced.TargetID)
	assert.Contains(t, enhanced.HTML, "usa-file-input__target")

	// Relay a drag event.
	w = doJSON(t, r, http.MethodPost, "/api/v1/targets/"+enhanced.TargetID+"/events",
		gin.H{"events": []gin.H{{"type": "dragenter"}}}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res models.EventResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.HTML, "usa-file-input--drag")

	// Fetch the fragment; a matching ETag short-circuits.
	w = doJSON(t, r, http.MethodGet, "/api/v1/targets/"+enhanced.TargetID+"/fragment", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, w.Body.String(), "usa-file-input--drag")

	w = doJSON(t, r, http.MethodGet, "/api/v1/targets/"+enhanced.TargetID+"/fragment", nil,
		map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, w.Code)

	// Teardown restores the original markup and unregisters the target.
	w = doJSON(t, r, http.MethodDelete, "/api/v1/targets/"+enhanced.TargetID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	restored := decodeEnhance(t, w)
	assert.NotContains(t, restored.HTML, "usa-file-input__target")
	assert.Contains(t, restored.HTML, `<input type="file"`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/targets/"+enhanced.TargetID+"/fragment", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnhanceFileInputErrorStatuses(t *testing.T) {
	r, _ := newTestRouter("")

	// No body.
	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No file input in the fragment.
	w = doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input",
		gin.H{"html": `<div class="usa-file-input"></div>`}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Input without a drop-zone container.
	w = doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input",
		gin.H{"html": `<div><input type="file"/></div>`}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Marker present but unknown to this process.
	w = doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input",
		gin.H{"html": `<div class="usa-file-input" data-enhanced="true"><input type="file"/></div>`}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEnhanceInPageNavOverHTTP(t *testing.T) {
	r, _ := newTestRouter("")

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance/in-page-nav",
		gin.H{"html": `<main><h2>Overview</h2></main><div class="usa-in-page-nav"></div>`}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeEnhance(t, w)
	assert.NotEmpty(t, resp.TargetID)
	assert.Contains(t, resp.HTML, "usa-in-page-nav__nav")
	assert.Contains(t, resp.HTML, `href="#overview"`)

	// Missing content root: 200, unmodified markup, no target.
	w = doJSON(t, r, http.MethodPost, "/api/v1/enhance/in-page-nav",
		gin.H{"html": `<div class="usa-in-page-nav" data-main-content-selector="#nope"></div>`}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeEnhance(t, w)
	assert.Empty(t, resp.TargetID)
	assert.NotContains(t, resp.HTML, "usa-in-page-nav__nav")

	// No container at all.
	w = doJSON(t, r, http.MethodPost, "/api/v1/enhance/in-page-nav",
		gin.H{"html": `<main><h2>Overview</h2></main>`}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyEventsUnknownTarget(t *testing.T) {
	r, _ := newTestRouter("")

	w := doJSON(t, r, http.MethodPost, "/api/v1/targets/ghost/events",
		gin.H{"events": []gin.H{{"type": "click"}}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRequired(t *testing.T) {
	const secret = "test-secret"
	r, _ := newTestRouter(secret)

	body := gin.H{"html": `<div class="usa-file-input"><input type="file"/></div>`}

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input", body,
		map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	w = doJSON(t, r, http.MethodPost, "/api/v1/enhance/file-input", body,
		map[string]string{"Authorization": "Bearer " + signed})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Health stays open.
	w = doJSON(t, r, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
