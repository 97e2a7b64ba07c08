package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenized_valuation/pkg/core/agent"
	"tokenized_valuation/pkg/core/llm"
)

type stubProvider struct{}

func (stubProvider) GenerateResponse(context.Context, string, string, map[string]interface{}) (string, error) {
	return "{}", nil
}

func (stubProvider) AdaptInstructions(raw string) string { return raw }

func newMux() *http.ServeMux {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "gemini"}, map[string]llm.Provider{
		"gemini":   stubProvider{},
		"deepseek": stubProvider{},
	}, nil)
	mux := http.NewServeMux()
	NewHandler(mgr, nil).Register(mux)
	return mux
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleConfig(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "gemini", resp.ActiveProvider)
	assert.Equal(t, []string{"deepseek", "gemini"}, resp.Available)
}

func TestHandleSwitch(t *testing.T) {
	mux := newMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config/switch", strings.NewReader(`{"provider":"deepseek"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deepseek", decode(t, rec).ActiveProvider)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config/switch", strings.NewReader(`{"provider":"missing"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/config/switch", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
