package respond

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n": 1}`, rec.Body.String())
}

func TestJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]float64{"value": math.NaN()})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "encode response")
}

func TestDecode(t *testing.T) {
	var v struct{ A int }

	rec := httptest.NewRecorder()
	assert.True(t, Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"A": 2}`)), &v))
	assert.Equal(t, 2, v.A)

	rec = httptest.NewRecorder()
	assert.False(t, Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	big := `{"A": 1, "pad": "` + strings.Repeat("x", MaxBodyBytes) + `"}`
	assert.False(t, Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big)), &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMethodAndCORS(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.False(t, Method(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.MethodPost))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = httptest.NewRecorder()
	assert.True(t, CORS(rec, httptest.NewRequest(http.MethodOptions, "/", nil), http.MethodPost))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
