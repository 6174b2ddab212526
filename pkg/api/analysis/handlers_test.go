package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "screener_valuation/pkg/core/analysis"
	"screener_valuation/pkg/core/store"
)

const sampleCSV = `COMPANY NAME,XYZ Corp
Current Price,500
Market Capitalization,5000
PROFIT & LOSS
Report Date,2022-03-31,2023-03-31
Sales,100,120
Net profit,10,15
BALANCE SHEET
Report Date,2022-03-31,2023-03-31
Equity Share Capital,10,10
Reserves,40,50
Borrowings,20,30
`

func newServer(t *testing.T) (http.Handler, store.Repository) {
	t.Helper()
	repo := store.NewMemoryRepo()
	engine := core.NewEngine(nil, core.DefaultAssumptions(), zerolog.Nop())
	h := NewHandlers(engine, repo, 1, zerolog.Nop())

	r := chi.NewRouter()
	h.Routes(r)
	return r, repo
}

func upload(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyzeAndFetch(t *testing.T) {
	srv, _ := newServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "xyz.csv", sampleCSV, map[string]string{"assumptions": `{"wacc": 0.12, "growth": 0.1,}`}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep core.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "XYZ Corp", rep.Company)
	assert.Equal(t, 0.12, rep.Assumptions.WACC)
	assert.Equal(t, 0.1, rep.Assumptions.Growth)
	assert.Equal(t, core.WACCAssumed, rep.Valuation.WACCSource)
	require.NotEmpty(t, rep.ID)

	// JSON
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/"+rep.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stored core.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, rep.ID, stored.ID)

	// HTML
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/"+rep.ID+"/html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "XYZ Corp")

	// listing
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, rep.ID, list[0].ID)
}

func TestAnalyzeRejectsStructuralFailure(t *testing.T) {
	srv, repo := newServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "notes.csv", "hello,world\n", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"unsupported file format"}`, rec.Body.String())

	list, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyzeBadRequests(t *testing.T) {
	srv, _ := newServer(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"no file", upload(t, "", "", map[string]string{"x": "y"})},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString("{}"))},
		{"invalid assumptions", upload(t, "xyz.csv", sampleCSV, map[string]string{"assumptions": `{"growth": 5}`})},
		{"undecodable assumptions", upload(t, "xyz.csv", sampleCSV, map[string]string{"assumptions": `{"growth": "fast"}`})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetReportNotFound(t *testing.T) {
	srv, _ := newServer(t)
	for _, path := range []string{"/api/reports/nope", "/api/reports/nope/html"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
