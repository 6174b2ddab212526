// Package analysis exposes the workbook analysis over HTTP.
package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	core "screener_valuation/pkg/core/analysis"
	"screener_valuation/pkg/core/config"
	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/report"
	"screener_valuation/pkg/core/store"
	"screener_valuation/pkg/core/utils"
)

// Handlers serves analysis requests.
type Handlers struct {
	engine    *core.Engine
	repo      store.Repository
	maxUpload int64
	log       zerolog.Logger
}

// NewHandlers creates the handler set. maxUploadMB bounds multipart uploads.
func NewHandlers(engine *core.Engine, repo store.Repository, maxUploadMB int, log zerolog.Logger) *Handlers {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &Handlers{
		engine:    engine,
		repo:      repo,
		maxUpload: int64(maxUploadMB) << 20,
		log:       log.With().Str("module", "analysis_handlers").Logger(),
	}
}

// Routes mounts every endpoint on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/reports", h.HandleListReports)
		r.Get("/reports/{id}", h.HandleGetReport)
		r.Get("/reports/{id}/html", h.HandleGetReportHTML)
	})
}

type errorResponse struct {
	Error    string            `json:"error"`
	Warnings []extract.Warning `json:"warnings,omitempty"`
}

// HandleHealth reports liveness.
// GET /healthz
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleAnalyze runs the full analysis on an uploaded workbook.
// POST /api/analyze (multipart: file, optional assumptions JSON)
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expected multipart form with a file field"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	// 1. Assumptions: engine defaults overlaid with the optional form field
	a, err := utils.SmartDecode(r.FormValue("assumptions"), h.engine.Assumptions)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := config.ValidateAssumptions(a); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	// 2. Analyse
	rep, err := h.engine.AnalyzeWorkbookWith(r.Context(), file, header.Filename, a)
	if err != nil {
		if errors.Is(err, extract.ErrStructural) {
			h.log.Warn().Err(err).Str("file", header.Filename).Msg("rejected upload")
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: extract.ErrStructural.Error()})
			return
		}
		h.log.Error().Err(err).Str("file", header.Filename).Msg("analysis failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analysis failed"})
		return
	}

	// 3. Persist
	if h.repo != nil {
		if err := h.repo.Save(r.Context(), rep); err != nil {
			h.log.Error().Err(err).Str("id", rep.ID).Msg("failed to save report")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save report"})
			return
		}
	}

	writeJSON(w, http.StatusOK, rep)
}

// HandleGetReport returns a stored report.
// GET /api/reports/{id}
func (h *Handlers) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleGetReportHTML renders a stored report as a page.
// GET /api/reports/{id}/html
func (h *Handlers) HandleGetReportHTML(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	page, err := report.HTML(rep)
	if err != nil {
		h.log.Error().Err(err).Str("id", rep.ID).Msg("failed to render report")
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// HandleListReports lists stored reports, newest first.
// GET /api/reports?limit=N
func (h *Handlers) HandleListReports(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusOK, []core.Summary{})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	list, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list reports")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list reports"})
		return
	}
	if list == nil {
		list = []core.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) load(w http.ResponseWriter, r *http.Request) (*core.Report, bool) {
	id := chi.URLParam(r, "id")
	if h.repo == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: store.ErrNotFound.Error()})
		return nil, false
	}
	rep, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: store.ErrNotFound.Error()})
			return nil, false
		}
		h.log.Error().Err(err).Str("id", id).Msg("failed to load report")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load report"})
		return nil, false
	}
	return rep, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore encode error - already committed response
}
