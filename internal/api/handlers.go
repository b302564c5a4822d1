package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docmeta/internal/apperr"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List category schemas
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: h.svc.Categories()})
}

// GetTemplate handles GET /api/categories/{name}/template.
//
//	@Summary		Render a front-matter skeleton for a category
//	@Tags			categories
//	@Produce		json
//	@Param			name	path		string	true	"Category name"
//	@Success		200		{object}	TemplateResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{name}/template [get]
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tmpl, err := h.svc.Template(name)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownCategory) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		slog.Error("render template failed", slog.String("category", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TemplateResponse{Category: name, Template: tmpl})
}

// Validate handles POST /api/validate.
//
//	@Summary		Validate one document's front matter
//	@Tags			validation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ValidateRequest	true	"Document to validate"
//	@Success		200		{object}	ValidateResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validate [post]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Validate(req.Path, []byte(req.Content)))
}

// Report handles GET /api/report.
//
//	@Summary		Validate the whole document tree
//	@Tags			validation
//	@Produce		json
//	@Param			record	query		bool	false	"Store the run in history"
//	@Success		200		{object}	ReportResponse
//	@Security		BearerAuth
//	@Router			/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	record, _ := strconv.ParseBool(r.URL.Query().Get("record"))
	rep, id, err := h.svc.Report(r.Context(), record)
	if err != nil {
		slog.Error("scan failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{
		RunID:   id,
		Root:    rep.Root,
		Summary: rep.Summary,
		Results: rep.WithIssues(),
	})
}

// ListRuns handles GET /api/runs.
//
//	@Summary		List recorded validation runs
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum runs"
//	@Success		200		{object}	RunListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.svc.Runs(limit)
	if err != nil {
		h.historyError(w, "list runs failed", err)
		return
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

// GetRun handles GET /api/runs/{id}.
//
//	@Summary		Get a recorded run with its issues
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"Run ID"
//	@Success		200	{object}	RunDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.svc.Run(id)
	if err != nil {
		h.historyError(w, "get run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) historyError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}
	slog.Error(msg, slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
