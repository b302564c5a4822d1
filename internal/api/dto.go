package api

import (
	"github.com/starford/docmeta/internal/history"
	"github.com/starford/docmeta/internal/models"
	"github.com/starford/docmeta/internal/schema"
)

// ValidateRequest is the request body for validating a single document.
type ValidateRequest struct {
	Path    string `json:"path" example:"docs/frontend/hooks.md" validate:"required"`
	Content string `json:"content" example:"---\ntitle: Hooks\n---\n"`
}

// CategoryListResponse wraps the category table.
type CategoryListResponse struct {
	Categories []schema.Category `json:"categories" validate:"required"`
}

// TemplateResponse is a rendered front-matter skeleton.
type TemplateResponse struct {
	Category string `json:"category" example:"projects" validate:"required"`
	Template string `json:"template" validate:"required"`
}

// ValidateResponse is the outcome of validating one document.
type ValidateResponse = models.Result

// ReportResponse wraps a full scan.
type ReportResponse struct {
	RunID   string          `json:"run_id,omitempty"`
	Root    string          `json:"root" example:"docs" validate:"required"`
	Summary models.Summary  `json:"summary" validate:"required"`
	Results []models.Result `json:"results" validate:"required"`
}

// RunListResponse wraps recorded runs.
type RunListResponse struct {
	Runs []history.Run `json:"runs" validate:"required"`
}

// RunDetail is a recorded run with its issues.
type RunDetail = history.RunDetail
