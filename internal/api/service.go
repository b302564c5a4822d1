package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/docmeta/internal/apperr"
	"github.com/starford/docmeta/internal/history"
	"github.com/starford/docmeta/internal/models"
	"github.com/starford/docmeta/internal/report"
	"github.com/starford/docmeta/internal/scan"
	"github.com/starford/docmeta/internal/schema"
	"github.com/starford/docmeta/internal/validator"
)

// Service coordinates the validator, scanner and run history for the API layer.
type Service struct {
	validator *validator.Validator
	scanner   *scan.Scanner
	history   history.Store
}

// NewService creates a new API service. hist may be nil when history is disabled.
func NewService(v *validator.Validator, s *scan.Scanner, hist history.Store) *Service {
	return &Service{validator: v, scanner: s, history: hist}
}

// Categories returns every category schema in declaration order.
func (s *Service) Categories() []schema.Category {
	return s.validator.Table().Categories()
}

// Template renders the skeleton for a category. Unknown names carry the
// closest category in the error when one matches.
func (s *Service) Template(name string) (string, error) {
	tmpl, err := s.validator.Template(name)
	if errors.Is(err, apperr.ErrUnknownCategory) {
		if hint := s.validator.Table().Suggest(name); len(hint) > 0 {
			return "", fmt.Errorf("%w: did you mean %q?", err, hint[0])
		}
	}
	return tmpl, err
}

// Validate validates a single document supplied by the caller.
func (s *Service) Validate(path string, content []byte) models.Result {
	return s.validator.Validate(path, content)
}

// Report scans the whole document tree. When record is set and history is
// enabled, the run is stored and its ID returned.
func (s *Service) Report(ctx context.Context, record bool) (*report.Report, string, error) {
	rep, err := s.scanner.Run(ctx)
	if err != nil {
		return nil, "", err
	}
	if !record || s.history == nil {
		return rep, "", nil
	}
	id, err := s.history.Record(rep)
	if err != nil {
		return nil, "", fmt.Errorf("record run: %w", err)
	}
	return rep, id, nil
}

// Runs lists recorded runs, newest first.
func (s *Service) Runs(limit int) ([]history.Run, error) {
	if s.history == nil {
		return nil, errHistoryDisabled
	}
	return s.history.Runs(limit)
}

// Run returns one recorded run with its issues.
func (s *Service) Run(id string) (*history.RunDetail, error) {
	if s.history == nil {
		return nil, errHistoryDisabled
	}
	d, err := s.history.Run(id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

var errHistoryDisabled = fmt.Errorf("history disabled: %w", apperr.ErrNotFound)
