// Package scan validates every Markdown document under a document root.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/starford/docmeta/internal/models"
	"github.com/starford/docmeta/internal/report"
	"github.com/starford/docmeta/internal/storage"
	"github.com/starford/docmeta/internal/validator"
)

// Scanner runs the validator over a storage provider.
type Scanner struct {
	store     storage.Provider
	validator *validator.Validator
	logger    *slog.Logger
	workers   int
	// base is the root's directory name; category resolution sees base/rel.
	base string
	// display is prefixed to root-relative paths in results, e.g. "docs".
	display string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers bounds the number of documents validated concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger used for recovered per-document failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDisplayRoot sets the prefix used for result paths.
func WithDisplayRoot(prefix string) Option {
	return func(s *Scanner) { s.display = prefix }
}

// New creates a Scanner. Result paths default to "<root name>/<relative path>".
func New(store storage.Provider, v *validator.Validator, opts ...Option) *Scanner {
	base := filepath.Base(store.Root())
	s := &Scanner{
		store:     store,
		validator: v,
		logger:    slog.Default(),
		workers:   runtime.NumCPU(),
		base:      base,
		display:   base,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DisplayPath returns the reported path for a root-relative document path.
func (s *Scanner) DisplayPath(rel string) string {
	if s.display == "" {
		return rel
	}
	return path.Join(s.display, rel)
}

// Run lists and validates every document. Results are merged and sorted by
// path, so the report is deterministic regardless of scheduling. Per-document
// read failures become document errors; only listing failures abort the run.
func (s *Scanner) Run(ctx context.Context) (*report.Report, error) {
	paths, err := s.store.List("")
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	results := make([]models.Result, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, rel := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = s.File(rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	s.logger.Debug("scan: finished", slog.Int("documents", len(paths)))
	return report.New(s.display, results), nil
}

// File reads and validates one root-relative document.
func (s *Scanner) File(rel string) models.Result {
	doc, err := s.store.Read(rel)
	if err != nil {
		s.logger.Warn("scan: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		res := models.Result{
			Path:     s.DisplayPath(rel),
			Category: s.validator.Category(path.Join(s.base, rel)),
			Errors:   []models.Issue{},
			Warnings: []models.Issue{},
		}
		res.AddError(models.CodeReadFailure, "", fmt.Sprintf("read failure: %s", err))
		return res
	}
	res := s.Content(rel, doc.Content)
	res.Checksum = doc.Checksum
	return res
}

// Content validates content as if it were stored at the root-relative path rel.
func (s *Scanner) Content(rel string, content []byte) models.Result {
	res := s.validator.Validate(path.Join(s.base, rel), content)
	res.Path = s.DisplayPath(rel)
	return res
}
