package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/docmeta/internal/apperr"
	"github.com/starford/docmeta/internal/models"
	"github.com/starford/docmeta/internal/report"
)

// Run is a recorded validation pass.
type Run struct {
	ID        string         `json:"id"`
	Root      string         `json:"root"`
	Summary   models.Summary `json:"summary"`
	CreatedAt time.Time      `json:"created_at"`
}

// IssueRow is one recorded issue of a run.
type IssueRow struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Checksum string `json:"checksum,omitempty"`
	models.Issue
}

// RunDetail is a run together with its issues.
type RunDetail struct {
	Run
	Issues []IssueRow `json:"issues"`
}

// Store defines the history operations consumers depend on.
type Store interface {
	Record(rep *report.Report) (string, error)
	Runs(limit int) ([]Run, error)
	Run(id string) (*RunDetail, error)
	Close() error
}

var _ Store = (*DB)(nil)

// Record stores a report and its issues within one transaction and returns the run ID.
func (db *DB) Record(rep *report.Report) (string, error) {
	id := uuid.NewString()
	created := rep.GeneratedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO runs (id, root, documents, errors, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, rep.Root, rep.Summary.Documents, rep.Summary.Errors, rep.Summary.Warnings, created)
	if err != nil {
		return "", fmt.Errorf("history: insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO issues (run_id, path, category, checksum, severity, code, field, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("history: prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range rep.WithIssues() {
		issues := append(append([]models.Issue{}, res.Errors...), res.Warnings...)
		for _, is := range issues {
			if _, err := stmt.Exec(id, res.Path, res.Category, res.Checksum,
				string(is.Severity), is.Code, is.Field, is.Message); err != nil {
				return "", fmt.Errorf("history: insert issue: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return id, nil
}

// Runs returns the most recent runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, root, documents, errors, warnings, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Root, &r.Summary.Documents, &r.Summary.Errors,
			&r.Summary.Warnings, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run returns a single run with its issues, or apperr.ErrNotFound.
func (db *DB) Run(id string) (*RunDetail, error) {
	var d RunDetail
	err := db.conn.QueryRow(`
		SELECT id, root, documents, errors, warnings, created_at FROM runs WHERE id = ?
	`, id).Scan(&d.ID, &d.Root, &d.Summary.Documents, &d.Summary.Errors, &d.Summary.Warnings, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("history: run: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, category, checksum, severity, code, field, message
		FROM issues WHERE run_id = ? ORDER BY path, rowid
	`, id)
	if err != nil {
		return nil, fmt.Errorf("history: issues: %w", err)
	}
	defer rows.Close()

	d.Issues = []IssueRow{}
	for rows.Next() {
		var row IssueRow
		var sev string
		if err := rows.Scan(&row.Path, &row.Category, &row.Checksum, &sev,
			&row.Code, &row.Field, &row.Message); err != nil {
			return nil, err
		}
		row.Severity = models.Severity(sev)
		d.Issues = append(d.Issues, row)
	}
	return &d, rows.Err()
}
