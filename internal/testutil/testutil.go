// Package testutil provides shared test helpers for document trees and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/docmeta/internal/history"
	"github.com/starford/docmeta/internal/schema"
	"github.com/starford/docmeta/internal/storage"
	"github.com/starford/docmeta/internal/validator"
)

// Front-matter fixtures for the built-in table.
const (
	ValidFrontend = "---\ntitle: React Hooks\ndescription: Hooks in depth\ntags: [React]\nsidebar_position: 1\n---\n# React Hooks\n"
	ValidProject  = "---\ntitle: Demo\ndescription: A demo\ntags: [开源项目]\nproject_type: tool\ntech_stack:\n  backend: [Go]\nstatus: completed\n---\n"
	MissingTitle  = "---\ndescription: No title here\ntags: [CSS]\nsidebar_position: 1\n---\n"
	Broken        = "---\ntitle: [unclosed\n---\n"
)

// TestDocs creates <tmp>/docs populated with files (path relative to docs → content)
// and returns the docs directory with a storage provider over it.
func TestDocs(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "docs")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestValidator returns a validator over the built-in table.
func TestValidator(t *testing.T) *validator.Validator {
	t.Helper()
	tbl, err := schema.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	return validator.New(tbl)
}

// TestDB creates a temporary SQLite history database that is automatically cleaned up.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
