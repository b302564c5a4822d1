// Package storage defines the document-tree file-system abstraction.
package storage

import "github.com/starford/docmeta/internal/models"

// Provider is the interface for document tree access.
type Provider interface {
	// Root returns the absolute path of the document root.
	Root() string
	// List returns every .md file under dir (relative to the root), sorted by path.
	List(dir string) ([]string, error)
	// Read returns the document at path (relative to the root).
	Read(path string) (*models.Document, error)
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
}
