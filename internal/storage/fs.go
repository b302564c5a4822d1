package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/docmeta/internal/apperr"
	"github.com/starford/docmeta/internal/checksum"
	"github.com/starford/docmeta/internal/models"
)

// DefaultExclude lists directory names that are never scanned.
var DefaultExclude = []string{"node_modules"}

// FS implements Provider backed by the local file system.
type FS struct {
	root    string // absolute path to the document root
	exclude map[string]struct{}
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist; apperr.ErrRootNotFound is returned otherwise.
// Hidden directories and directories named in exclude are skipped by List.
func NewFS(root string, exclude ...string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: %s: %w", root, apperr.ErrRootNotFound)
		}
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s: %w", abs, apperr.ErrRootNotFound)
	}
	if exclude == nil {
		exclude = DefaultExclude
	}
	ex := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		ex[name] = struct{}{}
	}
	return &FS{root: abs, exclude: ex}, nil
}

// Root returns the absolute document root.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the root and rejects any result
// that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes document root: %s", rel)
	}
	return abs, nil
}

// Skip reports whether a directory with the given name is excluded from scans.
func (f *FS) Skip(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := f.exclude[name]
	return ok
}

// List walks dir with an explicit worklist and returns the slash-separated
// paths (relative to root) of every .md file, sorted. Symbolic links are
// followed; a directory reached twice through links is listed once and
// dangling links are ignored.
func (f *FS) List(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	visited := make(map[string]struct{})
	var out []string
	pending := []string{base}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if real, err := filepath.EvalSymlinks(current); err == nil {
			if _, seen := visited[real]; seen {
				continue
			}
			visited[real] = struct{}{}
		}

		entries, err := os.ReadDir(current)
		if err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", current, err)
		}
		for _, e := range entries {
			p := filepath.Join(current, e.Name())
			mode := e.Type()
			if mode&os.ModeSymlink != 0 {
				info, err := os.Stat(p)
				if err != nil {
					continue
				}
				mode = info.Mode().Type()
			}
			if mode.IsDir() {
				if !f.Skip(e.Name()) {
					pending = append(pending, p)
				}
				continue
			}
			if !mode.IsRegular() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			rel, err := filepath.Rel(f.root, p)
			if err != nil {
				return nil, fmt.Errorf("storage: list: %w", err)
			}
			out = append(out, filepath.ToSlash(rel))
		}
	}
	slices.Sort(out)
	return out, nil
}

// Read returns the document at path with its checksum.
func (f *FS) Read(path string) (*models.Document, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return &models.Document{
		Path:     filepath.ToSlash(filepath.Clean(path)),
		Content:  data,
		Checksum: checksum.Sum(data),
	}, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".docmeta-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Exists reports whether a regular file exists at path.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}
