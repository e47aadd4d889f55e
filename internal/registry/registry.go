// Package registry tracks which documents are live. The backing folder is the
// source of truth for the whole service: vector-store contents are derived
// from it and reconciled against it.
package registry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Document is a live registry entry.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry abstracts document persistence so the backing store is swappable
// and testable without real disk I/O in callers.
type Registry interface {
	Exists(id string) bool
	List() ([]Document, error)
	// Put persists the raw bytes under id and returns the stored path.
	Put(id string, r io.Reader) (string, error)
	Delete(id string) error
}

const fileExt = ".pdf"

// Filesystem stores documents as {id}.pdf under a flat folder.
type Filesystem struct {
	dir string
}

func NewFilesystem(dir string) (*Filesystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document folder %s: %w", dir, err)
	}
	return &Filesystem{dir: dir}, nil
}

func (f *Filesystem) path(id string) string {
	return filepath.Join(f.dir, id+fileExt)
}

func (f *Filesystem) Exists(id string) bool {
	_, err := os.Stat(f.path(id))
	return err == nil
}

func (f *Filesystem) List() ([]Document, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list document folder: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		docs = append(docs, Document{
			ID:   strings.TrimSuffix(entry.Name(), fileExt),
			Name: entry.Name(),
		})
	}
	return docs, nil
}

func (f *Filesystem) Put(id string, r io.Reader) (string, error) {
	path := f.path(id)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func (f *Filesystem) Delete(id string) error {
	if err := os.Remove(f.path(id)); err != nil {
		return fmt.Errorf("failed to remove document %s: %w", id, err)
	}
	return nil
}
