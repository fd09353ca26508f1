// Package storage defines the documentation tree abstraction.
package storage

import "time"

// DocInfo is a lightweight record for one Markdown document on disk.
type DocInfo struct {
	Path      string    `json:"path"` // relative to the docs root
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for document file operations. All paths are
// relative to the docs root.
type Provider interface {
	// List walks dir and returns metadata for every Markdown file.
	List(dir string) ([]DocInfo, error)
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the document at path with content.
	Write(path string, content []byte) error
	// Root returns the absolute path of the docs root.
	Root() string
}
