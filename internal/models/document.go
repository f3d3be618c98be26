// Package models defines the domain types for Lagu.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Directory is a catalogued filesystem directory. Directories form a
// tree; a nil Parent marks one of the configured roots.
type Directory struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Parent    *uuid.UUID `json:"parent,omitempty"`
	Path      string     `json:"path"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Document is a catalogued Markdown file. (Directory, FileName) is
// unique; Path is absolute and canonical.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Directory uuid.UUID `json:"directory"`
	FileName  string    `json:"file_name"`
	Path      string    `json:"path"`
}

// Metadata holds the optional front-matter fields of a document.
// Pointer fields distinguish absence from zero values across the YAML
// and SQL boundaries.
type Metadata struct {
	// CustomID is a user-chosen identifier intended for URLs.
	// Preferred over the document UUID when present.
	CustomID    *string  `yaml:"id" json:"id,omitempty"`
	Title       *string  `yaml:"title" json:"title,omitempty"`
	ReadingTime *int32   `yaml:"reading_time" json:"reading_time,omitempty"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
}

// ParsedDocument pairs a document with its parsed metadata, ready for
// insertion into the catalog.
type ParsedDocument struct {
	Document Document
	Meta     Metadata
}
