// Package docservice serves catalogued documents to the HTTP and MCP
// surfaces. It is strictly read-only: the walker is the catalog's only
// writer.
package docservice

import (
	"context"
	"errors"
	"os"

	"github.com/google/uuid"

	"github.com/starford/lagu/internal/apperr"
	"github.com/starford/lagu/internal/catalog"
	"github.com/starford/lagu/internal/models"
	"github.com/starford/lagu/internal/parser"
)

// DocumentDetail is the full representation of a served document.
type DocumentDetail struct {
	ID          uuid.UUID `json:"id"`
	CustomID    *string   `json:"custom_id,omitempty"`
	Directory   uuid.UUID `json:"directory"`
	FileName    string    `json:"file_name"`
	Path        string    `json:"path"`
	Title       *string   `json:"title,omitempty"`
	ReadingTime *int32    `json:"reading_time,omitempty"`
	Tags        []string  `json:"tags"`
	Content     string    `json:"content"`
}

// Service resolves documents through the catalog and reads their
// content from disk.
type Service struct {
	store catalog.Store
}

// NewService creates a new document service.
func NewService(store catalog.Store) *Service {
	return &Service{store: store}
}

// GetDocument resolves id (custom identifier preferred over the opaque
// UUID), reads the file from disk, and returns the body with the
// front-matter stripped. A catalogued document whose file has vanished
// reports apperr.ErrNotFound.
func (s *Service) GetDocument(ctx context.Context, id string) (*DocumentDetail, error) {
	doc, meta, err := s.store.DocumentByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(doc.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	_, body, err := parser.Parse(string(raw))
	if err != nil {
		return nil, err
	}

	return &DocumentDetail{
		ID:          doc.ID,
		CustomID:    meta.CustomID,
		Directory:   doc.Directory,
		FileName:    doc.FileName,
		Path:        doc.Path,
		Title:       meta.Title,
		ReadingTime: meta.ReadingTime,
		Tags:        nonNilSlice(meta.Tags),
		Content:     body,
	}, nil
}

// ListDocuments returns the documents of one directory.
func (s *Service) ListDocuments(ctx context.Context, dir uuid.UUID) ([]models.Document, error) {
	docs, err := s.store.DocumentsInDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(docs), nil
}

// Tree returns every catalogued directory, roots first.
func (s *Service) Tree(ctx context.Context) ([]models.Directory, error) {
	dirs, err := s.store.DirectoryTree(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(dirs), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
