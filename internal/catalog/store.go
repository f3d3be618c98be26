package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/starford/lagu/internal/models"
)

// Store defines the catalog gateway. The directory walker is its only
// writer; the read operations serve the HTTP and MCP surfaces.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
//
// Lookup operations return (nil, nil) when nothing matches, except
// DocumentByIdentifier which reports apperr.ErrNotFound on behalf of
// its consumers.
type Store interface {
	RootDirectoryByName(ctx context.Context, name string) (*models.Directory, error)
	ChildDirectoryByName(ctx context.Context, name string, parent uuid.UUID) (*models.Directory, error)
	InsertDirectory(ctx context.Context, path, name string, parent *uuid.UUID) (*models.Directory, error)
	ListDocumentsInDirectory(ctx context.Context, dir uuid.UUID, names []string) ([]models.Document, error)
	InsertDocument(ctx context.Context, doc *models.Document, meta *models.Metadata) error
	PruneRoots(ctx context.Context, keep []string) error

	DocumentByIdentifier(ctx context.Context, id string) (*models.Document, *models.Metadata, error)
	DocumentsInDirectory(ctx context.Context, dir uuid.UUID) ([]models.Document, error)
	DirectoryTree(ctx context.Context) ([]models.Directory, error)
	RootPaths(ctx context.Context) ([]string, error)

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
