// Package ingest walks configured root directories and reconciles the
// filesystem against the catalog.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/starford/lagu/internal/apperr"
	"github.com/starford/lagu/internal/catalog"
	"github.com/starford/lagu/internal/models"
)

// Ingestor walks directory trees and records new directories and
// documents in the catalog. It holds no state between walks beyond
// what it writes there.
type Ingestor struct {
	store      catalog.Store
	logger     *slog.Logger
	maxThreads int
}

// New creates an Ingestor. maxThreads bounds the batcher's fan-out and
// should normally be the host's available parallelism; values below
// one are clamped.
func New(store catalog.Store, logger *slog.Logger, maxThreads int) *Ingestor {
	if maxThreads < 1 {
		maxThreads = 1
	}
	return &Ingestor{store: store, logger: logger, maxThreads: maxThreads}
}

// ProcessDirectory recursively catalogues the directory at path.
// parent is nil for a configured root. Directories and documents
// already known to the catalog are left untouched, so a second run
// over an unchanged tree performs reads but no writes.
//
// Catalog failures, canonicalisation failures, and document insert
// failures abort the directory and propagate; per-file read and parse
// failures are logged inside the batcher and skipped.
func (ing *Ingestor) ProcessDirectory(ctx context.Context, path string, parent *uuid.UUID) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("ingest: read dir %s: %w", path, err)
	}

	fullPath, err := canonicalPath(path)
	if err != nil {
		return fmt.Errorf("ingest: canonicalise %s: %w", path, err)
	}

	name := filepath.Base(fullPath)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("%w: %s has no usable name", apperr.ErrInvalidDirectory, fullPath)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: directory name %q", apperr.ErrInvalidDirectory, name)
	}

	ing.logger.Debug("loading directory", slog.String("path", fullPath))

	dir, err := ing.ensureDirectory(ctx, fullPath, name, parent)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if err := ing.ProcessDirectory(ctx, filepath.Join(path, entry.Name()), &dir.ID); err != nil {
				return err
			}
		}
	}

	var fileNames []string
	var markdownPaths []string
	for _, entry := range entries {
		if entry.IsDir() || !isMarkdown(entry.Name()) {
			continue
		}
		fileNames = append(fileNames, entry.Name())
		markdownPaths = append(markdownPaths, filepath.Join(path, entry.Name()))
	}

	existing, err := ing.store.ListDocumentsInDirectory(ctx, dir.ID, fileNames)
	if err != nil {
		return fmt.Errorf("ingest: list documents: %w", err)
	}

	existingCount := 0
	for _, doc := range existing {
		for i, p := range markdownPaths {
			if filepath.Base(p) != doc.FileName {
				continue
			}
			ing.logger.Debug("already catalogued", slog.String("file", doc.FileName))
			markdownPaths[i] = markdownPaths[len(markdownPaths)-1]
			markdownPaths = markdownPaths[:len(markdownPaths)-1]
			existingCount++
			break
		}
	}

	parsed := processFiles(dir.ID, markdownPaths, ing.maxThreads, ing.logger)

	for i := range parsed {
		if err := ing.store.InsertDocument(ctx, &parsed[i].Document, &parsed[i].Meta); err != nil {
			return fmt.Errorf("ingest: insert document %s: %w", parsed[i].Document.FileName, err)
		}
	}

	ing.logger.Info("directory processed",
		slog.String("path", fullPath),
		slog.Int("existing", existingCount),
		slog.Int("processed", len(parsed)))

	return nil
}

// ensureDirectory looks the directory up by root name or by
// (name, parent) and inserts it when absent.
func (ing *Ingestor) ensureDirectory(ctx context.Context, path, name string, parent *uuid.UUID) (*models.Directory, error) {
	var (
		dir *models.Directory
		err error
	)
	if parent != nil {
		dir, err = ing.store.ChildDirectoryByName(ctx, name, *parent)
	} else {
		dir, err = ing.store.RootDirectoryByName(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: look up directory %s: %w", name, err)
	}
	if dir != nil {
		return dir, nil
	}

	dir, err = ing.store.InsertDirectory(ctx, path, name, parent)
	if err != nil {
		return nil, fmt.Errorf("ingest: insert directory %s: %w", name, err)
	}
	return dir, nil
}

// isMarkdown reports whether the extension after the final dot is
// exactly "md". The uppercase variant does not qualify.
func isMarkdown(name string) bool {
	return strings.TrimPrefix(filepath.Ext(name), ".") == "md"
}
