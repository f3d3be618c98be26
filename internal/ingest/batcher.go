package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/starford/lagu/internal/apperr"
	"github.com/starford/lagu/internal/models"
	"github.com/starford/lagu/internal/parser"
)

// FilesPerThread is the number of paths handed to one worker in a round.
const FilesPerThread = 128

// unknownName replaces a file name that is absent or not valid UTF-8.
const unknownName = "__unknown"

// processFiles reads and parses the given Markdown paths, fanning out
// across up to maxThreads workers in rounds of FilesPerThread-sized
// batches. A round with a single non-empty batch runs on the calling
// goroutine. A failed worker drops its batch: the error is logged and
// the round continues with the remaining workers' results. Output
// ordering is not stable across runs; callers must not rely on it.
func processFiles(dir uuid.UUID, paths []string, maxThreads int, logger *slog.Logger) []models.ParsedDocument {
	if maxThreads < 1 {
		maxThreads = 1
	}

	var out []models.ParsedDocument
	for offset := 0; offset < len(paths); {
		var batches [][]string
		for i := 0; i < maxThreads && offset < len(paths); i++ {
			end := min(offset+FilesPerThread, len(paths))
			batches = append(batches, paths[offset:end])
			offset = end
		}

		if len(batches) == 1 {
			logger.Debug("processing single batch", slog.Int("files", len(batches[0])))
			docs, err := readBatch(dir, batches[0], logger)
			if err != nil {
				logger.Error("batch failed", slog.String("error", err.Error()))
				continue
			}
			out = append(out, docs...)
			continue
		}

		logger.Debug("processing multiple batches", slog.Int("batches", len(batches)))

		results := make([][]models.ParsedDocument, len(batches))
		errs := make([]error, len(batches))
		start := time.Now()

		var wg sync.WaitGroup
		for i, batch := range batches {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = readBatch(dir, batch, logger)
			}()
		}
		wg.Wait()

		// Drain in spawn order.
		for i := range batches {
			if errs[i] != nil {
				logger.Error("batch failed",
					slog.Int("worker", i),
					slog.String("error", errs[i].Error()))
				continue
			}
			logger.Debug("worker finished",
				slog.Int("worker", i),
				slog.Int("files", len(results[i])),
				slog.Duration("elapsed", time.Since(start)))
			out = append(out, results[i]...)
		}
	}
	return out
}

// readBatch reads and parses every path in one worker's batch. The
// first failure aborts the batch.
func readBatch(dir uuid.UUID, batch []string, logger *slog.Logger) ([]models.ParsedDocument, error) {
	out := make([]models.ParsedDocument, 0, len(batch))
	for _, path := range batch {
		doc, err := readFile(dir, path, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// readFile canonicalises path, reads the file, and parses its
// front-matter. The body is discarded after metadata derivation; the
// catalog stores metadata only and content is read from disk at serve
// time.
func readFile(dir uuid.UUID, path string, logger *slog.Logger) (models.ParsedDocument, error) {
	logger.Debug("processing file", slog.String("path", path))

	canonical, err := canonicalPath(path)
	if err != nil {
		return models.ParsedDocument{}, fmt.Errorf("ingest: canonicalise %s: %w", path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return models.ParsedDocument{}, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	meta, _, err := parser.Parse(string(raw))
	if err != nil {
		return models.ParsedDocument{}, fmt.Errorf("ingest: parse %s: %w", path, err)
	}

	return models.ParsedDocument{
		Document: models.Document{
			ID:        uuid.New(),
			Directory: dir,
			FileName:  fileName(canonical),
			Path:      canonical,
		},
		Meta: meta,
	}, nil
}

// fileName returns the final path segment, or the sentinel when the
// path has none or it is not valid UTF-8.
func fileName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || !utf8.ValidString(name) {
		return unknownName
	}
	return name
}

// canonicalPath resolves path to an absolute, symlink-free form and
// verifies it is valid UTF-8.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(resolved) {
		return "", fmt.Errorf("%w: %q", apperr.ErrEncoding, resolved)
	}
	return resolved, nil
}
