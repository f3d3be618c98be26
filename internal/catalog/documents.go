package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/lagu/internal/apperr"
	"github.com/starford/lagu/internal/models"
)

const documentColumns = `id, directory, file_name, path, custom_id, title, reading_time, tags`

// InsertDocument inserts a document row together with its parsed
// metadata. (directory, file_name) uniqueness and custom identifier
// uniqueness are enforced by the schema.
func (db *DB) InsertDocument(ctx context.Context, doc *models.Document, meta *models.Metadata) error {
	var tagsJSON any
	if meta.Tags != nil {
		raw, err := json.Marshal(meta.Tags)
		if err != nil {
			return fmt.Errorf("catalog: marshal tags: %w", err)
		}
		tagsJSON = string(raw)
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO documents (id, directory, file_name, path, custom_id, title, reading_time, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID.String(), doc.Directory.String(), doc.FileName, doc.Path,
		meta.CustomID, meta.Title, meta.ReadingTime, tagsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("catalog: insert document %s: %w", doc.FileName, err)
	}
	return nil
}

// ListDocumentsInDirectory returns the documents within dir whose file
// name matches any of names. Used by the walker for its membership
// diff only.
func (db *DB) ListDocumentsInDirectory(ctx context.Context, dir uuid.UUID, names []string) ([]models.Document, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `SELECT id, directory, file_name, path FROM documents WHERE directory = ? AND file_name IN (?` +
		strings.Repeat(", ?", len(names)-1) + `)`
	args := make([]any, 0, len(names)+1)
	args = append(args, dir.String())
	for _, n := range names {
		args = append(args, n)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list documents in dir: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocumentIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

// DocumentsInDirectory returns every document of one directory.
func (db *DB) DocumentsInDirectory(ctx context.Context, dir uuid.UUID) ([]models.Document, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, directory, file_name, path FROM documents WHERE directory = ? ORDER BY file_name`, dir.String())
	if err != nil {
		return nil, fmt.Errorf("catalog: documents in dir: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocumentIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

// DocumentByIdentifier resolves a document by its user-chosen custom
// identifier, falling back to the opaque UUID. Reports
// apperr.ErrNotFound when neither matches.
func (db *DB) DocumentByIdentifier(ctx context.Context, id string) (*models.Document, *models.Metadata, error) {
	doc, meta, err := db.documentWhere(ctx, `custom_id = ?`, id)
	if err != nil || doc != nil {
		return doc, meta, err
	}

	if _, parseErr := uuid.Parse(id); parseErr == nil {
		doc, meta, err = db.documentWhere(ctx, `id = ?`, id)
		if err != nil || doc != nil {
			return doc, meta, err
		}
	}

	return nil, nil, fmt.Errorf("%w: document %q", apperr.ErrNotFound, id)
}

func (db *DB) documentWhere(ctx context.Context, cond string, args ...any) (*models.Document, *models.Metadata, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE `+cond, args...)

	var (
		doc         models.Document
		meta        models.Metadata
		id, dirID   string
		customID    sql.NullString
		title       sql.NullString
		readingTime sql.NullInt32
		tagsJSON    sql.NullString
	)
	err := row.Scan(&id, &dirID, &doc.FileName, &doc.Path, &customID, &title, &readingTime, &tagsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: scan document: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: document id %q: %w", id, err)
	}
	doc.ID = parsed
	parsedDir, err := uuid.Parse(dirID)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: directory id %q: %w", dirID, err)
	}
	doc.Directory = parsedDir

	if customID.Valid {
		meta.CustomID = &customID.String
	}
	if title.Valid {
		meta.Title = &title.String
	}
	if readingTime.Valid {
		meta.ReadingTime = &readingTime.Int32
	}
	if tagsJSON.Valid {
		if err := json.Unmarshal([]byte(tagsJSON.String), &meta.Tags); err != nil {
			return nil, nil, fmt.Errorf("catalog: unmarshal tags: %w", err)
		}
	}
	return &doc, &meta, nil
}

func scanDocumentIdentity(row rowScanner) (*models.Document, error) {
	var (
		doc       models.Document
		id, dirID string
	)
	if err := row.Scan(&id, &dirID, &doc.FileName, &doc.Path); err != nil {
		return nil, fmt.Errorf("catalog: scan document: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("catalog: document id %q: %w", id, err)
	}
	doc.ID = parsed
	parsedDir, err := uuid.Parse(dirID)
	if err != nil {
		return nil, fmt.Errorf("catalog: directory id %q: %w", dirID, err)
	}
	doc.Directory = parsedDir
	return &doc, nil
}
