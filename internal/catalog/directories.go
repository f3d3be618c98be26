package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/lagu/internal/models"
)

const directoryColumns = `id, name, parent, path, created_at, updated_at`

// RootDirectoryByName looks up a root directory (no parent) by name.
// Returns (nil, nil) when no such root exists.
func (db *DB) RootDirectoryByName(ctx context.Context, name string) (*models.Directory, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+directoryColumns+` FROM directories WHERE name = ? AND parent IS NULL`, name)
	return scanDirectory(row)
}

// ChildDirectoryByName looks up a directory by (name, parent).
// Returns (nil, nil) when no such directory exists.
func (db *DB) ChildDirectoryByName(ctx context.Context, name string, parent uuid.UUID) (*models.Directory, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+directoryColumns+` FROM directories WHERE name = ? AND parent = ?`, name, parent.String())
	return scanDirectory(row)
}

// InsertDirectory creates a directory row with a fresh identifier and
// timestamps. The (name, parent) uniqueness constraints are enforced
// by the schema.
func (db *DB) InsertDirectory(ctx context.Context, path, name string, parent *uuid.UUID) (*models.Directory, error) {
	dir := &models.Directory{
		ID:        uuid.New(),
		Name:      name,
		Parent:    parent,
		Path:      path,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	var parentID any
	if parent != nil {
		parentID = parent.String()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO directories (id, name, parent, path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, dir.ID.String(), dir.Name, parentID, dir.Path, dir.CreatedAt, dir.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert directory %s: %w", name, err)
	}
	return dir, nil
}

// PruneRoots removes every root directory whose canonical path is not
// in keep. Foreign key cascades take descendants and their documents
// with it.
func (db *DB) PruneRoots(ctx context.Context, keep []string) error {
	query := `DELETE FROM directories WHERE parent IS NULL`
	args := make([]any, 0, len(keep))
	if len(keep) > 0 {
		query += ` AND path NOT IN (?` + strings.Repeat(", ?", len(keep)-1) + `)`
		for _, p := range keep {
			args = append(args, p)
		}
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("catalog: prune roots: %w", err)
	}
	return nil
}

// DirectoryTree returns every catalogued directory, roots first.
func (db *DB) DirectoryTree(ctx context.Context) ([]models.Directory, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+directoryColumns+` FROM directories ORDER BY parent IS NOT NULL, path`)
	if err != nil {
		return nil, fmt.Errorf("catalog: directory tree: %w", err)
	}
	defer rows.Close()

	var out []models.Directory
	for rows.Next() {
		dir, err := scanDirectoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *dir)
	}
	return out, rows.Err()
}

// RootPaths returns the canonical paths of every root directory.
func (db *DB) RootPaths(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path FROM directories WHERE parent IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("catalog: root paths: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDirectory(row *sql.Row) (*models.Directory, error) {
	dir, err := scanDirectoryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return dir, err
}

func scanDirectoryRow(row rowScanner) (*models.Directory, error) {
	var (
		dir      models.Directory
		id       string
		parentID sql.NullString
	)
	if err := row.Scan(&id, &dir.Name, &parentID, &dir.Path, &dir.CreatedAt, &dir.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("catalog: scan directory: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("catalog: directory id %q: %w", id, err)
	}
	dir.ID = parsed

	if parentID.Valid {
		p, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, fmt.Errorf("catalog: parent id %q: %w", parentID.String, err)
		}
		dir.Parent = &p
	}
	return &dir, nil
}
