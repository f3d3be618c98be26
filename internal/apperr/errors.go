// Package apperr defines the error kinds surfaced by the core.
package apperr

import "errors"

var (
	// ErrNotFound is returned by read operations when no document or
	// directory matches. The ingestion core never produces it.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDirectory marks a directory with no final path segment
	// or a name that is not valid UTF-8.
	ErrInvalidDirectory = errors.New("invalid directory")

	// ErrEncoding marks a path segment or file name that is not valid UTF-8.
	ErrEncoding = errors.New("invalid utf-8")

	// ErrFrontmatter marks front-matter that could not be deserialised.
	ErrFrontmatter = errors.New("malformed front-matter")
)
