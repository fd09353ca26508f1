// Package apperr defines sentinel errors shared across the application.
package apperr

import "errors"

var (
	// ErrMalformedFrontmatter marks a document whose front matter block
	// cannot be decoded. Batch drivers skip and report, never abort.
	ErrMalformedFrontmatter = errors.New("malformed front matter")

	// ErrSuggestUnavailable marks a failed remote suggestion call
	// (timeout, auth, quota, bad response). Callers fall back to the
	// static candidate generator.
	ErrSuggestUnavailable = errors.New("suggestion service unavailable")

	// ErrNotFound marks a missing document or cache entry.
	ErrNotFound = errors.New("not found")
)
