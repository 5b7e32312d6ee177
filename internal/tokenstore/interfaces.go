package tokenstore

import (
	"context"

	"github.com/florianilch/tokenward/internal/token"
)

// Store reads and writes one stored token record at a fixed location.
//
// Exactly one record exists per location; Write replaces it wholesale.
type Store interface {
	// Exists reports whether a record is present, without parsing it.
	Exists(ctx context.Context) bool

	// Read returns the stored record. Returns error if the record is
	// missing or cannot be parsed.
	Read(ctx context.Context) (*token.StoredToken, error)

	// Write persists the record, replacing any prior content. Returns error
	// if the storage backend is read-only or if the write fails.
	Write(ctx context.Context, t *token.StoredToken) error

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context) error
}
