// Package profile persists one opaque progression blob per user id. The
// engine owns the blob's schema; the store never inspects it beyond
// requiring valid JSON at the API boundary of callers.
package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the user id has never been saved.
var ErrNotFound = errors.New("profile not found")

type Store interface {
	// Load returns the persisted blob for the user, or ErrNotFound.
	Load(ctx context.Context, userID string) ([]byte, error)

	// Save upserts the blob for the user.
	Save(ctx context.Context, userID string, blob []byte) error

	Close() error
}
