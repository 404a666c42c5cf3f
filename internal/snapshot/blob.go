// Package snapshot is the persistence gateway: it serializes the identity
// map and message log into one opaque blob and writes it through a pluggable
// durable backend. In-memory state stays authoritative; durability failures
// are logged, never surfaced to the caller whose request already succeeded.
package snapshot

import (
	"context"
	"errors"
)

// ErrNoState signals that the backend has no prior snapshot. Restore treats
// it as "start empty", not as a failure.
var ErrNoState = errors.New("no snapshot state")

// BlobStore reads and writes the single durable record.
type BlobStore interface {
	// Load returns the last saved blob, or ErrNoState when none exists.
	Load(ctx context.Context) ([]byte, error)

	// Save overwrites the durable record.
	Save(ctx context.Context, blob []byte) error

	Close() error
}
