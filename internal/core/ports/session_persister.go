package ports

import "context"

// SessionPersister stores the serialized identity under one well-known key.
type SessionPersister interface {
	// Read returns the stored blob, or nil with no error when nothing is stored.
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, blob []byte) error
	// Remove deletes the blob. Removing a missing blob is not an error.
	Remove(ctx context.Context) error
}
