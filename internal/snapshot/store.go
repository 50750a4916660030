// Package snapshot provides the durable key-value storage behind the cart and
// wishlist stores: serialized state written after every mutation, read back at
// session start, removed on explicit clears.
package snapshot

import "context"

// Store is durable string storage keyed by session-scoped keys.
type Store interface {
	// Load returns the stored payload, or (nil, nil) when no record exists.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save overwrites the payload for key.
	Save(ctx context.Context, key string, payload []byte) error
	// Delete removes the record for key; absent records are not an error.
	Delete(ctx context.Context, key string) error
}
