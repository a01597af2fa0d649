// Package metadata is the client's local key-value store: session state,
// remembered identities, the reminder map and cached events all live here
// as opaque byte values under string keys.
package metadata

import (
	"context"
)

// Repository stores values by key. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all values or none of them.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
