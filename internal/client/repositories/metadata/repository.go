// Package metadata is a small key-value store for device-local state that
// is not journal content: credentials, device identity, counters.
package metadata

import "context"

// Well-known keys.
const (
	KeyAccessToken = "access_token"
	KeyDeviceID    = "device_id"
	KeySaveCount   = "save_count"
)

type Repository interface {
	// Get returns the stored value, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
