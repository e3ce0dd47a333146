package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no snapshot has been written under the key.
var ErrNotFound = errors.New("snapshot not found")

// Backend persists serialized task snapshots under a single key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
