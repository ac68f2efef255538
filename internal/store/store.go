// Package store is the durable key-value slot layer behind save games.
// Values are opaque bytes; the persist package owns the document format.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: key not found")

type Store interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists the stored keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
