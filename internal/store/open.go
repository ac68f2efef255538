package store

import (
	"context"
	"fmt"
)

type Options struct {
	Backend string // file, memory, redis or sqlite
	DataDir string
	Redis   RedisOptions
	SQLite  string
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.DataDir)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, opts.Redis)
	case "sqlite":
		return OpenSQLite(opts.SQLite)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
