package corpus

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("corpus: unknown backend")

// Store is a backend that can both load and save a corpus.
type Store interface {
	Source
	Sink
	Close() error
}

// Options selects and configures a backend for Open.
type Options struct {
	// "file", "redis" or "sqlite"
	Backend string

	// YAML file for "file", database file for "sqlite"
	Path string

	Redis RedisConfig
}

// Open returns the store for opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "file":
		return NewFileSource(opts.Path), nil
	case "redis":
		rs, err := NewRedisSource(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%q: %w", opts.Backend, ErrUnknownBackend)
	}
}

// Close is a no-op; files are not held open between calls.
func (fs *FileSource) Close() error {
	return nil
}

var (
	_ Store = (*FileSource)(nil)
	_ Store = (*RedisSource)(nil)
	_ Store = (*SQLSource)(nil)
)
