package contentstore

import (
	"context"

	"hackerbrief/internal/model"
)

// Store is the content-store contract consumed by the collector and the
// digest pipeline. Implementations must be safe for concurrent use; puts to
// distinct keys must not block each other, and a completed Put must be
// visible to any subsequent Get/Exists from the same process.
type Store interface {
	Put(ctx context.Context, sourceID int64, kind model.ContentKind, payload []byte) error
	Get(ctx context.Context, sourceID int64, kind model.ContentKind) ([]byte, error)
	Exists(ctx context.Context, sourceID int64, kind model.ContentKind) (bool, error)
	Stats(ctx context.Context) (Stats, error)
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
