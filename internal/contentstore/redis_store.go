package contentstore

import (
	"context"
	"errors"
	"fmt"

	"hackerbrief/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when no record exists for the key.
// Absence is a normal, queryable state, not a storage failure.
var ErrNotFound = errors.New("contentstore: not found")

// RedisStore holds article bodies at three encoding stages, keyed by
// (source id, content kind). Payloads never expire; the store is the
// system of record for extracted content.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func payloadKey(sourceID int64, kind model.ContentKind) string {
	return fmt.Sprintf("content:item:%d:%s", sourceID, kind)
}

func kindSetKey(kind model.ContentKind) string {
	return fmt.Sprintf("content:kind:%s", kind)
}

// Put stores the payload for (sourceID, kind), overwriting any existing
// record. The kind membership set is updated in the same pipeline so Exists
// and Stats observe the write as soon as Put returns.
func (s *RedisStore) Put(ctx context.Context, sourceID int64, kind model.ContentKind, payload []byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, payloadKey(sourceID, kind), payload, 0)
		p.SAdd(ctx, kindSetKey(kind), sourceID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("contentstore: put %d/%s: %w", sourceID, kind, err)
	}
	return nil
}

// Exists reports whether a record is stored for (sourceID, kind) without
// reading the payload.
func (s *RedisStore) Exists(ctx context.Context, sourceID int64, kind model.ContentKind) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, kindSetKey(kind), sourceID).Result()
	if err != nil {
		return false, fmt.Errorf("contentstore: exists %d/%s: %w", sourceID, kind, err)
	}
	return ok, nil
}

// Get returns the payload for (sourceID, kind), or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, sourceID int64, kind model.ContentKind) ([]byte, error) {
	b, err := s.rdb.Get(ctx, payloadKey(sourceID, kind)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %d/%s", ErrNotFound, sourceID, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("contentstore: get %d/%s: %w", sourceID, kind, err)
	}
	return b, nil
}

// Stats holds aggregate record counts. Counts are exact: membership sets are
// maintained on every Put, so SCARD reflects the true number of stored keys.
type Stats struct {
	PerKind   map[model.ContentKind]int64 `json:"per_kind"`
	TotalKeys int64                       `json:"total_keys"`
}

// Stats returns the number of records per content kind and in total.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	out := Stats{PerKind: make(map[model.ContentKind]int64, len(model.Kinds()))}
	for _, k := range model.Kinds() {
		n, err := s.rdb.SCard(ctx, kindSetKey(k)).Result()
		if err != nil {
			return Stats{}, fmt.Errorf("contentstore: stats %s: %w", k, err)
		}
		out.PerKind[k] = n
		out.TotalKeys += n
	}
	return out, nil
}
