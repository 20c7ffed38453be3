package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound indicates no snapshot is stored under the key
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidSnapshot indicates the stored document is corrupted
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// DefaultRetention is how long snapshots are kept unless configured.
const DefaultRetention = 15 * time.Minute

// Store persists snapshots in Redis.
type Store struct {
	redis     *redis.Client
	retention time.Duration
}

// NewStore creates a new snapshot store with Redis backend.
func NewStore(redisClient *redis.Client, retention time.Duration) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		redis:     redisClient,
		retention: retention,
	}
}

// Retention returns the configured snapshot lifetime.
func (s *Store) Retention() time.Duration {
	return s.retention
}

// Save stores a snapshot, replacing any previous one under the same key.
// The key expires together with the snapshot.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	ttl := snap.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		SnapshotErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.redis.Set(ctx, snap.Key().String(), data, ttl).Err(); err != nil {
		SnapshotErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	SnapshotWrites.Inc()
	SnapshotSize.Set(float64(len(data)))

	return nil
}

// Load retrieves the snapshot stored under key.
// Returns ErrNotFound if the key doesn't exist or the snapshot expired.
func (s *Store) Load(ctx context.Context, key Key) (*Snapshot, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			SnapshotReads.WithLabelValues("miss").Inc()
			return nil, ErrNotFound
		}
		SnapshotErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		SnapshotErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	if snap.IsExpired() {
		_ = s.Delete(ctx, key)
		SnapshotReads.WithLabelValues("miss").Inc()
		return nil, ErrNotFound
	}

	SnapshotReads.WithLabelValues("hit").Inc()
	return &snap, nil
}

// Delete removes a snapshot.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		SnapshotErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
