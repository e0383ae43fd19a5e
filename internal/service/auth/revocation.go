package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RevocationStore remembers signed-out token IDs until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocations keeps revoked token IDs in process memory.
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocations constructs an empty in-memory store.
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke records tokenID as revoked until the given time.
func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return errors.New("empty token id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.entries {
		if now.After(exp) {
			delete(m.entries, id)
		}
	}
	if until.IsZero() {
		until = now.Add(24 * time.Hour)
	}
	m.entries[tokenID] = until
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}
	if m.now().After(exp) {
		delete(m.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// RedisRevocations shares revoked token IDs between API replicas.
type RedisRevocations struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisRevocations connects to Redis and verifies the connection.
func NewRedisRevocations(addr, password string, db int) (*RedisRevocations, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisRevocations{client: client, prefix: "officeboard:revoked:", timeout: 500 * time.Millisecond}, nil
}

// Revoke stores tokenID with a TTL matching the token's remaining lifetime.
func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return errors.New("empty token id")
	}
	ttl := time.Until(until)
	if until.IsZero() {
		ttl = 24 * time.Hour
	}
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err()
}

// IsRevoked checks whether tokenID is present.
func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the Redis connection.
func (r *RedisRevocations) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}
