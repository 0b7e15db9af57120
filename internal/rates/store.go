package rates

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds fetched exchange rates. Implementations must be safe for
// concurrent use; concurrent writers for the same code may race and the last
// write wins, which is acceptable because the value is idempotent.
type Store interface {
	Lookup(ctx context.Context, code string) (rate float64, ok bool, err error)
	Save(ctx context.Context, code string, rate float64) error
}

type memoryEntry struct {
	rate    float64
	savedAt time.Time
}

// MemoryStore keeps rates in-process. A zero TTL means entries live for the
// process lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Lookup(_ context.Context, code string) (float64, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[strings.ToUpper(code)]
	s.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	if s.ttl > 0 && time.Since(entry.savedAt) > s.ttl {
		return 0, false, nil
	}
	return entry.rate, true, nil
}

func (s *MemoryStore) Save(_ context.Context, code string, rate float64) error {
	s.mu.Lock()
	s.entries[strings.ToUpper(code)] = memoryEntry{rate: rate, savedAt: time.Now()}
	s.mu.Unlock()
	return nil
}

const redisKeyPrefix = "exrate:"

// RedisStore shares fetched rates across server replicas. TTL is applied as
// the key expiration; zero keeps keys indefinitely.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Lookup(ctx context.Context, code string) (float64, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+strings.ToUpper(code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return rate, true, nil
}

func (s *RedisStore) Save(ctx context.Context, code string, rate float64) error {
	return s.client.Set(ctx, redisKeyPrefix+strings.ToUpper(code), strconv.FormatFloat(rate, 'f', -1, 64), s.ttl).Err()
}
