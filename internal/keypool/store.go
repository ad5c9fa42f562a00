package keypool

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is where the shared cursor lives when no key is configured.
const DefaultRedisKey = "agentcv:keypool:cursor"

// CursorStore persists the rotation cursor. -1 means the primary credential.
type CursorStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, cursor int) error
}

type memoryStore struct {
	mu      sync.Mutex
	cursor  int
	updated time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore keeps the cursor in process memory. With a positive ttl the
// cursor falls back to the primary credential once ttl has passed since the last
// rotation.
func NewMemoryStore(ttl time.Duration) CursorStore {
	return &memoryStore{cursor: -1, ttl: ttl, now: time.Now}
}

func (s *memoryStore) Load(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl > 0 && s.cursor >= 0 && s.now().Sub(s.updated) >= s.ttl {
		s.cursor = -1
	}
	return s.cursor, nil
}

func (s *memoryStore) Save(_ context.Context, cursor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor = cursor
	s.updated = s.now()
	return nil
}

type redisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore shares the cursor between processes through redis. The key
// expires after ttl (0 keeps it forever), which returns every process to the
// primary credential.
func NewRedisStore(client redis.Cmdable, key string, ttl time.Duration) CursorStore {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultRedisKey
	}
	return &redisStore{client: client, key: key, ttl: ttl}
}

func (s *redisStore) Load(ctx context.Context) (int, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	cursor, err := strconv.Atoi(raw)
	if err != nil {
		return -1, fmt.Errorf("redis cursor %q is not a number: %w", raw, err)
	}
	return cursor, nil
}

func (s *redisStore) Save(ctx context.Context, cursor int) error {
	if err := s.client.Set(ctx, s.key, cursor, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
