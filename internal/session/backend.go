package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend persists session records keyed by session id.
type Backend interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisBackend stores each session as one hash.  Save replaces the whole
// hash inside a MULTI block and Delete is a single DEL, so readers never see
// a half-written or half-cleared session.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisBackend(rdb *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "matchday:session"
	}
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) key(id string) string { return b.prefix + ":" + id }

func (b *RedisBackend) Load(ctx context.Context, id string) (map[string]string, error) {
	return b.rdb.HGetAll(ctx, b.key(id)).Result()
}

func (b *RedisBackend) Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error {
	key := b.key(id)
	_, err := b.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(values) == 0 {
			return nil
		}
		args := make([]any, 0, len(values)*2)
		for k, v := range values {
			args = append(args, k, v)
		}
		p.HSet(ctx, key, args...)
		if ttl > 0 {
			p.Expire(ctx, key, ttl)
		}
		return nil
	})
	return err
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.rdb.Del(ctx, b.key(id)).Err()
}

// MemoryBackend keeps sessions in process memory.  It is used when Redis is
// unavailable; sessions do not survive a restart.
type MemoryBackend struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	values  map[string]string
	expires time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: map[string]memoryItem{}, now: time.Now}
}

func (b *MemoryBackend) Load(_ context.Context, id string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[id]
	if !ok {
		return map[string]string{}, nil
	}
	if !it.expires.IsZero() && b.now().After(it.expires) {
		delete(b.items, id)
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(it.values))
	for k, v := range it.values {
		out[k] = v
	}
	return out, nil
}

func (b *MemoryBackend) Save(_ context.Context, id string, values map[string]string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(values) == 0 {
		delete(b.items, id)
		return nil
	}
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	it := memoryItem{values: cp}
	if ttl > 0 {
		it.expires = b.now().Add(ttl)
	}
	b.items[id] = it
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, id)
	return nil
}
