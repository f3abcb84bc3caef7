package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// ErrCacheUnavailable wraps any failure talking to the L2 backing store.
// Callers treat it as a miss on reads and a logged warning on writes —
// never as a reason to fail the user-facing request.
var ErrCacheUnavailable = fmt.Errorf("cache: L2 store unavailable")

// KVCache is a durable string -> JSON key/value store backing L2.
// Implementations must be safe for concurrent use.
type KVCache interface {
	Get(ctx context.Context, key string) (model.ResultList, bool, error)
	Set(ctx context.Context, key string, value model.ResultList) error
	MGet(ctx context.Context, keys []string) ([]*model.ResultList, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Flush(ctx context.Context) error
}

// envelope wraps a ResultList with a schema version so the stored shape
// can evolve (e.g. to carry scores) without breaking older readers.
type envelope struct {
	V       int             `json:"v"`
	Results model.ResultList `json:"results"`
}

const envelopeVersion = 1

// RedisKVCache implements KVCache over a Redis client.
type RedisKVCache struct {
	client *redis.Client
}

// NewRedisKVCache creates a RedisKVCache from a parsed REDIS_URL.
func NewRedisKVCache(redisURL string) (*RedisKVCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache.NewRedisKVCache: parse %q: %w", redisURL, err)
	}
	return &RedisKVCache{client: redis.NewClient(opts)}, nil
}

// NewRedisKVCacheFromClient wraps an already-constructed client — used by
// tests against a miniredis instance.
func NewRedisKVCacheFromClient(client *redis.Client) *RedisKVCache {
	return &RedisKVCache{client: client}
}

// Get returns the decoded ResultList for key, or (nil, false, nil) on a
// cache miss. Connection failures are wrapped in ErrCacheUnavailable.
func (r *RedisKVCache) Get(ctx context.Context, key string) (model.ResultList, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %q: %v", ErrCacheUnavailable, key, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("cache.Get: decode %q: %w", key, err)
	}
	return env.Results, true, nil
}

// Set JSON-encodes value in a versioned envelope and stores it under key.
func (r *RedisKVCache) Set(ctx context.Context, key string, value model.ResultList) error {
	raw, err := json.Marshal(envelope{V: envelopeVersion, Results: value})
	if err != nil {
		return fmt.Errorf("cache.Set: encode %q: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %q: %v", ErrCacheUnavailable, key, err)
	}
	return nil
}

// MGet returns one decoded ResultList pointer per key, nil where absent.
func (r *RedisKVCache) MGet(ctx context.Context, keys []string) ([]*model.ResultList, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	raw, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: mget: %v", ErrCacheUnavailable, err)
	}

	out := make([]*model.ResultList, len(keys))
	for i, v := range raw {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(s), &env); err != nil {
			return nil, fmt.Errorf("cache.MGet: decode %q: %w", keys[i], err)
		}
		out[i] = &env.Results
	}
	return out, nil
}

// Keys returns all keys matching pattern.
func (r *RedisKVCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: keys %q: %v", ErrCacheUnavailable, pattern, err)
	}
	return keys, nil
}

// Flush removes every key from the currently selected Redis database.
func (r *RedisKVCache) Flush(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (r *RedisKVCache) Close() error {
	return r.client.Close()
}
