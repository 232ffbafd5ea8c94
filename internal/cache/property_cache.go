package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"greendrake/propdesk/internal/models"
)

// IPropertyCache caches single-property reads.
type IPropertyCache interface {
	Get(ctx context.Context, id string) (*models.Property, error)
	// Set stores p unless the cache already holds the same or a newer version.
	Set(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id string) error
}

// RedisClient is the subset of *redis.Client the property cache needs.
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const (
	fieldVersion = "v"
	fieldDoc     = "doc"
)

// setIfNewer writes {v, doc} only when ARGV[1] is greater than the stored v.
// KEYS[1] key; ARGV[1] version, ARGV[2] doc, ARGV[3] ttl in ms (0 = none).
const setIfNewer = `
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'doc', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`

type redisPropertyCache struct {
	rdb RedisClient
	ttl time.Duration
}

// NewPropertyCache returns a Redis-backed property cache with the given entry TTL.
func NewPropertyCache(rdb RedisClient, ttl time.Duration) IPropertyCache {
	return &redisPropertyCache{rdb: rdb, ttl: ttl}
}

func propertyKey(id string) string {
	return "property:" + id
}

// Get returns the cached property, or nil on a miss.
func (c *redisPropertyCache) Get(ctx context.Context, id string) (*models.Property, error) {
	fields, err := c.rdb.HGetAll(ctx, propertyKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached property %s: %w", id, err)
	}
	raw, ok := fields[fieldDoc]
	if !ok {
		return nil, nil
	}
	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cached version for property %s: %w", id, err)
	}

	var p models.Property
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to decode cached property %s: %w", id, err)
	}
	p.Version = version
	return &p, nil
}

func (c *redisPropertyCache) Set(ctx context.Context, p *models.Property) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode property %s: %w", p.ID.Hex(), err)
	}
	key := propertyKey(p.ID.Hex())
	if err := c.rdb.Eval(ctx, setIfNewer, []string{key}, p.Version, string(raw), c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to cache property %s: %w", p.ID.Hex(), err)
	}
	return nil
}

func (c *redisPropertyCache) Delete(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, propertyKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to evict cached property %s: %w", id, err)
	}
	return nil
}
