// AngelaMos | 2026
// cache.go

package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	catalogGenerationKey = "coursehub:catalog:gen"
	publicCatalogPrefix  = "coursehub:catalog:public:v2:"
)

// Cache holds the rendered public catalog keyed by a generation number.
// Every admin write bumps the generation, so a snapshot read from the
// database before a write can only ever land under a generation nobody
// reads again. A miss is (nil, false, nil).
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	GetPublic(ctx context.Context, gen int64) ([]CourseSummary, bool, error)
	SetPublic(ctx context.Context, gen int64, courses []CourseSummary) error
	InvalidatePublic(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func publicCatalogKey(gen int64) string {
	return publicCatalogPrefix + strconv.FormatInt(gen, 10)
}

func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, catalogGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get catalog generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) GetPublic(
	ctx context.Context,
	gen int64,
) ([]CourseSummary, bool, error) {
	raw, err := c.client.Get(ctx, publicCatalogKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog cache: %w", err)
	}

	var courses []CourseSummary
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, false, fmt.Errorf("decode catalog cache: %w", err)
	}

	return courses, true, nil
}

func (c *RedisCache) SetPublic(
	ctx context.Context,
	gen int64,
	courses []CourseSummary,
) error {
	raw, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}

	if err := c.client.Set(ctx, publicCatalogKey(gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set catalog cache: %w", err)
	}

	return nil
}

// InvalidatePublic moves readers to a fresh generation. Entries under
// older generations expire with their TTL.
func (c *RedisCache) InvalidatePublic(ctx context.Context) error {
	if err := c.client.Incr(ctx, catalogGenerationKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}

type noCache struct{}

func (noCache) Generation(context.Context) (int64, error) { return 0, nil }

func (noCache) GetPublic(context.Context, int64) ([]CourseSummary, bool, error) {
	return nil, false, nil
}

func (noCache) SetPublic(context.Context, int64, []CourseSummary) error { return nil }

func (noCache) InvalidatePublic(context.Context) error { return nil }
