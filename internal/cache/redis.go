package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/slotbooking/config"
	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds host slot listings. Slots are immutable once created,
// so the only invalidation is a new slot for the host, which bumps the
// host's list version.
type RedisCache struct {
	client   *redis.Client
	slotsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, slotsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		slotsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, slotsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, slotsTTL: slotsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetHostSlots returns the list cached for the host's current version,
// and that version. A miss is nil slots with a nil error.
func (c *RedisCache) GetHostSlots(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, int64, error) {
	version, err := c.client.Get(ctx, hostVersionKey(hostID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	data, err := c.client.Get(ctx, hostSlotsKey(hostID, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, version, nil
		}
		return nil, 0, err
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, 0, err
	}
	return slots, version, nil
}

// SetHostSlots stores slots under version. A list read before an
// invalidation lands on a version nobody reads anymore.
func (c *RedisCache) SetHostSlots(ctx context.Context, hostID uuid.UUID, version int64, slots []domain.TimeSlot) error {
	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, hostSlotsKey(hostID, version), payload, c.slotsTTL).Err()
}

func (c *RedisCache) InvalidateHostSlots(ctx context.Context, hostID uuid.UUID) error {
	version, err := c.client.Incr(ctx, hostVersionKey(hostID)).Result()
	if err != nil {
		return err
	}
	return c.client.Del(ctx, hostSlotsKey(hostID, version-1)).Err()
}

func hostVersionKey(hostID uuid.UUID) string {
	return fmt.Sprintf("cache:host:%s:timeslots:version", hostID)
}

func hostSlotsKey(hostID uuid.UUID, version int64) string {
	return fmt.Sprintf("cache:host:%s:timeslots:v%d", hostID, version)
}
