// File: services/cache/redis.go
package cache

import (
	"context"
	"encoding/json"

	"roombooking/models"
	"roombooking/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const keyPrefix = "availability:"

// RedisCache stores payloads under a per-session namespace so concurrent
// clients sharing one Redis never read each other's entries. Redis errors are
// logged and behave as misses.
type RedisCache struct {
	client    *redis.Client
	namespace string
	logger    *zap.Logger
}

func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return NewRedisCacheWithNamespace(client, uuid.NewString(), logger)
}

func NewRedisCacheWithNamespace(client *redis.Client, namespace string, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &RedisCache{client: client, namespace: namespace, logger: logger}
}

func (c *RedisCache) dateKey(date string) string {
	return keyPrefix + c.namespace + ":" + date
}

func (c *RedisCache) redisKey(key Key) string {
	return keyPrefix + c.namespace + ":" + key.String()
}

func (c *RedisCache) Get(ctx context.Context, key Key) (*models.AvailabilityPayload, bool) {
	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("availability cache read failed", zap.String("key", key.String()), zap.Error(err))
		return nil, false
	}
	var payload models.AvailabilityPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("availability cache entry corrupt", zap.String("key", key.String()), zap.Error(err))
		return nil, false
	}
	return &payload, true
}

func (c *RedisCache) Set(ctx context.Context, key Key, payload *models.AvailabilityPayload) {
	if payload == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("availability cache encode failed", zap.String("key", key.String()), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.redisKey(key), data, 0).Err(); err != nil {
		c.logger.Warn("availability cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
}

func (c *RedisCache) Evict(ctx context.Context, key Key) {
	if err := c.client.Del(ctx, c.redisKey(key)).Err(); err != nil {
		c.logger.Warn("availability cache evict failed", zap.String("key", key.String()), zap.Error(err))
	}
}

func (c *RedisCache) EvictDate(ctx context.Context, date string) {
	summary := c.dateKey(date)
	rooms, err := c.client.Keys(ctx, summary+":*").Result()
	if err != nil {
		c.logger.Warn("availability cache scan failed", zap.String("date", date), zap.Error(err))
		rooms = nil
	}
	keys := append([]string{summary}, rooms...)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("availability cache evict failed", zap.String("date", date), zap.Error(err))
	}
}
