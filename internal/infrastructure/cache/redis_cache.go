package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

const keyPrefix = "entregas:balances:"

// RedisBalanceCache caché compartida entre instancias; valores JSON con TTL igual al de la sesión.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBalanceCache(addr, password string, db int, ttl time.Duration) *RedisBalanceCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisBalanceCache{client: client, ttl: ttl}
}

// NewRedisBalanceCacheFromClient usa un cliente ya construido (tests, pools compartidos).
func NewRedisBalanceCacheFromClient(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

func (c *RedisBalanceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

func (c *RedisBalanceCache) Get(ctx context.Context, session, item string) ([]entity.SubUnit, bool, error) {
	val, err := c.client.Get(ctx, redisKey(session, item)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var subUnits []entity.SubUnit
	if err := json.Unmarshal([]byte(val), &subUnits); err != nil {
		return nil, false, err
	}
	if subUnits == nil {
		subUnits = []entity.SubUnit{}
	}
	return subUnits, true, nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, session, item string, subUnits []entity.SubUnit) error {
	if subUnits == nil {
		subUnits = []entity.SubUnit{}
	}
	payload, err := json.Marshal(subUnits)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKey(session, item), payload, c.ttl).Err()
}

func (c *RedisBalanceCache) Invalidate(ctx context.Context, session, item string) error {
	return c.client.Del(ctx, redisKey(session, item)).Err()
}

// Drop borra las claves de la sesión recorriendo con SCAN para no bloquear el servidor.
func (c *RedisBalanceCache) Drop(ctx context.Context, session string) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+session+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func redisKey(session, item string) string {
	return keyPrefix + session + ":" + item
}
