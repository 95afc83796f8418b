package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for SCAN and the size of each DEL.
const scanBatch = 500

type DriverRedisConfig struct {
	Host   string
	Number int
	Pass   string
	Port   int
	User   string
}

// NewDriverRedis does not connect; the first command does.
func NewDriverRedis(config DriverRedisConfig) (Driver, error) {
	if config.Host == "" {
		return nil, errors.New("redis host is required")
	}

	return NewDriverRedisClient(redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Username: config.User,
		Password: config.Pass,
		DB:       config.Number,
	})), nil
}

// NewDriverRedisClient wraps an existing client, including cluster and
// sentinel clients.
func NewDriverRedisClient(client redis.UniversalClient) Driver {
	return &driverRedis{
		client: client,
	}
}

type driverRedis struct {
	client redis.UniversalClient
}

func (driver *driverRedis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := driver.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return value, nil
}

func (driver *driverRedis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}

	if err := driver.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

func (driver *driverRedis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return driver.client.Del(ctx, keys...).Err()
}

func (driver *driverRedis) DeletePrefix(ctx context.Context, prefix string) error {
	batch := make([]string, 0, scanBatch)

	iterator := driver.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iterator.Next(ctx) {
		batch = append(batch, iterator.Val())
		if len(batch) < scanBatch {
			continue
		}

		if err := driver.Delete(ctx, batch...); err != nil {
			return err
		}
		batch = batch[:0]
	}

	if err := iterator.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", prefix, err)
	}

	return driver.Delete(ctx, batch...)
}
