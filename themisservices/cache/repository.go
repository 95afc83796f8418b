package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Repository keeps msgpack encoded values of one type in a namespace of the
// driver.
type Repository[Key comparable, Value any] struct {
	driver    Driver
	namespace string
}

func NewRepository[Key comparable, Value any](driver Driver, namespace string) *Repository[Key, Value] {
	return &Repository[Key, Value]{
		driver:    driver,
		namespace: namespace,
	}
}

func (repository *Repository[Key, Value]) prefix() string {
	return repository.namespace + ":"
}

func (repository *Repository[Key, Value]) key(key Key) string {
	return fmt.Sprintf("%s%v", repository.prefix(), key)
}

func (repository *Repository[Key, Value]) Set(ctx context.Context, key Key, value Value, ttl time.Duration) error {
	encoded, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", repository.key(key), err)
	}

	return repository.driver.Set(ctx, repository.key(key), encoded, ttl)
}

// Get decodes interface values loosely, so every integer comes back as
// int64 or uint64 and every float as float64.
func (repository *Repository[Key, Value]) Get(ctx context.Context, key Key) (Value, error) {
	var target Value

	encoded, err := repository.driver.Get(ctx, repository.key(key))
	if err != nil {
		return target, err
	}

	decoder := msgpack.NewDecoder(bytes.NewReader(encoded))
	decoder.UseLooseInterfaceDecoding(true)

	if err := decoder.Decode(&target); err != nil {
		return target, fmt.Errorf("decode %s: %w", repository.key(key), err)
	}

	return target, nil
}

func (repository *Repository[Key, Value]) Delete(ctx context.Context, keys ...Key) error {
	driverKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		driverKeys = append(driverKeys, repository.key(key))
	}

	return repository.driver.Delete(ctx, driverKeys...)
}

// Clear drops every value of the namespace.
func (repository *Repository[Key, Value]) Clear(ctx context.Context) error {
	return repository.driver.DeletePrefix(ctx, repository.prefix())
}
