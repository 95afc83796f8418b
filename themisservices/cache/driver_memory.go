package cache

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (entry memoryEntry) expired(now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

// NewDriverMemory returns a process local cache. Expired entries are swept
// every sweepInterval until ctx is done; a zero interval disables sweeping
// and expiry is then only checked on read.
func NewDriverMemory(ctx context.Context, sweepInterval time.Duration) (Driver, error) {
	driver := &driverMemory{
		entries: map[string]memoryEntry{},
	}

	if sweepInterval > 0 {
		go driver.sweepEvery(ctx, sweepInterval)
	}

	return driver, nil
}

type driverMemory struct {
	mutex   sync.RWMutex
	entries map[string]memoryEntry
}

func (driver *driverMemory) Get(ctx context.Context, key string) ([]byte, error) {
	driver.mutex.RLock()
	defer driver.mutex.RUnlock()

	entry, found := driver.entries[key]
	if !found || entry.expired(time.Now()) {
		return nil, ErrNotFound
	}

	return slices.Clone(entry.value), nil
}

func (driver *driverMemory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{
		value: slices.Clone(value),
	}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	driver.entries[key] = entry

	return nil
}

func (driver *driverMemory) Delete(ctx context.Context, keys ...string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for _, key := range keys {
		delete(driver.entries, key)
	}

	return nil
}

func (driver *driverMemory) DeletePrefix(ctx context.Context, prefix string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for key := range driver.entries {
		if strings.HasPrefix(key, prefix) {
			delete(driver.entries, key)
		}
	}

	return nil
}

func (driver *driverMemory) sweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			driver.sweep(now)
		}
	}
}

func (driver *driverMemory) sweep(now time.Time) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	for key, entry := range driver.entries {
		if entry.expired(now) {
			delete(driver.entries, key)
		}
	}
}
