package cache_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/themis/themisservices/cache"
	"gotest.tools/v3/assert"
)

func testDriver(t *testing.T, driver cache.Driver) {
	prefix := uuid.NewString()
	key := prefix + ":" + uuid.NewString()
	value := []byte(uuid.NewString())

	{ // Missing keys
		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Set then get
		assert.NilError(t, driver.Set(t.Context(), key, value, 30*time.Second))

		actual, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.DeepEqual(t, actual, value)
	}

	{ // Delete several keys at once, unknown keys included
		other := prefix + ":" + uuid.NewString()
		assert.NilError(t, driver.Set(t.Context(), other, value, 30*time.Second))
		assert.NilError(t, driver.Delete(t.Context(), key, other, uuid.NewString()))

		for _, deleted := range []string{key, other} {
			_, err := driver.Get(t.Context(), deleted)
			assert.ErrorIs(t, err, cache.ErrNotFound)
		}

		assert.NilError(t, driver.Delete(t.Context()))
	}

	{ // Delete by prefix leaves other keys alone
		kept := uuid.NewString()
		assert.NilError(t, driver.Set(t.Context(), kept, value, 30*time.Second))

		for range 3 {
			assert.NilError(t, driver.Set(t.Context(), prefix+":"+uuid.NewString(), value, 0))
		}
		assert.NilError(t, driver.Set(t.Context(), key, value, 0))

		assert.NilError(t, driver.DeletePrefix(t.Context(), prefix+":"))

		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)

		actual, err := driver.Get(t.Context(), kept)
		assert.NilError(t, err)
		assert.DeepEqual(t, actual, value)
	}

	{ // Expiry
		key := uuid.NewString()
		assert.NilError(t, driver.Set(t.Context(), key, value, time.Second))

		actual, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.DeepEqual(t, actual, value)

		time.Sleep(2 * time.Second)

		_, err = driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}
}
