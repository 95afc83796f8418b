package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/lunagic/themis/themisservices/cache"
	"github.com/vmihailenco/msgpack/v5"
)

type resultSnapshot struct {
	Columns []ResultColumn `msgpack:"columns"`
	Rows    [][]any        `msgpack:"rows"`
}

type resultCache struct {
	repository *cache.Repository[string, resultSnapshot]
	duration   time.Duration
}

func newResultCache(driver cache.Driver, duration time.Duration) *resultCache {
	return &resultCache{
		repository: cache.NewRepository[string, resultSnapshot](driver, "themis-result"),
		duration:   duration,
	}
}

// key hashes the engine, the final statement and its arguments.
func (c *resultCache) key(engine Engine, statement string, args []any) (string, error) {
	encodedArgs, err := msgpack.Marshal(args)
	if err != nil {
		return "", err
	}

	hash := sha256.New()
	fmt.Fprintf(hash, "%s\x00%s\x00", engine, statement)
	hash.Write(encodedArgs)

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (c *resultCache) get(ctx context.Context, key string) (*ResultSet, error) {
	snapshot, err := c.repository.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	resultSet := &ResultSet{}
	resultSet.beginLoad()
	for _, column := range snapshot.Columns {
		resultSet.addColumn(column)
	}
	for _, row := range snapshot.Rows {
		resultSet.addRow(row)
	}
	resultSet.endLoad()

	return resultSet, nil
}

// clear drops every cached result. Writes call it so later reads see them.
func (c *resultCache) clear(ctx context.Context) error {
	return c.repository.Clear(ctx)
}

func (c *resultCache) set(ctx context.Context, key string, resultSet *ResultSet) error {
	return c.repository.Set(ctx, key, resultSnapshot{
		Columns: resultSet.Columns(),
		Rows:    resultSet.Rows(),
	}, c.duration)
}
