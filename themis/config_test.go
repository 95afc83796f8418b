package themis_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lunagic/themis/themis"
	"github.com/lunagic/themis/themisservices/database"
	"gotest.tools/v3/assert"
)

func writeEnvFile(t *testing.T, name string, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	base := writeEnvFile(t, ".env", "APP_DRIVER_DATABASE=postgres\nPOSTGRES_PORT=6543\nPOSTGRES_NAME=themis\nDATABASE_RESULT_CACHE_TTL=90s\n")
	local := writeEnvFile(t, ".env.local", "POSTGRES_NAME=themis_local\n")

	t.Setenv("POSTGRES_USER", "operator")

	config, err := themis.LoadConfig(base, local, filepath.Join(t.TempDir(), "missing.env"))
	assert.NilError(t, err)

	{ // Defaults survive
		assert.Equal(t, config.MySQLPort, 3306)
		assert.Equal(t, config.AppDriverCache, "memory")
	}

	{ // Files apply in order
		assert.Equal(t, config.AppDriverDatabase, "postgres")
		assert.Equal(t, config.PostgresPort, 6543)
		assert.Equal(t, config.PostgresName, "themis_local")
		assert.Equal(t, config.DatabaseResultCacheTTL, 90*time.Second)
	}

	{ // The environment wins
		assert.Equal(t, config.PostgresUser, "operator")

		t.Setenv("POSTGRES_PORT", "7000")
		config, err := themis.LoadConfig(base)
		assert.NilError(t, err)
		assert.Equal(t, config.PostgresPort, 7000)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := themis.LoadConfig()
	assert.NilError(t, err)
	assert.DeepEqual(t, config, themis.NewConfig())
}

func TestDatabaseFactory(t *testing.T) {
	t.Parallel()

	{ // Engines by name
		for engine, expected := range map[string]database.Engine{
			"sqlite":   database.EngineSQLite,
			"mysql":    database.EngineMySQL,
			"postgres": database.EnginePostgres,
		} {
			config := themis.NewConfig()
			config.AppDriverDatabase = engine

			driver, err := config.DatabaseDriver()
			assert.NilError(t, err)
			assert.Equal(t, driver.Engine(), expected)
		}
	}

	{ // Unknown names
		config := themis.NewConfig()
		config.AppDriverDatabase = "oracle"

		_, err := config.DatabaseDriver()
		assert.Error(t, err, "invalid database driver: oracle")

		_, err = config.Database(t.Context())
		assert.Error(t, err, "invalid database driver: oracle")
	}

	{ // A working SQLite service with the result cache
		config := themis.NewConfig()
		config.AppLogLevel = "error"
		config.SQLitePath = fmt.Sprintf("%s/database.sqlite", t.TempDir())
		config.DatabaseResultCacheTTL = time.Minute

		service, err := config.Database(t.Context())
		assert.NilError(t, err)
		defer service.Close()

		assert.NilError(t, service.Ping(t.Context()))
		assert.Equal(t, service.Driver().Engine(), database.EngineSQLite)
	}

	{ // Enum check modes
		config := themis.NewConfig()

		mode, err := config.EnumCheckMode()
		assert.NilError(t, err)
		assert.Equal(t, mode, database.EnumCheckSkipFirst)

		config.DatabaseEnumCheck = "all"
		mode, err = config.EnumCheckMode()
		assert.NilError(t, err)
		assert.Equal(t, mode, database.EnumCheckAllMembers)

		config.DatabaseEnumCheck = "some"
		_, err = config.EnumCheckMode()
		assert.Error(t, err, "invalid enum check mode: some")
	}
}

func TestCacheFactory(t *testing.T) {
	t.Parallel()

	config := themis.NewConfig()

	{ // Memory
		driver, err := config.Cache(t.Context())
		assert.NilError(t, err)
		assert.Assert(t, driver != nil)
	}

	{ // Redis builds without connecting
		config.AppDriverCache = "redis"
		driver, err := config.Cache(t.Context())
		assert.NilError(t, err)
		assert.Assert(t, driver != nil)
	}

	{ // Unknown names
		config.AppDriverCache = "memcached"
		_, err := config.Cache(t.Context())
		assert.Error(t, err, "invalid cache driver: memcached")
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()

	config := themis.NewConfig()
	config.AppLogLevel = "warn"
	assert.Assert(t, !config.Logger().Enabled(t.Context(), -4))
	assert.Assert(t, config.Logger().Enabled(t.Context(), 4))

	config.AppLogLevel = "loud"
	assert.Assert(t, config.Logger().Enabled(t.Context(), 0))
}
