package themis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/joho/godotenv"
	"github.com/lunagic/themis/themisservices/cache"
	"github.com/lunagic/themis/themisservices/database"
	"github.com/spf13/viper"
)

type AppConfig struct {
	// App
	AppLogLevel string `env:"APP_LOG_LEVEL"`
	// App Drivers
	AppDriverDatabase string `env:"APP_DRIVER_DATABASE"`
	AppDriverCache    string `env:"APP_DRIVER_CACHE"`
	// Database
	DatabaseEnumCheck      string        `env:"DATABASE_ENUM_CHECK"`
	DatabaseResultCacheTTL time.Duration `env:"DATABASE_RESULT_CACHE_TTL"`
	// Services
	MySQLHost    string `env:"MYSQL_HOST"`
	MySQLName    string `env:"MYSQL_NAME"`
	MySQLPass    string `env:"MYSQL_PASS"`
	MySQLPort    int    `env:"MYSQL_PORT"`
	MySQLUser    string `env:"MYSQL_USER"`
	PostgresHost string `env:"POSTGRES_HOST"`
	PostgresName string `env:"POSTGRES_NAME"`
	PostgresPass string `env:"POSTGRES_PASS"`
	PostgresPort int    `env:"POSTGRES_PORT"`
	PostgresUser string `env:"POSTGRES_USER"`
	RedisHost    string `env:"REDIS_HOST"`
	RedisNumber  int    `env:"REDIS_NUMBER"`
	RedisPass    string `env:"REDIS_PASS"`
	RedisPort    int    `env:"REDIS_PORT"`
	RedisUser    string `env:"REDIS_USER"`
	SQLitePath   string `env:"SQLITE_PATH"`
}

func NewConfig() AppConfig {
	return AppConfig{
		AppLogLevel:       "info",
		AppDriverCache:    "memory",
		AppDriverDatabase: "sqlite",
		DatabaseEnumCheck: "skip-first",
		MySQLHost:         "127.0.0.1",
		MySQLPort:         3306,
		PostgresHost:      "127.0.0.1",
		PostgresPort:      5432,
		RedisHost:         "127.0.0.1",
		RedisPort:         6379,
		SQLitePath:        "database.sqlite",
	}
}

// LoadConfig starts from NewConfig, applies the given .env files in order and
// lets the process environment override both. Missing files are skipped.
func LoadConfig(envFiles ...string) (AppConfig, error) {
	config := NewConfig()

	dotenv := map[string]string{}
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		values, err := godotenv.Read(envFile)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read %s: %w", envFile, err)
		}

		for key, value := range values {
			dotenv[key] = value
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	target := reflect.ValueOf(&config).Elem()
	for i := range target.NumField() {
		field := target.Type().Field(i)
		key := field.Tag.Get("env")
		if key == "" {
			continue
		}

		v.SetDefault(key, target.Field(i).Interface())
		if value, found := dotenv[key]; found {
			v.SetDefault(key, value)
		}

		switch {
		case field.Type == reflect.TypeFor[time.Duration]():
			target.Field(i).SetInt(int64(v.GetDuration(key)))
		case field.Type.Kind() == reflect.String:
			target.Field(i).SetString(v.GetString(key))
		case field.Type.Kind() == reflect.Int:
			target.Field(i).SetInt(int64(v.GetInt(key)))
		case field.Type.Kind() == reflect.Bool:
			target.Field(i).SetBool(v.GetBool(key))
		default:
			return AppConfig{}, fmt.Errorf("unsupported config field: %s", field.Name)
		}
	}

	return config, nil
}

// Logger is a text logger on stderr at the configured level. Unknown levels
// fall back to info.
func (config AppConfig) Logger() *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(config.AppLogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func (config AppConfig) DatabaseDriver() (database.Driver, error) {
	switch config.AppDriverDatabase {
	case "sqlite":
		return database.NewDriverSQLite(config.SQLitePath), nil
	case "postgres":
		return database.NewDriverPostgres(database.DriverPostgresConfig{
			Host: config.PostgresHost,
			Port: config.PostgresPort,
			User: config.PostgresUser,
			Pass: config.PostgresPass,
			Name: config.PostgresName,
		}), nil
	case "mysql":
		return database.NewDriverMySQL(database.DriverMySQLConfig{
			Host: config.MySQLHost,
			Port: config.MySQLPort,
			User: config.MySQLUser,
			Pass: config.MySQLPass,
			Name: config.MySQLName,
		}), nil
	}

	return nil, fmt.Errorf("invalid database driver: %s", config.AppDriverDatabase)
}

func (config AppConfig) EnumCheckMode() (database.EnumCheckMode, error) {
	switch config.DatabaseEnumCheck {
	case "skip-first", "":
		return database.EnumCheckSkipFirst, nil
	case "all":
		return database.EnumCheckAllMembers, nil
	}

	return 0, fmt.Errorf("invalid enum check mode: %s", config.DatabaseEnumCheck)
}

// Database opens the configured engine. The logger, the enum check mode and,
// when a TTL is set, the result cache are applied before configFuncs.
func (config AppConfig) Database(ctx context.Context, configFuncs ...database.ServiceConfigFunc) (*database.Service, error) {
	driver, err := config.DatabaseDriver()
	if err != nil {
		return nil, err
	}

	enumCheckMode, err := config.EnumCheckMode()
	if err != nil {
		return nil, err
	}

	defaults := []database.ServiceConfigFunc{
		database.WithLogger(config.Logger()),
		database.WithCreateTableOptions(database.WithEnumCheckMode(enumCheckMode)),
	}

	if config.DatabaseResultCacheTTL > 0 {
		cacheDriver, err := config.Cache(ctx)
		if err != nil {
			return nil, err
		}

		defaults = append(defaults, database.WithResultCache(cacheDriver, config.DatabaseResultCacheTTL))
	}

	return database.New(driver, append(defaults, configFuncs...)...)
}

func (config AppConfig) Cache(ctx context.Context) (cache.Driver, error) {
	switch config.AppDriverCache {
	case "memory":
		return cache.NewDriverMemory(ctx, time.Minute)
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:   config.RedisHost,
			Number: config.RedisNumber,
			Pass:   config.RedisPass,
			Port:   config.RedisPort,
			User:   config.RedisUser,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", config.AppDriverCache)
}
