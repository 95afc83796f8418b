package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lunagic/themis/themisservices/cache"
)

type ServiceConfigFunc func(service *Service) error

func WithPostConnectFunc(callback func(db *sql.DB) error) ServiceConfigFunc {
	return func(service *Service) error {
		return callback(service.standardLibraryDB)
	}
}

func WithPreRunFunc(preRunFunc func(ctx context.Context, statement string, args []any) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, preRunFunc)
		return nil
	}
}

func WithPostRunFunc(postRunFunc func(ctx context.Context) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.postRunFuncs = append(service.postRunFuncs, postRunFunc)
		return nil
	}
}

// WithLogger logs every statement before it runs and is the logger failed
// executions are reported to.
func WithLogger(logger *slog.Logger) ServiceConfigFunc {
	return func(service *Service) error {
		service.logger = logger
		service.preRunFuncs = append(service.preRunFuncs, func(ctx context.Context, statement string, args []any) error {
			logger.InfoContext(ctx, "Database Run",
				"engine", service.driver.Engine(),
				"statement", statement,
				"args", args,
			)

			return nil
		})

		return nil
	}
}

// WithExceptionFunc replaces the hook failed executions are routed to.
func WithExceptionFunc(exceptionFunc func(ctx context.Context, err error)) ServiceConfigFunc {
	return func(service *Service) error {
		service.exceptionFunc = exceptionFunc
		return nil
	}
}

// WithResultCache serves repeated SELECT statements from the cache driver for
// the given duration.
func WithResultCache(driver cache.Driver, duration time.Duration) ServiceConfigFunc {
	return func(service *Service) error {
		service.resultCache = newResultCache(driver, duration)
		return nil
	}
}

// WithCreateTableOptions sets the options used when a CREATE query runs.
func WithCreateTableOptions(options ...CreateTableOption) ServiceConfigFunc {
	return func(service *Service) error {
		service.createTableOptions = append(service.createTableOptions, options...)
		return nil
	}
}
