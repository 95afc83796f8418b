package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

type Service struct {
	driver             Driver
	standardLibraryDB  *sql.DB
	logger             *slog.Logger
	preRunFuncs        []func(ctx context.Context, statement string, args []any) error
	postRunFuncs       []func(ctx context.Context) error
	exceptionFunc      func(ctx context.Context, err error)
	resultCache        *resultCache
	createTableOptions []CreateTableOption
}

func New(
	driver Driver,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	db, err := driver.Open()
	if err != nil {
		return nil, err
	}

	return NewFromDB(driver, db, configFuncs...)
}

// NewFromDB wraps an already opened handle, for example one from sqlmock.
func NewFromDB(
	driver Driver,
	db *sql.DB,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	service := &Service{
		driver:            driver,
		standardLibraryDB: db,
		logger:            slog.Default(),
		preRunFuncs:       []func(ctx context.Context, statement string, args []any) error{},
		postRunFuncs:      []func(ctx context.Context) error{},
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(service); err != nil {
			return nil, errors.Join(err, db.Close())
		}
	}

	return service, nil
}

func (service *Service) Driver() Driver {
	return service.driver
}

func (service *Service) Ping(ctx context.Context) error {
	return service.standardLibraryDB.PingContext(ctx)
}

func (service *Service) Close() error {
	return service.standardLibraryDB.Close()
}

// reportException hands a failed execution to the exception hook, which logs
// it unless replaced with WithExceptionFunc.
func (service *Service) reportException(ctx context.Context, err error) {
	if service.exceptionFunc != nil {
		service.exceptionFunc(ctx, err)
		return
	}

	service.logger.ErrorContext(ctx, "Database Error", "error", err)
}
