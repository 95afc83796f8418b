package database

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/lunagic/themis/themisservices/cache"
)

// QueryBuilder runs one Query against the service. The exported fields hold
// the outcome of the last Execute.
type QueryBuilder struct {
	service *Service
	query   *Query

	AffectedRows    int64
	LastInsertID    int64
	HasLastInsertID bool
	TotalCount      int
	Result          *ResultSet

	err error
}

func (service *Service) Build(query *Query) *QueryBuilder {
	return &QueryBuilder{
		service: service,
		query:   query,
	}
}

func (builder *QueryBuilder) Query() *Query {
	return builder.query
}

// Err is the failure of the last Execute or ExecuteScalar, if any.
func (builder *QueryBuilder) Err() error {
	return builder.err
}

func (builder *QueryBuilder) reset() {
	builder.AffectedRows = 0
	builder.LastInsertID = 0
	builder.HasLastInsertID = false
	builder.Result = nil
	builder.err = nil
}

func (builder *QueryBuilder) fail(ctx context.Context, err error) {
	builder.reset()
	builder.err = err
	builder.service.reportException(ctx, err)
}

// Execute runs the query and reports whether it succeeded. Failures are sent
// to the exception hook and kept in Err.
func (builder *QueryBuilder) Execute(ctx context.Context) bool {
	builder.reset()

	if err := builder.execute(ctx); err != nil {
		builder.fail(ctx, err)
		return false
	}

	return true
}

// ExecuteScalar runs the query and converts the first column of the first
// row to T. Failures and unconvertible values yield the zero value.
func ExecuteScalar[T any](ctx context.Context, builder *QueryBuilder) T {
	var zero T

	builder.reset()

	value, err := builder.scalar(ctx)
	if err != nil {
		builder.fail(ctx, err)
		return zero
	}

	converted, _ := TryConvert[T](value)

	return converted
}

func (builder *QueryBuilder) prepare() (string, []any, error) {
	rendered := builder.query.render(builder.service.driver, false)

	statement, args, err := rendered.statement.Prepare(bindParameters(rendered.prepared), builder.service.driver.usesNumberedParameters())
	if err != nil {
		return "", nil, err
	}

	if statement == "" {
		return "", nil, ErrBlankQuery
	}

	return statement, args, nil
}

// withConn borrows one connection for the whole call and returns it on every
// path.
func (builder *QueryBuilder) withConn(ctx context.Context, run func(conn *sql.Conn) error) (err error) {
	conn, err := builder.service.standardLibraryDB.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && !errors.Is(closeErr, sql.ErrConnDone) {
			err = errors.Join(err, closeErr)
		}
	}()

	return run(conn)
}

func (builder *QueryBuilder) runHooks(ctx context.Context, statement string, args []any) error {
	for _, preRunFunc := range builder.service.preRunFuncs {
		if err := preRunFunc(ctx, statement, args); err != nil {
			return err
		}
	}

	return nil
}

func (builder *QueryBuilder) runPostHooks(ctx context.Context) error {
	for _, postRunFunc := range builder.service.postRunFuncs {
		if err := postRunFunc(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (builder *QueryBuilder) execute(ctx context.Context) error {
	if builder.query.queryType() == QueryTypeCreate {
		return builder.executeCreate(ctx)
	}

	statement, args, err := builder.prepare()
	if err != nil {
		return err
	}

	switch builder.query.queryType() {
	case QueryTypeSelect, QueryTypeSelectUnion:
		if builder.service.resultCache != nil {
			return builder.executeCachedSelect(ctx, statement, args)
		}

		return builder.executeSelect(ctx, statement, args)
	case QueryTypeCount:
		value, err := builder.queryScalar(ctx, statement, args)
		if err != nil {
			return err
		}

		if count, ok := TryConvert[int](value); ok {
			builder.TotalCount = count
		}

		return nil
	}

	err = builder.withConn(ctx, func(conn *sql.Conn) error {
		if err := builder.runHooks(ctx, statement, args); err != nil {
			return err
		}

		result, err := conn.ExecContext(ctx, statement, args...)
		if err != nil {
			return &ExecutionError{Statement: statement, Err: err}
		}

		affectedRows, err := result.RowsAffected()
		if err != nil {
			return &ExecutionError{Statement: statement, Err: err}
		}
		builder.AffectedRows = affectedRows

		if builder.query.queryType() == QueryTypeInsert && len(builder.query.Values) == 1 {
			builder.LastInsertID, builder.HasLastInsertID = builder.service.driver.lastInsertID(ctx, conn, result)
		}

		return builder.runPostHooks(ctx)
	})
	if err != nil {
		return err
	}

	builder.invalidateResultCache(ctx)

	return nil
}

// invalidateResultCache runs after a successful write. Failures are logged
// only.
func (builder *QueryBuilder) invalidateResultCache(ctx context.Context) {
	if builder.service.resultCache == nil {
		return
	}

	if err := builder.service.resultCache.clear(ctx); err != nil {
		builder.service.logger.WarnContext(ctx, "Database Result Cache", "error", err)
	}
}

func (builder *QueryBuilder) executeSelect(ctx context.Context, statement string, args []any) error {
	return builder.withConn(ctx, func(conn *sql.Conn) error {
		if err := builder.runHooks(ctx, statement, args); err != nil {
			return err
		}

		rows, err := conn.QueryContext(ctx, statement, args...)
		if err != nil {
			return &ExecutionError{Statement: statement, Err: err}
		}

		resultSet, err := Materialize(newSQLCursor(rows, builder.query))
		if err != nil {
			return &ExecutionError{Statement: statement, Err: err}
		}
		builder.Result = resultSet

		return builder.runPostHooks(ctx)
	})
}

// executeCachedSelect serves the result from the cache when present. Cache
// failures never fail the query.
func (builder *QueryBuilder) executeCachedSelect(ctx context.Context, statement string, args []any) error {
	resultCache := builder.service.resultCache

	key, err := resultCache.key(builder.service.driver.Engine(), statement, args)
	if err != nil {
		builder.service.logger.WarnContext(ctx, "Database Result Cache", "error", err)
		return builder.executeSelect(ctx, statement, args)
	}

	resultSet, err := resultCache.get(ctx, key)
	if err == nil {
		builder.Result = resultSet
		return nil
	}

	if !errors.Is(err, cache.ErrNotFound) {
		builder.service.logger.WarnContext(ctx, "Database Result Cache", "error", err)
	}

	if err := builder.executeSelect(ctx, statement, args); err != nil {
		return err
	}

	if err := resultCache.set(ctx, key, builder.Result); err != nil {
		builder.service.logger.WarnContext(ctx, "Database Result Cache", "error", err)
	}

	return nil
}

func (builder *QueryBuilder) executeCreate(ctx context.Context) error {
	options := append(slices.Clone(builder.service.createTableOptions), builder.query.CreateOptions...)

	statements, err := RenderCreateTableStatements(builder.service.driver, builder.query.Create, options...)
	if err != nil {
		return err
	}

	err = builder.withConn(ctx, func(conn *sql.Conn) error {
		for _, statement := range statements {
			if err := builder.runHooks(ctx, statement, nil); err != nil {
				return err
			}

			result, err := conn.ExecContext(ctx, statement)
			if err != nil {
				return &ExecutionError{Statement: statement, Err: err}
			}

			if affectedRows, err := result.RowsAffected(); err == nil {
				builder.AffectedRows += affectedRows
			}
		}

		return builder.runPostHooks(ctx)
	})
	if err != nil {
		return err
	}

	builder.invalidateResultCache(ctx)

	return nil
}

func (builder *QueryBuilder) scalar(ctx context.Context) (any, error) {
	statement, args, err := builder.prepare()
	if err != nil {
		return nil, err
	}

	return builder.queryScalar(ctx, statement, args)
}

// queryScalar returns the first column of the first row, or nil when there
// are no rows.
func (builder *QueryBuilder) queryScalar(ctx context.Context, statement string, args []any) (any, error) {
	var value any

	err := builder.withConn(ctx, func(conn *sql.Conn) error {
		if err := builder.runHooks(ctx, statement, args); err != nil {
			return err
		}

		rows, err := conn.QueryContext(ctx, statement, args...)
		if err != nil {
			return &ExecutionError{Statement: statement, Err: err}
		}

		resultSet, err := Materialize(newSQLCursor(rows, nil))
		if err != nil {
			return &ExecutionError{Statement: statement, Err: err}
		}

		if resultSet.Len() > 0 && len(resultSet.columns) > 0 {
			value = resultSet.rows[0][0]
		}

		return builder.runPostHooks(ctx)
	})

	return value, err
}
