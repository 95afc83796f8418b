package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrBlankQuery      = errors.New("blank query")
	ErrMissingMetadata = errors.New("missing table metadata")
)

// ErrUnsupportedType is returned when a logical column type has no native
// storage type on an engine.
type ErrUnsupportedType struct {
	Type   ColumnType
	Engine Engine
}

func (err ErrUnsupportedType) Error() string {
	if err.Engine == "" {
		return fmt.Sprintf("unsupported type: %s", err.Type)
	}

	return fmt.Sprintf("unsupported type: %s on %s", err.Type, err.Engine)
}

// MissingMetadataError is returned when CREATE TABLE is requested for an
// entity without a table name.
type MissingMetadataError struct {
	Type string
}

func (err MissingMetadataError) Error() string {
	return fmt.Sprintf("missing table metadata for %s", err.Type)
}

func (err MissingMetadataError) Unwrap() error {
	return ErrMissingMetadata
}

// ExecutionError is a driver failure while running a statement.
type ExecutionError struct {
	Statement string
	Err       error
}

func (err *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %s", err.Statement, err.Err)
}

func (err *ExecutionError) Unwrap() error {
	return err.Err
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"

	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451
	mysqlForeignKeyChild        = 1452
	mysqlCheckConstraintViolate = 3819
	mariadbConstraintFailed     = 4025
)

// IsConstraintError reports whether the error came from any constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports whether the error came from a unique or
// primary key violation.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	if pgErr, ok := asError[*pq.Error](err); ok {
		return pgErr.Code == pgUniqueViolation
	}

	if mysqlErr, ok := asError[*mysql.MySQLError](err); ok {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	if sqliteErr, ok := asError[sqlite3.Error](err); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return containsAny(err.Error(),
		"Error 1062",
		"violates unique constraint",
		"UNIQUE constraint failed",
	)
}

// IsForeignKeyConstraintError reports whether the error came from a foreign
// key violation.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}

	if pgErr, ok := asError[*pq.Error](err); ok {
		return pgErr.Code == pgForeignKeyViolation
	}

	if mysqlErr, ok := asError[*mysql.MySQLError](err); ok {
		return mysqlErr.Number == mysqlForeignKeyParent || mysqlErr.Number == mysqlForeignKeyChild
	}

	if sqliteErr, ok := asError[sqlite3.Error](err); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}

	return containsAny(err.Error(),
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	)
}

// IsCheckConstraintError reports whether the error came from a CHECK violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}

	if pgErr, ok := asError[*pq.Error](err); ok {
		return pgErr.Code == pgCheckViolation
	}

	if mysqlErr, ok := asError[*mysql.MySQLError](err); ok {
		return mysqlErr.Number == mysqlCheckConstraintViolate || mysqlErr.Number == mariadbConstraintFailed
	}

	if sqliteErr, ok := asError[sqlite3.Error](err); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}

	return containsAny(err.Error(),
		"Error 3819",
		"Error 4025",
		"violates check constraint",
		"CHECK constraint failed",
	)
}

func asError[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}

	return target, false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
