package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strconv"
	"strings"
)

// Engine names the SQL dialect a Driver speaks.
type Engine string

const (
	EngineSQLite   Engine = "sqlite"
	EngineMySQL    Engine = "mysql"
	EnginePostgres Engine = "postgres"
)

// Driver carries everything engine specific: how to connect, how identifiers
// and literals are written and how logical column types map to native ones.
type Driver interface {
	Open() (*sql.DB, error)
	Engine() Engine
	autoIncrementKeyword() string
	columnType(columnType ColumnType) (string, bool)
	lastInsertID(ctx context.Context, conn *sql.Conn, result sql.Result) (int64, bool)
	quoteIdentifier(name string) string
	quoteValue(text string) string
	renderBinary(data []byte) string
	renderLimit(limit Limit) string
	supportsColumnComment() bool
	supportsInlineIndexes() bool
	usesNumberedParameters() bool
}

func quoteWith(delimiter string, text string) string {
	return delimiter + strings.ReplaceAll(text, delimiter, delimiter+delimiter) + delimiter
}

func hexUpper(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// renderOffsetCountLimit writes LIMIT offset,count, leaving out a negative
// offset and a non-positive count.
func renderOffsetCountLimit(limit Limit) string {
	parts := []string{}
	if limit.Offset >= 0 {
		parts = append(parts, strconv.Itoa(limit.Offset))
	}

	if limit.Count > 0 {
		parts = append(parts, strconv.Itoa(limit.Count))
	}

	if len(parts) == 0 {
		return ""
	}

	return "LIMIT " + strings.Join(parts, ",")
}

// lastInsertIDFromResult reads the identity through the driver result.
func lastInsertIDFromResult(result sql.Result) (int64, bool) {
	if result == nil {
		return 0, false
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false
	}

	return id, true
}
