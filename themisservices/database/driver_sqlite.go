package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func NewDriverSQLite(path string) Driver {
	return &driverSQLite{
		Path: path,
	}
}

type driverSQLite struct {
	Path string
}

func (driver *driverSQLite) Open() (*sql.DB, error) {
	return sql.Open(
		"sqlite3",
		fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", driver.Path),
	)
}

func (driver *driverSQLite) Engine() Engine {
	return EngineSQLite
}

func (driver *driverSQLite) autoIncrementKeyword() string {
	return "AUTOINCREMENT"
}

var sqliteColumnTypes = map[ColumnType]string{
	ColumnTypeBoolean:   "INTEGER",
	ColumnTypeInt16:     "INTEGER",
	ColumnTypeInt:       "INTEGER",
	ColumnTypeInt32:     "INTEGER",
	ColumnTypeInt64:     "INTEGER",
	ColumnTypeUint16:    "INTEGER",
	ColumnTypeUint:      "INTEGER",
	ColumnTypeUint32:    "INTEGER",
	ColumnTypeUint64:    "INTEGER",
	ColumnTypeDecimal:   "NUMERIC",
	ColumnTypeFloat:     "REAL",
	ColumnTypeDouble:    "REAL",
	ColumnTypeText:      "TEXT",
	ColumnTypeChar:      "TEXT",
	ColumnTypeVarchar:   "TEXT",
	ColumnTypeEnum:      "TEXT",
	ColumnTypeDate:      "TEXT", // ISO 8601 text
	ColumnTypeDateTime:  "TEXT",
	ColumnTypeTime:      "TEXT",
	ColumnTypeTimestamp: "TEXT",
	ColumnTypeBinary:    "BLOB",
	ColumnTypeGUID:      "TEXT",
	ColumnTypeJSON:      "TEXT",
	ColumnTypeXML:       "TEXT",
}

func (driver *driverSQLite) columnType(columnType ColumnType) (string, bool) {
	native, found := sqliteColumnTypes[columnType]
	return native, found
}

func (driver *driverSQLite) lastInsertID(ctx context.Context, conn *sql.Conn, result sql.Result) (int64, bool) {
	return lastInsertIDFromResult(result)
}

func (driver *driverSQLite) quoteIdentifier(name string) string {
	return quoteWith(`"`, name)
}

func (driver *driverSQLite) quoteValue(text string) string {
	return quoteWith(`'`, text)
}

func (driver *driverSQLite) renderBinary(data []byte) string {
	return "X'" + hexUpper(data) + "'"
}

func (driver *driverSQLite) renderLimit(limit Limit) string {
	return renderOffsetCountLimit(limit)
}

// Does not support inline column comments
func (driver *driverSQLite) supportsColumnComment() bool {
	return false
}

func (driver *driverSQLite) supportsInlineIndexes() bool {
	return false
}

func (driver *driverSQLite) usesNumberedParameters() bool {
	return false
}
