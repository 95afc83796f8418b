package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
)

func NewDriverMySQL(config DriverMySQLConfig) Driver {
	return &driverMySQL{
		config: config,
	}
}

type DriverMySQLConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverMySQL struct {
	config DriverMySQLConfig
}

func (driver *driverMySQL) Open() (*sql.DB, error) {
	_ = mysql.SetLogger(log.New(io.Discard, "", log.LstdFlags))

	config := mysql.NewConfig()
	config.User = driver.config.User
	config.Passwd = driver.config.Pass
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", driver.config.Host, driver.config.Port)
	config.DBName = driver.config.Name
	config.ParseTime = true

	connector, err := mysql.NewConnector(config)
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(connector), nil
}

func (driver *driverMySQL) Engine() Engine {
	return EngineMySQL
}

func (driver *driverMySQL) autoIncrementKeyword() string {
	return "AUTO_INCREMENT"
}

// xml has no native storage type.
var mysqlColumnTypes = map[ColumnType]string{
	ColumnTypeBoolean:   "BOOLEAN",
	ColumnTypeInt16:     "SMALLINT",
	ColumnTypeInt:       "INT",
	ColumnTypeInt32:     "INT",
	ColumnTypeInt64:     "BIGINT",
	ColumnTypeUint16:    "SMALLINT UNSIGNED",
	ColumnTypeUint:      "INT UNSIGNED",
	ColumnTypeUint32:    "INT UNSIGNED",
	ColumnTypeUint64:    "BIGINT UNSIGNED",
	ColumnTypeDecimal:   "DECIMAL",
	ColumnTypeFloat:     "FLOAT",
	ColumnTypeDouble:    "DOUBLE",
	ColumnTypeText:      "TEXT",
	ColumnTypeChar:      "CHAR",
	ColumnTypeVarchar:   "VARCHAR",
	ColumnTypeEnum:      "TEXT",
	ColumnTypeDate:      "DATE",
	ColumnTypeDateTime:  "DATETIME",
	ColumnTypeTime:      "TIME",
	ColumnTypeTimestamp: "TIMESTAMP",
	ColumnTypeBinary:    "BLOB",
	ColumnTypeGUID:      "CHAR(36)",
	ColumnTypeJSON:      "JSON",
}

func (driver *driverMySQL) columnType(columnType ColumnType) (string, bool) {
	native, found := mysqlColumnTypes[columnType]
	return native, found
}

func (driver *driverMySQL) lastInsertID(ctx context.Context, conn *sql.Conn, result sql.Result) (int64, bool) {
	return lastInsertIDFromResult(result)
}

func (driver *driverMySQL) quoteIdentifier(name string) string {
	return quoteWith("`", name)
}

// Backslash is an escape character inside MySQL string literals.
func (driver *driverMySQL) quoteValue(text string) string {
	return quoteWith(`'`, strings.ReplaceAll(text, `\`, `\\`))
}

func (driver *driverMySQL) renderBinary(data []byte) string {
	return "X'" + hexUpper(data) + "'"
}

func (driver *driverMySQL) renderLimit(limit Limit) string {
	return renderOffsetCountLimit(limit)
}

func (driver *driverMySQL) supportsColumnComment() bool {
	return true
}

func (driver *driverMySQL) supportsInlineIndexes() bool {
	return true
}

func (driver *driverMySQL) usesNumberedParameters() bool {
	return false
}
