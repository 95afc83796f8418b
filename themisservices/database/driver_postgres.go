package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

func NewDriverPostgres(config DriverPostgresConfig) Driver {
	return &driverPostgres{
		config: config,
	}
}

type DriverPostgresConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverPostgres struct {
	config DriverPostgresConfig
}

func (driver *driverPostgres) Open() (*sql.DB, error) {
	connector, err := pq.NewConnector(driver.dataSourceName())
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(connector), nil
}

func (driver *driverPostgres) dataSourceName() string {
	parts := []string{
		"host=" + pqQuote(driver.config.Host),
		"port=" + strconv.Itoa(driver.config.Port),
		"user=" + pqQuote(driver.config.User),
		"password=" + pqQuote(driver.config.Pass),
		"dbname=" + pqQuote(driver.config.Name),
		"sslmode=disable",
	}

	return strings.Join(parts, " ")
}

// pqQuote quotes a keyword/value connection string value.
func pqQuote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)

	return "'" + value + "'"
}

func (driver *driverPostgres) Engine() Engine {
	return EnginePostgres
}

func (driver *driverPostgres) autoIncrementKeyword() string {
	return "GENERATED BY DEFAULT AS IDENTITY"
}

var postgresColumnTypes = map[ColumnType]string{
	ColumnTypeBoolean:   "boolean",
	ColumnTypeInt16:     "smallint",
	ColumnTypeInt:       "integer",
	ColumnTypeInt32:     "integer",
	ColumnTypeInt64:     "bigint",
	ColumnTypeUint16:    "integer",
	ColumnTypeUint:      "bigint",
	ColumnTypeUint32:    "bigint",
	ColumnTypeUint64:    "numeric(20,0)",
	ColumnTypeDecimal:   "numeric",
	ColumnTypeFloat:     "real",
	ColumnTypeDouble:    "double precision",
	ColumnTypeText:      "text",
	ColumnTypeChar:      "char",
	ColumnTypeVarchar:   "varchar",
	ColumnTypeEnum:      "text",
	ColumnTypeDate:      "date",
	ColumnTypeDateTime:  "timestamp without time zone",
	ColumnTypeTime:      "time",
	ColumnTypeTimestamp: "timestamp with time zone",
	ColumnTypeBinary:    "bytea",
	ColumnTypeGUID:      "uuid",
	ColumnTypeJSON:      "jsonb",
	ColumnTypeXML:       "xml",
}

func (driver *driverPostgres) columnType(columnType ColumnType) (string, bool) {
	native, found := postgresColumnTypes[columnType]
	return native, found
}

// lastInsertID asks the session for the last sequence value, since lib/pq
// does not implement LastInsertId. Tables without a sequence make this fail,
// which only means there is no id to report.
func (driver *driverPostgres) lastInsertID(ctx context.Context, conn *sql.Conn, result sql.Result) (int64, bool) {
	if conn == nil {
		return 0, false
	}

	var id int64
	if err := conn.QueryRowContext(ctx, "SELECT lastval()").Scan(&id); err != nil {
		return 0, false
	}

	return id, true
}

func (driver *driverPostgres) quoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (driver *driverPostgres) quoteValue(text string) string {
	return quoteWith(`'`, text)
}

func (driver *driverPostgres) renderBinary(data []byte) string {
	return `'\x` + hex.EncodeToString(data) + `'::bytea`
}

func (driver *driverPostgres) renderLimit(limit Limit) string {
	parts := []string{}
	if limit.Count > 0 {
		parts = append(parts, "LIMIT "+strconv.Itoa(limit.Count))
	}

	if limit.Offset > 0 {
		parts = append(parts, "OFFSET "+strconv.Itoa(limit.Offset))
	}

	return strings.Join(parts, " ")
}

// No inline column comments
func (driver *driverPostgres) supportsColumnComment() bool {
	return false
}

func (driver *driverPostgres) supportsInlineIndexes() bool {
	return false
}

func (driver *driverPostgres) usesNumberedParameters() bool {
	return true
}
