package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CursorColumn describes one column of a cursor. BaseTable and BaseColumn are
// blank when the origin of the column is unknown.
type CursorColumn struct {
	Name         string
	DatabaseType string
	BaseTable    string
	BaseColumn   string
}

// Cursor is a forward only result stream.
type Cursor interface {
	Columns() ([]CursorColumn, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type ResultColumn struct {
	Name         string `msgpack:"name"`
	DatabaseType string `msgpack:"databaseType"`
	BaseTable    string `msgpack:"baseTable"`
	BaseColumn   string `msgpack:"baseColumn"`
}

// ResultSet is a materialized table. It is only written between beginLoad
// and endLoad and is read only afterwards.
type ResultSet struct {
	columns []ResultColumn
	rows    [][]any
	index   map[string]int
	loading bool
}

func (resultSet *ResultSet) beginLoad() {
	resultSet.loading = true
	if resultSet.index == nil {
		resultSet.index = map[string]int{}
	}
}

func (resultSet *ResultSet) endLoad() {
	resultSet.loading = false
}

// addColumn adds the column under a unique name, suffixing _1, _2 and so on
// when the name is taken.
func (resultSet *ResultSet) addColumn(column ResultColumn) {
	if !resultSet.loading {
		return
	}

	name := column.Name
	for i := 1; ; i++ {
		if _, taken := resultSet.index[name]; !taken {
			break
		}

		name = fmt.Sprintf("%s_%d", column.Name, i)
	}

	column.Name = name
	resultSet.index[name] = len(resultSet.columns)
	resultSet.columns = append(resultSet.columns, column)
}

func (resultSet *ResultSet) addRow(row []any) {
	if !resultSet.loading {
		return
	}

	resultSet.rows = append(resultSet.rows, row)
}

func (resultSet *ResultSet) Columns() []ResultColumn {
	if resultSet == nil {
		return nil
	}

	return append([]ResultColumn{}, resultSet.columns...)
}

// ColumnNames returns the final, deduplicated column names in order.
func (resultSet *ResultSet) ColumnNames() []string {
	names := []string{}
	for _, column := range resultSet.Columns() {
		names = append(names, column.Name)
	}

	return names
}

func (resultSet *ResultSet) Len() int {
	if resultSet == nil {
		return 0
	}

	return len(resultSet.rows)
}

// Rows returns a copy of every row.
func (resultSet *ResultSet) Rows() [][]any {
	rows := [][]any{}
	for i := range resultSet.Len() {
		rows = append(rows, resultSet.Row(i))
	}

	return rows
}

func (resultSet *ResultSet) Row(i int) []any {
	if i < 0 || i >= resultSet.Len() {
		return nil
	}

	return append([]any{}, resultSet.rows[i]...)
}

func (resultSet *ResultSet) ColumnIndex(name string) (int, bool) {
	if resultSet == nil {
		return 0, false
	}

	i, found := resultSet.index[name]
	return i, found
}

// Value returns the cell of the row under the named column.
func (resultSet *ResultSet) Value(row int, column string) (any, bool) {
	i, found := resultSet.ColumnIndex(column)
	if !found || row < 0 || row >= resultSet.Len() {
		return nil, false
	}

	return resultSet.rows[row][i], true
}

func resultColumnName(column CursorColumn) string {
	if column.BaseTable != "" && column.BaseColumn != "" {
		return column.BaseTable + "::" + column.BaseColumn
	}

	return column.Name
}

// Materialize reads the cursor to the end and closes it.
func Materialize(cursor Cursor) (resultSet *ResultSet, err error) {
	defer func() {
		if closeErr := cursor.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	columns, err := cursor.Columns()
	if err != nil {
		return nil, err
	}

	resultSet = &ResultSet{}
	resultSet.beginLoad()

	for _, column := range columns {
		resultSet.addColumn(ResultColumn{
			Name:         resultColumnName(column),
			DatabaseType: column.DatabaseType,
			BaseTable:    column.BaseTable,
			BaseColumn:   column.BaseColumn,
		})
	}

	for cursor.Next() {
		row := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range row {
			scanTargets[i] = &row[i]
		}

		if err := cursor.Scan(scanTargets...); err != nil {
			return nil, err
		}

		resultSet.addRow(row)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	resultSet.endLoad()

	return resultSet, nil
}

// sqlCursor adapts *sql.Rows. database/sql exposes no column origin, so the
// base table and column come from the plain table.field items of the select
// list when it lines up one to one with the result columns.
type sqlCursor struct {
	rows  *sql.Rows
	query *Query
}

func newSQLCursor(rows *sql.Rows, query *Query) Cursor {
	return &sqlCursor{
		rows:  rows,
		query: query,
	}
}

func (cursor *sqlCursor) Columns() ([]CursorColumn, error) {
	columnTypes, err := cursor.rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	origins := cursor.origins(len(columnTypes))

	columns := make([]CursorColumn, 0, len(columnTypes))
	for i, columnType := range columnTypes {
		column := CursorColumn{
			Name:         columnType.Name(),
			DatabaseType: columnType.DatabaseTypeName(),
		}

		if origins != nil {
			column.BaseTable = origins[i].Table
			column.BaseColumn = origins[i].Field
		}

		columns = append(columns, column)
	}

	return columns, nil
}

func (cursor *sqlCursor) origins(count int) []FieldSelector {
	if cursor.query == nil || cursor.query.queryType() != QueryTypeSelect {
		return nil
	}

	if len(cursor.query.Select) != count {
		return nil
	}

	origins := make([]FieldSelector, count)
	for i, fragment := range cursor.query.Select {
		if fragment.Subquery != nil || fragment.Field.Field == "*" || strings.ContainsAny(fragment.Field.Field, "( ") {
			continue
		}

		origins[i] = fragment.Field
	}

	return origins
}

func (cursor *sqlCursor) Next() bool {
	return cursor.rows.Next()
}

func (cursor *sqlCursor) Scan(dest ...any) error {
	return cursor.rows.Scan(dest...)
}

func (cursor *sqlCursor) Err() error {
	return cursor.rows.Err()
}

func (cursor *sqlCursor) Close() error {
	return cursor.rows.Close()
}
