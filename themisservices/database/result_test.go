package database_test

import (
	"errors"
	"testing"

	"github.com/lunagic/themis/themisservices/database"
	"gotest.tools/v3/assert"
)

type fakeCursor struct {
	columns  []database.CursorColumn
	rows     [][]any
	position int
	scanErr  error
	closeErr error
	closed   bool
}

func (cursor *fakeCursor) Columns() ([]database.CursorColumn, error) {
	return cursor.columns, nil
}

func (cursor *fakeCursor) Next() bool {
	if cursor.position >= len(cursor.rows) {
		return false
	}

	cursor.position++

	return true
}

func (cursor *fakeCursor) Scan(dest ...any) error {
	if cursor.scanErr != nil {
		return cursor.scanErr
	}

	for i, value := range cursor.rows[cursor.position-1] {
		*dest[i].(*any) = value
	}

	return nil
}

func (cursor *fakeCursor) Err() error {
	return nil
}

func (cursor *fakeCursor) Close() error {
	cursor.closed = true
	return cursor.closeErr
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	cursor := &fakeCursor{
		columns: []database.CursorColumn{
			{Name: "x", BaseTable: "A", BaseColumn: "x"},
			{Name: "x", BaseTable: "A", BaseColumn: "x"},
			{Name: "total", DatabaseType: "INTEGER"},
			{Name: "total"},
			{Name: "A::x_1"},
			{Name: "y", BaseTable: "A"},
		},
		rows: [][]any{
			{int64(1), "a", int64(3), int64(4), nil, "p"},
			{int64(5), "b", int64(7), int64(8), nil, "q"},
		},
	}

	resultSet, err := database.Materialize(cursor)
	assert.NilError(t, err)
	assert.Assert(t, cursor.closed)

	{ // Names are qualified when the origin is known and unique after that
		assert.DeepEqual(t, resultSet.ColumnNames(), []string{"A::x", "A::x_1", "total", "total_1", "A::x_1_1", "y"})
		assert.Equal(t, resultSet.Columns()[2].DatabaseType, "INTEGER")
	}

	{ // Rows are kept in order, each with its own buffer
		assert.Equal(t, resultSet.Len(), 2)
		assert.DeepEqual(t, resultSet.Rows(), [][]any{
			{int64(1), "a", int64(3), int64(4), nil, "p"},
			{int64(5), "b", int64(7), int64(8), nil, "q"},
		})

		row := resultSet.Row(0)
		row[0] = "changed"
		assert.Equal(t, resultSet.Row(0)[0], int64(1))
	}

	{ // Lookup by final name
		value, found := resultSet.Value(1, "A::x_1")
		assert.Assert(t, found)
		assert.Equal(t, value, "b")

		_, found = resultSet.Value(1, "missing")
		assert.Assert(t, !found)

		_, found = resultSet.Value(2, "A::x")
		assert.Assert(t, !found)

		assert.Assert(t, resultSet.Row(-1) == nil)
	}
}

func TestMaterializeErrors(t *testing.T) {
	t.Parallel()

	{ // Scan failures stop the read and still close
		scanErr := errors.New("scan failed")
		cursor := &fakeCursor{
			columns: []database.CursorColumn{{Name: "id"}},
			rows:    [][]any{{int64(1)}},
			scanErr: scanErr,
		}

		_, err := database.Materialize(cursor)
		assert.ErrorIs(t, err, scanErr)
		assert.Assert(t, cursor.closed)
	}

	{ // Close failures are reported
		closeErr := errors.New("close failed")
		cursor := &fakeCursor{
			columns:  []database.CursorColumn{{Name: "id"}},
			closeErr: closeErr,
		}

		_, err := database.Materialize(cursor)
		assert.ErrorIs(t, err, closeErr)
	}

	{ // A nil result set reads as empty
		var resultSet *database.ResultSet
		assert.Equal(t, resultSet.Len(), 0)
		assert.DeepEqual(t, resultSet.ColumnNames(), []string{})
		assert.DeepEqual(t, resultSet.Rows(), [][]any{})
	}
}
