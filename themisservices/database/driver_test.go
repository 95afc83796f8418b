package database_test

import (
	"log/slog"
	"testing"

	"github.com/lunagic/themis/themisservices/database"
	"gotest.tools/v3/assert"
)

type Member struct {
	ID     int64    `db:"id,primaryKey,autoIncrement"`
	Name   string   `db:"name,length=100"`
	Email  string   `db:"email,unique,length=100"`
	Status Status   `db:"status"`
	Score  *float64 `db:"score"`
}

func (Member) TableStructure() database.Table {
	return database.Table{
		Name: "members",
	}
}

func membersFrom() []database.From {
	return []database.From{{Table: "members", EscapeTable: true}}
}

func insertMembers(rows ...map[string]database.Value) *database.Query {
	return &database.Query{
		Type:    database.QueryTypeInsert,
		From:    membersFrom(),
		Columns: []string{"name", "email", "status", "score"},
		Values:  rows,
	}
}

func member(name string, status Status, score database.Value) map[string]database.Value {
	return map[string]database.Value{
		"name":   database.String(name),
		"email":  database.String(name + "@example.com"),
		"status": database.ValueOf(status),
		"score":  score,
	}
}

func whereField(field string, comparer database.Comparer, value database.Value) database.Where {
	return database.Where{
		Field:       database.Field("members", field),
		Comparer:    comparer,
		Value:       value,
		EscapeValue: true,
	}
}

func testSuite(t *testing.T, driver database.Driver) {
	ctx := t.Context()

	service, err := database.New(
		driver,
		database.WithLogger(slog.Default()),
		database.WithCreateTableOptions(database.WithEnumCheckMode(database.EnumCheckAllMembers)),
	)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	assert.NilError(t, service.Ping(ctx))

	countMembers := func(conditions ...database.Condition) int {
		builder := service.Build(&database.Query{
			Type:  database.QueryTypeCount,
			From:  membersFrom(),
			Where: conditions,
		})
		assert.Assert(t, builder.Execute(ctx), builder.Err())

		return builder.TotalCount
	}

	{ // Create the table from the struct tags
		builder := service.Build(&database.Query{
			Type:   database.QueryTypeCreate,
			Create: Member{},
		})
		assert.Assert(t, builder.Execute(ctx), builder.Err())
	}

	{ // Insert a single row and read its id back
		builder := service.Build(insertMembers(member("ada", StatusActive, database.Float(9.5))))
		assert.Assert(t, builder.Execute(ctx), builder.Err())
		assert.Equal(t, builder.AffectedRows, int64(1))
		assert.Assert(t, builder.HasLastInsertID)
		assert.Equal(t, builder.LastInsertID, int64(1))
	}

	{ // Insert several rows at once
		builder := service.Build(insertMembers(
			member("bob", StatusActive, database.Null()),
			member("cy", StatusInactive, database.Null()),
		))
		assert.Assert(t, builder.Execute(ctx), builder.Err())
		assert.Equal(t, builder.AffectedRows, int64(2))
		assert.Assert(t, !builder.HasLastInsertID)
	}

	{ // Count
		assert.Equal(t, countMembers(), 3)
	}

	{ // Select by enum, ordered
		builder := service.Build(&database.Query{
			Select: []database.Select{
				{Field: database.Field("members", "id")},
				{Field: database.Field("members", "name")},
				{Field: database.Field("members", "status")},
			},
			From: membersFrom(),
			Where: []database.Condition{
				whereField("status", database.Equal, database.ValueOf(StatusActive)),
			},
			OrderBy: []database.OrderBy{{Field: database.Field("members", "id"), Direction: database.OrderAsc}},
		})
		assert.Assert(t, builder.Execute(ctx), builder.Err())
		assert.DeepEqual(t, builder.Result.ColumnNames(), []string{"members::id", "members::name", "members::status"})
		assert.Equal(t, builder.Result.Len(), 2)

		name, _ := builder.Result.Value(0, "members::name")
		text, ok := database.TryConvert[string](name)
		assert.Assert(t, ok)
		assert.Equal(t, text, "ada")

		status, _ := builder.Result.Value(1, "members::status")
		text, ok = database.TryConvert[string](status)
		assert.Assert(t, ok)
		assert.Equal(t, text, "active")

		id, _ := builder.Result.Value(1, "members::id")
		number, ok := database.TryConvert[int64](id)
		assert.Assert(t, ok)
		assert.Equal(t, number, int64(2))
	}

	{ // Union members with their own ORDER BY and LIMIT
		edge := func(direction database.OrderDirection) *database.Query {
			return &database.Query{
				Select:  []database.Select{{Field: database.Field("members", "id")}},
				From:    membersFrom(),
				OrderBy: []database.OrderBy{{Field: database.Field("members", "id"), Direction: direction}},
				Limit:   &database.Limit{Offset: 0, Count: 1},
			}
		}

		builder := service.Build(&database.Query{
			Type:    database.QueryTypeSelectUnion,
			Unions:  []*database.Query{edge(database.OrderAsc), edge(database.OrderDesc)},
			OrderBy: []database.OrderBy{{Field: database.RawField("id"), Direction: database.OrderAsc}},
		})
		assert.Assert(t, builder.Execute(ctx), builder.Err())
		assert.Equal(t, builder.Result.Len(), 2)

		ids := []int64{}
		for _, row := range builder.Result.Rows() {
			id, ok := database.TryConvert[int64](row[0])
			assert.Assert(t, ok)
			ids = append(ids, id)
		}
		assert.DeepEqual(t, ids, []int64{1, 3})
	}

	{ // IN lists and scalars
		builder := service.Build(&database.Query{
			Type: database.QueryTypeCount,
			From: membersFrom(),
			Where: []database.Condition{
				database.WhereIn{
					Field:       database.Field("members", "name"),
					Values:      database.Values("bob", "cy", "zed"),
					EscapeValue: true,
				},
			},
		})
		assert.Equal(t, database.ExecuteScalar[int](ctx, builder), 2)
		assert.NilError(t, builder.Err())
	}

	{ // NULL comparisons become IS NULL
		assert.Equal(t, countMembers(whereField("score", database.Equal, database.Null())), 2)
	}

	{ // Update
		builder := service.Build(&database.Query{
			Type: database.QueryTypeUpdate,
			From: membersFrom(),
			Set: []database.Where{
				{Field: database.Field("", "status"), Value: database.ValueOf(StatusBanned), EscapeValue: true},
			},
			Where: []database.Condition{
				whereField("name", database.Equal, database.String("cy")),
			},
		})
		assert.Assert(t, builder.Execute(ctx), builder.Err())
		assert.Equal(t, builder.AffectedRows, int64(1))
		assert.Equal(t, countMembers(whereField("status", database.Equal, database.ValueOf(StatusBanned))), 1)
	}

	{ // Unique violations are recognised
		builder := service.Build(insertMembers(member("ada", StatusActive, database.Null())))
		assert.Assert(t, !builder.Execute(ctx))
		assert.Assert(t, database.IsUniqueConstraintError(builder.Err()), builder.Err())
	}

	{ // CHECK violations are recognised
		row := member("dee", StatusActive, database.Null())
		row["status"] = database.String("deleted")

		builder := service.Build(insertMembers(row))
		assert.Assert(t, !builder.Execute(ctx))
		assert.Assert(t, database.IsCheckConstraintError(builder.Err()), builder.Err())
	}

	{ // Delete
		builder := service.Build(&database.Query{
			Type: database.QueryTypeDelete,
			From: membersFrom(),
			Where: []database.Condition{
				whereField("id", database.Equal, database.Int(1)),
			},
		})
		assert.Assert(t, builder.Execute(ctx), builder.Err())
		assert.Equal(t, builder.AffectedRows, int64(1))
		assert.Equal(t, countMembers(), 2)
	}
}
