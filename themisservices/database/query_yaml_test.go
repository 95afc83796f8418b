package database_test

import (
	"testing"

	"github.com/lunagic/themis/themisservices/database"
	"gopkg.in/yaml.v3"
	"gotest.tools/v3/assert"
)

func TestQueryUnmarshalYAML(t *testing.T) {
	t.Parallel()

	{ // Conditions, IN lists and subqueries
		document := `
type: SELECT
select:
  - field: {table: users, field: id, escape: true}
from:
  - table: users
    escape: true
where:
  - field: {table: users, field: status, escape: true}
    value: {enum: active}
    escapeValue: true
  - field: {table: users, field: id, escape: true}
    in: [1, 2, 3]
    operator: OR
  - field: {table: users, field: deleted_at, escape: true}
    comparer: "="
    value: ~
    escapeValue: true
  - field: {table: users, field: group_id, escape: true}
    comparer: NOT IN
    subquery:
      select:
        - field: {table: groups, field: id, escape: true}
      from:
        - table: groups
          escape: true
      where:
        - field: {table: groups, field: name, escape: true}
          comparer: LIKE
          value: "admin%"
          escapeValue: true
limit: {offset: 0, count: 10}
`

		query := &database.Query{}
		assert.NilError(t, yaml.Unmarshal([]byte(document), query))

		assert.Equal(t, query.Render(sqliteDriver), `SELECT "users"."id" FROM "users" WHERE "users"."status"='active' OR "users"."id" IN (1,2,3) AND "users"."deleted_at" IS NULL AND "users"."group_id" NOT IN (SELECT "groups"."id" FROM "groups" WHERE "groups"."name" LIKE 'admin%') LIMIT 0,10`)

		template, prepared := query.RenderPrepared(postgresDriver, false)
		assert.Equal(t, template, `SELECT "users"."id" FROM "users" WHERE "users"."status"=:p1 OR "users"."id" IN (1,2,3) AND "users"."deleted_at" IS NULL AND "users"."group_id" NOT IN (SELECT "groups"."id" FROM "groups" WHERE "groups"."name" LIKE :p2) LIMIT 10`)
		assert.Equal(t, len(prepared), 2)
	}

	{ // Insert rows with typed values
		document := `
type: INSERT
from: [{table: users, escape: true}]
columns: [name, avatar, id]
values:
  - name: Ada
    avatar: {hex: 01ab}
    id: {guid: 0f8fad5b-d9cb-469f-a165-70867728950e}
`

		query := &database.Query{}
		assert.NilError(t, yaml.Unmarshal([]byte(document), query))

		assert.Equal(t, query.Render(sqliteDriver), `INSERT INTO "users" ("name","avatar","id") VALUES ('Ada',X'01AB','0f8fad5b-d9cb-469f-a165-70867728950e')`)
	}

	{ // Create from a table document
		document := `
type: CREATE
create:
  name: tags
  columns:
    - name: id
      type: int64
      primaryKey: true
    - name: label
      type: varchar
      length: 40
      notNull: true
`

		query := &database.Query{}
		assert.NilError(t, yaml.Unmarshal([]byte(document), query))

		assert.Equal(t, query.Render(sqliteDriver), `CREATE TABLE "tags" ("id" INTEGER PRIMARY KEY,"label" TEXT (40) NOT NULL)`)
	}

	{ // A scalar value for IN becomes a one item list
		document := `
type: DELETE
from:
  - table: users
    escape: true
where:
  - field: {table: users, field: id, escape: true}
    comparer: IN
    value: 5
`

		query := &database.Query{}
		assert.NilError(t, yaml.Unmarshal([]byte(document), query))

		assert.Equal(t, query.Render(sqliteDriver), `DELETE FROM "users" WHERE "users"."id" IN (5)`)
	}

	{ // IN without anything to match is rejected
		for _, condition := range []string{
			"comparer: IN",
			"comparer: NOT IN",
			"in: []",
		} {
			document := `
type: DELETE
from:
  - table: users
    escape: true
where:
  - field: {table: users, field: id, escape: true}
    ` + condition + `
`

			query := &database.Query{}
			err := yaml.Unmarshal([]byte(document), query)
			assert.ErrorContains(t, err, "condition on id needs an in list, a value or a subquery", condition)
		}
	}

	{ // Having conditions follow the same rule
		document := `
type: SELECT
from:
  - table: users
    escape: true
having:
  - field: {table: users, field: id, escape: true}
    comparer: NOT IN
`

		query := &database.Query{}
		assert.ErrorContains(t, yaml.Unmarshal([]byte(document), query), "NOT IN condition on id")
	}
}
