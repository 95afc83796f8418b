package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lunagic/themis/cmd/themis/internal/cli"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const schemaFile = `
tables:
  - name: tags
    columns:
      - name: id
        type: int64
        primaryKey: true
        autoIncrement: true
      - name: label
        type: varchar
        length: 40
        notNull: true
`

const insertFile = `
type: INSERT
from: [{table: tags, escape: true}]
columns: [label]
values:
  - label: Ada
`

const selectFile = `
select:
  - field: {table: tags, field: label, escape: true}
from: [{table: tags, escape: true}]
where:
  - field: {table: tags, field: label, escape: true}
    value: Ada
    escapeValue: true
`

const createFile = `
type: CREATE
create:
  name: flags
  columns:
    - name: state
      type: enum
      enum:
        name: state
        members: [{name: "on"}, {name: "off"}]
`

const countFile = `
type: COUNT
from: [{table: tags, escape: true}]
`

type workspace struct {
	dir     string
	envFile string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	env := fmt.Sprintf("APP_LOG_LEVEL=error\nAPP_DRIVER_DATABASE=sqlite\nSQLITE_PATH=%s\n", filepath.Join(dir, "themis.sqlite"))
	assert.NilError(t, os.WriteFile(envFile, []byte(env), 0o600))

	for name, content := range map[string]string{
		"schema.yaml": schemaFile,
		"insert.yaml": insertFile,
		"select.yaml": selectFile,
		"count.yaml":  countFile,
		"create.yaml": createFile,
	} {
		assert.NilError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	return workspace{dir: dir, envFile: envFile}
}

func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	output := &bytes.Buffer{}

	cmd := cli.NewRootCommand()
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs(append([]string{"--no-color", "--env-file", w.envFile}, args...))

	err := cmd.ExecuteContext(t.Context())

	return output.String(), err
}

func (w workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func TestCommands(t *testing.T) {
	w := newWorkspace(t)

	{ // Print the schema
		output, err := w.run(t, "ddl", w.path("schema.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, `CREATE TABLE "tags" (`))
		assert.Check(t, is.Contains(output, `"label" TEXT (40) NOT NULL`))
	}

	{ // Apply the schema
		output, err := w.run(t, "ddl", "--apply", w.path("schema.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, "Created 1 table(s)"))
	}

	{ // Insert a row
		output, err := w.run(t, "query", "--execute", w.path("insert.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, `INSERT INTO "tags" ("label") VALUES ('Ada')`))
		assert.Check(t, is.Contains(output, "Affected rows: 1, last insert id: 1"))
	}

	{ // Prepared select
		output, err := w.run(t, "query", "--prepared", "--execute", w.path("select.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, `SELECT "tags"."label" FROM "tags" WHERE "tags"."label"=:p1`))
		assert.Check(t, is.Contains(output, "string"))
		assert.Check(t, is.Contains(output, "Ada"))
		assert.Check(t, is.Contains(output, "1 row(s)"))
	}

	{ // Count
		output, err := w.run(t, "query", "--execute", w.path("count.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, `SELECT COUNT(*) FROM "tags"`))
		assert.Check(t, is.Contains(output, "Total: 1"))
	}

	{ // Engine override
		output, err := w.run(t, "--engine", "mysql", "query", w.path("select.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, "SELECT `tags`.`label` FROM `tags` WHERE `tags`.`label`='Ada'"))
	}
}

func TestQueryCreateFollowsEnumCheck(t *testing.T) {
	w := newWorkspace(t)

	{ // Default mode skips the first member
		output, err := w.run(t, "query", w.path("create.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, `CHECK("state" IN('off'))`))
	}

	{ // The configured mode applies
		env, err := os.ReadFile(w.envFile)
		assert.NilError(t, err)
		assert.NilError(t, os.WriteFile(w.envFile, append(env, []byte("DATABASE_ENUM_CHECK=all\n")...), 0o600))

		output, err := w.run(t, "query", "--execute", w.path("create.yaml"))
		assert.NilError(t, err)
		assert.Check(t, is.Contains(output, `CHECK("state" IN('on','off'))`))
	}
}

func TestCommandErrors(t *testing.T) {
	w := newWorkspace(t)

	{ // Unknown engine
		_, err := w.run(t, "--engine", "oracle", "query", w.path("select.yaml"))
		assert.Error(t, err, "invalid database driver: oracle")
	}

	{ // Unknown enum check mode
		_, err := w.run(t, "ddl", "--enum-check", "some", w.path("schema.yaml"))
		assert.Error(t, err, "invalid enum check mode: some")
	}

	{ // Missing file
		_, err := w.run(t, "query", w.path("missing.yaml"))
		assert.Assert(t, os.IsNotExist(err))
	}

	{ // Missing argument
		_, err := w.run(t, "query")
		assert.ErrorContains(t, err, "accepts 1 arg(s)")
	}

	{ // Failing statement
		_, err := w.run(t, "query", "--execute", w.path("count.yaml"))
		assert.ErrorContains(t, err, "no such table")
	}
}
