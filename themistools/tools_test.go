package themistools_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/lunagic/themis/themistools"
	"gotest.tools/v3/assert"
)

type column struct {
	Name     string
	Nullable bool
}

var columns = []column{
	{Name: "id"},
	{Name: "deleted_at", Nullable: true},
}

func quote(column column) string {
	return `"` + column.Name + `"`
}

func TestMap(t *testing.T) {
	t.Parallel()

	assert.DeepEqual(t, themistools.Map(columns, quote), []string{`"id"`, `"deleted_at"`})
	assert.DeepEqual(t, themistools.Map([]int{1, 20}, strconv.Itoa), []string{"1", "20"})

	{ // Empty input gives an empty, non-nil slice
		assert.DeepEqual(t, themistools.Map([]string{}, strings.ToUpper), []string{})
		assert.Assert(t, themistools.Map[string, string](nil, strings.ToUpper) != nil)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	assert.DeepEqual(t, themistools.Filter(columns, func(column column) bool {
		return column.Nullable
	}), []column{columns[1]})
}

func TestJoinMap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, themistools.JoinMap(columns, ",", quote), `"id","deleted_at"`)
	assert.Equal(t, themistools.JoinMap([]column{}, ",", quote), "")
}

func TestJoinNotBlank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, themistools.JoinNotBlank(" ", "SELECT *", "", `FROM "users"`, ""), `SELECT * FROM "users"`)
	assert.Equal(t, themistools.JoinNotBlank(" ", "", ""), "")
	assert.Equal(t, themistools.JoinNotBlank(" "), "")
}
