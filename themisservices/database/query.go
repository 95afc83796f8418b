package database

import (
	"maps"

	"github.com/lunagic/themis/themisservices/database/internal/utils"
)

// Query is the abstract description of one statement. Fragment slices render
// in order.
type Query struct {
	Type     QueryType
	Distinct bool
	Select   []Select
	From     []From
	Joins    []Join
	Where    []Condition
	GroupBy  []GroupBy
	Having   []Condition
	OrderBy  []OrderBy
	Limit    *Limit
	Columns  []string
	Values   []map[string]Value
	Set      []Where
	Unions   []*Query
	UnionAll bool
	Create   Entity
	// CreateOptions apply when a CREATE query renders. Executing it adds the
	// service's WithCreateTableOptions first, so these win.
	CreateOptions []CreateTableOption

	cache *renderCache
}

// PreparedValue is a value bound to a placeholder token.
type PreparedValue struct {
	Value  Value
	Escape bool
}

type renderCache struct {
	engine    Engine
	statement utils.Statement
	template  string
	prepared  map[string]PreparedValue
	inline    string
	hasInline bool
}

func (query *Query) queryType() QueryType {
	if query.Type == "" {
		return QueryTypeSelect
	}

	return query.Type
}

// RenderPrepared renders the statement with a :pN token in place of every
// escaped value and returns the token map. The output is memoized per engine
// until force is set. Raw text in the template that reads like a token is
// left alone by Render and by execution.
func (query *Query) RenderPrepared(driver Driver, force bool) (string, map[string]PreparedValue) {
	cached := query.render(driver, force)

	return cached.template, maps.Clone(cached.prepared)
}

func (query *Query) render(driver Driver, force bool) *renderCache {
	if !force && query.cache != nil && query.cache.engine == driver.Engine() {
		return query.cache
	}

	ctx := newRenderContext(driver, query.CreateOptions)
	statement := ctx.statement(query.renderStatement(ctx))

	query.cache = &renderCache{
		engine:    driver.Engine(),
		statement: statement,
		template:  statement.String(),
		prepared:  ctx.prepared,
	}

	return query.cache
}

// Render renders the statement with every value written inline as an escaped
// literal. CREATE queries use CreateOptions only; a service executing one
// also applies its own create table options.
func (query *Query) Render(driver Driver) string {
	cached := query.render(driver, false)
	if cached.hasInline {
		return cached.inline
	}

	cached.inline = cached.statement.Replace(func(token string) string {
		preparedValue := cached.prepared[token]
		return renderLiteral(driver, preparedValue.Value, preparedValue.Escape)
	})
	cached.hasInline = true

	return cached.inline
}

// bindParameters turns the prepared map into the driver arguments keyed by
// token.
func bindParameters(prepared map[string]PreparedValue) map[string]any {
	parameters := make(map[string]any, len(prepared))
	for token, preparedValue := range prepared {
		parameters[token] = preparedValue.Value.bindArg()
	}

	return parameters
}
