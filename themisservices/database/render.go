package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lunagic/themis/themisservices/database/internal/utils"
	"github.com/lunagic/themis/themistools"
)

// tokenPrefix names placeholder tokens: :p1, :p2, ...
const tokenPrefix = ":p"

// renderContext is shared by a root query and every subquery rendered inside
// it, so placeholder tokens stay unique across the whole statement. While
// rendering, a token is written as a marker carrying a random nonce so it
// can be told apart from raw text that happens to read like a token.
type renderContext struct {
	driver        Driver
	prepared      map[string]PreparedValue
	counter       int
	marker        string
	createOptions []CreateTableOption
}

func newRenderContext(driver Driver, createOptions []CreateTableOption) *renderContext {
	return &renderContext{
		driver:        driver,
		prepared:      map[string]PreparedValue{},
		marker:        ":p_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "_",
		createOptions: createOptions,
	}
}

func (ctx *renderContext) bind(value Value, escape bool) string {
	ctx.counter++
	ctx.prepared[tokenPrefix+strconv.Itoa(ctx.counter)] = PreparedValue{
		Value:  value,
		Escape: escape,
	}

	return ctx.marker + strconv.Itoa(ctx.counter)
}

// statement splits rendered text at the markers.
func (ctx *renderContext) statement(rendered string) utils.Statement {
	return utils.SplitStatement(rendered, ctx.marker, tokenPrefix)
}

// value writes a token for escaped values and the raw literal otherwise.
func (ctx *renderContext) value(value Value, escape bool) string {
	if value.IsNull() {
		return "NULL"
	}

	if !escape {
		return renderLiteral(ctx.driver, value, false)
	}

	return ctx.bind(value, true)
}

func (ctx *renderContext) identifier(name string, escape bool) string {
	if !escape || name == "*" {
		return name
	}

	return ctx.driver.quoteIdentifier(name)
}

// renderLiteral writes a value as SQL text.
func renderLiteral(driver Driver, value Value, escape bool) string {
	switch value.Kind() {
	case KindNull:
		return "NULL"
	case KindString, KindTime, KindGUID:
		if escape {
			return driver.quoteValue(value.String())
		}
	case KindEnum:
		return driver.quoteValue(value.String())
	case KindBinary:
		if escape {
			return driver.renderBinary(value.binary)
		}
	}

	return value.String()
}

func (field FieldSelector) render(ctx *renderContext) string {
	parts := []string{}
	if strings.TrimSpace(field.Table) != "" {
		parts = append(parts, ctx.identifier(field.Table, field.Escape))
	}

	if strings.TrimSpace(field.Field) != "" {
		parts = append(parts, ctx.identifier(field.Field, field.Escape))
	}

	return strings.Join(parts, ".")
}

func (query *Query) renderSubquery(ctx *renderContext) string {
	return "(" + query.renderStatement(ctx) + ")"
}

func (fragment Select) render(ctx *renderContext) string {
	if fragment.Subquery != nil {
		return fragment.Subquery.renderSubquery(ctx)
	}

	rendered := fragment.Field.render(ctx)
	if strings.TrimSpace(fragment.Alias) != "" {
		rendered += " AS " + fragment.Alias
	}

	return rendered
}

func (fragment From) render(ctx *renderContext) string {
	if fragment.Subquery != nil {
		return fragment.Subquery.renderSubquery(ctx)
	}

	rendered := ""
	if strings.TrimSpace(fragment.Table) != "" {
		rendered = ctx.identifier(fragment.Table, fragment.EscapeTable)
	}

	if fragment.TableAlias != "" {
		rendered += " " + fragment.TableAlias
	}

	return rendered
}

func (fragment Join) render(ctx *renderContext) string {
	keyword := "JOIN"
	if fragment.Kind != JoinDefault {
		keyword = string(fragment.Kind) + " JOIN"
	}

	return fmt.Sprintf(
		"%s %s ON %s",
		keyword,
		ctx.identifier(fragment.Table, fragment.EscapeTable),
		fragment.Condition.render(ctx),
	)
}

func (where Where) render(ctx *renderContext) string {
	if where.Subquery != nil {
		return fmt.Sprintf(
			"%s %s %s",
			where.Field.render(ctx),
			where.Comparer.trimmed(),
			where.Subquery.renderSubquery(ctx),
		)
	}

	left := where.Field.render(ctx)

	if where.ValueField != nil {
		return left + where.Comparer.infix() + where.ValueField.render(ctx)
	}

	if where.Value.IsNull() {
		return left + Is.infix() + "NULL"
	}

	return left + where.Comparer.infix() + ctx.value(where.Value, where.EscapeValue)
}

// renderAssignment is a SET item: always =, and NULL is assigned rather than
// tested.
func (where Where) renderAssignment(ctx *renderContext) string {
	left := where.Field.render(ctx)

	if where.Subquery != nil {
		return left + "=" + where.Subquery.renderSubquery(ctx)
	}

	if where.ValueField != nil {
		return left + "=" + where.ValueField.render(ctx)
	}

	return left + "=" + ctx.value(where.Value, where.EscapeValue)
}

func (whereIn WhereIn) render(ctx *renderContext) string {
	keyword := " IN "
	if whereIn.Not {
		keyword = " NOT IN "
	}

	if whereIn.Subquery != nil {
		return whereIn.Field.render(ctx) + keyword + whereIn.Subquery.renderSubquery(ctx)
	}

	if len(whereIn.Values) == 0 {
		return ""
	}

	values := themistools.Map(whereIn.Values, func(value Value) string {
		return ctx.value(value, whereIn.EscapeValue)
	})

	return whereIn.Field.render(ctx) + keyword + "(" + strings.Join(values, ",") + ")"
}

func (groupBy GroupBy) render(ctx *renderContext) string {
	return groupBy.Field.render(ctx)
}

func (orderBy OrderBy) render(ctx *renderContext) string {
	rendered := orderBy.Field.render(ctx)
	if orderBy.Direction != OrderNone {
		rendered += " " + string(orderBy.Direction)
	}

	return rendered
}

// renderConditions chains predicates with their logical operators. A
// predicate that renders empty is skipped together with its operator.
func renderConditions(ctx *renderContext, keyword string, conditions []Condition) string {
	parts := []string{}
	for _, condition := range conditions {
		rendered := condition.render(ctx)
		if rendered == "" {
			continue
		}

		if len(parts) > 0 {
			parts = append(parts, condition.logicalOperator().text())
		}

		parts = append(parts, rendered)
	}

	if len(parts) == 0 {
		return ""
	}

	return keyword + " " + strings.Join(parts, " ")
}

func renderList[T any](keyword string, separator string, items []T, render func(T) string) string {
	if len(items) == 0 {
		return ""
	}

	return keyword + " " + themistools.JoinMap(items, separator, render)
}

func (query *Query) renderStatement(ctx *renderContext) string {
	switch query.queryType() {
	case QueryTypeCount:
		return query.renderSelectShape(ctx, "SELECT COUNT(*)")
	case QueryTypeSelectUnion:
		return query.renderUnion(ctx)
	case QueryTypeInsert:
		return query.renderInsert(ctx)
	case QueryTypeUpdate:
		return query.renderUpdate(ctx)
	case QueryTypeDelete:
		return query.renderDelete(ctx)
	case QueryTypeCreate:
		rendered, err := RenderCreateTable(ctx.driver, query.Create, ctx.createOptions...)
		if err != nil {
			return ""
		}
		return rendered
	}

	return query.renderSelectShape(ctx, query.renderSelectSentence(ctx))
}

func (query *Query) renderSelectSentence(ctx *renderContext) string {
	selects := []string{"*"}
	if len(query.Select) > 0 {
		selects = themistools.Map(query.Select, func(fragment Select) string {
			return fragment.render(ctx)
		})
	}

	distinct := ""
	if query.Distinct {
		distinct = "DISTINCT "
	}

	return "SELECT " + distinct + strings.Join(selects, ",")
}

func (query *Query) renderSelectShape(ctx *renderContext, sentence string) string {
	return themistools.JoinNotBlank(" ",
		sentence,
		renderList("FROM", ",", query.From, func(fragment From) string { return fragment.render(ctx) }),
		themistools.JoinMap(query.Joins, " ", func(fragment Join) string { return fragment.render(ctx) }),
		renderConditions(ctx, "WHERE", query.Where),
		renderList("GROUP BY", ",", query.GroupBy, func(fragment GroupBy) string { return fragment.render(ctx) }),
		renderConditions(ctx, "HAVING", query.Having),
		query.renderOrderAndLimit(ctx),
	)
}

func (query *Query) renderOrderAndLimit(ctx *renderContext) string {
	limit := ""
	if query.Limit != nil {
		limit = ctx.driver.renderLimit(*query.Limit)
	}

	return themistools.JoinNotBlank(" ",
		renderList("ORDER BY", ",", query.OrderBy, func(fragment OrderBy) string { return fragment.render(ctx) }),
		limit,
	)
}

func (query *Query) renderUnion(ctx *renderContext) string {
	separator := " UNION "
	if query.UnionAll {
		separator = " UNION ALL "
	}

	members := []string{}
	for i, member := range query.Unions {
		rendered := member.renderSelectShape(ctx, member.renderSelectSentence(ctx))

		// ORDER BY and LIMIT may only follow the last member, so a member
		// with its own is wrapped in a derived table.
		if len(member.OrderBy) > 0 || member.Limit != nil {
			rendered = fmt.Sprintf("SELECT * FROM (%s) AS %s", rendered, ctx.driver.quoteIdentifier(fmt.Sprintf("union_%d", i+1)))
		}

		members = append(members, rendered)
	}

	return themistools.JoinNotBlank(" ",
		strings.Join(members, separator),
		query.renderOrderAndLimit(ctx),
	)
}

func (query *Query) firstFrom() (From, bool) {
	if len(query.From) == 0 {
		return From{}, false
	}

	return query.From[0], true
}

func (query *Query) renderInsert(ctx *renderContext) string {
	from, found := query.firstFrom()
	if !found {
		return ""
	}

	columns := themistools.Map(query.Columns, func(column string) string {
		return ctx.driver.quoteIdentifier(column)
	})

	rows := themistools.Map(query.Values, func(row map[string]Value) string {
		values := themistools.Map(query.Columns, func(column string) string {
			return ctx.value(row[column], true)
		})

		return "(" + strings.Join(values, ",") + ")"
	})

	return themistools.JoinNotBlank(" ",
		fmt.Sprintf("INSERT INTO %s (%s)", ctx.identifier(from.Table, from.EscapeTable), strings.Join(columns, ",")),
		renderList("VALUES", ",", rows, func(row string) string { return row }),
	)
}

func (query *Query) renderUpdate(ctx *renderContext) string {
	from, found := query.firstFrom()
	if !found {
		return ""
	}

	return themistools.JoinNotBlank(" ",
		"UPDATE " + from.render(ctx),
		renderList("SET", ",", query.Set, func(fragment Where) string { return fragment.renderAssignment(ctx) }),
		renderConditions(ctx, "WHERE", query.Where),
	)
}

func (query *Query) renderDelete(ctx *renderContext) string {
	from, found := query.firstFrom()
	if !found {
		return ""
	}

	sentence := "DELETE FROM " + ctx.identifier(from.Table, from.EscapeTable)
	if strings.TrimSpace(from.TableAlias) != "" {
		sentence += " AS " + from.TableAlias
	}

	return themistools.JoinNotBlank(" ",
		sentence,
		renderConditions(ctx, "WHERE", query.Where),
	)
}
