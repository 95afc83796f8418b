package database

import "strings"

// QueryType selects the statement shape a Query renders as.
type QueryType string

const (
	QueryTypeSelect      QueryType = "SELECT"
	QueryTypeCount       QueryType = "COUNT"
	QueryTypeSelectUnion QueryType = "SELECT_UNION"
	QueryTypeInsert      QueryType = "INSERT"
	QueryTypeUpdate      QueryType = "UPDATE"
	QueryTypeDelete      QueryType = "DELETE"
	QueryTypeCreate      QueryType = "CREATE"
)

// Comparer is the comparison operator of a Where predicate.
type Comparer string

const (
	Equal          Comparer = "="
	NotEqual       Comparer = "<>"
	Greater        Comparer = ">"
	GreaterOrEqual Comparer = ">="
	Less           Comparer = "<"
	LessOrEqual    Comparer = "<="
	Is             Comparer = "IS"
	IsNot          Comparer = "IS NOT"
	Like           Comparer = "LIKE"
	NotLike        Comparer = "NOT LIKE"
	In             Comparer = "IN"
	NotIn          Comparer = "NOT IN"
)

// infix is the comparer as written between two operands. Keyword operators
// need surrounding spaces, symbols do not.
func (comparer Comparer) infix() string {
	text := strings.TrimSpace(string(comparer))
	if text == "" {
		return string(Equal)
	}

	for _, r := range text {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
			return " " + text + " "
		}
	}

	return text
}

func (comparer Comparer) trimmed() string {
	return strings.TrimSpace(comparer.infix())
}

// LogicalOperator joins a predicate to the one before it.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
)

func (operator LogicalOperator) text() string {
	if operator == "" {
		return string(And)
	}

	return string(operator)
}

type OrderDirection string

const (
	OrderNone OrderDirection = ""
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

type JoinKind string

const (
	JoinDefault JoinKind = ""
	JoinInner   JoinKind = "INNER"
	JoinLeft    JoinKind = "LEFT"
	JoinRight   JoinKind = "RIGHT"
	JoinCross   JoinKind = "CROSS"
)

// FieldSelector addresses a column, optionally qualified by its table.
type FieldSelector struct {
	Table  string `yaml:"table"`
	Field  string `yaml:"field"`
	Escape bool   `yaml:"escape"`
}

// Field is an escaped selector for table.field.
func Field(table string, field string) FieldSelector {
	return FieldSelector{
		Table:  table,
		Field:  field,
		Escape: true,
	}
}

// RawField is a selector written into the statement as is.
func RawField(field string) FieldSelector {
	return FieldSelector{
		Field: field,
	}
}

type Select struct {
	Field    FieldSelector `yaml:"field"`
	Alias    string        `yaml:"alias"`
	Subquery *Query        `yaml:"subquery"`
}

type From struct {
	Table       string `yaml:"table"`
	TableAlias  string `yaml:"alias"`
	EscapeTable bool   `yaml:"escape"`
	Subquery    *Query `yaml:"subquery"`
}

type Join struct {
	Kind        JoinKind `yaml:"kind"`
	Table       string   `yaml:"table"`
	EscapeTable bool     `yaml:"escape"`
	Condition   Where    `yaml:"on"`
}

// Condition is a single predicate of a WHERE or HAVING clause.
type Condition interface {
	logicalOperator() LogicalOperator
	render(ctx *renderContext) string
}

// Where compares a field against a value, another field or a subquery.
type Where struct {
	Field       FieldSelector   `yaml:"field"`
	Comparer    Comparer        `yaml:"comparer"`
	Value       Value           `yaml:"value"`
	ValueField  *FieldSelector  `yaml:"valueField"`
	EscapeValue bool            `yaml:"escapeValue"`
	Subquery    *Query          `yaml:"subquery"`
	Operator    LogicalOperator `yaml:"operator"`
}

func (where Where) logicalOperator() LogicalOperator {
	return where.Operator
}

// WhereIn tests a field for membership in a value list or a subquery.
type WhereIn struct {
	Field       FieldSelector   `yaml:"field"`
	Values      []Value         `yaml:"values"`
	EscapeValue bool            `yaml:"escapeValue"`
	Subquery    *Query          `yaml:"subquery"`
	Operator    LogicalOperator `yaml:"operator"`
	Not         bool            `yaml:"not"`
}

func (whereIn WhereIn) logicalOperator() LogicalOperator {
	return whereIn.Operator
}

type GroupBy struct {
	Field FieldSelector `yaml:"field"`
}

type OrderBy struct {
	Field     FieldSelector  `yaml:"field"`
	Direction OrderDirection `yaml:"direction"`
}

// Limit bounds the result. A negative Offset and a non-positive Count are
// left out of the rendered clause.
type Limit struct {
	Offset int `yaml:"offset"`
	Count  int `yaml:"count"`
}
