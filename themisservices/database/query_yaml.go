package database

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type queryDocument struct {
	Type     QueryType           `yaml:"type"`
	Distinct bool                `yaml:"distinct"`
	Select   []Select            `yaml:"select"`
	From     []From              `yaml:"from"`
	Joins    []Join              `yaml:"joins"`
	Where    []conditionDocument `yaml:"where"`
	GroupBy  []GroupBy           `yaml:"groupBy"`
	Having   []conditionDocument `yaml:"having"`
	OrderBy  []OrderBy           `yaml:"orderBy"`
	Limit    *Limit              `yaml:"limit"`
	Columns  []string            `yaml:"columns"`
	Values   []map[string]Value  `yaml:"values"`
	Set      []Where             `yaml:"set"`
	Unions   []*Query            `yaml:"unions"`
	UnionAll bool                `yaml:"unionAll"`
	Create   *Table              `yaml:"create"`
}

// conditionDocument is a Where, or a WhereIn when the in key is present or
// the comparer is IN or NOT IN.
type conditionDocument struct {
	Where `yaml:",inline"`
	In    *[]Value `yaml:"in"`
	Not   bool     `yaml:"not"`
}

func (document conditionDocument) condition() (Condition, error) {
	comparer := Comparer(strings.ToUpper(document.Comparer.trimmed()))
	if document.In == nil && comparer != In && comparer != NotIn {
		return document.Where, nil
	}

	whereIn := WhereIn{
		Field:       document.Field,
		EscapeValue: document.EscapeValue,
		Subquery:    document.Subquery,
		Operator:    document.Operator,
		Not:         document.Not || comparer == NotIn,
	}

	switch {
	case document.In != nil && len(*document.In) > 0:
		whereIn.Values = *document.In
	case document.Subquery != nil:
	case !document.Value.IsNull():
		whereIn.Values = []Value{document.Value}
	default:
		// An empty list renders no predicate at all.
		return nil, fmt.Errorf("%s condition on %s needs an in list, a value or a subquery", comparer, document.Field.Field)
	}

	return whereIn, nil
}

func conditions(documents []conditionDocument) ([]Condition, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	result := make([]Condition, 0, len(documents))
	for _, document := range documents {
		condition, err := document.condition()
		if err != nil {
			return nil, err
		}

		result = append(result, condition)
	}

	return result, nil
}

// UnmarshalYAML reads a query document, including nested subqueries.
func (query *Query) UnmarshalYAML(node *yaml.Node) error {
	document := queryDocument{}
	if err := node.Decode(&document); err != nil {
		return err
	}

	where, err := conditions(document.Where)
	if err != nil {
		return err
	}

	having, err := conditions(document.Having)
	if err != nil {
		return err
	}

	*query = Query{
		Type:     document.Type,
		Distinct: document.Distinct,
		Select:   document.Select,
		From:     document.From,
		Joins:    document.Joins,
		Where:    where,
		GroupBy:  document.GroupBy,
		Having:   having,
		OrderBy:  document.OrderBy,
		Limit:    document.Limit,
		Columns:  document.Columns,
		Values:   document.Values,
		Set:      document.Set,
		Unions:   document.Unions,
		UnionAll: document.UnionAll,
	}

	if document.Create != nil {
		query.Create = *document.Create
	}

	return nil
}
