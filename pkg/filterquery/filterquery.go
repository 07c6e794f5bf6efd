// Package filterquery translates sparse listing filters into SQL predicate
// sets. Each queryable entity declares an explicit schema table mapping
// filter-field names to columns and match kinds, so resolution happens at
// initialization time instead of through runtime reflection.
package filterquery

import (
	"slices"
	"strings"

	"github.com/doug-martin/goqu/v9"
)

// Kind selects how a filter value is matched against its column.
type Kind int

const (
	// Text matches with a case-insensitive substring comparison.
	Text Kind = iota
	// Enum matches exactly after upper-casing; unknown values are dropped.
	Enum
	// Exact matches numeric and identifier values by equality.
	Exact
	// Relation matches by equality on the related record's identifier
	// column (e.g. filter field "memberId" against loans.member_id).
	Relation
)

// Column describes one queryable column of a schema.
type Column struct {
	Name   string
	Kind   Kind
	Values []string // allowed upper-case values for Enum columns
}

// Schema maps filter-field names to columns for one entity table.
type Schema struct {
	columns map[string]Column
}

func NewSchema(columns map[string]Column) Schema {
	return Schema{columns: columns}
}

// Field is one optional filter entry. A nil value or blank string means
// "no constraint".
type Field struct {
	Name  string
	Value any
}

// String builds a text-valued filter field.
func String(name, value string) Field {
	return Field{Name: name, Value: value}
}

// ID builds an identifier-valued filter field; a nil pointer contributes
// no constraint.
func ID(name string, value *int64) Field {
	if value == nil {
		return Field{Name: name}
	}
	return Field{Name: name, Value: *value}
}

// Translate builds the predicate set for the given fields. Predicates are
// emitted in field declaration order so generated query text stays
// deterministic, and the soft-delete guard is always included. Fields
// without a schema column, blank values and unrecognized enum values are
// silently dropped.
func Translate(schema Schema, fields []Field) []goqu.Expression {
	exprs := []goqu.Expression{goqu.C("deleted_at").IsNull()}

	for _, field := range fields {
		col, ok := schema.columns[field.Name]
		if !ok {
			continue
		}

		switch value := field.Value.(type) {
		case string:
			if strings.TrimSpace(value) == "" {
				continue
			}
			switch col.Kind {
			case Text:
				exprs = append(exprs, goqu.C(col.Name).ILike("%"+value+"%"))
			case Enum:
				normalized := strings.ToUpper(strings.TrimSpace(value))
				if !slices.Contains(col.Values, normalized) {
					continue
				}
				exprs = append(exprs, goqu.C(col.Name).Eq(normalized))
			default:
				exprs = append(exprs, goqu.C(col.Name).Eq(value))
			}
		case int64:
			exprs = append(exprs, goqu.C(col.Name).Eq(value))
		}
	}

	return exprs
}
