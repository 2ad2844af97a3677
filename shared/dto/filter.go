package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterOperatorLess      = "less"
	FilterOperatorGreater   = "greater"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
	FilterOperatorLess:      "<",
	FilterOperatorGreater:   ">",
}

// Filter is a single predicate bound through a named parameter. ArgName
// defaults to Field and must be set when one field appears twice in a group.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq like in not_eq less_eq greater_eq less greater"`
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	column := f.column()

	name := f.ArgName
	if name == "" {
		name = f.Field
	}

	if op, ok := comparisons[f.Operator]; ok {
		args[name] = f.Value

		return fmt.Sprintf("%s %s :%s", column, op, name), args
	}

	switch f.Operator {
	case FilterOperatorLike:
		args[name] = fmt.Sprintf("%%%v%%", f.Value)

		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", column, name), args
	case FilterOperatorIn:
		return f.in(column, name, args)
	case FilterIsNotNull:
		return column + " IS NOT NULL", args
	case FilterIsNull:
		return column + " IS NULL", args
	default:
		return "", args
	}
}

// in expands a slice value into one parameter per element. An empty slice
// matches nothing.
func (f *Filter) in(column, name string, args map[string]any) (string, map[string]any) {
	val := reflect.ValueOf(f.Value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		args[name] = f.Value

		return fmt.Sprintf("%s IN (:%s)", column, name), args
	}

	if val.Len() == 0 {
		return "FALSE", args
	}

	params := make([]string, val.Len())
	for i := range val.Len() {
		key := fmt.Sprintf("%s_%d", name, i)
		args[key] = val.Index(i).Interface()
		params[i] = ":" + key
	}

	return fmt.Sprintf("%s IN (%s)", column, strings.Join(params, ", ")), args
}

// FilterGroup joins Filters and nested FilterGroups with Operator. Empty
// clauses are skipped.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var (
			clause string
			arg    map[string]any
		)

		switch typed := item.(type) {
		case Filter:
			clause, arg = typed.GetWhereClause()
		case FilterGroup:
			clause, arg = typed.GetWhereClause()
		default:
			continue
		}

		if clause == "" {
			continue
		}

		clauses = append(clauses, clause)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}

// NewFilterGroup returns an empty group joined with AND.
func NewFilterGroup() FilterGroup {
	return FilterGroup{
		Operator: FilterGroupOperatorAnd,
		Filters:  []any{},
	}
}

func (f *FilterGroup) Add(filter Filter) {
	f.Filters = append(f.Filters, filter)
}

// AddIfNotEmpty appends a filter only when the value is set, which is how
// optional query string filters are applied.
func (f *FilterGroup) AddIfNotEmpty(field, operator, table, value string) {
	if value == "" {
		return
	}

	f.Add(Filter{
		Field:    field,
		Operator: operator,
		Value:    value,
		Table:    table,
	})
}

// AddGroup nests another group, skipping empty ones.
func (f *FilterGroup) AddGroup(group FilterGroup) {
	if len(group.Filters) == 0 {
		return
	}

	f.Filters = append(f.Filters, group)
}
