package filter

import (
	"strings"

	"github.com/google/uuid"
)

// Operator is a condition comparison.
type Operator string

const (
	OpContains       Operator = "contains"
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not_equals"
	OpStartsWith     Operator = "starts_with"
	OpEndsWith       Operator = "ends_with"
	OpGreaterThan    Operator = "greater_than"
	OpGreaterOrEqual Operator = "greater_or_equal"
	OpLessThan       Operator = "less_than"
	OpLessOrEqual    Operator = "less_or_equal"
	OpNotNull        Operator = "not_null"
	OpLastNDays      Operator = "last_n_days"
)

// Valid reports whether the operator is known.
func (o Operator) Valid() bool {
	switch o {
	case OpContains, OpEquals, OpNotEquals, OpStartsWith, OpEndsWith,
		OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual,
		OpNotNull, OpLastNDays:
		return true
	default:
		return false
	}
}

// Connector joins a condition to the one that follows it.
type Connector string

const (
	ConnectorAnd Connector = "AND"
	ConnectorOr  Connector = "OR"
)

// FieldAll is the catch-all pseudo field.
const FieldAll = "all"

// Condition is one parsed advanced search condition.
// Connector links this condition to the next one; the last condition has none.
type Condition struct {
	Field     string    `json:"field"`
	Operator  Operator  `json:"operator"`
	Value     string    `json:"value"`
	Connector Connector `json:"connector,omitempty"`
}

// ParseResult is the output of Parse.
type ParseResult struct {
	Conditions []Condition `json:"conditions"`
	IsValid    bool        `json:"is_valid"`
}

// CustomFilter is a user-named condition ANDed with every other filter.
type CustomFilter struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// NewCustomFilter creates a custom filter with a fresh id.
func NewCustomFilter(name, field string, op Operator, value string) CustomFilter {
	return CustomFilter{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Field:    strings.TrimSpace(field),
		Operator: op,
		Value:    value,
	}
}

// Condition returns the filter as a condition.
func (c CustomFilter) Condition() Condition {
	return Condition{Field: c.Field, Operator: c.Operator, Value: c.Value}
}

// RemoveCustom returns filters without the entry matching id.
func RemoveCustom(filters []CustomFilter, id string) []CustomFilter {
	out := make([]CustomFilter, 0, len(filters))
	for _, f := range filters {
		if f.ID == id {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Range is an inclusive numeric range; nil bounds are open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ColumnFilter holds one column's filter value. Exactly one shape is set:
// Text for text, select, numeric and date columns, Values for multi-select,
// Range for numeric ranges.
type ColumnFilter struct {
	Text   string   `json:"text,omitempty"`
	Values []string `json:"values,omitempty"`
	Range  *Range   `json:"range,omitempty"`
}

// Active reports whether the filter constrains anything.
func (c ColumnFilter) Active() bool {
	if strings.TrimSpace(c.Text) != "" || len(c.Values) > 0 {
		return true
	}
	return c.Range != nil && (c.Range.Min != nil || c.Range.Max != nil)
}

// ColumnFilters maps field names to column filters.
type ColumnFilters map[string]ColumnFilter
