package catalog

import (
	"strconv"
	"strings"
	"time"
)

// Entity names a record collection.
type Entity string

const (
	EntityOrders   Entity = "orders"
	EntityProducts Entity = "products"
)

// NormalizeEntity coerces entity names and aliases into known entities.
func NormalizeEntity(raw string) (Entity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "orders", "order":
		return EntityOrders, true
	case "products", "product":
		return EntityProducts, true
	default:
		return "", false
	}
}

// Singular returns the singular noun used in generated placeholders.
func (e Entity) Singular() string {
	switch e {
	case EntityOrders:
		return "order"
	case EntityProducts:
		return "product"
	default:
		return strings.TrimSuffix(string(e), "s")
	}
}

// Record is a canonical order or product.
type Record struct {
	ID          string                    `json:"id"`
	Entity      Entity                    `json:"entity"`
	Name        string                    `json:"name"`
	Party       string                    `json:"party"`
	Email       string                    `json:"email,omitempty"`
	Category    string                    `json:"category"`
	Status      string                    `json:"status"`
	Fulfillment string                    `json:"fulfillment,omitempty"`
	Amount      float64                   `json:"amount"`
	Quantity    int                       `json:"quantity"`
	Tags        []string                  `json:"tags"`
	SKU         string                    `json:"sku,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
	Synthetic   bool                      `json:"synthetic,omitempty"`
	Highlight   map[string]HighlightField `json:"_highlightResult,omitempty"`
}

// WithHighlight returns a copy of the record carrying highlight metadata.
func (r Record) WithHighlight(h map[string]HighlightField) Record {
	if len(h) == 0 {
		return r
	}
	out := r
	out.Highlight = make(map[string]HighlightField, len(h))
	for k, v := range h {
		out.Highlight[k] = v
	}
	return out
}

// HighlightField is per-field match metadata from the search backend.
type HighlightField struct {
	Value        string   `json:"value"`
	MatchLevel   string   `json:"matchLevel,omitempty"`
	MatchedWords []string `json:"matchedWords,omitempty"`
}

// FieldType is the static value type of a field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeList   FieldType = "list"
	TypeDate   FieldType = "date"
)

// FilterKind selects the column filter semantics for a field.
type FilterKind string

const (
	FilterText        FilterKind = "text"
	FilterSelect      FilterKind = "select"
	FilterMultiSelect FilterKind = "multiselect"
	FilterNumeric     FilterKind = "numeric"
	FilterDate        FilterKind = "date"
)

// Value is a typed field value.
type Value struct {
	Type FieldType
	Str  string
	Num  float64
	List []string
	Time time.Time
}

// StringValue builds a string value.
func StringValue(s string) Value { return Value{Type: TypeString, Str: s} }

// NumberValue builds a number value.
func NumberValue(n float64) Value { return Value{Type: TypeNumber, Num: n} }

// ListValue builds a list value.
func ListValue(list []string) Value { return Value{Type: TypeList, List: list} }

// DateValue builds a date value.
func DateValue(t time.Time) Value { return Value{Type: TypeDate, Time: t} }

// Text renders the value for substring matching.
func (v Value) Text() string {
	switch v.Type {
	case TypeNumber:
		return FormatNumber(v.Num)
	case TypeList:
		return strings.Join(v.List, ", ")
	case TypeDate:
		if v.Time.IsZero() {
			return ""
		}
		return v.Time.Format(time.RFC3339)
	default:
		return v.Str
	}
}

// IsZero reports whether the value is empty for its type.
func (v Value) IsZero() bool {
	switch v.Type {
	case TypeNumber:
		return v.Num == 0
	case TypeList:
		return len(v.List) == 0
	case TypeDate:
		return v.Time.IsZero()
	default:
		return strings.TrimSpace(v.Str) == ""
	}
}

// FormatNumber renders a number as its shortest decimal string.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Field describes one filterable field and how to read it.
type Field struct {
	Name    string
	Label   string
	Type    FieldType
	Filter  FilterKind
	Aliases []string
	Get     func(Record) Value
}

// QuickFilter is a named preset predicate.
type QuickFilter struct {
	Name  string
	Label string
	Match func(Record) bool
}

// MetricKind selects the KPI reduction.
type MetricKind string

const (
	MetricCount   MetricKind = "count"
	MetricSum     MetricKind = "sum"
	MetricAverage MetricKind = "average"
)

// Metric declares a KPI over the filtered set.
type Metric struct {
	Name  string
	Label string
	Kind  MetricKind
	Field string
	Where func(Record) bool
}

// SuggestionSource declares a field offered as a suggestion category.
type SuggestionSource struct {
	Category string
	Field    string
}
