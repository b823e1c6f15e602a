package filter

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-shopadmin/catalog"
)

var (
	fieldValuePattern   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*:\s*(.*)$`)
	fieldComparePattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*(<=|>=|!=|<|>|=)\s*(.+)$`)
	inStockPattern      = regexp.MustCompile(`(?i)^(\d+)\s+in\s+stock$`)
	bareDatePattern     = regexp.MustCompile(`^(<=|>=|!=|<|>|=)?\s*(\d{4}-\d{2}-\d{2})$`)
	bareComparePattern  = regexp.MustCompile(`^(<=|>=|!=|<|>|=)\s*(-?\d+(?:\.\d+)?)$`)
	bareIntegerPattern  = regexp.MustCompile(`^-?\d+$`)
	lastDaysPattern     = regexp.MustCompile(`(?i)^last\s+(\d+)\s+days?$`)
	leadingOpPattern    = regexp.MustCompile(`^(<=|>=|!=|<|>|=)\s*(.+)$`)
)

var symbolOperators = map[string]Operator{
	"<":  OpLessThan,
	"<=": OpLessOrEqual,
	">":  OpGreaterThan,
	">=": OpGreaterOrEqual,
	"=":  OpEquals,
	"!=": OpNotEquals,
}

// Parse reads an advanced query into conditions against schema.
// Conditions naming unknown fields are dropped; the result is valid
// when at least one condition survives.
func Parse(schema *catalog.Schema, query string) ParseResult {
	segments, connectors := splitLogical(query)
	conditions := make([]Condition, 0, len(segments))
	for i, segment := range segments {
		cond, ok := parseCondition(schema, segment)
		if ok {
			conditions = append(conditions, cond)
		}
		if i < len(connectors) && len(conditions) > 0 {
			// a dropped condition hands its connector to the last kept one
			conditions[len(conditions)-1].Connector = connectors[i]
		}
	}
	if len(conditions) > 0 {
		conditions[len(conditions)-1].Connector = ""
	}
	return ParseResult{Conditions: conditions, IsValid: len(conditions) > 0}
}

// splitLogical splits on " AND " / " OR " outside double quotes.
func splitLogical(query string) ([]string, []Connector) {
	var (
		segments   []string
		connectors []Connector
		inQuote    bool
		start      int
	)
	lower := strings.ToLower(query)
	for i := 0; i < len(query); i++ {
		if query[i] == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote || query[i] != ' ' {
			continue
		}
		switch {
		case strings.HasPrefix(lower[i:], " and "):
			segments = append(segments, strings.TrimSpace(query[start:i]))
			connectors = append(connectors, ConnectorAnd)
			start = i + len(" and ")
			i = start - 1
		case strings.HasPrefix(lower[i:], " or "):
			segments = append(segments, strings.TrimSpace(query[start:i]))
			connectors = append(connectors, ConnectorOr)
			start = i + len(" or ")
			i = start - 1
		}
	}
	segments = append(segments, strings.TrimSpace(query[start:]))
	return segments, connectors
}

func parseCondition(schema *catalog.Schema, segment string) (Condition, bool) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return Condition{}, false
	}

	if m := fieldValuePattern.FindStringSubmatch(segment); m != nil {
		return fieldValueCondition(schema, m[1], strings.TrimSpace(m[2]))
	}
	if m := fieldComparePattern.FindStringSubmatch(segment); m != nil {
		field, ok := resolveField(schema, m[1])
		if !ok {
			return Condition{}, false
		}
		return Condition{Field: field, Operator: symbolOperators[m[2]], Value: unquote(strings.TrimSpace(m[3]))}, true
	}
	if m := inStockPattern.FindStringSubmatch(segment); m != nil && schema != nil && schema.QuantityField != "" {
		return Condition{Field: schema.QuantityField, Operator: OpEquals, Value: m[1]}, true
	}
	if m := bareDatePattern.FindStringSubmatch(segment); m != nil && schema != nil && schema.CreatedField != "" {
		op := OpEquals
		if m[1] != "" {
			op = symbolOperators[m[1]]
		}
		return Condition{Field: schema.CreatedField, Operator: op, Value: m[2]}, true
	}
	if m := bareComparePattern.FindStringSubmatch(segment); m != nil && schema != nil && schema.AmountField != "" {
		return Condition{Field: schema.AmountField, Operator: symbolOperators[m[1]], Value: m[2]}, true
	}
	if bareIntegerPattern.MatchString(segment) && schema != nil && schema.AmountField != "" {
		return Condition{Field: schema.AmountField, Operator: OpEquals, Value: segment}, true
	}

	value := unquote(segment)
	if value == "" {
		return Condition{}, false
	}
	return Condition{Field: FieldAll, Operator: OpContains, Value: value}, true
}

func fieldValueCondition(schema *catalog.Schema, rawField, value string) (Condition, bool) {
	if value == "" {
		return Condition{}, false
	}
	field, ok := resolveField(schema, rawField)
	if !ok {
		return Condition{}, false
	}
	if field == FieldAll {
		return Condition{Field: FieldAll, Operator: OpContains, Value: unquote(value)}, true
	}

	switch {
	case value == "*":
		return Condition{Field: field, Operator: OpNotNull}, true
	case lastDaysPattern.MatchString(value):
		n := lastDaysPattern.FindStringSubmatch(value)[1]
		return Condition{Field: field, Operator: OpLastNDays, Value: n}, true
	case isQuoted(value):
		return Condition{Field: field, Operator: OpContains, Value: unquote(value)}, true
	case len(value) > 1 && strings.HasSuffix(value, "*"):
		return Condition{Field: field, Operator: OpStartsWith, Value: unquote(strings.TrimSuffix(value, "*"))}, true
	case len(value) > 1 && strings.HasPrefix(value, "*"):
		return Condition{Field: field, Operator: OpEndsWith, Value: unquote(strings.TrimPrefix(value, "*"))}, true
	}
	if m := leadingOpPattern.FindStringSubmatch(value); m != nil {
		return Condition{Field: field, Operator: symbolOperators[m[1]], Value: unquote(strings.TrimSpace(m[2]))}, true
	}
	return Condition{Field: field, Operator: OpContains, Value: value}, true
}

func resolveField(schema *catalog.Schema, raw string) (string, bool) {
	if strings.EqualFold(raw, FieldAll) {
		return FieldAll, true
	}
	return schema.Resolve(raw)
}

func isQuoted(value string) bool {
	return len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)
}

func unquote(value string) string {
	if isQuoted(value) {
		return value[1 : len(value)-1]
	}
	return value
}

// Serialize renders conditions in the canonical query form accepted by Parse.
func Serialize(conditions []Condition) string {
	var b strings.Builder
	for i, cond := range conditions {
		if i > 0 {
			connector := conditions[i-1].Connector
			if connector == "" {
				connector = ConnectorAnd
			}
			b.WriteString(" ")
			b.WriteString(string(connector))
			b.WriteString(" ")
		}
		b.WriteString(serializeCondition(cond))
	}
	return b.String()
}

func serializeCondition(cond Condition) string {
	field := cond.Field
	switch cond.Operator {
	case OpNotNull:
		return field + ":*"
	case OpLastNDays:
		return field + ":last " + cond.Value + " days"
	case OpStartsWith:
		return field + ":" + quoteValue(cond.Value) + "*"
	case OpEndsWith:
		return field + ":*" + quoteValue(cond.Value)
	case OpEquals:
		return field + "=" + quoteValue(cond.Value)
	case OpNotEquals:
		return field + "!=" + quoteValue(cond.Value)
	case OpGreaterThan:
		return field + ">" + quoteValue(cond.Value)
	case OpGreaterOrEqual:
		return field + ">=" + quoteValue(cond.Value)
	case OpLessThan:
		return field + "<" + quoteValue(cond.Value)
	case OpLessOrEqual:
		return field + "<=" + quoteValue(cond.Value)
	default:
		return field + ":" + quoted(cond.Value)
	}
}

func quoteValue(value string) string {
	if value == "" || strings.ContainsAny(value, " \t\"*<>=!:") {
		return quoted(value)
	}
	return value
}

// quoted wraps value in double quotes. Embedded quotes are not escaped.
func quoted(value string) string {
	return `"` + value + `"`
}
