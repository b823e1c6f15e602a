package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
)

// Evaluator evaluates conditions against records.
type Evaluator struct {
	Now      func() time.Time
	Location *time.Location
}

func (e Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Evaluator) location() *time.Location {
	if e.Location != nil {
		return e.Location
	}
	return time.UTC
}

// Match reports whether rec satisfies a single condition.
// Conditions on fields unknown to schema never match.
func (e Evaluator) Match(schema *catalog.Schema, rec catalog.Record, cond Condition) bool {
	if cond.Field == FieldAll {
		return e.matchAll(schema, rec, cond.Value)
	}
	field, ok := schema.Field(cond.Field)
	if !ok {
		return false
	}
	value := field.Get(rec)

	switch value.Type {
	case catalog.TypeNumber:
		return e.matchNumber(value.Num, cond)
	case catalog.TypeDate:
		return e.matchDate(value.Time, cond)
	case catalog.TypeList:
		return matchList(value.List, cond)
	default:
		return matchString(value.Str, cond)
	}
}

// MatchChain evaluates conditions left to right. Condition i combines with
// the running result through the connector of condition i-1; an OR re-checks
// every condition from the start of the chain through i.
func (e Evaluator) MatchChain(schema *catalog.Schema, rec catalog.Record, conditions []Condition) bool {
	if len(conditions) == 0 {
		return true
	}
	result := e.Match(schema, rec, conditions[0])
	for i := 1; i < len(conditions); i++ {
		if conditions[i-1].Connector == ConnectorOr {
			result = false
			for j := 0; j <= i; j++ {
				if e.Match(schema, rec, conditions[j]) {
					result = true
					break
				}
			}
			continue
		}
		result = result && e.Match(schema, rec, conditions[i])
	}
	return result
}

func (e Evaluator) matchAll(schema *catalog.Schema, rec catalog.Record, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" || schema == nil {
		return true
	}
	for _, name := range schema.CatchAll {
		field, ok := schema.Field(name)
		if !ok {
			continue
		}
		for _, text := range e.searchableText(field.Get(rec)) {
			if strings.Contains(strings.ToLower(text), needle) {
				return true
			}
		}
	}
	return false
}

// searchableText returns the string renderings a catch-all search looks at.
func (e Evaluator) searchableText(v catalog.Value) []string {
	switch v.Type {
	case catalog.TypeList:
		return v.List
	case catalog.TypeDate:
		if v.Time.IsZero() {
			return nil
		}
		local := v.Time.In(e.location())
		return []string{local.Format("2006-01-02"), local.Format("1/2/2006"), local.Format(time.RFC3339)}
	default:
		return []string{v.Text()}
	}
}

func matchString(actual string, cond Condition) bool {
	a := strings.ToLower(actual)
	v := strings.ToLower(cond.Value)
	switch cond.Operator {
	case OpContains:
		return strings.Contains(a, v)
	case OpEquals:
		return a == v
	case OpNotEquals:
		return a != v
	case OpStartsWith:
		return strings.HasPrefix(a, v)
	case OpEndsWith:
		return strings.HasSuffix(a, v)
	case OpGreaterThan:
		return a > v
	case OpGreaterOrEqual:
		return a >= v
	case OpLessThan:
		return a < v
	case OpLessOrEqual:
		return a <= v
	case OpNotNull:
		return strings.TrimSpace(actual) != ""
	default:
		return false
	}
}

func matchList(items []string, cond Condition) bool {
	switch cond.Operator {
	case OpNotNull:
		return len(items) > 0
	case OpNotEquals:
		for _, item := range items {
			if strings.EqualFold(item, cond.Value) {
				return false
			}
		}
		return true
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		n, ok := catalog.ParseNumber(cond.Value)
		if !ok {
			return false
		}
		return compareNumbers(float64(len(items)), n, cond.Operator)
	}
	for _, item := range items {
		if matchString(item, cond) {
			return true
		}
	}
	return false
}

func (e Evaluator) matchNumber(actual float64, cond Condition) bool {
	switch cond.Operator {
	case OpNotNull:
		return true
	case OpContains, OpStartsWith, OpEndsWith:
		return matchString(catalog.FormatNumber(actual), cond)
	case OpLastNDays:
		return false
	}
	n, ok := catalog.ParseNumber(cond.Value)
	if !ok {
		return false
	}
	return compareNumbers(actual, n, cond.Operator)
}

func compareNumbers(actual, target float64, op Operator) bool {
	switch op {
	case OpEquals:
		return actual == target
	case OpNotEquals:
		return actual != target
	case OpGreaterThan:
		return actual > target
	case OpGreaterOrEqual:
		return actual >= target
	case OpLessThan:
		return actual < target
	case OpLessOrEqual:
		return actual <= target
	default:
		return false
	}
}

func (e Evaluator) matchDate(actual time.Time, cond Condition) bool {
	if cond.Operator == OpNotNull {
		return !actual.IsZero()
	}
	if actual.IsZero() {
		return false
	}
	loc := e.location()
	day := truncateDay(actual.In(loc))

	switch cond.Operator {
	case OpLastNDays:
		n, err := strconv.Atoi(strings.TrimSpace(cond.Value))
		if err != nil || n < 0 {
			return false
		}
		now := e.now().In(loc)
		cutoff := now.AddDate(0, 0, -n)
		return !actual.Before(cutoff) && !actual.After(now)
	case OpContains, OpStartsWith, OpEndsWith:
		for _, text := range e.searchableText(catalog.DateValue(actual)) {
			if matchString(text, cond) {
				return true
			}
		}
		return false
	}

	target, ok := catalog.ParseTime(cond.Value)
	if !ok {
		return false
	}
	targetDay := truncateDay(target.In(loc))
	if len(strings.TrimSpace(cond.Value)) <= len("2006-01-02") {
		// date-only values name a calendar day in the evaluator's location
		targetDay = time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, loc)
	}

	switch cond.Operator {
	case OpEquals:
		return day.Equal(targetDay)
	case OpNotEquals:
		return !day.Equal(targetDay)
	case OpGreaterThan:
		return day.After(targetDay)
	case OpGreaterOrEqual:
		return !day.Before(targetDay)
	case OpLessThan:
		return day.Before(targetDay)
	case OpLessOrEqual:
		return !day.After(targetDay)
	default:
		return false
	}
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
