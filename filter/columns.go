package filter

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-shopadmin/catalog"
)

var numericFilterPattern = regexp.MustCompile(`^(>=|<=|>|<|=)?\s*(.+)$`)

// columnPredicate compiles one column filter. ok is false when the filter is
// inactive, names an unknown field, or carries an unparseable value.
func (e Evaluator) columnPredicate(schema *catalog.Schema, name string, cf ColumnFilter) (func(catalog.Record) bool, bool) {
	if !cf.Active() {
		return nil, false
	}
	field, ok := schema.Field(name)
	if !ok {
		return nil, false
	}

	switch field.Filter {
	case catalog.FilterSelect:
		wanted := cf.Values
		if len(wanted) == 0 {
			wanted = []string{strings.TrimSpace(cf.Text)}
		}
		return func(rec catalog.Record) bool {
			return valueIn(field.Get(rec), wanted)
		}, true

	case catalog.FilterMultiSelect:
		wanted := cf.Values
		if len(wanted) == 0 {
			wanted = catalog.SplitTags(cf.Text)
		}
		if len(wanted) == 0 {
			return nil, false
		}
		return func(rec catalog.Record) bool {
			return valueIn(field.Get(rec), wanted)
		}, true

	case catalog.FilterNumeric:
		return numericPredicate(field, cf)

	case catalog.FilterDate:
		target, ok := catalog.ParseTime(cf.Text)
		if !ok {
			return nil, false
		}
		loc := e.location()
		return func(rec catalog.Record) bool {
			v := field.Get(rec)
			if v.Time.IsZero() {
				return false
			}
			ty, tm, td := target.Date()
			ry, rm, rd := v.Time.In(loc).Date()
			return ty == ry && tm == rm && td == rd
		}, true

	default:
		needle := strings.ToLower(strings.TrimSpace(cf.Text))
		if needle == "" && len(cf.Values) > 0 {
			return func(rec catalog.Record) bool {
				return valueIn(field.Get(rec), cf.Values)
			}, true
		}
		return func(rec catalog.Record) bool {
			v := field.Get(rec)
			if v.Type == catalog.TypeList {
				for _, item := range v.List {
					if strings.Contains(strings.ToLower(item), needle) {
						return true
					}
				}
				return false
			}
			return strings.Contains(strings.ToLower(v.Text()), needle)
		}, true
	}
}

func numericPredicate(field catalog.Field, cf ColumnFilter) (func(catalog.Record) bool, bool) {
	if cf.Range != nil && (cf.Range.Min != nil || cf.Range.Max != nil) {
		r := *cf.Range
		return func(rec catalog.Record) bool {
			n := field.Get(rec).Num
			if r.Min != nil && n < *r.Min {
				return false
			}
			if r.Max != nil && n > *r.Max {
				return false
			}
			return true
		}, true
	}

	m := numericFilterPattern.FindStringSubmatch(strings.TrimSpace(cf.Text))
	if m == nil {
		return nil, false
	}
	target, ok := catalog.ParseNumber(m[2])
	if !ok {
		return nil, false
	}
	op := OpEquals
	if m[1] != "" {
		op = symbolOperators[m[1]]
	}
	return func(rec catalog.Record) bool {
		return compareNumbers(field.Get(rec).Num, target, op)
	}, true
}

// valueIn reports whether v, or any element when v is a list, equals one of
// wanted case-insensitively.
func valueIn(v catalog.Value, wanted []string) bool {
	candidates := []string{v.Text()}
	if v.Type == catalog.TypeList {
		candidates = v.List
	}
	for _, c := range candidates {
		for _, w := range wanted {
			if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}
