package filter

import (
	"sort"
	"strings"

	"github.com/goliatone/go-shopadmin/catalog"
)

// RemoteState carries remote search results for a query.
type RemoteState struct {
	Active  bool             `json:"active"`
	Query   string           `json:"query"`
	Results []catalog.Record `json:"results,omitempty"`
}

// State is the full input of a pipeline run besides the records.
type State struct {
	QuickFilter string         `json:"quick_filter,omitempty"`
	Query       string         `json:"query,omitempty"`
	Remote      RemoteState    `json:"remote"`
	Columns     ColumnFilters  `json:"columns,omitempty"`
	Custom      []CustomFilter `json:"custom,omitempty"`
	Advanced    []Condition    `json:"advanced,omitempty"`
}

// RemoteApplies reports whether remote results replace the local base set.
func (s State) RemoteApplies() bool {
	query := strings.TrimSpace(s.Query)
	return s.Remote.Active && query != "" && strings.TrimSpace(s.Remote.Query) == query && s.Remote.Results != nil
}

// Pipeline applies quick filter, text search, column filters, custom filters
// and advanced conditions in that order. Every step returns a new slice.
type Pipeline struct {
	Evaluator
}

// Apply runs the pipeline. Input records are never mutated.
func (p Pipeline) Apply(schema *catalog.Schema, records []catalog.Record, state State) []catalog.Record {
	out := p.ApplyQuickFilter(schema, records, state.QuickFilter)
	if state.RemoteApplies() {
		out = p.ApplyQuickFilter(schema, state.Remote.Results, state.QuickFilter)
	} else {
		out = p.ApplySearch(schema, out, state.Query)
	}
	out = p.ApplyColumns(schema, out, state.Columns)
	out = p.ApplyCustom(schema, out, state.Custom)
	out = p.ApplyAdvanced(schema, out, state.Advanced)
	return out
}

// ApplyQuickFilter keeps records matching the named preset. Unknown names and
// "all" keep everything.
func (p Pipeline) ApplyQuickFilter(schema *catalog.Schema, records []catalog.Record, name string) []catalog.Record {
	qf, ok := schema.QuickFilter(strings.TrimSpace(name))
	if !ok || qf.Match == nil {
		return keep(records, nil)
	}
	return keep(records, qf.Match)
}

// ApplySearch keeps records where any search field contains query.
func (p Pipeline) ApplySearch(schema *catalog.Schema, records []catalog.Record, query string) []catalog.Record {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || schema == nil {
		return keep(records, nil)
	}
	return keep(records, func(rec catalog.Record) bool {
		return MatchesSearch(schema, rec, needle)
	})
}

// MatchesSearch reports whether a search field of rec contains the lower-cased needle.
func MatchesSearch(schema *catalog.Schema, rec catalog.Record, needle string) bool {
	for _, name := range schema.SearchFields {
		field, ok := schema.Field(name)
		if !ok {
			continue
		}
		v := field.Get(rec)
		if v.Type == catalog.TypeList {
			for _, item := range v.List {
				if strings.Contains(strings.ToLower(item), needle) {
					return true
				}
			}
			continue
		}
		if strings.Contains(strings.ToLower(v.Text()), needle) {
			return true
		}
	}
	return false
}

// ApplyColumns applies every active column filter.
func (p Pipeline) ApplyColumns(schema *catalog.Schema, records []catalog.Record, columns ColumnFilters) []catalog.Record {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	predicates := make([]func(catalog.Record) bool, 0, len(names))
	for _, name := range names {
		if pred, ok := p.columnPredicate(schema, name, columns[name]); ok {
			predicates = append(predicates, pred)
		}
	}
	if len(predicates) == 0 {
		return keep(records, nil)
	}
	return keep(records, func(rec catalog.Record) bool {
		for _, pred := range predicates {
			if !pred(rec) {
				return false
			}
		}
		return true
	})
}

// ApplyCustom keeps records satisfying every custom filter.
func (p Pipeline) ApplyCustom(schema *catalog.Schema, records []catalog.Record, custom []CustomFilter) []catalog.Record {
	if len(custom) == 0 {
		return keep(records, nil)
	}
	return keep(records, func(rec catalog.Record) bool {
		for _, cf := range custom {
			if !p.Match(schema, rec, cf.Condition()) {
				return false
			}
		}
		return true
	})
}

// ApplyAdvanced keeps records satisfying the condition chain.
func (p Pipeline) ApplyAdvanced(schema *catalog.Schema, records []catalog.Record, conditions []Condition) []catalog.Record {
	if len(conditions) == 0 {
		return keep(records, nil)
	}
	return keep(records, func(rec catalog.Record) bool {
		return p.MatchChain(schema, rec, conditions)
	})
}

func keep(records []catalog.Record, pred func(catalog.Record) bool) []catalog.Record {
	out := make([]catalog.Record, 0, len(records))
	for _, rec := range records {
		if pred == nil || pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}
