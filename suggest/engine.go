package suggest

import (
	"sort"
	"strings"

	"github.com/goliatone/go-shopadmin/catalog"
)

// CategoryHistory marks suggestions drawn from search history.
const CategoryHistory = "history"

// Suggestion is one ranked completion.
type Suggestion struct {
	Value     string `json:"value"`
	Category  string `json:"category"`
	Field     string `json:"field,omitempty"`
	Count     int    `json:"count"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Engine ranks suggestions from records and history.
type Engine struct {
	// MaxHistory caps history suggestions. Defaults to 5.
	MaxHistory int
	// Limit caps the total. Defaults to 10.
	Limit int
}

const (
	rankExact = iota
	rankPrefix
	rankContains
)

type candidate struct {
	Suggestion
	rank     int
	catOrder int
}

// Suggest returns history matches (newest first) followed by record values
// ranked exact, prefix, then substring. An empty query returns recent history.
func (e Engine) Suggest(schema *catalog.Schema, query string, records []catalog.Record, history []Entry) []Suggestion {
	limit := e.Limit
	if limit <= 0 {
		limit = 10
	}
	maxHistory := e.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 5
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]Suggestion, 0, limit)
	seen := map[string]bool{}
	add := func(s Suggestion) bool {
		key := s.Category + "\x00" + strings.ToLower(s.Value)
		if seen[key] {
			return true
		}
		seen[key] = true
		out = append(out, s)
		return len(out) < limit
	}

	for _, entry := range historyMatches(history, needle, maxHistory) {
		if !add(Suggestion{Value: entry.Query, Category: CategoryHistory, Count: entry.ResultCount, Timestamp: entry.Timestamp}) {
			return out
		}
	}
	if needle == "" || schema == nil {
		return out
	}

	for _, c := range recordCandidates(schema, needle, records) {
		if !add(c.Suggestion) {
			break
		}
	}
	return out
}

func historyMatches(history []Entry, needle string, max int) []Entry {
	matches := make([]Entry, 0, len(history))
	for _, entry := range history {
		q := strings.ToLower(strings.TrimSpace(entry.Query))
		if q == "" || !strings.Contains(q, needle) {
			continue
		}
		matches = append(matches, entry)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp > matches[j].Timestamp
	})
	if len(matches) > max {
		matches = matches[:max]
	}
	return matches
}

func recordCandidates(schema *catalog.Schema, needle string, records []catalog.Record) []candidate {
	byKey := map[string]*candidate{}
	order := make([]string, 0)

	for catIdx, source := range schema.Suggestions {
		field, ok := schema.Field(source.Field)
		if !ok {
			continue
		}
		for _, rec := range records {
			v := field.Get(rec)
			values := []string{v.Text()}
			if v.Type == catalog.TypeList {
				values = v.List
			}
			for _, value := range values {
				value = strings.TrimSpace(value)
				lower := strings.ToLower(value)
				if lower == "" || !strings.Contains(lower, needle) {
					continue
				}
				key := source.Category + "\x00" + lower
				if existing, ok := byKey[key]; ok {
					existing.Count++
					continue
				}
				rank := rankContains
				switch {
				case lower == needle:
					rank = rankExact
				case strings.HasPrefix(lower, needle):
					rank = rankPrefix
				}
				byKey[key] = &candidate{
					Suggestion: Suggestion{Value: value, Category: source.Category, Field: field.Name, Count: 1},
					rank:       rank,
					catOrder:   catIdx,
				}
				order = append(order, key)
			}
		}
	}

	out := make([]candidate, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.catOrder != b.catOrder {
			return a.catOrder < b.catOrder
		}
		return strings.ToLower(a.Value) < strings.ToLower(b.Value)
	})
	return out
}
