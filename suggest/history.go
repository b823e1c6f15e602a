package suggest

import (
	"sort"
	"strings"
	"time"
)

// HistoryLimit caps the number of stored searches.
const HistoryLimit = 20

// Entry is one recorded search.
type Entry struct {
	Query       string `json:"query"`
	Timestamp   int64  `json:"timestamp"`
	ResultCount int    `json:"resultCount"`
}

// Record adds a search to history, most recent first. An existing entry with
// the same query (case-insensitive) is replaced. Empty queries are ignored.
func Record(history []Entry, query string, resultCount int, at time.Time) []Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return clone(history)
	}
	out := make([]Entry, 0, len(history)+1)
	out = append(out, Entry{Query: query, Timestamp: at.UnixMilli(), ResultCount: resultCount})
	for _, entry := range history {
		if strings.EqualFold(strings.TrimSpace(entry.Query), query) {
			continue
		}
		out = append(out, entry)
		if len(out) == HistoryLimit {
			break
		}
	}
	return out
}

// Normalize sorts entries most recent first, drops blanks and duplicates and
// applies the cap. Used on history read back from storage.
func Normalize(history []Entry) []Entry {
	sorted := clone(history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	out := make([]Entry, 0, len(sorted))
	seen := map[string]bool{}
	for _, entry := range sorted {
		key := strings.ToLower(strings.TrimSpace(entry.Query))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, entry)
		if len(out) == HistoryLimit {
			break
		}
	}
	return out
}

// Remove drops the entry matching query.
func Remove(history []Entry, query string) []Entry {
	out := make([]Entry, 0, len(history))
	for _, entry := range history {
		if strings.EqualFold(strings.TrimSpace(entry.Query), strings.TrimSpace(query)) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func clone(history []Entry) []Entry {
	out := make([]Entry, len(history))
	copy(out, history)
	return out
}
