package filter

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/goliatone/go-shopadmin/catalog"
)

// Memo caches the last pipeline output keyed by a fingerprint of its inputs.
// Callers must treat returned slices as read-only.
type Memo struct {
	Pipeline Pipeline

	mu     sync.Mutex
	key    uint64
	filled bool
	out    []catalog.Record

	hits   atomic.Int64
	misses atomic.Int64
}

// Apply returns the cached output when schema, dataset version and state are
// unchanged since the previous call.
func (m *Memo) Apply(schema *catalog.Schema, records []catalog.Record, version uint64, state State) []catalog.Record {
	key := m.Fingerprint(schema, version, state)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filled && m.key == key {
		m.hits.Add(1)
		return m.out
	}
	m.misses.Add(1)
	m.out = m.Pipeline.Apply(schema, records, state)
	m.key = key
	m.filled = true
	return m.out
}

// Reset drops the cached output.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.filled = false
	m.out = nil
	m.mu.Unlock()
}

// Hits returns the number of cached answers.
func (m *Memo) Hits() int64 { return m.hits.Load() }

// Misses returns the number of recomputations.
func (m *Memo) Misses() int64 { return m.misses.Load() }

// Fingerprint hashes every pipeline input except the record contents, which
// are represented by version.
func (m *Memo) Fingerprint(schema *catalog.Schema, version uint64, state State) uint64 {
	d := xxhash.New()
	write := func(parts ...string) {
		for _, part := range parts {
			_, _ = d.WriteString(part)
			_, _ = d.Write([]byte{0})
		}
	}

	if schema != nil {
		write(string(schema.Entity))
	}
	write(strconv.FormatUint(version, 10))
	// last_n_days depends on the current day
	write(m.Pipeline.now().In(m.Pipeline.location()).Format("2006-01-02"))
	write("quick", state.QuickFilter, "query", state.Query)

	write("remote", strconv.FormatBool(state.Remote.Active), state.Remote.Query,
		strconv.FormatBool(state.Remote.Results != nil), strconv.Itoa(len(state.Remote.Results)))
	for _, rec := range state.Remote.Results {
		write(rec.ID)
	}

	names := make([]string, 0, len(state.Columns))
	for name := range state.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	// counts and markers keep adjacent variable-length parts from aliasing
	write("columns", strconv.Itoa(len(names)))
	for _, name := range names {
		cf := state.Columns[name]
		write(name, cf.Text, strconv.Itoa(len(cf.Values)))
		write(cf.Values...)
		if cf.Range != nil {
			write("range", formatBound(cf.Range.Min), formatBound(cf.Range.Max))
		} else {
			write("norange")
		}
	}

	write("custom", strconv.Itoa(len(state.Custom)))
	for _, cf := range state.Custom {
		write(cf.ID, cf.Field, string(cf.Operator), cf.Value)
	}

	write("advanced", strconv.Itoa(len(state.Advanced)))
	for _, cond := range state.Advanced {
		write(cond.Field, string(cond.Operator), cond.Value, string(cond.Connector))
	}
	return d.Sum64()
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return catalog.FormatNumber(*v)
}
