package paging

import (
	"math"

	"github.com/goliatone/go-shopadmin/catalog"
)

// KPI is one computed summary metric.
type KPI struct {
	Name  string             `json:"name"`
	Label string             `json:"label"`
	Kind  catalog.MetricKind `json:"kind"`
	Value float64            `json:"value"`
}

// Count returns the number of records.
func Count(records []catalog.Record) int { return len(records) }

// CountWhere counts records satisfying pred.
func CountWhere(records []catalog.Record, pred func(catalog.Record) bool) int {
	n := 0
	for _, rec := range records {
		if pred == nil || pred(rec) {
			n++
		}
	}
	return n
}

// Sum adds up a numeric field.
func Sum(records []catalog.Record, field catalog.Field) float64 {
	total := 0.0
	for _, rec := range records {
		v := field.Get(rec)
		if v.Type == catalog.TypeNumber {
			total += v.Num
		}
	}
	return total
}

// Average returns Sum/len, or 0 for an empty set.
func Average(records []catalog.Record, field catalog.Field) float64 {
	if len(records) == 0 {
		return 0
	}
	return Sum(records, field) / float64(len(records))
}

// Compute evaluates the schema's metrics over the full filtered set.
func Compute(schema *catalog.Schema, records []catalog.Record) []KPI {
	if schema == nil {
		return nil
	}
	out := make([]KPI, 0, len(schema.Metrics))
	for _, m := range schema.Metrics {
		kpi := KPI{Name: m.Name, Label: m.Label, Kind: m.Kind}
		subset := records
		if m.Where != nil {
			subset = make([]catalog.Record, 0, len(records))
			for _, rec := range records {
				if m.Where(rec) {
					subset = append(subset, rec)
				}
			}
		}
		switch m.Kind {
		case catalog.MetricCount:
			kpi.Value = float64(len(subset))
		case catalog.MetricSum, catalog.MetricAverage:
			field, ok := schema.Field(m.Field)
			if !ok {
				continue
			}
			if m.Kind == catalog.MetricSum {
				kpi.Value = round2(Sum(subset, field))
			} else {
				kpi.Value = round2(Average(subset, field))
			}
		}
		out = append(out, kpi)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
