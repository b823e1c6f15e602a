package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func testPipeline() Pipeline {
	return Pipeline{Evaluator{Now: func() time.Time { return fixedNow }}}
}

func ids(records []catalog.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}

func orderFixtures() []catalog.Record {
	return []catalog.Record{
		{ID: "o1", Name: "#1001", Party: "Ada Lovelace", Status: "paid", Fulfillment: "fulfilled", Amount: 50, Quantity: 1, Tags: []string{"vip"}, CreatedAt: time.Date(2024, 6, 14, 23, 30, 0, 0, time.UTC)},
		{ID: "o2", Name: "#1002", Party: "Grace Hopper", Status: "pending", Fulfillment: "unfulfilled", Amount: 150, Quantity: 3, Tags: []string{"influencer"}, CreatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
		{ID: "o3", Name: "#1003", Party: "Alan Turing", Status: "paid", Fulfillment: "unfulfilled", Amount: 300, Quantity: 2, Tags: []string{}, CreatedAt: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)},
	}
}

func TestColumnFilter_NumericGreaterThan(t *testing.T) {
	p := testPipeline()
	got := p.ApplyColumns(catalog.OrdersSchema(), orderFixtures(), ColumnFilters{"total": {Text: ">100"}})
	if !reflect.DeepEqual(ids(got), []string{"o2", "o3"}) {
		t.Fatalf("expected o2,o3, got %v", ids(got))
	}
}

func TestColumnFilters_SubsetAndIdempotent(t *testing.T) {
	p := testPipeline()
	schema := catalog.OrdersSchema()
	records := orderFixtures()
	floor := 100.0
	cases := []ColumnFilters{
		{"total": {Text: ">100"}},
		{"total": {Text: "150"}},
		{"total": {Range: &Range{Min: &floor}}},
		{"customer": {Text: "ada"}},
		{"financial_status": {Text: "paid"}},
		{"tags": {Values: []string{"vip", "influencer"}}},
		{"created_at": {Text: "2024-06-14"}},
	}
	for _, columns := range cases {
		once := p.ApplyColumns(schema, records, columns)
		twice := p.ApplyColumns(schema, once, columns)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("expected idempotent filter for %#v", columns)
		}
		for _, rec := range once {
			found := false
			for _, src := range records {
				if src.ID == rec.ID {
					found = true
				}
			}
			if !found {
				t.Fatalf("filter produced a record outside the input: %s", rec.ID)
			}
		}
	}
}

func TestColumnFilter_DateMatchesCalendarDay(t *testing.T) {
	p := testPipeline()
	got := p.ApplyColumns(catalog.OrdersSchema(), orderFixtures(), ColumnFilters{"created_at": {Text: "2024-06-14"}})
	if !reflect.DeepEqual(ids(got), []string{"o1"}) {
		t.Fatalf("expected o1, got %v", ids(got))
	}
}

func TestColumnFilter_UnparseableNumericIgnored(t *testing.T) {
	p := testPipeline()
	got := p.ApplyColumns(catalog.OrdersSchema(), orderFixtures(), ColumnFilters{"total": {Text: ">"}})
	if len(got) != 3 {
		t.Fatalf("expected filter to be ignored, got %v", ids(got))
	}
}

func TestAdvancedQuery_StatusAndPrice(t *testing.T) {
	schema := catalog.ProductsSchema()
	records := []catalog.Record{
		{ID: "p1", Status: "active", Amount: 600, Tags: []string{}},
		{ID: "p2", Status: "active", Amount: 400, Tags: []string{}},
		{ID: "p3", Status: "draft", Amount: 900, Tags: []string{}},
	}
	parsed := Parse(schema, "status:active AND price>500")
	if len(parsed.Conditions) != 2 || parsed.Conditions[0].Connector != ConnectorAnd {
		t.Fatalf("unexpected parse: %#v", parsed.Conditions)
	}
	got := testPipeline().Apply(schema, records, State{Advanced: parsed.Conditions})
	if !reflect.DeepEqual(ids(got), []string{"p1"}) {
		t.Fatalf("expected p1, got %v", ids(got))
	}
}

func TestMatchChain_OrRescansFromStart(t *testing.T) {
	schema := catalog.OrdersSchema()
	ev := testPipeline().Evaluator
	// "customer:ada AND status:pending OR total>1000": the OR re-checks all
	// three conditions, so Ada matches through the first one alone.
	conds := Parse(schema, "customer:ada AND status:pending OR total>1000").Conditions
	ada := orderFixtures()[0]
	if !ev.MatchChain(schema, ada, conds) {
		t.Fatalf("expected OR re-scan to match on the first condition")
	}
	alan := orderFixtures()[2]
	if ev.MatchChain(schema, alan, conds) {
		t.Fatalf("expected no match for alan")
	}
}

func TestMatch_LastNDays(t *testing.T) {
	schema := catalog.OrdersSchema()
	p := testPipeline()
	got := p.ApplyAdvanced(schema, orderFixtures(), []Condition{{Field: "created_at", Operator: OpLastNDays, Value: "30"}})
	if !reflect.DeepEqual(ids(got), []string{"o1", "o2"}) {
		t.Fatalf("expected o1,o2, got %v", ids(got))
	}
}

func TestMatch_CatchAllSearchesDerivedStrings(t *testing.T) {
	schema := catalog.OrdersSchema()
	ev := testPipeline().Evaluator
	rec := orderFixtures()[2]
	for _, needle := range []string{"turing", "300", "1/2/2024", "2024-01-02"} {
		if !ev.Match(schema, rec, Condition{Field: FieldAll, Operator: OpContains, Value: needle}) {
			t.Fatalf("expected catch-all match for %q", needle)
		}
	}
}

func TestApply_OrderOfSteps(t *testing.T) {
	schema := catalog.OrdersSchema()
	p := testPipeline()
	got := p.Apply(schema, orderFixtures(), State{
		QuickFilter: "unfulfilled",
		Query:       "a",
		Custom:      []CustomFilter{NewCustomFilter("big", "total", OpGreaterThan, "200")},
	})
	if !reflect.DeepEqual(ids(got), []string{"o3"}) {
		t.Fatalf("expected o3, got %v", ids(got))
	}
}

func TestApply_RemoteResultsReplaceBase(t *testing.T) {
	schema := catalog.OrdersSchema()
	remote := []catalog.Record{
		{ID: "r1", Status: "paid", Fulfillment: "unfulfilled", Tags: []string{}},
		{ID: "r2", Status: "paid", Fulfillment: "fulfilled", Tags: []string{}},
	}
	state := State{
		QuickFilter: "unfulfilled",
		Query:       "zzz",
		Remote:      RemoteState{Active: true, Query: "zzz", Results: remote},
	}
	got := testPipeline().Apply(schema, orderFixtures(), state)
	if !reflect.DeepEqual(ids(got), []string{"r1"}) {
		t.Fatalf("expected remote base narrowed by quick filter, got %v", ids(got))
	}

	state.Remote.Query = "older"
	got = testPipeline().Apply(schema, orderFixtures(), state)
	if len(got) != 0 {
		t.Fatalf("expected stale remote results to be ignored, got %v", ids(got))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := orderFixtures()
	snapshot := orderFixtures()
	_ = testPipeline().Apply(catalog.OrdersSchema(), records, State{Query: "ada", Columns: ColumnFilters{"total": {Text: "<100"}}})
	if !reflect.DeepEqual(records, snapshot) {
		t.Fatalf("expected input records untouched")
	}
}

func TestMemo_HitsOnIdenticalInput(t *testing.T) {
	memo := &Memo{Pipeline: testPipeline()}
	schema := catalog.OrdersSchema()
	records := orderFixtures()
	state := State{Columns: ColumnFilters{"total": {Text: ">100"}}}

	first := memo.Apply(schema, records, 1, state)
	second := memo.Apply(schema, records, 1, State{Columns: ColumnFilters{"total": {Text: ">100"}}})
	if memo.Hits() != 1 || memo.Misses() != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", memo.Hits(), memo.Misses())
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected cached output")
	}

	memo.Apply(schema, records, 2, state)
	if memo.Misses() != 2 {
		t.Fatalf("expected dataset version change to recompute")
	}
}

func TestMemo_DistinctColumnStatesDoNotCollide(t *testing.T) {
	memo := &Memo{Pipeline: testPipeline()}
	schema := catalog.OrdersSchema()
	records := orderFixtures()

	merged := State{Columns: ColumnFilters{
		"customer": {Values: []string{"ada lovelace", "financial_status", "pending"}},
	}}
	split := State{Columns: ColumnFilters{
		"customer":         {Values: []string{"ada lovelace"}},
		"financial_status": {Text: "pending"},
	}}
	if memo.Fingerprint(schema, 1, merged) == memo.Fingerprint(schema, 1, split) {
		t.Fatalf("expected distinct fingerprints for distinct column states")
	}

	first := memo.Apply(schema, records, 1, merged)
	second := memo.Apply(schema, records, 1, split)
	direct := testPipeline().Apply(schema, records, split)
	if got := ids(first); !reflect.DeepEqual(got, []string{"o1"}) {
		t.Fatalf("unexpected merged result %v", got)
	}
	if !reflect.DeepEqual(ids(second), ids(direct)) {
		t.Fatalf("memo returned %v, direct pipeline %v", ids(second), ids(direct))
	}
	if memo.Hits() != 0 {
		t.Fatalf("expected no cache hit, got %d", memo.Hits())
	}

	withRange := State{Columns: ColumnFilters{"total": {Range: &Range{}}}}
	withoutRange := State{Columns: ColumnFilters{"total": {}}}
	if memo.Fingerprint(schema, 1, withRange) == memo.Fingerprint(schema, 1, withoutRange) {
		t.Fatalf("expected range presence to change the fingerprint")
	}
}

func TestRemoveCustom(t *testing.T) {
	a := NewCustomFilter("a", "total", OpGreaterThan, "1")
	b := NewCustomFilter("b", "total", OpLessThan, "9")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique ids")
	}
	left := RemoveCustom([]CustomFilter{a, b}, a.ID)
	if len(left) != 1 || left[0].ID != b.ID {
		t.Fatalf("unexpected remaining filters: %#v", left)
	}
}
