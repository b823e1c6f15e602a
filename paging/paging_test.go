package paging

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-shopadmin/catalog"
)

func numbered(n int) []catalog.Record {
	out := make([]catalog.Record, n)
	for i := range out {
		out[i] = catalog.Record{ID: fmt.Sprintf("r%d", i+1)}
	}
	return out
}

func TestSlice_LastPartialPage(t *testing.T) {
	records := numbered(60)
	page, info := Slice(records, 3, 25)
	if len(page) != 10 {
		t.Fatalf("expected 10 records on page 3, got %d", len(page))
	}
	if page[0].ID != "r51" || page[9].ID != "r60" {
		t.Fatalf("unexpected page bounds: %s..%s", page[0].ID, page[9].ID)
	}
	if info.TotalPages != 3 || info.Total != 60 || info.Page != 3 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestSlice_PagePastEndIsEmpty(t *testing.T) {
	records := numbered(60)
	page, info := Slice(records, 4, 25)
	if page == nil || len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %d records", len(page))
	}
	if info.Page != 4 || info.TotalPages != 3 || info.Total != 60 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestSlice_NormalizesLowerBounds(t *testing.T) {
	records := numbered(60)
	page, info := Slice(records, 0, 0)
	if info.Page != 1 || info.PageSize != DefaultPageSize || len(page) != 25 {
		t.Fatalf("expected first default page, got %+v", info)
	}
}

func TestSlice_Empty(t *testing.T) {
	page, info := Slice(nil, 2, 10)
	if len(page) != 0 || page == nil {
		t.Fatalf("expected empty page")
	}
	if info.TotalPages != 1 || info.Page != 2 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestCompute_OrdersKPIs(t *testing.T) {
	records := []catalog.Record{
		{Amount: 100, Status: "paid", Fulfillment: "unfulfilled"},
		{Amount: 50.5, Status: "pending", Fulfillment: "fulfilled"},
		{Amount: 10, Status: "paid", Fulfillment: "unfulfilled"},
	}
	kpis := Compute(catalog.OrdersSchema(), records)
	got := map[string]float64{}
	for _, k := range kpis {
		got[k.Name] = k.Value
	}
	want := map[string]float64{
		"total_orders":        3,
		"revenue":             160.5,
		"average_order_value": 53.5,
		"unfulfilled":         2,
		"paid":                2,
	}
	for name, value := range want {
		if got[name] != value {
			t.Fatalf("%s: expected %v, got %v", name, value, got[name])
		}
	}
}

func TestAverage_Empty(t *testing.T) {
	field, _ := catalog.ProductsSchema().Field("price")
	if Average(nil, field) != 0 {
		t.Fatalf("expected zero average for empty set")
	}
}
