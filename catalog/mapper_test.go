package catalog

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

var mapperNow = time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)

func TestMapRecord_DefaultsForEmptyInput(t *testing.T) {
	inputs := []any{nil, map[string]any{}, "not a record", 42, []any{1, 2}}
	for _, raw := range inputs {
		rec := MapRecord(EntityOrders, raw, 4, mapperNow)
		if rec.ID != "order-5" {
			t.Fatalf("expected placeholder id for %v, got %q", raw, rec.ID)
		}
		if rec.Name != "#1005" {
			t.Fatalf("expected placeholder order name, got %q", rec.Name)
		}
		if rec.Email != "customer5@example.com" {
			t.Fatalf("expected placeholder email, got %q", rec.Email)
		}
		if rec.Tags == nil {
			t.Fatalf("expected non-nil tags")
		}
		if !rec.CreatedAt.Equal(mapperNow) || !rec.UpdatedAt.Equal(mapperNow) {
			t.Fatalf("expected dates to fall back to now")
		}
	}

	product := MapRecord(EntityProducts, nil, 0, mapperNow)
	if product.ID != "product-1" || product.Name != "Product 1" {
		t.Fatalf("unexpected product defaults: %+v", product)
	}
}

func TestMapRecord_OrderKeyChains(t *testing.T) {
	var raw any
	payload := `{
		"id": 5012345,
		"order_number": 1042,
		"customer": {"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"},
		"financial_status": "PAID",
		"totalPrice": "$1,204.50",
		"line_items": [{"quantity": 2}, {"quantity": 3}],
		"tags": "vip, ,influencer ",
		"created_at": "2024-05-06T07:08:09Z",
		"updated_at": "not a date"
	}`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec := MapRecord(EntityOrders, raw, 0, mapperNow)
	if rec.ID != "5012345" {
		t.Fatalf("expected numeric id to stringify, got %q", rec.ID)
	}
	if rec.Name != "#1042" {
		t.Fatalf("expected order name from number, got %q", rec.Name)
	}
	if rec.Party != "Ada Lovelace" {
		t.Fatalf("expected customer name from nested path, got %q", rec.Party)
	}
	if rec.Email != "ada@example.com" {
		t.Fatalf("expected nested email, got %q", rec.Email)
	}
	if rec.Status != "paid" {
		t.Fatalf("expected lower-cased status, got %q", rec.Status)
	}
	if rec.Amount != 1204.5 {
		t.Fatalf("expected amount 1204.5, got %v", rec.Amount)
	}
	if rec.Quantity != 5 {
		t.Fatalf("expected summed line items, got %d", rec.Quantity)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"vip", "influencer"}) {
		t.Fatalf("unexpected tags: %#v", rec.Tags)
	}
	if rec.CreatedAt.Year() != 2024 || rec.CreatedAt.Month() != time.May {
		t.Fatalf("unexpected created_at: %v", rec.CreatedAt)
	}
	if !rec.UpdatedAt.Equal(mapperNow) {
		t.Fatalf("expected invalid date to fall back to now")
	}
}

func TestMapRecord_ProductVariants(t *testing.T) {
	raw := map[string]any{
		"objectID": "gid-9",
		"title":    "Trail Runner",
		"vendor":   "Nike",
		"variants": []any{
			map[string]any{"price": "89.99", "inventory_quantity": float64(4), "sku": "TR-1"},
			map[string]any{"price": "99.99", "inventory_quantity": float64(6)},
		},
		"tags":       []any{"running", "", "new"},
		"created_at": float64(1700000000),
		"_highlightResult": map[string]any{
			"title": map[string]any{"value": "<em>Trail</em> Runner", "matchLevel": "full", "matchedWords": []any{"trail"}},
		},
	}

	rec := MapRecord(EntityProducts, raw, 3, mapperNow)
	if rec.ID != "gid-9" {
		t.Fatalf("expected objectID fallback, got %q", rec.ID)
	}
	if rec.Amount != 89.99 {
		t.Fatalf("expected first variant price, got %v", rec.Amount)
	}
	if rec.Quantity != 10 {
		t.Fatalf("expected summed variant inventory, got %d", rec.Quantity)
	}
	if rec.SKU != "TR-1" {
		t.Fatalf("expected variant sku, got %q", rec.SKU)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"running", "new"}) {
		t.Fatalf("unexpected tags: %#v", rec.Tags)
	}
	if rec.CreatedAt.Unix() != 1700000000 {
		t.Fatalf("expected unix timestamp, got %v", rec.CreatedAt)
	}
	if rec.Highlight["title"].MatchLevel != "full" {
		t.Fatalf("expected highlight metadata, got %#v", rec.Highlight)
	}
}

func TestMapRecords_PreservesOrder(t *testing.T) {
	raws := []any{map[string]any{"id": "a"}, nil, map[string]any{"id": "c"}}
	out := MapRecords(EntityOrders, raws, mapperNow)
	ids := []string{out[0].ID, out[1].ID, out[2].ID}
	if !reflect.DeepEqual(ids, []string{"a", "order-2", "c"}) {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" a, b ,,c,")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected split: %#v", got)
	}
}
