package catalog

import (
	"context"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestSchemaResolveAliases(t *testing.T) {
	cases := []struct {
		schema *Schema
		alias  string
		want   string
	}{
		{OrdersSchema(), "orderNumber", "order_number"},
		{OrdersSchema(), "ORDER", "order_number"},
		{OrdersSchema(), "status", "financial_status"},
		{OrdersSchema(), "price", "total"},
		{ProductsSchema(), "stock", "inventory"},
		{ProductsSchema(), "name", "title"},
	}
	for _, tc := range cases {
		got, ok := tc.schema.Resolve(tc.alias)
		if !ok || got != tc.want {
			t.Fatalf("resolve %q: expected %q, got %q (%v)", tc.alias, tc.want, got, ok)
		}
	}
	if _, ok := OrdersSchema().Resolve("nope"); ok {
		t.Fatalf("expected unknown field to fail")
	}
}

func TestSchemaQuickFilters(t *testing.T) {
	schema := ProductsSchema()
	low, ok := schema.QuickFilter("Low-Stock")
	if !ok {
		t.Fatalf("expected low-stock preset")
	}
	if !low.Match(Record{Quantity: 3}) || low.Match(Record{Quantity: 0}) {
		t.Fatalf("unexpected low-stock predicate")
	}
	all, _ := schema.QuickFilter("all")
	if all.Match != nil {
		t.Fatalf("expected all preset to have no predicate")
	}
}

func TestNormalizeEntity(t *testing.T) {
	if e, ok := NormalizeEntity(" Orders "); !ok || e != EntityOrders {
		t.Fatalf("expected orders, got %q", e)
	}
	if _, ok := NormalizeEntity("customers"); ok {
		t.Fatalf("expected unknown entity")
	}
}

func TestAsGoErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		category errorslib.Category
		code     string
	}{
		{NewError(KindValidation, "bad input", nil), errorslib.CategoryValidation, "validation"},
		{NewError(KindNotFound, "missing", nil), errorslib.CategoryNotFound, "not_found"},
		{NewError(KindExternal, "backend down", nil), errorslib.CategoryExternal, "external"},
		{context.DeadlineExceeded, errorslib.CategoryOperation, "timeout"},
		{context.Canceled, errorslib.CategoryOperation, "canceled"},
		{NewError(KindInternal, "boom", nil), errorslib.CategoryInternal, "internal"},
	}

	for _, tc := range cases {
		mapped := AsGoError(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapping for %v", tc.err)
		}
		if mapped.Category != tc.category {
			t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.code {
			t.Fatalf("expected text code %s, got %s", tc.code, mapped.TextCode)
		}
	}
}
