package filter

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-shopadmin/catalog"
)

func TestParse_StatusAndPrice(t *testing.T) {
	result := Parse(catalog.ProductsSchema(), "status:active AND price>500")
	if !result.IsValid {
		t.Fatalf("expected valid result")
	}
	want := []Condition{
		{Field: "status", Operator: OpContains, Value: "active", Connector: ConnectorAnd},
		{Field: "price", Operator: OpGreaterThan, Value: "500"},
	}
	if !reflect.DeepEqual(result.Conditions, want) {
		t.Fatalf("unexpected conditions: %#v", result.Conditions)
	}
}

func TestParse_Grammar(t *testing.T) {
	orders := catalog.OrdersSchema()
	products := catalog.ProductsSchema()

	cases := []struct {
		name   string
		schema *catalog.Schema
		query  string
		want   Condition
	}{
		{"quoted value", orders, `customer:"Ada Lovelace"`, Condition{Field: "customer", Operator: OpContains, Value: "Ada Lovelace"}},
		{"alias", orders, "orderNumber:1042", Condition{Field: "order_number", Operator: OpContains, Value: "1042"}},
		{"field colon comparison", orders, "total:>100", Condition{Field: "total", Operator: OpGreaterThan, Value: "100"}},
		{"not equals", orders, "status != paid", Condition{Field: "financial_status", Operator: OpNotEquals, Value: "paid"}},
		{"bare comparison", orders, ">100", Condition{Field: "total", Operator: OpGreaterThan, Value: "100"}},
		{"bare integer", products, "25", Condition{Field: "price", Operator: OpEquals, Value: "25"}},
		{"in stock", products, "5 in stock", Condition{Field: "inventory", Operator: OpEquals, Value: "5"}},
		{"bare date", orders, "2024-03-01", Condition{Field: "created_at", Operator: OpEquals, Value: "2024-03-01"}},
		{"date with operator", orders, ">=2024-03-01", Condition{Field: "created_at", Operator: OpGreaterOrEqual, Value: "2024-03-01"}},
		{"catch all", products, "nike shoes", Condition{Field: FieldAll, Operator: OpContains, Value: "nike shoes"}},
		{"quoted catch all", products, `"blue harbor"`, Condition{Field: FieldAll, Operator: OpContains, Value: "blue harbor"}},
		{"not null", products, "sku:*", Condition{Field: "sku", Operator: OpNotNull}},
		{"starts with", products, "title:Trail*", Condition{Field: "title", Operator: OpStartsWith, Value: "Trail"}},
		{"last days", orders, "created:last 7 days", Condition{Field: "created_at", Operator: OpLastNDays, Value: "7"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.schema, tc.query)
			if len(result.Conditions) != 1 {
				t.Fatalf("expected one condition, got %#v", result.Conditions)
			}
			if result.Conditions[0] != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, result.Conditions[0])
			}
		})
	}
}

func TestParse_UnknownFieldsDropped(t *testing.T) {
	result := Parse(catalog.OrdersSchema(), "bogus:1 OR customer:ada AND color:red")
	want := []Condition{{Field: "customer", Operator: OpContains, Value: "ada"}}
	if !reflect.DeepEqual(result.Conditions, want) {
		t.Fatalf("unexpected conditions: %#v", result.Conditions)
	}

	empty := Parse(catalog.OrdersSchema(), "bogus:1")
	if empty.IsValid || len(empty.Conditions) != 0 {
		t.Fatalf("expected invalid result, got %#v", empty)
	}
}

func TestParse_DroppedConnectorMovesToKeptCondition(t *testing.T) {
	result := Parse(catalog.OrdersSchema(), "customer:ada AND bogus:1 OR email:example")
	if len(result.Conditions) != 2 {
		t.Fatalf("expected two conditions, got %#v", result.Conditions)
	}
	if result.Conditions[0].Connector != ConnectorOr {
		t.Fatalf("expected OR to move onto the kept condition, got %q", result.Conditions[0].Connector)
	}
}

func TestParse_ConnectorsInsideQuotesIgnored(t *testing.T) {
	result := Parse(catalog.ProductsSchema(), `vendor:"Salt and Pepper" or tags:sale`)
	want := []Condition{
		{Field: "vendor", Operator: OpContains, Value: "Salt and Pepper", Connector: ConnectorOr},
		{Field: "tags", Operator: OpContains, Value: "sale"},
	}
	if !reflect.DeepEqual(result.Conditions, want) {
		t.Fatalf("unexpected conditions: %#v", result.Conditions)
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	schema := catalog.OrdersSchema()
	queries := []string{
		"customer:ada",
		`customer:"Ada Lovelace" AND status:paid`,
		"tags:vip OR total>=250 AND created_at:last 30 days",
		"email:*",
		"order:10* OR customer:*son",
		"loose text",
		"status != refunded",
	}
	for _, q := range queries {
		first := Parse(schema, q)
		second := Parse(schema, Serialize(first.Conditions))
		if !reflect.DeepEqual(first.Conditions, second.Conditions) {
			t.Fatalf("round trip mismatch for %q:\nfirst  %#v\nsecond %#v\nserialized %q", q, first.Conditions, second.Conditions, Serialize(first.Conditions))
		}
	}
}
