package catalog

import (
	"strings"
)

// Schema describes the fields and presets of an entity.
type Schema struct {
	Entity        Entity
	Fields        []Field
	AmountField   string
	QuantityField string
	CreatedField  string
	CatchAll      []string
	SearchFields  []string
	QuickFilters  []QuickFilter
	Metrics       []Metric
	Suggestions   []SuggestionSource
	ExportFields  []string

	index map[string]int
}

func newSchema(s Schema) *Schema {
	s.index = make(map[string]int, len(s.Fields)*3)
	for i, f := range s.Fields {
		s.index[normalizeFieldName(f.Name)] = i
		for _, alias := range f.Aliases {
			s.index[normalizeFieldName(alias)] = i
		}
	}
	return &s
}

// Field resolves a field by canonical name or alias.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.index[normalizeFieldName(name)]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Resolve returns the canonical field name for an alias.
func (s *Schema) Resolve(name string) (string, bool) {
	f, ok := s.Field(name)
	if !ok {
		return "", false
	}
	return f.Name, true
}

// QuickFilter returns the preset with the given name.
func (s *Schema) QuickFilter(name string) (QuickFilter, bool) {
	if s == nil {
		return QuickFilter{}, false
	}
	for _, qf := range s.QuickFilters {
		if strings.EqualFold(qf.Name, name) {
			return qf, true
		}
	}
	return QuickFilter{}, false
}

// Labels returns the labels for the given field names, skipping unknown ones.
func (s *Schema) Labels(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if f, ok := s.Field(name); ok {
			out = append(out, f.Label)
		}
	}
	return out
}

func normalizeFieldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var (
	ordersSchema   = newSchema(buildOrdersSchema())
	productsSchema = newSchema(buildProductsSchema())
)

// SchemaFor returns the schema for an entity.
func SchemaFor(entity Entity) (*Schema, bool) {
	switch entity {
	case EntityOrders:
		return ordersSchema, true
	case EntityProducts:
		return productsSchema, true
	default:
		return nil, false
	}
}

// OrdersSchema returns the orders schema.
func OrdersSchema() *Schema { return ordersSchema }

// ProductsSchema returns the products schema.
func ProductsSchema() *Schema { return productsSchema }

func commonIDField() Field {
	return Field{
		Name: "id", Label: "ID", Type: TypeString, Filter: FilterText,
		Get: func(r Record) Value { return StringValue(r.ID) },
	}
}

func tagsField() Field {
	return Field{
		Name: "tags", Label: "Tags", Type: TypeList, Filter: FilterMultiSelect,
		Aliases: []string{"tag"},
		Get:     func(r Record) Value { return ListValue(r.Tags) },
	}
}

func createdField() Field {
	return Field{
		Name: "created_at", Label: "Created", Type: TypeDate, Filter: FilterDate,
		Aliases: []string{"created", "createdAt", "date"},
		Get:     func(r Record) Value { return DateValue(r.CreatedAt) },
	}
}

func updatedField() Field {
	return Field{
		Name: "updated_at", Label: "Updated", Type: TypeDate, Filter: FilterDate,
		Aliases: []string{"updated", "updatedAt"},
		Get:     func(r Record) Value { return DateValue(r.UpdatedAt) },
	}
}

func hasTag(r Record, needle string) bool {
	needle = strings.ToLower(needle)
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func buildOrdersSchema() Schema {
	return Schema{
		Entity: EntityOrders,
		Fields: []Field{
			commonIDField(),
			{
				Name: "order_number", Label: "Order", Type: TypeString, Filter: FilterText,
				Aliases: []string{"order", "orderNumber", "number", "name"},
				Get:     func(r Record) Value { return StringValue(r.Name) },
			},
			{
				Name: "customer", Label: "Customer", Type: TypeString, Filter: FilterText,
				Aliases: []string{"customer_name", "customerName", "client"},
				Get:     func(r Record) Value { return StringValue(r.Party) },
			},
			{
				Name: "email", Label: "Email", Type: TypeString, Filter: FilterText,
				Aliases: []string{"customer_email", "customerEmail"},
				Get:     func(r Record) Value { return StringValue(r.Email) },
			},
			{
				Name: "financial_status", Label: "Payment", Type: TypeString, Filter: FilterSelect,
				Aliases: []string{"status", "payment", "payment_status", "financialStatus"},
				Get:     func(r Record) Value { return StringValue(r.Status) },
			},
			{
				Name: "fulfillment_status", Label: "Fulfillment", Type: TypeString, Filter: FilterSelect,
				Aliases: []string{"fulfillment", "fulfillmentStatus"},
				Get:     func(r Record) Value { return StringValue(r.Fulfillment) },
			},
			{
				Name: "total", Label: "Total", Type: TypeNumber, Filter: FilterNumeric,
				Aliases: []string{"price", "amount", "total_price", "totalPrice"},
				Get:     func(r Record) Value { return NumberValue(r.Amount) },
			},
			{
				Name: "items", Label: "Items", Type: TypeNumber, Filter: FilterNumeric,
				Aliases: []string{"quantity", "item_count", "itemCount", "qty"},
				Get:     func(r Record) Value { return NumberValue(float64(r.Quantity)) },
			},
			tagsField(),
			{
				Name: "channel", Label: "Channel", Type: TypeString, Filter: FilterSelect,
				Aliases: []string{"source", "category", "source_name"},
				Get:     func(r Record) Value { return StringValue(r.Category) },
			},
			createdField(),
			updatedField(),
		},
		AmountField:   "total",
		QuantityField: "items",
		CreatedField:  "created_at",
		CatchAll:      []string{"order_number", "customer", "email", "channel", "financial_status", "fulfillment_status", "tags", "total", "items", "created_at"},
		SearchFields:  []string{"id", "order_number", "customer", "email", "financial_status", "fulfillment_status", "tags"},
		QuickFilters: []QuickFilter{
			{Name: "all", Label: "All orders"},
			{Name: "unfulfilled", Label: "Unfulfilled", Match: func(r Record) bool {
				return strings.EqualFold(r.Fulfillment, "unfulfilled")
			}},
			{Name: "fulfilled", Label: "Fulfilled", Match: func(r Record) bool {
				return strings.EqualFold(r.Fulfillment, "fulfilled")
			}},
			{Name: "unpaid", Label: "Unpaid", Match: func(r Record) bool {
				return strings.EqualFold(r.Status, "pending") || strings.EqualFold(r.Status, "authorized")
			}},
			{Name: "paid", Label: "Paid", Match: func(r Record) bool {
				return strings.EqualFold(r.Status, "paid")
			}},
			{Name: "refunded", Label: "Refunded", Match: func(r Record) bool {
				return strings.EqualFold(r.Status, "refunded") || strings.EqualFold(r.Status, "partially_refunded")
			}},
			{Name: "influencer", Label: "Influencer", Match: func(r Record) bool {
				return hasTag(r, "influencer")
			}},
			{Name: "high-value", Label: "High value", Match: func(r Record) bool {
				return r.Amount >= 500
			}},
		},
		Metrics: []Metric{
			{Name: "total_orders", Label: "Total orders", Kind: MetricCount},
			{Name: "revenue", Label: "Revenue", Kind: MetricSum, Field: "total"},
			{Name: "average_order_value", Label: "Average order value", Kind: MetricAverage, Field: "total"},
			{Name: "unfulfilled", Label: "Unfulfilled", Kind: MetricCount, Where: func(r Record) bool {
				return strings.EqualFold(r.Fulfillment, "unfulfilled")
			}},
			{Name: "paid", Label: "Paid", Kind: MetricCount, Where: func(r Record) bool {
				return strings.EqualFold(r.Status, "paid")
			}},
		},
		Suggestions: []SuggestionSource{
			{Category: "order", Field: "order_number"},
			{Category: "customer", Field: "customer"},
			{Category: "status", Field: "financial_status"},
			{Category: "status", Field: "fulfillment_status"},
			{Category: "tag", Field: "tags"},
		},
		ExportFields: []string{"id", "order_number", "customer", "email", "financial_status", "fulfillment_status", "total", "items", "tags", "created_at"},
	}
}

func buildProductsSchema() Schema {
	return Schema{
		Entity: EntityProducts,
		Fields: []Field{
			commonIDField(),
			{
				Name: "title", Label: "Title", Type: TypeString, Filter: FilterText,
				Aliases: []string{"name", "product", "product_title"},
				Get:     func(r Record) Value { return StringValue(r.Name) },
			},
			{
				Name: "vendor", Label: "Vendor", Type: TypeString, Filter: FilterSelect,
				Aliases: []string{"brand", "supplier"},
				Get:     func(r Record) Value { return StringValue(r.Party) },
			},
			{
				Name: "product_type", Label: "Type", Type: TypeString, Filter: FilterSelect,
				Aliases: []string{"type", "category", "productType"},
				Get:     func(r Record) Value { return StringValue(r.Category) },
			},
			{
				Name: "status", Label: "Status", Type: TypeString, Filter: FilterSelect,
				Get: func(r Record) Value { return StringValue(r.Status) },
			},
			{
				Name: "price", Label: "Price", Type: TypeNumber, Filter: FilterNumeric,
				Aliases: []string{"amount", "total"},
				Get:     func(r Record) Value { return NumberValue(r.Amount) },
			},
			{
				Name: "inventory", Label: "Inventory", Type: TypeNumber, Filter: FilterNumeric,
				Aliases: []string{"stock", "quantity", "inventory_quantity", "qty"},
				Get:     func(r Record) Value { return NumberValue(float64(r.Quantity)) },
			},
			tagsField(),
			{
				Name: "sku", Label: "SKU", Type: TypeString, Filter: FilterText,
				Get: func(r Record) Value { return StringValue(r.SKU) },
			},
			createdField(),
			updatedField(),
		},
		AmountField:   "price",
		QuantityField: "inventory",
		CreatedField:  "created_at",
		CatchAll:      []string{"title", "vendor", "product_type", "status", "tags", "sku", "price", "inventory", "created_at"},
		SearchFields:  []string{"id", "title", "vendor", "product_type", "sku", "tags"},
		QuickFilters: []QuickFilter{
			{Name: "all", Label: "All products"},
			{Name: "active", Label: "Active", Match: func(r Record) bool {
				return strings.EqualFold(r.Status, "active")
			}},
			{Name: "draft", Label: "Draft", Match: func(r Record) bool {
				return strings.EqualFold(r.Status, "draft")
			}},
			{Name: "archived", Label: "Archived", Match: func(r Record) bool {
				return strings.EqualFold(r.Status, "archived")
			}},
			{Name: "low-stock", Label: "Low stock", Match: func(r Record) bool {
				return r.Quantity > 0 && r.Quantity < LowStockThreshold
			}},
			{Name: "out-of-stock", Label: "Out of stock", Match: func(r Record) bool {
				return r.Quantity <= 0
			}},
			{Name: "influencer", Label: "Influencer", Match: func(r Record) bool {
				return hasTag(r, "influencer")
			}},
		},
		Metrics: []Metric{
			{Name: "total_products", Label: "Total products", Kind: MetricCount},
			{Name: "active", Label: "Active", Kind: MetricCount, Where: func(r Record) bool {
				return strings.EqualFold(r.Status, "active")
			}},
			{Name: "inventory_units", Label: "Inventory units", Kind: MetricSum, Field: "inventory"},
			{Name: "average_price", Label: "Average price", Kind: MetricAverage, Field: "price"},
			{Name: "low_stock", Label: "Low stock", Kind: MetricCount, Where: func(r Record) bool {
				return r.Quantity > 0 && r.Quantity < LowStockThreshold
			}},
		},
		Suggestions: []SuggestionSource{
			{Category: "product", Field: "title"},
			{Category: "product", Field: "sku"},
			{Category: "vendor", Field: "vendor"},
			{Category: "status", Field: "status"},
			{Category: "tag", Field: "tags"},
		},
		ExportFields: []string{"id", "title", "vendor", "product_type", "status", "price", "inventory", "tags", "sku", "created_at"},
	}
}

// LowStockThreshold is the inventory level below which products count as low stock.
const LowStockThreshold = 10
