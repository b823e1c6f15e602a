package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MapRecord normalizes a raw backend record into a canonical Record.
// It never panics; every field falls back to a literal default, and missing
// or invalid dates fall back to now.
func MapRecord(entity Entity, raw any, index int, now time.Time) Record {
	obj, _ := raw.(map[string]any)
	switch entity {
	case EntityProducts:
		return mapProduct(obj, index, now)
	default:
		return mapOrder(obj, index, now)
	}
}

// MapRecords maps a slice of raw records.
func MapRecords(entity Entity, raws []any, now time.Time) []Record {
	out := make([]Record, 0, len(raws))
	for i, raw := range raws {
		out = append(out, MapRecord(entity, raw, i, now))
	}
	return out
}

func mapOrder(obj map[string]any, index int, now time.Time) Record {
	rec := Record{Entity: EntityOrders}
	rec.ID = readID(obj, fmt.Sprintf("order-%d", index+1), "id", "order_id", "orderId", "objectID", "_id")

	rec.Name = readString(obj, "", "name", "order_name", "orderName")
	if rec.Name == "" {
		if number := readString(obj, "", "order_number", "orderNumber", "number"); number != "" {
			rec.Name = "#" + strings.TrimPrefix(number, "#")
		} else {
			rec.Name = fmt.Sprintf("#%d", 1001+index)
		}
	}

	rec.Party = readString(obj, "", "customer_name", "customerName", "customer.name", "billing_address.name", "shipping_address.name")
	if rec.Party == "" {
		first := readString(obj, "", "customer.first_name", "customer.firstName")
		last := readString(obj, "", "customer.last_name", "customer.lastName")
		rec.Party = strings.TrimSpace(first + " " + last)
	}
	if rec.Party == "" {
		if name, ok := lookup(obj, "customer"); ok {
			if s, ok := name.(string); ok {
				rec.Party = strings.TrimSpace(s)
			}
		}
	}
	if rec.Party == "" {
		rec.Party = fmt.Sprintf("Customer %d", index+1)
	}

	rec.Email = readString(obj, fmt.Sprintf("customer%d@example.com", index+1), "email", "customer_email", "customerEmail", "customer.email", "contact_email")
	rec.Status = strings.ToLower(readString(obj, "pending", "financial_status", "financialStatus", "payment_status", "status"))
	rec.Fulfillment = strings.ToLower(readString(obj, "unfulfilled", "fulfillment_status", "fulfillmentStatus"))
	rec.Amount = readNumber(obj, 0, "total_price", "totalPrice", "total", "current_total_price", "amount", "price")
	rec.Quantity = int(readNumber(obj, -1, "item_count", "itemCount", "quantity", "items_count"))
	if rec.Quantity < 0 {
		rec.Quantity = sumLineItems(obj)
	}
	rec.Tags = readTags(obj, "tags", "tag_list")
	rec.Category = readString(obj, "web", "source_name", "sourceName", "channel", "source")
	rec.CreatedAt = readTime(obj, now, "created_at", "createdAt", "processed_at", "date")
	rec.UpdatedAt = readTime(obj, now, "updated_at", "updatedAt")
	rec.Highlight = readHighlight(obj)
	return rec
}

func mapProduct(obj map[string]any, index int, now time.Time) Record {
	rec := Record{Entity: EntityProducts}
	rec.ID = readID(obj, fmt.Sprintf("product-%d", index+1), "id", "product_id", "productId", "objectID", "_id")
	rec.Name = readString(obj, fmt.Sprintf("Product %d", index+1), "title", "name", "product_title", "productTitle")
	rec.Party = readString(obj, "Unknown vendor", "vendor", "brand", "supplier")
	rec.Category = readString(obj, "Uncategorized", "product_type", "productType", "type", "category")
	rec.Status = strings.ToLower(readString(obj, "active", "status"))
	rec.Amount = readNumber(obj, 0, "price", "variants.0.price", "min_price", "minPrice", "amount")
	rec.Quantity = int(readNumber(obj, -1, "inventory", "inventory_quantity", "inventoryQuantity", "total_inventory", "totalInventory", "stock"))
	if rec.Quantity < 0 {
		rec.Quantity = sumVariantInventory(obj)
	}
	rec.SKU = readString(obj, "", "sku", "variants.0.sku")
	rec.Tags = readTags(obj, "tags", "tag_list")
	rec.CreatedAt = readTime(obj, now, "created_at", "createdAt", "published_at")
	rec.UpdatedAt = readTime(obj, now, "updated_at", "updatedAt")
	rec.Highlight = readHighlight(obj)
	return rec
}

// lookup resolves a dotted path; numeric segments index into arrays.
func lookup(obj map[string]any, path string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	var current any = obj
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok || next == nil {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
			if current == nil {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return current, true
}

func readID(obj map[string]any, def string, paths ...string) string {
	id := readString(obj, "", paths...)
	if id == "" {
		return def
	}
	return id
}

func readString(obj map[string]any, def string, paths ...string) string {
	for _, path := range paths {
		value, ok := lookup(obj, path)
		if !ok {
			continue
		}
		if s, ok := scalarString(value); ok && s != "" {
			return s
		}
	}
	return def
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return FormatNumber(v), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func readNumber(obj map[string]any, def float64, paths ...string) float64 {
	for _, path := range paths {
		value, ok := lookup(obj, path)
		if !ok {
			continue
		}
		if n, ok := toNumber(value); ok {
			return n
		}
	}
	return def
}

// ParseNumber parses a numeric string, tolerating a leading "$" and thousands separators.
func ParseNumber(raw string) (float64, bool) {
	return toNumber(raw)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.TrimPrefix(cleaned, "$")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if cleaned == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func sumLineItems(obj map[string]any) int {
	raw, ok := lookup(obj, "line_items")
	if !ok {
		raw, ok = lookup(obj, "lineItems")
	}
	items, isList := raw.([]any)
	if !ok || !isList {
		return 0
	}
	total := 0
	for _, item := range items {
		entry, _ := item.(map[string]any)
		qty := readNumber(entry, 1, "quantity")
		total += int(qty)
	}
	return total
}

func sumVariantInventory(obj map[string]any) int {
	raw, ok := lookup(obj, "variants")
	variants, isList := raw.([]any)
	if !ok || !isList {
		return 0
	}
	total := 0
	for _, variant := range variants {
		entry, _ := variant.(map[string]any)
		total += int(readNumber(entry, 0, "inventory_quantity", "inventoryQuantity"))
	}
	return total
}

// SplitTags splits a comma-separated tag string, trimming and dropping empties.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func readTags(obj map[string]any, paths ...string) []string {
	for _, path := range paths {
		value, ok := lookup(obj, path)
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			return SplitTags(v)
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := scalarString(item)
				if !ok || s == "" {
					continue
				}
				out = append(out, s)
			}
			return out
		case []string:
			return SplitTags(strings.Join(v, ","))
		}
	}
	return []string{}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
}

// ParseTime parses the date formats accepted from the backend.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func readTime(obj map[string]any, now time.Time, paths ...string) time.Time {
	for _, path := range paths {
		value, ok := lookup(obj, path)
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if t, ok := ParseTime(v); ok {
				return t
			}
		case float64:
			if v > 0 {
				return time.Unix(int64(v), 0).UTC()
			}
		case json.Number:
			if n, err := v.Int64(); err == nil && n > 0 {
				return time.Unix(n, 0).UTC()
			}
		}
	}
	return now
}

func readHighlight(obj map[string]any) map[string]HighlightField {
	raw, ok := lookup(obj, "_highlightResult")
	fields, isMap := raw.(map[string]any)
	if !ok || !isMap || len(fields) == 0 {
		return nil
	}
	out := make(map[string]HighlightField, len(fields))
	for name, entry := range fields {
		data, _ := entry.(map[string]any)
		if data == nil {
			continue
		}
		field := HighlightField{
			Value:      readString(data, "", "value"),
			MatchLevel: readString(data, "", "matchLevel"),
		}
		if words, ok := data["matchedWords"].([]any); ok {
			for _, w := range words {
				if s, ok := w.(string); ok {
					field.MatchedWords = append(field.MatchedWords, s)
				}
			}
		}
		out[name] = field
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
