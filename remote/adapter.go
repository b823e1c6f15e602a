package remote

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/goliatone/go-shopadmin/catalog"
)

// MinQueryLength is the shortest query sent to the search API.
const MinQueryLength = 2

// Searcher runs remote searches.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Hit, error)
}

// Adapter converts search hits into canonical records.
type Adapter struct {
	Searcher    Searcher
	Entity      catalog.Entity
	Table       string
	HitsPerPage int
	Logger      catalog.Logger
	Now         func() time.Time
}

// Search queries the remote index and reconciles hits against local records.
// Failures resolve to an empty result; queries shorter than MinQueryLength
// return nil without a network call.
func (a *Adapter) Search(ctx context.Context, query string, local []catalog.Record) []catalog.Record {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength || a == nil || a.Searcher == nil {
		return nil
	}
	logger := catalog.LoggerOrNop(a.Logger)

	hitsPerPage := a.HitsPerPage
	if hitsPerPage <= 0 {
		hitsPerPage = 50
	}
	table := a.Table
	if table == "" {
		table = string(a.Entity)
	}

	hits, err := a.Searcher.Search(ctx, SearchRequest{
		Table:       table,
		Query:       query,
		HitsPerPage: hitsPerPage,
		Page:        0,
	})
	if err != nil {
		logger.Errorf("remote search %q failed: %v", query, err)
		return []catalog.Record{}
	}
	return a.Reconcile(hits, local)
}

// Reconcile maps hits to local records, synthesizing records for hits with
// no local match.
func (a *Adapter) Reconcile(hits []Hit, local []catalog.Record) []catalog.Record {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	out := make([]catalog.Record, 0, len(hits))
	used := map[string]bool{}
	for i, hit := range hits {
		mapped := catalog.MapRecord(a.Entity, map[string]any(hit), i, now)
		if match, ok := matchLocal(hit, local); ok {
			if used[match.ID] {
				continue
			}
			used[match.ID] = true
			out = append(out, match.WithHighlight(mapped.Highlight))
			continue
		}
		out = append(out, synthesize(a.Entity, hit, mapped))
	}
	return out
}

// matchLocal finds a local record by id, then exact name, then substring
// containment in either direction. Comparisons are case-insensitive.
func matchLocal(hit Hit, local []catalog.Record) (catalog.Record, bool) {
	objectID := hit.ObjectID()
	hitID := hitString(hit, "id")
	for _, rec := range local {
		if rec.ID == "" {
			continue
		}
		if rec.ID == objectID || (hitID != "" && rec.ID == hitID) {
			return rec, true
		}
	}

	name := strings.ToLower(hitName(hit))
	if name == "" {
		return catalog.Record{}, false
	}
	for _, rec := range local {
		if strings.ToLower(strings.TrimSpace(rec.Name)) == name {
			return rec, true
		}
	}
	for _, rec := range local {
		localName := strings.ToLower(strings.TrimSpace(rec.Name))
		if localName == "" {
			continue
		}
		if strings.Contains(localName, name) || strings.Contains(name, localName) {
			return rec, true
		}
	}
	return catalog.Record{}, false
}

func hitName(hit Hit) string {
	for _, key := range []string{"title", "name", "product_title", "order_number", "orderNumber"} {
		if v := hitString(hit, key); v != "" {
			return v
		}
	}
	return ""
}

func hitString(hit Hit, key string) string {
	switch v := hit[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return catalog.FormatNumber(v)
	default:
		return ""
	}
}

func hasAny(hit Hit, keys ...string) bool {
	for _, key := range keys {
		if v, ok := hit[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// synthesize builds a placeholder record for an unmatched hit. Fields the hit
// lacks are filled from a PRNG seeded by the objectID, so the same hit always
// yields the same record.
func synthesize(entity catalog.Entity, hit Hit, mapped catalog.Record) catalog.Record {
	rec := mapped
	if id := hit.ObjectID(); id != "" {
		rec.ID = id
	}
	rec.Synthetic = true

	seed := xxhash.Sum64String(rec.ID)
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	vocab := catalog.SampleVocabulary(entity)

	if !hasAny(hit, "vendor", "brand", "supplier", "customer", "customer_name", "customerName") {
		rec.Party = vocab.Parties[rng.IntN(len(vocab.Parties))]
	}
	if !hasAny(hit, "status", "financial_status", "financialStatus", "payment_status") {
		rec.Status = vocab.Statuses[rng.IntN(len(vocab.Statuses))]
	}
	if !hasAny(hit, "product_type", "productType", "type", "category", "source_name", "sourceName", "channel", "source") {
		rec.Category = vocab.Categories[rng.IntN(len(vocab.Categories))]
	}
	if !hasAny(hit, "price", "total", "total_price", "totalPrice", "amount", "variants") {
		rec.Amount = math.Round((10+rng.Float64()*490)*100) / 100
	}
	if !hasAny(hit, "inventory", "inventory_quantity", "inventoryQuantity", "quantity", "item_count", "itemCount", "line_items", "variants") {
		if entity == catalog.EntityProducts {
			rec.Quantity = rng.IntN(120)
		} else {
			rec.Quantity = 1 + rng.IntN(5)
		}
	}
	if !hasAny(hit, "tags") {
		tags := vocab.Tags[rng.IntN(len(vocab.Tags))]
		rec.Tags = append([]string{}, tags...)
	}
	if !hasAny(hit, "created_at", "createdAt", "processed_at", "published_at", "date") {
		rec.CreatedAt = catalog.SampleEpoch.Add(-time.Duration(rng.IntN(365*24)) * time.Hour)
	}
	if !hasAny(hit, "updated_at", "updatedAt") {
		rec.UpdatedAt = rec.CreatedAt
	}
	return rec
}
