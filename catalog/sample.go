package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SampleEpoch anchors generated timestamps.
var SampleEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	sampleFirstNames = []string{"Ava", "Liam", "Maya", "Noah", "Zoe", "Ethan", "Iris", "Lucas", "Nora", "Owen", "Ruby", "Theo"}
	sampleLastNames  = []string{"Johnson", "Martinez", "Chen", "Williams", "Patel", "Brown", "Garcia", "Nguyen", "Davis", "Kim"}
	sampleFinancial  = []string{"paid", "pending", "authorized", "paid", "refunded", "partially_refunded", "paid"}
	sampleFulfill    = []string{"unfulfilled", "fulfilled", "partial", "fulfilled", "unfulfilled"}
	sampleChannels   = []string{"web", "pos", "shopify_draft_order", "instagram", "tiktok"}
	sampleOrderTags  = [][]string{
		{"vip"},
		{"influencer", "promo"},
		{},
		{"wholesale"},
		{"gift", "rush"},
		{"influencer"},
		{"repeat-customer"},
	}

	sampleAdjectives = []string{"Classic", "Organic", "Vintage", "Premium", "Everyday", "Limited", "Urban", "Coastal"}
	sampleNouns      = []string{"Tee", "Hoodie", "Sneaker", "Tote", "Candle", "Mug", "Backpack", "Cap", "Notebook"}
	sampleVendors    = []string{"Acme Apparel", "Northwind", "Blue Harbor", "Sundry Goods", "Nike", "Kestrel & Co"}
	sampleTypes      = []string{"Apparel", "Footwear", "Accessories", "Home", "Stationery"}
	sampleProdStatus = []string{"active", "active", "draft", "active", "archived"}
	sampleProdTags   = [][]string{
		{"new"},
		{"bestseller", "summer"},
		{"influencer"},
		{},
		{"sale"},
		{"eco", "new"},
	}
)

// Generate returns count deterministic sample records for the entity.
// Repeated calls with the same arguments return deeply equal slices.
func Generate(entity Entity, count int) []Record {
	if count <= 0 {
		return []Record{}
	}
	out := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		if entity == EntityProducts {
			out = append(out, sampleProduct(i))
			continue
		}
		out = append(out, sampleOrder(i))
	}
	return out
}

func pick(list []string, i int) string {
	return list[i%len(list)]
}

func pickTags(list [][]string, i int) []string {
	src := list[i%len(list)]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func sampleOrder(i int) Record {
	first := pick(sampleFirstNames, i)
	last := pick(sampleLastNames, i*3+1)
	created := SampleEpoch.Add(-time.Duration(i) * 7 * time.Hour).Add(-time.Duration(i%60) * time.Minute)
	items := 1 + (i*7)%5
	amount := math.Round((float64((i*37)%400)+19.99+float64(items)*12.5)*100) / 100

	return Record{
		ID:          fmt.Sprintf("order-%d", i+1),
		Entity:      EntityOrders,
		Name:        fmt.Sprintf("#%d", 1001+i),
		Party:       first + " " + last,
		Email:       fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
		Category:    pick(sampleChannels, i),
		Status:      pick(sampleFinancial, i),
		Fulfillment: pick(sampleFulfill, i),
		Amount:      amount,
		Quantity:    items,
		Tags:        pickTags(sampleOrderTags, i),
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Duration(1+i%48) * time.Hour),
	}
}

func sampleProduct(i int) Record {
	name := pick(sampleAdjectives, i) + " " + pick(sampleNouns, i*5+2)
	created := SampleEpoch.Add(-time.Duration(i) * 26 * time.Hour)
	price := math.Round((float64((i*53)%250)+9.5)*100) / 100
	inventory := (i * 17) % 120
	if i%9 == 4 {
		inventory = 0
	}

	return Record{
		ID:        fmt.Sprintf("product-%d", i+1),
		Entity:    EntityProducts,
		Name:      name,
		Party:     pick(sampleVendors, i),
		Category:  pick(sampleTypes, i*2),
		Status:    pick(sampleProdStatus, i),
		Amount:    price,
		Quantity:  inventory,
		Tags:      pickTags(sampleProdTags, i),
		SKU:       fmt.Sprintf("SKU-%04d", 1000+i*3),
		CreatedAt: created,
		UpdatedAt: created.Add(time.Duration(2+i%72) * time.Hour),
	}
}

// Vocabulary lists the filler values used for generated records.
type Vocabulary struct {
	Parties    []string
	Statuses   []string
	Categories []string
	Tags       [][]string
}

// SampleVocabulary returns the generator vocabularies for an entity.
func SampleVocabulary(entity Entity) Vocabulary {
	if entity == EntityProducts {
		return Vocabulary{
			Parties:    append([]string(nil), sampleVendors...),
			Statuses:   append([]string(nil), sampleProdStatus...),
			Categories: append([]string(nil), sampleTypes...),
			Tags:       sampleProdTags,
		}
	}
	parties := make([]string, 0, len(sampleFirstNames))
	for i, first := range sampleFirstNames {
		parties = append(parties, first+" "+pick(sampleLastNames, i*3+1))
	}
	return Vocabulary{
		Parties:    parties,
		Statuses:   append([]string(nil), sampleFinancial...),
		Categories: append([]string(nil), sampleChannels...),
		Tags:       sampleOrderTags,
	}
}
