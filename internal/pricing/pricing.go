// Package pricing holds the static skin price table used for collateral
// valuation. Nothing in the loan path consults it yet.
package pricing

import "sort"

type Skin struct {
	ID             uint64 `json:"skin_id"`
	MarketHashName string `json:"market_hash_name"`
	Price          uint64 `json:"price"`
}

var table = map[uint64]Skin{
	1: {ID: 1, MarketHashName: "★ Karambit", Price: 1000},
	2: {ID: 2, MarketHashName: "AWP | Dragon Lore", Price: 500},
	3: {ID: 3, MarketHashName: "Glock-18 | Fade", Price: 100},
}

// PriceForSkin returns the table price, or 0 for unknown ids.
func PriceForSkin(skinID uint64) uint64 {
	return table[skinID].Price
}

// Lookup returns the table entry for skinID.
func Lookup(skinID uint64) (Skin, bool) {
	s, ok := table[skinID]
	return s, ok
}

// Catalogue lists known skins ordered by id.
func Catalogue() []Skin {
	out := make([]Skin, 0, len(table))
	for _, s := range table {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
