package skinport

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type RawItem struct {
	MarketHashName string           `json:"market_hash_name"`
	Currency       string           `json:"currency"`
	Slug           string           `json:"slug"`
	MinPrice       *decimal.Decimal `json:"min_price"`
	Quantity       int              `json:"quantity"`
}

// Item is a market entry with tradable and non-tradable offers merged.
type Item struct {
	MarketHashName      string           `json:"market_hash_name"`
	Currency            string           `json:"currency"`
	Slug                string           `json:"slug"`
	MinPriceTradable    *decimal.Decimal `json:"min_price_tradable"`
	MinPriceNonTradable *decimal.Decimal `json:"min_price_non_tradable"`
	Quantity            int              `json:"quantity"`
}

// MinPrice is the lower of the two offer prices, or nil when neither exists.
func (i Item) MinPrice() *decimal.Decimal {
	switch {
	case i.MinPriceTradable == nil:
		return i.MinPriceNonTradable
	case i.MinPriceNonTradable == nil:
		return i.MinPriceTradable
	case i.MinPriceNonTradable.LessThan(*i.MinPriceTradable):
		return i.MinPriceNonTradable
	default:
		return i.MinPriceTradable
	}
}

type APIError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("skinport api error: %v", e.Errors)
}
