package ledger

import (
	"math"
	"math/bits"

	"skinsol/vault-service/internal/model"
)

const secondsPerDay = 86_400

func NewListing(owner, mint model.Identity, dailyPriceUSD uint64) model.Listing {
	return model.Listing{
		Owner:         owner,
		Mint:          mint,
		DailyPriceUSD: dailyPriceUSD,
		IsListed:      true,
	}
}

// Rent hands the item to renter for days starting at now. A rented listing
// stays off the market for good.
func Rent(l model.Listing, renter model.Identity, days uint64, now int64) (model.Listing, error) {
	if !l.IsListed {
		return l, ErrNotListed
	}
	hi, secs := bits.Mul64(days, secondsPerDay)
	if hi != 0 || secs > math.MaxInt64 {
		return l, ErrOverflow
	}
	add := int64(secs)
	if now > math.MaxInt64-add {
		return l, ErrOverflow
	}
	l.Renter = renter
	l.RentedUntil = now + add
	l.IsListed = false
	return l, nil
}
