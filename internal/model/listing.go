package model

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ListingSize is the encoded length of a Listing:
// owner, mint, daily_price_usd, is_listed, renter, rented_until.
const ListingSize = IdentitySize + IdentitySize + 8 + 1 + IdentitySize + 8

var ErrMalformedRecord = errors.New("malformed record")

type ListingStatus string

const (
	ListingListed  ListingStatus = "listed"
	ListingRented  ListingStatus = "rented"
	ListingExpired ListingStatus = "expired"
)

// Listing is the per-item rental record. Rented and expired are terminal:
// nothing puts an item back on the market.
type Listing struct {
	Owner         Identity `json:"owner"`
	Mint          Identity `json:"mint"`
	DailyPriceUSD uint64   `json:"daily_price_usd"`
	IsListed      bool     `json:"is_listed"`
	Renter        Identity `json:"renter"`
	RentedUntil   int64    `json:"rented_until"`
}

// Status derives the lifecycle state at unix time now.
func (l Listing) Status(now int64) ListingStatus {
	switch {
	case l.IsListed:
		return ListingListed
	case l.RentedUntil > now:
		return ListingRented
	default:
		return ListingExpired
	}
}

func (l Listing) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, ListingSize)
	buf = append(buf, l.Owner[:]...)
	buf = append(buf, l.Mint[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, l.DailyPriceUSD)
	if l.IsListed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, l.Renter[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(l.RentedUntil))
	return buf, nil
}

func (l *Listing) UnmarshalBinary(data []byte) error {
	if len(data) != ListingSize {
		return fmt.Errorf("%w: listing record is %d bytes, want %d", ErrMalformedRecord, len(data), ListingSize)
	}
	off := 0
	copy(l.Owner[:], data[off:off+IdentitySize])
	off += IdentitySize
	copy(l.Mint[:], data[off:off+IdentitySize])
	off += IdentitySize
	l.DailyPriceUSD = binary.LittleEndian.Uint64(data[off:])
	off += 8
	switch data[off] {
	case 0:
		l.IsListed = false
	case 1:
		l.IsListed = true
	default:
		return fmt.Errorf("%w: is_listed byte 0x%02x", ErrMalformedRecord, data[off])
	}
	off++
	copy(l.Renter[:], data[off:off+IdentitySize])
	off += IdentitySize
	l.RentedUntil = int64(binary.LittleEndian.Uint64(data[off:]))
	return nil
}
