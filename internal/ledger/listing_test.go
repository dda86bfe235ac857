package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinsol/vault-service/internal/model"
)

var skinX = model.Identity{0xAA}

func TestRent_Scenario(t *testing.T) {
	const now = int64(1_700_000_000)
	l := NewListing(alice, skinX, 10)
	assert.True(t, l.IsListed)
	assert.True(t, l.Renter.IsNull())
	assert.Equal(t, model.ListingListed, l.Status(now))

	l, err := Rent(l, bob, 3, now)
	require.NoError(t, err)
	assert.False(t, l.IsListed)
	assert.Equal(t, bob, l.Renter)
	assert.Equal(t, now+259200, l.RentedUntil)
	assert.Equal(t, model.ListingRented, l.Status(now))
	assert.Equal(t, model.ListingExpired, l.Status(now+259200))

	after, err := Rent(l, alice, 1, now)
	assert.ErrorIs(t, err, ErrNotListed)
	assert.Equal(t, l, after)
}

func TestRent_ZeroDays(t *testing.T) {
	l, err := Rent(NewListing(alice, skinX, 1), bob, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), l.RentedUntil)
	assert.Equal(t, model.ListingExpired, l.Status(500))
}

func TestRent_Overflow(t *testing.T) {
	l := NewListing(alice, skinX, 10)

	cases := []struct {
		name string
		days uint64
		now  int64
	}{
		{"multiplication", math.MaxUint64/86_400 + 1, 0},
		{"beyond signed range", uint64(math.MaxInt64)/86_400 + 1, 0},
		{"addition", 1, math.MaxInt64 - 86_399},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			after, err := Rent(l, bob, tc.days, tc.now)
			assert.ErrorIs(t, err, ErrOverflow)
			assert.Equal(t, l, after)
		})
	}

	rented, err := Rent(l, bob, 1, math.MaxInt64-86_400)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), rented.RentedUntil)
}

func TestSystemClock_Monotonic(t *testing.T) {
	c := NewSystemClock()
	c.last.Store(math.MaxInt64 - 1)
	assert.Equal(t, int64(math.MaxInt64-1), c.Now())

	fixed := ClockFunc(func() int64 { return 42 })
	assert.Equal(t, int64(42), fixed.Now())
}
