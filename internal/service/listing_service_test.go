package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/model"
	"skinsol/vault-service/internal/repository"
	"skinsol/vault-service/internal/service"
)

func TestListingService_RentScenario(t *testing.T) {
	const now = int64(1_760_000_000)
	store := repository.NewMemoryStore()
	svc := service.NewListingService(store, ledger.ClockFunc(func() int64 { return now }), zap.NewNop())
	ctx := context.Background()
	item := model.Identity{0x11}

	l, err := svc.ListForRent(ctx, ownerA, item, 10)
	require.NoError(t, err)
	assert.Equal(t, model.ListingListed, l.Status(svc.Now()))

	_, err = svc.ListForRent(ctx, ownerB, item, 20)
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	l, err = svc.Rent(ctx, ownerB, item, 3)
	require.NoError(t, err)
	assert.Equal(t, now+259200, l.RentedUntil)
	assert.False(t, l.IsListed)
	assert.Equal(t, ownerB, l.Renter)

	_, err = svc.Rent(ctx, ownerA, item, 1)
	assert.ErrorIs(t, err, ledger.ErrNotListed)

	stored, err := svc.Get(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, l, stored)
	assert.Equal(t, ownerA, stored.Owner)
	assert.Equal(t, uint64(10), stored.DailyPriceUSD)
}

func TestListingService_RentOverflowLeavesListing(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := service.NewListingService(store, ledger.ClockFunc(func() int64 { return 0 }), zap.NewNop())
	ctx := context.Background()
	item := model.Identity{0x12}

	_, err := svc.ListForRent(ctx, ownerA, item, 10)
	require.NoError(t, err)

	_, err = svc.Rent(ctx, ownerB, item, 1<<62)
	assert.ErrorIs(t, err, ledger.ErrOverflow)

	l, err := svc.Get(ctx, item)
	require.NoError(t, err)
	assert.True(t, l.IsListed)
	assert.True(t, l.Renter.IsNull())
}

func TestListingService_RentUnknown(t *testing.T) {
	svc := service.NewListingService(repository.NewMemoryStore(), ledger.NewSystemClock(), zap.NewNop())
	_, err := svc.Rent(context.Background(), ownerB, model.Identity{0x13}, 1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
