package service

import (
	"context"

	"go.uber.org/zap"

	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/model"
)

// ListingService runs listing transitions against the store.
type ListingService struct {
	store ledger.Store
	clock ledger.Clock
	log   *zap.Logger
}

func NewListingService(store ledger.Store, clock ledger.Clock, log *zap.Logger) *ListingService {
	return &ListingService{store: store, clock: clock, log: log.Named("listing")}
}

// ListForRent creates the listing for mint. An item can be listed once.
func (s *ListingService) ListForRent(ctx context.Context, owner, mint model.Identity, dailyPriceUSD uint64) (model.Listing, error) {
	l := ledger.NewListing(owner, mint, dailyPriceUSD)
	if err := s.store.CreateListing(ctx, l); err != nil {
		return model.Listing{}, logFailure(s.log, "list_for_rent", mint, err, zap.Stringer("caller", owner))
	}
	s.log.Debug("listed for rent",
		zap.Stringer("owner", owner),
		zap.Stringer("mint", mint),
		zap.Uint64("daily_price_usd", dailyPriceUSD),
	)
	return l, nil
}

func (s *ListingService) Get(ctx context.Context, mint model.Identity) (model.Listing, error) {
	return s.store.GetListing(ctx, mint)
}

// Now exposes the clock so callers can derive listing status consistently.
func (s *ListingService) Now() int64 {
	return s.clock.Now()
}

// Rent hands the listed item to renter for days. No payment is taken.
func (s *ListingService) Rent(ctx context.Context, renter, mint model.Identity, days uint64) (model.Listing, error) {
	var out model.Listing
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		l, err := s.store.GetListingForUpdate(ctx, mint)
		if err != nil {
			return err
		}
		next, err := ledger.Rent(l, renter, days, s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.store.UpdateListing(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return model.Listing{}, logFailure(s.log, "rent", mint, err, zap.Stringer("caller", renter), zap.Uint64("days", days))
	}

	s.log.Debug("listing rented",
		zap.Stringer("mint", mint),
		zap.Stringer("renter", renter),
		zap.Int64("rented_until", out.RentedUntil),
	)
	return out, nil
}
