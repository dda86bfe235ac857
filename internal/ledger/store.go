package ledger

import (
	"context"
	"sync/atomic"
	"time"

	"skinsol/vault-service/internal/model"
)

// Store is the durable keyed storage the managers run against. Vaults are
// keyed by owner, listings by mint. Writes made inside RunAtomic are
// committed together or not at all.
type Store interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateVault fails with ErrAlreadyExists if the owner already has a vault.
	CreateVault(ctx context.Context, v model.Vault) error
	GetVault(ctx context.Context, owner model.Identity) (model.Vault, error)
	// GetVaultForUpdate locks the record until the surrounding RunAtomic ends.
	GetVaultForUpdate(ctx context.Context, owner model.Identity) (model.Vault, error)
	UpdateVault(ctx context.Context, v model.Vault) error

	CreateListing(ctx context.Context, l model.Listing) error
	GetListing(ctx context.Context, mint model.Identity) (model.Listing, error)
	GetListingForUpdate(ctx context.Context, mint model.Identity) (model.Listing, error)
	UpdateListing(ctx context.Context, l model.Listing) error
}

// Clock reports unix seconds.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

// SystemClock reads wall time but never reports a value lower than one it
// already returned.
type SystemClock struct {
	last atomic.Int64
}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() int64 {
	now := time.Now().Unix()
	for {
		last := c.last.Load()
		if now <= last {
			return last
		}
		if c.last.CompareAndSwap(last, now) {
			return now
		}
	}
}
