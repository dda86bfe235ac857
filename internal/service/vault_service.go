package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/model"
)

// VaultService runs vault transitions against the store, one record per call.
type VaultService struct {
	store ledger.Store
	log   *zap.Logger
}

func NewVaultService(store ledger.Store, log *zap.Logger) *VaultService {
	return &VaultService{store: store, log: log.Named("vault")}
}

// Initialize creates an empty vault owned by owner.
func (s *VaultService) Initialize(ctx context.Context, owner model.Identity) (model.Vault, error) {
	v := ledger.NewVault(owner)
	if err := s.store.CreateVault(ctx, v); err != nil {
		return model.Vault{}, s.fail("initialize", owner, err)
	}
	s.log.Debug("vault initialized", zap.Stringer("owner", owner))
	return v, nil
}

// DepositSkinAsCollateral creates the user's vault already holding skinID.
// It fails with ErrAlreadyExists when the user has a vault.
func (s *VaultService) DepositSkinAsCollateral(ctx context.Context, user model.Identity, skinID uint64) (model.Vault, error) {
	v := ledger.CollateralizedVault(user, skinID)
	if err := s.store.CreateVault(ctx, v); err != nil {
		return model.Vault{}, s.fail("deposit_skin_as_collateral", user, err)
	}
	s.log.Debug("skin deposited as collateral", zap.Stringer("owner", user), zap.Uint64("skin_id", skinID))
	return v, nil
}

func (s *VaultService) Get(ctx context.Context, owner model.Identity) (model.Vault, error) {
	return s.store.GetVault(ctx, owner)
}

// AccrueRewards credits the vault. No caller check is made.
func (s *VaultService) AccrueRewards(ctx context.Context, vaultRef model.Identity, amount uint64) (model.Vault, error) {
	return s.mutate(ctx, "accrue_rewards", vaultRef, func(v model.Vault) (model.Vault, error) {
		return ledger.AccrueRewards(v, amount)
	}, zap.Uint64("amount", amount))
}

func (s *VaultService) Deposit(ctx context.Context, caller, vaultRef model.Identity, amount uint64) (model.Vault, error) {
	return s.mutate(ctx, "deposit", vaultRef, func(v model.Vault) (model.Vault, error) {
		return ledger.Deposit(v, amount)
	}, zap.Stringer("caller", caller), zap.Uint64("amount", amount))
}

func (s *VaultService) Withdraw(ctx context.Context, caller, vaultRef model.Identity, amount uint64) (model.Vault, error) {
	return s.mutate(ctx, "withdraw", vaultRef, func(v model.Vault) (model.Vault, error) {
		return ledger.Withdraw(v, amount)
	}, zap.Stringer("caller", caller), zap.Uint64("amount", amount))
}

func (s *VaultService) Borrow(ctx context.Context, user, vaultRef model.Identity, amount uint64) (model.Vault, error) {
	return s.mutate(ctx, "borrow", vaultRef, func(v model.Vault) (model.Vault, error) {
		return ledger.Borrow(v, user, amount)
	}, zap.Stringer("caller", user), zap.Uint64("amount", amount))
}

func (s *VaultService) Repay(ctx context.Context, user, vaultRef model.Identity, amount uint64) (model.Vault, error) {
	return s.mutate(ctx, "repay", vaultRef, func(v model.Vault) (model.Vault, error) {
		return ledger.Repay(v, user, amount)
	}, zap.Stringer("caller", user), zap.Uint64("amount", amount))
}

func (s *VaultService) Liquidate(ctx context.Context, authority, vaultRef model.Identity) (model.Vault, error) {
	return s.mutate(ctx, "liquidate", vaultRef, func(v model.Vault) (model.Vault, error) {
		return ledger.Liquidate(v, authority)
	}, zap.Stringer("caller", authority))
}

// mutate locks the vault, applies fn and writes the result in one transaction.
func (s *VaultService) mutate(ctx context.Context, op string, ref model.Identity, fn func(model.Vault) (model.Vault, error), fields ...zap.Field) (model.Vault, error) {
	var out model.Vault
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		v, err := s.store.GetVaultForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		next, err := fn(v)
		if err != nil {
			return err
		}
		if err := s.store.UpdateVault(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return model.Vault{}, s.fail(op, ref, err, fields...)
	}

	s.log.Debug("vault updated", append(fields,
		zap.String("op", op),
		zap.Stringer("vault", ref),
		zap.Uint64("skin_id", out.SkinID),
		zap.Uint64("loan_amount", out.LoanAmount),
		zap.Uint64("total_deposits", out.TotalDeposits),
	)...)
	return out, nil
}

func (s *VaultService) fail(op string, ref model.Identity, err error, fields ...zap.Field) error {
	return logFailure(s.log, op, ref, err, fields...)
}

// logFailure logs rejected transitions at info and anything else at error.
func logFailure(log *zap.Logger, op string, ref model.Identity, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Stringer("key", ref), zap.Error(err))
	if code := ledger.Code(err); code != "" {
		log.Info("transition rejected", append(fields, zap.String("code", code))...)
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	log.Error("transition failed", fields...)
	return err
}
