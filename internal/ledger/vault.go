package ledger

import (
	"math"

	"skinsol/vault-service/internal/model"
)

// The functions below are the vault transitions. Each takes the current
// record by value and returns the next one; on error the input is returned
// unchanged.

func NewVault(owner model.Identity) model.Vault {
	return model.Vault{Owner: owner}
}

// AccrueRewards credits amount to total_deposits. Anyone may credit any vault.
func AccrueRewards(v model.Vault, amount uint64) (model.Vault, error) {
	total, err := checkedAdd(v.TotalDeposits, amount)
	if err != nil {
		return v, err
	}
	v.TotalDeposits = total
	return v, nil
}

func Deposit(v model.Vault, amount uint64) (model.Vault, error) {
	if amount == 0 {
		return v, ErrInvalidAmount
	}
	total, err := checkedAdd(v.TotalDeposits, amount)
	if err != nil {
		return v, err
	}
	v.TotalDeposits = total
	return v, nil
}

func Withdraw(v model.Vault, amount uint64) (model.Vault, error) {
	if v.TotalDeposits < amount {
		return v, ErrInsufficientFunds
	}
	total, err := checkedSub(v.TotalDeposits, amount)
	if err != nil {
		return v, err
	}
	v.TotalDeposits = total
	return v, nil
}

// CollateralizedVault is the fresh record written when user pledges skinID.
func CollateralizedVault(user model.Identity, skinID uint64) model.Vault {
	return model.Vault{Owner: user, SkinID: skinID}
}

// Borrow records a loan against the vault. The addition wraps on overflow
// and no collateral value limit applies.
func Borrow(v model.Vault, user model.Identity, amount uint64) (model.Vault, error) {
	if v.Owner != user {
		return v, ErrUnauthorized
	}
	v.LoanAmount += amount
	return v, nil
}

// Repay reduces the loan and releases the collateral once it reaches zero.
func Repay(v model.Vault, user model.Identity, amount uint64) (model.Vault, error) {
	if v.Owner != user {
		return v, ErrUnauthorized
	}
	if v.LoanAmount < amount {
		return v, ErrInvalidRepayAmount
	}
	v.LoanAmount -= amount
	if v.LoanAmount == 0 {
		v.SkinID = 0
	}
	return v, nil
}

// Liquidate clears loan and collateral regardless of repayment. Only the
// owner may liquidate.
func Liquidate(v model.Vault, authority model.Identity) (model.Vault, error) {
	if v.Owner != authority {
		return v, ErrUnauthorized
	}
	v.LoanAmount = 0
	v.SkinID = 0
	return v, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}
