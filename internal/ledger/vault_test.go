package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinsol/vault-service/internal/model"
)

var (
	alice = model.Identity{1}
	bob   = model.Identity{2}
)

func TestDepositWithdraw_Scenario(t *testing.T) {
	v := NewVault(alice)

	v, err := Deposit(v, 100)
	require.NoError(t, err)
	v, err = AccrueRewards(v, 50)
	require.NoError(t, err)
	v, err = Withdraw(v, 120)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), v.TotalDeposits)

	after, err := Withdraw(v, 31)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, v, after)
}

func TestDeposit_RejectsZero(t *testing.T) {
	v := NewVault(alice)
	after, err := Deposit(v, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, v, after)
}

func TestDeposit_NetBalance(t *testing.T) {
	steps := []struct {
		deposit  bool
		amount   uint64
		wantErr  error
		expected uint64
	}{
		{true, 10, nil, 10},
		{true, 5, nil, 15},
		{false, 7, nil, 8},
		{false, 9, ErrInsufficientFunds, 8},
		{true, 1, nil, 9},
		{false, 9, nil, 0},
		{false, 1, ErrInsufficientFunds, 0},
	}

	v := NewVault(alice)
	for i, s := range steps {
		var err error
		if s.deposit {
			v, err = Deposit(v, s.amount)
		} else {
			v, err = Withdraw(v, s.amount)
		}
		if s.wantErr != nil {
			assert.ErrorIs(t, err, s.wantErr, "step %d", i)
		} else {
			assert.NoError(t, err, "step %d", i)
		}
		assert.Equal(t, s.expected, v.TotalDeposits, "step %d", i)
	}
}

func TestAccrueRewards_ThenWithdrawRestores(t *testing.T) {
	v := model.Vault{Owner: alice, TotalDeposits: 42}
	v2, err := AccrueRewards(v, 8)
	require.NoError(t, err)
	v3, err := Withdraw(v2, 8)
	require.NoError(t, err)
	assert.Equal(t, v, v3)
}

func TestTotalDeposits_Overflow(t *testing.T) {
	v := model.Vault{Owner: alice, TotalDeposits: math.MaxUint64 - 1}

	after, err := Deposit(v, 2)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, v, after)

	after, err = AccrueRewards(v, 2)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, v, after)

	after, err = AccrueRewards(v, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), after.TotalDeposits)
}

func TestBorrowRepay_Scenario(t *testing.T) {
	v := CollateralizedVault(alice, 1)
	assert.Equal(t, model.CollateralCollateralized, v.CollateralStatus())

	v, err := Borrow(v, alice, 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), v.LoanAmount)

	v, err = Repay(v, alice, 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v.LoanAmount)
	assert.Equal(t, uint64(0), v.SkinID)

	after, err := Repay(v, alice, 1)
	assert.ErrorIs(t, err, ErrInvalidRepayAmount)
	assert.Equal(t, v, after)
}

func TestRepay_PartialKeepsCollateral(t *testing.T) {
	v := model.Vault{Owner: alice, SkinID: 3, LoanAmount: 100}
	v, err := Repay(v, alice, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), v.LoanAmount)
	assert.Equal(t, uint64(3), v.SkinID)

	after, err := Repay(v, alice, 61)
	assert.ErrorIs(t, err, ErrInvalidRepayAmount)
	assert.Equal(t, v, after)
}

func TestBorrow_WrapsOnOverflow(t *testing.T) {
	v := model.Vault{Owner: alice, SkinID: 1, LoanAmount: math.MaxUint64}
	v, err := Borrow(v, alice, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.LoanAmount)
}

func TestOwnerOnlyTransitions(t *testing.T) {
	v := model.Vault{Owner: alice, SkinID: 2, LoanAmount: 50, TotalDeposits: 5}

	cases := map[string]func(model.Vault) (model.Vault, error){
		"borrow":    func(v model.Vault) (model.Vault, error) { return Borrow(v, bob, 10) },
		"repay":     func(v model.Vault) (model.Vault, error) { return Repay(v, bob, 10) },
		"liquidate": func(v model.Vault) (model.Vault, error) { return Liquidate(v, bob) },
	}
	for name, op := range cases {
		t.Run(name, func(t *testing.T) {
			after, err := op(v)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, v, after)
		})
	}
}

func TestLiquidate_ResetsLoanAndCollateral(t *testing.T) {
	v := model.Vault{Owner: alice, SkinID: 2, LoanAmount: 50, TotalDeposits: 5}
	v, err := Liquidate(v, alice)
	require.NoError(t, err)
	assert.Equal(t, model.Vault{Owner: alice, TotalDeposits: 5}, v)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "Unauthorized", Code(ErrUnauthorized))
	assert.Equal(t, "NotListed", Code(ErrNotListed))
	assert.Equal(t, "AlreadyExists", Code(ErrAlreadyExists))
	assert.Equal(t, "", Code(assert.AnError))
}
