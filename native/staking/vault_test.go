package staking_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/core/state"
	"namechain/native/staking"
	"namechain/native/token"
	"namechain/storage"
)

const period = int64(3600)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

type fixture struct {
	vault  *staking.Vault
	asset  *token.Token
	ledger *state.Ledger
	now    int64
}

// newFixture wires a vault with a controllable clock. The clock starts a
// little ahead of the wall clock so the vault's initial claim period, stamped
// in the constructor, is already in the past for the fake time.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := addr(1)
	asset := token.New("Stake", "STK", owner)
	ledger := state.NewLedger(storage.NewMemDB())
	vault, err := staking.NewVault(staking.VaultConfig{
		Owner:         owner,
		Address:       addr(100),
		Asset:         asset,
		ReceiptName:   "Staked STK",
		ReceiptSymbol: "sSTK",
		PeriodLength:  period,
		MinDeposit:    big.NewInt(10),
		ClaimMinimum:  big.NewInt(50),
		Ledger:        ledger,
	})
	require.NoError(t, err)

	f := &fixture{vault: vault, asset: asset, ledger: ledger, now: time.Now().Unix() + 5}
	vault.SetNowFunc(func() int64 { return f.now })
	return f
}

func (f *fixture) advance(seconds int64) { f.now += seconds }

func (f *fixture) fund(t *testing.T, holder common.Address, amount int64) {
	t.Helper()
	require.NoError(t, f.asset.Mint(addr(1), holder, big.NewInt(amount)))
}

func (f *fixture) reward(t *testing.T, amount int64) {
	t.Helper()
	funder := addr(99)
	require.NoError(t, f.ledger.Credit(funder, big.NewInt(amount)))
	require.NoError(t, f.vault.Receive(funder, big.NewInt(amount)))
}

func TestVaultConfigValidation(t *testing.T) {
	_, err := staking.NewVault(staking.VaultConfig{})
	require.ErrorIs(t, err, staking.ErrInvalidConfig)
}

func TestDepositValidationAndShares(t *testing.T) {
	f := newFixture(t)
	owner := addr(1)
	user := addr(2)
	f.fund(t, user, 1000)

	require.ErrorIs(t, f.vault.Deposit(user, big.NewInt(0)), staking.ErrZeroAmount)
	require.ErrorIs(t, f.vault.Deposit(user, big.NewInt(9)), staking.ErrBelowMinDeposit)

	require.NoError(t, f.vault.SetMaxDeposit(owner, big.NewInt(500)))
	require.ErrorIs(t, f.vault.Deposit(user, big.NewInt(501)), staking.ErrAboveMaxDeposit)

	require.NoError(t, f.vault.Deposit(user, big.NewInt(400)))
	require.Equal(t, int64(400), f.vault.SharesOf(user).Int64())
	require.Equal(t, int64(400), f.vault.TotalShares().Int64())
	require.Equal(t, int64(400), f.asset.BalanceOf(f.vault.Address()).Int64())
	require.Equal(t, int64(600), f.asset.BalanceOf(user).Int64())

	// The cap applies to the holder's running total.
	require.ErrorIs(t, f.vault.Deposit(user, big.NewInt(101)), staking.ErrAboveMaxDeposit)
}

func TestWithdrawLockAndRemainderRule(t *testing.T) {
	f := newFixture(t)
	user := addr(2)
	f.fund(t, user, 100)
	require.NoError(t, f.vault.Deposit(user, big.NewInt(100)))

	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(100)), staking.ErrAssetsLocked)
	require.Equal(t, period, f.vault.LockedTimeLeft(user))

	f.advance(period + 1)
	require.Equal(t, int64(0), f.vault.LockedTimeLeft(user))

	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(0)), staking.ErrZeroAmount)
	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(200)), staking.ErrInsufficientShares)
	// Leaving 5 behind would dip under the 10 minimum.
	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(95)), staking.ErrRemainderBelowMin)

	require.NoError(t, f.vault.Withdraw(user, big.NewInt(90)))
	require.NoError(t, f.vault.Withdraw(user, big.NewInt(10)))
	require.Equal(t, int64(100), f.asset.BalanceOf(user).Int64())
	require.Equal(t, int64(0), f.vault.TotalShares().Int64())
}

func TestDepositRestartsLock(t *testing.T) {
	f := newFixture(t)
	user := addr(2)
	f.fund(t, user, 200)
	require.NoError(t, f.vault.Deposit(user, big.NewInt(100)))

	f.advance(period + 1)
	require.NoError(t, f.vault.Deposit(user, big.NewInt(100)))
	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(10)), staking.ErrAssetsLocked)
}

func TestRewardsSettlePerPeriodProRata(t *testing.T) {
	f := newFixture(t)
	user1 := addr(2)
	user2 := addr(3)
	f.fund(t, user1, 75)
	f.fund(t, user2, 25)
	require.NoError(t, f.vault.Deposit(user1, big.NewInt(75)))
	require.NoError(t, f.vault.Deposit(user2, big.NewInt(25)))

	f.reward(t, 1000)
	require.Equal(t, int64(1000), f.vault.FutureRewards().Int64())
	require.Equal(t, int64(0), f.vault.ClaimRewardsTotal().Int64())

	// Unsettled inflow previews pro rata, settled pool is still empty.
	require.Equal(t, int64(750), f.vault.PreviewFutureClaim(user1).Int64())
	require.Equal(t, int64(250), f.vault.PreviewFutureClaim(user2).Int64())
	require.Equal(t, int64(0), f.vault.PreviewClaim(user1).Int64())

	f.advance(period + 1)
	require.NoError(t, f.vault.Claim(user1))
	require.Equal(t, int64(750), f.ledger.BalanceOf(user1).Int64())
	require.Equal(t, int64(0), f.vault.FutureRewards().Int64())

	// Only one claim per period.
	require.NoError(t, f.vault.Claim(user1))
	require.Equal(t, int64(750), f.ledger.BalanceOf(user1).Int64())

	// Anyone may trigger the holder's claim; the payout goes to the holder.
	require.NoError(t, f.vault.ClaimFor(user2))
	require.Equal(t, int64(250), f.ledger.BalanceOf(user2).Int64())
}

func TestSmallInflowRollsForward(t *testing.T) {
	f := newFixture(t)
	user := addr(2)
	f.fund(t, user, 100)
	require.NoError(t, f.vault.Deposit(user, big.NewInt(100)))

	// 30 is under the 50 claim minimum, so the period settles empty and the
	// inflow carries over.
	f.reward(t, 30)
	f.advance(period + 1)
	f.vault.UpdateLastClaimPeriod()
	require.Equal(t, int64(0), f.vault.ClaimRewardsTotal().Int64())
	require.Equal(t, int64(30), f.vault.FutureRewards().Int64())

	f.reward(t, 40)
	f.advance(period + 1)
	f.vault.UpdateLastClaimPeriod()
	require.Equal(t, int64(70), f.vault.ClaimRewardsTotal().Int64())
	require.Equal(t, int64(0), f.vault.FutureRewards().Int64())

	require.NoError(t, f.vault.Claim(user))
	require.Equal(t, int64(70), f.ledger.BalanceOf(user).Int64())
}

func TestDepositAutoClaims(t *testing.T) {
	f := newFixture(t)
	user := addr(2)
	f.fund(t, user, 200)
	require.NoError(t, f.vault.Deposit(user, big.NewInt(100)))

	f.reward(t, 500)
	f.advance(period + 1)

	// Topping up settles the pending claim before the lock restarts.
	require.NoError(t, f.vault.Deposit(user, big.NewInt(100)))
	require.Equal(t, int64(500), f.ledger.BalanceOf(user).Int64())
	require.Equal(t, int64(200), f.vault.SharesOf(user).Int64())
}

func TestTransferSettlesBothParties(t *testing.T) {
	f := newFixture(t)
	user1 := addr(2)
	user2 := addr(3)
	f.fund(t, user1, 60)
	f.fund(t, user2, 40)
	require.NoError(t, f.vault.Deposit(user1, big.NewInt(60)))
	require.NoError(t, f.vault.Deposit(user2, big.NewInt(40)))

	require.ErrorIs(t, f.vault.Transfer(user1, f.vault.Address(), big.NewInt(10)), staking.ErrTransferToVault)
	require.ErrorIs(t, f.vault.Transfer(user1, user2, big.NewInt(10)), staking.ErrAssetsLocked)

	f.reward(t, 100)
	f.advance(period + 1)

	require.NoError(t, f.vault.Transfer(user1, user2, big.NewInt(20)))
	require.Equal(t, int64(40), f.vault.SharesOf(user1).Int64())
	require.Equal(t, int64(60), f.vault.SharesOf(user2).Int64())

	// Both sides claimed at the pre-transfer split.
	require.Equal(t, int64(60), f.ledger.BalanceOf(user1).Int64())
	require.Equal(t, int64(40), f.ledger.BalanceOf(user2).Int64())
}

func TestWithdrawalGates(t *testing.T) {
	f := newFixture(t)
	owner := addr(1)
	user := addr(2)
	f.fund(t, user, 100)
	require.NoError(t, f.vault.Deposit(user, big.NewInt(100)))
	f.advance(period + 1)

	require.NoError(t, f.vault.ToggleWithdrawals(owner))
	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(100)), staking.ErrWithdrawalsDisabled)
	require.NoError(t, f.vault.ToggleWithdrawals(owner))

	require.NoError(t, f.vault.DisableWithdrawalsForever(owner))
	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(100)), staking.ErrWithdrawalsDisabledForever)

	// The permanent shutdown cannot be toggled back open.
	require.NoError(t, f.vault.ToggleWithdrawals(owner))
	require.ErrorIs(t, f.vault.Withdraw(user, big.NewInt(100)), staking.ErrWithdrawalsDisabledForever)
}
