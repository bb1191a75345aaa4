package revenue_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/core/state"
	"namechain/native/revenue"
	"namechain/storage"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

// pct converts whole percents to the 1e18 fixed-point scale.
func pct(p int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)
	return new(big.Int).Mul(big.NewInt(p), scale)
}

func newDistributor(t *testing.T) (*revenue.Distributor, *state.Ledger) {
	t.Helper()
	ledger := state.NewLedger(storage.NewMemDB())
	d := revenue.NewDistributor(addr(1), addr(100), ledger, nil)
	return d, ledger
}

func TestPercentageSumCapped(t *testing.T) {
	d, _ := newDistributor(t)
	owner := addr(1)

	require.NoError(t, d.AddRecipient(owner, addr(2), "team", pct(60)))
	require.NoError(t, d.AddRecipient(owner, addr(3), "treasury", pct(40)))
	require.Equal(t, pct(100), d.PercentageTotal())

	err := d.AddRecipient(owner, addr(4), "extra", pct(1))
	require.ErrorIs(t, err, revenue.ErrPercentageTooHigh)

	// Updating a line re-validates with its old percentage excluded.
	require.NoError(t, d.UpdateRecipientByAddress(owner, addr(3), addr(3), "treasury", pct(30)))
	require.NoError(t, d.AddRecipient(owner, addr(4), "extra", pct(10)))
	err = d.UpdateRecipientByAddress(owner, addr(4), addr(4), "extra", pct(11))
	require.ErrorIs(t, err, revenue.ErrPercentageTooHigh)
}

func TestAddRecipientValidation(t *testing.T) {
	d, _ := newDistributor(t)
	owner := addr(1)

	require.ErrorIs(t, d.AddRecipient(owner, addr(2), "this label is way too long to be accepted", pct(10)), revenue.ErrLabelTooLong)
	require.NoError(t, d.AddRecipient(owner, addr(2), "team", pct(10)))
	require.ErrorIs(t, d.AddRecipient(owner, addr(2), "dup", pct(10)), revenue.ErrDuplicateRecipient)
	require.Error(t, d.AddRecipient(addr(9), addr(3), "x", pct(10)))
}

func TestReceiveSplitsWithFloorDivision(t *testing.T) {
	d, ledger := newDistributor(t)
	owner := addr(1)
	payer := addr(5)

	require.NoError(t, d.AddRecipient(owner, addr(2), "a", pct(33)))
	require.NoError(t, d.AddRecipient(owner, addr(3), "b", pct(33)))
	require.NoError(t, ledger.Credit(payer, big.NewInt(1000)))

	require.NoError(t, d.Receive(payer, big.NewInt(100)))

	require.Equal(t, int64(33), ledger.BalanceOf(addr(2)).Int64())
	require.Equal(t, int64(33), ledger.BalanceOf(addr(3)).Int64())
	// The unassigned 34% stays on the distributor.
	require.Equal(t, int64(34), ledger.BalanceOf(d.Address()).Int64())
	require.Equal(t, int64(900), ledger.BalanceOf(payer).Int64())

	// Withdraw sweeps the remainder to the owner.
	require.NoError(t, d.WithdrawBalance(owner))
	require.Equal(t, int64(0), ledger.BalanceOf(d.Address()).Int64())
	require.Equal(t, int64(34), ledger.BalanceOf(owner).Int64())
}

func TestReceiveFailsAtomically(t *testing.T) {
	d, ledger := newDistributor(t)
	owner := addr(1)
	payer := addr(5)

	require.NoError(t, d.AddRecipient(owner, addr(2), "a", pct(50)))
	require.NoError(t, ledger.Credit(payer, big.NewInt(10)))

	require.Error(t, d.Receive(payer, big.NewInt(100)))
	require.Equal(t, int64(10), ledger.BalanceOf(payer).Int64())
	require.Equal(t, int64(0), ledger.BalanceOf(addr(2)).Int64())
}

func TestRemoveRecipientSwapsLast(t *testing.T) {
	d, _ := newDistributor(t)
	owner := addr(1)

	require.NoError(t, d.AddRecipient(owner, addr(2), "a", pct(10)))
	require.NoError(t, d.AddRecipient(owner, addr(3), "b", pct(20)))
	require.NoError(t, d.AddRecipient(owner, addr(4), "c", pct(30)))

	require.NoError(t, d.RemoveRecipientByAddress(owner, addr(2)))
	recipients := d.Recipients()
	require.Len(t, recipients, 2)
	// The last line moved into the removed slot.
	require.Equal(t, addr(4), recipients[0].Addr)
	require.Equal(t, addr(3), recipients[1].Addr)
	require.False(t, d.IsRecipient(addr(2)))

	_, err := d.GetRecipient(addr(2))
	require.ErrorIs(t, err, revenue.ErrRecipientNotFound)

	require.NoError(t, d.RemoveLastRecipient(owner))
	require.Equal(t, 1, d.RecipientsLength())
	require.NoError(t, d.RemoveAllRecipients(owner))
	require.Equal(t, 0, d.RecipientsLength())
	require.ErrorIs(t, d.RemoveLastRecipient(owner), revenue.ErrNoRecipients)
}

func TestFactoryLaunchAndLookup(t *testing.T) {
	ledger := state.NewLedger(storage.NewMemDB())
	f := revenue.NewFactory(addr(1), addr(50), ledger, nil)

	require.True(t, f.IsUniqueIDAvailable("team-split"))
	d, err := f.Create(addr(2), "team-split")
	require.NoError(t, err)
	require.NotEqual(t, common.Address{}, d.Address())
	require.True(t, d.Access().IsOwner(addr(2)))

	require.False(t, f.IsUniqueIDAvailable("team-split"))
	_, err = f.Create(addr(3), "team-split")
	require.ErrorIs(t, err, revenue.ErrUniqueIDTaken)

	_, err = f.Create(addr(3), "this unique id is far too long to accept")
	require.ErrorIs(t, err, revenue.ErrUniqueIDTooLong)

	require.Equal(t, d.Address(), f.DistributorAddressByID("team-split"))
	require.Equal(t, common.Address{}, f.DistributorAddressByID("missing"))
	require.Equal(t, []string{"team-split"}, f.UniqueIDs())
}
