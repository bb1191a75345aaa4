package state_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/core/state"
	"namechain/storage"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func newLedger(t *testing.T) *state.Ledger {
	t.Helper()
	return state.NewLedger(storage.NewMemDB())
}

func TestTransferMovesBalance(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.Credit(addr(1), big.NewInt(100)))

	err := ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(addr(1), addr(2), big.NewInt(40))
	})
	require.NoError(t, err)

	require.Equal(t, int64(60), ledger.BalanceOf(addr(1)).Int64())
	require.Equal(t, int64(40), ledger.BalanceOf(addr(2)).Int64())
}

func TestTransferInsufficientBalance(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.Credit(addr(1), big.NewInt(10)))

	err := ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(addr(1), addr(2), big.NewInt(11))
	})
	require.ErrorIs(t, err, state.ErrInsufficientBalance)
	require.Equal(t, int64(10), ledger.BalanceOf(addr(1)).Int64())
	require.Equal(t, int64(0), ledger.BalanceOf(addr(2)).Int64())
}

func TestTransactRollsBackOnError(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.Credit(addr(1), big.NewInt(100)))

	boom := errors.New("boom")
	err := ledger.Transact(func(txn *state.Txn) error {
		if err := txn.Transfer(addr(1), addr(2), big.NewInt(60)); err != nil {
			return err
		}
		if err := txn.Transfer(addr(1), addr(3), big.NewInt(30)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed transaction may stick.
	require.Equal(t, int64(100), ledger.BalanceOf(addr(1)).Int64())
	require.Equal(t, int64(0), ledger.BalanceOf(addr(2)).Int64())
	require.Equal(t, int64(0), ledger.BalanceOf(addr(3)).Int64())
}

func TestTransactPartialTransferRollsBack(t *testing.T) {
	ledger := newLedger(t)
	require.NoError(t, ledger.Credit(addr(1), big.NewInt(50)))

	err := ledger.Transact(func(txn *state.Txn) error {
		if err := txn.Transfer(addr(1), addr(2), big.NewInt(50)); err != nil {
			return err
		}
		return txn.Transfer(addr(1), addr(3), big.NewInt(1))
	})
	require.ErrorIs(t, err, state.ErrInsufficientBalance)
	require.Equal(t, int64(50), ledger.BalanceOf(addr(1)).Int64())
	require.Equal(t, int64(0), ledger.BalanceOf(addr(2)).Int64())
}

func TestBalancesPersistAcrossLedgers(t *testing.T) {
	db := storage.NewMemDB()
	first := state.NewLedger(db)
	require.NoError(t, first.Credit(addr(7), big.NewInt(123)))

	second := state.NewLedger(db)
	require.Equal(t, int64(123), second.BalanceOf(addr(7)).Int64())
}

func TestDeriveAddressDeterministic(t *testing.T) {
	a := state.DeriveAddress(addr(1), 0)
	b := state.DeriveAddress(addr(1), 0)
	c := state.DeriveAddress(addr(1), 1)
	d := state.DeriveAddress(addr(2), 0)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, d)
	require.NotEqual(t, common.Address{}, a)

	e := state.DeriveAddressFromSeed(addr(1), "alpha")
	f := state.DeriveAddressFromSeed(addr(1), "alpha")
	g := state.DeriveAddressFromSeed(addr(1), "beta")
	require.Equal(t, e, f)
	require.NotEqual(t, e, g)
}
