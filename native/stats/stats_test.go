package stats_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/native/stats"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func TestOnlyRegisteredWriterMayRecord(t *testing.T) {
	owner := addr(1)
	writer := addr(2)
	user := addr(3)

	s := stats.New(owner)
	require.ErrorIs(t, s.AddWeiSpent(writer, user, big.NewInt(5)), stats.ErrNotWriter)

	require.NoError(t, s.SetWriter(owner, writer))
	require.NoError(t, s.AddWeiSpent(writer, user, big.NewInt(5)))
	require.NoError(t, s.AddWeiSpent(writer, user, big.NewInt(7)))

	require.Equal(t, int64(12), s.WeiSpent(user).Int64())
	require.Equal(t, int64(12), s.TotalWeiSpent().Int64())
	require.Equal(t, int64(0), s.WeiSpent(addr(9)).Int64())

	// Re-pointing the writer cuts the old one off.
	require.NoError(t, s.SetWriter(owner, addr(4)))
	require.ErrorIs(t, s.AddWeiSpent(writer, user, big.NewInt(1)), stats.ErrNotWriter)
}

func TestSetWriterRequiresAuthorization(t *testing.T) {
	s := stats.New(addr(1))
	require.Error(t, s.SetWriter(addr(5), addr(5)))

	require.NoError(t, s.Access().AddManager(addr(1), addr(5)))
	require.NoError(t, s.SetWriter(addr(5), addr(5)))
}

func TestMiddlewareFansWritersIn(t *testing.T) {
	owner := addr(1)
	minter := addr(2)
	user := addr(3)
	mwAddr := addr(10)

	s := stats.New(owner)
	mw := stats.NewMiddleware(owner, mwAddr, s)
	require.NoError(t, s.SetWriter(owner, mwAddr))

	// Unregistered principals are rejected before reaching the backend.
	require.ErrorIs(t, mw.AddWeiSpent(minter, user, big.NewInt(5)), stats.ErrNotWriterContract)

	require.NoError(t, mw.AddWriter(owner, minter))
	require.NoError(t, mw.AddWeiSpent(minter, user, big.NewInt(5)))
	require.Equal(t, int64(5), mw.WeiSpent(user).Int64())
	require.Equal(t, int64(5), s.WeiSpent(user).Int64())

	// An existing writer may enroll another one.
	other := addr(4)
	require.ErrorIs(t, mw.AddWriterByWriter(other, other), stats.ErrNotWriterContract)
	require.NoError(t, mw.AddWriterByWriter(minter, other))
	require.NoError(t, mw.AddWeiSpent(other, user, big.NewInt(2)))
	require.Equal(t, int64(7), mw.TotalWeiSpent().Int64())

	require.NoError(t, mw.RemoveWriter(owner, other))
	require.ErrorIs(t, mw.AddWeiSpent(other, user, big.NewInt(1)), stats.ErrNotWriterContract)
}
