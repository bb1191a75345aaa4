package token_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/native/token"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func TestMintAndTransfer(t *testing.T) {
	owner := addr(1)
	tok := token.New("Moderator", "MOD", owner)

	require.ErrorIs(t, tok.Mint(addr(2), addr(2), big.NewInt(10)), token.ErrNotOwner)
	require.NoError(t, tok.Mint(owner, addr(2), big.NewInt(10)))
	require.Equal(t, int64(10), tok.BalanceOf(addr(2)).Int64())
	require.Equal(t, int64(10), tok.TotalSupply().Int64())

	require.NoError(t, tok.Transfer(addr(2), addr(3), big.NewInt(4)))
	require.Equal(t, int64(6), tok.BalanceOf(addr(2)).Int64())
	require.Equal(t, int64(4), tok.BalanceOf(addr(3)).Int64())

	require.ErrorIs(t, tok.Transfer(addr(2), addr(3), big.NewInt(7)), token.ErrInsufficientBalance)
	require.ErrorIs(t, tok.Transfer(addr(2), addr(3), big.NewInt(0)), token.ErrInvalidAmount)
}

func TestMinterRights(t *testing.T) {
	owner := addr(1)
	minter := addr(5)
	tok := token.New("Namechain Token", "NCT", owner)

	require.ErrorIs(t, tok.AddMinter(addr(2), minter), token.ErrNotOwner)
	require.ErrorIs(t, tok.AddMinter(owner, common.Address{}), token.ErrZeroAddress)
	require.NoError(t, tok.AddMinter(owner, minter))
	require.True(t, tok.IsMinter(minter))

	require.NoError(t, tok.Mint(minter, addr(3), big.NewInt(7)))
	require.Equal(t, int64(7), tok.BalanceOf(addr(3)).Int64())

	require.NoError(t, tok.RemoveMinter(owner, minter))
	require.False(t, tok.IsMinter(minter))
	require.ErrorIs(t, tok.Mint(minter, addr(3), big.NewInt(1)), token.ErrNotOwner)
}
