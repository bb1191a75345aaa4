package feed_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"namechain/core/state"
	"namechain/native/feed"
	"namechain/native/token"
	"namechain/storage"
)

func newComments(t *testing.T, gateToken feed.BalanceSource, gateMin *big.Int) (*feed.Comments, *state.Ledger) {
	t.Helper()
	owner := addr(1)
	ledger := state.NewLedger(storage.NewMemDB())
	c := feed.NewComments(owner, addr(100), nil, nil, gateToken, gateMin, ledger, nil)
	return c, ledger
}

func TestCommentsKeyedBySubject(t *testing.T) {
	c, _ := newComments(t, nil, nil)
	alice := addr(2)
	subjectA := addr(10)
	subjectB := addr(11)

	id, err := c.PostComment(alice, subjectA, "ipfs://a0", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), id)

	_, err = c.PostComment(alice, subjectA, "ipfs://a1", nil)
	require.NoError(t, err)
	_, err = c.PostComment(alice, subjectB, "ipfs://b0", nil)
	require.NoError(t, err)

	// Ids count per subject, sections do not bleed into each other.
	require.Equal(t, 2, c.CommentCount(subjectA, false))
	require.Equal(t, 1, c.CommentCount(subjectB, false))
	require.Equal(t, "ipfs://b0", c.FetchComments(subjectB, false, 0, 10)[0].URL)
	require.Empty(t, c.FetchComments(addr(12), false, 0, 10))
}

func TestCommentsTokenGate(t *testing.T) {
	owner := addr(1)
	gate := token.New("Gate", "GATE", owner)
	c, _ := newComments(t, gate, big.NewInt(100))
	alice := addr(2)

	_, err := c.PostComment(alice, addr(10), "ipfs://x", nil)
	require.ErrorIs(t, err, feed.ErrMinBalance)

	require.NoError(t, gate.Mint(owner, alice, big.NewInt(100)))
	_, err = c.PostComment(alice, addr(10), "ipfs://x", nil)
	require.NoError(t, err)

	// Dropping the gate opens posting to everyone.
	require.NoError(t, c.SetGate(owner, nil, nil))
	_, err = c.PostComment(addr(3), addr(10), "ipfs://y", nil)
	require.NoError(t, err)
}

func TestCommentsPriceAndWithdraw(t *testing.T) {
	c, ledger := newComments(t, nil, nil)
	owner := addr(1)
	alice := addr(2)

	require.NoError(t, c.SetPrice(owner, big.NewInt(25)))
	_, err := c.PostComment(alice, addr(10), "ipfs://x", big.NewInt(24))
	require.ErrorIs(t, err, feed.ErrPriceNotMet)

	require.NoError(t, ledger.Credit(alice, big.NewInt(30)))
	_, err = c.PostComment(alice, addr(10), "ipfs://x", big.NewInt(25))
	require.NoError(t, err)
	require.Equal(t, int64(25), ledger.BalanceOf(c.Address()).Int64())

	require.Error(t, c.WithdrawRevenue(alice, alice))
	require.NoError(t, c.WithdrawRevenue(owner, addr(9)))
	require.Equal(t, int64(25), ledger.BalanceOf(addr(9)).Int64())
}

func TestCommentsDeleteRestoreAndPause(t *testing.T) {
	c, _ := newComments(t, nil, nil)
	owner := addr(1)
	alice := addr(2)
	bob := addr(3)
	subject := addr(10)

	id, err := c.PostComment(alice, subject, "ipfs://x", nil)
	require.NoError(t, err)

	require.ErrorIs(t, c.DeleteComment(bob, subject, id), feed.ErrNotModOrAuthor)
	require.ErrorIs(t, c.DeleteComment(alice, subject, 99), feed.ErrMessageNotFound)
	require.NoError(t, c.DeleteComment(alice, subject, id))
	require.Equal(t, 0, c.CommentCount(subject, false))

	require.ErrorIs(t, c.RestoreComment(alice, subject, id), feed.ErrNotModOrOwner)
	require.NoError(t, c.RestoreComment(owner, subject, id))
	require.Equal(t, 1, c.CommentCount(subject, false))
	require.ErrorIs(t, c.RestoreComment(owner, subject, id), feed.ErrNotDeleted)

	require.ErrorIs(t, c.TogglePaused(alice), feed.ErrNotModOrOwner)
	require.NoError(t, c.TogglePaused(owner))
	_, err = c.PostComment(alice, subject, "ipfs://y", nil)
	require.ErrorIs(t, err, feed.ErrPaused)
}

func TestCommentsModeratorTogglesPause(t *testing.T) {
	owner := addr(1)
	modToken := token.New("Moderator", "MOD", owner)
	ledger := state.NewLedger(storage.NewMemDB())
	c := feed.NewComments(owner, addr(100), modToken, big.NewInt(10), nil, nil, ledger, nil)
	mod := addr(4)
	require.NoError(t, modToken.Mint(owner, mod, big.NewInt(10)))

	require.NoError(t, c.TogglePaused(mod))
	require.True(t, c.Paused())
	require.NoError(t, c.TogglePaused(mod))
	require.False(t, c.Paused())
}

func TestCommentsLastPage(t *testing.T) {
	c, _ := newComments(t, nil, nil)
	alice := addr(2)
	subject := addr(10)

	for _, u := range []string{"u0", "u1", "u2"} {
		_, err := c.PostComment(alice, subject, u, nil)
		require.NoError(t, err)
	}

	last := c.FetchLastComments(subject, false, 2)
	require.Len(t, last, 2)
	require.Equal(t, "u1", last[0].URL)
	require.Equal(t, "u2", last[1].URL)
}
