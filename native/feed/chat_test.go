package feed_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/core/state"
	"namechain/native/feed"
	"namechain/native/token"
	"namechain/storage"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func newChat(t *testing.T) (*feed.Chat, *token.Token, *state.Ledger) {
	t.Helper()
	owner := addr(1)
	modToken := token.New("Moderator", "MOD", owner)
	ledger := state.NewLedger(storage.NewMemDB())
	chat := feed.NewChat(owner, addr(100), modToken, big.NewInt(10), ledger, nil)
	return chat, modToken, ledger
}

func TestPostMessageAndReplies(t *testing.T) {
	chat, _, _ := newChat(t)
	alice := addr(2)
	bob := addr(3)

	_, err := chat.PostMessage(alice, "", nil)
	require.ErrorIs(t, err, feed.ErrEmptyURL)

	id, err := chat.PostMessage(alice, "ipfs://hello", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), id)

	_, err = chat.PostReply(bob, 99, "ipfs://re", nil)
	require.ErrorIs(t, err, feed.ErrMessageNotFound)

	replyID, err := chat.PostReply(bob, id, "ipfs://re", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), replyID)

	require.Equal(t, 1, chat.MessageCount(false))
	require.Equal(t, 1, chat.ReplyCount(id, false))

	replies := chat.FetchReplies(id, false, 0, 10)
	require.Len(t, replies, 1)
	require.Equal(t, bob, replies[0].Author)
	require.Equal(t, "ipfs://re", replies[0].URL)
}

func TestPostingPrice(t *testing.T) {
	chat, _, ledger := newChat(t)
	owner := addr(1)
	alice := addr(2)

	require.ErrorIs(t, chat.SetPrice(owner, big.NewInt(-1)), feed.ErrInvalidPrice)
	require.Error(t, chat.SetPrice(alice, big.NewInt(5)))
	require.NoError(t, chat.SetPrice(owner, big.NewInt(50)))

	_, err := chat.PostMessage(alice, "ipfs://x", big.NewInt(49))
	require.ErrorIs(t, err, feed.ErrPriceNotMet)

	// Funded caller pays onto the chat address.
	require.NoError(t, ledger.Credit(alice, big.NewInt(100)))
	_, err = chat.PostMessage(alice, "ipfs://x", big.NewInt(50))
	require.NoError(t, err)
	require.Equal(t, int64(50), ledger.BalanceOf(chat.Address()).Int64())
	require.Equal(t, int64(50), ledger.BalanceOf(alice).Int64())

	// Sweeping moves the whole balance; sweeping again is a no-op.
	treasury := addr(9)
	require.NoError(t, chat.WithdrawRevenue(owner, treasury))
	require.Equal(t, int64(50), ledger.BalanceOf(treasury).Int64())
	require.NoError(t, chat.WithdrawRevenue(owner, treasury))
	require.Equal(t, int64(50), ledger.BalanceOf(treasury).Int64())
}

func TestPauseAndSuspension(t *testing.T) {
	chat, modToken, _ := newChat(t)
	owner := addr(1)
	alice := addr(2)
	mod := addr(4)

	require.NoError(t, chat.TogglePaused(owner))
	_, err := chat.PostMessage(alice, "ipfs://x", nil)
	require.ErrorIs(t, err, feed.ErrPaused)
	require.NoError(t, chat.TogglePaused(owner))

	// Token holders above the threshold moderate.
	require.False(t, chat.IsMod(mod))
	require.NoError(t, modToken.Mint(owner, mod, big.NewInt(10)))
	require.True(t, chat.IsMod(mod))

	require.ErrorIs(t, chat.Suspend(alice, alice), feed.ErrNotModOrOwner)
	require.NoError(t, chat.Suspend(mod, alice))
	_, err = chat.PostMessage(alice, "ipfs://x", nil)
	require.ErrorIs(t, err, feed.ErrSuspended)

	require.NoError(t, chat.Unsuspend(mod, alice))
	_, err = chat.PostMessage(alice, "ipfs://x", nil)
	require.NoError(t, err)
}

func TestDeleteAndRestorePermissions(t *testing.T) {
	chat, modToken, _ := newChat(t)
	owner := addr(1)
	alice := addr(2)
	bob := addr(3)
	mod := addr(4)
	require.NoError(t, modToken.Mint(owner, mod, big.NewInt(10)))

	id, err := chat.PostMessage(alice, "ipfs://x", nil)
	require.NoError(t, err)

	require.ErrorIs(t, chat.DeleteMessage(bob, id), feed.ErrNotModOrAuthor)
	require.NoError(t, chat.DeleteMessage(alice, id))
	require.Equal(t, 0, chat.MessageCount(false))
	require.Equal(t, 1, chat.MessageCount(true))

	// Restore is mod-only, the author cannot undo a moderation decision.
	require.ErrorIs(t, chat.RestoreMessage(alice, id), feed.ErrNotModOrOwner)
	require.NoError(t, chat.RestoreMessage(mod, id))
	require.Equal(t, 1, chat.MessageCount(false))

	// A live message cannot be restored again.
	require.ErrorIs(t, chat.RestoreMessage(mod, id), feed.ErrNotDeleted)

	replyID, err := chat.PostReply(bob, id, "ipfs://re", nil)
	require.NoError(t, err)
	require.ErrorIs(t, chat.RestoreReply(mod, id, replyID), feed.ErrNotDeleted)
	require.NoError(t, chat.DeleteReply(mod, id, replyID))
	require.Equal(t, 0, chat.ReplyCount(id, false))
	require.NoError(t, chat.RestoreReply(mod, id, replyID))
	require.Equal(t, 1, chat.ReplyCount(id, false))
}

func TestModeratorTogglesPause(t *testing.T) {
	chat, modToken, _ := newChat(t)
	owner := addr(1)
	alice := addr(2)
	mod := addr(4)
	require.NoError(t, modToken.Mint(owner, mod, big.NewInt(10)))

	require.ErrorIs(t, chat.TogglePaused(alice), feed.ErrNotModOrOwner)
	require.NoError(t, chat.TogglePaused(mod))
	require.True(t, chat.Paused())
	require.NoError(t, chat.TogglePaused(mod))
	require.False(t, chat.Paused())
}

func TestMessagePagination(t *testing.T) {
	chat, _, _ := newChat(t)
	alice := addr(2)

	urls := []string{"u0", "u1", "u2", "u3", "u4"}
	for _, u := range urls {
		_, err := chat.PostMessage(alice, u, nil)
		require.NoError(t, err)
	}
	require.NoError(t, chat.DeleteMessage(alice, 2))

	// Deleted records drop out and the ordering stays oldest first.
	visible := chat.FetchMessages(false, 0, 10)
	require.Len(t, visible, 4)
	require.Equal(t, "u0", visible[0].URL)
	require.Equal(t, "u3", visible[2].URL)

	page := chat.FetchMessages(false, 1, 2)
	require.Len(t, page, 2)
	require.Equal(t, "u1", page[0].URL)
	require.Equal(t, "u3", page[1].URL)

	require.Empty(t, chat.FetchMessages(false, 10, 5))
	require.Len(t, chat.FetchMessages(true, 0, 10), 5)

	last := chat.FetchLastMessages(false, 2)
	require.Len(t, last, 2)
	require.Equal(t, "u3", last[0].URL)
	require.Equal(t, "u4", last[1].URL)

	require.Len(t, chat.FetchLastMessages(false, 100), 4)
}

func TestReplyLastPage(t *testing.T) {
	chat, _, _ := newChat(t)
	alice := addr(2)
	bob := addr(3)

	id, err := chat.PostMessage(alice, "ipfs://root", nil)
	require.NoError(t, err)
	for _, u := range []string{"r0", "r1", "r2"} {
		_, err := chat.PostReply(bob, id, u, nil)
		require.NoError(t, err)
	}

	last := chat.FetchLastReplies(id, false, 2)
	require.Len(t, last, 2)
	require.Equal(t, "r1", last[0].URL)
	require.Equal(t, "r2", last[1].URL)

	// Over-asking clamps to what exists, unknown messages read as empty.
	require.Len(t, chat.FetchLastReplies(id, false, 100), 3)
	require.Empty(t, chat.FetchLastReplies(99, false, 10))
}
