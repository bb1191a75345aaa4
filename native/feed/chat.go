package feed

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/events"
	"namechain/core/state"
)

// Chat is a moderated message board: main messages with per-message replies,
// soft deletion with restore, suspension, an optional posting price and a
// pause switch. Posting fees accumulate on the chat address until the owner
// withdraws them.
type Chat struct {
	moderation

	mu      sync.RWMutex
	addr    common.Address
	ledger  *state.Ledger
	emitter events.Emitter
	nowFn   func() int64

	price    *big.Int
	paused   bool
	messages []*Message
	replies  map[uint64][]*Message
}

// NewChat returns a chat engine at addr. modToken may be nil; without it only
// the owner moderates.
func NewChat(owner, addr common.Address, modToken BalanceSource, modMinBalance *big.Int, ledger *state.Ledger, emitter events.Emitter) *Chat {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Chat{
		moderation: newModeration(owner, modToken, modMinBalance),
		addr:       addr,
		ledger:     ledger,
		emitter:    emitter,
		nowFn:      func() int64 { return time.Now().Unix() },
		price:      big.NewInt(0),
		replies:    make(map[uint64][]*Message),
	}
}

// SetNowFunc overrides the clock, primarily for tests.
func (c *Chat) SetNowFunc(now func() int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowFn = now
}

// Address returns the chat's ledger address.
func (c *Chat) Address() common.Address { return c.addr }

// PostMessage appends a main message and returns its id.
func (c *Chat) PostMessage(caller common.Address, url string, value *big.Int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkPostLocked(caller, url, value); err != nil {
		return 0, err
	}
	if err := c.takePayment(caller, value); err != nil {
		return 0, err
	}
	id := uint64(len(c.messages))
	c.messages = append(c.messages, &Message{
		ID:        id,
		Author:    caller,
		URL:       url,
		CreatedAt: c.nowFn(),
	})
	c.emitter.Emit(newMessageEvent(EventTypeMessagePosted, c.addr, id, caller))
	return id, nil
}

// PostReply appends a reply under an existing main message.
func (c *Chat) PostReply(caller common.Address, messageID uint64, url string, value *big.Int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkPostLocked(caller, url, value); err != nil {
		return 0, err
	}
	if messageID >= uint64(len(c.messages)) {
		return 0, ErrMessageNotFound
	}
	if err := c.takePayment(caller, value); err != nil {
		return 0, err
	}
	id := uint64(len(c.replies[messageID]))
	c.replies[messageID] = append(c.replies[messageID], &Message{
		ID:        id,
		Author:    caller,
		URL:       url,
		CreatedAt: c.nowFn(),
	})
	c.emitter.Emit(newReplyEvent(EventTypeReplyPosted, c.addr, messageID, id, caller))
	return id, nil
}

func (c *Chat) checkPostLocked(caller common.Address, url string, value *big.Int) error {
	if c.paused {
		return ErrPaused
	}
	if c.IsSuspended(caller) {
		return ErrSuspended
	}
	if url == "" {
		return ErrEmptyURL
	}
	if c.price.Sign() > 0 {
		if value == nil || value.Cmp(c.price) < 0 {
			return ErrPriceNotMet
		}
	}
	return nil
}

// takePayment moves the posting fee onto the chat address. Free boards accept
// posts without any value attached.
func (c *Chat) takePayment(caller common.Address, value *big.Int) error {
	if value == nil || value.Sign() == 0 {
		return nil
	}
	return c.ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(caller, c.addr, value)
	})
}

// DeleteMessage soft-deletes a main message. The author or a mod may delete.
func (c *Chat) DeleteMessage(caller common.Address, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.messageLocked(id)
	if err != nil {
		return err
	}
	if m.Author != caller && !c.IsMod(caller) {
		return ErrNotModOrAuthor
	}
	m.Deleted = true
	c.emitter.Emit(newMessageEvent(EventTypeMessageDeleted, c.addr, id, m.Author))
	return nil
}

// RestoreMessage reverses a soft delete. Mods only.
func (c *Chat) RestoreMessage(caller common.Address, id uint64) error {
	if err := c.requireMod(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.messageLocked(id)
	if err != nil {
		return err
	}
	if !m.Deleted {
		return ErrNotDeleted
	}
	m.Deleted = false
	c.emitter.Emit(newMessageEvent(EventTypeMessageRestored, c.addr, id, m.Author))
	return nil
}

// DeleteReply soft-deletes a reply. The author or a mod may delete.
func (c *Chat) DeleteReply(caller common.Address, messageID, replyID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.replyLocked(messageID, replyID)
	if err != nil {
		return err
	}
	if r.Author != caller && !c.IsMod(caller) {
		return ErrNotModOrAuthor
	}
	r.Deleted = true
	c.emitter.Emit(newReplyEvent(EventTypeReplyDeleted, c.addr, messageID, replyID, r.Author))
	return nil
}

// RestoreReply reverses a reply soft delete. Mods only.
func (c *Chat) RestoreReply(caller common.Address, messageID, replyID uint64) error {
	if err := c.requireMod(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.replyLocked(messageID, replyID)
	if err != nil {
		return err
	}
	if !r.Deleted {
		return ErrNotDeleted
	}
	r.Deleted = false
	c.emitter.Emit(newReplyEvent(EventTypeReplyRestored, c.addr, messageID, replyID, r.Author))
	return nil
}

func (c *Chat) messageLocked(id uint64) (*Message, error) {
	if id >= uint64(len(c.messages)) {
		return nil, ErrMessageNotFound
	}
	return c.messages[id], nil
}

func (c *Chat) replyLocked(messageID, replyID uint64) (*Message, error) {
	replies, ok := c.replies[messageID]
	if !ok || replyID >= uint64(len(replies)) {
		return nil, ErrMessageNotFound
	}
	return replies[replyID], nil
}

// FetchMessages pages through main messages, oldest first.
func (c *Chat) FetchMessages(includeDeleted bool, offset, limit int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return page(c.messages, includeDeleted, offset, limit)
}

// FetchLastMessages returns the newest count main messages, oldest first.
func (c *Chat) FetchLastMessages(includeDeleted bool, n int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lastPage(c.messages, includeDeleted, n)
}

// FetchReplies pages through the replies of a main message. Unknown message
// ids yield an empty page.
func (c *Chat) FetchReplies(messageID uint64, includeDeleted bool, offset, limit int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return page(c.replies[messageID], includeDeleted, offset, limit)
}

// FetchLastReplies returns the newest n replies of a main message, oldest
// first. Unknown message ids yield an empty page.
func (c *Chat) FetchLastReplies(messageID uint64, includeDeleted bool, n int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lastPage(c.replies[messageID], includeDeleted, n)
}

// MessageCount reports how many main messages exist.
func (c *Chat) MessageCount(includeDeleted bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return count(c.messages, includeDeleted)
}

// ReplyCount reports how many replies a main message has.
func (c *Chat) ReplyCount(messageID uint64, includeDeleted bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return count(c.replies[messageID], includeDeleted)
}

// Price returns the posting fee.
func (c *Chat) Price() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(big.Int).Set(c.price)
}

// SetPrice changes the posting fee. Owner only.
func (c *Chat) SetPrice(caller common.Address, price *big.Int) error {
	if err := c.acl.RequireOwner(caller); err != nil {
		return err
	}
	if price == nil || price.Sign() < 0 {
		return ErrInvalidPrice
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.price = new(big.Int).Set(price)
	return nil
}

// Paused reports whether posting is off.
func (c *Chat) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// TogglePaused flips the posting gate. Mods only.
func (c *Chat) TogglePaused(caller common.Address) error {
	if err := c.requireMod(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = !c.paused
	return nil
}

// WithdrawRevenue sweeps accumulated posting fees to the given address.
// A zero balance is a no-op. Owner only.
func (c *Chat) WithdrawRevenue(caller, to common.Address) error {
	if err := c.acl.RequireOwner(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	balance := c.ledger.BalanceOf(c.addr)
	if balance.Sign() == 0 {
		return nil
	}
	return c.ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(c.addr, to, balance)
	})
}
