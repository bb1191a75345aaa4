package feed

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/events"
	"namechain/core/state"
)

// Comments is a moderated comment section addressed by subject. It shares the
// chat moderation model and adds an optional posting gate: when a gate token
// and a minimum balance are configured, only sufficiently funded holders may
// post.
type Comments struct {
	moderation

	mu      sync.RWMutex
	addr    common.Address
	ledger  *state.Ledger
	emitter events.Emitter
	nowFn   func() int64

	gateToken      BalanceSource
	gateMinBalance *big.Int

	price    *big.Int
	paused   bool
	comments map[common.Address][]*Message
}

// NewComments returns a comment engine at addr. Both modToken and gateToken
// may be nil; a nil gate token or a zero minimum leaves posting open.
func NewComments(owner, addr common.Address, modToken BalanceSource, modMinBalance *big.Int, gateToken BalanceSource, gateMinBalance *big.Int, ledger *state.Ledger, emitter events.Emitter) *Comments {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if gateMinBalance == nil {
		gateMinBalance = big.NewInt(0)
	}
	return &Comments{
		moderation:     newModeration(owner, modToken, modMinBalance),
		addr:           addr,
		ledger:         ledger,
		emitter:        emitter,
		nowFn:          func() int64 { return time.Now().Unix() },
		gateToken:      gateToken,
		gateMinBalance: new(big.Int).Set(gateMinBalance),
		price:          big.NewInt(0),
		comments:       make(map[common.Address][]*Message),
	}
}

// SetNowFunc overrides the clock, primarily for tests.
func (c *Comments) SetNowFunc(now func() int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowFn = now
}

// Address returns the engine's ledger address.
func (c *Comments) Address() common.Address { return c.addr }

// PostComment appends a comment under subject and returns its id.
func (c *Comments) PostComment(caller, subject common.Address, url string, value *big.Int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return 0, ErrPaused
	}
	if c.IsSuspended(caller) {
		return 0, ErrSuspended
	}
	if url == "" {
		return 0, ErrEmptyURL
	}
	if c.gateToken != nil && c.gateMinBalance.Sign() > 0 &&
		c.gateToken.BalanceOf(caller).Cmp(c.gateMinBalance) < 0 {
		return 0, ErrMinBalance
	}
	if c.price.Sign() > 0 {
		if value == nil || value.Cmp(c.price) < 0 {
			return 0, ErrPriceNotMet
		}
	}
	if value != nil && value.Sign() > 0 {
		if err := c.ledger.Transact(func(txn *state.Txn) error {
			return txn.Transfer(caller, c.addr, value)
		}); err != nil {
			return 0, err
		}
	}

	id := uint64(len(c.comments[subject]))
	c.comments[subject] = append(c.comments[subject], &Message{
		ID:        id,
		Author:    caller,
		URL:       url,
		CreatedAt: c.nowFn(),
	})
	c.emitter.Emit(newCommentEvent(EventTypeCommentPosted, c.addr, subject, id, caller))
	return id, nil
}

// DeleteComment soft-deletes a comment. The author or a mod may delete.
func (c *Comments) DeleteComment(caller, subject common.Address, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.commentLocked(subject, id)
	if err != nil {
		return err
	}
	if m.Author != caller && !c.IsMod(caller) {
		return ErrNotModOrAuthor
	}
	m.Deleted = true
	c.emitter.Emit(newCommentEvent(EventTypeCommentDeleted, c.addr, subject, id, m.Author))
	return nil
}

// RestoreComment reverses a soft delete. Mods only.
func (c *Comments) RestoreComment(caller, subject common.Address, id uint64) error {
	if err := c.requireMod(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.commentLocked(subject, id)
	if err != nil {
		return err
	}
	if !m.Deleted {
		return ErrNotDeleted
	}
	m.Deleted = false
	c.emitter.Emit(newCommentEvent(EventTypeCommentRestored, c.addr, subject, id, m.Author))
	return nil
}

func (c *Comments) commentLocked(subject common.Address, id uint64) (*Message, error) {
	records, ok := c.comments[subject]
	if !ok || id >= uint64(len(records)) {
		return nil, ErrMessageNotFound
	}
	return records[id], nil
}

// FetchComments pages through the comments under subject, oldest first.
// Unknown subjects yield an empty page.
func (c *Comments) FetchComments(subject common.Address, includeDeleted bool, offset, limit int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return page(c.comments[subject], includeDeleted, offset, limit)
}

// FetchLastComments returns the newest n comments under subject, oldest
// first.
func (c *Comments) FetchLastComments(subject common.Address, includeDeleted bool, n int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lastPage(c.comments[subject], includeDeleted, n)
}

// CommentCount reports how many comments subject has.
func (c *Comments) CommentCount(subject common.Address, includeDeleted bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return count(c.comments[subject], includeDeleted)
}

// Price returns the posting fee.
func (c *Comments) Price() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(big.Int).Set(c.price)
}

// SetPrice changes the posting fee. Owner only.
func (c *Comments) SetPrice(caller common.Address, price *big.Int) error {
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

// SetGate changes the posting gate token and threshold. A nil token or zero
// minimum opens posting to everyone. Owner only.
func (c *Comments) SetGate(caller common.Address, token BalanceSource, minBalance *big.Int) error {
	if err := c.acl.RequireOwner(caller); err != nil {
		return err
	}
	if minBalance == nil {
		minBalance = big.NewInt(0)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gateToken = token
	c.gateMinBalance = new(big.Int).Set(minBalance)
	return nil
}

// Paused reports whether posting is off.
func (c *Comments) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// TogglePaused flips the posting gate. Mods only.
func (c *Comments) TogglePaused(caller common.Address) error {
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
func (c *Comments) WithdrawRevenue(caller, to common.Address) error {
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
