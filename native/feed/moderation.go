package feed

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
)

// BalanceSource answers token balance queries, e.g. the moderator token or a
// posting gate token.
type BalanceSource interface {
	BalanceOf(addr common.Address) *big.Int
}

// moderation is the permission slice shared by the chat and comment engines:
// the owner plus anyone holding enough of the moderator token, and the
// suspension list they curate.
type moderation struct {
	mu            sync.RWMutex
	acl           *access.Control
	modToken      BalanceSource
	modMinBalance *big.Int
	suspended     map[common.Address]bool
}

func newModeration(owner common.Address, modToken BalanceSource, modMinBalance *big.Int) moderation {
	if modMinBalance == nil {
		modMinBalance = big.NewInt(0)
	}
	return moderation{
		acl:           access.NewControl(owner),
		modToken:      modToken,
		modMinBalance: new(big.Int).Set(modMinBalance),
		suspended:     make(map[common.Address]bool),
	}
}

// IsMod reports whether addr is the owner or holds enough moderator tokens.
func (g *moderation) IsMod(addr common.Address) bool {
	if g.acl.IsOwner(addr) {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.modToken == nil || g.modMinBalance.Sign() == 0 {
		return false
	}
	return g.modToken.BalanceOf(addr).Cmp(g.modMinBalance) >= 0
}

func (g *moderation) requireMod(caller common.Address) error {
	if !g.IsMod(caller) {
		return ErrNotModOrOwner
	}
	return nil
}

// IsSuspended reports whether addr is barred from posting.
func (g *moderation) IsSuspended(addr common.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.suspended[addr]
}

// Suspend bars a user from posting. Mods only.
func (g *moderation) Suspend(caller, user common.Address) error {
	if err := g.requireMod(caller); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.suspended[user] = true
	return nil
}

// Unsuspend lifts a posting ban. Mods only.
func (g *moderation) Unsuspend(caller, user common.Address) error {
	if err := g.requireMod(caller); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.suspended, user)
	return nil
}

// SetModToken changes the moderator token and threshold. Owner only.
func (g *moderation) SetModToken(caller common.Address, token BalanceSource, minBalance *big.Int) error {
	if err := g.acl.RequireOwner(caller); err != nil {
		return err
	}
	if minBalance == nil {
		minBalance = big.NewInt(0)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modToken = token
	g.modMinBalance = new(big.Int).Set(minBalance)
	return nil
}

// Access exposes the permission set for manager administration.
func (g *moderation) Access() *access.Control { return g.acl }
