package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "namechain/native/common"
)

// Errors returned by token operations.
var (
	ErrNotOwner            = nativecommon.Wrap(nativecommon.ErrUnauthorized, "token: caller is not the owner")
	ErrInsufficientBalance = nativecommon.Wrap(nativecommon.ErrInsufficientPayment, "token: insufficient balance")
	ErrInvalidAmount       = nativecommon.Wrap(nativecommon.ErrInvalidInput, "token: amount must be positive")
	ErrZeroAddress         = nativecommon.Wrap(nativecommon.ErrInvalidInput, "token: zero address")
)

// Token is a minimal mintable balance token. It backs the external balance
// collaborators in the platform: the moderator token for feeds, the gate token
// for comment sections, the deposit asset for the rewards vault and the
// reward asset the claim engines mint from. Besides the owner, registered
// minter principals may mint.
type Token struct {
	mu          sync.RWMutex
	name        string
	symbol      string
	owner       common.Address
	minters     map[common.Address]bool
	balances    map[common.Address]*big.Int
	totalSupply *big.Int
}

// New returns a token with zero supply owned by owner.
func New(name, symbol string, owner common.Address) *Token {
	return &Token{
		name:        name,
		symbol:      symbol,
		owner:       owner,
		minters:     make(map[common.Address]bool),
		balances:    make(map[common.Address]*big.Int),
		totalSupply: big.NewInt(0),
	}
}

func (t *Token) Name() string   { return t.name }
func (t *Token) Symbol() string { return t.symbol }

// TotalSupply returns the total minted supply.
func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.totalSupply)
}

// BalanceOf returns the balance of addr. Missing accounts read as zero.
func (t *Token) BalanceOf(addr common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if bal, ok := t.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Mint creates amount new tokens for to. Owner or registered minter only.
func (t *Token) Mint(caller, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner && !t.minters[caller] {
		return ErrNotOwner
	}
	t.credit(to, amount)
	t.totalSupply = new(big.Int).Add(t.totalSupply, amount)
	return nil
}

// AddMinter grants minter the right to mint. Owner only.
func (t *Token) AddMinter(caller, minter common.Address) error {
	if minter == (common.Address{}) {
		return ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return ErrNotOwner
	}
	t.minters[minter] = true
	return nil
}

// RemoveMinter revokes the minting right from minter. Owner only.
func (t *Token) RemoveMinter(caller, minter common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return ErrNotOwner
	}
	delete(t.minters, minter)
	return nil
}

// IsMinter reports whether addr holds the minting right.
func (t *Token) IsMinter(addr common.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.minters[addr]
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	bal, ok := t.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	t.balances[from] = new(big.Int).Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *Token) credit(addr common.Address, amount *big.Int) {
	if bal, ok := t.balances[addr]; ok {
		t.balances[addr] = new(big.Int).Add(bal, amount)
		return
	}
	t.balances[addr] = new(big.Int).Set(amount)
}
