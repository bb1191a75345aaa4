package state

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"namechain/core/types"
	nativecommon "namechain/native/common"
	"namechain/storage"
)

// Errors returned by ledger operations.
var (
	ErrInsufficientBalance = nativecommon.Wrap(nativecommon.ErrInsufficientPayment, "state: insufficient balance")
	ErrInvalidAmount       = nativecommon.Wrap(nativecommon.ErrInvalidInput, "state: amount must not be negative")
)

var accountPrefix = []byte("acct:")

// Ledger tracks native balances for every address, persisted as RLP-encoded
// accounts in a key-value store. A single mutex serializes transactions so
// module engines observe a global write order.
type Ledger struct {
	mu sync.Mutex
	db storage.Database
}

// NewLedger wraps the given database in a ledger.
func NewLedger(db storage.Database) *Ledger {
	return &Ledger{db: db}
}

// Transact runs fn against a staged view of the ledger. Writes are held in an
// overlay and flushed to the backing store only when fn returns nil; any error
// discards every staged write. This is the all-or-nothing contract every
// multi-transfer module operation relies on.
func (l *Ledger) Transact(fn func(*Txn) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := &Txn{ledger: l, staged: make(map[common.Address]*types.Account)}
	if err := fn(txn); err != nil {
		return err
	}
	return txn.commit()
}

// BalanceOf returns the current balance of addr. Missing accounts read as zero.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.loadAccount(addr)
	if err != nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(acct.Balance)
}

// Credit adds value to addr outside of any larger transaction. Used for
// genesis funding and test setup.
func (l *Ledger) Credit(addr common.Address, value *big.Int) error {
	return l.Transact(func(txn *Txn) error {
		return txn.Credit(addr, value)
	})
}

func (l *Ledger) loadAccount(addr common.Address) (*types.Account, error) {
	raw, err := l.db.Get(accountKey(addr))
	if err == storage.ErrNotFound {
		return types.NewAccount(), nil
	}
	if err != nil {
		return nil, err
	}
	acct := new(types.Account)
	if err := rlp.DecodeBytes(raw, acct); err != nil {
		return nil, fmt.Errorf("state: decode account %s: %w", addr.Hex(), err)
	}
	if acct.Balance == nil {
		acct.Balance = big.NewInt(0)
	}
	return acct, nil
}

func accountKey(addr common.Address) []byte {
	return append(append([]byte(nil), accountPrefix...), addr.Bytes()...)
}

// Txn is a staged view of the ledger inside Transact.
type Txn struct {
	ledger *Ledger
	staged map[common.Address]*types.Account
}

func (t *Txn) account(addr common.Address) (*types.Account, error) {
	if acct, ok := t.staged[addr]; ok {
		return acct, nil
	}
	acct, err := t.ledger.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	t.staged[addr] = acct
	return acct, nil
}

// BalanceOf returns the staged balance of addr.
func (t *Txn) BalanceOf(addr common.Address) (*big.Int, error) {
	acct, err := t.account(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acct.Balance), nil
}

// Credit adds value to addr.
func (t *Txn) Credit(addr common.Address, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	acct, err := t.account(addr)
	if err != nil {
		return err
	}
	acct.Balance = new(big.Int).Add(acct.Balance, value)
	return nil
}

// Debit removes value from addr, failing when the balance does not cover it.
func (t *Txn) Debit(addr common.Address, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	acct, err := t.account(addr)
	if err != nil {
		return err
	}
	if acct.Balance.Cmp(value) < 0 {
		return ErrInsufficientBalance
	}
	acct.Balance = new(big.Int).Sub(acct.Balance, value)
	return nil
}

// Transfer moves value from one address to another.
func (t *Txn) Transfer(from, to common.Address, value *big.Int) error {
	if err := t.Debit(from, value); err != nil {
		return err
	}
	return t.Credit(to, value)
}

func (t *Txn) commit() error {
	for addr, acct := range t.staged {
		raw, err := rlp.EncodeToBytes(acct)
		if err != nil {
			return fmt.Errorf("state: encode account %s: %w", addr.Hex(), err)
		}
		if err := t.ledger.db.Put(accountKey(addr), raw); err != nil {
			return err
		}
	}
	return nil
}
