package types

import "math/big"

// Account holds the native balance and nonce tracked by the ledger for a
// single address. Balance is never nil on a loaded account.
type Account struct {
	Nonce   uint64
	Balance *big.Int
}

// NewAccount returns an empty account with a zeroed balance.
func NewAccount() *Account {
	return &Account{Balance: big.NewInt(0)}
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := &Account{Nonce: a.Nonce, Balance: big.NewInt(0)}
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	return clone
}
