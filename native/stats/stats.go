package stats

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
	nativecommon "namechain/native/common"
)

// Errors returned by the stats ledger.
var (
	ErrNotWriter     = nativecommon.Wrap(nativecommon.ErrUnauthorized, "stats: not a stats writer")
	ErrInvalidAmount = nativecommon.Wrap(nativecommon.ErrInvalidInput, "stats: amount must be positive")
)

// Stats accumulates the native value each user has spent on the platform.
// Only the single registered writer principal may record spend; everything
// else is read-only.
type Stats struct {
	mu       sync.RWMutex
	acl      *access.Control
	writer   common.Address
	weiSpent map[common.Address]*big.Int
	total    *big.Int
}

// New returns an empty stats ledger owned by owner with no writer registered.
func New(owner common.Address) *Stats {
	return &Stats{
		acl:      access.NewControl(owner),
		weiSpent: make(map[common.Address]*big.Int),
		total:    big.NewInt(0),
	}
}

// Access exposes the permission set for manager administration.
func (s *Stats) Access() *access.Control { return s.acl }

// Writer returns the registered writer principal.
func (s *Stats) Writer() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writer
}

// SetWriter registers the single writer principal. Owner or manager only.
func (s *Stats) SetWriter(caller, writer common.Address) error {
	if err := s.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = writer
	return nil
}

// AddWeiSpent records amount spent by user. The caller must be the registered
// writer principal.
func (s *Stats) AddWeiSpent(caller, user common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.writer || caller == (common.Address{}) {
		return ErrNotWriter
	}
	if spent, ok := s.weiSpent[user]; ok {
		s.weiSpent[user] = new(big.Int).Add(spent, amount)
	} else {
		s.weiSpent[user] = new(big.Int).Set(amount)
	}
	s.total = new(big.Int).Add(s.total, amount)
	return nil
}

// WeiSpent returns the total recorded spend of user.
func (s *Stats) WeiSpent(user common.Address) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if spent, ok := s.weiSpent[user]; ok {
		return new(big.Int).Set(spent)
	}
	return big.NewInt(0)
}

// TotalWeiSpent returns the platform-wide recorded spend.
func (s *Stats) TotalWeiSpent() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.total)
}
