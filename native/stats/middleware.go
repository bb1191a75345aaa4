package stats

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
	nativecommon "namechain/native/common"
)

// ErrNotWriterContract rejects spend reports from principals outside the
// middleware writer set.
var ErrNotWriterContract = nativecommon.Wrap(nativecommon.ErrUnauthorized, "stats: not a writer contract")

// Backend is the slice of the stats ledger the middleware forwards to.
type Backend interface {
	AddWeiSpent(caller, user common.Address, amount *big.Int) error
	WeiSpent(user common.Address) *big.Int
	TotalWeiSpent() *big.Int
}

// Middleware fans many writer principals into the single-writer stats ledger.
// It holds its own address identity, which is what gets registered as the
// stats writer; minters and other spend sources register here instead.
type Middleware struct {
	mu      sync.RWMutex
	acl     *access.Control
	addr    common.Address
	backend Backend
	writers map[common.Address]bool
}

// NewMiddleware returns a middleware at addr forwarding to backend.
func NewMiddleware(owner, addr common.Address, backend Backend) *Middleware {
	return &Middleware{
		acl:     access.NewControl(owner),
		addr:    addr,
		backend: backend,
		writers: make(map[common.Address]bool),
	}
}

// Address returns the middleware's principal identity.
func (m *Middleware) Address() common.Address { return m.addr }

// Access exposes the permission set for manager administration.
func (m *Middleware) Access() *access.Control { return m.acl }

// IsWriter reports whether addr may report spend through this middleware.
func (m *Middleware) IsWriter(addr common.Address) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writers[addr]
}

// AddWriter registers a writer principal. Owner or manager only.
func (m *Middleware) AddWriter(caller, writer common.Address) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writers[writer] = true
	return nil
}

// AddWriterByWriter lets an existing writer register another one. Factories
// use this to enroll the instances they launch.
func (m *Middleware) AddWriterByWriter(caller, writer common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.writers[caller] {
		return ErrNotWriterContract
	}
	m.writers[writer] = true
	return nil
}

// RemoveWriter drops a writer principal. Owner or manager only.
func (m *Middleware) RemoveWriter(caller, writer common.Address) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.writers, writer)
	return nil
}

// AddWeiSpent forwards a spend report to the backend when the caller is a
// registered writer.
func (m *Middleware) AddWeiSpent(caller, user common.Address, amount *big.Int) error {
	m.mu.RLock()
	allowed := m.writers[caller]
	m.mu.RUnlock()
	if !allowed {
		return ErrNotWriterContract
	}
	return m.backend.AddWeiSpent(m.addr, user, amount)
}

// WeiSpent proxies the per-user read.
func (m *Middleware) WeiSpent(user common.Address) *big.Int {
	return m.backend.WeiSpent(user)
}

// TotalWeiSpent proxies the platform-wide read.
func (m *Middleware) TotalWeiSpent() *big.Int {
	return m.backend.TotalWeiSpent()
}
