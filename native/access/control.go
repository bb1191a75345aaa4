package access

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "namechain/native/common"
)

// Errors returned by access checks.
var (
	ErrNotOwner          = nativecommon.Wrap(nativecommon.ErrUnauthorized, "access: caller is not the owner")
	ErrNotManagerOrOwner = nativecommon.Wrap(nativecommon.ErrUnauthorized, "access: caller is not a manager or owner")
	ErrZeroAddress       = nativecommon.Wrap(nativecommon.ErrInvalidInput, "access: zero address")
)

// Control implements the owner-plus-managers permission model shared by every
// module engine. The owner can do everything a manager can, plus administer
// the manager set and hand over ownership.
type Control struct {
	mu       sync.RWMutex
	owner    common.Address
	managers map[common.Address]bool
}

// NewControl returns a Control owned by the given address with no managers.
func NewControl(owner common.Address) *Control {
	return &Control{
		owner:    owner,
		managers: make(map[common.Address]bool),
	}
}

// Owner returns the current owner.
func (c *Control) Owner() common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

// Managers returns a snapshot of the manager set.
func (c *Control) Managers() []common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]common.Address, 0, len(c.managers))
	for addr := range c.managers {
		out = append(out, addr)
	}
	return out
}

// IsOwner reports whether addr is the owner.
func (c *Control) IsOwner(addr common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return addr == c.owner
}

// IsManager reports whether addr is in the manager set.
func (c *Control) IsManager(addr common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.managers[addr]
}

// IsAuthorized reports whether addr is the owner or a manager.
func (c *Control) IsAuthorized(addr common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return addr == c.owner || c.managers[addr]
}

// RequireOwner returns ErrNotOwner unless caller is the owner.
func (c *Control) RequireOwner(caller common.Address) error {
	if !c.IsOwner(caller) {
		return ErrNotOwner
	}
	return nil
}

// RequireAuthorized returns ErrNotManagerOrOwner unless caller is the owner or
// a manager.
func (c *Control) RequireAuthorized(caller common.Address) error {
	if !c.IsAuthorized(caller) {
		return ErrNotManagerOrOwner
	}
	return nil
}

// AddManager grants addr the manager role. Owner only.
func (c *Control) AddManager(caller, addr common.Address) error {
	if err := c.RequireOwner(caller); err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.managers[addr] = true
	return nil
}

// RemoveManager revokes the manager role from addr. Owner only.
func (c *Control) RemoveManager(caller, addr common.Address) error {
	if err := c.RequireOwner(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.managers, addr)
	return nil
}

// TransferOwnership hands ownership to newOwner. Owner only.
func (c *Control) TransferOwnership(caller, newOwner common.Address) error {
	if err := c.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrZeroAddress
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = newOwner
	return nil
}
