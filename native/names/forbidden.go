package names

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
)

// ForbiddenNames is the shared blocklist of top-level names. The owner curates
// it directly; registered factories add every name they launch so no two
// factories can issue the same top-level name.
type ForbiddenNames struct {
	mu        sync.RWMutex
	acl       *access.Control
	factories map[common.Address]bool
	names     map[string]bool
}

// NewForbiddenNames returns a blocklist seeded with a handful of well-known
// top-level names.
func NewForbiddenNames(owner common.Address) *ForbiddenNames {
	f := &ForbiddenNames{
		acl:       access.NewControl(owner),
		factories: make(map[common.Address]bool),
		names:     make(map[string]bool),
	}
	for _, name := range []string{".com", ".org", ".net", ".eth"} {
		f.names[name] = true
	}
	return f
}

// Access exposes the permission set for manager administration.
func (f *ForbiddenNames) Access() *access.Control { return f.acl }

// Forbidden reports whether name is blocked.
func (f *ForbiddenNames) Forbidden(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.names[strings.ToLower(name)]
}

// OwnerAdd blocks a name. Owner only.
func (f *ForbiddenNames) OwnerAdd(caller common.Address, name string) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[strings.ToLower(name)] = true
	return nil
}

// OwnerRemove unblocks a name. Owner only.
func (f *ForbiddenNames) OwnerRemove(caller common.Address, name string) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.names, strings.ToLower(name))
	return nil
}

// AddFactory grants a factory principal the right to block names. Owner only.
func (f *ForbiddenNames) AddFactory(caller, factory common.Address) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factories[factory] = true
	return nil
}

// RemoveFactory revokes a factory principal. Owner only.
func (f *ForbiddenNames) RemoveFactory(caller, factory common.Address) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.factories, factory)
	return nil
}

// IsFactory reports whether addr is a registered factory principal.
func (f *ForbiddenNames) IsFactory(addr common.Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.factories[addr]
}

// FactoryAdd blocks a name on behalf of a registered factory.
func (f *ForbiddenNames) FactoryAdd(factory common.Address, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.factories[factory] {
		return ErrNotFactory
	}
	f.names[strings.ToLower(name)] = true
	return nil
}
