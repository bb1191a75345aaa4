package names

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
)

// Resolver is the read-side aggregation over every registered factory. It
// never errors on lookups; unknown names resolve to zero values. Deprecated
// registries are excluded from every answer.
type Resolver struct {
	mu             sync.RWMutex
	acl            *access.Control
	factories      []*Factory
	deprecated     map[common.Address]bool
	customDefaults map[common.Address]string
}

// NewResolver returns an empty resolver owned by owner.
func NewResolver(owner common.Address) *Resolver {
	return &Resolver{
		acl:            access.NewControl(owner),
		deprecated:     make(map[common.Address]bool),
		customDefaults: make(map[common.Address]string),
	}
}

// Access exposes the permission set for manager administration.
func (r *Resolver) Access() *access.Control { return r.acl }

// AddFactory registers a factory for resolution. Owner only.
func (r *Resolver) AddFactory(caller common.Address, f *Factory) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = append(r.factories, f)
	return nil
}

// AddDeprecatedTldAddress excludes a registry address from every lookup.
// Owner only.
func (r *Resolver) AddDeprecatedTldAddress(caller, registry common.Address) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deprecated[registry] = true
	return nil
}

// RemoveDeprecatedTldAddress reinstates a registry address. Owner only.
func (r *Resolver) RemoveDeprecatedTldAddress(caller, registry common.Address) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deprecated, registry)
	return nil
}

// registry walks the factories for the named top-level registry, skipping
// deprecated instances.
func (r *Resolver) registry(tld string) *Registry {
	tld = strings.ToLower(tld)
	for _, f := range r.factories {
		if reg := f.Registry(tld); reg != nil && !r.deprecated[reg.Address()] {
			return reg
		}
	}
	return nil
}

// TldAddress returns the registry address for a top-level name, or the zero
// address.
func (r *Resolver) TldAddress(tld string) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg := r.registry(tld); reg != nil {
		return reg.Address()
	}
	return common.Address{}
}

// TldFactoryAddress returns the factory that launched a top-level name, or
// the zero address.
func (r *Resolver) TldFactoryAddress(tld string) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tld = strings.ToLower(tld)
	for _, f := range r.factories {
		if reg := f.Registry(tld); reg != nil && !r.deprecated[reg.Address()] {
			return f.Address()
		}
	}
	return common.Address{}
}

// Tlds returns every live top-level name with its registry address.
func (r *Resolver) Tlds() map[string]common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]common.Address)
	for _, f := range r.factories {
		for _, tld := range f.TldNames() {
			reg := f.Registry(tld)
			if reg == nil || r.deprecated[reg.Address()] {
				continue
			}
			if _, ok := out[tld]; !ok {
				out[tld] = reg.Address()
			}
		}
	}
	return out
}

// DomainHolder returns the holder of name under tld, or the zero address.
func (r *Resolver) DomainHolder(name, tld string) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg := r.registry(tld); reg != nil {
		return reg.HolderOf(name)
	}
	return common.Address{}
}

// DomainData returns the freeform data of name under tld, or "".
func (r *Resolver) DomainData(name, tld string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg := r.registry(tld); reg != nil {
		if d, err := reg.DomainByName(name); err == nil {
			return d.Data
		}
	}
	return ""
}

// DomainTokenURI returns the rendered metadata of name under tld, or "".
func (r *Resolver) DomainTokenURI(name, tld string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg := r.registry(tld); reg != nil {
		if d, err := reg.DomainByName(name); err == nil {
			if uri, err := reg.TokenURI(d.TokenID); err == nil {
				return uri
			}
		}
	}
	return ""
}

// DefaultDomain returns holder's default name under tld, without the
// top-level suffix, or "".
func (r *Resolver) DefaultDomain(holder common.Address, tld string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg := r.registry(tld); reg != nil {
		return reg.DefaultDomain(holder)
	}
	return ""
}

// DefaultDomains returns holder's full default names across every live
// top-level registry, in factory registration order.
func (r *Resolver) DefaultDomains(holder common.Address) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, f := range r.factories {
		for _, tld := range f.TldNames() {
			reg := f.Registry(tld)
			if reg == nil || r.deprecated[reg.Address()] {
				continue
			}
			if name := reg.DefaultDomain(holder); name != "" {
				out = append(out, name+tld)
			}
		}
	}
	return out
}

// FirstDefaultDomain returns holder's preferred full name: the custom default
// when set and still held, otherwise the first default found.
func (r *Resolver) FirstDefaultDomain(holder common.Address) string {
	r.mu.RLock()
	custom := r.customDefaults[holder]
	r.mu.RUnlock()

	if custom != "" {
		name, tld, ok := splitDomain(custom)
		if ok && r.DomainHolder(name, tld) == holder {
			return custom
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.factories {
		for _, tld := range f.TldNames() {
			reg := f.Registry(tld)
			if reg == nil || r.deprecated[reg.Address()] {
				continue
			}
			if name := reg.DefaultDomain(holder); name != "" {
				return name + tld
			}
		}
	}
	return ""
}

// SetCustomDefaultDomain pins the caller's preferred full name, e.g.
// "alice.web3". The caller must hold the name; an empty string clears the
// override.
func (r *Resolver) SetCustomDefaultDomain(caller common.Address, name, tld string) error {
	if name == "" && tld == "" {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.customDefaults, caller)
		return nil
	}
	name = strings.ToLower(strings.TrimSpace(name))
	tld = strings.ToLower(strings.TrimSpace(tld))
	if r.DomainHolder(name, tld) != caller {
		return ErrNotDomainHolder
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customDefaults[caller] = name + tld
	return nil
}

// splitDomain splits "alice.web3" into "alice" and ".web3".
func splitDomain(full string) (name, tld string, ok bool) {
	i := strings.Index(full, ".")
	if i <= 0 || i == len(full)-1 {
		return "", "", false
	}
	return full[:i], full[i:], true
}
