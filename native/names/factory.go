package names

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/events"
	"namechain/core/state"
	"namechain/native/access"
)

const defaultTldMaxLength = 40

// Factory launches top-level name registries. Every launched name is pushed
// into the shared forbidden set so no other factory can reuse it.
type Factory struct {
	mu        sync.RWMutex
	acl       *access.Control
	addr      common.Address
	ledger    *state.Ledger
	emitter   events.Emitter
	forbidden *ForbiddenNames

	price         *big.Int
	buyingEnabled bool
	nameMaxLength int
	royalty       *big.Int

	tldNames []string
	tlds     map[string]*Registry
	nonce    uint64
}

// NewFactory returns a factory at addr. price is the cost of launching a
// top-level name when public buying is enabled.
func NewFactory(owner, addr common.Address, price *big.Int, forbidden *ForbiddenNames, ledger *state.Ledger, emitter events.Emitter) *Factory {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if price == nil {
		price = big.NewInt(0)
	}
	return &Factory{
		acl:           access.NewControl(owner),
		addr:          addr,
		ledger:        ledger,
		emitter:       emitter,
		forbidden:     forbidden,
		price:         new(big.Int).Set(price),
		nameMaxLength: defaultTldMaxLength,
		royalty:       big.NewInt(0),
		tlds:          make(map[string]*Registry),
	}
}

// Address returns the factory's ledger address.
func (f *Factory) Address() common.Address { return f.addr }

// Access exposes the permission set for manager administration.
func (f *Factory) Access() *access.Control { return f.acl }

// CreateTld launches a registry for name, paid for by the caller. Public
// launches require buying to be enabled and value to cover the price; the
// payment goes to the factory owner.
func (f *Factory) CreateTld(caller common.Address, name, symbol string, tldOwner common.Address, domainPrice *big.Int, buyingEnabled bool, value *big.Int) (*Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.buyingEnabled {
		return nil, ErrBuyingDisabled
	}
	if err := f.validateTldNameLocked(name); err != nil {
		return nil, err
	}
	if value == nil || value.Cmp(f.price) < 0 {
		return nil, ErrValueBelowPrice
	}
	if err := f.ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(caller, f.acl.Owner(), value)
	}); err != nil {
		return nil, err
	}
	return f.launchTldLocked(name, symbol, tldOwner, domainPrice, buyingEnabled)
}

// OwnerCreateTld launches a registry bypassing the buying gate and payment.
// Owner only.
func (f *Factory) OwnerCreateTld(caller common.Address, name, symbol string, tldOwner common.Address, domainPrice *big.Int, buyingEnabled bool) (*Registry, error) {
	if err := f.acl.RequireOwner(caller); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.validateTldNameLocked(name); err != nil {
		return nil, err
	}
	return f.launchTldLocked(name, symbol, tldOwner, domainPrice, buyingEnabled)
}

// validateTldNameLocked checks a candidate top-level name, in order: too
// short, too long, dot count, leading dot, forbidden.
func (f *Factory) validateTldNameLocked(name string) error {
	name = strings.ToLower(name)
	if len(name) < 2 {
		return ErrTldTooShort
	}
	if len(name) > f.nameMaxLength {
		return ErrTldTooLong
	}
	if strings.Count(name, ".") != 1 {
		return ErrTldInvalidDotCount
	}
	if name[0] != '.' {
		return ErrTldMustStartWithDot
	}
	if f.forbidden.Forbidden(name) {
		return ErrTldForbidden
	}
	return nil
}

func (f *Factory) launchTldLocked(name, symbol string, tldOwner common.Address, domainPrice *big.Int, buyingEnabled bool) (*Registry, error) {
	name = strings.ToLower(name)
	if err := f.forbidden.FactoryAdd(f.addr, name); err != nil {
		return nil, err
	}
	addr := state.DeriveAddress(f.addr, f.nonce)
	f.nonce++

	registry := NewRegistry(RegistryConfig{
		TLD:           name,
		Symbol:        symbol,
		Owner:         tldOwner,
		Address:       addr,
		Price:         domainPrice,
		BuyingEnabled: buyingEnabled,
		Royalty:       f.royalty,
		RoyaltyAddr:   f.acl.Owner(),
		Ledger:        f.ledger,
		Emitter:       f.emitter,
	})
	f.tlds[name] = registry
	f.tldNames = append(f.tldNames, name)

	f.emitter.Emit(newTldCreatedEvent(f.addr, name, addr, tldOwner))
	return registry, nil
}

// Registry returns the registry for a top-level name, or nil.
func (f *Factory) Registry(name string) *Registry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tlds[strings.ToLower(name)]
}

// TldNames returns the launched top-level names in order.
func (f *Factory) TldNames() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.tldNames...)
}

// TldAddress returns the address of the registry for name, or the zero
// address.
func (f *Factory) TldAddress(name string) common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if r, ok := f.tlds[strings.ToLower(name)]; ok {
		return r.Address()
	}
	return common.Address{}
}

// Price returns the current launch price.
func (f *Factory) Price() *big.Int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return new(big.Int).Set(f.price)
}

// BuyingEnabled reports whether public launches are on.
func (f *Factory) BuyingEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.buyingEnabled
}

// ToggleBuying flips the public-launch gate. Owner only.
func (f *Factory) ToggleBuying(caller common.Address) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buyingEnabled = !f.buyingEnabled
	return nil
}

// ChangePrice sets the launch price. Owner only.
func (f *Factory) ChangePrice(caller common.Address, price *big.Int) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	if price == nil || price.Sign() < 0 {
		return ErrInvalidPrice
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price = new(big.Int).Set(price)
	return nil
}

// ChangeNameMaxLength adjusts the top-level name length cap. Owner only.
func (f *Factory) ChangeNameMaxLength(caller common.Address, max int) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	if max < 2 {
		return ErrInvalidLength
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameMaxLength = max
	return nil
}

// ChangeRoyalty sets the royalty, in basis points, applied to registries
// launched from now on. Owner only.
func (f *Factory) ChangeRoyalty(caller common.Address, royalty *big.Int) error {
	if err := f.acl.RequireOwner(caller); err != nil {
		return err
	}
	if royalty == nil || royalty.Sign() < 0 || royalty.Cmp(big.NewInt(feeDenominator)) > 0 {
		return ErrRoyaltyTooHigh
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.royalty = new(big.Int).Set(royalty)
	return nil
}
