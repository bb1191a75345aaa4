package names

import (
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/events"
	"namechain/core/state"
	"namechain/native/access"
)

const (
	defaultNameMaxLength = 140
	defaultReferralFee   = 1000 // basis points
	maxReferralFee       = 2000
	feeDenominator       = 10000
)

// Domain is one registered name inside a top-level registry.
type Domain struct {
	Name      string
	TokenID   uint64
	Holder    common.Address
	Data      string
	CreatedAt int64
}

func (d *Domain) clone() *Domain {
	c := *d
	return &c
}

// RegistryConfig carries the launch parameters for a registry.
type RegistryConfig struct {
	TLD           string
	Symbol        string
	Owner         common.Address
	Address       common.Address
	Price         *big.Int
	BuyingEnabled bool
	Royalty       *big.Int // basis points paid to RoyaltyAddress on every sale
	RoyaltyAddr   common.Address
	Ledger        *state.Ledger
	Emitter       events.Emitter
}

// Registry issues names under a single top-level name. Names are unique after
// lowercasing, get sequential token ids starting at 1 and the first name a
// holder acquires becomes their default name under this top-level name.
type Registry struct {
	mu      sync.RWMutex
	acl     *access.Control
	addr    common.Address
	tld     string
	symbol  string
	ledger  *state.Ledger
	emitter events.Emitter
	nowFn   func() int64

	price                 *big.Int
	buyingEnabled         bool
	buyingDisabledForever bool
	referralFee           *big.Int
	royalty               *big.Int
	royaltyAddr           common.Address
	royaltyUpdater        common.Address
	nameMaxLength         int
	minter                common.Address
	metadataFrozen        bool
	metadata              MetadataRenderer

	nextID   uint64
	domains  map[string]*Domain
	idsNames map[uint64]string
	defaults map[common.Address]string
	balances map[common.Address]int
}

// NewRegistry returns a registry for cfg.TLD.
func NewRegistry(cfg RegistryConfig) *Registry {
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	royalty := big.NewInt(0)
	if cfg.Royalty != nil {
		royalty = new(big.Int).Set(cfg.Royalty)
	}
	price := big.NewInt(0)
	if cfg.Price != nil {
		price = new(big.Int).Set(cfg.Price)
	}
	return &Registry{
		acl:            access.NewControl(cfg.Owner),
		addr:           cfg.Address,
		tld:            strings.ToLower(cfg.TLD),
		symbol:         cfg.Symbol,
		ledger:         cfg.Ledger,
		emitter:        emitter,
		nowFn:          func() int64 { return time.Now().Unix() },
		price:          price,
		buyingEnabled:  cfg.BuyingEnabled,
		referralFee:    big.NewInt(defaultReferralFee),
		royalty:        royalty,
		royaltyAddr:    cfg.RoyaltyAddr,
		royaltyUpdater: cfg.RoyaltyAddr,
		nameMaxLength:  defaultNameMaxLength,
		metadata:       DefaultMetadata,
		nextID:         1,
		domains:        make(map[string]*Domain),
		idsNames:       make(map[uint64]string),
		defaults:       make(map[common.Address]string),
		balances:       make(map[common.Address]int),
	}
}

// SetNowFunc overrides the clock, primarily for tests.
func (r *Registry) SetNowFunc(now func() int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nowFn = now
}

// Address returns the registry's ledger address.
func (r *Registry) Address() common.Address { return r.addr }

// TLD returns the top-level name this registry issues under.
func (r *Registry) TLD() string { return r.tld }

// Symbol returns the registry's ticker symbol.
func (r *Registry) Symbol() string { return r.symbol }

// Access exposes the permission set for manager administration.
func (r *Registry) Access() *access.Control { return r.acl }

// Mint registers name for holder. Unprivileged callers pay at least the
// current price; the value splits into an optional referral cut, the royalty
// cut and the remainder for the registry owner, all in one ledger transaction.
// The registry owner and the configured minter principal bypass both the
// buying gate and the payment.
func (r *Registry) Mint(caller common.Address, name string, holder, referrer common.Address, value *big.Int) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.buyingDisabledForever {
		return 0, ErrMintingDisabledForever
	}
	privileged := caller == r.acl.Owner() || (r.minter != (common.Address{}) && caller == r.minter)
	if !r.buyingEnabled && !privileged {
		return 0, ErrDomainBuyingDisabled
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if err := validateDomainName(name, r.nameMaxLength); err != nil {
		return 0, err
	}
	if _, taken := r.domains[name]; taken {
		return 0, ErrNameTaken
	}

	if !privileged {
		if value == nil || value.Cmp(r.price) < 0 {
			return 0, ErrValueBelowPrice
		}
		if err := r.settlePayment(caller, referrer, value); err != nil {
			return 0, err
		}
	}

	id := r.nextID
	r.nextID++
	r.domains[name] = &Domain{
		Name:      name,
		TokenID:   id,
		Holder:    holder,
		CreatedAt: r.nowFn(),
	}
	r.idsNames[id] = name
	if r.balances[holder] == 0 {
		r.defaults[holder] = name
	}
	r.balances[holder]++

	r.emitter.Emit(newDomainCreatedEvent(r.addr, name, r.tld, id, holder))
	return id, nil
}

// CanMint reports whether name could currently be minted by a privileged
// caller, without mutating anything.
func (r *Registry) CanMint(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.buyingDisabledForever {
		return ErrMintingDisabledForever
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if err := validateDomainName(name, r.nameMaxLength); err != nil {
		return err
	}
	if _, taken := r.domains[name]; taken {
		return ErrNameTaken
	}
	return nil
}

// settlePayment routes a mint payment: referral cut to the referrer, royalty
// cut to the royalty address, remainder to the registry owner.
func (r *Registry) settlePayment(payer, referrer common.Address, value *big.Int) error {
	owner := r.acl.Owner()
	return r.ledger.Transact(func(txn *state.Txn) error {
		rest := new(big.Int).Set(value)
		if referrer != (common.Address{}) && r.referralFee.Sign() > 0 {
			referral := new(big.Int).Mul(value, r.referralFee)
			referral.Quo(referral, big.NewInt(feeDenominator))
			if referral.Sign() > 0 {
				if err := txn.Transfer(payer, referrer, referral); err != nil {
					return err
				}
				rest.Sub(rest, referral)
			}
		}
		if r.royalty.Sign() > 0 && r.royaltyAddr != (common.Address{}) {
			royalty := new(big.Int).Mul(value, r.royalty)
			royalty.Quo(royalty, big.NewInt(feeDenominator))
			if royalty.Sign() > 0 {
				if err := txn.Transfer(payer, r.royaltyAddr, royalty); err != nil {
					return err
				}
				rest.Sub(rest, royalty)
			}
		}
		return txn.Transfer(payer, owner, rest)
	})
}

// TransferDomain moves an owned name to another holder. When the transferred
// name was the sender's default it is cleared; a receiver without a default
// adopts the incoming name.
func (r *Registry) TransferDomain(caller common.Address, name string, to common.Address) error {
	if to == (common.Address{}) {
		return access.ErrZeroAddress
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(strings.TrimSpace(name))
	d, ok := r.domains[name]
	if !ok {
		return ErrDomainNotFound
	}
	if d.Holder != caller {
		return ErrNotDomainHolder
	}

	d.Holder = to
	r.balances[caller]--
	if r.defaults[caller] == name {
		delete(r.defaults, caller)
	}
	if r.balances[to] == 0 || r.defaults[to] == "" {
		r.defaults[to] = name
	}
	r.balances[to]++

	r.emitter.Emit(newDomainTransferredEvent(r.addr, name, r.tld, caller, to))
	return nil
}

// EditDefaultDomain points the caller's default name at another name they
// already hold.
func (r *Registry) EditDefaultDomain(caller common.Address, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(strings.TrimSpace(name))
	d, ok := r.domains[name]
	if !ok {
		return ErrDomainNotFound
	}
	if d.Holder != caller {
		return ErrNotDomainHolder
	}
	r.defaults[caller] = name
	r.emitter.Emit(newDefaultDomainChangedEvent(r.addr, caller, name, r.tld))
	return nil
}

// EditData attaches freeform data to an owned name.
func (r *Registry) EditData(caller common.Address, name, data string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(strings.TrimSpace(name))
	d, ok := r.domains[name]
	if !ok {
		return ErrDomainNotFound
	}
	if d.Holder != caller {
		return ErrNotDomainHolder
	}
	d.Data = data
	return nil
}

// HolderOf returns the holder of name, or the zero address when unregistered.
func (r *Registry) HolderOf(name string) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.domains[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d.Holder
	}
	return common.Address{}
}

// DomainByName returns a copy of the record for name.
func (r *Registry) DomainByName(name string) (*Domain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.domains[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d.clone(), nil
	}
	return nil, ErrDomainNotFound
}

// DomainByID returns a copy of the record for tokenID.
func (r *Registry) DomainByID(tokenID uint64) (*Domain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.idsNames[tokenID]
	if !ok {
		return nil, ErrDomainNotFound
	}
	return r.domains[name].clone(), nil
}

// TokenURI renders the metadata for tokenID.
func (r *Registry) TokenURI(tokenID uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.idsNames[tokenID]
	if !ok {
		return "", ErrDomainNotFound
	}
	return r.metadata(name, r.tld, tokenID), nil
}

// DefaultDomain returns holder's default name under this top-level name.
func (r *Registry) DefaultDomain(holder common.Address) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[holder]
}

// BalanceOf returns how many names holder owns here.
func (r *Registry) BalanceOf(holder common.Address) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[holder]
}

// TotalSupply returns how many names have been issued.
func (r *Registry) TotalSupply() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID - 1
}

// Price returns the current mint price.
func (r *Registry) Price() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(big.Int).Set(r.price)
}

// BuyingEnabled reports whether open minting is on.
func (r *Registry) BuyingEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buyingEnabled
}

// ReferralFee returns the referral cut in basis points.
func (r *Registry) ReferralFee() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(big.Int).Set(r.referralFee)
}

// Royalty returns the royalty cut in basis points.
func (r *Registry) Royalty() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(big.Int).Set(r.royalty)
}

// Minter returns the privileged minter principal.
func (r *Registry) Minter() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.minter
}

// ChangePrice sets the mint price. Owner only.
func (r *Registry) ChangePrice(caller common.Address, price *big.Int) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	if price == nil || price.Sign() < 0 {
		return ErrInvalidPrice
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.price = new(big.Int).Set(price)
	return nil
}

// ToggleBuying flips the open-minting gate. Owner only.
func (r *Registry) ToggleBuying(caller common.Address) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buyingEnabled = !r.buyingEnabled
	return nil
}

// DisableBuyingForever permanently shuts down minting. One-way. Owner only.
func (r *Registry) DisableBuyingForever(caller common.Address) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buyingEnabled = false
	r.buyingDisabledForever = true
	return nil
}

// ChangeMinter sets the privileged minter principal. Owner only.
func (r *Registry) ChangeMinter(caller, minter common.Address) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minter = minter
	return nil
}

// ChangeReferralFee sets the referral cut in basis points, capped at 20%.
// Owner only.
func (r *Registry) ChangeReferralFee(caller common.Address, fee *big.Int) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	if fee == nil || fee.Sign() < 0 || fee.Cmp(big.NewInt(maxReferralFee)) > 0 {
		return ErrReferralFeeTooHigh
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referralFee = new(big.Int).Set(fee)
	return nil
}

// ChangeRoyalty sets the royalty cut in basis points. Only the royalty fee
// updater may call this.
func (r *Registry) ChangeRoyalty(caller common.Address, royalty *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.royaltyUpdater {
		return ErrNotRoyaltyFeeUpdater
	}
	if royalty == nil || royalty.Sign() < 0 || royalty.Cmp(big.NewInt(feeDenominator)) > 0 {
		return ErrRoyaltyTooHigh
	}
	r.royalty = new(big.Int).Set(royalty)
	return nil
}

// ChangeRoyaltyFeeUpdater hands the royalty updater role over.
func (r *Registry) ChangeRoyaltyFeeUpdater(caller, updater common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.royaltyUpdater {
		return ErrNotRoyaltyFeeUpdater
	}
	r.royaltyUpdater = updater
	return nil
}

// ChangeNameMaxLength adjusts the per-name length cap. Owner only.
func (r *Registry) ChangeNameMaxLength(caller common.Address, max int) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	if max < 1 {
		return ErrInvalidLength
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nameMaxLength = max
	return nil
}

// ChangeMetadataRenderer swaps the metadata renderer. Blocked once metadata is
// frozen. Owner only.
func (r *Registry) ChangeMetadataRenderer(caller common.Address, renderer MetadataRenderer) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metadataFrozen {
		return ErrMetadataFrozen
	}
	r.metadata = renderer
	return nil
}

// FreezeMetadata locks the metadata renderer forever. One-way. Owner only.
func (r *Registry) FreezeMetadata(caller common.Address) error {
	if err := r.acl.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadataFrozen = true
	return nil
}

func validateDomainName(name string, maxLength int) error {
	if name == "" {
		return ErrInvalidName
	}
	if len(name) > maxLength {
		return ErrNameTooLong
	}
	if strings.ContainsAny(name, ". %") {
		return ErrInvalidName
	}
	return nil
}
