package names

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/state"
	"namechain/native/access"
)

// StatsWriter is the spend-reporting hook the minter pushes sale volume into.
type StatsWriter interface {
	AddWeiSpent(caller, user common.Address, amount *big.Int) error
}

// Minter is the public sales front for a registry, with prices tiered by name
// length. It starts paused. Overpayment is accepted and forwarded to the
// revenue address in full; only the referral cut is carved out of the value.
type Minter struct {
	mu       sync.RWMutex
	acl      *access.Control
	addr     common.Address
	ledger   *state.Ledger
	registry *Registry
	stats    StatsWriter

	paused      bool
	prices      [5]*big.Int // index 0 is 1-char names, index 4 is 5+ chars
	referralFee *big.Int
	revenueAddr common.Address
}

// NewMinter returns a paused minter at addr selling names from registry.
// prices holds the tier prices for name lengths 1 through 5-and-longer.
// Revenue settles to revenueAddr.
func NewMinter(owner, addr common.Address, registry *Registry, revenueAddr common.Address, prices [5]*big.Int, ledger *state.Ledger) *Minter {
	m := &Minter{
		acl:         access.NewControl(owner),
		addr:        addr,
		ledger:      ledger,
		registry:    registry,
		paused:      true,
		referralFee: big.NewInt(defaultReferralFee),
		revenueAddr: revenueAddr,
	}
	for i, p := range prices {
		if p == nil {
			p = big.NewInt(0)
		}
		m.prices[i] = new(big.Int).Set(p)
	}
	return m
}

// Address returns the minter's ledger address.
func (m *Minter) Address() common.Address { return m.addr }

// Access exposes the permission set for manager administration.
func (m *Minter) Access() *access.Control { return m.acl }

// Paused reports whether public minting is off.
func (m *Minter) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Price returns the tier price for a name of the given length.
func (m *Minter) Price(nameLength int) *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.priceLocked(nameLength))
}

func (m *Minter) priceLocked(nameLength int) *big.Int {
	if nameLength < 1 {
		nameLength = 1
	}
	if nameLength > 5 {
		nameLength = 5
	}
	return m.prices[nameLength-1]
}

// Mint sells name to holder. The caller pays at least the tier price; the
// referral cut goes to the referrer and everything else, overpayment
// included, to the revenue address. The net amount is reported against the
// caller to the stats writer when one is configured. Payment, the stats
// report and the registration commit together: any failure leaves no value
// moved and no name registered.
func (m *Minter) Mint(caller common.Address, name string, holder, referrer common.Address, value *big.Int) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return 0, ErrMintingPaused
	}
	price := m.priceLocked(len(name))
	if value == nil || value.Cmp(price) < 0 {
		return 0, ErrValueBelowPrice
	}
	// Reject unmintable names before any value moves.
	if err := m.registry.CanMint(name); err != nil {
		return 0, err
	}

	var id uint64
	err := m.ledger.Transact(func(txn *state.Txn) error {
		rest := new(big.Int).Set(value)
		if referrer != (common.Address{}) && m.referralFee.Sign() > 0 {
			referral := new(big.Int).Mul(value, m.referralFee)
			referral.Quo(referral, big.NewInt(feeDenominator))
			if referral.Sign() > 0 {
				if err := txn.Transfer(caller, referrer, referral); err != nil {
					return err
				}
				rest.Sub(rest, referral)
			}
		}
		if err := txn.Transfer(caller, m.revenueAddr, rest); err != nil {
			return err
		}
		if m.stats != nil {
			if err := m.stats.AddWeiSpent(m.addr, caller, rest); err != nil {
				return err
			}
		}
		// Last fallible step: a registry refusal discards the staged
		// transfers above.
		var mintErr error
		id, mintErr = m.registry.Mint(m.addr, name, holder, common.Address{}, nil)
		return mintErr
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// OwnerFreeMint registers name for holder without payment or stats. Owner or
// manager only.
func (m *Minter) OwnerFreeMint(caller common.Address, name string, holder common.Address) (uint64, error) {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Mint(m.addr, name, holder, common.Address{}, nil)
}

// TogglePaused flips the public minting gate. Owner or manager only.
func (m *Minter) TogglePaused(caller common.Address) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = !m.paused
	return nil
}

// ChangePrice sets the tier price for names of the given length. The price
// cannot be zero. Owner or manager only.
func (m *Minter) ChangePrice(caller common.Address, nameLength int, price *big.Int) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if nameLength < 1 || nameLength > 5 {
		return ErrInvalidLength
	}
	if price == nil || price.Sign() <= 0 {
		return ErrPriceZero
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[nameLength-1] = new(big.Int).Set(price)
	return nil
}

// ChangeReferralFee sets the referral cut in basis points, capped at 20%.
// Owner or manager only.
func (m *Minter) ChangeReferralFee(caller common.Address, fee *big.Int) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if fee == nil || fee.Sign() < 0 || fee.Cmp(big.NewInt(maxReferralFee)) > 0 {
		return ErrReferralFeeTooHigh
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.referralFee = new(big.Int).Set(fee)
	return nil
}

// ReferralFee returns the referral cut in basis points.
func (m *Minter) ReferralFee() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.referralFee)
}

// SetRevenueAddress changes where sale proceeds settle. Owner or manager
// only.
func (m *Minter) SetRevenueAddress(caller, addr common.Address) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return access.ErrZeroAddress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revenueAddr = addr
	return nil
}

// SetStatsWriter wires the spend-reporting hook; nil disconnects it. Owner or
// manager only.
func (m *Minter) SetStatsWriter(caller common.Address, stats StatsWriter) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
	return nil
}

// Withdraw sweeps any stray balance on the minter address to the revenue
// address. Owner or manager only.
func (m *Minter) Withdraw(caller common.Address) error {
	if err := m.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	balance := m.ledger.BalanceOf(m.addr)
	if balance.Sign() == 0 {
		return nil
	}
	return m.ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(m.addr, m.revenueAddr, balance)
	})
}
