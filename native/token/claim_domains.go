package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
	"namechain/native/names"
)

// DomainSource is the slice of a name registry the domains claim reads.
// *names.Registry satisfies it.
type DomainSource interface {
	DomainByName(name string) (*names.Domain, error)
}

// DomainsClaim is a per-name airdrop over an existing registry snapshot: each
// registered name whose token id falls inside the eligibility window can be
// claimed once, minting a fixed reward to the name's current holder. Anyone
// may trigger a claim. The engine address must be registered as a minter on
// the reward token.
type DomainsClaim struct {
	mu            sync.RWMutex
	acl           *access.Control
	addr          common.Address
	token         *Token
	domains       DomainSource
	reward        *big.Int
	maxEligibleID uint64
	paused        bool
	claimed       map[string]bool
}

// NewDomainsClaim returns an unpaused claim engine at addr minting reward
// tokens from tok for names looked up in domains. Names with token ids above
// maxEligibleID are outside the snapshot and cannot claim.
func NewDomainsClaim(owner, addr common.Address, tok *Token, domains DomainSource, reward *big.Int, maxEligibleID uint64) (*DomainsClaim, error) {
	if tok == nil {
		return nil, ErrNilToken
	}
	if domains == nil {
		return nil, ErrNilDomainSource
	}
	if reward == nil || reward.Sign() <= 0 {
		return nil, ErrInvalidReward
	}
	return &DomainsClaim{
		acl:           access.NewControl(owner),
		addr:          addr,
		token:         tok,
		domains:       domains,
		reward:        new(big.Int).Set(reward),
		maxEligibleID: maxEligibleID,
		claimed:       make(map[string]bool),
	}, nil
}

// Address returns the engine's ledger address.
func (d *DomainsClaim) Address() common.Address { return d.addr }

// Access exposes the permission set for manager administration.
func (d *DomainsClaim) Access() *access.Control { return d.acl }

// Reward returns the per-name reward amount.
func (d *DomainsClaim) Reward() *big.Int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return new(big.Int).Set(d.reward)
}

// MaxEligibleID returns the top token id covered by the snapshot.
func (d *DomainsClaim) MaxEligibleID() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.maxEligibleID
}

// HasClaimed reports whether name's reward was already taken.
func (d *DomainsClaim) HasClaimed(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dom, err := d.domains.DomainByName(name)
	if err != nil {
		return false
	}
	return d.claimed[dom.Name]
}

// Claim mints the reward for name to its current holder and marks the name
// claimed. Unregistered names surface the registry's lookup error.
func (d *DomainsClaim) Claim(caller common.Address, name string) (*big.Int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.paused {
		return nil, ErrClaimingPaused
	}
	dom, err := d.domains.DomainByName(name)
	if err != nil {
		return nil, err
	}
	if dom.TokenID > d.maxEligibleID {
		return nil, ErrDomainNotEligible
	}
	if d.claimed[dom.Name] {
		return nil, ErrDomainAlreadyClaimed
	}
	reward := new(big.Int).Set(d.reward)
	if err := d.token.Mint(d.addr, dom.Holder, reward); err != nil {
		return nil, err
	}
	d.claimed[dom.Name] = true
	return reward, nil
}

// ChangeReward sets the per-name reward. The reward cannot be zero. Owner or
// manager only.
func (d *DomainsClaim) ChangeReward(caller common.Address, reward *big.Int) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if reward == nil || reward.Sign() <= 0 {
		return ErrInvalidReward
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reward = new(big.Int).Set(reward)
	return nil
}

// ChangeMaxEligibleID moves the snapshot boundary. Owner or manager only.
func (d *DomainsClaim) ChangeMaxEligibleID(caller common.Address, max uint64) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxEligibleID = max
	return nil
}

// Paused reports whether claiming is off.
func (d *DomainsClaim) Paused() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.paused
}

// TogglePaused flips the claiming gate. Owner or manager only.
func (d *DomainsClaim) TogglePaused(caller common.Address) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = !d.paused
	return nil
}
