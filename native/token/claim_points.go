package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
	nativecommon "namechain/native/common"
)

// Errors returned by the claim engines.
var (
	ErrClaimingPaused       = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "token: claiming is paused")
	ErrAlreadyClaimed       = nativecommon.Wrap(nativecommon.ErrStateConflict, "token: user already claimed")
	ErrNothingToClaim       = nativecommon.Wrap(nativecommon.ErrStateConflict, "token: no tokens to claim")
	ErrInvalidRatio         = nativecommon.Wrap(nativecommon.ErrInvalidInput, "token: ratio must be positive")
	ErrInvalidReward        = nativecommon.Wrap(nativecommon.ErrInvalidInput, "token: reward must be positive")
	ErrNilToken             = nativecommon.Wrap(nativecommon.ErrInvalidInput, "token: reward token is required")
	ErrNilPointsSource      = nativecommon.Wrap(nativecommon.ErrInvalidInput, "token: points source is required")
	ErrNilDomainSource      = nativecommon.Wrap(nativecommon.ErrInvalidInput, "token: domain source is required")
	ErrDomainNotEligible    = nativecommon.Wrap(nativecommon.ErrStateConflict, "token: domain id is not eligible for claiming")
	ErrDomainAlreadyClaimed = nativecommon.Wrap(nativecommon.ErrStateConflict, "token: domain already claimed")
)

// PointsSource is the slice of the activity points engine the claim reads.
type PointsSource interface {
	Points(user common.Address) *big.Int
}

// PointsClaim is a one-shot airdrop converting accumulated activity points
// into reward tokens at a fixed ratio. Each user claims at most once; the
// claim mints points * ratio tokens to the caller. The engine address must be
// registered as a minter on the reward token.
type PointsClaim struct {
	mu      sync.RWMutex
	acl     *access.Control
	addr    common.Address
	token   *Token
	points  PointsSource
	ratio   *big.Int
	paused  bool
	claimed map[common.Address]bool
}

// NewPointsClaim returns an unpaused claim engine at addr minting from tok at
// the given tokens-per-point ratio.
func NewPointsClaim(owner, addr common.Address, tok *Token, points PointsSource, ratio *big.Int) (*PointsClaim, error) {
	if tok == nil {
		return nil, ErrNilToken
	}
	if points == nil {
		return nil, ErrNilPointsSource
	}
	if ratio == nil || ratio.Sign() <= 0 {
		return nil, ErrInvalidRatio
	}
	return &PointsClaim{
		acl:     access.NewControl(owner),
		addr:    addr,
		token:   tok,
		points:  points,
		ratio:   new(big.Int).Set(ratio),
		claimed: make(map[common.Address]bool),
	}, nil
}

// Address returns the engine's ledger address.
func (p *PointsClaim) Address() common.Address { return p.addr }

// Access exposes the permission set for manager administration.
func (p *PointsClaim) Access() *access.Control { return p.acl }

// Ratio returns the tokens-per-point conversion ratio.
func (p *PointsClaim) Ratio() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.ratio)
}

// HasClaimed reports whether user already took their claim.
func (p *PointsClaim) HasClaimed(user common.Address) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.claimed[user]
}

// ClaimPreview returns the amount user would receive by claiming now. Users
// who already claimed preview zero.
func (p *PointsClaim) ClaimPreview(user common.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.claimed[user] {
		return big.NewInt(0)
	}
	return p.amountLocked(user)
}

func (p *PointsClaim) amountLocked(user common.Address) *big.Int {
	return new(big.Int).Mul(p.points.Points(user), p.ratio)
}

// Claim mints the caller's reward and marks them claimed. A zero entitlement
// is an error, not a silent no-op.
func (p *PointsClaim) Claim(caller common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		return nil, ErrClaimingPaused
	}
	if p.claimed[caller] {
		return nil, ErrAlreadyClaimed
	}
	amount := p.amountLocked(caller)
	if amount.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	if err := p.token.Mint(p.addr, caller, amount); err != nil {
		return nil, err
	}
	p.claimed[caller] = true
	return amount, nil
}

// Paused reports whether claiming is off.
func (p *PointsClaim) Paused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

// TogglePaused flips the claiming gate. Owner or manager only.
func (p *PointsClaim) TogglePaused(caller common.Address) error {
	if err := p.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = !p.paused
	return nil
}
