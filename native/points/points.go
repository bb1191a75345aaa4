package points

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/native/access"
	nativecommon "namechain/native/common"
)

// Errors returned by the activity points engine.
var (
	ErrNotEnoughBonusWei    = nativecommon.Wrap(nativecommon.ErrStateConflict, "points: not enough bonus wei")
	ErrNotEnoughBonusPoints = nativecommon.Wrap(nativecommon.ErrStateConflict, "points: not enough bonus points")
	ErrInvalidMultiplier    = nativecommon.Wrap(nativecommon.ErrInvalidInput, "points: multiplier must be positive")
	ErrInvalidAmount        = nativecommon.Wrap(nativecommon.ErrInvalidInput, "points: amount must be positive")
)

// WeiSpentSource is the slice of the stats ledger the points engine reads.
type WeiSpentSource interface {
	WeiSpent(user common.Address) *big.Int
}

// ActivityPoints is a derived read-model over recorded spend. Only bonus wei
// is stored per user; points are always computed as
// (weiSpent + bonusWei) * multiplier, so changing the multiplier rescales
// every balance instantly.
type ActivityPoints struct {
	mu         sync.RWMutex
	acl        *access.Control
	stats      WeiSpentSource
	altStats   WeiSpentSource
	bonusWei   map[common.Address]*big.Int
	multiplier *big.Int
}

// New returns a points engine reading from stats. altStats is an optional
// second spend source and may be nil.
func New(owner common.Address, stats, altStats WeiSpentSource, multiplier *big.Int) *ActivityPoints {
	return &ActivityPoints{
		acl:        access.NewControl(owner),
		stats:      stats,
		altStats:   altStats,
		bonusWei:   make(map[common.Address]*big.Int),
		multiplier: new(big.Int).Set(multiplier),
	}
}

// Access exposes the permission set for manager administration.
func (p *ActivityPoints) Access() *access.Control { return p.acl }

// Multiplier returns the current wei-to-points multiplier.
func (p *ActivityPoints) Multiplier() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.multiplier)
}

// SetMultiplier changes the multiplier. Owner or manager only.
func (p *ActivityPoints) SetMultiplier(caller common.Address, multiplier *big.Int) error {
	if err := p.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if multiplier == nil || multiplier.Sign() <= 0 {
		return ErrInvalidMultiplier
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.multiplier = new(big.Int).Set(multiplier)
	return nil
}

// Points returns the derived point balance of user.
func (p *ActivityPoints) Points(user common.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	wei := big.NewInt(0)
	if p.stats != nil {
		wei.Add(wei, p.stats.WeiSpent(user))
	}
	if p.altStats != nil {
		wei.Add(wei, p.altStats.WeiSpent(user))
	}
	if bonus, ok := p.bonusWei[user]; ok {
		wei.Add(wei, bonus)
	}
	return wei.Mul(wei, p.multiplier)
}

// BonusWei returns the stored bonus wei of user.
func (p *ActivityPoints) BonusWei(user common.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if bonus, ok := p.bonusWei[user]; ok {
		return new(big.Int).Set(bonus)
	}
	return big.NewInt(0)
}

// AddBonusWei grants user raw bonus wei, before the multiplier.
func (p *ActivityPoints) AddBonusWei(caller, user common.Address, wei *big.Int) error {
	if err := p.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if wei == nil || wei.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addBonus(user, wei)
	return nil
}

// RemoveBonusWei removes raw bonus wei from user.
func (p *ActivityPoints) RemoveBonusWei(caller, user common.Address, wei *big.Int) error {
	if err := p.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if wei == nil || wei.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	bonus, ok := p.bonusWei[user]
	if !ok || bonus.Cmp(wei) < 0 {
		return ErrNotEnoughBonusWei
	}
	p.bonusWei[user] = new(big.Int).Sub(bonus, wei)
	return nil
}

// AddBonusPoints grants user bonus denominated in points, i.e. wei already
// scaled by the multiplier. The stored bonus wei is points / multiplier.
func (p *ActivityPoints) AddBonusPoints(caller, user common.Address, pts *big.Int) error {
	if err := p.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if pts == nil || pts.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addBonus(user, new(big.Int).Quo(pts, p.multiplier))
	return nil
}

// RemoveBonusPoints removes bonus denominated in points.
func (p *ActivityPoints) RemoveBonusPoints(caller, user common.Address, pts *big.Int) error {
	if err := p.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if pts == nil || pts.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	wei := new(big.Int).Quo(pts, p.multiplier)
	bonus, ok := p.bonusWei[user]
	if !ok || bonus.Cmp(wei) < 0 {
		return ErrNotEnoughBonusPoints
	}
	p.bonusWei[user] = new(big.Int).Sub(bonus, wei)
	return nil
}

func (p *ActivityPoints) addBonus(user common.Address, wei *big.Int) {
	if bonus, ok := p.bonusWei[user]; ok {
		p.bonusWei[user] = new(big.Int).Add(bonus, wei)
		return
	}
	p.bonusWei[user] = new(big.Int).Set(wei)
}
