package staking

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/events"
	"namechain/core/state"
	"namechain/native/access"
	nativecommon "namechain/native/common"
)

// Errors returned by the rewards vault.
var (
	ErrAssetsLocked               = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "staking: assets are still locked")
	ErrWithdrawalsDisabled        = nativecommon.Wrap(nativecommon.ErrTemporarilyBlocked, "staking: withdrawals are disabled")
	ErrWithdrawalsDisabledForever = nativecommon.Wrap(nativecommon.ErrPermanentlyBlocked, "staking: withdrawals are disabled forever")
	ErrBelowMinDeposit            = nativecommon.Wrap(nativecommon.ErrInvalidInput, "staking: deposit below minimum")
	ErrAboveMaxDeposit            = nativecommon.Wrap(nativecommon.ErrInvalidInput, "staking: deposit above maximum")
	ErrZeroAmount                 = nativecommon.Wrap(nativecommon.ErrInvalidInput, "staking: amount must be positive")
	ErrInsufficientShares         = nativecommon.Wrap(nativecommon.ErrInsufficientPayment, "staking: not enough shares")
	ErrRemainderBelowMin          = nativecommon.Wrap(nativecommon.ErrInvalidInput, "staking: remaining balance below minimum deposit")
	ErrTransferToVault            = nativecommon.Wrap(nativecommon.ErrInvalidInput, "staking: cannot transfer shares to the vault")
	ErrInvalidConfig              = nativecommon.Wrap(nativecommon.ErrInvalidInput, "staking: invalid vault configuration")
)

// Asset is the deposit token slice the vault needs.
type Asset interface {
	Transfer(from, to common.Address, amount *big.Int) error
	BalanceOf(addr common.Address) *big.Int
}

// VaultConfig carries the launch parameters of a vault.
type VaultConfig struct {
	Owner         common.Address
	Address       common.Address
	Asset         Asset
	ReceiptName   string
	ReceiptSymbol string
	PeriodLength  int64 // seconds
	MinDeposit    *big.Int
	MaxDeposit    *big.Int // nil means unlimited
	ClaimMinimum  *big.Int // smallest reward pool worth settling
	Ledger        *state.Ledger
	Emitter       events.Emitter
}

// Vault locks a deposit token for rolling periods and pays native-value
// rewards out per period, pro rata by shares. Shares mirror deposits 1:1 and
// behave as a transferable receipt token. Every deposit restarts the
// depositor's lock.
type Vault struct {
	mu      sync.Mutex
	acl     *access.Control
	addr    common.Address
	asset   Asset
	ledger  *state.Ledger
	emitter events.Emitter
	nowFn   func() int64

	receiptName   string
	receiptSymbol string

	shares      map[common.Address]*big.Int
	totalShares *big.Int

	periodLength      int64
	lastClaimPeriod   int64
	claimRewardsTotal *big.Int
	claimMinimum      *big.Int
	futureRewards     *big.Int
	lastClaimed       map[common.Address]int64
	lastDeposit       map[common.Address]int64

	minDeposit *big.Int
	maxDeposit *big.Int

	withdrawalsEnabled         bool
	withdrawalsDisabledForever bool
}

// NewVault returns a vault per cfg, with withdrawals enabled and the first
// claim period starting now.
func NewVault(cfg VaultConfig) (*Vault, error) {
	if cfg.Asset == nil || cfg.PeriodLength <= 0 || cfg.ReceiptName == "" || cfg.ReceiptSymbol == "" {
		return nil, ErrInvalidConfig
	}
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	minDeposit := big.NewInt(0)
	if cfg.MinDeposit != nil {
		minDeposit = new(big.Int).Set(cfg.MinDeposit)
	}
	var maxDeposit *big.Int
	if cfg.MaxDeposit != nil {
		maxDeposit = new(big.Int).Set(cfg.MaxDeposit)
	}
	claimMinimum := big.NewInt(0)
	if cfg.ClaimMinimum != nil {
		claimMinimum = new(big.Int).Set(cfg.ClaimMinimum)
	}
	v := &Vault{
		acl:                access.NewControl(cfg.Owner),
		addr:               cfg.Address,
		asset:              cfg.Asset,
		ledger:             cfg.Ledger,
		emitter:            emitter,
		nowFn:              func() int64 { return time.Now().Unix() },
		receiptName:        cfg.ReceiptName,
		receiptSymbol:      cfg.ReceiptSymbol,
		shares:             make(map[common.Address]*big.Int),
		totalShares:        big.NewInt(0),
		periodLength:       cfg.PeriodLength,
		claimRewardsTotal:  big.NewInt(0),
		claimMinimum:       claimMinimum,
		futureRewards:      big.NewInt(0),
		lastClaimed:        make(map[common.Address]int64),
		lastDeposit:        make(map[common.Address]int64),
		minDeposit:         minDeposit,
		maxDeposit:         maxDeposit,
		withdrawalsEnabled: true,
	}
	v.lastClaimPeriod = v.nowFn()
	return v, nil
}

// SetNowFunc overrides the clock, primarily for tests.
func (v *Vault) SetNowFunc(now func() int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nowFn = now
}

// Address returns the vault's ledger address.
func (v *Vault) Address() common.Address { return v.addr }

// Access exposes the permission set for manager administration.
func (v *Vault) Access() *access.Control { return v.acl }

// ReceiptName returns the receipt token name.
func (v *Vault) ReceiptName() string { return v.receiptName }

// ReceiptSymbol returns the receipt token symbol.
func (v *Vault) ReceiptSymbol() string { return v.receiptSymbol }

// Deposit locks amount of the asset for the caller and mints shares 1:1.
// Any pending reward is claimed for the caller first, then the caller's lock
// restarts.
func (v *Vault) Deposit(caller common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if amount.Cmp(v.minDeposit) < 0 {
		return ErrBelowMinDeposit
	}
	if v.maxDeposit != nil {
		total := new(big.Int).Add(v.sharesOf(caller), amount)
		if total.Cmp(v.maxDeposit) > 0 {
			return ErrAboveMaxDeposit
		}
	}

	now := v.nowFn()
	if err := v.claimLocked(caller, now); err != nil {
		return err
	}
	if err := v.asset.Transfer(caller, v.addr, amount); err != nil {
		return err
	}
	v.shares[caller] = new(big.Int).Add(v.sharesOf(caller), amount)
	v.totalShares = new(big.Int).Add(v.totalShares, amount)
	v.lastDeposit[caller] = now

	v.emitter.Emit(newDepositEvent(v.addr, caller, amount))
	return nil
}

// Withdraw burns amount of the caller's shares and returns the asset. The
// lock must have elapsed and the remaining stake must be zero or at least the
// minimum deposit.
func (v *Vault) Withdraw(caller common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.withdrawalsDisabledForever {
		return ErrWithdrawalsDisabledForever
	}
	if !v.withdrawalsEnabled {
		return ErrWithdrawalsDisabled
	}
	now := v.nowFn()
	if now < v.lastDeposit[caller]+v.periodLength {
		return ErrAssetsLocked
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	balance := v.sharesOf(caller)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientShares
	}
	remainder := new(big.Int).Sub(balance, amount)
	if remainder.Sign() != 0 && remainder.Cmp(v.minDeposit) < 0 {
		return ErrRemainderBelowMin
	}

	if err := v.claimLocked(caller, now); err != nil {
		return err
	}
	if err := v.asset.Transfer(v.addr, caller, amount); err != nil {
		return err
	}
	v.shares[caller] = remainder
	v.totalShares = new(big.Int).Sub(v.totalShares, amount)

	v.emitter.Emit(newWithdrawEvent(v.addr, caller, amount))
	return nil
}

// Receive accrues native value from the sender as future rewards.
func (v *Vault) Receive(from common.Address, value *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if value == nil || value.Sign() <= 0 {
		return ErrZeroAmount
	}
	if err := v.ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(from, v.addr, value)
	}); err != nil {
		return err
	}
	v.futureRewards = new(big.Int).Add(v.futureRewards, value)
	v.emitter.Emit(newRewardsReceivedEvent(v.addr, from, value))
	return nil
}

// Claim pays the caller's share of the settled reward pool, once per period.
func (v *Vault) Claim(caller common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.claimLocked(caller, v.nowFn())
}

// ClaimFor triggers a claim on behalf of holder. Anyone may call it; the
// payout always goes to the holder.
func (v *Vault) ClaimFor(holder common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.claimLocked(holder, v.nowFn())
}

// UpdateLastClaimPeriod rolls the claim period forward when it elapsed.
func (v *Vault) UpdateLastClaimPeriod() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rollPeriodLocked(v.nowFn())
}

// rollPeriodLocked settles the reward pool for a new period. Inflows below
// the claim minimum roll forward instead of settling.
func (v *Vault) rollPeriodLocked(now int64) {
	if now < v.lastClaimPeriod+v.periodLength {
		return
	}
	v.lastClaimPeriod = now
	if v.futureRewards.Cmp(v.claimMinimum) >= 0 {
		v.claimRewardsTotal = v.futureRewards
		v.futureRewards = big.NewInt(0)
	} else {
		v.claimRewardsTotal = big.NewInt(0)
	}
}

// claimLocked settles the period, then pays holder's share of the pool when
// they have not claimed this period yet.
func (v *Vault) claimLocked(holder common.Address, now int64) error {
	v.rollPeriodLocked(now)

	payout := v.previewClaimLocked(holder)
	if payout.Sign() == 0 {
		if v.lastClaimed[holder] < v.lastClaimPeriod {
			v.lastClaimed[holder] = v.lastClaimPeriod
		}
		return nil
	}
	if err := v.ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(v.addr, holder, payout)
	}); err != nil {
		return err
	}
	v.lastClaimed[holder] = v.lastClaimPeriod
	v.emitter.Emit(newClaimEvent(v.addr, holder, payout))
	return nil
}

func (v *Vault) previewClaimLocked(holder common.Address) *big.Int {
	shares := v.sharesOf(holder)
	if shares.Sign() == 0 || v.totalShares.Sign() == 0 || v.claimRewardsTotal.Sign() == 0 {
		return big.NewInt(0)
	}
	if v.lastClaimed[holder] >= v.lastClaimPeriod {
		return big.NewInt(0)
	}
	payout := new(big.Int).Mul(v.claimRewardsTotal, shares)
	return payout.Quo(payout, v.totalShares)
}

// PreviewClaim returns what holder would receive from the settled pool right
// now.
func (v *Vault) PreviewClaim(holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.previewClaimLocked(holder)
}

// PreviewFutureClaim returns holder's share of the not-yet-settled inflow.
func (v *Vault) PreviewFutureClaim(holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	shares := v.sharesOf(holder)
	if shares.Sign() == 0 || v.totalShares.Sign() == 0 || v.futureRewards.Sign() == 0 {
		return big.NewInt(0)
	}
	payout := new(big.Int).Mul(v.futureRewards, shares)
	return payout.Quo(payout, v.totalShares)
}

// Transfer moves receipt shares to another holder. Blocked while the sender's
// lock runs and never allowed toward the vault itself. Pending claims of both
// parties settle first.
func (v *Vault) Transfer(caller, to common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if to == v.addr {
		return ErrTransferToVault
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	now := v.nowFn()
	if now < v.lastDeposit[caller]+v.periodLength {
		return ErrAssetsLocked
	}
	balance := v.sharesOf(caller)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientShares
	}

	if err := v.claimLocked(caller, now); err != nil {
		return err
	}
	if err := v.claimLocked(to, now); err != nil {
		return err
	}

	v.shares[caller] = new(big.Int).Sub(balance, amount)
	v.shares[to] = new(big.Int).Add(v.sharesOf(to), amount)
	return nil
}

// SharesOf returns holder's receipt balance.
func (v *Vault) SharesOf(holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.sharesOf(holder))
}

// TotalShares returns the total receipt supply.
func (v *Vault) TotalShares() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.totalShares)
}

// FutureRewards returns the unsettled reward inflow.
func (v *Vault) FutureRewards() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.futureRewards)
}

// ClaimRewardsTotal returns the settled reward pool of the current period.
func (v *Vault) ClaimRewardsTotal() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.claimRewardsTotal)
}

// LockedTimeLeft returns how many seconds remain on holder's lock.
func (v *Vault) LockedTimeLeft(holder common.Address) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	left := v.lastDeposit[holder] + v.periodLength - v.nowFn()
	if left < 0 {
		return 0
	}
	return left
}

// SetMinDeposit adjusts the minimum deposit. Owner or manager only.
func (v *Vault) SetMinDeposit(caller common.Address, min *big.Int) error {
	if err := v.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if min == nil || min.Sign() < 0 {
		return ErrZeroAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.minDeposit = new(big.Int).Set(min)
	return nil
}

// SetMaxDeposit adjusts the per-holder deposit cap; nil removes it. Owner or
// manager only.
func (v *Vault) SetMaxDeposit(caller common.Address, max *big.Int) error {
	if err := v.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if max == nil {
		v.maxDeposit = nil
		return nil
	}
	v.maxDeposit = new(big.Int).Set(max)
	return nil
}

// SetClaimMinimum adjusts the smallest reward pool worth settling. Owner or
// manager only.
func (v *Vault) SetClaimMinimum(caller common.Address, min *big.Int) error {
	if err := v.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if min == nil || min.Sign() < 0 {
		return ErrZeroAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.claimMinimum = new(big.Int).Set(min)
	return nil
}

// ToggleWithdrawals flips the withdrawal gate. Owner or manager only.
func (v *Vault) ToggleWithdrawals(caller common.Address) error {
	if err := v.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.withdrawalsEnabled = !v.withdrawalsEnabled
	return nil
}

// DisableWithdrawalsForever shuts withdrawals down permanently. One-way.
// Owner only.
func (v *Vault) DisableWithdrawalsForever(caller common.Address) error {
	if err := v.acl.RequireOwner(caller); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.withdrawalsEnabled = false
	v.withdrawalsDisabledForever = true
	return nil
}

func (v *Vault) sharesOf(holder common.Address) *big.Int {
	if s, ok := v.shares[holder]; ok {
		return s
	}
	return big.NewInt(0)
}
