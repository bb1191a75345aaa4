package revenue

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/events"
	"namechain/core/state"
	"namechain/native/access"
	nativecommon "namechain/native/common"
)

// Errors returned by the distributor.
var (
	ErrPercentageTooHigh  = nativecommon.Wrap(nativecommon.ErrInvalidInput, "revenue: percentage total must be less than or equal to 100%")
	ErrLabelTooLong       = nativecommon.Wrap(nativecommon.ErrInvalidInput, "revenue: label too long")
	ErrDuplicateRecipient = nativecommon.Wrap(nativecommon.ErrStateConflict, "revenue: recipient already added")
	ErrRecipientNotFound  = nativecommon.Wrap(nativecommon.ErrStateConflict, "revenue: recipient not found")
	ErrNoRecipients       = nativecommon.Wrap(nativecommon.ErrStateConflict, "revenue: no recipients")
	ErrIndexOutOfRange    = nativecommon.Wrap(nativecommon.ErrInvalidInput, "revenue: recipient index out of range")
	ErrZeroValue          = nativecommon.Wrap(nativecommon.ErrInvalidInput, "revenue: value must be positive")
)

const labelMaxLength = 30

// onePercentScale is the fixed-point denominator for percentages: 1e18 is 100%.
var onePercentScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Recipient is a single payout line of a distributor.
type Recipient struct {
	Addr       common.Address
	Label      string
	Percentage *big.Int
}

func (r Recipient) clone() Recipient {
	return Recipient{Addr: r.Addr, Label: r.Label, Percentage: new(big.Int).Set(r.Percentage)}
}

// Distributor splits every received payment among a list of recipients
// according to fixed-point percentages (1e18 = 100%). Division remainders and
// the unassigned share stay on the distributor's own address until the owner
// withdraws them.
type Distributor struct {
	mu      sync.RWMutex
	acl     *access.Control
	addr    common.Address
	ledger  *state.Ledger
	emitter events.Emitter

	recipients []Recipient
	index      map[common.Address]int
}

// NewDistributor returns an empty distributor at addr owned by owner.
func NewDistributor(owner, addr common.Address, ledger *state.Ledger, emitter events.Emitter) *Distributor {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Distributor{
		acl:     access.NewControl(owner),
		addr:    addr,
		ledger:  ledger,
		emitter: emitter,
		index:   make(map[common.Address]int),
	}
}

// Address returns the distributor's ledger address.
func (d *Distributor) Address() common.Address { return d.addr }

// Access exposes the permission set for manager administration.
func (d *Distributor) Access() *access.Control { return d.acl }

// Recipients returns a snapshot of the payout list in order.
func (d *Distributor) Recipients() []Recipient {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Recipient, len(d.recipients))
	for i, r := range d.recipients {
		out[i] = r.clone()
	}
	return out
}

// RecipientsLength returns the number of payout lines.
func (d *Distributor) RecipientsLength() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.recipients)
}

// GetRecipient looks a payout line up by address.
func (d *Distributor) GetRecipient(addr common.Address) (Recipient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[addr]
	if !ok {
		return Recipient{}, ErrRecipientNotFound
	}
	return d.recipients[i].clone(), nil
}

// IsRecipient reports whether addr is a payout line.
func (d *Distributor) IsRecipient(addr common.Address) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.index[addr]
	return ok
}

// AddRecipient appends a payout line. Owner or manager only. The sum of all
// percentages must stay at or below 100%.
func (d *Distributor) AddRecipient(caller, addr common.Address, label string, percentage *big.Int) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if err := validateLine(label, percentage); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.index[addr]; ok {
		return ErrDuplicateRecipient
	}
	if d.sumLocked(nil).Add(d.sumLocked(nil), percentage).Cmp(onePercentScale) > 0 {
		return ErrPercentageTooHigh
	}
	d.index[addr] = len(d.recipients)
	d.recipients = append(d.recipients, Recipient{Addr: addr, Label: label, Percentage: new(big.Int).Set(percentage)})
	return nil
}

// UpdateRecipientByIndex replaces the payout line at i. Owner or manager only.
func (d *Distributor) UpdateRecipientByIndex(caller common.Address, i int, addr common.Address, label string, percentage *big.Int) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	if err := validateLine(label, percentage); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.recipients) {
		return ErrIndexOutOfRange
	}
	if j, ok := d.index[addr]; ok && j != i {
		return ErrDuplicateRecipient
	}
	old := d.recipients[i]
	sum := d.sumLocked(old.Percentage)
	if sum.Add(sum, percentage).Cmp(onePercentScale) > 0 {
		return ErrPercentageTooHigh
	}
	delete(d.index, old.Addr)
	d.index[addr] = i
	d.recipients[i] = Recipient{Addr: addr, Label: label, Percentage: new(big.Int).Set(percentage)}
	return nil
}

// UpdateRecipientByAddress replaces the payout line registered for oldAddr.
func (d *Distributor) UpdateRecipientByAddress(caller, oldAddr, addr common.Address, label string, percentage *big.Int) error {
	d.mu.RLock()
	i, ok := d.index[oldAddr]
	d.mu.RUnlock()
	if !ok {
		if err := d.acl.RequireAuthorized(caller); err != nil {
			return err
		}
		return ErrRecipientNotFound
	}
	return d.UpdateRecipientByIndex(caller, i, addr, label, percentage)
}

// RemoveRecipientByAddress removes the payout line for addr, swapping the last
// line into its slot. Owner or manager only.
func (d *Distributor) RemoveRecipientByAddress(caller, addr common.Address) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[addr]
	if !ok {
		return ErrRecipientNotFound
	}
	d.removeAtLocked(i)
	return nil
}

// RemoveLastRecipient removes the final payout line. Owner or manager only.
func (d *Distributor) RemoveLastRecipient(caller common.Address) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.recipients) == 0 {
		return ErrNoRecipients
	}
	d.removeAtLocked(len(d.recipients) - 1)
	return nil
}

// RemoveAllRecipients clears the payout list. Owner or manager only.
func (d *Distributor) RemoveAllRecipients(caller common.Address) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recipients = nil
	d.index = make(map[common.Address]int)
	return nil
}

// Receive takes value from the sender and pays each recipient its share in
// list order, all inside one ledger transaction. Shares are floor-divided;
// the remainder stays on the distributor address.
func (d *Distributor) Receive(from common.Address, value *big.Int) error {
	if value == nil || value.Sign() <= 0 {
		return ErrZeroValue
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.ledger.Transact(func(txn *state.Txn) error {
		if err := txn.Transfer(from, d.addr, value); err != nil {
			return err
		}
		for _, r := range d.recipients {
			share := new(big.Int).Mul(value, r.Percentage)
			share.Quo(share, onePercentScale)
			if share.Sign() == 0 {
				continue
			}
			if err := txn.Transfer(d.addr, r.Addr, share); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.emitter.Emit(newReceivedEvent(d.addr, from, value))
	return nil
}

// WithdrawBalance sweeps whatever value accumulated on the distributor
// address to the owner. Owner or manager only.
func (d *Distributor) WithdrawBalance(caller common.Address) error {
	if err := d.acl.RequireAuthorized(caller); err != nil {
		return err
	}
	owner := d.acl.Owner()
	balance := d.ledger.BalanceOf(d.addr)
	if balance.Sign() == 0 {
		return nil
	}
	err := d.ledger.Transact(func(txn *state.Txn) error {
		return txn.Transfer(d.addr, owner, balance)
	})
	if err != nil {
		return err
	}
	d.emitter.Emit(newWithdrawnEvent(d.addr, owner, balance))
	return nil
}

// PercentageTotal returns the current sum of all recipient percentages.
func (d *Distributor) PercentageTotal() *big.Int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sumLocked(nil)
}

// sumLocked sums recipient percentages, optionally excluding one line's value
// (used when re-validating an update).
func (d *Distributor) sumLocked(excluding *big.Int) *big.Int {
	sum := big.NewInt(0)
	for _, r := range d.recipients {
		sum.Add(sum, r.Percentage)
	}
	if excluding != nil {
		sum.Sub(sum, excluding)
	}
	return sum
}

func (d *Distributor) removeAtLocked(i int) {
	last := len(d.recipients) - 1
	delete(d.index, d.recipients[i].Addr)
	if i != last {
		d.recipients[i] = d.recipients[last]
		d.index[d.recipients[i].Addr] = i
	}
	d.recipients = d.recipients[:last]
}

func validateLine(label string, percentage *big.Int) error {
	if len(label) > labelMaxLength {
		return ErrLabelTooLong
	}
	if percentage == nil || percentage.Sign() < 0 || percentage.Cmp(onePercentScale) > 0 {
		return ErrPercentageTooHigh
	}
	return nil
}
