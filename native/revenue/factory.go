package revenue

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/events"
	"namechain/core/state"
	"namechain/native/access"
	nativecommon "namechain/native/common"
)

// Errors returned by the factory.
var (
	ErrUniqueIDTaken   = nativecommon.Wrap(nativecommon.ErrStateConflict, "revenue: unique id is not available")
	ErrUniqueIDTooLong = nativecommon.Wrap(nativecommon.ErrInvalidInput, "revenue: unique id is too long")
	ErrUniqueIDEmpty   = nativecommon.Wrap(nativecommon.ErrInvalidInput, "revenue: unique id is empty")

	ErrDistributorNotFound = nativecommon.Wrap(nativecommon.ErrStateConflict, "revenue: distributor not found")
)

const uniqueIDMaxLength = 30

// Factory launches distributors under caller-chosen unique identifiers and
// keeps the id-to-instance registry.
type Factory struct {
	mu      sync.RWMutex
	acl     *access.Control
	addr    common.Address
	ledger  *state.Ledger
	emitter events.Emitter

	byID map[string]*Distributor
	ids  []string
}

// NewFactory returns an empty factory at addr owned by owner.
func NewFactory(owner, addr common.Address, ledger *state.Ledger, emitter events.Emitter) *Factory {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Factory{
		acl:     access.NewControl(owner),
		addr:    addr,
		ledger:  ledger,
		emitter: emitter,
		byID:    make(map[string]*Distributor),
	}
}

// Access exposes the permission set for manager administration.
func (f *Factory) Access() *access.Control { return f.acl }

// Create launches a new distributor owned by the caller under uniqueID.
func (f *Factory) Create(caller common.Address, uniqueID string) (*Distributor, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return nil, ErrUniqueIDEmpty
	}
	if len(uniqueID) > uniqueIDMaxLength {
		return nil, ErrUniqueIDTooLong
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[uniqueID]; ok {
		return nil, ErrUniqueIDTaken
	}
	addr := state.DeriveAddressFromSeed(f.addr, uniqueID)
	d := NewDistributor(caller, addr, f.ledger, f.emitter)
	f.byID[uniqueID] = d
	f.ids = append(f.ids, uniqueID)
	f.emitter.Emit(newLaunchedEvent(f.addr, addr, uniqueID))
	return d, nil
}

// DistributorByID returns the distributor launched under uniqueID.
func (f *Factory) DistributorByID(uniqueID string) (*Distributor, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	d, ok := f.byID[uniqueID]
	if !ok {
		return nil, ErrDistributorNotFound
	}
	return d, nil
}

// DistributorAddressByID returns the ledger address registered for uniqueID,
// or the zero address when the id is unused.
func (f *Factory) DistributorAddressByID(uniqueID string) common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if d, ok := f.byID[uniqueID]; ok {
		return d.Address()
	}
	return common.Address{}
}

// IsUniqueIDAvailable reports whether uniqueID can still be claimed.
func (f *Factory) IsUniqueIDAvailable(uniqueID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.byID[uniqueID]
	return !ok
}

// UniqueIDs returns every claimed id in launch order.
func (f *Factory) UniqueIDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.ids...)
}
