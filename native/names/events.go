package names

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/types"
)

const (
	EventTypeTldCreated           = "names.tld.created"
	EventTypeDomainCreated        = "names.domain.created"
	EventTypeDomainTransferred    = "names.domain.transferred"
	EventTypeDefaultDomainChanged = "names.default.changed"
)

func newTldCreatedEvent(factory common.Address, name string, registry, owner common.Address) types.Event {
	return types.Event{
		Type: EventTypeTldCreated,
		Attributes: map[string]string{
			"factory":  factory.Hex(),
			"tld":      name,
			"registry": registry.Hex(),
			"owner":    owner.Hex(),
		},
	}
}

func newDomainCreatedEvent(registry common.Address, name, tld string, tokenID uint64, holder common.Address) types.Event {
	return types.Event{
		Type: EventTypeDomainCreated,
		Attributes: map[string]string{
			"registry": registry.Hex(),
			"name":     name,
			"tld":      tld,
			"tokenId":  strconv.FormatUint(tokenID, 10),
			"holder":   holder.Hex(),
		},
	}
}

func newDomainTransferredEvent(registry common.Address, name, tld string, from, to common.Address) types.Event {
	return types.Event{
		Type: EventTypeDomainTransferred,
		Attributes: map[string]string{
			"registry": registry.Hex(),
			"name":     name,
			"tld":      tld,
			"from":     from.Hex(),
			"to":       to.Hex(),
		},
	}
}

func newDefaultDomainChangedEvent(registry common.Address, holder common.Address, name, tld string) types.Event {
	return types.Event{
		Type: EventTypeDefaultDomainChanged,
		Attributes: map[string]string{
			"registry": registry.Hex(),
			"holder":   holder.Hex(),
			"name":     name,
			"tld":      tld,
		},
	}
}
