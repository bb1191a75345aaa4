package revenue

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/types"
)

const (
	EventTypeDistributorLaunched = "revenue.distributor.launched"
	EventTypeReceived            = "revenue.received"
	EventTypeWithdrawn           = "revenue.withdrawn"
)

func newLaunchedEvent(factory, distributor common.Address, uniqueID string) types.Event {
	return types.Event{
		Type: EventTypeDistributorLaunched,
		Attributes: map[string]string{
			"factory":     factory.Hex(),
			"distributor": distributor.Hex(),
			"uniqueId":    uniqueID,
		},
	}
}

func newReceivedEvent(distributor, from common.Address, value *big.Int) types.Event {
	return types.Event{
		Type: EventTypeReceived,
		Attributes: map[string]string{
			"distributor": distributor.Hex(),
			"from":        from.Hex(),
			"value":       value.String(),
		},
	}
}

func newWithdrawnEvent(distributor, to common.Address, value *big.Int) types.Event {
	return types.Event{
		Type: EventTypeWithdrawn,
		Attributes: map[string]string{
			"distributor": distributor.Hex(),
			"to":          to.Hex(),
			"value":       value.String(),
		},
	}
}
