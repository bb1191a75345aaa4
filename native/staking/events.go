package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/types"
)

const (
	EventTypeDeposit         = "staking.deposit"
	EventTypeWithdraw        = "staking.withdraw"
	EventTypeClaim           = "staking.claim"
	EventTypeRewardsReceived = "staking.rewards.received"
)

func newVaultEvent(eventType string, vault, holder common.Address, value *big.Int) types.Event {
	return types.Event{
		Type: eventType,
		Attributes: map[string]string{
			"vault":  vault.Hex(),
			"holder": holder.Hex(),
			"value":  value.String(),
		},
	}
}

func newDepositEvent(vault, holder common.Address, value *big.Int) types.Event {
	return newVaultEvent(EventTypeDeposit, vault, holder, value)
}

func newWithdrawEvent(vault, holder common.Address, value *big.Int) types.Event {
	return newVaultEvent(EventTypeWithdraw, vault, holder, value)
}

func newClaimEvent(vault, holder common.Address, value *big.Int) types.Event {
	return newVaultEvent(EventTypeClaim, vault, holder, value)
}

func newRewardsReceivedEvent(vault, from common.Address, value *big.Int) types.Event {
	return newVaultEvent(EventTypeRewardsReceived, vault, from, value)
}
