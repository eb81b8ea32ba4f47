package fidelity

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"decentrashop/core/types"
)

const (
	EventTypeStaked        = "fidelity.staked"
	EventTypeUnstaked      = "fidelity.unstaked"
	EventTypePeriodUpdated = "fidelity.period.updated"
)

// NewStakedEvent returns the canonical payload for a stake or top-up.
func NewStakedEvent(holder [20]byte, amount *big.Int, stake *Stake) *types.Event {
	attrs := map[string]string{
		"holder": hex.EncodeToString(holder[:]),
		"amount": cloneBigInt(amount).String(),
	}
	if stake != nil {
		attrs["locked"] = cloneBigInt(stake.Amount).String()
		attrs["stakedAt"] = strconv.FormatInt(stake.StakedAt, 10)
	}
	return &types.Event{Type: EventTypeStaked, Attributes: attrs}
}

// NewUnstakedEvent returns the canonical payload for a completed unstake.
func NewUnstakedEvent(holder [20]byte, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeUnstaked, Attributes: map[string]string{
		"holder": hex.EncodeToString(holder[:]),
		"amount": cloneBigInt(amount).String(),
	}}
}

// NewPeriodUpdatedEvent returns the canonical payload for a staking period
// change.
func NewPeriodUpdatedEvent(previous, current int64) *types.Event {
	return &types.Event{Type: EventTypePeriodUpdated, Attributes: map[string]string{
		"previous": strconv.FormatInt(previous, 10),
		"current":  strconv.FormatInt(current, 10),
	}}
}
