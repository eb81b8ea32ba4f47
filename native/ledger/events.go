package ledger

import (
	"encoding/hex"
	"math/big"

	"decentrashop/core/types"
)

const (
	EventTypeOrderDeposit   = "ledger.order.deposited"
	EventTypeSellerPaid     = "ledger.seller.paid"
	EventTypeRefunded       = "ledger.refunded"
	EventTypeWithdrawn      = "ledger.withdrawn"
	EventTypeBatchIncentive = "ledger.batch.incentive"
)

// NewOrderDepositEvent returns the canonical payload for a buyer deposit.
func NewOrderDepositEvent(module string, buyer [20]byte, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeOrderDeposit, Attributes: map[string]string{
		"module": module,
		"buyer":  hex.EncodeToString(buyer[:]),
		"amount": cloneBigInt(amount).String(),
	}}
}

// NewSellerPaidEvent returns the canonical payload emitted when the
// operator settles a seller from a buyer's pending balance.
func NewSellerPaidEvent(module string, buyer, seller [20]byte, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeSellerPaid, Attributes: map[string]string{
		"module": module,
		"buyer":  hex.EncodeToString(buyer[:]),
		"seller": hex.EncodeToString(seller[:]),
		"amount": cloneBigInt(amount).String(),
	}}
}

// NewRefundedEvent returns the canonical payload for an administrative
// refund to a buyer.
func NewRefundedEvent(module string, buyer [20]byte, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRefunded, Attributes: map[string]string{
		"module": module,
		"buyer":  hex.EncodeToString(buyer[:]),
		"amount": cloneBigInt(amount).String(),
	}}
}

// NewWithdrawnEvent returns the canonical payload for a completed
// pull-payment withdrawal.
func NewWithdrawnEvent(module string, addr [20]byte, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeWithdrawn, Attributes: map[string]string{
		"module":  module,
		"address": hex.EncodeToString(addr[:]),
		"amount":  cloneBigInt(amount).String(),
	}}
}

// NewBatchIncentiveEvent records the caller compensation credited when an
// underfunded pair is skipped under the incentive rule.
func NewBatchIncentiveEvent(module string, caller, buyer [20]byte, reward *big.Int) *types.Event {
	return &types.Event{Type: EventTypeBatchIncentive, Attributes: map[string]string{
		"module": module,
		"caller": hex.EncodeToString(caller[:]),
		"buyer":  hex.EncodeToString(buyer[:]),
		"reward": cloneBigInt(reward).String(),
	}}
}
