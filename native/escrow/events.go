package escrow

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"decentrashop/core/types"
	"decentrashop/native/fees"
)

const (
	EventTypeOrderCreated      = "escrow.order.created"
	EventTypeDeliveryConfirmed = "escrow.order.delivered"
	EventTypeDisputeOpened     = "escrow.dispute.opened"
)

// NewOrderCreatedEvent returns the canonical event payload for a newly
// created order.
func NewOrderCreatedEvent(o *Order) *types.Event {
	attrs := make(map[string]string)
	if o == nil {
		return &types.Event{Type: EventTypeOrderCreated, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(o.ID, 10)
	attrs["buyer"] = hex.EncodeToString(o.Buyer[:])
	attrs["seller"] = hex.EncodeToString(o.Seller[:])
	attrs["price"] = cloneBigInt(o.Price).String()
	attrs["createdAt"] = strconv.FormatInt(o.CreatedAt, 10)
	return &types.Event{Type: EventTypeOrderCreated, Attributes: attrs}
}

// NewDeliveryConfirmedEvent returns the canonical event payload emitted at
// settlement, carrying the credited shares for external auditability.
func NewDeliveryConfirmedEvent(o *Order, split fees.Split) *types.Event {
	attrs := make(map[string]string)
	if o == nil {
		return &types.Event{Type: EventTypeDeliveryConfirmed, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(o.ID, 10)
	attrs["seller"] = hex.EncodeToString(o.Seller[:])
	attrs["sellerShare"] = shareString(split.Seller)
	attrs["developerShare"] = shareString(split.Developer)
	attrs["treasuryShare"] = shareString(split.Treasury)
	attrs["disputed"] = strconv.FormatBool(o.Disputed)
	return &types.Event{Type: EventTypeDeliveryConfirmed, Attributes: attrs}
}

// NewDisputeOpenedEvent returns the canonical event payload emitted when a
// buyer escalates an order to arbitration.
func NewDisputeOpenedEvent(o *Order, fee *big.Int) *types.Event {
	attrs := make(map[string]string)
	if o == nil {
		return &types.Event{Type: EventTypeDisputeOpened, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(o.ID, 10)
	attrs["buyer"] = hex.EncodeToString(o.Buyer[:])
	attrs["fee"] = cloneBigInt(fee).String()
	return &types.Event{Type: EventTypeDisputeOpened, Attributes: attrs}
}

func shareString(v *big.Int) string {
	return cloneBigInt(v).String()
}
