package marketplace

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"decentrashop/core/types"
	"decentrashop/native/fees"
)

const EventTypeProductPurchased = "market.product.purchased"

// NewProductPurchasedEvent returns the canonical payload for a settled
// purchase, carrying the full partition for external auditability.
func NewProductPurchasedEvent(buyer [20]byte, marginPct uint32, amount *big.Int, split fees.MarginSplit) *types.Event {
	return &types.Event{Type: EventTypeProductPurchased, Attributes: map[string]string{
		"buyer":          hex.EncodeToString(buyer[:]),
		"margin":         strconv.FormatUint(uint64(marginPct), 10),
		"amount":         cloneBigInt(amount).String(),
		"supplierShare":  cloneBigInt(split.Supplier).String(),
		"sellerShare":    cloneBigInt(split.Seller).String(),
		"developerShare": cloneBigInt(split.Developer).String(),
		"treasuryShare":  cloneBigInt(split.Treasury).String(),
		"incentiveShare": cloneBigInt(split.Incentive).String(),
	}}
}
