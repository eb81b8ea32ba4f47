package escrow

import (
	"math/big"
)

// Order captures one purchased product under escrow: the buyer that funded
// it, the seller entitled to the proceeds, and the price held until
// delivery is confirmed. The identifier is supplied by the caller and is
// unique within the ledger.
type Order struct {
	ID        uint64
	Buyer     [20]byte
	Seller    [20]byte
	Price     *big.Int
	Delivered bool
	Disputed  bool
	CreatedAt int64
}

// Clone returns a deep copy of the order so callers can safely mutate the
// copy without affecting the stored instance.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Price != nil {
		clone.Price = new(big.Int).Set(o.Price)
	} else {
		clone.Price = big.NewInt(0)
	}
	return &clone
}

// SanitizeOrder normalises nil numeric fields after decoding.
func SanitizeOrder(o *Order) {
	if o == nil {
		return
	}
	if o.Price == nil {
		o.Price = big.NewInt(0)
	}
}
