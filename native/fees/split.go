package fees

import (
	"fmt"
	"math/big"
)

const bpsDenominator = 10_000

// Rates captures the stakeholder fee configuration applied at settlement.
// All rates are expressed in basis points of the settled amount.
type Rates struct {
	DeveloperBps uint32
	TreasuryBps  uint32
	IncentiveBps uint32
}

// Validate reports whether the configured rates can ever be applied without
// exceeding the settled amount.
func (r Rates) Validate() error {
	if r.DeveloperBps > bpsDenominator {
		return fmt.Errorf("fees: developer bps out of range: %d", r.DeveloperBps)
	}
	if r.TreasuryBps > bpsDenominator {
		return fmt.Errorf("fees: treasury bps out of range: %d", r.TreasuryBps)
	}
	if r.IncentiveBps > bpsDenominator {
		return fmt.Errorf("fees: incentive bps out of range: %d", r.IncentiveBps)
	}
	total := uint64(r.DeveloperBps) + uint64(r.TreasuryBps) + uint64(r.IncentiveBps)
	if total > bpsDenominator {
		return fmt.Errorf("fees: combined rates exceed 100%%: %d bps", total)
	}
	return nil
}

// Split is the partition of an order price among the settlement
// stakeholders. Seller absorbs the truncation remainder, so the shares
// always sum to exactly the input price.
type Split struct {
	Seller    *big.Int
	Developer *big.Int
	Treasury  *big.Int
}

// Compute partitions price using truncating integer division. The developer
// and treasury shares are floor(price*bps/10000); the seller receives the
// residue. Σ shares == price for every non-negative input.
func Compute(price *big.Int, rates Rates) Split {
	amount := cloneOrZero(price)
	developer := portion(amount, rates.DeveloperBps)
	treasury := portion(amount, rates.TreasuryBps)
	seller := new(big.Int).Sub(amount, developer)
	seller.Sub(seller, treasury)
	return Split{Seller: seller, Developer: developer, Treasury: treasury}
}

// MarginSplit is the partition used by the single-purchase marketplace
// flow: the cost basis goes to the supplier and the margin is divided among
// treasury, developer, incentive pool and seller.
type MarginSplit struct {
	Supplier  *big.Int
	Seller    *big.Int
	Developer *big.Int
	Treasury  *big.Int
	Incentive *big.Int
}

// ComputeMargin partitions price for a product sold with the given margin
// percentage over cost. The supplier receives price*100/(100+margin); the
// remaining margin is split by the configured rates with the seller taking
// the residue. All divisions truncate toward zero.
func ComputeMargin(price *big.Int, marginPct uint32, rates Rates) (MarginSplit, error) {
	if marginPct > 100 {
		return MarginSplit{}, fmt.Errorf("fees: margin percentage out of range: %d", marginPct)
	}
	amount := cloneOrZero(price)
	supplier := new(big.Int).Mul(amount, big.NewInt(100))
	supplier.Div(supplier, big.NewInt(int64(100+marginPct)))
	margin := new(big.Int).Sub(amount, supplier)

	developer := portion(margin, rates.DeveloperBps)
	treasury := portion(margin, rates.TreasuryBps)
	incentive := portion(margin, rates.IncentiveBps)
	seller := new(big.Int).Sub(margin, developer)
	seller.Sub(seller, treasury)
	seller.Sub(seller, incentive)
	return MarginSplit{
		Supplier:  supplier,
		Seller:    seller,
		Developer: developer,
		Treasury:  treasury,
		Incentive: incentive,
	}, nil
}

func portion(amount *big.Int, bps uint32) *big.Int {
	if amount.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(bps)))
	return share.Div(share, big.NewInt(bpsDenominator))
}

func cloneOrZero(v *big.Int) *big.Int {
	if v == nil || v.Sign() < 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
