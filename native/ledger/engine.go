package ledger

import (
	"fmt"
	"math/big"
)

const incentiveBpsDenominator = 10_000

// Engine is the generic deposit-and-defer settlement variant: buyers pay
// into their own pending balance up front and the operator settles sellers
// later, individually or in batches. Caller authorization (owner checks)
// happens in the node before the engine mutates anything.
type Engine struct {
	ledger *Ledger

	minOrderPrice *big.Int

	// The incentive-bearing batch payout is an optional operator mode;
	// it stays behind this flag.
	incentiveEnabled bool
	incentiveBps     uint32
}

// NewEngine creates a deposit engine over the supplied pull-payment ledger.
func NewEngine(l *Ledger) *Engine {
	return &Engine{
		ledger:        l,
		minOrderPrice: big.NewInt(0),
		incentiveBps:  9_450,
	}
}

// Ledger exposes the underlying pull-payment ledger for withdrawal entry
// points.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// SetMinOrderPrice configures the deposit floor.
func (e *Engine) SetMinOrderPrice(price *big.Int) {
	e.minOrderPrice = cloneBigInt(price)
}

// MinOrderPrice returns the configured deposit floor.
func (e *Engine) MinOrderPrice() *big.Int { return cloneBigInt(e.minOrderPrice) }

// SetBatchIncentive toggles the incentive-bearing batch payout rule and its
// rate. A zero bps keeps the previously configured rate.
func (e *Engine) SetBatchIncentive(enabled bool, bps uint32) error {
	if bps > incentiveBpsDenominator {
		return fmt.Errorf("ledger: incentive bps out of range: %d", bps)
	}
	e.incentiveEnabled = enabled
	if bps != 0 {
		e.incentiveBps = bps
	}
	return nil
}

// MakeOrder records a buyer deposit: funds move into the module vault and
// the full amount is credited to the buyer's pending balance.
func (e *Engine) MakeOrder(buyer [20]byte, amount *big.Int) error {
	if e == nil || e.ledger == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Cmp(e.minOrderPrice) < 0 {
		return ErrBelowMinimumPrice
	}
	if err := e.ledger.Deposit(buyer, amt); err != nil {
		return err
	}
	if err := e.ledger.Credit(buyer, amt); err != nil {
		return err
	}
	e.ledger.emit(NewOrderDepositEvent(e.ledger.module, buyer, amt))
	return nil
}

// PaySeller debits the buyer's pending balance and pays the seller from
// the vault. The debit is rolled back if the outbound transfer fails.
func (e *Engine) PaySeller(buyer, seller [20]byte, amount *big.Int) error {
	if e == nil || e.ledger == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return fmt.Errorf("ledger: payment amount must be positive")
	}
	if err := e.ledger.Debit(buyer, amt); err != nil {
		return err
	}
	if err := e.ledger.TransferOut(seller, amt); err != nil {
		if restoreErr := e.ledger.Credit(buyer, amt); restoreErr != nil {
			return fmt.Errorf("ledger: restoring balance after failed payout: %v: %w", restoreErr, err)
		}
		return err
	}
	e.ledger.emit(NewSellerPaidEvent(e.ledger.module, buyer, seller, amt))
	return nil
}

// Refund debits the buyer's pending balance and returns the funds to the
// buyer. Same rollback discipline as PaySeller.
func (e *Engine) Refund(buyer [20]byte, amount *big.Int) error {
	if e == nil || e.ledger == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return fmt.Errorf("ledger: refund amount must be positive")
	}
	if err := e.ledger.Debit(buyer, amt); err != nil {
		return err
	}
	if err := e.ledger.TransferOut(buyer, amt); err != nil {
		if restoreErr := e.ledger.Credit(buyer, amt); restoreErr != nil {
			return fmt.Errorf("ledger: restoring balance after failed refund: %v: %w", restoreErr, err)
		}
		return err
	}
	e.ledger.emit(NewRefundedEvent(e.ledger.module, buyer, amt))
	return nil
}

// BatchPaySeller settles multiple buyer/seller pairs in one call.
//
// With the incentive rule disabled every buyer balance is validated before
// any debit, so an underfunded pair aborts the whole batch untouched. With
// the rule enabled an underfunded pair is skipped and the triggering
// caller is instead credited the configured fraction of that pair's
// amount. That reward is credited without a matching vault deposit, so
// running with the incentive on requires the operator to fund the module
// vault separately or the reward withdrawals cannot all be honoured.
func (e *Engine) BatchPaySeller(caller [20]byte, buyers, sellers [][20]byte, amounts []*big.Int) error {
	if e == nil || e.ledger == nil {
		return errNilState
	}
	if len(buyers) != len(sellers) || len(buyers) != len(amounts) {
		return fmt.Errorf("ledger: batch input lengths mismatch")
	}
	if len(buyers) == 0 {
		return fmt.Errorf("ledger: empty batch")
	}
	for _, amount := range amounts {
		if amount == nil || amount.Sign() <= 0 {
			return fmt.Errorf("ledger: payment amount must be positive")
		}
	}
	if !e.incentiveEnabled {
		// Shared-failure policy: validate every debit up front. Balances
		// are tallied per buyer so a buyer appearing twice cannot pass on
		// the same funds twice.
		required := make(map[[20]byte]*big.Int)
		for i, buyer := range buyers {
			total, ok := required[buyer]
			if !ok {
				total = big.NewInt(0)
				required[buyer] = total
			}
			total.Add(total, amounts[i])
		}
		for buyer, total := range required {
			balance, err := e.ledger.Balance(buyer)
			if err != nil {
				return err
			}
			if balance.Cmp(total) < 0 {
				return ErrInsufficientBalance
			}
		}
	}
	for i := range buyers {
		amt := cloneBigInt(amounts[i])
		if e.incentiveEnabled {
			balance, err := e.ledger.Balance(buyers[i])
			if err != nil {
				return err
			}
			if balance.Cmp(amt) < 0 {
				reward := new(big.Int).Mul(amt, new(big.Int).SetUint64(uint64(e.incentiveBps)))
				reward.Div(reward, big.NewInt(incentiveBpsDenominator))
				if err := e.ledger.Credit(caller, reward); err != nil {
					return err
				}
				e.ledger.emit(NewBatchIncentiveEvent(e.ledger.module, caller, buyers[i], reward))
				continue
			}
		}
		if err := e.PaySeller(buyers[i], sellers[i], amt); err != nil {
			return err
		}
	}
	return nil
}
