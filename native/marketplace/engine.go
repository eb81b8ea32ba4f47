package marketplace

import (
	"errors"
	"math/big"

	"decentrashop/core/events"
	"decentrashop/core/types"
	"decentrashop/native/fees"
	"decentrashop/native/ledger"
)

var errNilState = errors.New("marketplace engine: state not configured")

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// Engine is the single-purchase marketplace variant: each purchase settles
// immediately, splitting the attached value into the supplier's cost basis
// and margin shares for treasury, developer, incentive pool and the
// configured seller. All proceeds land in the pending-balance ledger and
// leave through pull-payment withdrawal.
type Engine struct {
	ledger  *ledger.Ledger
	emitter events.Emitter

	rates           fees.Rates
	minProductPrice *big.Int
	supplier        [20]byte
	seller          [20]byte
	devWallet       [20]byte
	treasuryWallet  [20]byte
	incentiveWallet [20]byte
}

// NewEngine creates a marketplace engine settling into the provided
// ledger.
func NewEngine(l *ledger.Ledger) *Engine {
	return &Engine{
		ledger:          l,
		emitter:         events.NoopEmitter{},
		minProductPrice: big.NewInt(0),
	}
}

// SetEmitter configures the event emitter. Passing nil resets the emitter
// to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetRates configures the rates applied to the margin portion.
func (e *Engine) SetRates(rates fees.Rates) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	e.rates = rates
	return nil
}

// SetMinProductPrice configures the purchase floor.
func (e *Engine) SetMinProductPrice(price *big.Int) {
	e.minProductPrice = cloneBigInt(price)
}

// MinProductPrice returns the configured purchase floor.
func (e *Engine) MinProductPrice() *big.Int { return cloneBigInt(e.minProductPrice) }

// SetSupplier configures the address receiving the cost-basis portion.
func (e *Engine) SetSupplier(addr [20]byte) { e.supplier = addr }

// Supplier returns the configured supplier address.
func (e *Engine) Supplier() [20]byte { return e.supplier }

// SetSeller configures the beneficiary receiving the margin residue.
func (e *Engine) SetSeller(addr [20]byte) { e.seller = addr }

// Seller returns the configured beneficiary address.
func (e *Engine) Seller() [20]byte { return e.seller }

// SetWallets configures the developer, treasury and incentive-pool
// addresses credited from the margin.
func (e *Engine) SetWallets(dev, treasury, incentive [20]byte) {
	e.devWallet = dev
	e.treasuryWallet = treasury
	e.incentiveWallet = incentive
}

// Ledger exposes the pull-payment ledger the engine settles into.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: event})
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// BuyProduct settles a purchase with the given margin percentage over
// cost. The attached value is pulled into the module vault and partitioned
// in the same call; every share is immediately claimable through the
// pull-payment ledger.
func (e *Engine) BuyProduct(buyer [20]byte, marginPct uint32, amount *big.Int) (fees.MarginSplit, error) {
	if e == nil || e.ledger == nil {
		return fees.MarginSplit{}, errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Cmp(e.minProductPrice) < 0 || amt.Sign() <= 0 {
		return fees.MarginSplit{}, ledger.ErrBelowMinimumPrice
	}
	split, err := fees.ComputeMargin(amt, marginPct, e.rates)
	if err != nil {
		return fees.MarginSplit{}, err
	}
	if err := e.ledger.Deposit(buyer, amt); err != nil {
		return fees.MarginSplit{}, err
	}
	if err := e.ledger.Credit(e.supplier, split.Supplier); err != nil {
		return fees.MarginSplit{}, err
	}
	if err := e.ledger.Credit(e.seller, split.Seller); err != nil {
		return fees.MarginSplit{}, err
	}
	if err := e.ledger.Credit(e.devWallet, split.Developer); err != nil {
		return fees.MarginSplit{}, err
	}
	if err := e.ledger.Credit(e.treasuryWallet, split.Treasury); err != nil {
		return fees.MarginSplit{}, err
	}
	if err := e.ledger.Credit(e.incentiveWallet, split.Incentive); err != nil {
		return fees.MarginSplit{}, err
	}
	e.emit(NewProductPurchasedEvent(buyer, marginPct, amt, split))
	return split, nil
}
