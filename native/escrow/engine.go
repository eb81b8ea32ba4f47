package escrow

import (
	"errors"
	"math/big"
	"time"

	"decentrashop/core/events"
	"decentrashop/core/types"
	"decentrashop/native/fees"
	"decentrashop/native/ledger"
)

var errNilState = errors.New("escrow engine: state not configured")

type engineState interface {
	OrderPut(*Order) error
	OrderGet(id uint64) (*Order, bool, error)
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// Engine owns the order lifecycle: it validates creation deposits, gates
// the Created→Delivered transition on the buyer (or arbitrator once a
// dispute is open), and converts escrowed value into pending-balance
// credits through the fee split. The pull-payment ledger it settles into
// is the single exit for funds.
type Engine struct {
	state   engineState
	ledger  *ledger.Ledger
	emitter events.Emitter
	nowFn   func() int64

	rates          fees.Rates
	minOrderPrice  *big.Int
	disputeFee     *big.Int
	devWallet      [20]byte
	treasuryWallet [20]byte
	arbitrator     [20]byte
}

// NewEngine creates an escrow engine settling into the provided ledger,
// with a no-op emitter. Callers can override the emitter via SetEmitter.
func NewEngine(l *ledger.Ledger) *Engine {
	return &Engine{
		ledger:        l,
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
		minOrderPrice: big.NewInt(0),
		disputeFee:    big.NewInt(0),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily
// intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetRates configures the stakeholder fee rates applied at settlement.
func (e *Engine) SetRates(rates fees.Rates) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	e.rates = rates
	return nil
}

// Rates returns the configured fee rates.
func (e *Engine) Rates() fees.Rates { return e.rates }

// SetMinOrderPrice configures the per-order price floor.
func (e *Engine) SetMinOrderPrice(price *big.Int) {
	e.minOrderPrice = cloneBigInt(price)
}

// MinOrderPrice returns the configured per-order price floor.
func (e *Engine) MinOrderPrice() *big.Int { return cloneBigInt(e.minOrderPrice) }

// SetDisputeFee configures the fee a buyer must attach to escalate an
// order to arbitration.
func (e *Engine) SetDisputeFee(fee *big.Int) {
	e.disputeFee = cloneBigInt(fee)
}

// DisputeFee returns the configured dispute fee.
func (e *Engine) DisputeFee() *big.Int { return cloneBigInt(e.disputeFee) }

// SetWallets configures the developer, governance treasury and arbitrator
// addresses credited at settlement.
func (e *Engine) SetWallets(dev, treasury, arbitrator [20]byte) {
	e.devWallet = dev
	e.treasuryWallet = treasury
	e.arbitrator = arbitrator
}

// Arbitrator returns the configured arbitrator address.
func (e *Engine) Arbitrator() [20]byte { return e.arbitrator }

// Ledger exposes the pull-payment ledger the engine settles into.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Get returns the stored order for the supplied identifier.
func (e *Engine) Get(id uint64) (*Order, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	order, ok, err := e.state.OrderGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownOrder
	}
	return order, nil
}

// CreateOrders records a batch of orders funded by a single deposit. The
// attached value must exactly equal the sum of the listed prices and every
// identifier must be fresh; any violation aborts the call with no orders
// recorded. On success the full deposit is held by the module vault and no
// stakeholder balance is credited yet.
func (e *Engine) CreateOrders(buyer [20]byte, ids []uint64, sellers [][20]byte, prices []*big.Int, attached *big.Int) error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	if len(ids) == 0 || len(ids) != len(sellers) || len(ids) != len(prices) {
		return errors.New("escrow: ids, sellers and prices must align and be non-empty")
	}
	total := big.NewInt(0)
	for _, price := range prices {
		if price == nil || price.Sign() <= 0 {
			return errors.New("escrow: order price must be positive")
		}
		if price.Cmp(e.minOrderPrice) < 0 {
			return ledger.ErrBelowMinimumPrice
		}
		total.Add(total, price)
	}
	if cloneBigInt(attached).Cmp(total) != 0 {
		return ErrInsufficientPayment
	}
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateOrder
		}
		seen[id] = struct{}{}
		if _, ok, err := e.state.OrderGet(id); err != nil {
			return err
		} else if ok {
			return ErrDuplicateOrder
		}
	}
	if err := e.ledger.Deposit(buyer, total); err != nil {
		return err
	}
	now := e.now()
	for i, id := range ids {
		order := &Order{
			ID:        id,
			Buyer:     buyer,
			Seller:    sellers[i],
			Price:     cloneBigInt(prices[i]),
			CreatedAt: now,
		}
		if err := e.state.OrderPut(order); err != nil {
			return err
		}
		e.emit(NewOrderCreatedEvent(order))
	}
	return nil
}

func (e *Engine) authorizeDelivery(order *Order, caller [20]byte) error {
	if order.Disputed {
		if caller != e.arbitrator {
			return ledger.ErrUnauthorized
		}
		return nil
	}
	if caller != order.Buyer {
		return ledger.ErrUnauthorized
	}
	return nil
}

func (e *Engine) checkDeliverable(id uint64, caller [20]byte) (*Order, error) {
	order, ok, err := e.state.OrderGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownOrder
	}
	if order.Delivered {
		return nil, ErrAlreadyDelivered
	}
	if err := e.authorizeDelivery(order, caller); err != nil {
		return nil, err
	}
	return order, nil
}

// applyDelivery performs the settlement for an order that has already
// passed the deliverable checks: the price is split and credited, then the
// delivered flag flips.
func (e *Engine) applyDelivery(order *Order) error {
	split := fees.Compute(order.Price, e.rates)
	if err := e.ledger.Credit(order.Seller, split.Seller); err != nil {
		return err
	}
	if err := e.ledger.Credit(e.devWallet, split.Developer); err != nil {
		return err
	}
	if err := e.ledger.Credit(e.treasuryWallet, split.Treasury); err != nil {
		return err
	}
	order.Delivered = true
	if err := e.state.OrderPut(order); err != nil {
		return err
	}
	e.emit(NewDeliveryConfirmedEvent(order, split))
	return nil
}

// ConfirmDelivery transitions the order to its terminal delivered state
// and credits the fee split to the pending-balance ledger. Only the buyer
// may confirm; once a dispute is open only the arbitrator may. This is the
// single point where escrowed value becomes claimable.
func (e *Engine) ConfirmDelivery(id uint64, caller [20]byte) error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	order, err := e.checkDeliverable(id, caller)
	if err != nil {
		return err
	}
	return e.applyDelivery(order)
}

// BatchConfirmDelivery applies ConfirmDelivery to each id under one atomic
// call. Every id is validated before any settlement: a single unknown,
// already-delivered or unauthorized id aborts the whole batch with no
// partial crediting.
func (e *Engine) BatchConfirmDelivery(ids []uint64, caller [20]byte) error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	if len(ids) == 0 {
		return errors.New("escrow: empty batch")
	}
	seen := make(map[uint64]struct{}, len(ids))
	orders := make([]*Order, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateOrder
		}
		seen[id] = struct{}{}
		order, err := e.checkDeliverable(id, caller)
		if err != nil {
			return err
		}
		orders = append(orders, order)
	}
	for _, order := range orders {
		if err := e.applyDelivery(order); err != nil {
			return err
		}
	}
	return nil
}

// OpenDispute escalates an undelivered order to arbitration. Only the
// buyer may open a dispute and must attach at least the configured fee;
// the full attached fee is credited to the arbitrator immediately,
// compensating the engagement regardless of the eventual delivery
// outcome. Re-disputing an already disputed order fails with
// ErrAlreadyDisputed before any fee moves.
func (e *Engine) OpenDispute(id uint64, caller [20]byte, attachedFee *big.Int) error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	order, ok, err := e.state.OrderGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownOrder
	}
	if order.Delivered {
		return ErrAlreadyDelivered
	}
	if caller != order.Buyer {
		return ledger.ErrUnauthorized
	}
	if order.Disputed {
		return ErrAlreadyDisputed
	}
	fee := cloneBigInt(attachedFee)
	if fee.Cmp(e.disputeFee) < 0 {
		return ErrInsufficientFee
	}
	if fee.Sign() > 0 {
		if err := e.ledger.Deposit(caller, fee); err != nil {
			return err
		}
		if err := e.ledger.Credit(e.arbitrator, fee); err != nil {
			return err
		}
	}
	order.Disputed = true
	if err := e.state.OrderPut(order); err != nil {
		return err
	}
	e.emit(NewDisputeOpenedEvent(order, fee))
	return nil
}
