package fidelity

import (
	"errors"
	"math/big"
	"time"

	"decentrashop/core/events"
	"decentrashop/core/types"
	"decentrashop/native/ledger"
)

const (
	// DefaultStakingPeriod is the lock applied to new stakes unless the
	// owner configures a different one.
	DefaultStakingPeriod = 30 * 24 * 60 * 60
	// MaxStakingPeriod caps how long the owner can lock future stakes.
	MaxStakingPeriod = 60 * 24 * 60 * 60
)

var errNilState = errors.New("fidelity engine: state not configured")

type engineState interface {
	StakeGet(addr [20]byte) (*Stake, bool, error)
	StakePut(addr [20]byte, stake *Stake) error
	StakeDelete(addr [20]byte) error
}

type fidelityEvent struct {
	evt *types.Event
}

func (e fidelityEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e fidelityEvent) Event() *types.Event { return e.evt }

// Engine locks marketplace tokens in the module vault for a configurable
// period. Stakes are custodial: tokens move into the vault on Stake and
// back to the holder on Unstake once the lock elapses.
type Engine struct {
	state   engineState
	ledger  *ledger.Ledger
	emitter events.Emitter
	nowFn   func() int64

	stakingPeriod int64
}

// NewEngine creates a fidelity engine holding stakes in the provided
// ledger's vault.
func NewEngine(l *ledger.Ledger) *Engine {
	return &Engine{
		ledger:        l,
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
		stakingPeriod: DefaultStakingPeriod,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter. Passing nil resets the emitter
// to a no-op implementation.
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

// StakingPeriod returns the lock applied to new stakes, in seconds.
func (e *Engine) StakingPeriod() int64 { return e.stakingPeriod }

// SetStakingPeriod updates the lock applied to new stakes. Periods above
// MaxStakingPeriod are rejected; already locked stakes keep the period in
// force when they were made.
func (e *Engine) SetStakingPeriod(seconds int64) error {
	if seconds <= 0 {
		return errors.New("fidelity: staking period must be positive")
	}
	if seconds > MaxStakingPeriod {
		return ErrPeriodTooLong
	}
	prev := e.stakingPeriod
	e.stakingPeriod = seconds
	e.emit(NewPeriodUpdatedEvent(prev, seconds))
	return nil
}

// Ledger exposes the vault ledger the engine custodies stakes in.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(fidelityEvent{evt: event})
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

// StakeOf returns the holder's active stake, or ErrNoStake.
func (e *Engine) StakeOf(addr [20]byte) (*Stake, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	stake, ok, err := e.state.StakeGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoStake
	}
	return stake, nil
}

// Stake pulls amount tokens from the holder into the module vault and
// starts (or restarts) the lock. Topping up an existing position adds to
// the locked amount and resets the clock.
func (e *Engine) Stake(holder [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return errors.New("fidelity: stake amount must be positive")
	}
	if err := e.ledger.Deposit(holder, amt); err != nil {
		return err
	}
	stake, ok, err := e.state.StakeGet(holder)
	if err != nil {
		return err
	}
	if !ok {
		stake = &Stake{Amount: big.NewInt(0)}
	}
	stake.Amount = new(big.Int).Add(stake.Amount, amt)
	stake.StakedAt = e.now()
	if err := e.state.StakePut(holder, stake); err != nil {
		return err
	}
	e.emit(NewStakedEvent(holder, amt, stake))
	return nil
}

// Unstake returns the holder's full locked amount once the lock period has
// elapsed and clears the position.
func (e *Engine) Unstake(holder [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil || e.ledger == nil {
		return nil, errNilState
	}
	stake, ok, err := e.state.StakeGet(holder)
	if err != nil {
		return nil, err
	}
	if !ok || stake.Amount.Sign() == 0 {
		return nil, ErrNoStake
	}
	if e.now() < stake.StakedAt+e.stakingPeriod {
		return nil, ErrStakeLocked
	}
	amount := cloneBigInt(stake.Amount)
	if err := e.state.StakeDelete(holder); err != nil {
		return nil, err
	}
	if err := e.ledger.TransferOut(holder, amount); err != nil {
		if restoreErr := e.state.StakePut(holder, stake); restoreErr != nil {
			return nil, errors.Join(err, restoreErr)
		}
		return nil, err
	}
	e.emit(NewUnstakedEvent(holder, amount))
	return amount, nil
}
