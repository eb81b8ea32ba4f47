package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"decentrashop/core/events"
	"decentrashop/core/types"
)

var errNilState = errors.New("ledger: state not configured")

// State is the backend the pull-payment ledger operates on. Pending
// balances are namespaced per module so the escrow, marketplace and
// generic deposit flavours keep independent books over one store.
type State interface {
	PendingBalance(module string, addr [20]byte) (*big.Int, error)
	PendingAdd(module string, addr [20]byte, amount *big.Int) error
	PendingSub(module string, addr [20]byte, amount *big.Int) error
	PendingAddresses(module string) ([][20]byte, error)
	Transfer(asset string, from, to [20]byte, amount *big.Int) error
	TransferFrom(asset string, owner, spender, to [20]byte, amount *big.Int) error
	VaultAddress(module string) ([20]byte, error)
}

type ledgerEvent struct {
	evt *types.Event
}

func (e ledgerEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e ledgerEvent) Event() *types.Event { return e.evt }

// Ledger is the pull-payment primitive shared by every settlement variant:
// value settles into a per-address pending balance and leaves only through
// a debit-then-transfer withdrawal, so a failed payout never strands or
// duplicates funds.
type Ledger struct {
	state   State
	module  string
	asset   string
	emitter events.Emitter
}

// New creates a ledger for the given module namespace, denominated in the
// given asset.
func New(module, asset string) (*Ledger, error) {
	normalized, err := NormalizeAsset(asset)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		module:  module,
		asset:   normalized,
		emitter: events.NoopEmitter{},
	}, nil
}

// SetState configures the state backend used by the ledger.
func (l *Ledger) SetState(state State) { l.state = state }

// SetEmitter configures the event emitter. Passing nil resets the emitter
// to a no-op implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// Module returns the ledger's namespace.
func (l *Ledger) Module() string { return l.module }

// Asset returns the asset the ledger settles in.
func (l *Ledger) Asset() string { return l.asset }

func (l *Ledger) emit(event *types.Event) {
	if l == nil || l.emitter == nil || event == nil {
		return
	}
	l.emitter.Emit(ledgerEvent{evt: event})
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Balance returns the pending balance owed to addr.
func (l *Ledger) Balance(addr [20]byte) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.PendingBalance(l.module, addr)
}

// Credit increases addr's pending balance. It is internal to the
// settlement engines: only confirmed settlements and administrative
// deposits route through it.
func (l *Ledger) Credit(addr [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() < 0 {
		return fmt.Errorf("ledger: negative credit amount")
	}
	if amt.Sign() == 0 {
		return nil
	}
	return l.state.PendingAdd(l.module, addr, amt)
}

// Debit decreases addr's pending balance, failing with
// ErrInsufficientBalance when the balance does not cover the amount.
func (l *Ledger) Debit(addr [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() < 0 {
		return fmt.Errorf("ledger: negative debit amount")
	}
	if amt.Sign() == 0 {
		return nil
	}
	balance, err := l.state.PendingBalance(l.module, addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	return l.state.PendingSub(l.module, addr, amt)
}

// Deposit moves amount from the payer into the module vault. Native assets
// transfer directly; token assets settle through the allowance the payer
// granted the vault, so the transfer can fail and is reported as
// ErrTransferFailed.
func (l *Ledger) Deposit(from [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return fmt.Errorf("ledger: deposit amount must be positive")
	}
	vault, err := l.state.VaultAddress(l.module)
	if err != nil {
		return err
	}
	if IsToken(l.asset) {
		if err := l.state.TransferFrom(l.asset, from, vault, vault, amt); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		return nil
	}
	if err := l.state.Transfer(l.asset, from, vault, amt); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

// TransferOut pays amount from the module vault to the recipient.
func (l *Ledger) TransferOut(to [20]byte, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	vault, err := l.state.VaultAddress(l.module)
	if err != nil {
		return err
	}
	if err := l.state.Transfer(l.asset, vault, to, amt); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

// Withdraw pays out addr's entire pending balance. The balance is zeroed
// before the outbound transfer (checks-effects-interactions) and restored
// if the transfer fails, so a re-entrant or failing recipient can neither
// double-withdraw nor lose funds. A zero balance fails with
// ErrNothingToWithdraw.
func (l *Ledger) Withdraw(addr [20]byte) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	balance, err := l.state.PendingBalance(l.module, addr)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, ErrNothingToWithdraw
	}
	if err := l.state.PendingSub(l.module, addr, balance); err != nil {
		return nil, err
	}
	if err := l.TransferOut(addr, balance); err != nil {
		if restoreErr := l.state.PendingAdd(l.module, addr, balance); restoreErr != nil {
			return nil, fmt.Errorf("ledger: restoring balance after failed payout: %v: %w", restoreErr, err)
		}
		return nil, err
	}
	l.emit(NewWithdrawnEvent(l.module, addr, balance))
	return balance, nil
}

// WithdrawAll pays out every address with a pending balance through the
// same debit-then-transfer primitive as Withdraw and returns the number of
// payouts made. Used by the variants that centralise payout triggering.
func (l *Ledger) WithdrawAll() (int, error) {
	if l == nil || l.state == nil {
		return 0, errNilState
	}
	addrs, err := l.state.PendingAddresses(l.module)
	if err != nil {
		return 0, err
	}
	paid := 0
	for _, addr := range addrs {
		if _, err := l.Withdraw(addr); err != nil {
			if errors.Is(err, ErrNothingToWithdraw) {
				continue
			}
			return paid, err
		}
		paid++
	}
	return paid, nil
}
