package ledger

import "errors"

// Categorical settlement errors. Every violated precondition aborts the
// triggering call before any state mutation; callers match with errors.Is.
var (
	// ErrUnauthorized indicates the caller lacks the role required for the
	// operation (buyer, arbitrator or owner).
	ErrUnauthorized = errors.New("ledger: unauthorized caller")
	// ErrTransferFailed indicates the underlying value transfer rejected
	// the payout. The corresponding pending-balance debit is rolled back
	// before the error is returned.
	ErrTransferFailed = errors.New("ledger: transfer failed")
	// ErrNothingToWithdraw indicates a withdrawal attempt against a zero
	// pending balance.
	ErrNothingToWithdraw = errors.New("ledger: nothing to withdraw")
	// ErrInsufficientBalance indicates a debit larger than the address's
	// pending balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient pending balance")
	// ErrBelowMinimumPrice indicates an order or purchase below the
	// configured floor.
	ErrBelowMinimumPrice = errors.New("ledger: value below minimum price")
)
