package fidelity

import "errors"

var (
	// ErrNoStake indicates an unstake attempt without an active position.
	ErrNoStake = errors.New("fidelity: no active stake")
	// ErrStakeLocked indicates the lock period has not elapsed yet.
	ErrStakeLocked = errors.New("fidelity: stake still locked")
	// ErrPeriodTooLong indicates a lock period above the hard cap.
	ErrPeriodTooLong = errors.New("fidelity: staking period exceeds maximum")
)
