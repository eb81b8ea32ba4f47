package fidelity

import "math/big"

// Stake records a holder's locked token position. Restaking tops up the
// amount and restarts the lock.
type Stake struct {
	Amount   *big.Int
	StakedAt int64
}

// Clone returns a deep copy of the stake.
func (s *Stake) Clone() *Stake {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Amount != nil {
		clone.Amount = new(big.Int).Set(s.Amount)
	}
	return &clone
}

// SanitizeStake normalises nil numeric fields after decoding.
func SanitizeStake(s *Stake) {
	if s == nil {
		return
	}
	if s.Amount == nil {
		s.Amount = big.NewInt(0)
	}
}
