package fidelity

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"decentrashop/native/ledger"
)

type mockState struct {
	stakes     map[[20]byte]*Stake
	balances   map[[20]byte]*big.Int
	allowances map[string]*big.Int
	vault      [20]byte
}

func newMockState() *mockState {
	return &mockState{
		stakes:     make(map[[20]byte]*Stake),
		balances:   make(map[[20]byte]*big.Int),
		allowances: make(map[string]*big.Int),
		vault:      newTestAddress(0xF0),
	}
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func (m *mockState) StakeGet(addr [20]byte) (*Stake, bool, error) {
	stake, ok := m.stakes[addr]
	if !ok {
		return nil, false, nil
	}
	return stake.Clone(), true, nil
}

func (m *mockState) StakePut(addr [20]byte, stake *Stake) error {
	if stake == nil {
		return fmt.Errorf("nil stake")
	}
	m.stakes[addr] = stake.Clone()
	return nil
}

func (m *mockState) StakeDelete(addr [20]byte) error {
	delete(m.stakes, addr)
	return nil
}

func (m *mockState) PendingBalance(module string, addr [20]byte) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (m *mockState) PendingAdd(module string, addr [20]byte, amount *big.Int) error { return nil }

func (m *mockState) PendingSub(module string, addr [20]byte, amount *big.Int) error { return nil }

func (m *mockState) PendingAddresses(module string) ([][20]byte, error) { return nil, nil }

func (m *mockState) balance(addr [20]byte) *big.Int {
	if m.balances[addr] == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(m.balances[addr])
}

func (m *mockState) allow(owner, spender [20]byte, amount int64) {
	m.allowances[string(owner[:])+string(spender[:])] = big.NewInt(amount)
}

func (m *mockState) Transfer(asset string, from, to [20]byte, amount *big.Int) error {
	fromBal := m.balance(from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient funds")
	}
	m.balances[from] = fromBal.Sub(fromBal, amount)
	m.balances[to] = new(big.Int).Add(m.balance(to), amount)
	return nil
}

func (m *mockState) TransferFrom(asset string, owner, spender, to [20]byte, amount *big.Int) error {
	allowance := m.allowances[string(owner[:])+string(spender[:])]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient allowance")
	}
	if err := m.Transfer(asset, owner, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

func (m *mockState) VaultAddress(module string) ([20]byte, error) {
	return m.vault, nil
}

func newTestEngine(t *testing.T, state *mockState, now *int64) *Engine {
	t.Helper()
	l, err := ledger.New("fidelity", ledger.AssetDXS)
	if err != nil {
		t.Fatalf("creating ledger: %v", err)
	}
	l.SetState(state)
	engine := NewEngine(l)
	engine.SetState(state)
	engine.SetNowFunc(func() int64 { return *now })
	return engine
}

func fundedHolder(state *mockState, fill byte, amount int64) [20]byte {
	holder := newTestAddress(fill)
	state.balances[holder] = big.NewInt(amount)
	state.allow(holder, state.vault, amount)
	return holder
}

func TestStakeLocksTokensInVault(t *testing.T) {
	state := newMockState()
	now := int64(1_700_000_000)
	engine := newTestEngine(t, state, &now)
	holder := fundedHolder(state, 0x01, 1_000)

	if err := engine.Stake(holder, big.NewInt(600)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	if got := state.balance(state.vault); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("vault balance = %s, want 600", got)
	}
	stake, err := engine.StakeOf(holder)
	if err != nil {
		t.Fatalf("stake of: %v", err)
	}
	if stake.Amount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("staked amount = %s, want 600", stake.Amount)
	}
	if stake.StakedAt != now {
		t.Fatalf("staked at = %d, want %d", stake.StakedAt, now)
	}
}

func TestStakeWithoutAllowanceFails(t *testing.T) {
	state := newMockState()
	now := int64(1_700_000_000)
	engine := newTestEngine(t, state, &now)
	holder := newTestAddress(0x01)
	state.balances[holder] = big.NewInt(1_000)

	err := engine.Stake(holder, big.NewInt(100))
	if !errors.Is(err, ledger.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if _, err := engine.StakeOf(holder); !errors.Is(err, ErrNoStake) {
		t.Fatalf("no stake should be recorded, got %v", err)
	}
}

func TestRestakeTopsUpAndRestartsLock(t *testing.T) {
	state := newMockState()
	now := int64(1_700_000_000)
	engine := newTestEngine(t, state, &now)
	holder := fundedHolder(state, 0x01, 1_000)

	if err := engine.Stake(holder, big.NewInt(400)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	now += 10 * 24 * 60 * 60
	if err := engine.Stake(holder, big.NewInt(200)); err != nil {
		t.Fatalf("restake: %v", err)
	}
	stake, err := engine.StakeOf(holder)
	if err != nil {
		t.Fatalf("stake of: %v", err)
	}
	if stake.Amount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("staked amount = %s, want 600", stake.Amount)
	}
	if stake.StakedAt != now {
		t.Fatalf("lock should restart on top-up: stakedAt = %d, want %d", stake.StakedAt, now)
	}
}

func TestUnstakeHonorsLockPeriod(t *testing.T) {
	state := newMockState()
	now := int64(1_700_000_000)
	engine := newTestEngine(t, state, &now)
	holder := fundedHolder(state, 0x01, 1_000)

	if err := engine.Stake(holder, big.NewInt(1_000)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	if _, err := engine.Unstake(holder); !errors.Is(err, ErrStakeLocked) {
		t.Fatalf("expected ErrStakeLocked, got %v", err)
	}

	now += DefaultStakingPeriod
	amount, err := engine.Unstake(holder)
	if err != nil {
		t.Fatalf("unstake: %v", err)
	}
	if amount.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("unstaked amount = %s, want 1000", amount)
	}
	if got := state.balance(holder); got.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("holder balance = %s, want 1000", got)
	}
	if _, err := engine.Unstake(holder); !errors.Is(err, ErrNoStake) {
		t.Fatalf("expected ErrNoStake after full unstake, got %v", err)
	}
}

func TestSetStakingPeriodCapped(t *testing.T) {
	state := newMockState()
	now := int64(1_700_000_000)
	engine := newTestEngine(t, state, &now)

	if err := engine.SetStakingPeriod(MaxStakingPeriod + 1); !errors.Is(err, ErrPeriodTooLong) {
		t.Fatalf("expected ErrPeriodTooLong, got %v", err)
	}
	if err := engine.SetStakingPeriod(0); err == nil {
		t.Fatal("expected error for non-positive period")
	}
	if err := engine.SetStakingPeriod(MaxStakingPeriod); err != nil {
		t.Fatalf("setting max period: %v", err)
	}
	if engine.StakingPeriod() != MaxStakingPeriod {
		t.Fatalf("staking period = %d, want %d", engine.StakingPeriod(), MaxStakingPeriod)
	}
}

func TestStakeRejectsNonPositiveAmount(t *testing.T) {
	state := newMockState()
	now := int64(1_700_000_000)
	engine := newTestEngine(t, state, &now)
	holder := fundedHolder(state, 0x01, 1_000)

	if err := engine.Stake(holder, big.NewInt(0)); err == nil {
		t.Fatal("expected error for zero stake")
	}
	if err := engine.Stake(holder, big.NewInt(-5)); err == nil {
		t.Fatal("expected error for negative stake")
	}
}
