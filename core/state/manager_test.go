package state

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"decentrashop/native/escrow"
	"decentrashop/native/fidelity"
	"decentrashop/storage"
)

func newTestManager() *Manager {
	return NewManager(storage.NewMemDB())
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func TestTransferMovesBalances(t *testing.T) {
	m := newTestManager()
	alice, bob := newTestAddress(0x01), newTestAddress(0x02)
	if err := m.SetBalance("DSH", alice, big.NewInt(1_000)); err != nil {
		t.Fatalf("set balance: %v", err)
	}

	if err := m.Transfer("DSH", alice, bob, big.NewInt(1_001)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := m.Transfer("DSH", alice, bob, big.NewInt(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceBal, _ := m.Balance("DSH", alice)
	bobBal, _ := m.Balance("DSH", bob)
	if aliceBal.Cmp(big.NewInt(600)) != 0 || bobBal.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("balances = %s/%s, want 600/400", aliceBal, bobBal)
	}
}

func TestBalancesAreAssetScoped(t *testing.T) {
	m := newTestManager()
	alice := newTestAddress(0x01)
	if err := m.SetBalance("DSH", alice, big.NewInt(100)); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	dxs, _ := m.Balance("DXS", alice)
	if dxs.Sign() != 0 {
		t.Fatalf("DXS balance = %s, want 0", dxs)
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	m := newTestManager()
	owner, spender, dest := newTestAddress(0x01), newTestAddress(0x02), newTestAddress(0x03)
	if err := m.SetBalance("DXS", owner, big.NewInt(1_000)); err != nil {
		t.Fatalf("set balance: %v", err)
	}

	if err := m.TransferFrom("DXS", owner, spender, dest, big.NewInt(100)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	if err := m.Approve("DXS", owner, spender, big.NewInt(300)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := m.TransferFrom("DXS", owner, spender, dest, big.NewInt(200)); err != nil {
		t.Fatalf("transfer from: %v", err)
	}
	allowance, _ := m.Allowance("DXS", owner, spender)
	if allowance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("remaining allowance = %s, want 100", allowance)
	}
	destBal, _ := m.Balance("DXS", dest)
	if destBal.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("destination balance = %s, want 200", destBal)
	}
	if err := m.TransferFrom("DXS", owner, spender, dest, big.NewInt(101)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance on exhausted grant, got %v", err)
	}
}

func TestPendingBalancesAndIndex(t *testing.T) {
	m := newTestManager()
	a, b := newTestAddress(0x01), newTestAddress(0x02)

	if err := m.PendingAdd("escrow", a, big.NewInt(100)); err != nil {
		t.Fatalf("pending add: %v", err)
	}
	if err := m.PendingAdd("escrow", a, big.NewInt(50)); err != nil {
		t.Fatalf("pending add: %v", err)
	}
	if err := m.PendingAdd("escrow", b, big.NewInt(25)); err != nil {
		t.Fatalf("pending add: %v", err)
	}

	balance, _ := m.PendingBalance("escrow", a)
	if balance.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("pending balance = %s, want 150", balance)
	}
	addrs, err := m.PendingAddresses("escrow")
	if err != nil {
		t.Fatalf("pending addresses: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("indexed %d addresses, want 2 (no duplicates)", len(addrs))
	}

	// Books are module scoped.
	other, _ := m.PendingBalance("market", a)
	if other.Sign() != 0 {
		t.Fatalf("market pending balance = %s, want 0", other)
	}

	if err := m.PendingSub("escrow", a, big.NewInt(151)); err == nil {
		t.Fatal("expected underflow error")
	}
	if err := m.PendingSub("escrow", a, big.NewInt(150)); err != nil {
		t.Fatalf("pending sub: %v", err)
	}
}

func TestVaultAddressIsDeterministicAndDistinct(t *testing.T) {
	m := newTestManager()
	escrowVault, err := m.VaultAddress("escrow")
	if err != nil {
		t.Fatalf("vault address: %v", err)
	}
	again, _ := m.VaultAddress("escrow")
	if escrowVault != again {
		t.Fatal("vault derivation must be deterministic")
	}
	marketVault, _ := m.VaultAddress("market")
	if escrowVault == marketVault {
		t.Fatal("module vaults must be distinct")
	}
	if _, err := m.VaultAddress(" "); err == nil {
		t.Fatal("expected error for empty module")
	}
}

func TestOrderRoundTrip(t *testing.T) {
	m := newTestManager()
	order := &escrow.Order{
		ID:        42,
		Buyer:     newTestAddress(0x01),
		Seller:    newTestAddress(0x02),
		Price:     big.NewInt(1_000),
		Disputed:  true,
		CreatedAt: 1_700_000_000,
	}
	if err := m.OrderPut(order); err != nil {
		t.Fatalf("order put: %v", err)
	}
	loaded, ok, err := m.OrderGet(42)
	if err != nil || !ok {
		t.Fatalf("order get: ok=%v err=%v", ok, err)
	}
	if loaded.ID != order.ID || loaded.Buyer != order.Buyer || loaded.Seller != order.Seller {
		t.Fatalf("loaded order mismatch: %+v", loaded)
	}
	if loaded.Price.Cmp(order.Price) != 0 || !loaded.Disputed || loaded.Delivered {
		t.Fatalf("loaded order fields mismatch: %+v", loaded)
	}
	if loaded.CreatedAt != order.CreatedAt {
		t.Fatalf("createdAt = %d, want %d", loaded.CreatedAt, order.CreatedAt)
	}
	if _, ok, err := m.OrderGet(43); ok || err != nil {
		t.Fatalf("missing order: ok=%v err=%v", ok, err)
	}
}

func TestStakeRoundTrip(t *testing.T) {
	m := newTestManager()
	holder := newTestAddress(0x01)
	stake := &fidelity.Stake{Amount: big.NewInt(700), StakedAt: 1_700_000_000}
	if err := m.StakePut(holder, stake); err != nil {
		t.Fatalf("stake put: %v", err)
	}
	loaded, ok, err := m.StakeGet(holder)
	if err != nil || !ok {
		t.Fatalf("stake get: ok=%v err=%v", ok, err)
	}
	if loaded.Amount.Cmp(stake.Amount) != 0 || loaded.StakedAt != stake.StakedAt {
		t.Fatalf("loaded stake mismatch: %+v", loaded)
	}
	if err := m.StakeDelete(holder); err != nil {
		t.Fatalf("stake delete: %v", err)
	}
	if _, ok, _ := m.StakeGet(holder); ok {
		t.Fatal("stake should be deleted")
	}
}

func TestOrderIndexTracksIdentifiers(t *testing.T) {
	m := newTestManager()
	ids, err := m.OrderIDs()
	if err != nil {
		t.Fatalf("order ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("fresh store indexed %d orders", len(ids))
	}

	order := &escrow.Order{ID: 7, Price: big.NewInt(100)}
	if err := m.OrderPut(order); err != nil {
		t.Fatalf("order put: %v", err)
	}
	// Updating a stored order must not duplicate its index entry.
	order.Delivered = true
	if err := m.OrderPut(order); err != nil {
		t.Fatalf("order update: %v", err)
	}
	if err := m.OrderPut(&escrow.Order{ID: 9, Price: big.NewInt(50)}); err != nil {
		t.Fatalf("order put: %v", err)
	}
	ids, _ = m.OrderIDs()
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 9 {
		t.Fatalf("order index = %v, want [7 9]", ids)
	}
}

func TestStakeIndexTracksHolders(t *testing.T) {
	m := newTestManager()
	holder := newTestAddress(0x01)
	if err := m.StakePut(holder, &fidelity.Stake{Amount: big.NewInt(100), StakedAt: 1}); err != nil {
		t.Fatalf("stake put: %v", err)
	}
	if err := m.StakePut(holder, &fidelity.Stake{Amount: big.NewInt(200), StakedAt: 2}); err != nil {
		t.Fatalf("stake update: %v", err)
	}
	addrs, err := m.StakeAddresses()
	if err != nil {
		t.Fatalf("stake addresses: %v", err)
	}
	if len(addrs) != 1 || addrs[0] != holder {
		t.Fatalf("stake index = %v, want [%x]", addrs, holder)
	}

	// The index survives unstaking; the record itself is gone.
	if err := m.StakeDelete(holder); err != nil {
		t.Fatalf("stake delete: %v", err)
	}
	addrs, _ = m.StakeAddresses()
	if len(addrs) != 1 {
		t.Fatalf("stake index lost entries after delete: %v", addrs)
	}
	if _, ok, _ := m.StakeGet(holder); ok {
		t.Fatal("stake record should be deleted")
	}
}

func TestParamRoundTrips(t *testing.T) {
	m := newTestManager()

	if _, ok, err := m.ParamAmount("min-price/escrow"); ok || err != nil {
		t.Fatalf("fresh store param: ok=%v err=%v", ok, err)
	}
	if err := m.ParamPutAmount("min-price/escrow", big.NewInt(5_000)); err != nil {
		t.Fatalf("param put amount: %v", err)
	}
	amount, ok, err := m.ParamAmount("min-price/escrow")
	if err != nil || !ok || amount.Cmp(big.NewInt(5_000)) != 0 {
		t.Fatalf("amount round trip failed: %s ok=%v err=%v", amount, ok, err)
	}
	if err := m.ParamPutAmount("min-price/escrow", big.NewInt(-1)); err == nil {
		t.Fatal("expected error for negative amount")
	}

	addr := newTestAddress(0x05)
	if err := m.ParamPutAddress("market/supplier", addr); err != nil {
		t.Fatalf("param put address: %v", err)
	}
	loaded, ok, err := m.ParamAddress("market/supplier")
	if err != nil || !ok || loaded != addr {
		t.Fatalf("address round trip failed: %x ok=%v err=%v", loaded, ok, err)
	}

	if err := m.ParamPutUint("fidelity/staking-period", 86_400); err != nil {
		t.Fatalf("param put uint: %v", err)
	}
	seconds, ok, err := m.ParamUint("fidelity/staking-period")
	if err != nil || !ok || seconds != 86_400 {
		t.Fatalf("uint round trip failed: %d ok=%v err=%v", seconds, ok, err)
	}
}

func TestGenesisFlag(t *testing.T) {
	m := newTestManager()
	applied, err := m.GenesisApplied()
	if err != nil {
		t.Fatalf("genesis applied: %v", err)
	}
	if applied {
		t.Fatal("fresh store should not be marked")
	}
	if err := m.MarkGenesisApplied(); err != nil {
		t.Fatalf("mark genesis: %v", err)
	}
	applied, _ = m.GenesisApplied()
	if !applied {
		t.Fatal("genesis mark should persist")
	}
}

func TestOwnerRoundTrip(t *testing.T) {
	m := newTestManager()
	if _, ok, err := m.Owner(); ok || err != nil {
		t.Fatalf("fresh store owner: ok=%v err=%v", ok, err)
	}
	owner := newTestAddress(0x07)
	if err := m.SetOwner(owner); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	loaded, ok, err := m.Owner()
	if err != nil || !ok || loaded != owner {
		t.Fatalf("owner round trip failed: %x ok=%v err=%v", loaded, ok, err)
	}
}
