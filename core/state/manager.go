package state

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"decentrashop/native/escrow"
	"decentrashop/native/fidelity"
	"decentrashop/storage"
)

var (
	// ErrInsufficientFunds indicates a transfer exceeding the sender's
	// spendable balance.
	ErrInsufficientFunds = errors.New("state: insufficient funds")
	// ErrInsufficientAllowance indicates a token pull exceeding the
	// allowance the owner granted the spender.
	ErrInsufficientAllowance = errors.New("state: insufficient allowance")
)

var (
	balancePrefix   = []byte("balance:")
	allowancePrefix = []byte("allowance:")
	pendingPrefix   = []byte("pending:")
	pendingIndexKey = []byte("pending-index:")
	vaultPrefix     = []byte("vault:")
	orderPrefix     = []byte("escrow/order/")
	orderIndexKey   = []byte("escrow/order-index")
	stakePrefix     = []byte("fidelity/stake/")
	stakeIndexKey   = []byte("fidelity/stake-index")
	paramPrefix     = []byte("param:")
	genesisKey      = []byte("genesis:applied")
	ownerKey        = []byte("node:owner")
)

// Manager reads and writes all settlement state through one keccak-keyed
// key/value store. Values are RLP encoded; keys are hashed before hitting
// the backing database so the raw namespaces never leak into it.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func hashKey(parts ...[]byte) []byte {
	return ethcrypto.Keccak256(bytes.Join(parts, nil))
}

func (m *Manager) kvPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

func (m *Manager) kvGet(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}

func balanceKey(asset string, addr [20]byte) []byte {
	return hashKey(balancePrefix, []byte(asset), []byte(":"), addr[:])
}

// Balance returns the spendable balance addr holds in the given asset.
func (m *Manager) Balance(asset string, addr [20]byte) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.kvGet(balanceKey(normalizeAsset(asset), addr), amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

// SetBalance stores a spendable balance, used by genesis allocation.
func (m *Manager) SetBalance(asset string, addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: negative balance not allowed")
	}
	return m.kvPut(balanceKey(normalizeAsset(asset), addr), amount)
}

// Transfer moves amount of asset between spendable balances.
func (m *Manager) Transfer(asset string, from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: transfer amount must be non-negative")
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	normalized := normalizeAsset(asset)
	fromBal, err := m.Balance(normalized, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	toBal, err := m.Balance(normalized, to)
	if err != nil {
		return err
	}
	if err := m.kvPut(balanceKey(normalized, from), new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return m.kvPut(balanceKey(normalized, to), new(big.Int).Add(toBal, amount))
}

func allowanceKey(asset string, owner, spender [20]byte) []byte {
	return hashKey(allowancePrefix, []byte(asset), []byte(":"), owner[:], spender[:])
}

// Approve grants spender the right to pull up to amount of asset from
// owner's balance. The allowance is overwritten, not accumulated.
func (m *Manager) Approve(asset string, owner, spender [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: allowance must be non-negative")
	}
	return m.kvPut(allowanceKey(normalizeAsset(asset), owner, spender), amount)
}

// Allowance returns the remaining amount spender may pull from owner.
func (m *Manager) Allowance(asset string, owner, spender [20]byte) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.kvGet(allowanceKey(normalizeAsset(asset), owner, spender), amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

// TransferFrom moves amount of asset from owner to the recipient against
// the allowance owner granted the spender, decrementing it on success.
func (m *Manager) TransferFrom(asset string, owner, spender, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: transfer amount must be positive")
	}
	normalized := normalizeAsset(asset)
	allowance, err := m.Allowance(normalized, owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := m.Transfer(normalized, owner, to, amount); err != nil {
		return err
	}
	return m.kvPut(allowanceKey(normalized, owner, spender), new(big.Int).Sub(allowance, amount))
}

func pendingKey(module string, addr [20]byte) []byte {
	return hashKey(pendingPrefix, []byte(module), []byte(":"), addr[:])
}

func pendingIndex(module string) []byte {
	return hashKey(pendingIndexKey, []byte(module))
}

// PendingBalance returns the pull-payment balance owed to addr in the
// given module namespace.
func (m *Manager) PendingBalance(module string, addr [20]byte) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.kvGet(pendingKey(module, addr), amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

// PendingAdd increases addr's pending balance and records the address in
// the module's payout index.
func (m *Manager) PendingAdd(module string, addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: pending credit must be non-negative")
	}
	balance, err := m.PendingBalance(module, addr)
	if err != nil {
		return err
	}
	if err := m.kvPut(pendingKey(module, addr), new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	return m.indexPendingAddress(module, addr)
}

// PendingSub decreases addr's pending balance. Callers check coverage
// first; going below zero is a programming error and is rejected.
func (m *Manager) PendingSub(module string, addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: pending debit must be non-negative")
	}
	balance, err := m.PendingBalance(module, addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("state: pending balance underflow for module %s", module)
	}
	return m.kvPut(pendingKey(module, addr), new(big.Int).Sub(balance, amount))
}

func (m *Manager) indexPendingAddress(module string, addr [20]byte) error {
	key := pendingIndex(module)
	var list [][]byte
	if _, err := m.kvGet(key, &list); err != nil {
		return err
	}
	for _, existing := range list {
		if bytes.Equal(existing, addr[:]) {
			return nil
		}
	}
	list = append(list, append([]byte(nil), addr[:]...))
	return m.kvPut(key, list)
}

// PendingAddresses returns every address that has ever been credited in
// the module namespace. Addresses stay indexed after a full withdrawal;
// payout loops skip the zero balances.
func (m *Manager) PendingAddresses(module string) ([][20]byte, error) {
	var list [][]byte
	if _, err := m.kvGet(pendingIndex(module), &list); err != nil {
		return nil, err
	}
	addrs := make([][20]byte, 0, len(list))
	for _, raw := range list {
		if len(raw) != 20 {
			return nil, fmt.Errorf("state: malformed address in pending index for module %s", module)
		}
		var addr [20]byte
		copy(addr[:], raw)
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// VaultAddress derives the deterministic custody address for a module
// namespace. No key exists for it, so vault funds only move through the
// settlement engines.
func (m *Manager) VaultAddress(module string) ([20]byte, error) {
	if strings.TrimSpace(module) == "" {
		return [20]byte{}, fmt.Errorf("state: vault module must not be empty")
	}
	digest := hashKey(vaultPrefix, []byte(module))
	var addr [20]byte
	copy(addr[:], digest[12:])
	return addr, nil
}

type storedOrder struct {
	ID        uint64
	Buyer     [20]byte
	Seller    [20]byte
	Price     *big.Int
	Delivered bool
	Disputed  bool
	CreatedAt uint64
}

func orderKey(id uint64) []byte {
	return hashKey(orderPrefix, rlpUint(id))
}

func rlpUint(v uint64) []byte {
	encoded, _ := rlp.EncodeToBytes(v)
	return encoded
}

// OrderPut stores an escrow order record and records its identifier in
// the order index.
func (m *Manager) OrderPut(order *escrow.Order) error {
	if order == nil {
		return fmt.Errorf("state: nil order")
	}
	if err := m.indexOrderID(order.ID); err != nil {
		return err
	}
	stored := &storedOrder{
		ID:        order.ID,
		Buyer:     order.Buyer,
		Seller:    order.Seller,
		Price:     order.Price,
		Delivered: order.Delivered,
		Disputed:  order.Disputed,
		CreatedAt: uint64(order.CreatedAt),
	}
	return m.kvPut(orderKey(order.ID), stored)
}

func (m *Manager) indexOrderID(id uint64) error {
	key := hashKey(orderIndexKey)
	var ids []uint64
	if _, err := m.kvGet(key, &ids); err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)
	return m.kvPut(key, ids)
}

// OrderIDs returns every order identifier ever stored, in insertion order.
func (m *Manager) OrderIDs() ([]uint64, error) {
	var ids []uint64
	if _, err := m.kvGet(hashKey(orderIndexKey), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// OrderGet loads an escrow order record. The boolean reports existence.
func (m *Manager) OrderGet(id uint64) (*escrow.Order, bool, error) {
	stored := new(storedOrder)
	ok, err := m.kvGet(orderKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	order := &escrow.Order{
		ID:        stored.ID,
		Buyer:     stored.Buyer,
		Seller:    stored.Seller,
		Price:     stored.Price,
		Delivered: stored.Delivered,
		Disputed:  stored.Disputed,
		CreatedAt: int64(stored.CreatedAt),
	}
	escrow.SanitizeOrder(order)
	return order, true, nil
}

type storedStake struct {
	Amount   *big.Int
	StakedAt uint64
}

func stakeKey(addr [20]byte) []byte {
	return hashKey(stakePrefix, addr[:])
}

// StakeGet loads a fidelity stake record. The boolean reports existence.
func (m *Manager) StakeGet(addr [20]byte) (*fidelity.Stake, bool, error) {
	stored := new(storedStake)
	ok, err := m.kvGet(stakeKey(addr), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	stake := &fidelity.Stake{Amount: stored.Amount, StakedAt: int64(stored.StakedAt)}
	fidelity.SanitizeStake(stake)
	return stake, true, nil
}

// StakePut stores a fidelity stake record and records the holder in the
// stake index.
func (m *Manager) StakePut(addr [20]byte, stake *fidelity.Stake) error {
	if stake == nil {
		return fmt.Errorf("state: nil stake")
	}
	if err := m.indexStakeAddress(addr); err != nil {
		return err
	}
	return m.kvPut(stakeKey(addr), &storedStake{Amount: stake.Amount, StakedAt: uint64(stake.StakedAt)})
}

// StakeDelete clears a fidelity stake record.
func (m *Manager) StakeDelete(addr [20]byte) error {
	return m.db.Delete(stakeKey(addr))
}

func (m *Manager) indexStakeAddress(addr [20]byte) error {
	key := hashKey(stakeIndexKey)
	var list [][]byte
	if _, err := m.kvGet(key, &list); err != nil {
		return err
	}
	for _, existing := range list {
		if bytes.Equal(existing, addr[:]) {
			return nil
		}
	}
	list = append(list, append([]byte(nil), addr[:]...))
	return m.kvPut(key, list)
}

// StakeAddresses returns every address that has ever held a stake.
// Addresses stay indexed after unstaking; readers skip the missing
// records.
func (m *Manager) StakeAddresses() ([][20]byte, error) {
	var list [][]byte
	if _, err := m.kvGet(hashKey(stakeIndexKey), &list); err != nil {
		return nil, err
	}
	addrs := make([][20]byte, 0, len(list))
	for _, raw := range list {
		if len(raw) != 20 {
			return nil, fmt.Errorf("state: malformed address in stake index")
		}
		var addr [20]byte
		copy(addr[:], raw)
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func paramKey(name string) []byte {
	return hashKey(paramPrefix, []byte(name))
}

// ParamPutAmount persists a numeric runtime parameter override.
func (m *Manager) ParamPutAmount(name string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: parameter %s must be non-negative", name)
	}
	return m.kvPut(paramKey(name), amount)
}

// ParamAmount returns a persisted numeric parameter override; the boolean
// reports whether one has been stored.
func (m *Manager) ParamAmount(name string) (*big.Int, bool, error) {
	amount := new(big.Int)
	ok, err := m.kvGet(paramKey(name), amount)
	if err != nil || !ok {
		return nil, false, err
	}
	return amount, true, nil
}

// ParamPutAddress persists an address runtime parameter override.
func (m *Manager) ParamPutAddress(name string, addr [20]byte) error {
	return m.kvPut(paramKey(name), addr[:])
}

// ParamAddress returns a persisted address parameter override; the boolean
// reports whether one has been stored.
func (m *Manager) ParamAddress(name string) ([20]byte, bool, error) {
	var raw []byte
	ok, err := m.kvGet(paramKey(name), &raw)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	if len(raw) != 20 {
		return [20]byte{}, false, fmt.Errorf("state: malformed address parameter %s", name)
	}
	var addr [20]byte
	copy(addr[:], raw)
	return addr, true, nil
}

// ParamPutUint persists an integer runtime parameter override.
func (m *Manager) ParamPutUint(name string, value uint64) error {
	return m.kvPut(paramKey(name), value)
}

// ParamUint returns a persisted integer parameter override; the boolean
// reports whether one has been stored.
func (m *Manager) ParamUint(name string) (uint64, bool, error) {
	var value uint64
	ok, err := m.kvGet(paramKey(name), &value)
	if err != nil || !ok {
		return 0, false, err
	}
	return value, true, nil
}

// GenesisApplied reports whether genesis allocations have been written.
func (m *Manager) GenesisApplied() (bool, error) {
	applied := false
	ok, err := m.kvGet(hashKey(genesisKey), &applied)
	if err != nil || !ok {
		return false, err
	}
	return applied, nil
}

// MarkGenesisApplied records that genesis allocations ran, making the
// bootstrap idempotent across restarts.
func (m *Manager) MarkGenesisApplied() error {
	return m.kvPut(hashKey(genesisKey), true)
}

// Owner returns the persisted owner address; the boolean reports whether
// one has been stored yet.
func (m *Manager) Owner() ([20]byte, bool, error) {
	var raw []byte
	ok, err := m.kvGet(hashKey(ownerKey), &raw)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	if len(raw) != 20 {
		return [20]byte{}, false, fmt.Errorf("state: malformed owner record")
	}
	var addr [20]byte
	copy(addr[:], raw)
	return addr, true, nil
}

// SetOwner persists the owner address.
func (m *Manager) SetOwner(addr [20]byte) error {
	return m.kvPut(hashKey(ownerKey), addr[:])
}
