package core

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"decentrashop/config"
	"decentrashop/core/events"
	"decentrashop/core/state"
	"decentrashop/core/types"
	"decentrashop/native/escrow"
	"decentrashop/native/fees"
	"decentrashop/native/fidelity"
	"decentrashop/native/ledger"
	"decentrashop/native/marketplace"
	"decentrashop/storage"
)

// Module namespaces used for vault derivation and pending-balance books.
const (
	ModuleEscrow      = "escrow"
	ModuleMarketplace = "market"
	ModuleLedger      = "ledger"
	ModuleFidelity    = "fidelity"
)

// ErrInvalidOwner indicates an ownership transfer to the zero address.
var ErrInvalidOwner = errors.New("node: new owner must not be the zero address")

const (
	EventTypeOwnershipTransferred = "node.ownership.transferred"
	EventTypeConfigUpdated        = "node.config.updated"
)

// Parameter names under which owner setters persist their overrides.
// Stored values take precedence over the TOML configuration on restart.
const (
	paramSupplier      = "market/supplier"
	paramBeneficiary   = "market/beneficiary"
	paramStakingPeriod = "fidelity/staking-period"
)

func paramMinPrice(module string) string {
	return "min-price/" + module
}

type nodeEvent struct {
	evt *types.Event
}

func (e nodeEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e nodeEvent) Event() *types.Event { return e.evt }

// Node is the central controller, wiring the state manager and settlement
// engines together. Every entry point runs under one mutex, which is the
// atomic call boundary the engines rely on; caller identity is an explicit
// parameter checked before any state changes.
type Node struct {
	mu      sync.Mutex
	db      storage.Database
	state   *state.Manager
	emitter events.Emitter

	owner [20]byte

	escrowEngine *escrow.Engine
	marketEngine *marketplace.Engine
	bankEngine   *ledger.Engine
	fidelity     *fidelity.Engine

	devWallet      [20]byte
	treasuryWallet [20]byte
	arbitrator     [20]byte

	bankIncentiveOpen bool
}

// NewNode builds a node from the provided configuration, applying genesis
// allocations on a fresh database.
func NewNode(db storage.Database, cfg config.Config, emitter events.Emitter) (*Node, error) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	manager := state.NewManager(db)

	if err := applyGenesis(manager, cfg.Genesis); err != nil {
		return nil, err
	}

	n := &Node{
		db:      db,
		state:   manager,
		emitter: emitter,
	}
	if err := n.loadOwner(cfg); err != nil {
		return nil, err
	}
	if err := n.buildEngines(cfg); err != nil {
		return nil, err
	}
	return n, nil
}

func applyGenesis(manager *state.Manager, genesis config.Genesis) error {
	applied, err := manager.GenesisApplied()
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	for _, alloc := range genesis.Alloc {
		addr, err := config.ParseAddress(alloc.Address)
		if err != nil {
			return fmt.Errorf("node: genesis allocation: %w", err)
		}
		balance, err := config.ParseAmount(alloc.Balance)
		if err != nil {
			return fmt.Errorf("node: genesis allocation: %w", err)
		}
		asset, err := ledger.NormalizeAsset(alloc.Asset)
		if err != nil {
			return fmt.Errorf("node: genesis allocation: %w", err)
		}
		if err := manager.SetBalance(asset, addr, balance); err != nil {
			return err
		}
	}
	return manager.MarkGenesisApplied()
}

func (n *Node) loadOwner(cfg config.Config) error {
	stored, ok, err := n.state.Owner()
	if err != nil {
		return err
	}
	if ok {
		n.owner = stored
		return nil
	}
	owner, err := config.ParseAddress(cfg.Escrow.Owner)
	if err != nil {
		return err
	}
	n.owner = owner
	return n.state.SetOwner(owner)
}

func (n *Node) buildEngines(cfg config.Config) error {
	dev, err := config.ParseAddress(cfg.Escrow.DevWallet)
	if err != nil {
		return err
	}
	treasury, err := config.ParseAddress(cfg.Escrow.TreasuryWallet)
	if err != nil {
		return err
	}
	arbitrator, err := config.ParseAddress(cfg.Escrow.Arbitrator)
	if err != nil {
		return err
	}
	n.devWallet, n.treasuryWallet, n.arbitrator = dev, treasury, arbitrator

	escrowLedger, err := ledger.New(ModuleEscrow, cfg.Escrow.Asset)
	if err != nil {
		return err
	}
	escrowLedger.SetState(n.state)
	escrowLedger.SetEmitter(n.emitter)

	n.escrowEngine = escrow.NewEngine(escrowLedger)
	n.escrowEngine.SetState(n.state)
	n.escrowEngine.SetEmitter(n.emitter)
	if err := n.escrowEngine.SetRates(fees.Rates{
		DeveloperBps: cfg.Escrow.DevFeeBps,
		TreasuryBps:  cfg.Escrow.TreasuryFeeBps,
	}); err != nil {
		return err
	}
	minOrderPrice, err := config.ParseAmount(cfg.Escrow.MinOrderPrice)
	if err != nil {
		return err
	}
	n.escrowEngine.SetMinOrderPrice(minOrderPrice)
	disputeFee, err := config.ParseAmount(cfg.Escrow.DisputeFee)
	if err != nil {
		return err
	}
	n.escrowEngine.SetDisputeFee(disputeFee)
	n.escrowEngine.SetWallets(dev, treasury, arbitrator)

	marketLedger, err := ledger.New(ModuleMarketplace, cfg.Marketplace.Asset)
	if err != nil {
		return err
	}
	marketLedger.SetState(n.state)
	marketLedger.SetEmitter(n.emitter)

	n.marketEngine = marketplace.NewEngine(marketLedger)
	n.marketEngine.SetEmitter(n.emitter)
	if err := n.marketEngine.SetRates(fees.Rates{
		DeveloperBps: cfg.Escrow.DevFeeBps,
		TreasuryBps:  cfg.Escrow.TreasuryFeeBps,
		IncentiveBps: cfg.Marketplace.IncentiveFeeBps,
	}); err != nil {
		return err
	}
	minProductPrice, err := config.ParseAmount(cfg.Marketplace.MinProductPrice)
	if err != nil {
		return err
	}
	n.marketEngine.SetMinProductPrice(minProductPrice)
	supplier, err := config.ParseAddress(cfg.Marketplace.Supplier)
	if err != nil {
		return err
	}
	n.marketEngine.SetSupplier(supplier)
	seller, err := config.ParseAddress(cfg.Marketplace.Seller)
	if err != nil {
		return err
	}
	n.marketEngine.SetSeller(seller)
	incentiveWallet, err := config.ParseAddress(cfg.Marketplace.IncentiveWallet)
	if err != nil {
		return err
	}
	n.marketEngine.SetWallets(dev, treasury, incentiveWallet)

	bankLedger, err := ledger.New(ModuleLedger, cfg.Ledger.Asset)
	if err != nil {
		return err
	}
	bankLedger.SetState(n.state)
	bankLedger.SetEmitter(n.emitter)

	n.bankEngine = ledger.NewEngine(bankLedger)
	bankMin, err := config.ParseAmount(cfg.Ledger.MinOrderPrice)
	if err != nil {
		return err
	}
	n.bankEngine.SetMinOrderPrice(bankMin)
	if err := n.bankEngine.SetBatchIncentive(cfg.Ledger.BatchIncentive, cfg.Ledger.BatchIncentiveBps); err != nil {
		return err
	}
	n.bankIncentiveOpen = cfg.Ledger.BatchIncentive

	fidelityLedger, err := ledger.New(ModuleFidelity, ledger.AssetDXS)
	if err != nil {
		return err
	}
	fidelityLedger.SetState(n.state)
	fidelityLedger.SetEmitter(n.emitter)

	n.fidelity = fidelity.NewEngine(fidelityLedger)
	n.fidelity.SetState(n.state)
	n.fidelity.SetEmitter(n.emitter)
	if err := n.fidelity.SetStakingPeriod(cfg.Fidelity.StakingPeriodSeconds); err != nil {
		return err
	}
	return n.applyStoredParams()
}

// applyStoredParams overlays persisted owner-setter overrides on top of
// the TOML-derived engine configuration, so administrative changes made
// at runtime survive a restart.
func (n *Node) applyStoredParams() error {
	if price, ok, err := n.state.ParamAmount(paramMinPrice(ModuleEscrow)); err != nil {
		return err
	} else if ok {
		n.escrowEngine.SetMinOrderPrice(price)
	}
	if price, ok, err := n.state.ParamAmount(paramMinPrice(ModuleMarketplace)); err != nil {
		return err
	} else if ok {
		n.marketEngine.SetMinProductPrice(price)
	}
	if price, ok, err := n.state.ParamAmount(paramMinPrice(ModuleLedger)); err != nil {
		return err
	} else if ok {
		n.bankEngine.SetMinOrderPrice(price)
	}
	if supplier, ok, err := n.state.ParamAddress(paramSupplier); err != nil {
		return err
	} else if ok {
		n.marketEngine.SetSupplier(supplier)
	}
	if seller, ok, err := n.state.ParamAddress(paramBeneficiary); err != nil {
		return err
	} else if ok {
		n.marketEngine.SetSeller(seller)
	}
	if seconds, ok, err := n.state.ParamUint(paramStakingPeriod); err != nil {
		return err
	} else if ok {
		if err := n.fidelity.SetStakingPeriod(int64(seconds)); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) emit(event *types.Event) {
	if n.emitter == nil || event == nil {
		return
	}
	n.emitter.Emit(nodeEvent{evt: event})
}

func (n *Node) requireOwner(caller [20]byte) error {
	if caller != n.owner {
		return ledger.ErrUnauthorized
	}
	return nil
}

// Owner returns the current owner address.
func (n *Node) Owner() [20]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.owner
}

// TransferOwnership hands administrative control to a new non-zero owner.
func (n *Node) TransferOwnership(caller, newOwner [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return err
	}
	if newOwner == ([20]byte{}) {
		return ErrInvalidOwner
	}
	previous := n.owner
	n.owner = newOwner
	if err := n.state.SetOwner(newOwner); err != nil {
		n.owner = previous
		return err
	}
	n.emit(&types.Event{Type: EventTypeOwnershipTransferred, Attributes: map[string]string{
		"previous": fmt.Sprintf("%x", previous),
		"current":  fmt.Sprintf("%x", newOwner),
	}})
	return nil
}

// --- Escrow order lifecycle ---

// CreateOrders records a funded batch of escrow orders.
func (n *Node) CreateOrders(buyer [20]byte, ids []uint64, sellers [][20]byte, prices []*big.Int, attached *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.escrowEngine.CreateOrders(buyer, ids, sellers, prices, attached)
}

// ConfirmDelivery settles an escrow order.
func (n *Node) ConfirmDelivery(id uint64, caller [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.escrowEngine.ConfirmDelivery(id, caller)
}

// BatchConfirmDelivery settles several escrow orders atomically.
func (n *Node) BatchConfirmDelivery(ids []uint64, caller [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.escrowEngine.BatchConfirmDelivery(ids, caller)
}

// OpenDispute escalates an escrow order to arbitration.
func (n *Node) OpenDispute(id uint64, caller [20]byte, fee *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.escrowEngine.OpenDispute(id, caller, fee)
}

// GetOrder returns the stored escrow order.
func (n *Node) GetOrder(id uint64) (*escrow.Order, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	order, err := n.escrowEngine.Get(id)
	if err != nil {
		return nil, err
	}
	return order.Clone(), nil
}

// Withdraw pays out the caller's escrow pending balance.
func (n *Node) Withdraw(caller [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.escrowEngine.Ledger().Withdraw(caller)
}

// WithdrawDev pays out the developer share. Only the developer wallet may
// trigger it.
func (n *Node) WithdrawDev(caller [20]byte) (*big.Int, error) {
	return n.withdrawRole(caller, func() [20]byte { return n.devWallet })
}

// WithdrawTreasury pays out the treasury share. Only the treasury wallet
// may trigger it.
func (n *Node) WithdrawTreasury(caller [20]byte) (*big.Int, error) {
	return n.withdrawRole(caller, func() [20]byte { return n.treasuryWallet })
}

// WithdrawArbitrator pays out accumulated dispute fees. Only the
// arbitrator may trigger it.
func (n *Node) WithdrawArbitrator(caller [20]byte) (*big.Int, error) {
	return n.withdrawRole(caller, func() [20]byte { return n.arbitrator })
}

func (n *Node) withdrawRole(caller [20]byte, wallet func() [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	expected := wallet()
	if caller != expected {
		return nil, ledger.ErrUnauthorized
	}
	return n.escrowEngine.Ledger().Withdraw(expected)
}

// EscrowPendingBalance returns the escrow pull-payment balance owed to addr.
func (n *Node) EscrowPendingBalance(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.escrowEngine.Ledger().Balance(addr)
}

// --- Marketplace buy-now flow ---

// BuyProduct settles a single marketplace purchase.
func (n *Node) BuyProduct(buyer [20]byte, marginPct uint32, amount *big.Int) (fees.MarginSplit, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marketEngine.BuyProduct(buyer, marginPct, amount)
}

// MarketWithdrawAllBalances pays out every marketplace stakeholder.
// Owner only.
func (n *Node) MarketWithdrawAllBalances(caller [20]byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return 0, err
	}
	return n.marketEngine.Ledger().WithdrawAll()
}

// MarketPendingBalance returns the marketplace balance owed to addr.
func (n *Node) MarketPendingBalance(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marketEngine.Ledger().Balance(addr)
}

// --- Generic deposit ledger (piggy bank) ---

// MakeOrder records a buyer deposit in the generic ledger.
func (n *Node) MakeOrder(buyer [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bankEngine.MakeOrder(buyer, amount)
}

// PaySeller settles a deposit to a seller. Owner only.
func (n *Node) PaySeller(caller, buyer, seller [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return err
	}
	return n.bankEngine.PaySeller(buyer, seller, amount)
}

// Refund returns a deposit to its buyer. Owner only.
func (n *Node) Refund(caller, buyer [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return err
	}
	return n.bankEngine.Refund(buyer, amount)
}

// BatchPaySeller settles several deposits in one call. With the incentive
// rule enabled any caller may trigger it and is compensated for skipped
// underfunded pairs; otherwise it stays owner only.
func (n *Node) BatchPaySeller(caller [20]byte, buyers, sellers [][20]byte, amounts []*big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.bankIncentiveOpen {
		if err := n.requireOwner(caller); err != nil {
			return err
		}
	}
	return n.bankEngine.BatchPaySeller(caller, buyers, sellers, amounts)
}

// LedgerPendingBalance returns the generic-ledger balance owed to addr.
func (n *Node) LedgerPendingBalance(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bankEngine.Ledger().Balance(addr)
}

// --- Fidelity staking ---

// Stake locks tokens for the holder.
func (n *Node) Stake(holder [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fidelity.Stake(holder, amount)
}

// Unstake releases the holder's full position once the lock elapsed.
func (n *Node) Unstake(holder [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fidelity.Unstake(holder)
}

// StakedAmount returns the holder's locked amount, zero when no stake is
// active.
func (n *Node) StakedAmount(holder [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	stake, err := n.fidelity.StakeOf(holder)
	if err != nil {
		if errors.Is(err, fidelity.ErrNoStake) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return new(big.Int).Set(stake.Amount), nil
}

// SetStakingPeriod updates the fidelity lock period. Owner only. The
// period is persisted and survives a restart.
func (n *Node) SetStakingPeriod(caller [20]byte, seconds int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return err
	}
	previous := n.fidelity.StakingPeriod()
	if err := n.fidelity.SetStakingPeriod(seconds); err != nil {
		return err
	}
	if err := n.state.ParamPutUint(paramStakingPeriod, uint64(seconds)); err != nil {
		_ = n.fidelity.SetStakingPeriod(previous)
		return err
	}
	return nil
}

// StakingPeriod returns the fidelity lock period in seconds.
func (n *Node) StakingPeriod() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fidelity.StakingPeriod()
}

// --- Administrative configuration ---

// SetMinimumPrice updates the price floor of the named module. Owner
// only. The floor is persisted and survives a restart.
func (n *Node) SetMinimumPrice(caller [20]byte, module string, price *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return err
	}
	if price == nil || price.Sign() < 0 {
		return fmt.Errorf("node: minimum price must be non-negative")
	}
	var apply func()
	switch module {
	case ModuleEscrow:
		apply = func() { n.escrowEngine.SetMinOrderPrice(price) }
	case ModuleMarketplace:
		apply = func() { n.marketEngine.SetMinProductPrice(price) }
	case ModuleLedger:
		apply = func() { n.bankEngine.SetMinOrderPrice(price) }
	default:
		return fmt.Errorf("node: unknown module %q", module)
	}
	if err := n.state.ParamPutAmount(paramMinPrice(module), price); err != nil {
		return err
	}
	apply()
	n.emitConfigUpdated("minimumPrice", module+":"+price.String())
	return nil
}

// SetSupplier updates the marketplace supplier. Owner only. The address
// is persisted and survives a restart.
func (n *Node) SetSupplier(caller, supplier [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return err
	}
	if err := n.state.ParamPutAddress(paramSupplier, supplier); err != nil {
		return err
	}
	n.marketEngine.SetSupplier(supplier)
	n.emitConfigUpdated("supplier", fmt.Sprintf("%x", supplier))
	return nil
}

// SetBeneficiary updates the marketplace margin beneficiary. Owner only.
// The address is persisted and survives a restart.
func (n *Node) SetBeneficiary(caller, seller [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return err
	}
	if err := n.state.ParamPutAddress(paramBeneficiary, seller); err != nil {
		return err
	}
	n.marketEngine.SetSeller(seller)
	n.emitConfigUpdated("beneficiary", fmt.Sprintf("%x", seller))
	return nil
}

func (n *Node) emitConfigUpdated(field, value string) {
	n.emit(&types.Event{Type: EventTypeConfigUpdated, Attributes: map[string]string{
		"field": field,
		"value": value,
	}})
}

// Sweep transfers stray value out of the named module vault to the
// recipient. Owner only; covers value sent to a vault outside any order.
// Funds backing open obligations are off limits: undelivered escrow
// collateral, locked stakes and the module's unwithdrawn pending book
// stay in the vault, and only the surplus above them is swept.
func (n *Node) Sweep(caller [20]byte, module, asset string, to [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.requireOwner(caller); err != nil {
		return nil, err
	}
	normalized, err := ledger.NormalizeAsset(asset)
	if err != nil {
		return nil, err
	}
	moduleLedger := n.moduleLedger(module)
	if moduleLedger == nil {
		return nil, fmt.Errorf("node: unknown module %q", module)
	}
	vault, err := n.state.VaultAddress(module)
	if err != nil {
		return nil, err
	}
	balance, err := n.state.Balance(normalized, vault)
	if err != nil {
		return nil, err
	}
	sweepable := new(big.Int).Set(balance)
	if normalized == moduleLedger.Asset() {
		reserved, err := n.reservedFunds(module)
		if err != nil {
			return nil, err
		}
		sweepable.Sub(sweepable, reserved)
	}
	if sweepable.Sign() <= 0 {
		return nil, ledger.ErrNothingToWithdraw
	}
	if err := n.state.Transfer(normalized, vault, to, sweepable); err != nil {
		return nil, err
	}
	n.emitConfigUpdated("sweep", module+":"+sweepable.String())
	return sweepable, nil
}

func (n *Node) moduleLedger(module string) *ledger.Ledger {
	switch module {
	case ModuleEscrow:
		return n.escrowEngine.Ledger()
	case ModuleMarketplace:
		return n.marketEngine.Ledger()
	case ModuleLedger:
		return n.bankEngine.Ledger()
	case ModuleFidelity:
		return n.fidelity.Ledger()
	}
	return nil
}

// reservedFunds totals a module's open obligations in its settlement
// asset: every unwithdrawn pending balance, plus the collateral of
// undelivered escrow orders, plus locked fidelity stakes.
func (n *Node) reservedFunds(module string) (*big.Int, error) {
	reserved := big.NewInt(0)
	addrs, err := n.state.PendingAddresses(module)
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		pending, err := n.state.PendingBalance(module, addr)
		if err != nil {
			return nil, err
		}
		reserved.Add(reserved, pending)
	}
	switch module {
	case ModuleEscrow:
		ids, err := n.state.OrderIDs()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			order, ok, err := n.state.OrderGet(id)
			if err != nil {
				return nil, err
			}
			if ok && !order.Delivered {
				reserved.Add(reserved, order.Price)
			}
		}
	case ModuleFidelity:
		holders, err := n.state.StakeAddresses()
		if err != nil {
			return nil, err
		}
		for _, holder := range holders {
			stake, ok, err := n.state.StakeGet(holder)
			if err != nil {
				return nil, err
			}
			if ok {
				reserved.Add(reserved, stake.Amount)
			}
		}
	}
	return reserved, nil
}

// --- Token and account views ---

// BalanceOf returns addr's spendable balance in the given asset.
func (n *Node) BalanceOf(asset string, addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	normalized, err := ledger.NormalizeAsset(asset)
	if err != nil {
		return nil, err
	}
	return n.state.Balance(normalized, addr)
}

// Approve grants spender an allowance over the owner's token balance.
func (n *Node) Approve(owner, spender [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.Approve(ledger.AssetDXS, owner, spender, amount)
}

// Allowance returns the remaining token allowance.
func (n *Node) Allowance(owner, spender [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.Allowance(ledger.AssetDXS, owner, spender)
}

// TokenTransfer moves tokens between spendable balances.
func (n *Node) TokenTransfer(from, to [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.Transfer(ledger.AssetDXS, from, to, amount)
}

// VaultAddress exposes the deterministic custody address for a module.
func (n *Node) VaultAddress(module string) ([20]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.VaultAddress(module)
}
