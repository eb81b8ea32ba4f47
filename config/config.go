package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// Config is the full node configuration, loaded from TOML with defaults
// applied for every omitted field.
type Config struct {
	Node        Node        `toml:"node"`
	Escrow      Escrow      `toml:"escrow"`
	Marketplace Marketplace `toml:"marketplace"`
	Ledger      Ledger      `toml:"ledger"`
	Fidelity    Fidelity    `toml:"fidelity"`
	Genesis     Genesis     `toml:"genesis"`
}

type Node struct {
	RPCAddress  string `toml:"RPCAddress"`
	DataDir     string `toml:"DataDir"`
	NetworkName string `toml:"NetworkName"`
	LogFile     string `toml:"LogFile"`

	// RPCRateLimitPerMinute throttles JSON-RPC requests per client
	// address; zero disables throttling.
	RPCRateLimitPerMinute float64 `toml:"RPCRateLimitPerMinute"`
	RPCRateBurst          int     `toml:"RPCRateBurst"`
}

// Escrow configures the order-ledger engine. Amounts are decimal strings
// in the asset's base unit; addresses are 0x-prefixed hex.
type Escrow struct {
	DevFeeBps      uint32 `toml:"DevFeeBps"`
	TreasuryFeeBps uint32 `toml:"TreasuryFeeBps"`
	MinOrderPrice  string `toml:"MinOrderPrice"`
	DisputeFee     string `toml:"DisputeFee"`
	Owner          string `toml:"Owner"`
	DevWallet      string `toml:"DevWallet"`
	TreasuryWallet string `toml:"TreasuryWallet"`
	Arbitrator     string `toml:"Arbitrator"`
	Asset          string `toml:"Asset"`
}

type Marketplace struct {
	IncentiveFeeBps uint32 `toml:"IncentiveFeeBps"`
	MinProductPrice string `toml:"MinProductPrice"`
	Supplier        string `toml:"Supplier"`
	Seller          string `toml:"Seller"`
	IncentiveWallet string `toml:"IncentiveWallet"`
	Asset           string `toml:"Asset"`
}

type Ledger struct {
	MinOrderPrice     string `toml:"MinOrderPrice"`
	BatchIncentive    bool   `toml:"BatchIncentive"`
	BatchIncentiveBps uint32 `toml:"BatchIncentiveBps"`
	Asset             string `toml:"Asset"`
}

type Fidelity struct {
	StakingPeriodSeconds int64 `toml:"StakingPeriodSeconds"`
}

// Genesis lists the balances written to a fresh database on first start.
type Genesis struct {
	Alloc []GenesisAccount `toml:"alloc"`
}

type GenesisAccount struct {
	Address string `toml:"Address"`
	Asset   string `toml:"Asset"`
	Balance string `toml:"Balance"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Node: Node{
			RPCAddress:            ":8545",
			DataDir:               "./decentrashop-data",
			NetworkName:           "decentrashop-local",
			RPCRateLimitPerMinute: 600,
			RPCRateBurst:          50,
		},
		Escrow: Escrow{
			DevFeeBps:      100,
			TreasuryFeeBps: 250,
			MinOrderPrice:  "0",
			DisputeFee:     "0",
			Asset:          "DSH",
		},
		Marketplace: Marketplace{
			IncentiveFeeBps: 0,
			MinProductPrice: "0",
			Asset:           "DSH",
		},
		Ledger: Ledger{
			MinOrderPrice:     "0",
			BatchIncentive:    false,
			BatchIncentiveBps: 9450,
			Asset:             "DSH",
		},
		Fidelity: Fidelity{
			StakingPeriodSeconds: 30 * 24 * 60 * 60,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file
// is not an error; the defaults are returned instead.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

const maxStakingPeriodSeconds = 60 * 24 * 60 * 60

// Validate checks field ranges. It does not require the wallet addresses
// to be set; a zero wallet simply accumulates its share at the zero
// address until configured.
func (c Config) Validate() error {
	if c.Node.RPCRateLimitPerMinute < 0 || c.Node.RPCRateBurst < 0 {
		return fmt.Errorf("config: rpc rate limit values must be non-negative")
	}
	if c.Escrow.DevFeeBps > 10_000 || c.Escrow.TreasuryFeeBps > 10_000 {
		return fmt.Errorf("config: escrow fee rates must each be at most 10000 bps")
	}
	if c.Escrow.DevFeeBps+c.Escrow.TreasuryFeeBps > 10_000 {
		return fmt.Errorf("config: escrow fee rates must sum to at most 10000 bps")
	}
	if c.Marketplace.IncentiveFeeBps > 10_000 {
		return fmt.Errorf("config: marketplace incentive rate must be at most 10000 bps")
	}
	if c.Ledger.BatchIncentiveBps > 10_000 {
		return fmt.Errorf("config: ledger batch incentive rate must be at most 10000 bps")
	}
	if c.Fidelity.StakingPeriodSeconds <= 0 {
		return fmt.Errorf("config: staking period must be positive")
	}
	if c.Fidelity.StakingPeriodSeconds > maxStakingPeriodSeconds {
		return fmt.Errorf("config: staking period must be at most %d seconds", maxStakingPeriodSeconds)
	}
	for _, field := range []struct {
		name, value string
	}{
		{"escrow.MinOrderPrice", c.Escrow.MinOrderPrice},
		{"escrow.DisputeFee", c.Escrow.DisputeFee},
		{"marketplace.MinProductPrice", c.Marketplace.MinProductPrice},
		{"ledger.MinOrderPrice", c.Ledger.MinOrderPrice},
	} {
		if _, err := ParseAmount(field.value); err != nil {
			return fmt.Errorf("config: %s: %w", field.name, err)
		}
	}
	for _, field := range []struct {
		name, value string
	}{
		{"escrow.Owner", c.Escrow.Owner},
		{"escrow.DevWallet", c.Escrow.DevWallet},
		{"escrow.TreasuryWallet", c.Escrow.TreasuryWallet},
		{"escrow.Arbitrator", c.Escrow.Arbitrator},
		{"marketplace.Supplier", c.Marketplace.Supplier},
		{"marketplace.Seller", c.Marketplace.Seller},
		{"marketplace.IncentiveWallet", c.Marketplace.IncentiveWallet},
	} {
		if _, err := ParseAddress(field.value); err != nil {
			return fmt.Errorf("config: %s: %w", field.name, err)
		}
	}
	for i, alloc := range c.Genesis.Alloc {
		if _, err := ParseAddress(alloc.Address); err != nil {
			return fmt.Errorf("config: genesis.alloc[%d].Address: %w", i, err)
		}
		if _, err := ParseAmount(alloc.Balance); err != nil {
			return fmt.Errorf("config: genesis.alloc[%d].Balance: %w", i, err)
		}
	}
	return nil
}

// ParseAddress decodes a 0x-prefixed hex address. The empty string decodes
// to the zero address.
func ParseAddress(value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return [20]byte{}, nil
	}
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("invalid address %q", value)
	}
	return [20]byte(common.HexToAddress(trimmed)), nil
}

// ParseAmount decodes a non-negative decimal amount in base units. The
// empty string decodes to zero.
func ParseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must be non-negative", value)
	}
	return amount, nil
}
