package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, uint32(100), cfg.Escrow.DevFeeBps)
	require.Equal(t, uint32(250), cfg.Escrow.TreasuryFeeBps)
	require.Equal(t, uint32(9450), cfg.Ledger.BatchIncentiveBps)
	require.Equal(t, int64(30*24*60*60), cfg.Fidelity.StakingPeriodSeconds)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[node]
RPCAddress = ":9000"
NetworkName = "decentrashop-test"

[escrow]
DevFeeBps = 150
MinOrderPrice = "1000"
Owner = "0x00000000000000000000000000000000000000aa"

[ledger]
BatchIncentive = true

[fidelity]
StakingPeriodSeconds = 86400

[[genesis.alloc]]
Address = "0x00000000000000000000000000000000000000bb"
Asset = "DSH"
Balance = "5000000"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Node.RPCAddress)
	require.Equal(t, uint32(150), cfg.Escrow.DevFeeBps)
	require.Equal(t, uint32(250), cfg.Escrow.TreasuryFeeBps)
	require.True(t, cfg.Ledger.BatchIncentive)
	require.Equal(t, int64(86400), cfg.Fidelity.StakingPeriodSeconds)
	require.Len(t, cfg.Genesis.Alloc, 1)

	owner, err := ParseAddress(cfg.Escrow.Owner)
	require.NoError(t, err)
	require.Equal(t, byte(0xaa), owner[19])
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Escrow.DevFeeBps = 10_001
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Escrow.DevFeeBps = 6_000
	cfg.Escrow.TreasuryFeeBps = 5_000
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Fidelity.StakingPeriodSeconds = 61 * 24 * 60 * 60
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Escrow.MinOrderPrice = "not-a-number"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Escrow.Owner = "0x1234"
	require.Error(t, cfg.Validate())
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("")
	require.NoError(t, err)
	require.Zero(t, amount.Sign())

	amount, err = ParseAmount("3000000000000000000")
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("3000000000000000000", 10)
	require.Zero(t, amount.Cmp(want))

	_, err = ParseAmount("-1")
	require.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("")
	require.NoError(t, err)
	require.Equal(t, [20]byte{}, addr)

	_, err = ParseAddress("bogus")
	require.Error(t, err)

	addr, err = ParseAddress("0x00000000000000000000000000000000000000Cc")
	require.NoError(t, err)
	require.Equal(t, byte(0xcc), addr[19])
}
