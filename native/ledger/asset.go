package ledger

import (
	"fmt"
	"strings"
)

// AssetDSH is the native settlement asset; AssetDXS is the marketplace
// token, which settles through an allowance-gated transfer that can fail.
const (
	AssetDSH = "DSH"
	AssetDXS = "DXS"
)

// NormalizeAsset ensures the provided asset symbol matches a supported
// value and returns the canonical uppercase form.
func NormalizeAsset(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	switch trimmed {
	case AssetDSH, AssetDXS:
		return trimmed, nil
	default:
		return "", fmt.Errorf("unsupported settlement asset: %s", symbol)
	}
}

// IsToken reports whether the asset settles through the token ledger
// (allowance + transferFrom) rather than the native balance transfer.
func IsToken(asset string) bool {
	return asset == AssetDXS
}
