package refdata

import "github.com/swapstats/revenue-api/internal/fees"

// manualAssets holds curated definitions for tokens not yet in the main
// registry, keyed by lower-cased asset id. Add entries only with a verified
// decimal count.
var manualAssets = map[string]fees.StaticAsset{
	// Bridged USDT on MAP Protocol. 18 decimals is unusual for USDT but
	// verified on-chain.
	"eip155:22776/erc20:0x33daba9618a75a7aff103e53afe530fbacf4a3dd": {
		AssetID:   "eip155:22776/erc20:0x33daba9618a75a7aff103e53afe530fbacf4a3dd",
		ChainID:   "eip155:22776",
		Symbol:    "USDT",
		Name:      "Map Bridged USDT",
		Precision: 18,
		Color:     "#26A17B",
		Icon:      "https://assets.coingecko.com/coins/images/325/large/Tether.png",
	},
	// Avalanche C-Chain token with an unverified decimal count.
	// TODO: verify the actual decimals if this token keeps generating revenue
	"eip155:43114/erc20:0x230c4ad11510360ad0db564a889c33559a959487": {
		AssetID:   "eip155:43114/erc20:0x230c4ad11510360ad0db564a889c33559a959487",
		ChainID:   "eip155:43114",
		Symbol:    "UNKNOWN",
		Name:      "Unknown Avalanche Token",
		Precision: 18,
		Color:     "#CCCCCC",
	},
}
