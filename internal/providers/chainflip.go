package providers

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/fees"
)

// chainflipEarningsResponse is the broker affiliate-earnings feed. Earnings
// arrive as finished USD figures per settlement; there is no per-swap
// on-chain amount, which is why chainflip sits on the preserve-USD list.
type chainflipEarningsResponse struct {
	Earnings []struct {
		Timestamp int64  `json:"timestamp"`
		Asset     string `json:"asset"`
		AmountUSD string `json:"amountUsd"`
	} `json:"earnings"`
}

// chainflipAssets maps the broker's asset symbols to canonical ids.
var chainflipAssets = map[string]struct{ chainID, assetID string }{
	"ETH":  {"eip155:1", "eip155:1/slip44:60"},
	"USDC": {"eip155:1", "eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
	"FLIP": {"eip155:1", "eip155:1/erc20:0x826180541412d574cf1336d22c0c0a287822678a"},
	"BTC":  {"bip122:000000000019d6689c085ae165831e93", "bip122:000000000019d6689c085ae165831e93/slip44:0"},
	"DOT":  {"polkadot:91b171bb158e2d3848fa23a9f1c25182", "polkadot:91b171bb158e2d3848fa23a9f1c25182/slip44:354"},
	"SOL":  {"solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp", "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp/slip44:501"},
}

// ChainflipFetcher reads broker affiliate earnings. The feed has no
// transaction hashes, so records get deterministic synthetic ones.
type ChainflipFetcher struct {
	http *httpclient.HTTPClient
}

// NewChainflipFetcher builds the chainflip adapter.
func NewChainflipFetcher(baseURL string) *ChainflipFetcher {
	return &ChainflipFetcher{
		http: httpclient.NewHTTPClient(httpclient.WithBaseURL(baseURL)),
	}
}

func (f *ChainflipFetcher) Service() string { return "chainflip" }
func (f *ChainflipFetcher) ChainID() string { return "all" }

// FetchRaw returns the window's affiliate earnings.
func (f *ChainflipFetcher) FetchRaw(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error) {
	var payload chainflipEarningsResponse
	err := f.http.GetJSON(ctx, "/affiliates/earnings", &payload,
		httpclient.WithQueryParam("start", strconv.FormatInt(startTimestamp, 10)),
		httpclient.WithQueryParam("end", strconv.FormatInt(endTimestamp, 10)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "fetching chainflip earnings")
	}

	list := make([]fees.Fee, 0, len(payload.Earnings))
	for _, earning := range payload.Earnings {
		asset, ok := chainflipAssets[earning.Asset]
		if !ok {
			continue
		}
		list = append(list, fees.Fee{
			ChainID:   asset.chainID,
			AssetID:   asset.assetID,
			Service:   "chainflip",
			TxHash:    fees.SyntheticTxHash("chainflip", asset.assetID, earning.Timestamp),
			Timestamp: earning.Timestamp,
			// the broker settles fees off-chain; there is no smallest-unit
			// amount to report
			Amount:    "0",
			AmountUSD: earning.AmountUSD,
		})
	}
	return list, nil
}
