package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/fees"
	"github.com/swapstats/revenue-api/internal/logger"
)

// daoTreasuryBase receives the affiliate share of relay app fees.
const daoTreasuryBase = "0x38276553f8fbf2a027d901f8be45f00373d8dd48"

const relayPageLimit = 50

// relayEVMChains maps relay's numeric chain ids to CAIP-2 namespaces.
var relayEVMChains = map[int64]string{
	1:     "eip155:1",
	10:    "eip155:10",
	56:    "eip155:56",
	100:   "eip155:100",
	137:   "eip155:137",
	8453:  "eip155:8453",
	42161: "eip155:42161",
	43114: "eip155:43114",
}

type relayCurrency struct {
	ChainID int64  `json:"chainId"`
	Address string `json:"address"`
}

type relayAppFee struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amountUsd"`
}

type relayRequest struct {
	CreatedAt string `json:"createdAt"`
	Data      struct {
		AppFees           []relayAppFee  `json:"appFees"`
		FeeCurrencyObject *relayCurrency `json:"feeCurrencyObject"`
		Metadata          *struct {
			CurrencyIn *struct {
				Currency *relayCurrency `json:"currency"`
			} `json:"currencyIn"`
		} `json:"metadata"`
		InTxs []struct {
			Hash string `json:"hash"`
		} `json:"inTxs"`
	} `json:"data"`
}

type relayResponse struct {
	Requests     []relayRequest `json:"requests"`
	Continuation string         `json:"continuation"`
}

// RelayFetcher pages through relay's request feed and keeps the app fees
// paid to the DAO treasury. Relay spans many EVM chains, so cache entries
// use the "all" chain scope.
type RelayFetcher struct {
	http      *httpclient.HTTPClient
	referrer  string
	pageDelay time.Duration
	log       *zap.Logger
}

// NewRelayFetcher builds the relay adapter.
func NewRelayFetcher(baseURL, referrer string, pageDelay time.Duration) *RelayFetcher {
	return &RelayFetcher{
		http:      httpclient.NewHTTPClient(httpclient.WithBaseURL(baseURL)),
		referrer:  referrer,
		pageDelay: pageDelay,
		log:       logger.Log.Named("relay"),
	}
}

func (f *RelayFetcher) Service() string { return "relay" }
func (f *RelayFetcher) ChainID() string { return "all" }

// FetchRaw follows continuation tokens until the feed is exhausted,
// honoring a fixed inter-page delay. A fetch error on any page fails the
// whole window; only a malformed page (missing requests array) ends
// pagination early with the accumulated fees.
func (f *RelayFetcher) FetchRaw(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error) {
	var collected []fees.Fee
	continuation := ""

	for {
		options := []httpclient.RequestOption{
			httpclient.WithQueryParam("referrer", f.referrer),
			httpclient.WithQueryParam("startTimestamp", strconv.FormatInt(startTimestamp, 10)),
			httpclient.WithQueryParam("endTimestamp", strconv.FormatInt(endTimestamp, 10)),
			httpclient.WithQueryParam("status", "success"),
			httpclient.WithQueryParam("limit", strconv.Itoa(relayPageLimit)),
		}
		if continuation != "" {
			options = append(options, httpclient.WithQueryParam("continuation", continuation))
		}

		var page relayResponse
		if err := f.http.GetJSON(ctx, "/requests/v2", &page, options...); err != nil {
			// a transport or HTTP failure anywhere in the window makes the
			// whole fetch fail; a partial day must never be cached as complete
			return nil, err
		}

		if page.Requests == nil {
			f.log.Warn("malformed relay page, ending pagination early",
				zap.Int("collected", len(collected)))
			return collected, nil
		}

		for _, request := range page.Requests {
			collected = append(collected, f.transformRequest(request)...)
		}

		continuation = page.Continuation
		if continuation == "" {
			return collected, nil
		}

		select {
		case <-time.After(f.pageDelay):
		case <-ctx.Done():
			return collected, ctx.Err()
		}
	}
}

func (f *RelayFetcher) transformRequest(request relayRequest) []fees.Fee {
	var relevant []relayAppFee
	for _, appFee := range request.Data.AppFees {
		if strings.EqualFold(appFee.Recipient, daoTreasuryBase) {
			relevant = append(relevant, appFee)
		}
	}
	if len(relevant) == 0 {
		return nil
	}

	currency := request.Data.FeeCurrencyObject
	if currency == nil && request.Data.Metadata != nil && request.Data.Metadata.CurrencyIn != nil {
		currency = request.Data.Metadata.CurrencyIn.Currency
	}
	if currency == nil {
		return nil
	}

	chainID, ok := relayEVMChains[currency.ChainID]
	if !ok {
		f.log.Debug("skipping fee on unsupported chain",
			zap.Int64("relay_chain_id", currency.ChainID))
		return nil
	}

	assetID := relayAssetID(chainID, currency.Address)

	txHash := ""
	if len(request.Data.InTxs) > 0 {
		txHash = request.Data.InTxs[0].Hash
	}

	createdAt, err := time.Parse(time.RFC3339, request.CreatedAt)
	if err != nil {
		f.log.Debug("skipping fee with unparseable createdAt",
			zap.String("created_at", request.CreatedAt))
		return nil
	}

	list := make([]fees.Fee, 0, len(relevant))
	for _, appFee := range relevant {
		list = append(list, fees.Fee{
			ChainID:   chainID,
			AssetID:   assetID,
			Service:   "relay",
			TxHash:    txHash,
			Timestamp: createdAt.Unix(),
			Amount:    appFee.Amount,
			AmountUSD: appFee.AmountUSD,
		})
	}
	return list
}

// relayAssetID maps a relay currency to the canonical asset id. The zero
// address is the chain's native token; the asset database stores every EVM
// native token under slip44:60.
func relayAssetID(chainID, address string) string {
	address = strings.ToLower(address)
	if address == "" || address == "0x0000000000000000000000000000000000000000" {
		return chainID + "/slip44:60"
	}
	return fmt.Sprintf("%s/erc20:%s", chainID, address)
}
