package providers

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/fees"
)

const millisecondsPerSecond = 1000

// midgardFeesResponse is the affiliate-fees shape served by THORChain-style
// midgard instances.
type midgardFeesResponse struct {
	Fees []struct {
		TxID      string `json:"txId"`
		Timestamp int64  `json:"timestamp"` // milliseconds
		Amount    string `json:"amount"`
	} `json:"fees"`
}

// MidgardFetcher reads affiliate fees from a midgard API. THORChain and
// MAYAChain share the shape; the fee asset is always the chain's native
// token.
type MidgardFetcher struct {
	service string
	chainID string
	assetID string
	http    *httpclient.HTTPClient
	url     string
}

// NewMidgardFetcher builds a midgard-backed adapter.
// assetID is the native fee asset, e.g. "cosmos:thorchain-1/slip44:931".
func NewMidgardFetcher(service, chainID, assetID, url string) *MidgardFetcher {
	return &MidgardFetcher{
		service: service,
		chainID: chainID,
		assetID: assetID,
		http:    httpclient.NewHTTPClient(),
		url:     url,
	}
}

func (f *MidgardFetcher) Service() string { return f.service }
func (f *MidgardFetcher) ChainID() string { return f.chainID }

// FetchRaw returns the window's affiliate fees in one call; midgard is not
// paginated for this endpoint.
func (f *MidgardFetcher) FetchRaw(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error) {
	var payload midgardFeesResponse
	err := f.http.GetJSON(ctx, f.url, &payload,
		httpclient.WithQueryParam("start", strconv.FormatInt(startTimestamp*millisecondsPerSecond, 10)),
		httpclient.WithQueryParam("end", strconv.FormatInt(endTimestamp*millisecondsPerSecond, 10)),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s affiliate fees", f.service)
	}

	list := make([]fees.Fee, 0, len(payload.Fees))
	for _, fee := range payload.Fees {
		list = append(list, fees.Fee{
			ChainID:   f.chainID,
			AssetID:   f.assetID,
			Service:   f.service,
			TxHash:    fee.TxID,
			Timestamp: fee.Timestamp / millisecondsPerSecond,
			Amount:    fee.Amount,
		})
	}
	return list, nil
}
