package fees

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fee is one attributed affiliate-fee event, normalized across providers.
type Fee struct {
	// ChainID is a CAIP-2 style chain namespace, e.g. "eip155:1".
	ChainID string `json:"chainId"`
	// AssetID uniquely names the asset on its chain, e.g.
	// "eip155:1/erc20:0x...". Native assets use a slip44 reference.
	AssetID string `json:"assetId"`
	// Service is the provider name the fee was earned through.
	Service string `json:"service"`
	// TxHash references the origin transaction. Providers without
	// per-transaction granularity get a synthetic deterministic hash.
	TxHash string `json:"txHash"`
	// Timestamp is the event time in unix seconds.
	Timestamp int64 `json:"timestamp"`
	// Amount is the fee in the asset's smallest on-chain unit, as a
	// decimal integer string. Never a float.
	Amount string `json:"amount"`
	// AmountUSD is the final reconciled USD value.
	AmountUSD string `json:"amountUsd,omitempty"`
	// OriginalUSDValue preserves the provider-reported USD value before
	// reconciliation, for audit and fallback.
	OriginalUSDValue string `json:"originalUsdValue,omitempty"`
}

// StaticAsset is one reference-registry entry.
type StaticAsset struct {
	AssetID   string `json:"assetId"`
	ChainID   string `json:"chainId"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Precision int    `json:"precision"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	IsPool    bool   `json:"isPool,omitempty"`
}

// DateFormat is the cache-key day format, always UTC.
const DateFormat = "2006-01-02"

// TimestampToDate converts unix seconds to the UTC calendar day it falls in.
func TimestampToDate(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format(DateFormat)
}

// GroupByDate buckets fees by their own event day. The event timestamp is
// authoritative: a fee can land in a different bucket than the query window
// that fetched it.
func GroupByDate(fees []Fee) map[string][]Fee {
	byDate := make(map[string][]Fee)
	for _, fee := range fees {
		date := TimestampToDate(fee.Timestamp)
		byDate[date] = append(byDate[date], fee)
	}
	return byDate
}

// syntheticNamespace scopes synthetic tx hashes to this service.
var syntheticNamespace = uuid.MustParse("8f3c1f56-2b6e-4c85-9d2a-71e305c4fb90")

// SyntheticTxHash derives a stable pseudo transaction reference for
// providers that only report day-level aggregates. The same inputs always
// produce the same hash, so re-fetching a day is idempotent.
func SyntheticTxHash(service, assetID string, timestamp int64) string {
	seed := fmt.Sprintf("%s|%s|%d", service, assetID, timestamp)
	return uuid.NewSHA1(syntheticNamespace, []byte(seed)).String()
}
