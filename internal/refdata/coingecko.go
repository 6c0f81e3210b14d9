package refdata

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/config"
	"github.com/swapstats/revenue-api/internal/logger"
	"github.com/swapstats/revenue-api/internal/retry"
)

// coingeckoChains enumerates the per-chain adapter documents that make up
// the asset-id → coingecko-id mapping.
var coingeckoChains = []string{
	"cosmos_thorchain-1",
	"cosmos_mayachain-mainnet-v1",
	"eip155_1",
	"eip155_10",
	"eip155_56",
	"eip155_100",
	"eip155_137",
	"eip155_8453",
	"eip155_42161",
	"eip155_43114",
	"solana_5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp",
}

// CoingeckoMapping resolves canonical asset ids to coingecko price-source
// ids. Same lifecycle as the asset registry: loaded lazily at most once,
// disk-cached for a week, empty fallback on total failure.
type CoingeckoMapping struct {
	loader  *loader[map[string]string]
	cache   *diskCache[map[string]string]
	http    *httpclient.HTTPClient
	baseURL string
	log     *zap.Logger
}

// NewCoingeckoMapping builds the mapping service from configuration.
func NewCoingeckoMapping(cfg config.AssetDataConfig) *CoingeckoMapping {
	m := &CoingeckoMapping{
		cache: newDiskCache[map[string]string](cfg.MappingCache, cfg.CacheTTL),
		http: httpclient.NewHTTPClient(
			httpclient.WithTimeout(cfg.FetchTimeout),
		),
		baseURL: cfg.MappingBase,
		log:     logger.Log.Named("coingecko_mapping"),
	}
	m.loader = newLoader(m.load, func() map[string]string {
		return map[string]string{}
	})
	return m
}

// EnsureLoaded makes the mapping available, loading it at most once per
// process regardless of concurrent demand.
func (m *CoingeckoMapping) EnsureLoaded(ctx context.Context) error {
	return m.loader.ensure(ctx)
}

// IsLoaded reports whether real data (not the empty fallback) is serving.
func (m *CoingeckoMapping) IsLoaded() bool {
	return m.loader.isLoaded()
}

// CoingeckoID returns the price-source id for an asset id, if known.
func (m *CoingeckoMapping) CoingeckoID(assetID string) (string, bool) {
	id, ok := m.loader.get()[assetID]
	return id, ok
}

func (m *CoingeckoMapping) load(ctx context.Context) (map[string]string, error) {
	if mappings, ok := m.cache.get(); ok && len(mappings) > 0 {
		m.log.Info("coingecko mappings loaded from disk cache",
			zap.Int("mappings", len(mappings)))
		return mappings, nil
	}

	merged := make(map[string]string)
	for _, chain := range coingeckoChains {
		url := fmt.Sprintf("%s/%s/adapter.json", m.baseURL, chain)

		chainMappings, err := retry.Do(ctx, func() (map[string]string, error) {
			var payload map[string]string
			if err := m.http.GetJSON(ctx, url, &payload); err != nil {
				return nil, err
			}
			return payload, nil
		}, retry.Options{})
		if err != nil {
			// one chain failing must not sink the rest
			m.log.Warn("failed to fetch coingecko mappings for chain",
				zap.String("chain", chain), zap.Error(err))
			continue
		}

		for assetID, coingeckoID := range chainMappings {
			merged[assetID] = coingeckoID
		}
	}

	if len(merged) == 0 {
		m.log.Warn("no coingecko mappings loaded, serving empty fallback")
		return nil, errors.New("no mappings loaded from network")
	}

	m.cache.set(merged)
	m.log.Info("coingecko mappings loaded from network",
		zap.Int("mappings", len(merged)))
	return merged, nil
}
