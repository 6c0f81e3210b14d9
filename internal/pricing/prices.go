package pricing

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/config"
	"github.com/swapstats/revenue-api/internal/logger"
	"github.com/swapstats/revenue-api/internal/refdata"
	"github.com/swapstats/revenue-api/internal/retry"
)

// cachedPrice is one short-TTL cache entry. resolved=false records a
// definitive "no price source" result so unresolvable assets are not
// re-queried every cycle; negative entries still expire with the TTL.
type cachedPrice struct {
	price     decimal.Decimal
	resolved  bool
	expiresAt time.Time
}

// Service resolves canonical asset ids to live USD prices and reconciles
// fee USD values. One instance per process, safe for concurrent callers.
type Service struct {
	mapping  *refdata.CoingeckoMapping
	registry *refdata.AssetRegistry
	http     *httpclient.HTTPClient
	apiURL   string

	batchSize   int
	cacheTTL    time.Duration
	preserveUSD map[string]bool

	// cache is bounded: prices churn every TTL anyway, the LRU just caps
	// memory when a query touches an unusually wide asset set
	cache *lru.Cache[string, cachedPrice]
	now   func() time.Time

	log *zap.Logger
}

const defaultCacheSize = 500

// NewService builds the price enrichment service.
func NewService(cfg config.PricingConfig, registry *refdata.AssetRegistry, mapping *refdata.CoingeckoMapping) *Service {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, cachedPrice](size)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(err)
	}
	return &Service{
		mapping:     mapping,
		registry:    registry,
		http:        httpclient.NewHTTPClient(httpclient.WithTimeout(10 * time.Second)),
		apiURL:      cfg.PriceAPIURL,
		batchSize:   cfg.BatchSize,
		cacheTTL:    cfg.CacheTTL,
		preserveUSD: cfg.PreserveUSDSet(),
		cache:       cache,
		now:         time.Now,
		log:         logger.Log.Named("pricing"),
	}
}

// priceResponse is the market-data wire shape: coingecko id → {usd: number}.
type priceResponse map[string]struct {
	USD *float64 `json:"usd"`
}

// isContractAsset reports whether the asset reference is a contract token.
// Native assets use a slip44 reference and can share one bulk price call;
// contract tokens are looked up individually.
func isContractAsset(assetID string) bool {
	slash := strings.Index(assetID, "/")
	return slash >= 0 && !strings.HasPrefix(assetID[slash+1:], "slip44:")
}

// BulkPrices resolves USD prices for a set of asset ids. Every requested id
// gets an entry in the result; nil means no price could be resolved.
func (s *Service) BulkPrices(ctx context.Context, assetIDs []string) (map[string]*decimal.Decimal, error) {
	if err := s.mapping.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	result := make(map[string]*decimal.Decimal, len(assetIDs))
	var uncached []string

	for _, assetID := range assetIDs {
		if _, seen := result[assetID]; seen {
			continue
		}
		if price, negative, ok := s.cached(assetID); ok {
			if negative {
				result[assetID] = nil
			} else {
				p := price
				result[assetID] = &p
			}
		} else {
			uncached = append(uncached, assetID)
		}
	}

	if len(uncached) == 0 {
		return result, nil
	}

	// resolve asset ids to price-source ids; unresolvable ids are recorded
	// as definitive misses
	coinIDToAssets := make(map[string][]string)
	var nativeCoinIDs []string
	var contractCoinIDs []string

	for _, assetID := range uncached {
		coinID, ok := s.mapping.CoingeckoID(assetID)
		if !ok {
			result[assetID] = nil
			s.storeNegative(assetID)
			continue
		}
		if _, seen := coinIDToAssets[coinID]; !seen {
			if isContractAsset(assetID) {
				contractCoinIDs = append(contractCoinIDs, coinID)
			} else {
				nativeCoinIDs = append(nativeCoinIDs, coinID)
			}
		}
		coinIDToAssets[coinID] = append(coinIDToAssets[coinID], assetID)
	}

	// native tokens share bulk calls, chunked to the API limit
	for _, chunk := range chunkStrings(nativeCoinIDs, s.batchSize) {
		s.fetchChunk(ctx, chunk, coinIDToAssets, result)
	}
	// no bulk endpoint exists for contract tokens
	for _, coinID := range contractCoinIDs {
		s.fetchChunk(ctx, []string{coinID}, coinIDToAssets, result)
	}

	return result, nil
}

// fetchChunk performs one price call and distributes the outcome. A failed
// call marks its assets unresolved for this invocation without poisoning
// the cache, so the next cycle retries them.
func (s *Service) fetchChunk(ctx context.Context, coinIDs []string, coinIDToAssets map[string][]string, result map[string]*decimal.Decimal) {
	payload, err := retry.Do(ctx, func() (priceResponse, error) {
		var resp priceResponse
		err := s.http.GetJSON(ctx, s.apiURL, &resp,
			httpclient.WithQueryParam("ids", strings.Join(coinIDs, ",")),
			httpclient.WithQueryParam("vs_currencies", "usd"),
		)
		return resp, err
	}, retry.Options{})
	if err != nil {
		s.log.Warn("bulk price fetch failed",
			zap.Int("ids", len(coinIDs)), zap.Error(err))
		for _, coinID := range coinIDs {
			for _, assetID := range coinIDToAssets[coinID] {
				if _, seen := result[assetID]; !seen {
					result[assetID] = nil
				}
			}
		}
		return
	}

	for _, coinID := range coinIDs {
		quote, ok := payload[coinID]
		for _, assetID := range coinIDToAssets[coinID] {
			if ok && quote.USD != nil {
				price := decimal.NewFromFloat(*quote.USD)
				s.store(assetID, price)
				p := price
				result[assetID] = &p
			} else {
				// the source answered and does not know this id
				s.storeNegative(assetID)
				result[assetID] = nil
			}
		}
	}
}

// AssetPrice resolves a single asset's USD price.
func (s *Service) AssetPrice(ctx context.Context, assetID string) (*decimal.Decimal, error) {
	prices, err := s.BulkPrices(ctx, []string{assetID})
	if err != nil {
		return nil, err
	}
	return prices[assetID], nil
}

func (s *Service) cached(assetID string) (price decimal.Decimal, negative, ok bool) {
	entry, exists := s.cache.Get(assetID)
	if !exists || s.now().After(entry.expiresAt) {
		return decimal.Zero, false, false
	}
	return entry.price, !entry.resolved, true
}

func (s *Service) store(assetID string, price decimal.Decimal) {
	s.cache.Add(assetID, cachedPrice{price: price, resolved: true, expiresAt: s.now().Add(s.cacheTTL)})
}

func (s *Service) storeNegative(assetID string) {
	s.cache.Add(assetID, cachedPrice{resolved: false, expiresAt: s.now().Add(s.cacheTTL)})
}

// ClearCache drops every cached price. Used by tests.
func (s *Service) ClearCache() {
	s.cache.Purge()
}

func chunkStrings(values []string, size int) [][]string {
	if size <= 0 {
		size = len(values)
	}
	var chunks [][]string
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
