package refdata

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/config"
	"github.com/swapstats/revenue-api/internal/fees"
	"github.com/swapstats/revenue-api/internal/logger"
	"github.com/swapstats/revenue-api/internal/retry"
)

// DefaultPrecision is assumed for assets missing from every source. 18 is
// the common case for on-chain fungible tokens.
const DefaultPrecision = 18

// MetadataClient is an optional secondary source for asset precision,
// consulted when neither the registry nor the manual table knows an asset.
// found=false with a nil error is a definitive miss and gets cached;
// a non-nil error is transient and stays retryable.
type MetadataClient interface {
	AssetPrecision(ctx context.Context, assetID string) (precision int, found bool, err error)
}

// AssetRegistry serves the static asset dataset: precision, symbol and name
// per asset id. Constructed once at startup and injected wherever asset
// lookups happen.
type AssetRegistry struct {
	loader *loader[map[string]fees.StaticAsset]
	cache  *diskCache[EncodedAssetData]
	http   *httpclient.HTTPClient
	url    string
	log    *zap.Logger

	metadata MetadataClient
	lookupMu sync.Mutex
	// lookups caches secondary precision lookups, including definitive
	// "not found" results (nil entry) so unresolvable assets are not
	// re-queried every call.
	lookups map[string]*int
}

// NewAssetRegistry builds the registry service from configuration.
func NewAssetRegistry(cfg config.AssetDataConfig, metadata MetadataClient) *AssetRegistry {
	r := &AssetRegistry{
		cache: newDiskCache[EncodedAssetData](cfg.RegistryCache, cfg.CacheTTL),
		http: httpclient.NewHTTPClient(
			httpclient.WithTimeout(cfg.FetchTimeout),
		),
		url:      cfg.RegistryURL,
		log:      logger.Log.Named("asset_registry"),
		metadata: metadata,
		lookups:  make(map[string]*int),
	}
	r.loader = newLoader(r.load, func() map[string]fees.StaticAsset {
		return map[string]fees.StaticAsset{}
	})
	return r
}

// EnsureLoaded makes the dataset available, loading it at most once per
// process no matter how many callers arrive concurrently.
func (r *AssetRegistry) EnsureLoaded(ctx context.Context) error {
	return r.loader.ensure(ctx)
}

// IsLoaded reports whether real data (not the empty fallback) is serving.
func (r *AssetRegistry) IsLoaded() bool {
	return r.loader.isLoaded()
}

// Reload drops the dataset and loads it again. Intended for the weekly
// refresh and for tests.
func (r *AssetRegistry) Reload(ctx context.Context) error {
	r.loader.reset()
	return r.loader.ensure(ctx)
}

// Asset returns the registry entry for an asset id, consulting the manual
// override table on a registry miss.
func (r *AssetRegistry) Asset(assetID string) (fees.StaticAsset, bool) {
	if asset, ok := r.loader.get()[assetID]; ok {
		return asset, true
	}
	if asset, ok := manualAssets[strings.ToLower(assetID)]; ok {
		return asset, true
	}
	return fees.StaticAsset{}, false
}

// AssetDecimals resolves an asset's precision: registry, then the manual
// override table, then one secondary metadata lookup, then the 18-decimal
// default. A registry entry is always authoritative.
func (r *AssetRegistry) AssetDecimals(ctx context.Context, assetID string) int {
	if asset, ok := r.Asset(assetID); ok {
		return asset.Precision
	}

	if precision, ok := r.secondaryLookup(ctx, assetID); ok {
		return precision
	}

	r.log.Warn("asset not found in any source, defaulting precision",
		zap.String("asset_id", assetID),
		zap.Int("default", DefaultPrecision))
	return DefaultPrecision
}

func (r *AssetRegistry) secondaryLookup(ctx context.Context, assetID string) (int, bool) {
	if r.metadata == nil {
		return 0, false
	}

	r.lookupMu.Lock()
	if cached, ok := r.lookups[assetID]; ok {
		r.lookupMu.Unlock()
		if cached == nil {
			return 0, false
		}
		return *cached, true
	}
	r.lookupMu.Unlock()

	precision, found, err := r.metadata.AssetPrecision(ctx, assetID)
	if err != nil {
		// transient failure: do not cache, the next call retries
		r.log.Debug("secondary precision lookup failed",
			zap.String("asset_id", assetID), zap.Error(err))
		return 0, false
	}

	r.lookupMu.Lock()
	if found {
		r.lookups[assetID] = &precision
	} else {
		r.lookups[assetID] = nil
	}
	r.lookupMu.Unlock()

	return precision, found
}

func (r *AssetRegistry) load(ctx context.Context) (map[string]fees.StaticAsset, error) {
	if encoded, ok := r.cache.get(); ok {
		assets, err := DecodeAssetData(encoded)
		if err == nil {
			r.log.Info("asset registry loaded from disk cache",
				zap.Int("assets", len(assets)))
			return assets, nil
		}
		r.log.Warn("cached asset payload failed to decode", zap.Error(err))
	}

	start := time.Now()
	encoded, err := retry.Do(ctx, func() (EncodedAssetData, error) {
		var payload EncodedAssetData
		if err := r.http.GetJSON(ctx, r.url, &payload); err != nil {
			return EncodedAssetData{}, err
		}
		return payload, nil
	}, retry.Options{})
	if err != nil {
		r.log.Warn("asset registry fetch failed, serving empty fallback",
			zap.Error(err))
		return nil, errors.Wrap(err, "fetching asset registry")
	}

	if !encoded.Valid() {
		r.log.Warn("asset registry payload has unexpected shape, serving empty fallback")
		return nil, errors.New("invalid asset data structure")
	}

	assets, err := DecodeAssetData(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "decoding asset registry")
	}

	r.cache.set(encoded)
	r.log.Info("asset registry loaded from network",
		zap.Int("assets", len(assets)),
		zap.Duration("duration", time.Since(start)))
	return assets, nil
}
