package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every runtime setting for the service. All values come from
// the environment so the binary can run unchanged in containers and lambdas.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" env-default:":3000"`

	AssetData AssetDataConfig
	Pricing   PricingConfig
	FeeCache  FeeCacheConfig
	Providers ProvidersConfig
}

// AssetDataConfig covers the two reference datasets: the static asset
// registry and the coingecko id mapping.
type AssetDataConfig struct {
	RegistryURL   string        `env:"ASSET_REGISTRY_URL" env-default:"https://raw.githubusercontent.com/shapeshift/agentic-chat/main/packages/utils/src/assetData/encodedAssetData.json"`
	MappingBase   string        `env:"COINGECKO_MAPPING_BASE_URL" env-default:"https://raw.githubusercontent.com/shapeshift/web/develop/packages/caip/src/adapters/coingecko/generated"`
	RegistryCache string        `env:"ASSET_REGISTRY_CACHE_FILE" env-default:"/tmp/revenue-asset-cache.json"`
	MappingCache  string        `env:"COINGECKO_MAPPING_CACHE_FILE" env-default:"/tmp/revenue-coingecko-mappings.json"`
	CacheTTL      time.Duration `env:"ASSET_CACHE_TTL" env-default:"168h"`
	FetchTimeout  time.Duration `env:"ASSET_FETCH_TIMEOUT" env-default:"30s"`
}

// PricingConfig controls the market-data client and the USD reconciliation.
type PricingConfig struct {
	PriceAPIURL string        `env:"PRICE_API_URL" env-default:"https://api.proxy.shapeshift.com/api/v1/markets/simple/price"`
	CacheTTL    time.Duration `env:"PRICE_CACHE_TTL" env-default:"10m"`
	CacheSize   int           `env:"PRICE_CACHE_SIZE" env-default:"500"`
	BatchSize   int           `env:"PRICE_BATCH_SIZE" env-default:"100"`
	// Comma-separated service names whose provider-reported USD is kept
	// verbatim (deposit-only streams with no on-chain amount).
	PreserveUSDServices string `env:"PRESERVE_USD_SERVICES" env-default:"chainflip,butterswap"`
}

// FeeCacheConfig bounds the in-process day cache.
type FeeCacheConfig struct {
	MaxEntries int           `env:"FEE_CACHE_MAX_ENTRIES" env-default:"5000"`
	MaxBytes   int64         `env:"FEE_CACHE_MAX_BYTES" env-default:"500000000"`
	TTL        time.Duration `env:"FEE_CACHE_TTL" env-default:"24h"`
}

// ProvidersConfig holds per-provider endpoints and tuning.
type ProvidersConfig struct {
	ThorchainURL   string        `env:"THORCHAIN_FEES_URL" env-default:"https://midgard.ninerealms.com/v2/affiliate/fees"`
	MayachainURL   string        `env:"MAYACHAIN_FEES_URL" env-default:"https://midgard.mayachain.info/v2/affiliate/fees"`
	RelayURL       string        `env:"RELAY_API_URL" env-default:"https://api.relay.link"`
	RelayReferrer  string        `env:"RELAY_REFERRER" env-default:"shapeshift.com"`
	ChainflipURL   string        `env:"CHAINFLIP_BROKER_URL" env-default:"https://chainflip-broker.io"`
	PageDelay      time.Duration `env:"PROVIDER_PAGE_DELAY" env-default:"250ms"`
	RequestTimeout time.Duration `env:"PROVIDER_REQUEST_TIMEOUT" env-default:"30s"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PreserveUSDSet returns the exemption list as a lookup set.
func (p PricingConfig) PreserveUSDSet() map[string]bool {
	set := make(map[string]bool)
	for _, s := range strings.Split(p.PreserveUSDServices, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			set[s] = true
		}
	}
	return set
}
