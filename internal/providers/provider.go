package providers

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/swapstats/revenue-api/internal/feecache"
	"github.com/swapstats/revenue-api/internal/fees"
	"github.com/swapstats/revenue-api/internal/logger"
	"github.com/swapstats/revenue-api/internal/metrics"
	"github.com/swapstats/revenue-api/internal/retry"
)

// RawFetcher is the per-provider adapter collaborator. It knows one
// provider's wire shape and nothing about caching or enrichment. Paginated
// providers page internally and return the accumulated window.
type RawFetcher interface {
	// Service is the provider name used in fee records and cache keys.
	Service() string
	// ChainID scopes cache keys; multi-chain providers return "all".
	ChainID() string
	// FetchRaw returns every fee in [startTimestamp, endTimestamp].
	FetchRaw(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error)
}

// Enricher reconciles USD values on a fee list.
type Enricher interface {
	EnrichFees(ctx context.Context, list []fees.Fee) ([]fees.Fee, error)
}

// ReferenceData is the loaded-before-use guarantee the orchestrator needs
// from the asset registry.
type ReferenceData interface {
	EnsureLoaded(ctx context.Context) error
}

// Provider runs the shared getFees orchestration for one adapter: partition
// the range, serve closed days from the cache, fetch the missing sub-range
// once under retry, re-fetch the live tail, then enrich.
type Provider struct {
	fetcher  RawFetcher
	cache    *feecache.Cache
	enricher Enricher
	refdata  ReferenceData

	retryOpts retry.Options
	now       func() time.Time
	log       *zap.Logger
}

// New wires one provider orchestrator.
func New(fetcher RawFetcher, cache *feecache.Cache, enricher Enricher, refdata ReferenceData) *Provider {
	return &Provider{
		fetcher:  fetcher,
		cache:    cache,
		enricher: enricher,
		refdata:  refdata,
		now:      time.Now,
		log:      logger.Log.Named(fetcher.Service()),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.fetcher.Service()
}

// GetFees returns the enriched fee list for [startTimestamp, endTimestamp].
// Ordering is cached days ascending, then newly fetched, then the recent
// tail. A fetch failure is a hard failure of this provider; cache entries
// already written for other days stay intact.
func (p *Provider) GetFees(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error) {
	if err := p.refdata.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	start := p.now()
	service := p.fetcher.Service()
	chainID := p.fetcher.ChainID()

	threshold := feecache.CacheableThreshold(p.now())
	split := feecache.SplitDateRange(startTimestamp, endTimestamp, threshold)

	var cachedFees []fees.Fee
	var datesToFetch []string
	hits, misses := 0, 0

	for _, date := range split.CacheableDates {
		if cached, ok := p.cache.Get(service, chainID, date); ok {
			cachedFees = append(cachedFees, cached...)
			hits++
		} else {
			datesToFetch = append(datesToFetch, date)
			misses++
		}
	}
	metrics.FeeCacheHits.WithLabelValues(service).Add(float64(hits))
	metrics.FeeCacheMisses.WithLabelValues(service).Add(float64(misses))

	var newFees []fees.Fee
	if len(datesToFetch) > 0 {
		// contiguous misses coalesce into a single remote call bounded by
		// the first and last missing date
		fetchStart := feecache.DateStartTimestamp(datesToFetch[0])
		fetchEnd := feecache.DateEndTimestamp(datesToFetch[len(datesToFetch)-1])

		fetched, err := retry.Do(ctx, func() ([]fees.Fee, error) {
			return p.fetcher.FetchRaw(ctx, fetchStart, fetchEnd)
		}, p.retryOpts)
		if err != nil {
			metrics.ProviderFetchDuration.WithLabelValues(service, "error").Observe(p.now().Sub(start).Seconds())
			return nil, errors.Wrapf(err, "%s: fetching %d missing dates", service, len(datesToFetch))
		}

		// the fee's own event day decides its bucket, not the query window
		byDate := fees.GroupByDate(fetched)
		for _, date := range datesToFetch {
			p.cache.Set(service, chainID, date, byDate[date])
		}
		newFees = fetched
	}

	var recentFees []fees.Fee
	if split.HasRecent {
		fetched, err := retry.Do(ctx, func() ([]fees.Fee, error) {
			return p.fetcher.FetchRaw(ctx, split.RecentStart, endTimestamp)
		}, p.retryOpts)
		if err != nil {
			metrics.ProviderFetchDuration.WithLabelValues(service, "error").Observe(p.now().Sub(start).Seconds())
			return nil, errors.Wrapf(err, "%s: fetching recent tail", service)
		}
		recentFees = fetched
	}

	combined := make([]fees.Fee, 0, len(cachedFees)+len(newFees)+len(recentFees))
	combined = append(combined, cachedFees...)
	combined = append(combined, newFees...)
	combined = append(combined, recentFees...)

	enriched, err := p.enricher.EnrichFees(ctx, combined)
	if err != nil {
		metrics.ProviderFetchDuration.WithLabelValues(service, "error").Observe(p.now().Sub(start).Seconds())
		return nil, errors.Wrapf(err, "%s: enriching fees", service)
	}

	elapsed := p.now().Sub(start)
	metrics.ProviderFetchDuration.WithLabelValues(service, "ok").Observe(elapsed.Seconds())
	p.log.Info("fetched provider fees",
		zap.Int("total", len(enriched)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
		zap.Bool("recent_tail", split.HasRecent),
		zap.Duration("elapsed", elapsed))

	return enriched, nil
}
