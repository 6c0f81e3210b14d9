package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swapstats/revenue-api/internal/fees"
	"github.com/swapstats/revenue-api/internal/logger"
	"github.com/swapstats/revenue-api/internal/metrics"
)

// FeeProvider is one orchestrated provider as the aggregator sees it.
type FeeProvider interface {
	Name() string
	GetFees(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error)
}

// Response is the aggregated revenue breakdown. Providers that failed hard
// are listed rather than sinking the whole response.
type Response struct {
	TotalUSD        float64            `json:"totalUsd"`
	ByService       map[string]float64 `json:"byService"`
	ByDay           map[string]float64 `json:"byDay"`
	FailedProviders []string           `json:"failedProviders"`
}

const defaultConcurrency = 6

// Service fans revenue queries out across every registered provider.
type Service struct {
	providers   []FeeProvider
	concurrency int
	log         *zap.Logger
}

// NewService builds the aggregator over the given providers.
func NewService(providers ...FeeProvider) *Service {
	return &Service{
		providers:   providers,
		concurrency: defaultConcurrency,
		log:         logger.Log.Named("aggregate"),
	}
}

// Revenue queries all providers concurrently and merges their totals.
// Per-provider failures are isolated: the response carries partial results
// plus the names of the providers that failed.
func (s *Service) Revenue(ctx context.Context, startTimestamp, endTimestamp int64) (*Response, error) {
	start := time.Now()

	var (
		mu      sync.Mutex
		allFees []fees.Fee
		failed  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, provider := range s.providers {
		provider := provider
		g.Go(func() error {
			list, err := provider.GetFees(gctx, startTimestamp, endTimestamp)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, provider.Name())
				metrics.ProviderFailures.WithLabelValues(provider.Name()).Inc()
				s.log.Error("provider failed, continuing with the rest",
					zap.String("provider", provider.Name()),
					zap.Error(err))
				return nil
			}
			allFees = append(allFees, list...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	byService := make(map[string]decimal.Decimal)
	byDay := make(map[string]decimal.Decimal)

	for _, fee := range allFees {
		if fee.AmountUSD == "" {
			continue
		}
		usd, err := decimal.NewFromString(fee.AmountUSD)
		if err != nil {
			s.log.Warn("fee carries unparseable USD value, skipping",
				zap.String("service", fee.Service),
				zap.String("amount_usd", fee.AmountUSD))
			continue
		}
		total = total.Add(usd)
		byService[fee.Service] = byService[fee.Service].Add(usd)
		day := fees.TimestampToDate(fee.Timestamp)
		byDay[day] = byDay[day].Add(usd)
	}

	sort.Strings(failed)
	if failed == nil {
		failed = []string{}
	}

	response := &Response{
		TotalUSD:        total.InexactFloat64(),
		ByService:       make(map[string]float64, len(byService)),
		ByDay:           make(map[string]float64, len(byDay)),
		FailedProviders: failed,
	}
	for service, usd := range byService {
		response.ByService[service] = usd.InexactFloat64()
	}
	for day, usd := range byDay {
		response.ByDay[day] = usd.InexactFloat64()
	}

	s.log.Info("aggregated affiliate revenue",
		zap.Int("providers", len(s.providers)),
		zap.Int("failed", len(failed)),
		zap.Int("fees", len(allFees)),
		zap.Float64("total_usd", response.TotalUSD),
		zap.Duration("elapsed", time.Since(start)))

	return response, nil
}
