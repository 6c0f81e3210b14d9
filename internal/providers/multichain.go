package providers

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swapstats/revenue-api/internal/fees"
	"github.com/swapstats/revenue-api/internal/logger"
)

// ChainFetch is one chain-specific sub-fetch of a multi-chain provider.
type ChainFetch struct {
	ChainID string
	Fetch   func(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error)
}

// MultiChain fans a provider's fetch out across its chains concurrently
// with an allow-partial-success join: chain failures are recorded and
// skipped rather than aborting the whole fetch. Only all chains failing is
// a provider failure.
type MultiChain struct {
	service string
	chains  []ChainFetch
	log     *zap.Logger
}

// NewMultiChain builds the fan-out fetcher for a provider spanning several
// chains.
func NewMultiChain(service string, chains []ChainFetch) *MultiChain {
	return &MultiChain{
		service: service,
		chains:  chains,
		log:     logger.Log.Named(service),
	}
}

func (m *MultiChain) Service() string { return m.service }

// ChainID returns "all": day-cache entries hold the merged cross-chain list.
func (m *MultiChain) ChainID() string { return "all" }

// FetchRaw merges every chain's fees for the window.
func (m *MultiChain) FetchRaw(ctx context.Context, startTimestamp, endTimestamp int64) ([]fees.Fee, error) {
	var (
		mu       sync.Mutex
		combined []fees.Fee
		failed   int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, chain := range m.chains {
		chain := chain
		g.Go(func() error {
			list, err := chain.Fetch(gctx, startTimestamp, endTimestamp)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				m.log.Warn("chain sub-fetch failed",
					zap.String("chain_id", chain.ChainID),
					zap.Error(err))
				return nil
			}
			combined = append(combined, list...)
			return nil
		})
	}
	_ = g.Wait()

	if failed == len(m.chains) {
		return nil, errors.Errorf("%s: all %d chain fetches failed", m.service, failed)
	}
	return combined, nil
}
