package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/swapstats/revenue-api/internal/fees"
)

// EnrichFees reconciles every fee's USD value against live market data.
//
// A provider-reported AmountUSD is first moved to OriginalUSDValue (unless
// provenance was already recorded), then AmountUSD is recomputed from the
// live price. When no price resolves, the provider-reported value serves as
// the fallback. Services on the preserve list report finished USD figures
// with no meaningful on-chain amount and keep their value verbatim.
//
// The whole pass is idempotent: applying it twice yields the same result.
func (s *Service) EnrichFees(ctx context.Context, list []fees.Fee) ([]fees.Fee, error) {
	if len(list) == 0 {
		return list, nil
	}

	uniqueAssetIDs := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, fee := range list {
		if !seen[fee.AssetID] {
			seen[fee.AssetID] = true
			uniqueAssetIDs = append(uniqueAssetIDs, fee.AssetID)
		}
	}

	priceMap, err := s.BulkPrices(ctx, uniqueAssetIDs)
	if err != nil {
		return nil, err
	}

	if err := s.registry.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	enriched := 0
	missingPrice := 0

	out := make([]fees.Fee, len(list))
	for i, fee := range list {
		if fee.AmountUSD != "" && fee.OriginalUSDValue == "" {
			fee.OriginalUSDValue = fee.AmountUSD
		}

		switch {
		case s.preserveUSD[fee.Service]:
			fee.AmountUSD = fee.OriginalUSDValue
			enriched++

		case priceMap[fee.AssetID] != nil:
			usd, ok := s.computeUSD(ctx, fee, *priceMap[fee.AssetID])
			if ok {
				fee.AmountUSD = usd
				enriched++
				break
			}
			fallthrough

		default:
			if fee.OriginalUSDValue != "" {
				fee.AmountUSD = fee.OriginalUSDValue
				enriched++
			} else {
				fee.AmountUSD = ""
				missingPrice++
			}
		}

		out[i] = fee
	}

	s.log.Debug("fee enrichment complete",
		zap.Int("fees", len(list)),
		zap.Int("enriched", enriched),
		zap.Int("missing_price", missingPrice))

	return out, nil
}

// computeUSD converts the smallest-unit amount to USD at the given price.
// All arithmetic stays in decimals; amounts never touch a float.
func (s *Service) computeUSD(ctx context.Context, fee fees.Fee, price decimal.Decimal) (string, bool) {
	amount, err := decimal.NewFromString(fee.Amount)
	if err != nil {
		s.log.Warn("fee has unparseable amount",
			zap.String("service", fee.Service),
			zap.String("tx_hash", fee.TxHash),
			zap.String("amount", fee.Amount))
		return "", false
	}

	decimals := s.registry.AssetDecimals(ctx, fee.AssetID)
	usd := amount.Shift(int32(-decimals)).Mul(price)
	return usd.String(), true
}
