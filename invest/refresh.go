package invest

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/moneta/finance-engine/finance"
)

// PriceSource looks up the market price for a symbol. Implementations
// own the bounded-time contract (timeouts) for the outbound call.
type PriceSource interface {
	LookupPrice(ctx context.Context, symbol string, kind finance.InvestmentType) (decimal.Decimal, error)
}

// PriceStore is the slice of the store the refresher writes through.
type PriceStore interface {
	Investments(ctx context.Context) ([]finance.Investment, error)
	UpdateInvestmentPrice(ctx context.Context, id int64, price decimal.Decimal, at time.Time) error
}

// Refresher sweeps all symbol-bearing investments, looking up each
// price and writing it back. One failed lookup never aborts the sweep,
// and a failure writes nothing for that investment.
type Refresher struct {
	store PriceStore
	src   PriceSource
	log   logrus.FieldLogger
}

func NewRefresher(store PriceStore, src PriceSource, log logrus.FieldLogger) *Refresher {
	return &Refresher{store: store, src: src, log: log}
}

// RefreshResult reports the outcome of one sweep.
type RefreshResult struct {
	Updated  int
	Failed   int
	Skipped  int
	Failures []finance.PriceLookupError
}

// RefreshAll iterates investments sequentially. Only stocks and mutual
// funds with a provider symbol are looked up; deposit instruments keep
// their manually-entered values.
func (r *Refresher) RefreshAll(ctx context.Context) (RefreshResult, error) {
	investments, err := r.store.Investments(ctx)
	if err != nil {
		return RefreshResult{}, err
	}

	var result RefreshResult
	for _, inv := range investments {
		if !refreshable(inv) {
			result.Skipped++
			continue
		}

		price, err := r.src.LookupPrice(ctx, inv.ProviderSymbol, inv.Type)
		if err != nil {
			lookupErr := finance.PriceLookupError{Symbol: inv.ProviderSymbol, Kind: inv.Type, Cause: err}
			result.Failed++
			result.Failures = append(result.Failures, lookupErr)
			r.log.WithFields(logrus.Fields{
				"investment": inv.Name,
				"symbol":     inv.ProviderSymbol,
			}).WithError(err).Warn("price lookup failed, skipping")
			continue
		}

		if err := r.store.UpdateInvestmentPrice(ctx, inv.ID, price, time.Now().UTC()); err != nil {
			result.Failed++
			r.log.WithField("investment", inv.Name).WithError(err).Error("price write failed")
			continue
		}
		result.Updated++
	}

	r.log.WithFields(logrus.Fields{
		"updated": result.Updated,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	}).Info("price refresh sweep complete")

	return result, nil
}

func refreshable(inv finance.Investment) bool {
	if inv.ProviderSymbol == "" {
		return false
	}
	return inv.Type == finance.Stock || inv.Type == finance.MutualFund
}
