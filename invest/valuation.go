/*
Package invest derives investment valuations from lots and transactions.

PURPOSE:
  Computes unit holdings, cost basis, current valuation, and gain/loss
  for an investment. The lots are the authoritative unit-level record;
  manual transfers into the investment and expense transactions tagged
  to it supplement the lot data for capital and cost tracking.

COST BASIS NOTE:
  Sell lots do not reduce the invested cost basis. They contribute only
  their charges to total expenses. Partial sells therefore leave the
  full buy-side cost in place. Do not change this without product
  sign-off; downstream figures depend on it.

VALUATION FALLBACK:
  stock/mutual-fund: units x current price when a price is present.
  fixed/recurring deposit: current price is a manually-entered
  maturity-tracking value when present.
  In all other cases the valuation falls back to net invested capital.

SEE ALSO:
  - refresh.go: Price refresh sweep over the external price source
  - platform.go: Per-account investment rollup
  - finance/types.go: Investment and InvestmentLot
*/
package invest

import (
	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// Summary is the derived valuation of one investment.
type Summary struct {
	Investment       finance.Investment
	TotalUnits       decimal.Decimal
	AvgBuyPrice      decimal.Decimal
	TotalInvested    decimal.Decimal
	TotalExpenses    decimal.Decimal
	InvestedCapital  decimal.Decimal
	CurrentValuation decimal.Decimal
	NetGain          decimal.Decimal
	GainPercentage   decimal.Decimal
}

// Flows carries the transaction sums associated with one investment:
// transfers record manual capital contributions outside the lot system,
// expenses record costs tagged directly to the investment.
type Flows struct {
	TransferTotal decimal.Decimal
	ExpenseTotal  decimal.Decimal
}

// Summarize derives the valuation of one investment from its lots and
// associated transaction flows. Pure; reads nothing beyond its inputs.
func Summarize(inv finance.Investment, lots []finance.InvestmentLot, flows Flows) Summary {
	var (
		totalUnits    decimal.Decimal
		totalInvested decimal.Decimal
		lotCharges    decimal.Decimal
	)

	for _, lot := range lots {
		lotCharges = lotCharges.Add(lot.Charges)
		switch lot.Type {
		case finance.Buy:
			totalUnits = totalUnits.Add(lot.Quantity)
			totalInvested = totalInvested.Add(lot.Quantity.Mul(lot.PricePerUnit)).Add(lot.Charges)
		case finance.Sell:
			// Sells reduce units only; cost basis stays.
			totalUnits = totalUnits.Sub(lot.Quantity)
		}
	}

	totalExpenses := lotCharges.Add(flows.ExpenseTotal)
	investedCapital := totalInvested.Add(flows.TransferTotal)
	netCapital := investedCapital.Sub(totalExpenses)

	avgBuyPrice := finance.SafeDiv(totalInvested, totalUnits)
	valuation := currentValuation(inv, totalUnits, netCapital)
	netGain := valuation.Sub(netCapital)

	return Summary{
		Investment:       inv,
		TotalUnits:       totalUnits,
		AvgBuyPrice:      avgBuyPrice,
		TotalInvested:    totalInvested,
		TotalExpenses:    totalExpenses,
		InvestedCapital:  investedCapital,
		CurrentValuation: valuation,
		NetGain:          netGain,
		GainPercentage:   finance.Percentage(netGain, netCapital),
	}
}

func currentValuation(inv finance.Investment, units, netCapital decimal.Decimal) decimal.Decimal {
	switch inv.Type {
	case finance.Stock, finance.MutualFund:
		if inv.CurrentPrice != nil {
			return units.Mul(*inv.CurrentPrice)
		}
	case finance.FixedDeposit, finance.RecurringDeposit:
		if inv.CurrentPrice != nil {
			return *inv.CurrentPrice
		}
	}
	return netCapital
}
