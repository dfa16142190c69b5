package invest

import (
	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// PlatformSummary rolls up the investments held in one investment-type
// account (a broker or platform): capital put in, current value, gain.
type PlatformSummary struct {
	Account      finance.Account
	Invested     decimal.Decimal
	CurrentValue decimal.Decimal
	NetGain      decimal.Decimal
	GainPct      decimal.Decimal
	Holdings     int
}

// SummarizePlatforms groups per-investment summaries by owning account.
// Only investment-type accounts appear; accounts with no holdings are
// included with zero figures so the platform list stays complete.
func SummarizePlatforms(accounts []finance.Account, summaries []Summary) []PlatformSummary {
	byAccount := make(map[int64]*PlatformSummary)
	var order []int64

	for _, account := range accounts {
		if account.Type != finance.AccountInvestment {
			continue
		}
		byAccount[account.ID] = &PlatformSummary{Account: account}
		order = append(order, account.ID)
	}

	for _, s := range summaries {
		p, ok := byAccount[s.Investment.AccountID]
		if !ok {
			continue
		}
		p.Invested = p.Invested.Add(s.InvestedCapital.Sub(s.TotalExpenses))
		p.CurrentValue = p.CurrentValue.Add(s.CurrentValuation)
		p.Holdings++
	}

	result := make([]PlatformSummary, 0, len(order))
	for _, id := range order {
		p := byAccount[id]
		p.NetGain = p.CurrentValue.Sub(p.Invested)
		p.GainPct = finance.Percentage(p.NetGain, p.Invested)
		result = append(result, *p)
	}
	return result
}
