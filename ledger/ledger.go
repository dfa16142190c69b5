/*
Package ledger derives account balances from transaction flows.

PURPOSE:
  An account's balance is never stored. It is always:

    opening_balance + sum(incoming amounts) - sum(outgoing amounts)

  over the account's transactions, optionally restricted to date <= cutoff.
  This package owns that identity and the period-windowed variants used
  by reporting.

WHY RECOMPUTE-ON-READ:
  Incremental balance maintenance is a classic source of drift bugs.
  Recomputing from the flow totals on every read keeps all overlapping
  views (per-account, per-period, dashboard) numerically consistent.

DATA ACCESS:
  The calculator reads through the Source interface. The store computes
  flow totals by scanning amount rows and accumulating decimals in Go;
  no per-transaction structures are materialized here.

SEE ALSO:
  - finance/types.go: Account and Transaction
  - store/sqlite/transactions.go: FlowTotals implementation
  - report/: Composes balances into rollups
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// FlowTotals is the summed incoming/outgoing amounts for one account.
type FlowTotals struct {
	Incoming decimal.Decimal
	Outgoing decimal.Decimal
}

// Net returns incoming minus outgoing.
func (f FlowTotals) Net() decimal.Decimal { return f.Incoming.Sub(f.Outgoing) }

// Source provides the account records and flow sums the calculator
// needs. A nil cutoff means "all transactions".
type Source interface {
	Account(ctx context.Context, id int64) (*finance.Account, error)
	Accounts(ctx context.Context) ([]finance.Account, error)
	FlowTotals(ctx context.Context, accountID int64, cutoff *finance.Date) (FlowTotals, error)
	AllFlowTotals(ctx context.Context, cutoff *finance.Date) (map[int64]FlowTotals, error)
}

// Calculator derives balances. It is stateless; all reads go through
// the Source on every call.
type Calculator struct {
	src Source
}

func NewCalculator(src Source) *Calculator {
	return &Calculator{src: src}
}

// AccountBalance pairs an account with its derived balance.
type AccountBalance struct {
	Account finance.Account
	Balance decimal.Decimal
}

// PeriodBalance carries the opening and current balance of an account
// for a reporting window: opening is the balance as of the day before
// the window starts, current is the balance at the window's end.
type PeriodBalance struct {
	Account finance.Account
	Opening decimal.Decimal
	Current decimal.Decimal
}

// Balance returns an account's balance. A nil asOf sums all
// transactions; otherwise only those dated on or before asOf count.
func (c *Calculator) Balance(ctx context.Context, accountID int64, asOf *finance.Date) (decimal.Decimal, error) {
	account, err := c.src.Account(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, finance.ErrAccountNotFound
	}

	flows, err := c.src.FlowTotals(ctx, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return account.OpeningBalance.Add(flows.Net()), nil
}

// BalanceAsOf returns the balance including transactions up to and
// including the given date.
func (c *Calculator) BalanceAsOf(ctx context.Context, accountID int64, date finance.Date) (decimal.Decimal, error) {
	return c.Balance(ctx, accountID, &date)
}

// OpeningBalanceForPeriod returns the balance as of the day before the
// period starts. This is the "opening" figure reports show.
func (c *Calculator) OpeningBalanceForPeriod(ctx context.Context, accountID int64, periodStart finance.Date) (decimal.Decimal, error) {
	dayBefore := periodStart.AddDays(-1)
	return c.Balance(ctx, accountID, &dayBefore)
}

// Balances returns the balance of every account, each computed
// independently by the same identity as Balance.
func (c *Calculator) Balances(ctx context.Context, asOf *finance.Date) ([]AccountBalance, error) {
	accounts, err := c.src.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := c.src.AllFlowTotals(ctx, asOf)
	if err != nil {
		return nil, err
	}

	balances := make([]AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balances = append(balances, AccountBalance{
			Account: account,
			Balance: account.OpeningBalance.Add(totals[account.ID].Net()),
		})
	}
	return balances, nil
}

// PeriodBalances returns opening and current balances for every account
// over an optional [start, end] window. With a nil start the opening is
// the raw opening balance; with a nil end the current balance is
// open-ended.
func (c *Calculator) PeriodBalances(ctx context.Context, start, end *finance.Date) ([]PeriodBalance, error) {
	accounts, err := c.src.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	var openingTotals map[int64]FlowTotals
	if start != nil {
		dayBefore := start.AddDays(-1)
		openingTotals, err = c.src.AllFlowTotals(ctx, &dayBefore)
		if err != nil {
			return nil, err
		}
	}

	currentTotals, err := c.src.AllFlowTotals(ctx, end)
	if err != nil {
		return nil, err
	}

	balances := make([]PeriodBalance, 0, len(accounts))
	for _, account := range accounts {
		opening := account.OpeningBalance
		if openingTotals != nil {
			opening = opening.Add(openingTotals[account.ID].Net())
		}
		balances = append(balances, PeriodBalance{
			Account: account,
			Opening: opening,
			Current: account.OpeningBalance.Add(currentTotals[account.ID].Net()),
		})
	}
	return balances, nil
}
