/*
Package report aggregates transactions into read-only rollup views.

PURPOSE:
  Produces the monthly, category, client, and overall summaries, the
  project income recognition report, and the dashboard view. Every
  function here is pure: it takes already-queried records and returns a
  derived view, so recomputing without mutating sources always yields
  identical results.

FILTERING:
  The store applies the filter set {date range, client, project} when
  querying transactions; these functions only group and sum. The
  synthetic "investment" direction is also resolved at query time: it
  selects transactions whose category carries the is_investment flag
  rather than matching a literal direction value.

SEE ALSO:
  - recognition.go: Deadline-based project income recognition
  - dashboard.go: Balance and current-month overview
  - store/sqlite/transactions.go: Filtered queries feeding this package
*/
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// Filters narrows report queries. Nil fields mean "no restriction".
type Filters struct {
	StartDate *finance.Date
	EndDate   *finance.Date
	ClientID  *int64
	ProjectID *int64
}

// MonthlySummary is one calendar month's income/expense/net row.
type MonthlySummary struct {
	Month   finance.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// CategorySummary totals one category's transactions.
type CategorySummary struct {
	CategoryName string
	Total        decimal.Decimal
	Count        int
}

// ClientSummary totals income received from one client.
type ClientSummary struct {
	ClientName       string
	TotalIncome      decimal.Decimal
	TransactionCount int
}

// OverallStats is the aggregate across all matched transactions.
type OverallStats struct {
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	NetBalance       decimal.Decimal
	TransactionCount int
}

// MonthlySummaries groups transactions by calendar month, summing
// income and expense directions. Months with no activity are omitted;
// rows are sorted chronologically.
func MonthlySummaries(txs []finance.Transaction) []MonthlySummary {
	byMonth := make(map[finance.Month]*MonthlySummary)
	for _, tx := range txs {
		month := finance.MonthOf(tx.Date)
		row, ok := byMonth[month]
		if !ok {
			row = &MonthlySummary{Month: month}
			byMonth[month] = row
		}
		switch tx.Direction {
		case finance.Income:
			row.Income = row.Income.Add(tx.Amount)
		case finance.Expense:
			row.Expense = row.Expense.Add(tx.Amount)
		}
	}

	rows := make([]MonthlySummary, 0, len(byMonth))
	for _, row := range byMonth {
		row.Net = row.Income.Sub(row.Expense)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	return rows
}

// CategorySummaries groups transactions by category name, sorted by
// total descending. The caller passes transactions already filtered to
// one direction (or the synthetic investment direction).
func CategorySummaries(txs []finance.Transaction, categories map[int64]finance.Category) []CategorySummary {
	byName := make(map[string]*CategorySummary)
	for _, tx := range txs {
		name := categories[tx.CategoryID].Name
		row, ok := byName[name]
		if !ok {
			row = &CategorySummary{CategoryName: name}
			byName[name] = row
		}
		row.Total = row.Total.Add(tx.Amount)
		row.Count++
	}

	rows := make([]CategorySummary, 0, len(byName))
	for _, row := range byName {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows
}

// ClientSummaries groups income transactions by client, sorted by
// total descending. Transactions without a client are skipped.
func ClientSummaries(txs []finance.Transaction, clients map[int64]finance.Client) []ClientSummary {
	byName := make(map[string]*ClientSummary)
	for _, tx := range txs {
		if tx.Direction != finance.Income || tx.ClientID == nil {
			continue
		}
		name := clients[*tx.ClientID].Name
		row, ok := byName[name]
		if !ok {
			row = &ClientSummary{ClientName: name}
			byName[name] = row
		}
		row.TotalIncome = row.TotalIncome.Add(tx.Amount)
		row.TransactionCount++
	}

	rows := make([]ClientSummary, 0, len(byName))
	for _, row := range byName {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalIncome.Equal(rows[j].TotalIncome) {
			return rows[i].TotalIncome.GreaterThan(rows[j].TotalIncome)
		}
		return rows[i].ClientName < rows[j].ClientName
	})
	return rows
}

// Overall sums all matched transactions into one aggregate row.
func Overall(txs []finance.Transaction) OverallStats {
	var stats OverallStats
	for _, tx := range txs {
		switch tx.Direction {
		case finance.Income:
			stats.TotalIncome = stats.TotalIncome.Add(tx.Amount)
		case finance.Expense:
			stats.TotalExpense = stats.TotalExpense.Add(tx.Amount)
		}
		stats.TransactionCount++
	}
	stats.NetBalance = stats.TotalIncome.Sub(stats.TotalExpense)
	return stats
}
