package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/ledger"
	"github.com/moneta/finance-engine/report"
)

func amt(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func ref(id int64) *int64 { return &id }

func incomeTx(day int, month int, amount string, clientID, projectID *int64) finance.Transaction {
	return finance.Transaction{
		Date:      finance.NewDate(2026, time.Month(month), day),
		Amount:    amt(amount),
		Direction: finance.Income,
		ClientID:  clientID,
		ProjectID: projectID,
	}
}

func TestMonthlySummaries(t *testing.T) {
	txs := []finance.Transaction{
		{Date: finance.NewDate(2026, 1, 5), Amount: amt("1000"), Direction: finance.Income},
		{Date: finance.NewDate(2026, 1, 10), Amount: amt("400"), Direction: finance.Expense},
		{Date: finance.NewDate(2026, 3, 2), Amount: amt("2000"), Direction: finance.Income},
		// Transfers never land in income or expense buckets
		{Date: finance.NewDate(2026, 1, 15), Amount: amt("9999"), Direction: finance.Transfer},
	}

	rows := report.MonthlySummaries(txs)
	require.Len(t, rows, 2)

	assert.Equal(t, "2026-01", rows[0].Month.String())
	assert.True(t, rows[0].Income.Equal(amt("1000")))
	assert.True(t, rows[0].Expense.Equal(amt("400")))
	assert.True(t, rows[0].Net.Equal(amt("600")))

	assert.Equal(t, "2026-03", rows[1].Month.String())
	assert.True(t, rows[1].Net.Equal(amt("2000")))
}

func TestCategorySummaries_SortedByTotal(t *testing.T) {
	categories := map[int64]finance.Category{
		1: {ID: 1, Name: "Groceries"},
		2: {ID: 2, Name: "Rent"},
	}
	txs := []finance.Transaction{
		{Date: finance.NewDate(2026, 1, 5), Amount: amt("100"), Direction: finance.Expense, CategoryID: 1},
		{Date: finance.NewDate(2026, 1, 8), Amount: amt("50"), Direction: finance.Expense, CategoryID: 1},
		{Date: finance.NewDate(2026, 1, 1), Amount: amt("1200"), Direction: finance.Expense, CategoryID: 2},
	}

	rows := report.CategorySummaries(txs, categories)
	require.Len(t, rows, 2)

	assert.Equal(t, "Rent", rows[0].CategoryName)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, "Groceries", rows[1].CategoryName)
	assert.True(t, rows[1].Total.Equal(amt("150")))
	assert.Equal(t, 2, rows[1].Count)
}

func TestClientSummaries_SkipsUnattributed(t *testing.T) {
	clients := map[int64]finance.Client{
		1: {ID: 1, Name: "Acme Corp"},
	}
	txs := []finance.Transaction{
		incomeTx(5, 1, "3000", ref(1), nil),
		incomeTx(20, 2, "1500", ref(1), nil),
		incomeTx(25, 2, "800", nil, nil), // no client
	}

	rows := report.ClientSummaries(txs, clients)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme Corp", rows[0].ClientName)
	assert.True(t, rows[0].TotalIncome.Equal(amt("4500")))
	assert.Equal(t, 2, rows[0].TransactionCount)
}

func TestOverall(t *testing.T) {
	txs := []finance.Transaction{
		{Date: finance.NewDate(2026, 1, 5), Amount: amt("1000"), Direction: finance.Income},
		{Date: finance.NewDate(2026, 1, 6), Amount: amt("300"), Direction: finance.Expense},
		{Date: finance.NewDate(2026, 1, 7), Amount: amt("200"), Direction: finance.Transfer},
	}

	stats := report.Overall(txs)
	assert.True(t, stats.TotalIncome.Equal(amt("1000")))
	assert.True(t, stats.TotalExpense.Equal(amt("300")))
	assert.True(t, stats.NetBalance.Equal(amt("700")))
	assert.Equal(t, 3, stats.TransactionCount)
}

// =============================================================================
// PROJECT INCOME RECOGNITION
// =============================================================================

func TestProjectIncomeReport_DeadlineRecognition(t *testing.T) {
	// GIVEN a project expecting 10000 with a March deadline,
	// 4000 received before March and 3000 during March
	deadline := finance.NewDate(2026, 3, 15)
	projects := []finance.Project{
		{ID: 1, Name: "Website", ExpectedAmount: amt("10000"), EndDate: &deadline},
	}
	txs := []finance.Transaction{
		incomeTx(10, 1, "4000", nil, ref(1)),
		incomeTx(5, 3, "3000", nil, ref(1)),
	}

	months := report.ProjectIncomeReport(2026, projects, txs)
	require.Len(t, months, 12)

	march := months[2]
	require.Len(t, march.Projects, 1)
	row := march.Projects[0]

	// current_expected = max(0, 10000-4000); outstanding = 10000-7000
	assert.True(t, row.CurrentExpected.Equal(amt("6000")), "got %s", row.CurrentExpected)
	assert.True(t, row.MonthlyActual.Equal(amt("3000")))
	assert.True(t, row.OutstandingBalance.Equal(amt("3000")), "got %s", row.OutstandingBalance)
	assert.True(t, march.ExpectedIncome.Equal(amt("6000")))
	assert.True(t, march.ActualIncome.Equal(amt("3000")))
}

func TestProjectIncomeReport_NoRecognitionBeforeDeadline(t *testing.T) {
	deadline := finance.NewDate(2026, 6, 30)
	projects := []finance.Project{
		{ID: 1, Name: "App", ExpectedAmount: amt("5000"), EndDate: &deadline},
	}

	months := report.ProjectIncomeReport(2026, projects, nil)

	// Before the deadline month nothing is recognized, but the row stays
	// listed because the full amount is outstanding
	february := months[1]
	require.Len(t, february.Projects, 1)
	assert.True(t, february.Projects[0].CurrentExpected.IsZero())
	assert.True(t, february.Projects[0].OutstandingBalance.Equal(amt("5000")))
	assert.True(t, february.ExpectedIncome.IsZero())

	// From the deadline month on, the outstanding amount is recognized
	june := months[5]
	assert.True(t, june.Projects[0].CurrentExpected.Equal(amt("5000")))
	july := months[6]
	assert.True(t, july.Projects[0].CurrentExpected.Equal(amt("5000")))
}

func TestProjectIncomeReport_OverpaidGoesNegative(t *testing.T) {
	deadline := finance.NewDate(2026, 2, 28)
	projects := []finance.Project{
		{ID: 1, Name: "Retainer", ExpectedAmount: amt("1000"), EndDate: &deadline},
	}
	txs := []finance.Transaction{
		incomeTx(5, 1, "1500", nil, ref(1)),
	}

	months := report.ProjectIncomeReport(2026, projects, txs)

	january := months[0]
	require.Len(t, january.Projects, 1)
	assert.True(t, january.Projects[0].OutstandingBalance.Equal(amt("-500")))

	// Past the deadline with everything collected: expected clamps at 0,
	// and the overpaid row remains visible via its nonzero outstanding
	march := months[2]
	require.Len(t, march.Projects, 1)
	assert.True(t, march.Projects[0].CurrentExpected.IsZero())
	assert.True(t, march.Projects[0].OutstandingBalance.Equal(amt("-500")))
}

func TestProjectIncomeReport_SettledProjectFiltered(t *testing.T) {
	deadline := finance.NewDate(2026, 1, 31)
	projects := []finance.Project{
		{ID: 1, Name: "Done", ExpectedAmount: amt("2000"), EndDate: &deadline},
	}
	txs := []finance.Transaction{
		incomeTx(10, 1, "2000", nil, ref(1)),
	}

	months := report.ProjectIncomeReport(2026, projects, txs)

	// February: fully collected, nothing expected, nothing outstanding
	assert.Empty(t, months[1].Projects)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestBuildDashboard(t *testing.T) {
	balances := []ledger.AccountBalance{
		{Account: finance.Account{ID: 1, Type: finance.AccountBank}, Balance: amt("5000")},
		{Account: finance.Account{ID: 2, Type: finance.AccountCash}, Balance: amt("300")},
		{Account: finance.Account{ID: 3, Type: finance.AccountInvestment}, Balance: amt("12000")},
		{Account: finance.Account{ID: 4, Type: finance.AccountOther}, Balance: amt("700")},
	}

	d := report.BuildDashboard(balances, amt("4000"), amt("2500"))

	assert.True(t, d.BankBalance.Equal(amt("5000")))
	assert.True(t, d.CashBalance.Equal(amt("300")))
	assert.True(t, d.InvestmentBalance.Equal(amt("12000")))
	// "other" accounts are listed but excluded from the headline total
	assert.True(t, d.TotalBalance.Equal(amt("17300")))
	assert.Len(t, d.Accounts, 4)
	assert.True(t, d.CurrentMonthNet.Equal(amt("1500")))
}
