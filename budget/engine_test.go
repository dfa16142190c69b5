package budget_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta/finance-engine/budget"
	"github.com/moneta/finance-engine/finance"
)

func amt(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// fakeSource serves fixed records and computes window sums from an
// in-memory transaction list.
type fakeSource struct {
	settings   finance.BudgetSettings
	income     *finance.MonthlyIncome
	budgets    []finance.Budget
	categories []finance.Category
	txs        []fakeTx
}

type fakeTx struct {
	date         finance.Date
	amount       decimal.Decimal
	direction    finance.Direction
	categoryID   int64
	toInvestment bool
}

func (f *fakeSource) BudgetSettings(context.Context) (finance.BudgetSettings, error) {
	return f.settings, nil
}

func (f *fakeSource) MonthlyIncome(_ context.Context, month finance.Month) (*finance.MonthlyIncome, error) {
	if f.income != nil && f.income.Month.Equal(month) {
		return f.income, nil
	}
	return nil, nil
}

func (f *fakeSource) Budgets(_ context.Context, month finance.Month) ([]finance.Budget, error) {
	var out []finance.Budget
	for _, b := range f.budgets {
		if b.Month.Equal(month) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeSource) Categories(context.Context) ([]finance.Category, error) {
	return f.categories, nil
}

func (f *fakeSource) CategoryFlows(_ context.Context, start, end finance.Date) (map[int64]budget.CategoryFlow, error) {
	flows := make(map[int64]budget.CategoryFlow)
	for _, tx := range f.txs {
		if tx.date.Before(start) || tx.date.After(end) {
			continue
		}
		flow := flows[tx.categoryID]
		flow.Total = flow.Total.Add(tx.amount)
		switch tx.direction {
		case finance.Income:
			flow.Income = flow.Income.Add(tx.amount)
		case finance.Expense:
			flow.Expense = flow.Expense.Add(tx.amount)
		}
		flows[tx.categoryID] = flow
	}
	return flows, nil
}

func (f *fakeSource) DirectionTotal(_ context.Context, direction finance.Direction, start, end finance.Date) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range f.txs {
		if tx.direction == direction && !tx.date.Before(start) && !tx.date.After(end) {
			total = total.Add(tx.amount)
		}
	}
	return total, nil
}

func (f *fakeSource) InvestmentTransferTotal(_ context.Context, start, end finance.Date) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range f.txs {
		if tx.direction == finance.Transfer && tx.toInvestment && !tx.date.Before(start) && !tx.date.After(end) {
			total = total.Add(tx.amount)
		}
	}
	return total, nil
}

func newTestSource() *fakeSource {
	march := finance.Month{Year: 2026, Month: 3}
	return &fakeSource{
		settings: finance.BudgetSettings{SalaryDate: 1},
		income:   &finance.MonthlyIncome{Month: march, ExpectedIncome: amt("5000")},
		budgets: []finance.Budget{
			{Month: march, CategoryID: 1, BudgetedAmount: amt("500")},
			{Month: march, CategoryID: 3, BudgetedAmount: amt("1000")},
		},
		categories: []finance.Category{
			{ID: 1, Name: "Groceries", Kind: finance.KindExpense},
			{ID: 2, Name: "Salary", Kind: finance.KindIncome},
			{ID: 3, Name: "Mutual Funds", Kind: finance.KindExpense, IsInvestment: true},
			{ID: 4, Name: "Rent", Kind: finance.KindExpense},
		},
		txs: []fakeTx{
			{date: finance.NewDate(2026, 3, 1), amount: amt("4800"), direction: finance.Income, categoryID: 2},
			{date: finance.NewDate(2026, 3, 5), amount: amt("600"), direction: finance.Expense, categoryID: 1},
			{date: finance.NewDate(2026, 3, 10), amount: amt("1200"), direction: finance.Expense, categoryID: 4},
			{date: finance.NewDate(2026, 3, 12), amount: amt("800"), direction: finance.Expense, categoryID: 3},
			// Outside the window; must not count
			{date: finance.NewDate(2026, 4, 1), amount: amt("999"), direction: finance.Expense, categoryID: 1},
		},
	}
}

func TestSummarize(t *testing.T) {
	engine := budget.NewEngine(newTestSource())

	s, err := engine.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01", s.PeriodStart.String())
	assert.Equal(t, "2026-03-31", s.PeriodEnd.String())
	assert.True(t, s.ExpectedIncome.Equal(amt("5000")))
	assert.True(t, s.ActualIncome.Equal(amt("4800")))
	assert.True(t, s.TotalSpent.Equal(amt("2600")), "got %s", s.TotalSpent)
	assert.True(t, s.TotalInvested.Equal(amt("800")))

	// savings = 4800 - 2600 - 800 = 1400; rate = 1400/4800*100
	assert.True(t, s.Savings.Equal(amt("1400")), "got %s", s.Savings)
	expectedRate := amt("1400").Div(amt("4800")).Mul(amt("100"))
	assert.True(t, s.SavingsRate.Equal(expectedRate))

	require.Len(t, s.ExpenseCategories, 3)
	require.Len(t, s.IncomeCategories, 1)
	require.Len(t, s.InvestmentCategories, 1)
}

func TestSummarize_InvestmentCategoryKeepsKindBucket(t *testing.T) {
	engine := budget.NewEngine(newTestSource())

	s, err := engine.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	names := func(rows []budget.CategoryRow) []string {
		var out []string
		for _, row := range rows {
			out = append(out, row.Category.Name)
		}
		return out
	}
	assert.Contains(t, names(s.ExpenseCategories), "Mutual Funds")
	assert.Contains(t, names(s.InvestmentCategories), "Mutual Funds")

	// The 1000 budget counts once per bucket: 500+1000+0 in the expense
	// bucket plus 1000 in the investment bucket.
	assert.True(t, s.TotalBudgeted.Equal(amt("2500")), "got %s", s.TotalBudgeted)
	assert.True(t, s.TotalInvested.Equal(amt("800")))
}

func TestSummarize_OverBudgetFlags(t *testing.T) {
	engine := budget.NewEngine(newTestSource())

	s, err := engine.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	rows := make(map[string]budget.CategoryRow)
	for _, row := range s.ExpenseCategories {
		rows[row.Category.Name] = row
	}

	// budgeted=500, actual=600: flagged, remaining -100
	groceries := rows["Groceries"]
	assert.True(t, groceries.IsOverBudget)
	assert.True(t, groceries.Remaining.Equal(amt("-100")), "got %s", groceries.Remaining)

	// budgeted=0, actual=1200: zero-budget categories are never flagged
	rent := rows["Rent"]
	assert.False(t, rent.IsOverBudget)
	assert.True(t, rent.Remaining.Equal(amt("-1200")))
}

func TestSummarize_IncomeCategoryConvention(t *testing.T) {
	src := newTestSource()
	src.budgets = append(src.budgets, finance.Budget{
		Month: finance.Month{Year: 2026, Month: 3}, CategoryID: 2, BudgetedAmount: amt("5000"),
	})
	engine := budget.NewEngine(src)

	s, err := engine.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	salary := s.IncomeCategories[0]
	// remaining = actual - budgeted for income; never flagged
	assert.True(t, salary.Remaining.Equal(amt("-200")), "got %s", salary.Remaining)
	assert.False(t, salary.IsOverBudget)
}

func TestSummarize_NoMonthlyIncomeRecord(t *testing.T) {
	src := newTestSource()
	src.income = nil
	engine := budget.NewEngine(src)

	s, err := engine.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)
	assert.True(t, s.ExpectedIncome.IsZero())
}

func TestReport_TwelveRows(t *testing.T) {
	src := newTestSource()
	src.txs = append(src.txs, fakeTx{
		date: finance.NewDate(2026, 3, 20), amount: amt("500"),
		direction: finance.Transfer, toInvestment: true,
	})
	engine := budget.NewEngine(src)

	rows, err := engine.Report(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	march := rows[2]
	assert.Equal(t, "2026-03", march.Month.String())
	assert.True(t, march.Income.Equal(amt("4800")))
	assert.True(t, march.Expenses.Equal(amt("2600")))
	assert.True(t, march.Investments.Equal(amt("500")))
	// savings = 4800 - 2600 - 500
	assert.True(t, march.Savings.Equal(amt("1700")), "got %s", march.Savings)

	// An empty month reports zeros, rate included
	january := rows[0]
	assert.True(t, january.Income.IsZero())
	assert.True(t, january.SavingsRate.IsZero())
}
