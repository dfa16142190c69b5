package budget

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// CategoryFlow is the summed transaction amounts for one category
// within a budget window, split the way the summary consumes them.
type CategoryFlow struct {
	Income  decimal.Decimal // direction = income
	Expense decimal.Decimal // direction = expense
	Total   decimal.Decimal // every direction
}

// Source provides the records and window sums the engine needs.
type Source interface {
	BudgetSettings(ctx context.Context) (finance.BudgetSettings, error)
	MonthlyIncome(ctx context.Context, month finance.Month) (*finance.MonthlyIncome, error)
	Budgets(ctx context.Context, month finance.Month) ([]finance.Budget, error)
	Categories(ctx context.Context) ([]finance.Category, error)
	CategoryFlows(ctx context.Context, start, end finance.Date) (map[int64]CategoryFlow, error)
	DirectionTotal(ctx context.Context, direction finance.Direction, start, end finance.Date) (decimal.Decimal, error)
	InvestmentTransferTotal(ctx context.Context, start, end finance.Date) (decimal.Decimal, error)
}

// Engine derives budget summaries and reports. Stateless; every call
// recomputes from the source.
type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// CategoryRow is one category's budgeted-vs-actual line.
type CategoryRow struct {
	Category     finance.Category
	Budgeted     decimal.Decimal
	Actual       decimal.Decimal
	Remaining    decimal.Decimal
	IsOverBudget bool
}

// Summary is the full budget view for one month.
type Summary struct {
	Month                finance.Month
	SalaryDate           int
	PeriodStart          finance.Date
	PeriodEnd            finance.Date
	ExpectedIncome       decimal.Decimal
	ActualIncome         decimal.Decimal
	TotalBudgeted        decimal.Decimal
	TotalSpent           decimal.Decimal
	TotalInvested        decimal.Decimal
	Savings              decimal.Decimal
	SavingsRate          decimal.Decimal
	IncomeCategories     []CategoryRow
	ExpenseCategories    []CategoryRow
	InvestmentCategories []CategoryRow
}

// MonthlyReport is one row of the yearly budget report.
type MonthlyReport struct {
	Month       finance.Month
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	Investments decimal.Decimal
	Savings     decimal.Decimal
	SavingsRate decimal.Decimal
}

// Summarize builds the budget summary for a "YYYY-MM" month.
//
// Per-category actuals depend on the bucket: income categories sum
// income-direction transactions, expense categories sum expenses, and
// investment-flagged categories sum every direction. A flagged
// category appears both in its kind bucket and in the investment
// bucket. Income categories flip the remaining convention (earning
// above budget is good) and are never flagged over budget. Zero-budget
// categories are never flagged.
func (e *Engine) Summarize(ctx context.Context, month string) (*Summary, error) {
	m, err := finance.ParseMonth(month)
	if err != nil {
		return nil, err
	}

	settings, err := e.src.BudgetSettings(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := PeriodFor(month, settings.SalaryDate)
	if err != nil {
		return nil, err
	}

	expected := decimal.Zero
	if income, err := e.src.MonthlyIncome(ctx, m); err != nil {
		return nil, err
	} else if income != nil {
		expected = income.ExpectedIncome
	}

	actualIncome, err := e.src.DirectionTotal(ctx, finance.Income, start, end)
	if err != nil {
		return nil, err
	}
	totalSpent, err := e.src.DirectionTotal(ctx, finance.Expense, start, end)
	if err != nil {
		return nil, err
	}

	budgets, err := e.src.Budgets(ctx, m)
	if err != nil {
		return nil, err
	}
	budgetedByCategory := make(map[int64]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		budgetedByCategory[b.CategoryID] = b.BudgetedAmount
	}

	categories, err := e.src.Categories(ctx)
	if err != nil {
		return nil, err
	}
	flows, err := e.src.CategoryFlows(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Month:          m,
		SalaryDate:     settings.SalaryDate,
		PeriodStart:    start,
		PeriodEnd:      end,
		ExpectedIncome: expected,
		ActualIncome:   actualIncome,
		TotalSpent:     totalSpent,
	}

	for _, cat := range categories {
		budgeted := budgetedByCategory[cat.ID]
		flow := flows[cat.ID]

		if cat.Kind == finance.KindIncome {
			summary.IncomeCategories = append(summary.IncomeCategories, CategoryRow{
				Category:  cat,
				Budgeted:  budgeted,
				Actual:    flow.Income,
				Remaining: flow.Income.Sub(budgeted),
			})
		} else {
			row := expenseStyleRow(cat, budgeted, flow.Expense)
			summary.ExpenseCategories = append(summary.ExpenseCategories, row)
			summary.TotalBudgeted = summary.TotalBudgeted.Add(budgeted)
		}

		// The investment flag adds a view, it does not move the
		// category: a flagged category keeps its kind bucket and its
		// budget counts in both totals.
		if cat.IsInvestment {
			row := expenseStyleRow(cat, budgeted, flow.Total)
			summary.InvestmentCategories = append(summary.InvestmentCategories, row)
			summary.TotalBudgeted = summary.TotalBudgeted.Add(budgeted)
			summary.TotalInvested = summary.TotalInvested.Add(flow.Total)
		}
	}

	summary.Savings = actualIncome.Sub(totalSpent).Sub(summary.TotalInvested)
	summary.SavingsRate = finance.Percentage(summary.Savings, actualIncome)

	return summary, nil
}

func expenseStyleRow(cat finance.Category, budgeted, actual decimal.Decimal) CategoryRow {
	return CategoryRow{
		Category:     cat,
		Budgeted:     budgeted,
		Actual:       actual,
		Remaining:    budgeted.Sub(actual),
		IsOverBudget: actual.GreaterThan(budgeted) && budgeted.Sign() > 0,
	}
}

// Report returns twelve monthly rows for a year. Investments here are
// transfers into investment-type accounts, not category sums: the
// report tracks money moved to brokers, the summary tracks categorized
// contributions.
func (e *Engine) Report(ctx context.Context, year int) ([]MonthlyReport, error) {
	settings, err := e.src.BudgetSettings(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]MonthlyReport, 0, 12)
	for monthNum := 1; monthNum <= 12; monthNum++ {
		month := fmt.Sprintf("%04d-%02d", year, monthNum)
		start, end, err := PeriodFor(month, settings.SalaryDate)
		if err != nil {
			return nil, err
		}

		income, err := e.src.DirectionTotal(ctx, finance.Income, start, end)
		if err != nil {
			return nil, err
		}
		expenses, err := e.src.DirectionTotal(ctx, finance.Expense, start, end)
		if err != nil {
			return nil, err
		}
		investments, err := e.src.InvestmentTransferTotal(ctx, start, end)
		if err != nil {
			return nil, err
		}

		savings := income.Sub(expenses).Sub(investments)
		reports = append(reports, MonthlyReport{
			Month:       finance.Month{Year: year, Month: start.Month()},
			Income:      income,
			Expenses:    expenses,
			Investments: investments,
			Savings:     savings,
			SavingsRate: finance.Percentage(savings, income),
		})
	}
	return reports, nil
}
