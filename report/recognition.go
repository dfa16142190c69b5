package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// ProjectIncomeRow is one project's recognition detail for one month.
type ProjectIncomeRow struct {
	ProjectID          int64
	ProjectName        string
	MonthlyActual      decimal.Decimal
	CurrentExpected    decimal.Decimal
	OutstandingBalance decimal.Decimal
}

// ProjectIncomeMonth is one month of the recognition report.
type ProjectIncomeMonth struct {
	Month          finance.Month
	ActualIncome   decimal.Decimal
	ExpectedIncome decimal.Decimal
	Projects       []ProjectIncomeRow
}

// ProjectIncomeReport computes expected-vs-actual income per project
// per month for a year, with deadline-based recognition.
//
// Recognition rule: the full outstanding expected amount (expected
// minus everything received before the month) is recognized in the
// deadline month and every month after it; nothing is recognized
// before the deadline. The outstanding balance tracks expected minus
// cumulative actuals and may go negative when overpaid.
//
// incomeTxs must be the project-tagged income transactions across all
// time, not just the report year: prior actuals reach back before the
// year boundary.
func ProjectIncomeReport(year int, projects []finance.Project, incomeTxs []finance.Transaction) []ProjectIncomeMonth {
	byProject := make(map[int64][]finance.Transaction)
	for _, tx := range incomeTxs {
		if tx.Direction != finance.Income || tx.ProjectID == nil {
			continue
		}
		byProject[*tx.ProjectID] = append(byProject[*tx.ProjectID], tx)
	}

	months := make([]ProjectIncomeMonth, 0, 12)
	for monthNum := time.January; monthNum <= time.December; monthNum++ {
		month := finance.Month{Year: year, Month: monthNum}
		row := ProjectIncomeMonth{Month: month}

		for _, project := range projects {
			detail := projectMonthDetail(project, month, byProject[project.ID])
			if detail == nil {
				continue
			}
			row.Projects = append(row.Projects, *detail)
			row.ActualIncome = row.ActualIncome.Add(detail.MonthlyActual)
			row.ExpectedIncome = row.ExpectedIncome.Add(detail.CurrentExpected)
		}
		months = append(months, row)
	}
	return months
}

func projectMonthDetail(project finance.Project, month finance.Month, txs []finance.Transaction) *ProjectIncomeRow {
	monthStart := month.First()
	var monthlyActual, priorActual, cumulativeActual decimal.Decimal

	for _, tx := range txs {
		switch {
		case month.Contains(tx.Date):
			monthlyActual = monthlyActual.Add(tx.Amount)
			cumulativeActual = cumulativeActual.Add(tx.Amount)
		case tx.Date.Before(monthStart):
			priorActual = priorActual.Add(tx.Amount)
			cumulativeActual = cumulativeActual.Add(tx.Amount)
		}
	}

	currentExpected := decimal.Zero
	if deadlineReached(project, month) {
		currentExpected = decimal.Max(decimal.Zero, project.ExpectedAmount.Sub(priorActual))
	}
	outstanding := project.ExpectedAmount.Sub(cumulativeActual)

	// Rows with no activity and no remaining obligation are noise.
	if currentExpected.Sign() <= 0 && monthlyActual.Sign() <= 0 && outstanding.IsZero() {
		return nil
	}

	return &ProjectIncomeRow{
		ProjectID:          project.ID,
		ProjectName:        project.Name,
		MonthlyActual:      monthlyActual,
		CurrentExpected:    currentExpected,
		OutstandingBalance: outstanding,
	}
}

// deadlineReached reports whether the project's end date falls within
// or before the month. Projects without an end date never recognize.
func deadlineReached(project finance.Project, month finance.Month) bool {
	if project.EndDate == nil {
		return false
	}
	deadline := finance.MonthOf(*project.EndDate)
	return deadline.Equal(month) || deadline.Before(month)
}
