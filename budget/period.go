/*
Package budget computes budget periods, summaries, and yearly reports.

PURPOSE:
  A budget "month" is a date window produced by PeriodFor. The summary
  composes per-category actuals (scoped to that window) against Budget
  records into budgeted/actual/remaining/over-budget rows, and the
  yearly report produces twelve income/expense/investment/savings rows.

SALARY ANCHOR NOTE:
  PeriodFor accepts the salary anchor day but does not currently use it
  to shift the window off calendar-month boundaries. The window is the
  calendar month. Keep the parameter and the behavior as-is; shifting
  the window is a product decision, not a bug fix.

SEE ALSO:
  - engine.go: Summary and Report composition
  - finance/date.go: Month parsing
*/
package budget

import (
	"time"

	"github.com/moneta/finance-engine/finance"
)

// PeriodFor returns the start and end dates of the budget window for a
// "YYYY-MM" month. Start is the first calendar day; end is the last
// calendar day, applying the Gregorian leap rule for February.
func PeriodFor(month string, salaryDate int) (finance.Date, finance.Date, error) {
	m, err := finance.ParseMonth(month)
	if err != nil {
		return finance.Date{}, finance.Date{}, err
	}

	var lastDay int
	switch m.Month {
	case time.January, time.March, time.May, time.July, time.August, time.October, time.December:
		lastDay = 31
	case time.April, time.June, time.September, time.November:
		lastDay = 30
	case time.February:
		if finance.IsLeapYear(m.Year) {
			lastDay = 29
		} else {
			lastDay = 28
		}
	}

	_ = salaryDate // anchor day accepted but the window stays on calendar-month lines

	return m.First(), finance.NewDate(m.Year, m.Month, lastDay), nil
}
