package budget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta/finance-engine/budget"
)

func TestPeriodFor_MonthLengths(t *testing.T) {
	cases := []struct {
		month string
		start string
		end   string
	}{
		{"2026-01", "2026-01-01", "2026-01-31"},
		{"2026-04", "2026-04-01", "2026-04-30"},
		{"2026-08", "2026-08-01", "2026-08-31"},
		{"2026-12", "2026-12-01", "2026-12-31"},
	}

	for _, tc := range cases {
		t.Run(tc.month, func(t *testing.T) {
			start, end, err := budget.PeriodFor(tc.month, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.start, start.String())
			assert.Equal(t, tc.end, end.String())
		})
	}
}

func TestPeriodFor_LeapYearBoundaries(t *testing.T) {
	cases := []struct {
		month string
		end   string
	}{
		{"2024-02", "2024-02-29"}, // divisible by 4
		{"2023-02", "2023-02-28"}, // common year
		{"2000-02", "2000-02-29"}, // divisible by 400
		{"1900-02", "1900-02-28"}, // divisible by 100, not 400
	}

	for _, tc := range cases {
		t.Run(tc.month, func(t *testing.T) {
			_, end, err := budget.PeriodFor(tc.month, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.end, end.String())
		})
	}
}

func TestPeriodFor_SalaryDateDoesNotShiftWindow(t *testing.T) {
	// The anchor day is accepted but the window stays on calendar lines.
	for _, salaryDate := range []int{1, 15, 28, 31} {
		start, end, err := budget.PeriodFor("2026-03", salaryDate)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-01", start.String())
		assert.Equal(t, "2026-03-31", end.String())
	}
}

func TestPeriodFor_InvalidMonth(t *testing.T) {
	_, _, err := budget.PeriodFor("2026/03", 1)
	assert.Error(t, err)

	_, _, err = budget.PeriodFor("march", 1)
	assert.Error(t, err)
}
