package sqlite

import (
	"context"
	"database/sql"

	"github.com/moneta/finance-engine/finance"
)

// =============================================================================
// BUDGETS
// =============================================================================

// SetBudget upserts the budgeted amount for (month, category).
func (s *Store) SetBudget(ctx context.Context, b *finance.Budget) error {
	if b.CategoryID == 0 {
		return &finance.FieldError{Field: "category_id", Message: "required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (month, category_id, budgeted_amount, notes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (month, category_id) DO UPDATE SET
			budgeted_amount = excluded.budgeted_amount,
			notes = excluded.notes`,
		b.Month.String(), b.CategoryID, b.BudgetedAmount.String(), nullString(b.Notes))
	if err != nil {
		return storeErr(err)
	}
	if id, err := result.LastInsertId(); err == nil && id != 0 {
		b.ID = id
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrNotFound)
}

func (s *Store) Budgets(ctx context.Context, month finance.Month) ([]finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, month, category_id, budgeted_amount, COALESCE(notes, '')
		FROM budgets WHERE month = ? ORDER BY category_id`, month.String())
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var budgets []finance.Budget
	for rows.Next() {
		var (
			b        finance.Budget
			monthStr string
			amount   string
		)
		if err := rows.Scan(&b.ID, &monthStr, &b.CategoryID, &amount, &b.Notes); err != nil {
			return nil, storeErr(err)
		}
		m, err := finance.ParseMonth(monthStr)
		if err != nil {
			return nil, storeErr(err)
		}
		b.Month = m
		b.BudgetedAmount = finance.MustDecimal(amount)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// =============================================================================
// MONTHLY INCOME
// =============================================================================

// SetMonthlyIncome upserts the expected income for a month.
func (s *Store) SetMonthlyIncome(ctx context.Context, income *finance.MonthlyIncome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO monthly_income (month, expected_income, notes)
		VALUES (?, ?, ?)
		ON CONFLICT (month) DO UPDATE SET
			expected_income = excluded.expected_income,
			notes = excluded.notes`,
		income.Month.String(), income.ExpectedIncome.String(), nullString(income.Notes))
	if err != nil {
		return storeErr(err)
	}
	if id, err := result.LastInsertId(); err == nil && id != 0 {
		income.ID = id
	}
	return nil
}

func (s *Store) MonthlyIncome(ctx context.Context, month finance.Month) (*finance.MonthlyIncome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, month, expected_income, COALESCE(notes, '')
		FROM monthly_income WHERE month = ?`, month.String())

	var (
		income   finance.MonthlyIncome
		monthStr string
		amount   string
	)
	err := row.Scan(&income.ID, &monthStr, &amount, &income.Notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	m, err := finance.ParseMonth(monthStr)
	if err != nil {
		return nil, storeErr(err)
	}
	income.Month = m
	income.ExpectedIncome = finance.MustDecimal(amount)
	return &income, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) BudgetSettings(ctx context.Context) (finance.BudgetSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var settings finance.BudgetSettings
	err := s.db.QueryRowContext(ctx,
		"SELECT salary_date FROM budget_settings WHERE id = 1").Scan(&settings.SalaryDate)
	if err == sql.ErrNoRows {
		settings.SalaryDate = 1
		return settings, nil
	}
	if err != nil {
		return settings, storeErr(err)
	}
	return settings, nil
}

func (s *Store) UpdateBudgetSettings(ctx context.Context, settings finance.BudgetSettings) error {
	if settings.SalaryDate < 1 || settings.SalaryDate > 31 {
		return &finance.FieldError{Field: "salary_date", Message: "must be between 1 and 31"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_settings (id, salary_date) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET salary_date = excluded.salary_date`,
		settings.SalaryDate)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// CompanySettings returns every stored key/value pair.
func (s *Store) CompanySettings(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM company_settings ORDER BY key")
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, storeErr(err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// SetCompanySettings upserts each given key/value pair atomically.
func (s *Store) SetCompanySettings(ctx context.Context, settings map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for key, value := range settings {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO company_settings (key, value) VALUES (?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
				key, value); err != nil {
				return storeErr(err)
			}
		}
		return nil
	})
}
