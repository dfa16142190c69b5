package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// =============================================================================
// INVESTMENTS
// =============================================================================

func (s *Store) CreateInvestment(ctx context.Context, inv *finance.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO investments
			(name, investment_type, account_id, provider_symbol, current_price,
			 principal_amount, interest_rate, maturity_date, maturity_amount,
			 monthly_deposit, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Name, string(inv.Type), inv.AccountID, nullString(inv.ProviderSymbol),
		nullDecimal(inv.CurrentPrice), nullDecimal(inv.PrincipalAmount),
		nullDecimal(inv.InterestRate), nullDate(inv.MaturityDate),
		nullDecimal(inv.MaturityAmount), nullDecimal(inv.MonthlyDeposit),
		nullString(inv.Notes))
	if err != nil {
		return storeErr(err)
	}
	inv.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) UpdateInvestment(ctx context.Context, inv *finance.Investment) error {
	if inv.ID == 0 {
		return finance.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE investments SET
			name = ?, investment_type = ?, account_id = ?, provider_symbol = ?,
			current_price = ?, principal_amount = ?, interest_rate = ?,
			maturity_date = ?, maturity_amount = ?, monthly_deposit = ?, notes = ?
		WHERE id = ?`,
		inv.Name, string(inv.Type), inv.AccountID, nullString(inv.ProviderSymbol),
		nullDecimal(inv.CurrentPrice), nullDecimal(inv.PrincipalAmount),
		nullDecimal(inv.InterestRate), nullDate(inv.MaturityDate),
		nullDecimal(inv.MaturityAmount), nullDecimal(inv.MonthlyDeposit),
		nullString(inv.Notes), inv.ID)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrInvestmentNotFound)
}

func (s *Store) DeleteInvestment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM investments WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrInvestmentNotFound)
}

func (s *Store) Investment(ctx context.Context, id int64) (*finance.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectInvestment+" WHERE id = ?", id)
	inv, err := scanInvestment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return inv, nil
}

func (s *Store) Investments(ctx context.Context) ([]finance.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectInvestment+" ORDER BY name")
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var investments []finance.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		investments = append(investments, *inv)
	}
	return investments, rows.Err()
}

const selectInvestment = `
	SELECT id, name, investment_type, account_id, COALESCE(provider_symbol, ''),
	       current_price, principal_amount, interest_rate, maturity_date,
	       maturity_amount, monthly_deposit, COALESCE(last_updated_at, ''),
	       COALESCE(notes, '')
	FROM investments`

func scanInvestment(row rowScanner) (*finance.Investment, error) {
	var (
		inv            finance.Investment
		investmentType string
		currentPrice   sql.NullString
		principal      sql.NullString
		interestRate   sql.NullString
		maturityDate   sql.NullString
		maturityAmount sql.NullString
		monthlyDeposit sql.NullString
	)
	if err := row.Scan(&inv.ID, &inv.Name, &investmentType, &inv.AccountID,
		&inv.ProviderSymbol, &currentPrice, &principal, &interestRate,
		&maturityDate, &maturityAmount, &monthlyDeposit, &inv.LastUpdatedAt,
		&inv.Notes); err != nil {
		return nil, err
	}
	inv.Type = finance.InvestmentType(investmentType)
	inv.CurrentPrice = decimalPtr(currentPrice)
	inv.PrincipalAmount = decimalPtr(principal)
	inv.InterestRate = decimalPtr(interestRate)
	inv.MaturityDate = datePtr(maturityDate)
	inv.MaturityAmount = decimalPtr(maturityAmount)
	inv.MonthlyDeposit = decimalPtr(monthlyDeposit)
	return &inv, nil
}

// UpdateInvestmentPrice writes a refreshed price and its timestamp.
func (s *Store) UpdateInvestmentPrice(ctx context.Context, id int64, price decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE investments SET current_price = ?, last_updated_at = ? WHERE id = ?`,
		price.String(), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrInvestmentNotFound)
}

// =============================================================================
// INVESTMENT LOTS
// =============================================================================

func (s *Store) CreateLot(ctx context.Context, lot *finance.InvestmentLot) error {
	if lot.Quantity.Sign() < 0 {
		return &finance.FieldError{Field: "quantity", Message: "must not be negative"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO investment_lots (investment_id, quantity, price_per_unit, charges, lot_date, lot_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		lot.InvestmentID, lot.Quantity.String(), lot.PricePerUnit.String(),
		lot.Charges.String(), lot.Date.String(), string(lot.Type))
	if err != nil {
		return storeErr(err)
	}
	lot.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) DeleteLot(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM investment_lots WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrNotFound)
}

func (s *Store) Lots(ctx context.Context, investmentID int64) ([]finance.InvestmentLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, investment_id, quantity, price_per_unit, charges, lot_date, lot_type
		FROM investment_lots WHERE investment_id = ? ORDER BY lot_date, id`, investmentID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var lots []finance.InvestmentLot
	for rows.Next() {
		var (
			lot      finance.InvestmentLot
			quantity string
			price    string
			charges  string
			day      string
			lotType  string
		)
		if err := rows.Scan(&lot.ID, &lot.InvestmentID, &quantity, &price, &charges, &day, &lotType); err != nil {
			return nil, storeErr(err)
		}
		date, err := finance.ParseDate(day)
		if err != nil {
			return nil, storeErr(err)
		}
		lot.Quantity = finance.MustDecimal(quantity)
		lot.PricePerUnit = finance.MustDecimal(price)
		lot.Charges = finance.MustDecimal(charges)
		lot.Date = date
		lot.Type = finance.LotType(lotType)
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}
