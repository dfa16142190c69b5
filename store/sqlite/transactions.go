/*
Transaction persistence and flow sums.

PURPOSE:
  Implements transaction CRUD (with tag links applied atomically) and
  every summation the engines read: per-account flow totals for the
  ledger, direction and category sums for budgets, transfer/expense
  sums per investment for valuation.

FILTERING:
  List queries build their WHERE clause from bound parameters only.
  The synthetic "investment" direction filter resolves at query time to
  transactions whose category carries the is_investment flag; it is not
  a stored direction value.

SEE ALSO:
  - ledger/ledger.go: Source interface this file satisfies
  - budget/engine.go: Source interface this file satisfies
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/budget"
	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/invest"
	"github.com/moneta/finance-engine/ledger"
)

// DirectionInvestment is the synthetic list-filter value that selects
// transactions in investment-flagged categories regardless of direction.
const DirectionInvestment = "investment"

// TransactionFilter narrows Transactions. Nil fields do not filter.
type TransactionFilter struct {
	StartDate    *finance.Date
	EndDate      *finance.Date
	Direction    string
	CategoryID   *int64
	AccountID    *int64
	ClientID     *int64
	ProjectID    *int64
	InvestmentID *int64
}

func validateTransaction(tx *finance.Transaction) error {
	if tx.Amount.Sign() < 0 {
		return &finance.FieldError{Field: "amount", Message: "must not be negative"}
	}
	switch tx.Direction {
	case finance.Income:
		if tx.ToAccountID == nil {
			return &finance.FieldError{Field: "to_account_id", Message: "required for income"}
		}
	case finance.Expense:
		if tx.FromAccountID == nil {
			return &finance.FieldError{Field: "from_account_id", Message: "required for expense"}
		}
	case finance.Transfer:
		if tx.FromAccountID == nil || tx.ToAccountID == nil {
			return &finance.FieldError{Field: "accounts", Message: "transfer requires both accounts"}
		}
		if *tx.FromAccountID == *tx.ToAccountID {
			return &finance.FieldError{Field: "accounts", Message: "transfer accounts must differ"}
		}
	default:
		return &finance.FieldError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", tx.Direction)}
	}
	if tx.CategoryID == 0 {
		return &finance.FieldError{Field: "category_id", Message: "required"}
	}
	return nil
}

// CreateTransaction inserts the transaction and its tag links in one
// SQL transaction.
func (s *Store) CreateTransaction(ctx context.Context, tx *finance.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(sqlTx *sql.Tx) error {
		result, err := sqlTx.ExecContext(ctx, `
			INSERT INTO transactions
				(tx_date, amount, direction, from_account_id, to_account_id,
				 category_id, client_id, project_id, investment_id, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.Date.String(), tx.Amount.String(), string(tx.Direction),
			nullInt64(tx.FromAccountID), nullInt64(tx.ToAccountID),
			tx.CategoryID, nullInt64(tx.ClientID), nullInt64(tx.ProjectID),
			nullInt64(tx.InvestmentID), nullString(tx.Notes))
		if err != nil {
			return storeErr(err)
		}
		tx.ID, _ = result.LastInsertId()
		return replaceTags(ctx, sqlTx, tx.ID, tx.TagIDs)
	})
}

// UpdateTransaction rewrites the transaction and replaces its tag set.
func (s *Store) UpdateTransaction(ctx context.Context, tx *finance.Transaction) error {
	if tx.ID == 0 {
		return finance.ErrMissingID
	}
	if err := validateTransaction(tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(sqlTx *sql.Tx) error {
		result, err := sqlTx.ExecContext(ctx, `
			UPDATE transactions SET
				tx_date = ?, amount = ?, direction = ?, from_account_id = ?,
				to_account_id = ?, category_id = ?, client_id = ?, project_id = ?,
				investment_id = ?, notes = ?
			WHERE id = ?`,
			tx.Date.String(), tx.Amount.String(), string(tx.Direction),
			nullInt64(tx.FromAccountID), nullInt64(tx.ToAccountID),
			tx.CategoryID, nullInt64(tx.ClientID), nullInt64(tx.ProjectID),
			nullInt64(tx.InvestmentID), nullString(tx.Notes), tx.ID)
		if err != nil {
			return storeErr(err)
		}
		if err := rowsAffectedOr(result, finance.ErrNotFound); err != nil {
			return err
		}
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM transaction_tags WHERE transaction_id = ?", tx.ID); err != nil {
			return storeErr(err)
		}
		return replaceTags(ctx, sqlTx, tx.ID, tx.TagIDs)
	})
}

func replaceTags(ctx context.Context, sqlTx *sql.Tx, txID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if _, err := sqlTx.ExecContext(ctx,
			"INSERT OR IGNORE INTO transaction_tags (transaction_id, tag_id) VALUES (?, ?)",
			txID, tagID); err != nil {
			return storeErr(err)
		}
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrNotFound)
}

func (s *Store) Transaction(ctx context.Context, id int64) (*finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectTransaction+" WHERE t.id = ?", id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}

	tags, err := s.tagsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	tx.TagIDs = tags[id]
	return tx, nil
}

const selectTransaction = `
	SELECT t.id, t.tx_date, t.amount, t.direction, t.from_account_id,
	       t.to_account_id, t.category_id, t.client_id, t.project_id,
	       t.investment_id, COALESCE(t.notes, '')
	FROM transactions t`

// Transactions lists transactions matching the filter, newest first.
func (s *Store) Transactions(ctx context.Context, filter TransactionFilter) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		clauses []string
		args    []any
	)
	if filter.StartDate != nil {
		clauses = append(clauses, "t.tx_date >= ?")
		args = append(args, filter.StartDate.String())
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "t.tx_date <= ?")
		args = append(args, filter.EndDate.String())
	}
	switch filter.Direction {
	case "":
	case DirectionInvestment:
		clauses = append(clauses, "t.category_id IN (SELECT id FROM categories WHERE is_investment = 1)")
	default:
		clauses = append(clauses, "t.direction = ?")
		args = append(args, filter.Direction)
	}
	if filter.CategoryID != nil {
		clauses = append(clauses, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.AccountID != nil {
		clauses = append(clauses, "(t.from_account_id = ? OR t.to_account_id = ?)")
		args = append(args, *filter.AccountID, *filter.AccountID)
	}
	if filter.ClientID != nil {
		clauses = append(clauses, "t.client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.ProjectID != nil {
		clauses = append(clauses, "t.project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.InvestmentID != nil {
		clauses = append(clauses, "t.investment_id = ?")
		args = append(args, *filter.InvestmentID)
	}

	query := selectTransaction
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY t.tx_date DESC, t.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var (
		txs []finance.Transaction
		ids []int64
	)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		txs = append(txs, *tx)
		ids = append(ids, tx.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	tags, err := s.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].TagIDs = tags[txs[i].ID]
	}
	return txs, nil
}

func scanTransaction(row rowScanner) (*finance.Transaction, error) {
	var (
		tx           finance.Transaction
		day          string
		amount       string
		direction    string
		fromAccount  sql.NullInt64
		toAccount    sql.NullInt64
		clientID     sql.NullInt64
		projectID    sql.NullInt64
		investmentID sql.NullInt64
	)
	if err := row.Scan(&tx.ID, &day, &amount, &direction, &fromAccount, &toAccount,
		&tx.CategoryID, &clientID, &projectID, &investmentID, &tx.Notes); err != nil {
		return nil, err
	}
	date, err := finance.ParseDate(day)
	if err != nil {
		return nil, err
	}
	tx.Date = date
	tx.Amount = finance.MustDecimal(amount)
	tx.Direction = finance.Direction(direction)
	tx.FromAccountID = int64Ptr(fromAccount)
	tx.ToAccountID = int64Ptr(toAccount)
	tx.ClientID = int64Ptr(clientID)
	tx.ProjectID = int64Ptr(projectID)
	tx.InvestmentID = int64Ptr(investmentID)
	return &tx, nil
}

func (s *Store) tagsFor(ctx context.Context, txIDs []int64) (map[int64][]int64, error) {
	tags := make(map[int64][]int64, len(txIDs))
	if len(txIDs) == 0 {
		return tags, nil
	}

	placeholders := strings.Repeat("?,", len(txIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(txIDs))
	for i, id := range txIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, tag_id FROM transaction_tags
		WHERE transaction_id IN (`+placeholders+`) ORDER BY tag_id`, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID, tagID int64
		if err := rows.Scan(&txID, &tagID); err != nil {
			return nil, storeErr(err)
		}
		tags[txID] = append(tags[txID], tagID)
	}
	return tags, rows.Err()
}

// =============================================================================
// LEDGER SOURCE
// =============================================================================

// FlowTotals sums incoming and outgoing amounts for one account,
// accumulating decimals in Go rather than SUMming TEXT in SQL.
func (s *Store) FlowTotals(ctx context.Context, accountID int64, cutoff *finance.Date) (ledger.FlowTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals ledger.FlowTotals
	query := `
		SELECT amount, to_account_id = ? FROM transactions
		WHERE (from_account_id = ? OR to_account_id = ?)`
	args := []any{accountID, accountID, accountID}
	if cutoff != nil {
		query += " AND tx_date <= ?"
		args = append(args, cutoff.String())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return totals, storeErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			amount   string
			incoming sql.NullBool
		)
		if err := rows.Scan(&amount, &incoming); err != nil {
			return totals, storeErr(err)
		}
		if incoming.Valid && incoming.Bool {
			totals.Incoming = totals.Incoming.Add(finance.MustDecimal(amount))
		} else {
			totals.Outgoing = totals.Outgoing.Add(finance.MustDecimal(amount))
		}
	}
	return totals, rows.Err()
}

// AllFlowTotals sums flows for every account in one pass. A transfer
// contributes to two accounts.
func (s *Store) AllFlowTotals(ctx context.Context, cutoff *finance.Date) (map[int64]ledger.FlowTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT amount, from_account_id, to_account_id FROM transactions"
	var args []any
	if cutoff != nil {
		query += " WHERE tx_date <= ?"
		args = append(args, cutoff.String())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	totals := make(map[int64]ledger.FlowTotals)
	for rows.Next() {
		var (
			amount      string
			fromAccount sql.NullInt64
			toAccount   sql.NullInt64
		)
		if err := rows.Scan(&amount, &fromAccount, &toAccount); err != nil {
			return nil, storeErr(err)
		}
		value := finance.MustDecimal(amount)
		if fromAccount.Valid {
			t := totals[fromAccount.Int64]
			t.Outgoing = t.Outgoing.Add(value)
			totals[fromAccount.Int64] = t
		}
		if toAccount.Valid {
			t := totals[toAccount.Int64]
			t.Incoming = t.Incoming.Add(value)
			totals[toAccount.Int64] = t
		}
	}
	return totals, rows.Err()
}

// =============================================================================
// BUDGET SOURCE
// =============================================================================

// DirectionTotal sums amounts of one direction within [start, end].
func (s *Store) DirectionTotal(ctx context.Context, direction finance.Direction, start, end finance.Date) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT amount FROM transactions
		WHERE direction = ? AND tx_date >= ? AND tx_date <= ?`,
		string(direction), start.String(), end.String())
	if err != nil {
		return decimal.Zero, storeErr(err)
	}
	defer rows.Close()

	return sumAmounts(rows)
}

// CategoryFlows sums window amounts per category, split by direction.
func (s *Store) CategoryFlows(ctx context.Context, start, end finance.Date) (map[int64]budget.CategoryFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, amount, direction FROM transactions
		WHERE tx_date >= ? AND tx_date <= ?`,
		start.String(), end.String())
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	flows := make(map[int64]budget.CategoryFlow)
	for rows.Next() {
		var (
			categoryID int64
			amount     string
			direction  string
		)
		if err := rows.Scan(&categoryID, &amount, &direction); err != nil {
			return nil, storeErr(err)
		}
		value := finance.MustDecimal(amount)
		flow := flows[categoryID]
		flow.Total = flow.Total.Add(value)
		switch finance.Direction(direction) {
		case finance.Income:
			flow.Income = flow.Income.Add(value)
		case finance.Expense:
			flow.Expense = flow.Expense.Add(value)
		}
		flows[categoryID] = flow
	}
	return flows, rows.Err()
}

// InvestmentTransferTotal sums transfers into investment-type accounts
// within [start, end].
func (s *Store) InvestmentTransferTotal(ctx context.Context, start, end finance.Date) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.amount FROM transactions t
		JOIN accounts a ON t.to_account_id = a.id
		WHERE t.direction = 'transfer' AND a.account_type = 'investment'
		  AND t.tx_date >= ? AND t.tx_date <= ?`,
		start.String(), end.String())
	if err != nil {
		return decimal.Zero, storeErr(err)
	}
	defer rows.Close()

	return sumAmounts(rows)
}

// =============================================================================
// INVESTMENT FLOWS
// =============================================================================

// InvestmentFlows sums the transaction activity tied to one investment:
// transfers as capital contributions, expenses as costs.
func (s *Store) InvestmentFlows(ctx context.Context, investmentID int64) (invest.Flows, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var flows invest.Flows
	rows, err := s.db.QueryContext(ctx, `
		SELECT amount, direction FROM transactions WHERE investment_id = ?`, investmentID)
	if err != nil {
		return flows, storeErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var amount, direction string
		if err := rows.Scan(&amount, &direction); err != nil {
			return flows, storeErr(err)
		}
		switch finance.Direction(direction) {
		case finance.Transfer:
			flows.TransferTotal = flows.TransferTotal.Add(finance.MustDecimal(amount))
		case finance.Expense:
			flows.ExpenseTotal = flows.ExpenseTotal.Add(finance.MustDecimal(amount))
		}
	}
	return flows, rows.Err()
}

func sumAmounts(rows *sql.Rows) (decimal.Decimal, error) {
	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, storeErr(err)
		}
		total = total.Add(finance.MustDecimal(amount))
	}
	return total, rows.Err()
}
