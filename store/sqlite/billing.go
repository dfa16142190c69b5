/*
Invoice and quotation persistence.

PURPOSE:
  Billing documents are multi-row writes: header plus line items, and
  for payments a status recompute on the header. Each of those runs
  inside one SQL transaction so a failure mid-sequence leaves no
  partial document.

NUMBERING:
  Document numbers are assigned inside the insert transaction from the
  count of same-year documents, so concurrent creates cannot race the
  sequence (the store lock serializes writers anyway).

SEE ALSO:
  - billing/billing.go: Numbering format and status derivation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/billing"
	"github.com/moneta/finance-engine/finance"
)

// =============================================================================
// INVOICES
// =============================================================================

// CreateInvoice inserts the invoice and its items atomically, assigning
// the invoice number and deriving the total from the items, discount,
// and tax percentage.
func (s *Store) CreateInvoice(ctx context.Context, inv *finance.Invoice) error {
	if inv.ProjectID == 0 {
		return &finance.FieldError{Field: "project_id", Message: "required"}
	}
	if len(inv.Items) == 0 {
		return &finance.FieldError{Field: "items", Message: "at least one item required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		year := inv.IssueDate.Year()
		existing, err := countByPrefix(ctx, tx, "invoices", "invoice_number", yearPrefix("INV", year))
		if err != nil {
			return err
		}
		inv.InvoiceNumber = billing.InvoiceNumber(year, existing)
		inv.TotalAmount = documentTotal(itemAmounts(inv.Items), inv.Discount, inv.TaxPercentage)
		inv.Status = finance.Unpaid

		result, err := tx.ExecContext(ctx, `
			INSERT INTO invoices
				(project_id, invoice_number, stage, issue_date, due_date,
				 discount, tax_percentage, total_amount, status, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ProjectID, inv.InvoiceNumber, nullString(inv.Stage),
			inv.IssueDate.String(), nullDate(inv.DueDate),
			inv.Discount.String(), inv.TaxPercentage.String(),
			inv.TotalAmount.String(), string(inv.Status), nullString(inv.Notes))
		if err != nil {
			return storeErr(err)
		}
		inv.ID, _ = result.LastInsertId()

		for i := range inv.Items {
			item := &inv.Items[i]
			item.InvoiceID = inv.ID
			item.Amount = item.Quantity.Mul(item.Rate)
			itemResult, err := tx.ExecContext(ctx, `
				INSERT INTO invoice_items (invoice_id, description, quantity, rate, amount)
				VALUES (?, ?, ?, ?, ?)`,
				inv.ID, item.Description, item.Quantity.String(),
				item.Rate.String(), item.Amount.String())
			if err != nil {
				return storeErr(err)
			}
			item.ID, _ = itemResult.LastInsertId()
		}
		return nil
	})
}

func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrInvoiceNotFound)
}

func (s *Store) Invoice(ctx context.Context, id int64) (*finance.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectInvoice+" WHERE id = ?", id)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if err := s.attachInvoiceDetails(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Store) Invoices(ctx context.Context) ([]finance.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectInvoice+" ORDER BY issue_date DESC, id DESC")
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var invoices []finance.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	for i := range invoices {
		if err := s.attachInvoiceDetails(ctx, &invoices[i]); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

const selectInvoice = `
	SELECT id, project_id, invoice_number, COALESCE(stage, ''), issue_date,
	       due_date, discount, tax_percentage, total_amount, status,
	       COALESCE(notes, '')
	FROM invoices`

func scanInvoice(row rowScanner) (*finance.Invoice, error) {
	var (
		inv      finance.Invoice
		issue    string
		due      sql.NullString
		discount string
		tax      string
		total    string
		status   string
	)
	if err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &inv.Stage,
		&issue, &due, &discount, &tax, &total, &status, &inv.Notes); err != nil {
		return nil, err
	}
	issueDate, err := finance.ParseDate(issue)
	if err != nil {
		return nil, err
	}
	inv.IssueDate = issueDate
	inv.DueDate = datePtr(due)
	inv.Discount = finance.MustDecimal(discount)
	inv.TaxPercentage = finance.MustDecimal(tax)
	inv.TotalAmount = finance.MustDecimal(total)
	inv.Status = finance.InvoiceStatus(status)
	return &inv, nil
}

func (s *Store) attachInvoiceDetails(ctx context.Context, inv *finance.Invoice) error {
	itemRows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_id, description, quantity, rate, amount
		FROM invoice_items WHERE invoice_id = ? ORDER BY id`, inv.ID)
	if err != nil {
		return storeErr(err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			item     finance.InvoiceItem
			quantity string
			rate     string
			amount   string
		)
		if err := itemRows.Scan(&item.ID, &item.InvoiceID, &item.Description,
			&quantity, &rate, &amount); err != nil {
			return storeErr(err)
		}
		item.Quantity = finance.MustDecimal(quantity)
		item.Rate = finance.MustDecimal(rate)
		item.Amount = finance.MustDecimal(amount)
		inv.Items = append(inv.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return storeErr(err)
	}

	paymentRows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_id, amount_paid, payment_date,
		       COALESCE(payment_mode, ''), COALESCE(transaction_reference, '')
		FROM invoice_payments WHERE invoice_id = ? ORDER BY payment_date, id`, inv.ID)
	if err != nil {
		return storeErr(err)
	}
	defer paymentRows.Close()

	for paymentRows.Next() {
		var (
			payment finance.InvoicePayment
			amount  string
			day     string
		)
		if err := paymentRows.Scan(&payment.ID, &payment.InvoiceID, &amount, &day,
			&payment.PaymentMode, &payment.TransactionReference); err != nil {
			return storeErr(err)
		}
		date, err := finance.ParseDate(day)
		if err != nil {
			return storeErr(err)
		}
		payment.AmountPaid = finance.MustDecimal(amount)
		payment.PaymentDate = date
		inv.Payments = append(inv.Payments, payment)
	}
	return paymentRows.Err()
}

// AddInvoicePayment records a payment and recomputes the invoice status
// from the full payment history, both inside one SQL transaction.
func (s *Store) AddInvoicePayment(ctx context.Context, payment *finance.InvoicePayment) (finance.InvoiceStatus, error) {
	if payment.AmountPaid.Sign() <= 0 {
		return "", &finance.FieldError{Field: "amount_paid", Message: "must be positive"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var status finance.InvoiceStatus
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var total string
		err := tx.QueryRowContext(ctx,
			"SELECT total_amount FROM invoices WHERE id = ?", payment.InvoiceID).Scan(&total)
		if err == sql.ErrNoRows {
			return finance.ErrInvoiceNotFound
		}
		if err != nil {
			return storeErr(err)
		}

		payment.TransactionReference = billing.PaymentReference(payment.TransactionReference)
		result, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_payments (invoice_id, amount_paid, payment_date, payment_mode, transaction_reference)
			VALUES (?, ?, ?, ?, ?)`,
			payment.InvoiceID, payment.AmountPaid.String(), payment.PaymentDate.String(),
			nullString(payment.PaymentMode), payment.TransactionReference)
		if err != nil {
			return storeErr(err)
		}
		payment.ID, _ = result.LastInsertId()

		paid := decimal.Zero
		rows, err := tx.QueryContext(ctx,
			"SELECT amount_paid FROM invoice_payments WHERE invoice_id = ?", payment.InvoiceID)
		if err != nil {
			return storeErr(err)
		}
		defer rows.Close()
		for rows.Next() {
			var amount string
			if err := rows.Scan(&amount); err != nil {
				return storeErr(err)
			}
			paid = paid.Add(finance.MustDecimal(amount))
		}
		if err := rows.Err(); err != nil {
			return storeErr(err)
		}

		status = billing.StatusFor(finance.MustDecimal(total), paid)
		if _, err := tx.ExecContext(ctx,
			"UPDATE invoices SET status = ? WHERE id = ?", string(status), payment.InvoiceID); err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// =============================================================================
// QUOTATIONS
// =============================================================================

// CreateQuotation inserts the quotation and its items atomically.
func (s *Store) CreateQuotation(ctx context.Context, q *finance.Quotation) error {
	if q.ClientID == 0 {
		return &finance.FieldError{Field: "client_id", Message: "required"}
	}
	if len(q.Items) == 0 {
		return &finance.FieldError{Field: "items", Message: "at least one item required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		year := q.IssueDate.Year()
		existing, err := countByPrefix(ctx, tx, "quotations", "quotation_number", yearPrefix("QTN", year))
		if err != nil {
			return err
		}
		q.QuotationNumber = billing.QuotationNumber(year, existing)
		q.TotalAmount = documentTotal(itemAmountsQ(q.Items), decimal.Zero, decimal.Zero)
		if q.Status == "" {
			q.Status = "Draft"
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO quotations
				(client_id, project_id, quotation_number, issue_date, valid_till,
				 total_amount, status, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ClientID, nullInt64(q.ProjectID), q.QuotationNumber,
			q.IssueDate.String(), nullDate(q.ValidTill),
			q.TotalAmount.String(), q.Status, nullString(q.Notes))
		if err != nil {
			return storeErr(err)
		}
		q.ID, _ = result.LastInsertId()

		return insertQuotationItems(ctx, tx, q)
	})
}

// UpdateQuotation rewrites the header and replaces the item set.
func (s *Store) UpdateQuotation(ctx context.Context, q *finance.Quotation) error {
	if q.ID == 0 {
		return finance.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		q.TotalAmount = documentTotal(itemAmountsQ(q.Items), decimal.Zero, decimal.Zero)
		result, err := tx.ExecContext(ctx, `
			UPDATE quotations SET
				client_id = ?, project_id = ?, issue_date = ?, valid_till = ?,
				total_amount = ?, status = ?, notes = ?
			WHERE id = ?`,
			q.ClientID, nullInt64(q.ProjectID), q.IssueDate.String(),
			nullDate(q.ValidTill), q.TotalAmount.String(), q.Status,
			nullString(q.Notes), q.ID)
		if err != nil {
			return storeErr(err)
		}
		if err := rowsAffectedOr(result, finance.ErrQuotationNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM quotation_items WHERE quotation_id = ?", q.ID); err != nil {
			return storeErr(err)
		}
		return insertQuotationItems(ctx, tx, q)
	})
}

func insertQuotationItems(ctx context.Context, tx *sql.Tx, q *finance.Quotation) error {
	for i := range q.Items {
		item := &q.Items[i]
		item.QuotationID = q.ID
		item.Amount = item.Quantity.Mul(item.Rate)
		result, err := tx.ExecContext(ctx, `
			INSERT INTO quotation_items (quotation_id, description, quantity, rate, amount)
			VALUES (?, ?, ?, ?, ?)`,
			q.ID, item.Description, item.Quantity.String(),
			item.Rate.String(), item.Amount.String())
		if err != nil {
			return storeErr(err)
		}
		item.ID, _ = result.LastInsertId()
	}
	return nil
}

func (s *Store) DeleteQuotation(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM quotations WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrQuotationNotFound)
}

func (s *Store) Quotation(ctx context.Context, id int64) (*finance.Quotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectQuotation+" WHERE id = ?", id)
	q, err := scanQuotation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if err := s.attachQuotationItems(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Store) Quotations(ctx context.Context) ([]finance.Quotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectQuotation+" ORDER BY issue_date DESC, id DESC")
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var quotations []finance.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		quotations = append(quotations, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	for i := range quotations {
		if err := s.attachQuotationItems(ctx, &quotations[i]); err != nil {
			return nil, err
		}
	}
	return quotations, nil
}

const selectQuotation = `
	SELECT id, client_id, project_id, quotation_number, issue_date, valid_till,
	       total_amount, status, COALESCE(notes, '')
	FROM quotations`

func scanQuotation(row rowScanner) (*finance.Quotation, error) {
	var (
		q         finance.Quotation
		projectID sql.NullInt64
		issue     string
		validTill sql.NullString
		total     string
	)
	if err := row.Scan(&q.ID, &q.ClientID, &projectID, &q.QuotationNumber,
		&issue, &validTill, &total, &q.Status, &q.Notes); err != nil {
		return nil, err
	}
	issueDate, err := finance.ParseDate(issue)
	if err != nil {
		return nil, err
	}
	q.ProjectID = int64Ptr(projectID)
	q.IssueDate = issueDate
	q.ValidTill = datePtr(validTill)
	q.TotalAmount = finance.MustDecimal(total)
	return &q, nil
}

func (s *Store) attachQuotationItems(ctx context.Context, q *finance.Quotation) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quotation_id, description, quantity, rate, amount
		FROM quotation_items WHERE quotation_id = ? ORDER BY id`, q.ID)
	if err != nil {
		return storeErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     finance.QuotationItem
			quantity string
			rate     string
			amount   string
		)
		if err := rows.Scan(&item.ID, &item.QuotationID, &item.Description,
			&quantity, &rate, &amount); err != nil {
			return storeErr(err)
		}
		item.Quantity = finance.MustDecimal(quantity)
		item.Rate = finance.MustDecimal(rate)
		item.Amount = finance.MustDecimal(amount)
		q.Items = append(q.Items, item)
	}
	return rows.Err()
}

// =============================================================================
// NUMBERING / TOTALS
// =============================================================================

func yearPrefix(kind string, year int) string {
	return fmt.Sprintf("%s-%d-", kind, year)
}

func countByPrefix(ctx context.Context, tx *sql.Tx, table, column, prefix string) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE "+column+" LIKE ?", prefix+"%").Scan(&count)
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

// documentTotal applies discount then tax to the item subtotal.
func documentTotal(subtotal, discount, taxPercentage decimal.Decimal) decimal.Decimal {
	taxed := subtotal.Sub(discount)
	if taxPercentage.Sign() > 0 {
		taxed = taxed.Add(taxed.Mul(taxPercentage).Div(decimal.NewFromInt(100)))
	}
	return taxed
}

func itemAmounts(items []finance.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Quantity.Mul(item.Rate))
	}
	return total
}

func itemAmountsQ(items []finance.QuotationItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Quantity.Mul(item.Rate))
	}
	return total
}
