/*
Package billing holds invoice and quotation document logic.

PURPOSE:
  Document numbering and payment-status derivation. Status is never
  patched incrementally: every recorded payment recomputes it from the
  paid/total ratio, so a stored status can always be reproduced from
  the payment rows.

SEE ALSO:
  - store/sqlite/billing.go: Atomic create/payment persistence
  - finance/types.go: Invoice, Quotation
*/
package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// StatusFor derives an invoice status from its totals: Paid when paid
// covers the total, Partially Paid when something but not everything
// has arrived, Unpaid otherwise.
func StatusFor(total, paid decimal.Decimal) finance.InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return finance.Paid
	case paid.Sign() > 0:
		return finance.PartiallyPaid
	default:
		return finance.Unpaid
	}
}

// InvoiceNumber formats the next invoice number for a year given the
// count of existing invoices in that year: INV-2026-001, INV-2026-002.
func InvoiceNumber(year, existing int) string {
	return fmt.Sprintf("INV-%d-%03d", year, existing+1)
}

// QuotationNumber formats the next quotation number for a year.
func QuotationNumber(year, existing int) string {
	return fmt.Sprintf("QTN-%d-%03d", year, existing+1)
}

// PaymentReference returns the given reference, or generates one when
// the payer supplied none so every payment row stays traceable.
func PaymentReference(given string) string {
	if given != "" {
		return given
	}
	return uuid.NewString()
}
