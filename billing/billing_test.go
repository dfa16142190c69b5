package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/moneta/finance-engine/billing"
	"github.com/moneta/finance-engine/finance"
)

func amt(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestStatusFor_Transitions(t *testing.T) {
	total := amt("1000")

	// No payments yet
	assert.Equal(t, finance.Unpaid, billing.StatusFor(total, amt("0")))

	// First payment of 400
	assert.Equal(t, finance.PartiallyPaid, billing.StatusFor(total, amt("400")))

	// Second payment brings the paid total to 1000
	assert.Equal(t, finance.Paid, billing.StatusFor(total, amt("1000")))

	// Overpayment still reads Paid
	assert.Equal(t, finance.Paid, billing.StatusFor(total, amt("1100")))
}

func TestStatusFor_ZeroTotal(t *testing.T) {
	// A zero-amount invoice has nothing outstanding, so it reads Paid
	// even before any payment is recorded.
	assert.Equal(t, finance.Paid, billing.StatusFor(amt("0"), amt("0")))
	assert.Equal(t, finance.Paid, billing.StatusFor(amt("0"), amt("50")))
}

func TestDocumentNumbers(t *testing.T) {
	assert.Equal(t, "INV-2026-001", billing.InvoiceNumber(2026, 0))
	assert.Equal(t, "INV-2026-013", billing.InvoiceNumber(2026, 12))
	assert.Equal(t, "QTN-2026-004", billing.QuotationNumber(2026, 3))
}

func TestPaymentReference(t *testing.T) {
	assert.Equal(t, "UPI-12345", billing.PaymentReference("UPI-12345"))

	generated := billing.PaymentReference("")
	assert.NotEmpty(t, generated)
	assert.NotEqual(t, generated, billing.PaymentReference(""))
}
