/*
Package finance provides the core data model for the finance engine.

PURPOSE:
  This package contains the record types shared by every engine package.
  Accounts, transactions, investments, lots, budgets, projects, and
  billing records are the source of truth; every balance, valuation, and
  report is derived from them on demand and never stored.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: A money container with an opening balance
  - Transaction: A dated monetary flow between accounts
  - Investment/InvestmentLot: Unit-level investment activity
  - Budget/MonthlyIncome: Per-month planning records
  - Invoice/Quotation: Billing documents with line items

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for every monetary quantity
  2. Derived state: Balances are never stored on records
  3. Nullable references: Optional links are pointers, absent means
     "no effect on that side"

SEE ALSO:
  - date.go: Date and Month calendar types
  - errors.go: Error taxonomy
  - ledger/, invest/, budget/, report/: Engines consuming these types
*/
package finance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountType string

const (
	AccountBank       AccountType = "bank"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

// Account is a money container. Its balance is always derived:
// opening_balance plus the net of transaction flows referencing it.
type Account struct {
	ID             int64
	Name           string
	Type           AccountType
	OpeningBalance decimal.Decimal
	Notes          string
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// Direction classifies a transaction and determines which account
// fields apply: income expects To, expense expects From, transfer both.
type Direction string

const (
	Income   Direction = "income"
	Expense  Direction = "expense"
	Transfer Direction = "transfer"
)

// Transaction is a dated monetary flow. Amount is always non-negative;
// Direction carries the sign semantics. FromAccountID/ToAccountID may
// each be nil independently; a nil side contributes nothing to any
// balance.
type Transaction struct {
	ID            int64
	Date          Date
	Amount        decimal.Decimal
	Direction     Direction
	FromAccountID *int64
	ToAccountID   *int64
	CategoryID    int64
	ClientID      *int64
	ProjectID     *int64
	InvestmentID  *int64
	Notes         string
	TagIDs        []int64
}

// =============================================================================
// CATEGORIES / CLIENTS / PROJECTS / TAGS
// =============================================================================

type CategoryKind string

const (
	KindIncome  CategoryKind = "income"
	KindExpense CategoryKind = "expense"
)

// Category classifies transactions. Kind and transaction direction are
// set independently by the caller; report rollups filter by direction,
// and by IsInvestment for investment rollups, never by kind.
type Category struct {
	ID           int64
	Name         string
	Kind         CategoryKind
	IsInvestment bool
	Notes        string
}

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientProspect ClientStatus = "prospect"
	ClientInactive ClientStatus = "inactive"
	ClientArchived ClientStatus = "archived"
)

type Client struct {
	ID      int64
	Name    string
	Status  ClientStatus
	Email   string
	Phone   string
	Company string
	Notes   string
}

// Project groups income transactions for recognition. ExpectedAmount
// and EndDate drive deadline-based income recognition.
type Project struct {
	ID             int64
	Name           string
	ClientID       *int64
	ExpectedAmount decimal.Decimal
	DailyRate      decimal.Decimal
	StartDate      *Date
	EndDate        *Date
	Notes          string
}

type Tag struct {
	ID   int64
	Name string
}

// TimeLog records hours worked against a project.
type TimeLog struct {
	ID          int64
	ProjectID   int64
	Date        Date
	Hours       decimal.Decimal
	Description string
}

// =============================================================================
// INVESTMENTS
// =============================================================================

type InvestmentType string

const (
	Stock            InvestmentType = "stock"
	MutualFund       InvestmentType = "mutual-fund"
	FixedDeposit     InvestmentType = "fixed-deposit"
	RecurringDeposit InvestmentType = "recurring-deposit"
)

// Investment is an instrument owned by an account. CurrentPrice is nil
// until refreshed from the external price source (or entered manually
// for deposit instruments). The fixed-instrument fields are only
// meaningful for fixed/recurring deposits.
type Investment struct {
	ID              int64
	Name            string
	Type            InvestmentType
	AccountID       int64
	ProviderSymbol  string
	CurrentPrice    *decimal.Decimal
	PrincipalAmount *decimal.Decimal
	InterestRate    *decimal.Decimal
	MaturityDate    *Date
	MaturityAmount  *decimal.Decimal
	MonthlyDeposit  *decimal.Decimal
	LastUpdatedAt   string
	Notes           string
}

type LotType string

const (
	Buy  LotType = "buy"
	Sell LotType = "sell"
)

// InvestmentLot is a discrete buy or sell event: quantity, unit price,
// and transaction charges. Lots are the authoritative record of
// unit-level activity.
type InvestmentLot struct {
	ID           int64
	InvestmentID int64
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	Charges      decimal.Decimal
	Date         Date
	Type         LotType
}

// =============================================================================
// BUDGETS
// =============================================================================

// Budget assigns a planned amount to one category for one month.
// (Month, CategoryID) is unique.
type Budget struct {
	ID             int64
	Month          Month
	CategoryID     int64
	BudgetedAmount decimal.Decimal
	Notes          string
}

// MonthlyIncome records the expected income for a month.
type MonthlyIncome struct {
	ID             int64
	Month          Month
	ExpectedIncome decimal.Decimal
	Notes          string
}

// BudgetSettings holds the single salary anchor day (1-31).
type BudgetSettings struct {
	SalaryDate int
}

// =============================================================================
// BILLING
// =============================================================================

type InvoiceStatus string

const (
	Unpaid        InvoiceStatus = "Unpaid"
	PartiallyPaid InvoiceStatus = "Partially Paid"
	Paid          InvoiceStatus = "Paid"
)

// Invoice is a billing document against a project. Status is derived
// from payment totals and recomputed on every recorded payment.
type Invoice struct {
	ID            int64
	ProjectID     int64
	InvoiceNumber string
	Stage         string
	IssueDate     Date
	DueDate       *Date
	Discount      decimal.Decimal
	TaxPercentage decimal.Decimal
	TotalAmount   decimal.Decimal
	Status        InvoiceStatus
	Notes         string
	Items         []InvoiceItem
	Payments      []InvoicePayment
}

type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

type InvoicePayment struct {
	ID                   int64
	InvoiceID            int64
	AmountPaid           decimal.Decimal
	PaymentDate          Date
	PaymentMode          string
	TransactionReference string
}

type Quotation struct {
	ID              int64
	ClientID        int64
	ProjectID       *int64
	QuotationNumber string
	IssueDate       Date
	ValidTill       *Date
	TotalAmount     decimal.Decimal
	Status          string
	Notes           string
	Items           []QuotationItem
}

type QuotationItem struct {
	ID          int64
	QuotationID int64
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// MustDecimal parses a decimal string, resolving malformed input to zero.
// Storage uses decimal strings; a damaged row should degrade, not panic.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SafeDiv divides a by b, resolving a zero or negative denominator to 0.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.Sign() <= 0 {
		return decimal.Zero
	}
	return a.Div(b)
}

// Percentage returns part/whole*100, resolving a zero or negative
// denominator to 0.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.Sign() <= 0 {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
