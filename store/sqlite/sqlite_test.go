package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/ledger"
	"github.com/moneta/finance-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustDate(t *testing.T, s string) finance.Date {
	t.Helper()
	d, err := finance.ParseDate(s)
	require.NoError(t, err)
	return d
}

func createAccount(t *testing.T, store *sqlite.Store, name string, accountType finance.AccountType, opening string) *finance.Account {
	t.Helper()
	account := &finance.Account{
		Name:           name,
		Type:           accountType,
		OpeningBalance: finance.MustDecimal(opening),
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	require.NotZero(t, account.ID)
	return account
}

func createCategory(t *testing.T, store *sqlite.Store, name string, kind finance.CategoryKind, isInvestment bool) *finance.Category {
	t.Helper()
	category := &finance.Category{Name: name, Kind: kind, IsInvestment: isInvestment}
	require.NoError(t, store.CreateCategory(context.Background(), category))
	return category
}

func addTransaction(t *testing.T, store *sqlite.Store, tx finance.Transaction) finance.Transaction {
	t.Helper()
	require.NoError(t, store.CreateTransaction(context.Background(), &tx))
	return tx
}

// =============================================================================
// ACCOUNTS AND BALANCES
// =============================================================================

func TestAccountLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := createAccount(t, store, "Checking", finance.AccountBank, "1000")

	fetched, err := store.Account(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Checking", fetched.Name)
	assert.True(t, fetched.OpeningBalance.Equal(decimal.NewFromInt(1000)))

	fetched.Name = "Primary Checking"
	require.NoError(t, store.UpdateAccount(ctx, fetched))

	again, err := store.Account(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Primary Checking", again.Name)

	require.NoError(t, store.DeleteAccount(ctx, account.ID))
	gone, err := store.Account(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, store.DeleteAccount(ctx, account.ID), finance.ErrAccountNotFound)
}

func TestUpdateAccount_MissingID(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateAccount(context.Background(), &finance.Account{Name: "x"})
	assert.ErrorIs(t, err, finance.ErrMissingID)
}

func TestBalanceThroughLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	checking := createAccount(t, store, "Checking", finance.AccountBank, "1000")
	savings := createAccount(t, store, "Savings", finance.AccountBank, "5000")
	salary := createCategory(t, store, "Salary", finance.KindIncome, false)
	rent := createCategory(t, store, "Rent", finance.KindExpense, false)

	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-03-01"), Amount: finance.MustDecimal("3000"),
		Direction: finance.Income, ToAccountID: &checking.ID, CategoryID: salary.ID,
	})
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-03-05"), Amount: finance.MustDecimal("1400"),
		Direction: finance.Expense, FromAccountID: &checking.ID, CategoryID: rent.ID,
	})
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-03-10"), Amount: finance.MustDecimal("500"),
		Direction: finance.Transfer, FromAccountID: &checking.ID, ToAccountID: &savings.ID,
		CategoryID: rent.ID,
	})

	calc := ledger.NewCalculator(store)

	balance, err := calc.Balance(ctx, checking.ID, nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(2100)), "got %s", balance)

	balance, err = calc.Balance(ctx, savings.ID, nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(5500)))

	// Cutoff before the transfer.
	asOf := mustDate(t, "2026-03-05")
	balance, err = calc.Balance(ctx, checking.ID, &asOf)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(2600)))

	balances, err := calc.Balances(ctx, nil)
	require.NoError(t, err)
	require.Len(t, balances, 2)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestCreateTransaction_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := createAccount(t, store, "Checking", finance.AccountBank, "0")
	category := createCategory(t, store, "Misc", finance.KindExpense, false)

	cases := []struct {
		name string
		tx   finance.Transaction
	}{
		{"income without to account", finance.Transaction{
			Date: mustDate(t, "2026-01-01"), Amount: decimal.NewFromInt(10),
			Direction: finance.Income, CategoryID: category.ID,
		}},
		{"expense without from account", finance.Transaction{
			Date: mustDate(t, "2026-01-01"), Amount: decimal.NewFromInt(10),
			Direction: finance.Expense, CategoryID: category.ID,
		}},
		{"transfer to itself", finance.Transaction{
			Date: mustDate(t, "2026-01-01"), Amount: decimal.NewFromInt(10),
			Direction: finance.Transfer, FromAccountID: &account.ID, ToAccountID: &account.ID,
			CategoryID: category.ID,
		}},
		{"negative amount", finance.Transaction{
			Date: mustDate(t, "2026-01-01"), Amount: decimal.NewFromInt(-5),
			Direction: finance.Expense, FromAccountID: &account.ID, CategoryID: category.ID,
		}},
		{"unknown direction", finance.Transaction{
			Date: mustDate(t, "2026-01-01"), Amount: decimal.NewFromInt(10),
			Direction: "sideways", FromAccountID: &account.ID, CategoryID: category.ID,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.CreateTransaction(ctx, &tc.tx)
			assert.ErrorIs(t, err, finance.ErrValidation)
		})
	}
}

func TestTransactions_FilterAndTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := createAccount(t, store, "Checking", finance.AccountBank, "0")
	groceries := createCategory(t, store, "Groceries", finance.KindExpense, false)
	sip := createCategory(t, store, "Mutual Fund SIP", finance.KindExpense, true)

	tag := &finance.Tag{Name: "recurring"}
	require.NoError(t, store.CreateTag(ctx, tag))

	grocery := addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-02-10"), Amount: finance.MustDecimal("250"),
		Direction: finance.Expense, FromAccountID: &account.ID, CategoryID: groceries.ID,
		TagIDs: []int64{tag.ID},
	})
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-02-15"), Amount: finance.MustDecimal("5000"),
		Direction: finance.Expense, FromAccountID: &account.ID, CategoryID: sip.ID,
	})

	all, err := store.Transactions(ctx, sqlite.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	assert.True(t, all[0].Date.After(all[1].Date))

	// The synthetic investment direction selects by category flag.
	invested, err := store.Transactions(ctx, sqlite.TransactionFilter{Direction: sqlite.DirectionInvestment})
	require.NoError(t, err)
	require.Len(t, invested, 1)
	assert.Equal(t, sip.ID, invested[0].CategoryID)

	byCategory, err := store.Transactions(ctx, sqlite.TransactionFilter{CategoryID: &groceries.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, []int64{tag.ID}, byCategory[0].TagIDs)

	start := mustDate(t, "2026-02-12")
	windowed, err := store.Transactions(ctx, sqlite.TransactionFilter{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, windowed, 1)

	// Tag set replacement on update.
	grocery.TagIDs = nil
	require.NoError(t, store.UpdateTransaction(ctx, &grocery))
	fetched, err := store.Transaction(ctx, grocery.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.TagIDs)
}

// =============================================================================
// BUDGET SOURCE SUMS
// =============================================================================

func TestBudgetSourceSums(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	checking := createAccount(t, store, "Checking", finance.AccountBank, "0")
	broker := createAccount(t, store, "Broker", finance.AccountInvestment, "0")
	salary := createCategory(t, store, "Salary", finance.KindIncome, false)
	food := createCategory(t, store, "Food", finance.KindExpense, false)

	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-04-01"), Amount: finance.MustDecimal("4000"),
		Direction: finance.Income, ToAccountID: &checking.ID, CategoryID: salary.ID,
	})
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-04-10"), Amount: finance.MustDecimal("600"),
		Direction: finance.Expense, FromAccountID: &checking.ID, CategoryID: food.ID,
	})
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-04-15"), Amount: finance.MustDecimal("1000"),
		Direction: finance.Transfer, FromAccountID: &checking.ID, ToAccountID: &broker.ID,
		CategoryID: food.ID,
	})
	// Outside the window.
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-05-02"), Amount: finance.MustDecimal("999"),
		Direction: finance.Expense, FromAccountID: &checking.ID, CategoryID: food.ID,
	})

	start, end := mustDate(t, "2026-04-01"), mustDate(t, "2026-04-30")

	income, err := store.DirectionTotal(ctx, finance.Income, start, end)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.NewFromInt(4000)))

	expenses, err := store.DirectionTotal(ctx, finance.Expense, start, end)
	require.NoError(t, err)
	assert.True(t, expenses.Equal(decimal.NewFromInt(600)))

	transfers, err := store.InvestmentTransferTotal(ctx, start, end)
	require.NoError(t, err)
	assert.True(t, transfers.Equal(decimal.NewFromInt(1000)))

	flows, err := store.CategoryFlows(ctx, start, end)
	require.NoError(t, err)
	assert.True(t, flows[food.ID].Expense.Equal(decimal.NewFromInt(600)))
	assert.True(t, flows[food.ID].Total.Equal(decimal.NewFromInt(1600)), "transfers count in totals")
	assert.True(t, flows[salary.ID].Income.Equal(decimal.NewFromInt(4000)))
}

// =============================================================================
// INVESTMENTS
// =============================================================================

func TestInvestmentPriceUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	broker := createAccount(t, store, "Broker", finance.AccountInvestment, "0")
	inv := &finance.Investment{
		Name: "Index Fund", Type: finance.MutualFund,
		AccountID: broker.ID, ProviderSymbol: "120503",
	}
	require.NoError(t, store.CreateInvestment(ctx, inv))

	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateInvestmentPrice(ctx, inv.ID, finance.MustDecimal("45.6789"), at))

	fetched, err := store.Investment(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.CurrentPrice)
	assert.Equal(t, "45.6789", fetched.CurrentPrice.String())
	assert.Equal(t, "2026-08-31T10:00:00Z", fetched.LastUpdatedAt)

	assert.ErrorIs(t, store.UpdateInvestmentPrice(ctx, 9999, decimal.NewFromInt(1), at),
		finance.ErrInvestmentNotFound)
}

func TestInvestmentLotsAndFlows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	checking := createAccount(t, store, "Checking", finance.AccountBank, "0")
	broker := createAccount(t, store, "Broker", finance.AccountInvestment, "0")
	charges := createCategory(t, store, "Brokerage", finance.KindExpense, false)

	inv := &finance.Investment{Name: "Blue Chip", Type: finance.Stock, AccountID: broker.ID}
	require.NoError(t, store.CreateInvestment(ctx, inv))

	require.NoError(t, store.CreateLot(ctx, &finance.InvestmentLot{
		InvestmentID: inv.ID, Quantity: finance.MustDecimal("10"),
		PricePerUnit: finance.MustDecimal("100"), Charges: finance.MustDecimal("5"),
		Date: mustDate(t, "2026-01-10"), Type: finance.Buy,
	}))
	require.NoError(t, store.CreateLot(ctx, &finance.InvestmentLot{
		InvestmentID: inv.ID, Quantity: finance.MustDecimal("4"),
		PricePerUnit: finance.MustDecimal("120"), Charges: finance.MustDecimal("2"),
		Date: mustDate(t, "2026-02-10"), Type: finance.Sell,
	}))

	lots, err := store.Lots(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, finance.Buy, lots[0].Type)

	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-01-05"), Amount: finance.MustDecimal("500"),
		Direction: finance.Transfer, FromAccountID: &checking.ID, ToAccountID: &broker.ID,
		CategoryID: charges.ID, InvestmentID: &inv.ID,
	})
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-01-06"), Amount: finance.MustDecimal("30"),
		Direction: finance.Expense, FromAccountID: &checking.ID,
		CategoryID: charges.ID, InvestmentID: &inv.ID,
	})

	flows, err := store.InvestmentFlows(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, flows.TransferTotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, flows.ExpenseTotal.Equal(decimal.NewFromInt(30)))
}

// =============================================================================
// BUDGET RECORDS
// =============================================================================

func TestBudgetUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	food := createCategory(t, store, "Food", finance.KindExpense, false)
	month := finance.Month{Year: 2026, Month: time.April}

	require.NoError(t, store.SetBudget(ctx, &finance.Budget{
		Month: month, CategoryID: food.ID, BudgetedAmount: finance.MustDecimal("800"),
	}))
	require.NoError(t, store.SetBudget(ctx, &finance.Budget{
		Month: month, CategoryID: food.ID, BudgetedAmount: finance.MustDecimal("900"),
	}))

	budgets, err := store.Budgets(ctx, month)
	require.NoError(t, err)
	require.Len(t, budgets, 1, "same month and category upserts")
	assert.True(t, budgets[0].BudgetedAmount.Equal(decimal.NewFromInt(900)))
}

func TestBudgetSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.BudgetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, settings.SalaryDate)

	require.NoError(t, store.UpdateBudgetSettings(ctx, finance.BudgetSettings{SalaryDate: 25}))
	settings, err = store.BudgetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, settings.SalaryDate)

	err = store.UpdateBudgetSettings(ctx, finance.BudgetSettings{SalaryDate: 40})
	assert.ErrorIs(t, err, finance.ErrValidation)
}

// =============================================================================
// BILLING
// =============================================================================

func billingFixture(t *testing.T, store *sqlite.Store) *finance.Project {
	t.Helper()
	ctx := context.Background()
	client := &finance.Client{Name: "Acme"}
	require.NoError(t, store.CreateClient(ctx, client))
	project := &finance.Project{
		Name: "Website", ClientID: &client.ID,
		ExpectedAmount: finance.MustDecimal("6000"),
		DailyRate:      finance.MustDecimal("400"),
	}
	require.NoError(t, store.CreateProject(ctx, project))
	return project
}

func TestCreateInvoice_NumberingAndTotal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	project := billingFixture(t, store)

	first := &finance.Invoice{
		ProjectID:     project.ID,
		IssueDate:     mustDate(t, "2026-06-01"),
		Discount:      finance.MustDecimal("100"),
		TaxPercentage: finance.MustDecimal("10"),
		Items: []finance.InvoiceItem{
			{Description: "Design", Quantity: finance.MustDecimal("2"), Rate: finance.MustDecimal("300")},
			{Description: "Build", Quantity: finance.MustDecimal("1"), Rate: finance.MustDecimal("500")},
		},
	}
	require.NoError(t, store.CreateInvoice(ctx, first))
	assert.Equal(t, "INV-2026-001", first.InvoiceNumber)
	// (600 + 500 - 100) * 1.10
	assert.True(t, first.TotalAmount.Equal(decimal.NewFromInt(1100)), "got %s", first.TotalAmount)
	assert.Equal(t, finance.Unpaid, first.Status)

	second := &finance.Invoice{
		ProjectID: project.ID,
		IssueDate: mustDate(t, "2026-07-01"),
		Items: []finance.InvoiceItem{
			{Description: "Support", Quantity: finance.MustDecimal("1"), Rate: finance.MustDecimal("200")},
		},
	}
	require.NoError(t, store.CreateInvoice(ctx, second))
	assert.Equal(t, "INV-2026-002", second.InvoiceNumber)

	err := store.CreateInvoice(ctx, &finance.Invoice{
		ProjectID: project.ID, IssueDate: mustDate(t, "2026-07-02"),
	})
	assert.ErrorIs(t, err, finance.ErrValidation, "no items")
}

func TestAddInvoicePayment_StatusTransitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	project := billingFixture(t, store)

	inv := &finance.Invoice{
		ProjectID: project.ID,
		IssueDate: mustDate(t, "2026-06-01"),
		Items: []finance.InvoiceItem{
			{Description: "Work", Quantity: finance.MustDecimal("1"), Rate: finance.MustDecimal("1000")},
		},
	}
	require.NoError(t, store.CreateInvoice(ctx, inv))

	status, err := store.AddInvoicePayment(ctx, &finance.InvoicePayment{
		InvoiceID: inv.ID, AmountPaid: finance.MustDecimal("400"),
		PaymentDate: mustDate(t, "2026-06-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, finance.PartiallyPaid, status)

	payment := &finance.InvoicePayment{
		InvoiceID: inv.ID, AmountPaid: finance.MustDecimal("600"),
		PaymentDate: mustDate(t, "2026-06-20"),
	}
	status, err = store.AddInvoicePayment(ctx, payment)
	require.NoError(t, err)
	assert.Equal(t, finance.Paid, status)
	assert.NotEmpty(t, payment.TransactionReference, "reference generated when absent")

	fetched, err := store.Invoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.Paid, fetched.Status)
	require.Len(t, fetched.Payments, 2)
	require.Len(t, fetched.Items, 1)

	_, err = store.AddInvoicePayment(ctx, &finance.InvoicePayment{
		InvoiceID: 9999, AmountPaid: finance.MustDecimal("1"),
		PaymentDate: mustDate(t, "2026-06-20"),
	})
	assert.ErrorIs(t, err, finance.ErrInvoiceNotFound)
}

func TestQuotationUpdate_ReplacesItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	client := &finance.Client{Name: "Beta LLC"}
	require.NoError(t, store.CreateClient(ctx, client))

	q := &finance.Quotation{
		ClientID:  client.ID,
		IssueDate: mustDate(t, "2026-05-01"),
		Items: []finance.QuotationItem{
			{Description: "Audit", Quantity: finance.MustDecimal("1"), Rate: finance.MustDecimal("1500")},
		},
	}
	require.NoError(t, store.CreateQuotation(ctx, q))
	assert.Equal(t, "QTN-2026-001", q.QuotationNumber)
	assert.True(t, q.TotalAmount.Equal(decimal.NewFromInt(1500)))

	q.Items = []finance.QuotationItem{
		{Description: "Audit", Quantity: finance.MustDecimal("1"), Rate: finance.MustDecimal("1500")},
		{Description: "Report", Quantity: finance.MustDecimal("1"), Rate: finance.MustDecimal("500")},
	}
	require.NoError(t, store.UpdateQuotation(ctx, q))

	fetched, err := store.Quotation(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 2)
	assert.True(t, fetched.TotalAmount.Equal(decimal.NewFromInt(2000)))
}

// =============================================================================
// PROJECTS AND TIME LOGS
// =============================================================================

func TestProjectTotals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	project := billingFixture(t, store)

	checking := createAccount(t, store, "Checking", finance.AccountBank, "0")
	fees := createCategory(t, store, "Consulting", finance.KindIncome, false)
	tools := createCategory(t, store, "Tools", finance.KindExpense, false)

	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-03-01"), Amount: finance.MustDecimal("2000"),
		Direction: finance.Income, ToAccountID: &checking.ID, CategoryID: fees.ID,
		ProjectID: &project.ID,
	})
	addTransaction(t, store, finance.Transaction{
		Date: mustDate(t, "2026-03-02"), Amount: finance.MustDecimal("150"),
		Direction: finance.Expense, FromAccountID: &checking.ID, CategoryID: tools.ID,
		ProjectID: &project.ID,
	})
	require.NoError(t, store.CreateTimeLog(ctx, &finance.TimeLog{
		ProjectID: project.ID, Date: mustDate(t, "2026-03-01"),
		Hours: finance.MustDecimal("6.5"),
	}))

	totals, err := store.ProjectTotals(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, totals.Received.Equal(decimal.NewFromInt(2000)))
	assert.True(t, totals.Spent.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "6.5", totals.HoursLogged.String())
}

// =============================================================================
// COMPANY SETTINGS
// =============================================================================

func TestCompanySettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCompanySettings(ctx, map[string]string{
		"company_name": "Moneta Consulting",
		"currency":     "INR",
	}))
	require.NoError(t, store.SetCompanySettings(ctx, map[string]string{
		"currency": "USD",
	}))

	settings, err := store.CompanySettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Moneta Consulting", settings["company_name"])
	assert.Equal(t, "USD", settings["currency"])
}
