package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta/finance-engine/api"
	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/store/sqlite"
)

type fakePriceSource struct {
	prices map[string]string
}

func (f *fakePriceSource) LookupPrice(ctx context.Context, symbol string, kind finance.InvestmentType) (decimal.Decimal, error) {
	if price, ok := f.prices[symbol]; ok {
		return finance.MustDecimal(price), nil
	}
	return decimal.Zero, &finance.PriceLookupError{Symbol: symbol, Kind: kind, Cause: fmt.Errorf("unknown symbol")}
}

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	h := api.NewHandler(store, &fakePriceSource{prices: map[string]string{"GOOD": "123.45"}}, log)
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func doJSONList(t *testing.T, url string) (*http.Response, []map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded []map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestAccountEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/accounts", map[string]any{
		"name":            "Checking",
		"type":            "bank",
		"opening_balance": "1000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(created["id"].(float64))
	require.NotZero(t, id)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/accounts", map[string]any{
		"name": "Bad", "type": "vault",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, list := doJSONList(t, srv.URL+"/api/accounts")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "Checking", list[0]["name"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+fmt.Sprintf("/api/accounts/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+fmt.Sprintf("/api/accounts/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBalancesEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	account := &finance.Account{Name: "Checking", Type: finance.AccountBank, OpeningBalance: finance.MustDecimal("1000")}
	require.NoError(t, store.CreateAccount(ctx, account))
	category := &finance.Category{Name: "Salary", Kind: finance.KindIncome}
	require.NoError(t, store.CreateCategory(ctx, category))

	date, _ := finance.ParseDate("2026-03-01")
	require.NoError(t, store.CreateTransaction(ctx, &finance.Transaction{
		Date: date, Amount: finance.MustDecimal("3000"),
		Direction: finance.Income, ToAccountID: &account.ID, CategoryID: category.ID,
	}))

	resp, list := doJSONList(t, srv.URL+"/api/accounts/balances")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "4000", list[0]["current_balance"])

	resp, _ = doJSONList(t, srv.URL+"/api/accounts/balances?start_date=bogus")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransactionValidationOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	category := &finance.Category{Name: "Misc", Kind: finance.KindExpense}
	require.NoError(t, store.CreateCategory(ctx, category))

	// Income without a destination account.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", map[string]any{
		"date":        "2026-01-15",
		"amount":      "100",
		"direction":   "income",
		"category_id": category.ID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "to_account_id")
}

func TestBudgetSummaryEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	account := &finance.Account{Name: "Checking", Type: finance.AccountBank}
	require.NoError(t, store.CreateAccount(ctx, account))
	salary := &finance.Category{Name: "Salary", Kind: finance.KindIncome}
	require.NoError(t, store.CreateCategory(ctx, salary))
	food := &finance.Category{Name: "Food", Kind: finance.KindExpense}
	require.NoError(t, store.CreateCategory(ctx, food))

	date, _ := finance.ParseDate("2026-04-03")
	require.NoError(t, store.CreateTransaction(ctx, &finance.Transaction{
		Date: date, Amount: finance.MustDecimal("4000"),
		Direction: finance.Income, ToAccountID: &account.ID, CategoryID: salary.ID,
	}))
	spent, _ := finance.ParseDate("2026-04-10")
	require.NoError(t, store.CreateTransaction(ctx, &finance.Transaction{
		Date: spent, Amount: finance.MustDecimal("600"),
		Direction: finance.Expense, FromAccountID: &account.ID, CategoryID: food.ID,
	}))

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/budgets/summary?month=2026-04", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4000", body["actual_income"])
	assert.Equal(t, "600", body["total_spent"])
	assert.Equal(t, "3400", body["savings"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/budgets/summary?month=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvoicePaymentEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	client := &finance.Client{Name: "Acme"}
	require.NoError(t, store.CreateClient(ctx, client))
	project := &finance.Project{Name: "Website", ClientID: &client.ID}
	require.NoError(t, store.CreateProject(ctx, project))

	resp, invoice := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", map[string]any{
		"project_id": project.ID,
		"issue_date": "2026-06-01",
		"items": []map[string]any{
			{"description": "Work", "quantity": "1", "rate": "1000"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "INV-2026-001", invoice["invoice_number"])
	invoiceID := int64(invoice["id"].(float64))

	resp, payment := doJSON(t, http.MethodPost,
		srv.URL+fmt.Sprintf("/api/invoices/%d/payments", invoiceID), map[string]any{
			"amount_paid":  "400",
			"payment_date": "2026-06-10",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Partially Paid", payment["status"])

	resp, payment = doJSON(t, http.MethodPost,
		srv.URL+fmt.Sprintf("/api/invoices/%d/payments", invoiceID), map[string]any{
			"amount_paid":  "600",
			"payment_date": "2026-06-20",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Paid", payment["status"])
}

func TestPriceEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/investments/price?symbol=GOOD", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "123.45", body["price"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/investments/price?symbol=BAD", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// A sweep with one good and one bad symbol updates what it can.
	account := &finance.Account{Name: "Broker", Type: finance.AccountInvestment}
	require.NoError(t, store.CreateAccount(ctx, account))
	good := &finance.Investment{Name: "Good Stock", Type: finance.Stock, AccountID: account.ID, ProviderSymbol: "GOOD"}
	require.NoError(t, store.CreateInvestment(ctx, good))
	bad := &finance.Investment{Name: "Bad Stock", Type: finance.Stock, AccountID: account.ID, ProviderSymbol: "BAD"}
	require.NoError(t, store.CreateInvestment(ctx, bad))

	resp, sweep := doJSON(t, http.MethodPost, srv.URL+"/api/investments/refresh-prices", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), sweep["updated"])
	assert.Equal(t, float64(1), sweep["failed"])

	refreshed, err := store.Investment(ctx, good.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.CurrentPrice)
	assert.Equal(t, "123.45", refreshed.CurrentPrice.String())
}

func TestProjectIncomeReportCountsPriorYearPayments(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	account := &finance.Account{Name: "Business", Type: finance.AccountBank}
	require.NoError(t, store.CreateAccount(ctx, account))
	category := &finance.Category{Name: "Consulting", Kind: finance.KindIncome}
	require.NoError(t, store.CreateCategory(ctx, category))

	deadline, _ := finance.ParseDate("2025-06-15")
	project := &finance.Project{
		Name:           "Platform Build",
		ExpectedAmount: finance.MustDecimal("10000"),
		EndDate:        &deadline,
	}
	require.NoError(t, store.CreateProject(ctx, project))

	pay := func(day, amount string) {
		date, err := finance.ParseDate(day)
		require.NoError(t, err)
		require.NoError(t, store.CreateTransaction(ctx, &finance.Transaction{
			Date: date, Amount: finance.MustDecimal(amount),
			Direction: finance.Income, ToAccountID: &account.ID,
			CategoryID: category.ID, ProjectID: &project.ID,
		}))
	}
	pay("2024-12-01", "4000")
	pay("2025-06-10", "3000")

	resp, months := doJSONList(t, srv.URL+"/api/reports/project-income?year=2025")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, months, 12)

	// June: the 4000 received the previous December reduces what the
	// deadline month still expects.
	june := months[5]
	require.Equal(t, "2025-06", june["month"])
	assert.Equal(t, "6000", june["expected_income"])
	assert.Equal(t, "3000", june["actual_income"])

	rows := june["projects"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "6000", row["current_expected"])
	assert.Equal(t, "3000", row["monthly_actual"])
	assert.Equal(t, "3000", row["outstanding_balance"])
}

func TestDashboardEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	bank := &finance.Account{Name: "Bank", Type: finance.AccountBank, OpeningBalance: finance.MustDecimal("5000")}
	require.NoError(t, store.CreateAccount(ctx, bank))
	other := &finance.Account{Name: "Loans", Type: finance.AccountOther, OpeningBalance: finance.MustDecimal("9999")}
	require.NoError(t, store.CreateAccount(ctx, other))

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// "other" accounts are listed but excluded from the headline total.
	assert.Equal(t, "5000", body["total_balance"])
	assert.Len(t, body["accounts"], 2)
}
