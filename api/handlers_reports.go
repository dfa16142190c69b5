/*
handlers_reports.go - Budget, report, and dashboard handlers

PURPOSE:
  Read-mostly endpoints: budget records plus every derived view the
  engines produce. Each request recomputes from source records; nothing
  here caches or stores a derived figure.

SEE ALSO:
  - budget/engine.go: Summary and yearly report derivation
  - report/: Rollups, income recognition, dashboard
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/report"
	"github.com/moneta/finance-engine/store/sqlite"
)

// =============================================================================
// BUDGET RECORDS
// =============================================================================

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := monthQuery(r)
	if err != nil {
		h.error(w, err)
		return
	}
	budgets, err := h.Store.Budgets(r.Context(), month)
	if err != nil {
		h.error(w, err)
		return
	}

	type budgetDTO struct {
		ID             int64  `json:"id"`
		Month          string `json:"month"`
		CategoryID     int64  `json:"category_id"`
		BudgetedAmount string `json:"budgeted_amount"`
		Notes          string `json:"notes,omitempty"`
	}
	dtos := make([]budgetDTO, 0, len(budgets))
	for _, b := range budgets {
		dtos = append(dtos, budgetDTO{
			ID:             b.ID,
			Month:          b.Month.String(),
			CategoryID:     b.CategoryID,
			BudgetedAmount: b.BudgetedAmount.String(),
			Notes:          b.Notes,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	var req BudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	month, err := finance.ParseMonth(req.Month)
	if err != nil {
		h.error(w, &finance.FieldError{Field: "month", Message: err.Error()})
		return
	}
	amount, err := parseAmount("budgeted_amount", req.BudgetedAmount)
	if err != nil {
		h.error(w, err)
		return
	}

	budget := &finance.Budget{
		Month:          month,
		CategoryID:     req.CategoryID,
		BudgetedAmount: amount,
		Notes:          req.Notes,
	}
	if err := h.Store.SetBudget(r.Context(), budget); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": budget.ID})
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteBudget(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	var req MonthlyIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	month, err := finance.ParseMonth(req.Month)
	if err != nil {
		h.error(w, &finance.FieldError{Field: "month", Message: err.Error()})
		return
	}
	amount, err := parseAmount("expected_income", req.ExpectedIncome)
	if err != nil {
		h.error(w, err)
		return
	}

	income := &finance.MonthlyIncome{Month: month, ExpectedIncome: amount, Notes: req.Notes}
	if err := h.Store.SetMonthlyIncome(r.Context(), income); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": income.ID})
}

func (h *Handler) GetBudgetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.BudgetSettings(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BudgetSettingsDTO{SalaryDate: settings.SalaryDate})
}

func (h *Handler) UpdateBudgetSettings(w http.ResponseWriter, r *http.Request) {
	var req BudgetSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.Store.UpdateBudgetSettings(r.Context(), finance.BudgetSettings{SalaryDate: req.SalaryDate}); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// BUDGET VIEWS
// =============================================================================

func (h *Handler) GetBudgetSummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = finance.MonthOf(finance.Today()).String()
	}

	summary, err := h.Budget.Summarize(r.Context(), month)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetSummaryDTO(summary))
}

func (h *Handler) GetBudgetReport(w http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		h.error(w, err)
		return
	}

	rows, err := h.Budget.Report(r.Context(), year)
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]MonthlyReportDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toMonthlyReportDTO(row))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REPORTS
// =============================================================================

func (h *Handler) reportTransactions(r *http.Request) ([]finance.Transaction, error) {
	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		return nil, err
	}
	return h.Store.Transactions(r.Context(), filter)
}

func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	txs, err := h.reportTransactions(r)
	if err != nil {
		h.error(w, err)
		return
	}

	rows := report.MonthlySummaries(txs)
	dtos := make([]MonthlySummaryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, MonthlySummaryDTO{
			Month:   row.Month.String(),
			Income:  row.Income,
			Expense: row.Expense,
			Net:     row.Net,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetCategoryReport(w http.ResponseWriter, r *http.Request) {
	txs, err := h.reportTransactions(r)
	if err != nil {
		h.error(w, err)
		return
	}
	categories, err := h.categoryMap(r)
	if err != nil {
		h.error(w, err)
		return
	}

	rows := report.CategorySummaries(txs, categories)
	dtos := make([]CategorySummaryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, CategorySummaryDTO{
			CategoryName: row.CategoryName,
			Total:        row.Total,
			Count:        row.Count,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetClientReport(w http.ResponseWriter, r *http.Request) {
	txs, err := h.reportTransactions(r)
	if err != nil {
		h.error(w, err)
		return
	}
	clients, err := h.Store.Clients(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	byID := make(map[int64]finance.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	rows := report.ClientSummaries(txs, byID)
	dtos := make([]ClientSummaryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ClientSummaryDTO{
			ClientName:       row.ClientName,
			TotalIncome:      row.TotalIncome,
			TransactionCount: row.TransactionCount,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetOverallStats(w http.ResponseWriter, r *http.Request) {
	txs, err := h.reportTransactions(r)
	if err != nil {
		h.error(w, err)
		return
	}

	stats := report.Overall(txs)
	writeJSON(w, http.StatusOK, OverallStatsDTO{
		TotalIncome:      stats.TotalIncome,
		TotalExpense:     stats.TotalExpense,
		NetBalance:       stats.NetBalance,
		TransactionCount: stats.TransactionCount,
	})
}

func (h *Handler) GetProjectIncomeReport(w http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		h.error(w, err)
		return
	}

	projects, err := h.Store.Projects(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}

	// No lower bound: prior actuals reach back before the report year.
	end := finance.NewDate(year, time.December, 31)
	incomeTxs, err := h.Store.Transactions(r.Context(), sqlite.TransactionFilter{
		EndDate:   &end,
		Direction: string(finance.Income),
	})
	if err != nil {
		h.error(w, err)
		return
	}

	months := report.ProjectIncomeReport(year, projects, incomeTxs)
	dtos := make([]ProjectIncomeMonthDTO, 0, len(months))
	for _, m := range months {
		dtos = append(dtos, toProjectIncomeMonthDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Ledger.Balances(r.Context(), nil)
	if err != nil {
		h.error(w, err)
		return
	}

	today := finance.Today()
	month := finance.MonthOf(today)
	start := month.First()
	income, err := h.Store.DirectionTotal(r.Context(), finance.Income, start, today)
	if err != nil {
		h.error(w, err)
		return
	}
	expense, err := h.Store.DirectionTotal(r.Context(), finance.Expense, start, today)
	if err != nil {
		h.error(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardDTO(report.BuildDashboard(balances, income, expense)))
}

// =============================================================================
// COMPANY SETTINGS
// =============================================================================

func (h *Handler) GetCompanySettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.CompanySettings(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) UpdateCompanySettings(w http.ResponseWriter, r *http.Request) {
	var settings map[string]string
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.Store.SetCompanySettings(r.Context(), settings); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

func monthQuery(r *http.Request) (finance.Month, error) {
	value := r.URL.Query().Get("month")
	if value == "" {
		return finance.MonthOf(finance.Today()), nil
	}
	month, err := finance.ParseMonth(value)
	if err != nil {
		return finance.Month{}, &finance.FieldError{Field: "month", Message: err.Error()}
	}
	return month, nil
}

func yearQuery(r *http.Request) (int, error) {
	value := r.URL.Query().Get("year")
	if value == "" {
		return finance.Today().Year(), nil
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < 1 {
		return 0, &finance.FieldError{Field: "year", Message: "must be a positive integer"}
	}
	return year, nil
}
