/*
dto.go - Request and response data structures for the REST API

PURPOSE:
  Defines the JSON wire format and the conversions between wire types
  and domain types. Monetary values travel as decimal strings; dates as
  "YYYY-MM-DD"; months as "YYYY-MM".

NAMING CONVENTION:
  XxxDTO     - Response structure
  XxxRequest - Request structure

SEE ALSO:
  - handlers.go: Uses these for serialization
  - finance/types.go: Domain types these convert to/from
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/budget"
	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/invest"
	"github.com/moneta/finance-engine/ledger"
	"github.com/moneta/finance-engine/report"
)

// =============================================================================
// PARSE HELPERS
// =============================================================================

func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &finance.FieldError{Field: field, Message: fmt.Sprintf("invalid decimal %q", value)}
	}
	return d, nil
}

func parseDateField(field, value string) (finance.Date, error) {
	d, err := finance.ParseDate(value)
	if err != nil {
		return finance.Date{}, &finance.FieldError{Field: field, Message: fmt.Sprintf("invalid date %q", value)}
	}
	return d, nil
}

func parseOptionalDate(field, value string) (*finance.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDateField(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func dateString(d *finance.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountDTO struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes,omitempty"`
}

type AccountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	OpeningBalance string `json:"opening_balance"`
	Notes          string `json:"notes"`
}

func (r *AccountRequest) toAccount() (*finance.Account, error) {
	if r.Name == "" {
		return nil, &finance.FieldError{Field: "name", Message: "required"}
	}
	switch finance.AccountType(r.Type) {
	case finance.AccountBank, finance.AccountCash, finance.AccountInvestment, finance.AccountOther:
	default:
		return nil, &finance.FieldError{Field: "type", Message: fmt.Sprintf("unknown account type %q", r.Type)}
	}
	opening, err := parseAmount("opening_balance", r.OpeningBalance)
	if err != nil {
		return nil, err
	}
	return &finance.Account{
		Name:           r.Name,
		Type:           finance.AccountType(r.Type),
		OpeningBalance: opening,
		Notes:          r.Notes,
	}, nil
}

func toAccountDTO(a finance.Account) AccountDTO {
	return AccountDTO{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		OpeningBalance: a.OpeningBalance,
		Notes:          a.Notes,
	}
}

type AccountBalanceDTO struct {
	Account        AccountDTO      `json:"account"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

func toAccountBalanceDTO(b ledger.PeriodBalance) AccountBalanceDTO {
	return AccountBalanceDTO{
		Account:        toAccountDTO(b.Account),
		OpeningBalance: b.Opening,
		CurrentBalance: b.Current,
	}
}

// =============================================================================
// CATEGORIES / CLIENTS / TAGS
// =============================================================================

type CategoryDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	IsInvestment bool   `json:"is_investment"`
	Notes        string `json:"notes,omitempty"`
}

type CategoryRequest struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	IsInvestment bool   `json:"is_investment"`
	Notes        string `json:"notes"`
}

func (r *CategoryRequest) toCategory() (*finance.Category, error) {
	if r.Name == "" {
		return nil, &finance.FieldError{Field: "name", Message: "required"}
	}
	switch finance.CategoryKind(r.Kind) {
	case finance.KindIncome, finance.KindExpense:
	default:
		return nil, &finance.FieldError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", r.Kind)}
	}
	return &finance.Category{
		Name:         r.Name,
		Kind:         finance.CategoryKind(r.Kind),
		IsInvestment: r.IsInvestment,
		Notes:        r.Notes,
	}, nil
}

func toCategoryDTO(c finance.Category) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		Name:         c.Name,
		Kind:         string(c.Kind),
		IsInvestment: c.IsInvestment,
		Notes:        c.Notes,
	}
}

type ClientDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type ClientRequest struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

func (r *ClientRequest) toClient() (*finance.Client, error) {
	if r.Name == "" {
		return nil, &finance.FieldError{Field: "name", Message: "required"}
	}
	status := finance.ClientStatus(r.Status)
	if status == "" {
		status = finance.ClientActive
	}
	return &finance.Client{
		Name:    r.Name,
		Status:  status,
		Email:   r.Email,
		Phone:   r.Phone,
		Company: r.Company,
		Notes:   r.Notes,
	}, nil
}

func toClientDTO(c finance.Client) ClientDTO {
	return ClientDTO{
		ID:      c.ID,
		Name:    c.Name,
		Status:  string(c.Status),
		Email:   c.Email,
		Phone:   c.Phone,
		Company: c.Company,
		Notes:   c.Notes,
	}
}

type TagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// PROJECTS / TIME LOGS
// =============================================================================

type ProjectDTO struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	ClientID       *int64          `json:"client_id,omitempty"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	StartDate      string          `json:"start_date,omitempty"`
	EndDate        string          `json:"end_date,omitempty"`
	Notes          string          `json:"notes,omitempty"`

	// Derived activity figures.
	Received    decimal.Decimal `json:"received"`
	Spent       decimal.Decimal `json:"spent"`
	HoursLogged decimal.Decimal `json:"hours_logged"`
}

type ProjectRequest struct {
	Name           string `json:"name"`
	ClientID       *int64 `json:"client_id"`
	ExpectedAmount string `json:"expected_amount"`
	DailyRate      string `json:"daily_rate"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Notes          string `json:"notes"`
}

func (r *ProjectRequest) toProject() (*finance.Project, error) {
	if r.Name == "" {
		return nil, &finance.FieldError{Field: "name", Message: "required"}
	}
	expected, err := parseAmount("expected_amount", r.ExpectedAmount)
	if err != nil {
		return nil, err
	}
	rate, err := parseAmount("daily_rate", r.DailyRate)
	if err != nil {
		return nil, err
	}
	start, err := parseOptionalDate("start_date", r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate("end_date", r.EndDate)
	if err != nil {
		return nil, err
	}
	return &finance.Project{
		Name:           r.Name,
		ClientID:       r.ClientID,
		ExpectedAmount: expected,
		DailyRate:      rate,
		StartDate:      start,
		EndDate:        end,
		Notes:          r.Notes,
	}, nil
}

type TimeLogDTO struct {
	ID          int64           `json:"id"`
	ProjectID   int64           `json:"project_id"`
	Date        string          `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	Description string          `json:"description,omitempty"`
}

type TimeLogRequest struct {
	Date        string `json:"date"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
}

func toTimeLogDTO(l finance.TimeLog) TimeLogDTO {
	return TimeLogDTO{
		ID:          l.ID,
		ProjectID:   l.ProjectID,
		Date:        l.Date.String(),
		Hours:       l.Hours,
		Description: l.Description,
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type TransactionDTO struct {
	ID            int64           `json:"id"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     string          `json:"direction"`
	FromAccountID *int64          `json:"from_account_id,omitempty"`
	ToAccountID   *int64          `json:"to_account_id,omitempty"`
	CategoryID    int64           `json:"category_id"`
	CategoryName  string          `json:"category_name,omitempty"`
	ClientID      *int64          `json:"client_id,omitempty"`
	ProjectID     *int64          `json:"project_id,omitempty"`
	InvestmentID  *int64          `json:"investment_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	TagIDs        []int64         `json:"tag_ids,omitempty"`
}

type TransactionRequest struct {
	Date          string  `json:"date"`
	Amount        string  `json:"amount"`
	Direction     string  `json:"direction"`
	FromAccountID *int64  `json:"from_account_id"`
	ToAccountID   *int64  `json:"to_account_id"`
	CategoryID    int64   `json:"category_id"`
	ClientID      *int64  `json:"client_id"`
	ProjectID     *int64  `json:"project_id"`
	InvestmentID  *int64  `json:"investment_id"`
	Notes         string  `json:"notes"`
	TagIDs        []int64 `json:"tag_ids"`
}

func (r *TransactionRequest) toTransaction() (*finance.Transaction, error) {
	date, err := parseDateField("date", r.Date)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return nil, err
	}
	return &finance.Transaction{
		Date:          date,
		Amount:        amount,
		Direction:     finance.Direction(r.Direction),
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		CategoryID:    r.CategoryID,
		ClientID:      r.ClientID,
		ProjectID:     r.ProjectID,
		InvestmentID:  r.InvestmentID,
		Notes:         r.Notes,
		TagIDs:        r.TagIDs,
	}, nil
}

func toTransactionDTO(tx finance.Transaction, categories map[int64]finance.Category) TransactionDTO {
	return TransactionDTO{
		ID:            tx.ID,
		Date:          tx.Date.String(),
		Amount:        tx.Amount,
		Direction:     string(tx.Direction),
		FromAccountID: tx.FromAccountID,
		ToAccountID:   tx.ToAccountID,
		CategoryID:    tx.CategoryID,
		CategoryName:  categories[tx.CategoryID].Name,
		ClientID:      tx.ClientID,
		ProjectID:     tx.ProjectID,
		InvestmentID:  tx.InvestmentID,
		Notes:         tx.Notes,
		TagIDs:        tx.TagIDs,
	}
}

// =============================================================================
// INVESTMENTS
// =============================================================================

type InvestmentDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	AccountID       int64  `json:"account_id"`
	ProviderSymbol  string `json:"provider_symbol,omitempty"`
	CurrentPrice    string `json:"current_price,omitempty"`
	PrincipalAmount string `json:"principal_amount,omitempty"`
	InterestRate    string `json:"interest_rate,omitempty"`
	MaturityDate    string `json:"maturity_date,omitempty"`
	MaturityAmount  string `json:"maturity_amount,omitempty"`
	MonthlyDeposit  string `json:"monthly_deposit,omitempty"`
	LastUpdatedAt   string `json:"last_updated_at,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type InvestmentRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	AccountID       int64  `json:"account_id"`
	ProviderSymbol  string `json:"provider_symbol"`
	CurrentPrice    string `json:"current_price"`
	PrincipalAmount string `json:"principal_amount"`
	InterestRate    string `json:"interest_rate"`
	MaturityDate    string `json:"maturity_date"`
	MaturityAmount  string `json:"maturity_amount"`
	MonthlyDeposit  string `json:"monthly_deposit"`
	Notes           string `json:"notes"`
}

func optionalAmount(field, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseAmount(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *InvestmentRequest) toInvestment() (*finance.Investment, error) {
	if r.Name == "" {
		return nil, &finance.FieldError{Field: "name", Message: "required"}
	}
	switch finance.InvestmentType(r.Type) {
	case finance.Stock, finance.MutualFund, finance.FixedDeposit, finance.RecurringDeposit:
	default:
		return nil, &finance.FieldError{Field: "type", Message: fmt.Sprintf("unknown investment type %q", r.Type)}
	}
	if r.AccountID == 0 {
		return nil, &finance.FieldError{Field: "account_id", Message: "required"}
	}

	inv := &finance.Investment{
		Name:           r.Name,
		Type:           finance.InvestmentType(r.Type),
		AccountID:      r.AccountID,
		ProviderSymbol: r.ProviderSymbol,
		Notes:          r.Notes,
	}
	var err error
	if inv.CurrentPrice, err = optionalAmount("current_price", r.CurrentPrice); err != nil {
		return nil, err
	}
	if inv.PrincipalAmount, err = optionalAmount("principal_amount", r.PrincipalAmount); err != nil {
		return nil, err
	}
	if inv.InterestRate, err = optionalAmount("interest_rate", r.InterestRate); err != nil {
		return nil, err
	}
	if inv.MaturityAmount, err = optionalAmount("maturity_amount", r.MaturityAmount); err != nil {
		return nil, err
	}
	if inv.MonthlyDeposit, err = optionalAmount("monthly_deposit", r.MonthlyDeposit); err != nil {
		return nil, err
	}
	if inv.MaturityDate, err = parseOptionalDate("maturity_date", r.MaturityDate); err != nil {
		return nil, err
	}
	return inv, nil
}

func toInvestmentDTO(inv finance.Investment) InvestmentDTO {
	return InvestmentDTO{
		ID:              inv.ID,
		Name:            inv.Name,
		Type:            string(inv.Type),
		AccountID:       inv.AccountID,
		ProviderSymbol:  inv.ProviderSymbol,
		CurrentPrice:    decimalString(inv.CurrentPrice),
		PrincipalAmount: decimalString(inv.PrincipalAmount),
		InterestRate:    decimalString(inv.InterestRate),
		MaturityDate:    dateString(inv.MaturityDate),
		MaturityAmount:  decimalString(inv.MaturityAmount),
		MonthlyDeposit:  decimalString(inv.MonthlyDeposit),
		LastUpdatedAt:   inv.LastUpdatedAt,
		Notes:           inv.Notes,
	}
}

type LotDTO struct {
	ID           int64           `json:"id"`
	InvestmentID int64           `json:"investment_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Charges      decimal.Decimal `json:"charges"`
	Date         string          `json:"date"`
	Type         string          `json:"type"`
}

type LotRequest struct {
	Quantity     string `json:"quantity"`
	PricePerUnit string `json:"price_per_unit"`
	Charges      string `json:"charges"`
	Date         string `json:"date"`
	Type         string `json:"type"`
}

func (r *LotRequest) toLot(investmentID int64) (*finance.InvestmentLot, error) {
	switch finance.LotType(r.Type) {
	case finance.Buy, finance.Sell:
	default:
		return nil, &finance.FieldError{Field: "type", Message: fmt.Sprintf("unknown lot type %q", r.Type)}
	}
	quantity, err := parseAmount("quantity", r.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := parseAmount("price_per_unit", r.PricePerUnit)
	if err != nil {
		return nil, err
	}
	charges, err := parseAmount("charges", r.Charges)
	if err != nil {
		return nil, err
	}
	date, err := parseDateField("date", r.Date)
	if err != nil {
		return nil, err
	}
	return &finance.InvestmentLot{
		InvestmentID: investmentID,
		Quantity:     quantity,
		PricePerUnit: price,
		Charges:      charges,
		Date:         date,
		Type:         finance.LotType(r.Type),
	}, nil
}

func toLotDTO(lot finance.InvestmentLot) LotDTO {
	return LotDTO{
		ID:           lot.ID,
		InvestmentID: lot.InvestmentID,
		Quantity:     lot.Quantity,
		PricePerUnit: lot.PricePerUnit,
		Charges:      lot.Charges,
		Date:         lot.Date.String(),
		Type:         string(lot.Type),
	}
}

type InvestmentSummaryDTO struct {
	Investment       InvestmentDTO   `json:"investment"`
	TotalUnits       decimal.Decimal `json:"total_units"`
	AvgBuyPrice      decimal.Decimal `json:"avg_buy_price"`
	TotalInvested    decimal.Decimal `json:"total_invested"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	InvestedCapital  decimal.Decimal `json:"total_invested_capital"`
	CurrentValuation decimal.Decimal `json:"current_valuation"`
	NetGain          decimal.Decimal `json:"net_gain"`
	GainPercentage   decimal.Decimal `json:"gain_percentage"`
}

func toInvestmentSummaryDTO(s invest.Summary) InvestmentSummaryDTO {
	return InvestmentSummaryDTO{
		Investment:       toInvestmentDTO(s.Investment),
		TotalUnits:       s.TotalUnits,
		AvgBuyPrice:      s.AvgBuyPrice,
		TotalInvested:    s.TotalInvested,
		TotalExpenses:    s.TotalExpenses,
		InvestedCapital:  s.InvestedCapital,
		CurrentValuation: s.CurrentValuation,
		NetGain:          s.NetGain,
		GainPercentage:   s.GainPercentage,
	}
}

type PlatformSummaryDTO struct {
	Account      AccountDTO      `json:"account"`
	Invested     decimal.Decimal `json:"invested"`
	CurrentValue decimal.Decimal `json:"current_value"`
	NetGain      decimal.Decimal `json:"net_gain"`
	GainPct      decimal.Decimal `json:"gain_pct"`
	Holdings     int             `json:"holdings"`
}

func toPlatformSummaryDTO(p invest.PlatformSummary) PlatformSummaryDTO {
	return PlatformSummaryDTO{
		Account:      toAccountDTO(p.Account),
		Invested:     p.Invested,
		CurrentValue: p.CurrentValue,
		NetGain:      p.NetGain,
		GainPct:      p.GainPct,
		Holdings:     p.Holdings,
	}
}

type RefreshResultDTO struct {
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Skipped  int      `json:"skipped"`
	Failures []string `json:"failures,omitempty"`
}

func toRefreshResultDTO(r invest.RefreshResult) RefreshResultDTO {
	dto := RefreshResultDTO{Updated: r.Updated, Failed: r.Failed, Skipped: r.Skipped}
	for _, f := range r.Failures {
		dto.Failures = append(dto.Failures, f.Error())
	}
	return dto
}

// =============================================================================
// BUDGETS
// =============================================================================

type BudgetRequest struct {
	Month          string `json:"month"`
	CategoryID     int64  `json:"category_id"`
	BudgetedAmount string `json:"budgeted_amount"`
	Notes          string `json:"notes"`
}

type MonthlyIncomeRequest struct {
	Month          string `json:"month"`
	ExpectedIncome string `json:"expected_income"`
	Notes          string `json:"notes"`
}

type BudgetSettingsDTO struct {
	SalaryDate int `json:"salary_date"`
}

type CategoryRowDTO struct {
	Category     CategoryDTO     `json:"category"`
	Budgeted     decimal.Decimal `json:"budgeted"`
	Actual       decimal.Decimal `json:"actual"`
	Remaining    decimal.Decimal `json:"remaining"`
	IsOverBudget bool            `json:"is_over_budget"`
}

type BudgetSummaryDTO struct {
	Month                string           `json:"month"`
	SalaryDate           int              `json:"salary_date"`
	PeriodStart          string           `json:"period_start"`
	PeriodEnd            string           `json:"period_end"`
	ExpectedIncome       decimal.Decimal  `json:"expected_income"`
	ActualIncome         decimal.Decimal  `json:"actual_income"`
	TotalBudgeted        decimal.Decimal  `json:"total_budgeted"`
	TotalSpent           decimal.Decimal  `json:"total_spent"`
	TotalInvested        decimal.Decimal  `json:"total_invested"`
	Savings              decimal.Decimal  `json:"savings"`
	SavingsRate          decimal.Decimal  `json:"savings_rate"`
	IncomeCategories     []CategoryRowDTO `json:"income_categories"`
	ExpenseCategories    []CategoryRowDTO `json:"expense_categories"`
	InvestmentCategories []CategoryRowDTO `json:"investment_categories"`
}

func toCategoryRowDTOs(rows []budget.CategoryRow) []CategoryRowDTO {
	dtos := make([]CategoryRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, CategoryRowDTO{
			Category:     toCategoryDTO(row.Category),
			Budgeted:     row.Budgeted,
			Actual:       row.Actual,
			Remaining:    row.Remaining,
			IsOverBudget: row.IsOverBudget,
		})
	}
	return dtos
}

func toBudgetSummaryDTO(s *budget.Summary) BudgetSummaryDTO {
	return BudgetSummaryDTO{
		Month:                s.Month.String(),
		SalaryDate:           s.SalaryDate,
		PeriodStart:          s.PeriodStart.String(),
		PeriodEnd:            s.PeriodEnd.String(),
		ExpectedIncome:       s.ExpectedIncome,
		ActualIncome:         s.ActualIncome,
		TotalBudgeted:        s.TotalBudgeted,
		TotalSpent:           s.TotalSpent,
		TotalInvested:        s.TotalInvested,
		Savings:              s.Savings,
		SavingsRate:          s.SavingsRate,
		IncomeCategories:     toCategoryRowDTOs(s.IncomeCategories),
		ExpenseCategories:    toCategoryRowDTOs(s.ExpenseCategories),
		InvestmentCategories: toCategoryRowDTOs(s.InvestmentCategories),
	}
}

type MonthlyReportDTO struct {
	Month       string          `json:"month"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Investments decimal.Decimal `json:"investments"`
	Savings     decimal.Decimal `json:"savings"`
	SavingsRate decimal.Decimal `json:"savings_rate"`
}

func toMonthlyReportDTO(r budget.MonthlyReport) MonthlyReportDTO {
	return MonthlyReportDTO{
		Month:       r.Month.String(),
		Income:      r.Income,
		Expenses:    r.Expenses,
		Investments: r.Investments,
		Savings:     r.Savings,
		SavingsRate: r.SavingsRate,
	}
}

// =============================================================================
// REPORTS
// =============================================================================

type MonthlySummaryDTO struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type CategorySummaryDTO struct {
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

type ClientSummaryDTO struct {
	ClientName       string          `json:"client_name"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TransactionCount int             `json:"transaction_count"`
}

type OverallStatsDTO struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TransactionCount int             `json:"transaction_count"`
}

type ProjectIncomeRowDTO struct {
	ProjectID          int64           `json:"project_id"`
	ProjectName        string          `json:"project_name"`
	MonthlyActual      decimal.Decimal `json:"monthly_actual"`
	CurrentExpected    decimal.Decimal `json:"current_expected"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

type ProjectIncomeMonthDTO struct {
	Month          string                `json:"month"`
	ActualIncome   decimal.Decimal       `json:"actual_income"`
	ExpectedIncome decimal.Decimal       `json:"expected_income"`
	Projects       []ProjectIncomeRowDTO `json:"projects"`
}

func toProjectIncomeMonthDTO(m report.ProjectIncomeMonth) ProjectIncomeMonthDTO {
	dto := ProjectIncomeMonthDTO{
		Month:          m.Month.String(),
		ActualIncome:   m.ActualIncome,
		ExpectedIncome: m.ExpectedIncome,
	}
	for _, p := range m.Projects {
		dto.Projects = append(dto.Projects, ProjectIncomeRowDTO{
			ProjectID:          p.ProjectID,
			ProjectName:        p.ProjectName,
			MonthlyActual:      p.MonthlyActual,
			CurrentExpected:    p.CurrentExpected,
			OutstandingBalance: p.OutstandingBalance,
		})
	}
	return dto
}

type DashboardDTO struct {
	TotalBalance        decimal.Decimal     `json:"total_balance"`
	BankBalance         decimal.Decimal     `json:"bank_balance"`
	CashBalance         decimal.Decimal     `json:"cash_balance"`
	InvestmentBalance   decimal.Decimal     `json:"investment_balance"`
	Accounts            []AccountBalanceRow `json:"accounts"`
	CurrentMonthIncome  decimal.Decimal     `json:"current_month_income"`
	CurrentMonthExpense decimal.Decimal     `json:"current_month_expense"`
	CurrentMonthNet     decimal.Decimal     `json:"current_month_net"`
}

type AccountBalanceRow struct {
	Account AccountDTO      `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

func toDashboardDTO(d report.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		TotalBalance:        d.TotalBalance,
		BankBalance:         d.BankBalance,
		CashBalance:         d.CashBalance,
		InvestmentBalance:   d.InvestmentBalance,
		CurrentMonthIncome:  d.CurrentMonthIncome,
		CurrentMonthExpense: d.CurrentMonthExpense,
		CurrentMonthNet:     d.CurrentMonthNet,
	}
	for _, b := range d.Accounts {
		dto.Accounts = append(dto.Accounts, AccountBalanceRow{
			Account: toAccountDTO(b.Account),
			Balance: b.Balance,
		})
	}
	return dto
}

// =============================================================================
// BILLING
// =============================================================================

type InvoiceItemDTO struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type InvoicePaymentDTO struct {
	ID                   int64           `json:"id"`
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	PaymentDate          string          `json:"payment_date"`
	PaymentMode          string          `json:"payment_mode,omitempty"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
}

type InvoiceDTO struct {
	ID            int64               `json:"id"`
	ProjectID     int64               `json:"project_id"`
	InvoiceNumber string              `json:"invoice_number"`
	Stage         string              `json:"stage,omitempty"`
	IssueDate     string              `json:"issue_date"`
	DueDate       string              `json:"due_date,omitempty"`
	Discount      decimal.Decimal     `json:"discount"`
	TaxPercentage decimal.Decimal     `json:"tax_percentage"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	AmountPaid    decimal.Decimal     `json:"amount_paid"`
	Status        string              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	Items         []InvoiceItemDTO    `json:"items,omitempty"`
	Payments      []InvoicePaymentDTO `json:"payments,omitempty"`
}

type InvoiceItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
}

type InvoiceRequest struct {
	ProjectID     int64                `json:"project_id"`
	Stage         string               `json:"stage"`
	IssueDate     string               `json:"issue_date"`
	DueDate       string               `json:"due_date"`
	Discount      string               `json:"discount"`
	TaxPercentage string               `json:"tax_percentage"`
	Notes         string               `json:"notes"`
	Items         []InvoiceItemRequest `json:"items"`
}

func (r *InvoiceRequest) toInvoice() (*finance.Invoice, error) {
	issue, err := parseDateField("issue_date", r.IssueDate)
	if err != nil {
		return nil, err
	}
	due, err := parseOptionalDate("due_date", r.DueDate)
	if err != nil {
		return nil, err
	}
	discount, err := parseAmount("discount", r.Discount)
	if err != nil {
		return nil, err
	}
	tax, err := parseAmount("tax_percentage", r.TaxPercentage)
	if err != nil {
		return nil, err
	}

	inv := &finance.Invoice{
		ProjectID:     r.ProjectID,
		Stage:         r.Stage,
		IssueDate:     issue,
		DueDate:       due,
		Discount:      discount,
		TaxPercentage: tax,
		Notes:         r.Notes,
	}
	for i, item := range r.Items {
		quantity, err := parseAmount(fmt.Sprintf("items[%d].quantity", i), item.Quantity)
		if err != nil {
			return nil, err
		}
		rate, err := parseAmount(fmt.Sprintf("items[%d].rate", i), item.Rate)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, finance.InvoiceItem{
			Description: item.Description,
			Quantity:    quantity,
			Rate:        rate,
		})
	}
	return inv, nil
}

type PaymentRequest struct {
	AmountPaid           string `json:"amount_paid"`
	PaymentDate          string `json:"payment_date"`
	PaymentMode          string `json:"payment_mode"`
	TransactionReference string `json:"transaction_reference"`
}

func (r *PaymentRequest) toPayment(invoiceID int64) (*finance.InvoicePayment, error) {
	amount, err := parseAmount("amount_paid", r.AmountPaid)
	if err != nil {
		return nil, err
	}
	date, err := parseDateField("payment_date", r.PaymentDate)
	if err != nil {
		return nil, err
	}
	return &finance.InvoicePayment{
		InvoiceID:            invoiceID,
		AmountPaid:           amount,
		PaymentDate:          date,
		PaymentMode:          r.PaymentMode,
		TransactionReference: r.TransactionReference,
	}, nil
}

func toInvoiceDTO(inv finance.Invoice) InvoiceDTO {
	dto := InvoiceDTO{
		ID:            inv.ID,
		ProjectID:     inv.ProjectID,
		InvoiceNumber: inv.InvoiceNumber,
		Stage:         inv.Stage,
		IssueDate:     inv.IssueDate.String(),
		DueDate:       dateString(inv.DueDate),
		Discount:      inv.Discount,
		TaxPercentage: inv.TaxPercentage,
		TotalAmount:   inv.TotalAmount,
		Status:        string(inv.Status),
		Notes:         inv.Notes,
	}
	for _, item := range inv.Items {
		dto.Items = append(dto.Items, InvoiceItemDTO{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
		})
	}
	for _, payment := range inv.Payments {
		dto.AmountPaid = dto.AmountPaid.Add(payment.AmountPaid)
		dto.Payments = append(dto.Payments, InvoicePaymentDTO{
			ID:                   payment.ID,
			AmountPaid:           payment.AmountPaid,
			PaymentDate:          payment.PaymentDate.String(),
			PaymentMode:          payment.PaymentMode,
			TransactionReference: payment.TransactionReference,
		})
	}
	return dto
}

type QuotationItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
}

type QuotationRequest struct {
	ClientID  int64                  `json:"client_id"`
	ProjectID *int64                 `json:"project_id"`
	IssueDate string                 `json:"issue_date"`
	ValidTill string                 `json:"valid_till"`
	Status    string                 `json:"status"`
	Notes     string                 `json:"notes"`
	Items     []QuotationItemRequest `json:"items"`
}

func (r *QuotationRequest) toQuotation() (*finance.Quotation, error) {
	issue, err := parseDateField("issue_date", r.IssueDate)
	if err != nil {
		return nil, err
	}
	validTill, err := parseOptionalDate("valid_till", r.ValidTill)
	if err != nil {
		return nil, err
	}

	q := &finance.Quotation{
		ClientID:  r.ClientID,
		ProjectID: r.ProjectID,
		IssueDate: issue,
		ValidTill: validTill,
		Status:    r.Status,
		Notes:     r.Notes,
	}
	for i, item := range r.Items {
		quantity, err := parseAmount(fmt.Sprintf("items[%d].quantity", i), item.Quantity)
		if err != nil {
			return nil, err
		}
		rate, err := parseAmount(fmt.Sprintf("items[%d].rate", i), item.Rate)
		if err != nil {
			return nil, err
		}
		q.Items = append(q.Items, finance.QuotationItem{
			Description: item.Description,
			Quantity:    quantity,
			Rate:        rate,
		})
	}
	return q, nil
}

type QuotationDTO struct {
	ID              int64            `json:"id"`
	ClientID        int64            `json:"client_id"`
	ProjectID       *int64           `json:"project_id,omitempty"`
	QuotationNumber string           `json:"quotation_number"`
	IssueDate       string           `json:"issue_date"`
	ValidTill       string           `json:"valid_till,omitempty"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Status          string           `json:"status"`
	Notes           string           `json:"notes,omitempty"`
	Items           []InvoiceItemDTO `json:"items,omitempty"`
}

func toQuotationDTO(q finance.Quotation) QuotationDTO {
	dto := QuotationDTO{
		ID:              q.ID,
		ClientID:        q.ClientID,
		ProjectID:       q.ProjectID,
		QuotationNumber: q.QuotationNumber,
		IssueDate:       q.IssueDate.String(),
		ValidTill:       dateString(q.ValidTill),
		TotalAmount:     q.TotalAmount,
		Status:          q.Status,
		Notes:           q.Notes,
	}
	for _, item := range q.Items {
		dto.Items = append(dto.Items, InvoiceItemDTO{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
		})
	}
	return dto
}
