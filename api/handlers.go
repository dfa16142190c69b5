/*
handlers.go - HTTP handlers for records: accounts, categories, clients,
tags, projects, time logs, transactions, investments.

PURPOSE:
  Exposes the finance engine via REST. Handlers parse and validate
  requests, delegate every computation to the engine packages, and
  serialize the results. No derived figure is computed here.

REQUEST FLOW:
  1. Parse HTTP request
  2. Convert request DTO to domain type (validation happens there)
  3. Call store / engine
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  - 400: Validation errors, malformed input, missing id
  - 404: Referenced record does not exist
  - 502: External price source failure
  - 500: Store or internal failure

SEE ALSO:
  - handlers_reports.go: Budget, report, and dashboard handlers
  - handlers_billing.go: Invoice and quotation handlers
  - dto.go: Wire types
  - server.go: Route wiring
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/moneta/finance-engine/budget"
	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/invest"
	"github.com/moneta/finance-engine/ledger"
	"github.com/moneta/finance-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Ledger    *ledger.Calculator
	Budget    *budget.Engine
	Prices    invest.PriceSource
	Refresher *invest.Refresher
	Log       logrus.FieldLogger
}

// NewHandler wires the engines around the store.
func NewHandler(store *sqlite.Store, prices invest.PriceSource, log logrus.FieldLogger) *Handler {
	return &Handler{
		Store:     store,
		Ledger:    ledger.NewCalculator(store),
		Budget:    budget.NewEngine(store),
		Prices:    prices,
		Refresher: invest.NewRefresher(store, prices, log),
		Log:       log,
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.Accounts(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		dtos = append(dtos, toAccountDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, err := req.toAccount()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateAccount(r.Context(), account); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(*account))
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, err := req.toAccount()
	if err != nil {
		h.error(w, err)
		return
	}
	account.ID = id
	if err := h.Store.UpdateAccount(r.Context(), account); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteAccount(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAccountBalances returns every account with opening and current
// balances, optionally windowed by ?start_date and ?end_date.
func (h *Handler) GetAccountBalances(w http.ResponseWriter, r *http.Request) {
	start, err := parseOptionalDate("start_date", r.URL.Query().Get("start_date"))
	if err != nil {
		h.error(w, err)
		return
	}
	end, err := parseOptionalDate("end_date", r.URL.Query().Get("end_date"))
	if err != nil {
		h.error(w, err)
		return
	}

	balances, err := h.Ledger.PeriodBalances(r.Context(), start, end)
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]AccountBalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toAccountBalanceDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.Categories(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, toCategoryDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	category, err := req.toCategory()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateCategory(r.Context(), category); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(*category))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	category, err := req.toCategory()
	if err != nil {
		h.error(w, err)
		return
	}
	category.ID = id
	if err := h.Store.UpdateCategory(r.Context(), category); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(*category))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteCategory(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CLIENTS
// =============================================================================

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.Clients(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]ClientDTO, 0, len(clients))
	for _, c := range clients {
		dtos = append(dtos, toClientDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	client, err := req.toClient()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateClient(r.Context(), client); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(*client))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	client, err := req.toClient()
	if err != nil {
		h.error(w, err)
		return
	}
	client.ID = id
	if err := h.Store.UpdateClient(r.Context(), client); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteClient(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TAGS
// =============================================================================

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Store.Tags(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]TagDTO, 0, len(tags))
	for _, t := range tags {
		dtos = append(dtos, TagDTO{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid name: required")
		return
	}
	tag := &finance.Tag{Name: req.Name}
	if err := h.Store.CreateTag(r.Context(), tag); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TagDTO{ID: tag.ID, Name: tag.Name})
}

func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteTag(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROJECTS / TIME LOGS
// =============================================================================

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.Projects(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dto, err := h.projectDTO(r, p)
		if err != nil {
			h.error(w, err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) projectDTO(r *http.Request, p finance.Project) (ProjectDTO, error) {
	totals, err := h.Store.ProjectTotals(r.Context(), p.ID)
	if err != nil {
		return ProjectDTO{}, err
	}
	return ProjectDTO{
		ID:             p.ID,
		Name:           p.Name,
		ClientID:       p.ClientID,
		ExpectedAmount: p.ExpectedAmount,
		DailyRate:      p.DailyRate,
		StartDate:      dateString(p.StartDate),
		EndDate:        dateString(p.EndDate),
		Notes:          p.Notes,
		Received:       totals.Received,
		Spent:          totals.Spent,
		HoursLogged:    totals.HoursLogged,
	}, nil
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	project, err := h.Store.Project(r.Context(), id)
	if err != nil {
		h.error(w, err)
		return
	}
	if project == nil {
		h.error(w, finance.ErrProjectNotFound)
		return
	}
	dto, err := h.projectDTO(r, *project)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := req.toProject()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateProject(r.Context(), project); err != nil {
		h.error(w, err)
		return
	}
	dto, err := h.projectDTO(r, *project)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := req.toProject()
	if err != nil {
		h.error(w, err)
		return
	}
	project.ID = id
	if err := h.Store.UpdateProject(r.Context(), project); err != nil {
		h.error(w, err)
		return
	}
	dto, err := h.projectDTO(r, *project)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTimeLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	logs, err := h.Store.TimeLogs(r.Context(), id)
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]TimeLogDTO, 0, len(logs))
	for _, l := range logs {
		dtos = append(dtos, toTimeLogDTO(l))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTimeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req TimeLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	date, err := parseDateField("date", req.Date)
	if err != nil {
		h.error(w, err)
		return
	}
	hours, err := parseAmount("hours", req.Hours)
	if err != nil {
		h.error(w, err)
		return
	}
	log := &finance.TimeLog{
		ProjectID:   id,
		Date:        date,
		Hours:       hours,
		Description: req.Description,
	}
	if err := h.Store.CreateTimeLog(r.Context(), log); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeLogDTO(*log))
}

func (h *Handler) DeleteTimeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteTimeLog(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// ListTransactions accepts ?start_date, ?end_date, ?direction (including
// the synthetic "investment" value), ?category_id, ?account_id,
// ?client_id, ?project_id, ?investment_id.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		h.error(w, err)
		return
	}

	txs, err := h.Store.Transactions(r.Context(), filter)
	if err != nil {
		h.error(w, err)
		return
	}
	categories, err := h.categoryMap(r)
	if err != nil {
		h.error(w, err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, toTransactionDTO(tx, categories))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func transactionFilterFromQuery(r *http.Request) (sqlite.TransactionFilter, error) {
	q := r.URL.Query()
	var filter sqlite.TransactionFilter
	var err error

	if filter.StartDate, err = parseOptionalDate("start_date", q.Get("start_date")); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseOptionalDate("end_date", q.Get("end_date")); err != nil {
		return filter, err
	}
	filter.Direction = q.Get("direction")

	for param, target := range map[string]**int64{
		"category_id":   &filter.CategoryID,
		"account_id":    &filter.AccountID,
		"client_id":     &filter.ClientID,
		"project_id":    &filter.ProjectID,
		"investment_id": &filter.InvestmentID,
	} {
		value := q.Get(param)
		if value == "" {
			continue
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return filter, &finance.FieldError{Field: param, Message: "must be an integer"}
		}
		*target = &id
	}
	return filter, nil
}

func (h *Handler) categoryMap(r *http.Request) (map[int64]finance.Category, error) {
	categories, err := h.Store.Categories(r.Context())
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]finance.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID, nil
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateTransaction(r.Context(), tx); err != nil {
		h.error(w, err)
		return
	}
	categories, err := h.categoryMap(r)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(*tx, categories))
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		h.error(w, err)
		return
	}
	tx.ID = id
	if err := h.Store.UpdateTransaction(r.Context(), tx); err != nil {
		h.error(w, err)
		return
	}
	categories, err := h.categoryMap(r)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(*tx, categories))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteTransaction(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INVESTMENTS
// =============================================================================

func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := h.Store.Investments(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]InvestmentDTO, 0, len(investments))
	for _, inv := range investments {
		dtos = append(dtos, toInvestmentDTO(inv))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req InvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	inv, err := req.toInvestment()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateInvestment(r.Context(), inv); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentDTO(*inv))
}

func (h *Handler) UpdateInvestment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req InvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	inv, err := req.toInvestment()
	if err != nil {
		h.error(w, err)
		return
	}
	inv.ID = id
	if err := h.Store.UpdateInvestment(r.Context(), inv); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentDTO(*inv))
}

func (h *Handler) DeleteInvestment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteInvestment(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetInvestmentSummaries derives the valuation of every investment.
// A failure on one investment fails only that row, never the batch.
func (h *Handler) GetInvestmentSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.investmentSummaries(r)
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]InvestmentSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, toInvestmentSummaryDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) investmentSummaries(r *http.Request) ([]invest.Summary, error) {
	investments, err := h.Store.Investments(r.Context())
	if err != nil {
		return nil, err
	}

	summaries := make([]invest.Summary, 0, len(investments))
	for _, inv := range investments {
		lots, err := h.Store.Lots(r.Context(), inv.ID)
		if err != nil {
			h.Log.WithField("investment", inv.Name).WithError(err).Warn("skipping investment summary")
			continue
		}
		flows, err := h.Store.InvestmentFlows(r.Context(), inv.ID)
		if err != nil {
			h.Log.WithField("investment", inv.Name).WithError(err).Warn("skipping investment summary")
			continue
		}
		summaries = append(summaries, invest.Summarize(inv, lots, flows))
	}
	return summaries, nil
}

func (h *Handler) GetPlatformSummary(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.Accounts(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	summaries, err := h.investmentSummaries(r)
	if err != nil {
		h.error(w, err)
		return
	}

	platforms := invest.SummarizePlatforms(accounts, summaries)
	dtos := make([]PlatformSummaryDTO, 0, len(platforms))
	for _, p := range platforms {
		dtos = append(dtos, toPlatformSummaryDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RefreshPrices sweeps all symbol-bearing investments sequentially.
func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.Refresher.RefreshAll(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefreshResultDTO(result))
}

// LookupPrice fetches one live price without persisting it.
func (h *Handler) LookupPrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	kind := finance.InvestmentType(r.URL.Query().Get("type"))
	if kind == "" {
		kind = finance.Stock
	}

	price, err := h.Prices.LookupPrice(r.Context(), symbol, kind)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "price": price.String()})
}

func (h *Handler) ListLots(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	lots, err := h.Store.Lots(r.Context(), id)
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]LotDTO, 0, len(lots))
	for _, lot := range lots {
		dtos = append(dtos, toLotDTO(lot))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateLot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req LotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	lot, err := req.toLot(id)
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateLot(r.Context(), lot); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLotDTO(*lot))
}

func (h *Handler) DeleteLot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteLot(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// error maps domain error categories to HTTP status codes.
func (h *Handler) error(w http.ResponseWriter, err error) {
	switch {
	case finance.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case finance.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case isPriceLookup(err):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.Log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isPriceLookup(err error) bool {
	return errors.Is(err, finance.ErrPriceLookup)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
