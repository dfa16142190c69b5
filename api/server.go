/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/accounts/*       Accounts and balances
  /api/categories/*     Transaction categories
  /api/clients/*        Clients
  /api/tags/*           Tags
  /api/projects/*       Projects and time logs
  /api/transactions/*   Transactions
  /api/investments/*    Investments, lots, valuations, prices
  /api/budgets/*        Budget records, summary, yearly report
  /api/reports/*        Rollups and income recognition
  /api/invoices/*       Invoices and payments
  /api/quotations/*     Quotations
  /api/dashboard        Overview
  /api/settings/*       Budget and company settings

SEE ALSO:
  - handlers.go, handlers_reports.go, handlers_billing.go
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/balances", h.GetAccountBalances)
			r.Put("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Put("/{id}", h.UpdateClient)
			r.Delete("/{id}", h.DeleteClient)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.ListTags)
			r.Post("/", h.CreateTag)
			r.Delete("/{id}", h.DeleteTag)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Get("/{id}/time-logs", h.ListTimeLogs)
			r.Post("/{id}/time-logs", h.CreateTimeLog)
		})

		r.Route("/time-logs", func(r chi.Router) {
			r.Delete("/{id}", h.DeleteTimeLog)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Put("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		r.Route("/investments", func(r chi.Router) {
			r.Get("/", h.ListInvestments)
			r.Post("/", h.CreateInvestment)
			r.Get("/summaries", h.GetInvestmentSummaries)
			r.Get("/platforms", h.GetPlatformSummary)
			r.Post("/refresh-prices", h.RefreshPrices)
			r.Get("/price", h.LookupPrice)
			r.Put("/{id}", h.UpdateInvestment)
			r.Delete("/{id}", h.DeleteInvestment)
			r.Get("/{id}/lots", h.ListLots)
			r.Post("/{id}/lots", h.CreateLot)
		})

		r.Route("/lots", func(r chi.Router) {
			r.Delete("/{id}", h.DeleteLot)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", h.ListBudgets)
			r.Post("/", h.SetBudget)
			r.Delete("/{id}", h.DeleteBudget)
			r.Get("/summary", h.GetBudgetSummary)
			r.Get("/report", h.GetBudgetReport)
			r.Post("/monthly-income", h.SetMonthlyIncome)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/monthly", h.GetMonthlyReport)
			r.Get("/categories", h.GetCategoryReport)
			r.Get("/clients", h.GetClientReport)
			r.Get("/overall", h.GetOverallStats)
			r.Get("/project-income", h.GetProjectIncomeReport)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)
			r.Get("/{id}", h.GetInvoice)
			r.Delete("/{id}", h.DeleteInvoice)
			r.Post("/{id}/payments", h.AddInvoicePayment)
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", h.ListQuotations)
			r.Post("/", h.CreateQuotation)
			r.Get("/{id}", h.GetQuotation)
			r.Put("/{id}", h.UpdateQuotation)
			r.Delete("/{id}", h.DeleteQuotation)
		})

		r.Get("/dashboard", h.GetDashboard)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/budget", h.GetBudgetSettings)
			r.Put("/budget", h.UpdateBudgetSettings)
			r.Get("/company", h.GetCompanySettings)
			r.Put("/company", h.UpdateCompanySettings)
		})
	})

	return r
}
