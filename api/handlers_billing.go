/*
handlers_billing.go - Invoice and quotation handlers

PURPOSE:
  Billing documents. Creation with line items and payment recording are
  atomic in the store; the handlers only parse, delegate, and report
  the resulting derived status.

SEE ALSO:
  - billing/billing.go: Numbering and status rules
  - store/sqlite/billing.go: Atomic persistence
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/moneta/finance-engine/finance"
)

// =============================================================================
// INVOICES
// =============================================================================

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Store.Invoices(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		dtos = append(dtos, toInvoiceDTO(inv))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	inv, err := h.Store.Invoice(r.Context(), id)
	if err != nil {
		h.error(w, err)
		return
	}
	if inv == nil {
		h.error(w, finance.ErrInvoiceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(*inv))
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	inv, err := req.toInvoice()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateInvoice(r.Context(), inv); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(*inv))
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteInvoice(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddInvoicePayment records a payment; the response carries the status
// derived from the full payment history.
func (h *Handler) AddInvoicePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payment, err := req.toPayment(id)
	if err != nil {
		h.error(w, err)
		return
	}

	status, err := h.Store.AddInvoicePayment(r.Context(), payment)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     payment.ID,
		"status": string(status),
	})
}

// =============================================================================
// QUOTATIONS
// =============================================================================

func (h *Handler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.Store.Quotations(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	dtos := make([]QuotationDTO, 0, len(quotations))
	for _, q := range quotations {
		dtos = append(dtos, toQuotationDTO(q))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	q, err := h.Store.Quotation(r.Context(), id)
	if err != nil {
		h.error(w, err)
		return
	}
	if q == nil {
		h.error(w, finance.ErrQuotationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toQuotationDTO(*q))
}

func (h *Handler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	var req QuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	q, err := req.toQuotation()
	if err != nil {
		h.error(w, err)
		return
	}
	if err := h.Store.CreateQuotation(r.Context(), q); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuotationDTO(*q))
}

func (h *Handler) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req QuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	q, err := req.toQuotation()
	if err != nil {
		h.error(w, err)
		return
	}
	q.ID = id
	if err := h.Store.UpdateQuotation(r.Context(), q); err != nil {
		h.error(w, err)
		return
	}

	// Re-read so the response carries the preserved quotation number.
	updated, err := h.Store.Quotation(r.Context(), id)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotationDTO(*updated))
}

func (h *Handler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteQuotation(r.Context(), id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
