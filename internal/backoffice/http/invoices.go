package http

import (
	"net/http"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
)

type InvoicesHandler struct {
	InvoiceService *service.InvoiceService
}

type StatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HandleList handles GET /v1/invoices
//
//	@Summary	List invoices and quotes
//	@Tags		Invoices
//	@Security	BearerAuth
//	@Produce	json
//	@Param		client_id	query		string	false	"Client ID"
//	@Param		kind		query		string	false	"invoice or quote"
//	@Param		status		query		string	false	"Status"
//	@Success	200			{object}	listResponse[domain.Invoice]
//	@Router		/v1/invoices [get].
func (h *InvoicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.InvoiceService.List(r.Context(), actorFrom(r), store.InvoiceFilter{
		ClientID: query(r, "client_id"),
		Kind:     domain.InvoiceKind(query(r, "kind")),
		Status:   domain.InvoiceStatus(query(r, "status")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(list))
}

// HandleCreate handles POST /v1/invoices
//
//	@Summary	Create a draft invoice or quote
//	@Tags		Invoices
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		service.InvoiceInput	true	"Document"
//	@Success	201		{object}	domain.Invoice
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Router		/v1/invoices [post].
func (h *InvoicesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.InvoiceInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}
	inv, err := h.InvoiceService.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, inv)
}

// HandleGet handles GET /v1/invoices/{id}
//
//	@Summary	Get an invoice or quote
//	@Tags		Invoices
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"
//	@Success	200	{object}	domain.Invoice
//	@Router		/v1/invoices/{id} [get].
func (h *InvoicesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	inv, err := h.InvoiceService.Get(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, inv)
}

// HandleUpdate handles PUT /v1/invoices/{id}
//
//	@Summary	Edit a draft
//	@Tags		Invoices
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Invoice ID"
//	@Param		request	body		service.InvoiceInput	true	"Document"
//	@Success	200		{object}	domain.Invoice
//	@Failure	409		{object}	httpx.ErrorResponse	"not a draft"
//	@Router		/v1/invoices/{id} [put].
func (h *InvoicesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.InvoiceInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}
	inv, err := h.InvoiceService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, inv)
}

// HandleDelete handles DELETE /v1/invoices/{id}
//
//	@Summary	Delete a draft
//	@Tags		Invoices
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Invoice ID"
//	@Success	204
//	@Router		/v1/invoices/{id} [delete].
func (h *InvoicesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.InvoiceService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus handles POST /v1/invoices/{id}/status
//
//	@Summary	Change the status of a document
//	@Tags		Invoices
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Invoice ID"
//	@Param		request	body		StatusRequest	true	"Target status"
//	@Success	200		{object}	domain.Invoice
//	@Failure	409		{object}	httpx.ErrorResponse	"transition not allowed"
//	@Router		/v1/invoices/{id}/status [post].
func (h *InvoicesHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	inv, err := h.InvoiceService.SetStatus(r.Context(), r.PathValue("id"), domain.InvoiceStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, inv)
}

// HandleConvert handles POST /v1/invoices/{id}/convert
//
//	@Summary	Convert an accepted quote into a draft invoice
//	@Tags		Invoices
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Quote ID"
//	@Success	201	{object}	domain.Invoice
//	@Router		/v1/invoices/{id}/convert [post].
func (h *InvoicesHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	inv, err := h.InvoiceService.Convert(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, inv)
}
