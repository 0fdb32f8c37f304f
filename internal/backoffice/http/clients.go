package http

import (
	"net/http"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
)

type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleList handles GET /v1/clients
//
//	@Summary	List clients
//	@Tags		Clients
//	@Security	BearerAuth
//	@Produce	json
//	@Param		status	query		string	false	"active or inactive"
//	@Param		q		query		string	false	"Matches name, trade name or document"
//	@Success	200		{object}	listResponse[domain.Client]
//	@Router		/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.ClientService.List(r.Context(), actorFrom(r), store.ClientFilter{
		Status: domain.ClientStatus(query(r, "status")),
		Query:  query(r, "q"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(clients))
}

// HandleCreate handles POST /v1/clients
//
//	@Summary	Create a client
//	@Tags		Clients
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.Client	true	"Client"
//	@Success	201		{object}	domain.Client
//	@Failure	400		{object}	httpx.ErrorResponse	"validation_failed"
//	@Failure	409		{object}	httpx.ErrorResponse	"duplicate document"
//	@Router		/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var c domain.Client
	if !httpx.DecodeJSON(w, r, &c) {
		return
	}
	c, err := h.ClientService.Create(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// HandleGet handles GET /v1/clients/{id}
//
//	@Summary	Get a client
//	@Tags		Clients
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Client ID"
//	@Success	200	{object}	domain.Client
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.ClientService.Get(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// HandleUpdate handles PUT /v1/clients/{id}
//
//	@Summary	Update a client
//	@Tags		Clients
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Client ID"
//	@Param		request	body		domain.Client	true	"Client"
//	@Success	200		{object}	domain.Client
//	@Router		/v1/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var c domain.Client
	if !httpx.DecodeJSON(w, r, &c) {
		return
	}
	c, err := h.ClientService.Update(r.Context(), r.PathValue("id"), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /v1/clients/{id}
//
//	@Summary	Delete a client
//	@Tags		Clients
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Client ID"
//	@Success	204
//	@Failure	409	{object}	httpx.ErrorResponse	"client still referenced"
//	@Router		/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ClientService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSummary handles GET /v1/clients/{id}/summary
//
//	@Summary	Monthly position of a client
//	@Tags		Clients
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		string	true	"Client ID"
//	@Param		period	query		string	false	"YYYY-MM, defaults to the current month"
//	@Success	200		{object}	domain.ClientSummary
//	@Router		/v1/clients/{id}/summary [get].
func (h *ClientsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.ClientService.Summary(r.Context(), actorFrom(r), r.PathValue("id"), query(r, "period"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sum)
}

// HandleFatorR handles GET /v1/clients/{id}/fator-r
//
//	@Summary	Fator R and Simples Nacional annex
//	@Tags		Clients
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		string	true	"Client ID"
//	@Param		payroll	query		string	true	"Payroll of the last 12 months"
//	@Param		revenue	query		string	true	"Gross revenue of the last 12 months"
//	@Success	200		{object}	domain.FatorRResult
//	@Router		/v1/clients/{id}/fator-r [get].
func (h *ClientsHandler) HandleFatorR(w http.ResponseWriter, r *http.Request) {
	payroll, err := decimalQuery(r, "payroll")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	revenue, err := decimalQuery(r, "revenue")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.ClientService.FatorR(r.Context(), actorFrom(r), r.PathValue("id"), payroll, revenue)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
