package http

import (
	"net/http"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
)

type LeadsHandler struct {
	LeadService *service.LeadService
}

type ConvertLeadResponse struct {
	Lead   domain.Lead   `json:"lead"`
	Client domain.Client `json:"client"`
}

// HandleList handles GET /v1/leads
//
//	@Summary	List leads
//	@Tags		Leads
//	@Security	BearerAuth
//	@Produce	json
//	@Param		status	query		string	false	"Status"
//	@Success	200		{object}	listResponse[domain.Lead]
//	@Router		/v1/leads [get].
func (h *LeadsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.LeadService.List(r.Context(), store.LeadFilter{Status: domain.LeadStatus(query(r, "status"))})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(list))
}

// HandleCreate handles POST /v1/leads
//
//	@Summary	Create a lead
//	@Tags		Leads
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.Lead	true	"Lead"
//	@Success	201		{object}	domain.Lead
//	@Router		/v1/leads [post].
func (h *LeadsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var l domain.Lead
	if !httpx.DecodeJSON(w, r, &l) {
		return
	}
	l, err := h.LeadService.Create(r.Context(), l)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, l)
}

// HandleGet handles GET /v1/leads/{id}
//
//	@Summary	Get a lead
//	@Tags		Leads
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Lead ID"
//	@Success	200	{object}	domain.Lead
//	@Router		/v1/leads/{id} [get].
func (h *LeadsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.LeadService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleUpdate handles PUT /v1/leads/{id}
//
//	@Summary	Update a lead
//	@Tags		Leads
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Lead ID"
//	@Param		request	body		domain.Lead	true	"Lead"
//	@Success	200		{object}	domain.Lead
//	@Failure	409		{object}	httpx.ErrorResponse	"lead closed"
//	@Router		/v1/leads/{id} [put].
func (h *LeadsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var l domain.Lead
	if !httpx.DecodeJSON(w, r, &l) {
		return
	}
	l, err := h.LeadService.Update(r.Context(), r.PathValue("id"), l)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleDelete handles DELETE /v1/leads/{id}
//
//	@Summary	Delete a lead
//	@Tags		Leads
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Lead ID"
//	@Success	204
//	@Router		/v1/leads/{id} [delete].
func (h *LeadsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.LeadService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleConvert handles POST /v1/leads/{id}/convert
//
//	@Summary	Turn a lead into a client
//	@Tags		Leads
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Lead ID"
//	@Param		request	body		service.ConvertLeadInput	true	"Client data"
//	@Success	201		{object}	ConvertLeadResponse
//	@Failure	409		{object}	httpx.ErrorResponse	"lead closed or duplicate document"
//	@Router		/v1/leads/{id}/convert [post].
func (h *LeadsHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var in service.ConvertLeadInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}
	lead, client, err := h.LeadService.Convert(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, ConvertLeadResponse{Lead: lead, Client: client})
}
