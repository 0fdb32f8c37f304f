package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
	"github.com/shopspring/decimal"
)

type GuiasHandler struct {
	GuiaService *service.GuiaService
}

// PayRequest records a payment. A missing paid_at means now.
type PayRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

type DASEstimateRequest struct {
	Annex        domain.Annex    `json:"annex"`
	Revenue12m   decimal.Decimal `json:"revenue_12m"`
	RevenueMonth decimal.Decimal `json:"revenue_month"`
}

// HandleList handles GET /v1/guias
//
//	@Summary	List guias fiscais
//	@Tags		Guias
//	@Security	BearerAuth
//	@Produce	json
//	@Param		client_id	query		string	false	"Client ID"
//	@Param		status		query		string	false	"pending, paid, overdue or cancelled"
//	@Param		competence	query		string	false	"YYYY-MM"
//	@Success	200			{object}	listResponse[domain.Guia]
//	@Router		/v1/guias [get].
func (h *GuiasHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.GuiaService.List(r.Context(), actorFrom(r), store.GuiaFilter{
		ClientID:   query(r, "client_id"),
		Status:     domain.GuiaStatus(query(r, "status")),
		Competence: query(r, "competence"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(list))
}

// HandleCreate handles POST /v1/guias
//
//	@Summary	Register a guia
//	@Tags		Guias
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.Guia	true	"Guia"
//	@Success	201		{object}	domain.Guia
//	@Router		/v1/guias [post].
func (h *GuiasHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var g domain.Guia
	if !httpx.DecodeJSON(w, r, &g) {
		return
	}
	g, err := h.GuiaService.Create(r.Context(), g)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, g)
}

// HandleGet handles GET /v1/guias/{id}
//
//	@Summary	Get a guia
//	@Tags		Guias
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Guia ID"
//	@Success	200	{object}	domain.Guia
//	@Router		/v1/guias/{id} [get].
func (h *GuiasHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	g, err := h.GuiaService.Get(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

// HandleUpdate handles PUT /v1/guias/{id}
//
//	@Summary	Edit an open guia
//	@Tags		Guias
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Guia ID"
//	@Param		request	body		domain.Guia	true	"Guia"
//	@Success	200		{object}	domain.Guia
//	@Failure	409		{object}	httpx.ErrorResponse	"paid or cancelled"
//	@Router		/v1/guias/{id} [put].
func (h *GuiasHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var g domain.Guia
	if !httpx.DecodeJSON(w, r, &g) {
		return
	}
	g, err := h.GuiaService.Update(r.Context(), r.PathValue("id"), g)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

// HandleDelete handles DELETE /v1/guias/{id}
//
//	@Summary	Delete a guia
//	@Tags		Guias
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Guia ID"
//	@Success	204
//	@Router		/v1/guias/{id} [delete].
func (h *GuiasHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.GuiaService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePay handles POST /v1/guias/{id}/pay
//
//	@Summary	Mark a guia as paid
//	@Tags		Guias
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Guia ID"
//	@Param		request	body		PayRequest	false	"Payment date"
//	@Success	200		{object}	domain.Guia
//	@Router		/v1/guias/{id}/pay [post].
func (h *GuiasHandler) HandlePay(w http.ResponseWriter, r *http.Request) {
	var req PayRequest
	if r.ContentLength != 0 && !httpx.DecodeJSON(w, r, &req) {
		return
	}
	var paidAt time.Time
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	g, err := h.GuiaService.Pay(r.Context(), r.PathValue("id"), paidAt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

// HandleCancel handles POST /v1/guias/{id}/cancel
//
//	@Summary	Cancel a guia
//	@Tags		Guias
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Guia ID"
//	@Success	200	{object}	domain.Guia
//	@Router		/v1/guias/{id}/cancel [post].
func (h *GuiasHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	g, err := h.GuiaService.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

// HandleEstimateDAS handles POST /v1/guias/das/estimate
//
//	@Summary	Estimate the monthly DAS
//	@Tags		Guias
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		DASEstimateRequest	true	"Revenue and annex"
//	@Success	200		{object}	domain.DASEstimate
//	@Router		/v1/guias/das/estimate [post].
func (h *GuiasHandler) HandleEstimateDAS(w http.ResponseWriter, r *http.Request) {
	var req DASEstimateRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	est, err := h.GuiaService.EstimateDAS(req.Annex, req.Revenue12m, req.RevenueMonth)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, est)
}
