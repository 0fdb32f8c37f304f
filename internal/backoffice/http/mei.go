package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
)

type MEIHandler struct {
	MEIService *service.MEIService
}

type CreateMEIRequest struct {
	LeadID string `json:"lead_id,omitempty"`
}

// stepParam reads a wizard step number from the path.
func stepParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, service.ErrUnknownStep
	}
	return n, nil
}

// HandleCreate handles POST /v1/mei
//
//	@Summary	Start an MEI registration
//	@Tags		MEI
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateMEIRequest	false	"Originating lead"
//	@Success	201		{object}	domain.MEIRegistration
//	@Router		/v1/mei [post].
func (h *MEIHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateMEIRequest
	if r.ContentLength != 0 && !httpx.DecodeJSON(w, r, &req) {
		return
	}
	m, err := h.MEIService.Create(r.Context(), req.LeadID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

// HandleList handles GET /v1/mei
//
//	@Summary	List MEI registrations
//	@Tags		MEI
//	@Security	BearerAuth
//	@Produce	json
//	@Param		status	query		string	false	"Status"
//	@Success	200		{object}	listResponse[domain.MEIRegistration]
//	@Router		/v1/mei [get].
func (h *MEIHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.MEIService.List(r.Context(), store.MEIFilter{Status: domain.MEIStatus(query(r, "status"))})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(list))
}

// HandleGet handles GET /v1/mei/{id}
//
//	@Summary	Get an MEI registration
//	@Tags		MEI
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Registration ID"
//	@Success	200	{object}	domain.MEIRegistration
//	@Router		/v1/mei/{id} [get].
func (h *MEIHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.MEIService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

// HandleSaveStep handles PUT /v1/mei/{id}/steps/{n}
//
//	@Summary	Save one wizard step
//	@Description	Step n may not be ahead of current_step. Unknown fields are rejected.
//	@Tags		MEI
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Registration ID"
//	@Param		n		path		int		true	"Step (1-3)"
//	@Param		request	body		object	true	"Step payload, see /v1/mei/schema/{step}"
//	@Success	200		{object}	domain.MEIRegistration
//	@Failure	400		{object}	httpx.ErrorResponse	"validation_failed"
//	@Failure	409		{object}	httpx.ErrorResponse	"step out of order or registration locked"
//	@Router		/v1/mei/{id}/steps/{n} [put].
func (h *MEIHandler) HandleSaveStep(w http.ResponseWriter, r *http.Request) {
	n, err := stepParam(r, "n")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, httpx.CodeTooLarge, "request body too large")
		return
	}
	if !json.Valid(body) {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "malformed JSON body")
		return
	}
	m, err := h.MEIService.SaveStep(r.Context(), r.PathValue("id"), n, json.RawMessage(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

// HandleSubmit handles POST /v1/mei/{id}/submit
//
//	@Summary	Submit a completed registration
//	@Tags		MEI
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Registration ID"
//	@Success	200	{object}	domain.MEIRegistration
//	@Failure	409	{object}	httpx.ErrorResponse	"incomplete"
//	@Router		/v1/mei/{id}/submit [post].
func (h *MEIHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	m, err := h.MEIService.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

// HandleStatus handles POST /v1/mei/{id}/status
//
//	@Summary	Move a submitted registration forward
//	@Tags		MEI
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Registration ID"
//	@Param		request	body		StatusRequest	true	"Target status and reason"
//	@Success	200		{object}	domain.MEIRegistration
//	@Router		/v1/mei/{id}/status [post].
func (h *MEIHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	m, err := h.MEIService.SetStatus(r.Context(), r.PathValue("id"), domain.MEIStatus(req.Status), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

// HandleSchema handles GET /v1/mei/schema/{step}
//
//	@Summary	JSON Schema of a wizard step
//	@Tags		MEI
//	@Security	BearerAuth
//	@Produce	json
//	@Param		step	path		int	true	"Step (1-3)"
//	@Success	200		{object}	object
//	@Router		/v1/mei/schema/{step} [get].
func (h *MEIHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	n, err := stepParam(r, "step")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	schema, err := h.MEIService.Schema(n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	httpx.WriteJSON(w, http.StatusOK, schema)
}
