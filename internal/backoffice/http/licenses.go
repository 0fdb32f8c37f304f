package http

import (
	"net/http"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
)

type LicensesHandler struct {
	LicenseService *service.LicenseService
}

// HandleList handles GET /v1/licenses
//
//	@Summary	List licenses
//	@Tags		Licenses
//	@Security	BearerAuth
//	@Produce	json
//	@Param		client_id	query		string	false	"Client ID"
//	@Param		status		query		string	false	"valid, expiring or expired"
//	@Success	200			{object}	listResponse[domain.License]
//	@Router		/v1/licenses [get].
func (h *LicensesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.LicenseService.List(r.Context(), actorFrom(r),
		store.LicenseFilter{ClientID: query(r, "client_id")},
		domain.LicenseStatus(query(r, "status")),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(list))
}

// HandleCreate handles POST /v1/licenses
//
//	@Summary	Register a license
//	@Tags		Licenses
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.License	true	"License"
//	@Success	201		{object}	domain.License
//	@Router		/v1/licenses [post].
func (h *LicensesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var l domain.License
	if !httpx.DecodeJSON(w, r, &l) {
		return
	}
	l, err := h.LicenseService.Create(r.Context(), l)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, l)
}

// HandleGet handles GET /v1/licenses/{id}
//
//	@Summary	Get a license
//	@Tags		Licenses
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"License ID"
//	@Success	200	{object}	domain.License
//	@Router		/v1/licenses/{id} [get].
func (h *LicensesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.LicenseService.Get(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleUpdate handles PUT /v1/licenses/{id}
//
//	@Summary	Update a license
//	@Tags		Licenses
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"License ID"
//	@Param		request	body		domain.License	true	"License"
//	@Success	200		{object}	domain.License
//	@Router		/v1/licenses/{id} [put].
func (h *LicensesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var l domain.License
	if !httpx.DecodeJSON(w, r, &l) {
		return
	}
	l, err := h.LicenseService.Update(r.Context(), r.PathValue("id"), l)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleDelete handles DELETE /v1/licenses/{id}
//
//	@Summary	Delete a license
//	@Tags		Licenses
//	@Security	BearerAuth
//	@Param		id	path	string	true	"License ID"
//	@Success	204
//	@Router		/v1/licenses/{id} [delete].
func (h *LicensesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.LicenseService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
