package http

import (
	"net/http"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type MFAVerifyRequest struct {
	Code string `json:"code"`
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Exchanges username and password (and a TOTP code when MFA is enabled) for a token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest			true	"Credentials"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_grant or mfa_required"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	pair, err := h.AuthService.Login(r.Context(), req.Username, req.Password, req.OTP)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary	Rotate a refresh token
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RefreshRequest	true	"Refresh token"
//	@Success	200		{object}	domain.TokenPair
//	@Failure	401		{object}	httpx.ErrorResponse
//	@Router		/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary	Revoke a refresh token
//	@Tags		Auth
//	@Accept		json
//	@Param		request	body	RefreshRequest	true	"Refresh token"
//	@Success	204
//	@Router		/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.AuthService.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/auth/me
//
//	@Summary	Current user
//	@Tags		Auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.User
//	@Router		/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.Me(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// HandleEnrollMFA handles POST /v1/auth/mfa/enroll
//
//	@Summary		Start TOTP enrolment
//	@Description	Staff only. Returns the seed once; MFA is enabled by a successful verify.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.MFAEnrollment
//	@Failure		403	{object}	httpx.ErrorResponse
//	@Failure		409	{object}	httpx.ErrorResponse
//	@Router			/v1/auth/mfa/enroll [post].
func (h *AuthHandler) HandleEnrollMFA(w http.ResponseWriter, r *http.Request) {
	enrol, err := h.AuthService.EnrollMFA(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, enrol)
}

// HandleVerifyMFA handles POST /v1/auth/mfa/verify
//
//	@Summary	Confirm TOTP enrolment
//	@Tags		Auth
//	@Security	BearerAuth
//	@Accept		json
//	@Param		request	body	MFAVerifyRequest	true	"Current TOTP code"
//	@Success	204
//	@Failure	401	{object}	httpx.ErrorResponse
//	@Router		/v1/auth/mfa/verify [post].
func (h *AuthHandler) HandleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req MFAVerifyRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.AuthService.VerifyMFA(r.Context(), actorFrom(r), req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateUser handles POST /v1/users
//
//	@Summary	Create a staff or portal user
//	@Tags		Users
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		service.CreateUserInput	true	"User"
//	@Success	201		{object}	domain.User
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Failure	409		{object}	httpx.ErrorResponse
//	@Router		/v1/users [post].
func (h *AuthHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}
	u, err := h.UserService.CreateUser(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

// HandleListUsers handles GET /v1/users
//
//	@Summary	List users
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	listResponse[domain.User]
//	@Router		/v1/users [get].
func (h *AuthHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(users))
}
