package handlers

import (
	"errors"
	"net/http"

	"github.com/marmos91/hubd/pkg/api/httperr"
	"github.com/marmos91/hubd/pkg/api/middleware"
	"github.com/marmos91/hubd/pkg/auth"
)

// AuthHandler implements the session endpoints (spec C1: authenticate,
// issue/refresh session tokens, current_principal). Grounded on
// _examples/marmos91-dittofs/pkg/api/handlers/auth.go's Login/Refresh
// shape, adapted to pkg/auth.Service (which accepts both session JWTs and
// hub_<random> API tokens on AuthenticateBearer).
type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		httperr.Write(w, httperr.MalformedPayload)
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrPrincipalDisabled) {
			httperr.Write(w, httperr.Unauthenticated)
			return
		}
		httperr.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalDisabled) {
			httperr.Write(w, httperr.Unauthenticated)
			return
		}
		httperr.Write(w, httperr.RevokedToken)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Me handles GET /api/v1/auth/me, requires RequireAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		httperr.Write(w, httperr.Unauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, principal)
}
