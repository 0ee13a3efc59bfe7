package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/api/validate"
	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/auth"
	"github.com/baharkarakas/rewear-backend/internal/models"
	"github.com/baharkarakas/rewear-backend/internal/services"
)

type AuthHandler struct {
	TM    *auth.TokenManager
	Users *services.UserService
	Log   *slog.Logger
}

func NewAuthHandler(tm *auth.TokenManager, users *services.UserService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{TM: tm, Users: users, Log: log}
}

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResp struct {
	User models.User `json:"user"`
	auth.Pair
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	u, err := h.Users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	h.issue(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	u, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	h.issue(w, http.StatusOK, u)
}

// Refresh re-reads the user so a block or role change since login applies.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteAppError(w, h.Log, apperr.New(apperr.CodeUnauthorized, "invalid refresh token"))
		return
	}
	u, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			err = apperr.New(apperr.CodeUnauthorized, "invalid refresh token")
		}
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	if u.Blocked {
		httpx.WriteAppError(w, h.Log, apperr.New(apperr.CodeForbidden, "account is blocked"))
		return
	}
	h.issue(w, http.StatusOK, u)
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, u models.User) {
	pair, err := h.TM.GeneratePair(u.ID, u.Role)
	if err != nil {
		httpx.WriteAppError(w, h.Log, apperr.Wrap(apperr.CodeInternal, err, "token generation failed"))
		return
	}
	httpx.WriteJSON(w, status, tokenResp{User: u, Pair: pair})
}
