package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/api/validate"
	"github.com/baharkarakas/rewear-backend/internal/models"
	"github.com/baharkarakas/rewear-backend/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
	Log   *slog.Logger
}

type grantReq struct {
	UserID string `json:"user_id" validate:"required"`
	Amount int64  `json:"amount" validate:"gt=0"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	limit, offset, err := page(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	users, err := h.Admin.ListUsers(r.Context(), actor, limit, offset)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList[models.User](users, limit, offset))
}

func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

func (h *AdminHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *AdminHandler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	id := chi.URLParam(r, "id")
	var u models.User
	if blocked {
		u, err = h.Admin.BlockUser(r.Context(), actor, id)
	} else {
		u, err = h.Admin.UnblockUser(r.Context(), actor, id)
	}
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AdminHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	f, err := itemFilter(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	items, err := h.Admin.ListItems(r.Context(), actor, f)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList[models.Item](items, f.Limit, f.Offset))
}

func (h *AdminHandler) RejectItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	item, err := h.Admin.RejectItem(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *AdminHandler) GrantPoints(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	var req grantReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	txn, err := h.Admin.GrantPoints(r.Context(), actor, req.UserID, req.Amount)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, txn)
}
