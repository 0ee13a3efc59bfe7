package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/api/validate"
	"github.com/baharkarakas/rewear-backend/internal/models"
	"github.com/baharkarakas/rewear-backend/internal/services"
)

type SwapHandler struct {
	Swaps *services.SwapService
	Log   *slog.Logger
}

type swapReq struct {
	ItemID  string  `json:"item_id" validate:"required"`
	Message *string `json:"message"`
}

func (h *SwapHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	var req swapReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	sr, err := h.Swaps.RequestSwap(r.Context(), actor.UserID, req.ItemID, req.Message)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sr)
}

// List takes role=incoming|outgoing|all and an optional status.
func (h *SwapHandler) List(w http.ResponseWriter, r *http.Request) {
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
	q := r.URL.Query()
	role := models.SwapRole(strings.ToLower(strings.TrimSpace(q.Get("role"))))
	status := models.SwapStatus(strings.ToLower(strings.TrimSpace(q.Get("status"))))
	out, err := h.Swaps.ListForUser(r.Context(), actor.UserID, role, status, limit, offset)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList[models.SwapRequest](out, limit, offset))
}

func (h *SwapHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	sr, err := h.Swaps.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sr)
}

func (h *SwapHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	res, err := h.Swaps.Accept(r.Context(), actor.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *SwapHandler) Decline(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	sr, err := h.Swaps.Decline(r.Context(), actor.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sr)
}

func (h *SwapHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	sr, err := h.Swaps.Cancel(r.Context(), actor.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sr)
}
