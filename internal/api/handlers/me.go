package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/models"
	"github.com/baharkarakas/rewear-backend/internal/services"
)

// MeHandler serves the caller's own profile, balance and history.
type MeHandler struct {
	Users     *services.UserService
	Points    *services.PointsService
	Dashboard *services.DashboardService
	Log       *slog.Logger
}

func (h *MeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	u, err := h.Users.Get(r.Context(), actor.UserID)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *MeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	d, err := h.Dashboard.Summary(r.Context(), actor.UserID)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *MeHandler) Balance(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	b, err := h.Points.Balance(r.Context(), actor.UserID)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *MeHandler) Transactions(w http.ResponseWriter, r *http.Request) {
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
	txns, err := h.Points.History(r.Context(), actor.UserID, limit, offset)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList[models.Transaction](txns, limit, offset))
}
