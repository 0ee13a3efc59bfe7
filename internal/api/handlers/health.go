package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/apperr"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store pinger
	Log   *slog.Logger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Warn("health check failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, string(apperr.CodeInternal), "store unavailable", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
