package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/api/validate"
	"github.com/baharkarakas/rewear-backend/internal/models"
	"github.com/baharkarakas/rewear-backend/internal/services"
)

type MessageHandler struct {
	Messages *services.MessageService
	Log      *slog.Logger
}

type messageReq struct {
	RecipientID string  `json:"recipient_id" validate:"required"`
	Body        string  `json:"body" validate:"required"`
	SwapID      *string `json:"swap_id"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	var req messageReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	m, err := h.Messages.Send(r.Context(), actor.UserID, req.RecipientID, req.Body, req.SwapID)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
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
	msgs, err := h.Messages.ListForUser(r.Context(), actor.UserID, limit, offset)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList[models.Message](msgs, limit, offset))
}
