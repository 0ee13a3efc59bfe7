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

type ItemHandler struct {
	Catalog *services.CatalogService
	Swaps   *services.SwapService
	Log     *slog.Logger
}

type itemReq struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"required,max=2000"`
	Category    string   `json:"category" validate:"required,max=60"`
	Size        string   `json:"size" validate:"required,max=20"`
	Condition   string   `json:"condition" validate:"required"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=40"`
	Images      []string `json:"images" validate:"max=10,dive,url"`
	PointsCost  int64    `json:"points_cost" validate:"gt=0"`
}

func (req itemReq) attrs() models.ItemAttrs {
	return models.ItemAttrs{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   models.ItemCondition(req.Condition),
		Tags:        req.Tags,
		Images:      req.Images,
	}
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	var req itemReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	item, err := h.Catalog.Create(r.Context(), actor.UserID, req.PointsCost, req.attrs())
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	var req itemReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	item, err := h.Catalog.Update(r.Context(), actor, chi.URLParam(r, "id"), req.PointsCost, req.attrs())
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	var req statusReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	next := models.ItemStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	item, err := h.Catalog.SetStatus(r.Context(), actor, chi.URLParam(r, "id"), next)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

// List browses the catalog. Without owner_id or status it shows only
// available items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := itemFilter(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	if f.OwnerID == "" && f.Status == "" {
		f.Status = models.ItemAvailable
	}
	items, err := h.Catalog.List(r.Context(), f)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList[models.Item](items, f.Limit, f.Offset))
}

// ListSwaps lists the requests on an item visible to the caller.
func (h *ItemHandler) ListSwaps(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	reqs, err := h.Swaps.ListForItem(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList[models.SwapRequest](reqs, len(reqs), 0))
}

func itemFilter(r *http.Request) (models.ItemFilter, error) {
	limit, offset, err := page(r)
	if err != nil {
		return models.ItemFilter{}, err
	}
	q := r.URL.Query()
	return models.ItemFilter{
		OwnerID:  strings.TrimSpace(q.Get("owner_id")),
		Status:   models.ItemStatus(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		Category: strings.TrimSpace(q.Get("category")),
		Limit:    limit,
		Offset:   offset,
	}, nil
}
