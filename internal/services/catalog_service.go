package services

import (
	"context"
	"log/slog"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/metrics"
	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

type CatalogOptions struct {
	// MaxPoints caps an item's points cost. Zero means no cap.
	MaxPoints int64
	// ListingBonus is credited to the owner for every new listing. Zero disables it.
	ListingBonus int64
}

// CatalogService owns item records and their availability status. It never
// moves points except for the optional listing bonus.
type CatalogService struct {
	store repo.Store
	audit *Auditor
	log   *slog.Logger
	opts  CatalogOptions
}

func NewCatalogService(store repo.Store, audit *Auditor, log *slog.Logger, opts CatalogOptions) *CatalogService {
	if log == nil {
		log = slog.Default()
	}
	return &CatalogService{store: store, audit: audit, log: log, opts: opts}
}

func (s *CatalogService) validateCost(cost int64) error {
	if cost <= 0 {
		return apperr.New(apperr.CodeValidation, "points_cost must be > 0")
	}
	if s.opts.MaxPoints > 0 && cost > s.opts.MaxPoints {
		return apperr.Newf(apperr.CodeValidation, "points_cost must be <= %d", s.opts.MaxPoints)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, ownerID string, pointsCost int64, attrs models.ItemAttrs) (models.Item, error) {
	if err := s.validateCost(pointsCost); err != nil {
		return models.Item{}, err
	}
	attrs = attrs.Normalize()
	if err := attrs.Validate(); err != nil {
		return models.Item{}, err
	}

	var item models.Item
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		owner, err := r.Users.GetByID(ctx, ownerID)
		if err != nil {
			return translate(err, "user")
		}
		if owner.Blocked {
			return apperr.New(apperr.CodeForbidden, "blocked users cannot list items")
		}
		item, err = r.Items.Create(ctx, models.Item{
			OwnerID:    ownerID,
			ItemAttrs:  attrs,
			PointsCost: pointsCost,
			Status:     models.ItemAvailable,
		})
		if err != nil {
			return translate(err, "item")
		}
		if s.opts.ListingBonus > 0 {
			if _, err := creditTx(ctx, r, ownerID, s.opts.ListingBonus, ReasonListingBonus, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Item{}, translate(err, "item")
	}
	metrics.ItemTransitionsTotal.WithLabelValues(string(models.ItemAvailable)).Inc()
	if s.opts.ListingBonus > 0 {
		metrics.PointsTransfersTotal.WithLabelValues("credit", ReasonListingBonus).Inc()
	}
	s.log.Info("item listed", "item_id", item.ID, "owner_id", ownerID, "points_cost", pointsCost)
	s.audit.Record(ownerID, "item", item.ID, "created", map[string]any{"points_cost": pointsCost})
	return item, nil
}

// SetStatus moves an item along the catalog transition table. Swapped is only
// reachable by accepting a swap request; rejected only by an admin, and
// rejecting declines every pending request on the item.
func (s *CatalogService) SetStatus(ctx context.Context, actor Actor, itemID string, next models.ItemStatus) (models.Item, error) {
	if !next.IsValid() {
		return models.Item{}, apperr.Newf(apperr.CodeValidation, "invalid item status %q", next)
	}

	var (
		item     models.Item
		from     models.ItemStatus
		declined []models.SwapRequest
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		current, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return translate(err, "item")
		}
		from = current.Status
		if current.OwnerID != actor.UserID && !actor.IsAdmin() {
			return apperr.New(apperr.CodeForbidden, "only the owner or an admin may change an item")
		}
		if next == models.ItemRejected && !actor.IsAdmin() {
			return apperr.New(apperr.CodeForbidden, "only an admin may reject an item")
		}
		if next == models.ItemSwapped {
			return apperr.New(apperr.CodeInvalidTransition, "items become swapped only by accepting a swap request").
				WithDetails(map[string]any{"from": from, "to": next})
		}
		if !from.CanTransitionTo(next) {
			return apperr.Newf(apperr.CodeInvalidTransition, "item cannot move from %s to %s", from, next).
				WithDetails(map[string]any{"from": from, "to": next})
		}

		current.Status = next
		item, err = r.Items.Update(ctx, current)
		if err != nil {
			return translate(err, "item")
		}
		if next == models.ItemRejected {
			declined, err = declinePending(ctx, r, itemID, "")
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Item{}, translate(err, "item")
	}

	metrics.ItemTransitionsTotal.WithLabelValues(string(next)).Inc()
	if len(declined) > 0 {
		metrics.SwapTransitionsTotal.WithLabelValues(string(models.SwapDeclined)).Add(float64(len(declined)))
	}
	s.log.Info("item status changed", "item_id", itemID, "from", from, "to", next, "actor_id", actor.UserID)
	s.audit.Record(actor.UserID, "item", itemID, "status_change", map[string]any{
		"from": from, "to": next, "declined_requests": len(declined),
	})
	return item, nil
}

// Update replaces the owner-editable fields. The points cost is frozen while
// pending requests exist so every request keeps the price it was made at.
func (s *CatalogService) Update(ctx context.Context, actor Actor, itemID string, pointsCost int64, attrs models.ItemAttrs) (models.Item, error) {
	if err := s.validateCost(pointsCost); err != nil {
		return models.Item{}, err
	}
	attrs = attrs.Normalize()
	if err := attrs.Validate(); err != nil {
		return models.Item{}, err
	}

	var item models.Item
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		current, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return translate(err, "item")
		}
		if current.OwnerID != actor.UserID {
			return apperr.New(apperr.CodeForbidden, "only the owner may edit an item")
		}
		if current.Status.Final() {
			return apperr.Newf(apperr.CodeInvalidTransition, "%s items cannot be edited", current.Status)
		}
		if pointsCost != current.PointsCost {
			pending, err := r.Swaps.ListByItem(ctx, itemID, models.SwapPending)
			if err != nil {
				return translate(err, "swap request")
			}
			if len(pending) > 0 {
				return apperr.New(apperr.CodeConflict, "points cost cannot change while swap requests are pending").
					WithDetails(map[string]any{"pending_requests": len(pending)})
			}
		}
		current.ItemAttrs = attrs
		current.PointsCost = pointsCost
		item, err = r.Items.Update(ctx, current)
		return translate(err, "item")
	})
	if err != nil {
		return models.Item{}, translate(err, "item")
	}
	s.audit.Record(actor.UserID, "item", itemID, "updated", map[string]any{"points_cost": pointsCost})
	return item, nil
}

func (s *CatalogService) Get(ctx context.Context, itemID string) (models.Item, error) {
	it, err := s.store.Repos().Items.GetByID(ctx, itemID)
	return it, translate(err, "item")
}

func (s *CatalogService) List(ctx context.Context, f models.ItemFilter) ([]models.Item, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, apperr.Newf(apperr.CodeValidation, "invalid item status %q", f.Status)
	}
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	items, err := s.store.Repos().Items.List(ctx, f)
	return items, translate(err, "items")
}

// declinePending moves every pending request on itemID except keepID to
// declined and returns the updated rows.
func declinePending(ctx context.Context, r repo.Repositories, itemID, keepID string) ([]models.SwapRequest, error) {
	pending, err := r.Swaps.ListByItem(ctx, itemID, models.SwapPending)
	if err != nil {
		return nil, translate(err, "swap request")
	}
	out := make([]models.SwapRequest, 0, len(pending))
	for _, req := range pending {
		if req.ID == keepID {
			continue
		}
		updated, err := r.Swaps.UpdateStatus(ctx, req.ID, models.SwapPending, models.SwapDeclined)
		if err != nil {
			return nil, translate(err, "swap request")
		}
		out = append(out, updated)
	}
	return out, nil
}
