package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/metrics"
	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

const maxSwapMessage = 500

// SwapService runs the swap request lifecycle. Accepting a request is the only
// place where an item, requests and the points ledger change together.
type SwapService struct {
	store repo.Store
	audit *Auditor
	log   *slog.Logger
}

func NewSwapService(store repo.Store, audit *Auditor, log *slog.Logger) *SwapService {
	if log == nil {
		log = slog.Default()
	}
	return &SwapService{store: store, audit: audit, log: log}
}

// AcceptResult is everything an accepted swap committed.
type AcceptResult struct {
	Request  models.SwapRequest   `json:"request"`
	Item     models.Item          `json:"item"`
	Debit    models.Transaction   `json:"debit"`
	Credit   models.Transaction   `json:"credit"`
	Declined []models.SwapRequest `json:"declined"`
}

func (s *SwapService) RequestSwap(ctx context.Context, requesterID, itemID string, message *string) (models.SwapRequest, error) {
	if message != nil {
		trimmed := strings.TrimSpace(*message)
		if utf8.RuneCountInString(trimmed) > maxSwapMessage {
			return models.SwapRequest{}, apperr.Newf(apperr.CodeValidation, "message must be at most %d characters", maxSwapMessage)
		}
		if trimmed == "" {
			message = nil
		} else {
			message = &trimmed
		}
	}

	var created models.SwapRequest
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		item, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return translate(err, "item")
		}
		if item.OwnerID == requesterID {
			return apperr.New(apperr.CodeIneligibleRequester, "cannot request a swap for your own item")
		}
		requester, err := r.Users.GetByID(ctx, requesterID)
		if err != nil {
			return translate(err, "user")
		}
		if requester.Blocked {
			return apperr.New(apperr.CodeIneligibleRequester, "blocked users cannot request swaps")
		}
		if item.Status != models.ItemAvailable {
			return apperr.Newf(apperr.CodeInvalidTransition, "item is %s, not available", item.Status).
				WithDetails(map[string]any{"item_status": item.Status})
		}
		dup, err := r.Swaps.HasPending(ctx, itemID, requesterID)
		if err != nil {
			return translate(err, "swap request")
		}
		if dup {
			return apperr.New(apperr.CodeConflict, "a pending request for this item already exists")
		}
		bal, err := r.Balances.GetOrCreate(ctx, requesterID)
		if err != nil {
			return translate(err, "balance")
		}
		if bal.Amount < item.PointsCost {
			return insufficientPoints(bal.Amount, item.PointsCost)
		}

		created, err = r.Swaps.Create(ctx, models.SwapRequest{
			ItemID:      itemID,
			RequesterID: requesterID,
			ReceiverID:  item.OwnerID,
			PointsCost:  item.PointsCost,
			Status:      models.SwapPending,
			Message:     message,
		})
		return translate(err, "swap request")
	})
	if err != nil {
		return models.SwapRequest{}, translate(err, "swap request")
	}
	metrics.SwapTransitionsTotal.WithLabelValues(string(models.SwapPending)).Inc()
	s.log.Info("swap requested", "swap_id", created.ID, "item_id", itemID, "requester_id", requesterID)
	s.audit.Record(requesterID, "swap_request", created.ID, "created", map[string]any{
		"item_id": itemID, "points_cost": created.PointsCost,
	})
	return created, nil
}

// Accept completes the swap in one transaction: the item becomes swapped, the
// request completes, every other pending request on the item is declined and
// the points move from requester to receiver. Any failure leaves all of it
// untouched and the request pending.
func (s *SwapService) Accept(ctx context.Context, actorID, swapID string) (AcceptResult, error) {
	var res AcceptResult
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		req, err := r.Swaps.GetForUpdate(ctx, swapID)
		if err != nil {
			return translate(err, "swap request")
		}
		if req.ReceiverID != actorID {
			return apperr.New(apperr.CodeForbidden, "only the receiver may accept a swap request")
		}
		if req.Status != models.SwapPending {
			return apperr.Newf(apperr.CodeInvalidTransition, "swap request is %s, not pending", req.Status).
				WithDetails(map[string]any{"status": req.Status})
		}

		item, err := r.Items.GetForUpdate(ctx, req.ItemID)
		if err != nil {
			return translate(err, "item")
		}
		if item, err = moveItemToSwapped(ctx, r, item); err != nil {
			return err
		}

		debit, credit, err := transferTx(ctx, r, req.RequesterID, req.ReceiverID, req.PointsCost, ReasonSwap, req.ID)
		if err != nil {
			if apperr.Is(err, apperr.CodeInsufficientFunds) {
				return apperr.Wrap(apperr.CodeInsufficientPoints, err, "requester no longer has enough points").
					WithDetails(apperr.As(err).Details())
			}
			return err
		}

		if _, err := r.Swaps.UpdateStatus(ctx, req.ID, models.SwapPending, models.SwapAccepted); err != nil {
			return translate(err, "swap request")
		}
		completed, err := r.Swaps.UpdateStatus(ctx, req.ID, models.SwapAccepted, models.SwapCompleted)
		if err != nil {
			return translate(err, "swap request")
		}
		declined, err := declinePending(ctx, r, req.ItemID, req.ID)
		if err != nil {
			return err
		}

		res = AcceptResult{Request: completed, Item: item, Debit: debit, Credit: credit, Declined: declined}
		return nil
	})
	if err != nil {
		err = translate(err, "swap request")
		if apperr.Is(err, apperr.CodeInsufficientPoints) {
			metrics.PointsTransfersFailed.WithLabelValues(string(apperr.CodeInsufficientPoints)).Inc()
		}
		return AcceptResult{}, err
	}

	metrics.SwapTransitionsTotal.WithLabelValues(string(models.SwapAccepted)).Inc()
	metrics.SwapTransitionsTotal.WithLabelValues(string(models.SwapCompleted)).Inc()
	if len(res.Declined) > 0 {
		metrics.SwapTransitionsTotal.WithLabelValues(string(models.SwapDeclined)).Add(float64(len(res.Declined)))
	}
	metrics.ItemTransitionsTotal.WithLabelValues(string(models.ItemSwapped)).Inc()
	metrics.PointsTransfersTotal.WithLabelValues("transfer", ReasonSwap).Inc()

	s.log.Info("swap accepted",
		"swap_id", swapID,
		"item_id", res.Item.ID,
		"points", res.Request.PointsCost,
		"declined", len(res.Declined),
	)
	s.audit.Record(actorID, "swap_request", swapID, "completed", map[string]any{
		"item_id":  res.Item.ID,
		"amount":   res.Request.PointsCost,
		"declined": len(res.Declined),
	})
	return res, nil
}

// moveItemToSwapped walks the item through the catalog table: an available
// item is reserved first, then swapped.
func moveItemToSwapped(ctx context.Context, r repo.Repositories, item models.Item) (models.Item, error) {
	if item.Status == models.ItemAvailable {
		item.Status = models.ItemPending
		updated, err := r.Items.Update(ctx, item)
		if err != nil {
			return models.Item{}, translate(err, "item")
		}
		item = updated
	}
	if !item.Status.CanTransitionTo(models.ItemSwapped) {
		return models.Item{}, apperr.Newf(apperr.CodeInvalidTransition, "item is %s and cannot be swapped", item.Status).
			WithDetails(map[string]any{"item_status": item.Status})
	}
	item.Status = models.ItemSwapped
	updated, err := r.Items.Update(ctx, item)
	return updated, translate(err, "item")
}

// Decline is the receiver turning a pending request down.
func (s *SwapService) Decline(ctx context.Context, actorID, swapID string) (models.SwapRequest, error) {
	return s.close(ctx, actorID, swapID, "declined", func(req models.SwapRequest) bool {
		return req.ReceiverID == actorID
	}, "only the receiver may decline a swap request")
}

// Cancel is the requester withdrawing their own pending request.
func (s *SwapService) Cancel(ctx context.Context, actorID, swapID string) (models.SwapRequest, error) {
	return s.close(ctx, actorID, swapID, "cancelled", func(req models.SwapRequest) bool {
		return req.RequesterID == actorID
	}, "only the requester may cancel a swap request")
}

func (s *SwapService) close(ctx context.Context, actorID, swapID, action string, allowed func(models.SwapRequest) bool, denied string) (models.SwapRequest, error) {
	var out models.SwapRequest
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		req, err := r.Swaps.GetForUpdate(ctx, swapID)
		if err != nil {
			return translate(err, "swap request")
		}
		if !allowed(req) {
			return apperr.New(apperr.CodeForbidden, denied)
		}
		if !req.Status.CanTransitionTo(models.SwapDeclined) {
			return apperr.Newf(apperr.CodeInvalidTransition, "swap request is %s, not pending", req.Status).
				WithDetails(map[string]any{"status": req.Status})
		}
		out, err = r.Swaps.UpdateStatus(ctx, swapID, models.SwapPending, models.SwapDeclined)
		return translate(err, "swap request")
	})
	if err != nil {
		return models.SwapRequest{}, translate(err, "swap request")
	}
	metrics.SwapTransitionsTotal.WithLabelValues(string(models.SwapDeclined)).Inc()
	s.log.Info("swap "+action, "swap_id", swapID, "actor_id", actorID)
	s.audit.Record(actorID, "swap_request", swapID, action, nil)
	return out, nil
}

// Get returns a request visible to its two parties and to admins.
func (s *SwapService) Get(ctx context.Context, actor Actor, swapID string) (models.SwapRequest, error) {
	req, err := s.store.Repos().Swaps.GetByID(ctx, swapID)
	if err != nil {
		return models.SwapRequest{}, translate(err, "swap request")
	}
	if req.RequesterID != actor.UserID && req.ReceiverID != actor.UserID && !actor.IsAdmin() {
		return models.SwapRequest{}, apperr.New(apperr.CodeForbidden, "not a party to this swap request")
	}
	return req, nil
}

func (s *SwapService) ListForUser(ctx context.Context, userID string, role models.SwapRole, status models.SwapStatus, limit, offset int) ([]models.SwapRequest, error) {
	switch role {
	case "":
		role = models.SwapRoleAll
	case models.SwapRoleAll, models.SwapRoleIncoming, models.SwapRoleOutgoing:
	default:
		return nil, apperr.Newf(apperr.CodeValidation, "invalid role %q", role)
	}
	if status != "" && !status.IsValid() {
		return nil, apperr.Newf(apperr.CodeValidation, "invalid status %q", status)
	}
	limit, offset = clampPage(limit, offset)
	out, err := s.store.Repos().Swaps.ListByUser(ctx, userID, role, status, limit, offset)
	return out, translate(err, "swap requests")
}

// ListForItem returns every request on the item to its owner and admins, and
// only the caller's own requests to anyone else.
func (s *SwapService) ListForItem(ctx context.Context, actor Actor, itemID string) ([]models.SwapRequest, error) {
	r := s.store.Repos()
	item, err := r.Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, translate(err, "item")
	}
	all, err := r.Swaps.ListByItem(ctx, itemID, "")
	if err != nil {
		return nil, translate(err, "swap requests")
	}
	if item.OwnerID == actor.UserID || actor.IsAdmin() {
		return all, nil
	}
	own := make([]models.SwapRequest, 0, len(all))
	for _, req := range all {
		if req.RequesterID == actor.UserID {
			own = append(own, req)
		}
	}
	return own, nil
}

func insufficientPoints(have, need int64) error {
	return apperr.New(apperr.CodeInsufficientPoints, "not enough points for this item").
		WithDetails(map[string]any{"balance": have, "required": need})
}
