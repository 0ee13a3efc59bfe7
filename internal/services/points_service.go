package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/metrics"
	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

// Ledger reasons.
const (
	ReasonSwap         = "swap"
	ReasonWelcomeBonus = "welcome_bonus"
	ReasonListingBonus = "listing_bonus"
	ReasonAdminGrant   = "admin_grant"
)

// PointsService owns balances and the append-only transaction ledger.
type PointsService struct {
	store repo.Store
	audit *Auditor
	log   *slog.Logger
}

func NewPointsService(store repo.Store, audit *Auditor, log *slog.Logger) *PointsService {
	if log == nil {
		log = slog.Default()
	}
	return &PointsService{store: store, audit: audit, log: log}
}

// Transfer moves amount from one user to another in its own transaction and
// returns the spent and earned rows.
func (s *PointsService) Transfer(ctx context.Context, fromID, toID string, amount int64, reason, correlationID string) (models.Transaction, models.Transaction, error) {
	var debit, credit models.Transaction
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		for _, id := range []string{fromID, toID} {
			if _, err := r.Users.GetByID(ctx, id); err != nil {
				return translate(err, "user")
			}
		}
		var err error
		debit, credit, err = transferTx(ctx, r, fromID, toID, amount, reason, correlationID)
		return err
	})
	if err != nil {
		err = translate(err, "balance")
		metrics.PointsTransfersFailed.WithLabelValues(string(apperr.CodeOf(err))).Inc()
		return models.Transaction{}, models.Transaction{}, err
	}
	metrics.PointsTransfersTotal.WithLabelValues("transfer", reason).Inc()
	s.audit.Record(fromID, "transaction", debit.CorrelationID, "transfer", map[string]any{
		"from": fromID, "to": toID, "amount": amount, "reason": reason,
	})
	return debit, credit, nil
}

// Credit grants amount to userID.
func (s *PointsService) Credit(ctx context.Context, userID string, amount int64, reason string) (models.Transaction, error) {
	var txn models.Transaction
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if _, err := r.Users.GetByID(ctx, userID); err != nil {
			return translate(err, "user")
		}
		var err error
		txn, err = creditTx(ctx, r, userID, amount, reason, "")
		return err
	})
	if err != nil {
		err = translate(err, "balance")
		metrics.PointsTransfersFailed.WithLabelValues(string(apperr.CodeOf(err))).Inc()
		return models.Transaction{}, err
	}
	metrics.PointsTransfersTotal.WithLabelValues("credit", reason).Inc()
	s.audit.Record("", "transaction", txn.ID, "credit", map[string]any{
		"user": userID, "amount": amount, "reason": reason,
	})
	return txn, nil
}

func (s *PointsService) Balance(ctx context.Context, userID string) (models.Balance, error) {
	r := s.store.Repos()
	if _, err := r.Users.GetByID(ctx, userID); err != nil {
		return models.Balance{}, translate(err, "user")
	}
	b, err := r.Balances.GetOrCreate(ctx, userID)
	return b, translate(err, "balance")
}

// History lists userID's ledger rows, newest first.
func (s *PointsService) History(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	limit, offset = clampPage(limit, offset)
	txns, err := s.store.Repos().Transactions.ListByUser(ctx, userID, limit, offset)
	return txns, translate(err, "transactions")
}

// transferTx is the ledger transfer against repositories already bound to a
// transaction. Balance rows are locked in id order so two opposite transfers
// cannot deadlock.
func transferTx(ctx context.Context, r repo.Repositories, fromID, toID string, amount int64, reason, correlationID string) (models.Transaction, models.Transaction, error) {
	var none models.Transaction
	if amount <= 0 {
		return none, none, apperr.New(apperr.CodeValidation, "amount must be > 0")
	}
	if fromID == "" || toID == "" {
		return none, none, apperr.New(apperr.CodeValidation, "both parties are required")
	}
	if fromID == toID {
		return none, none, apperr.New(apperr.CodeValidation, "cannot transfer to self")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return none, none, apperr.New(apperr.CodeValidation, "reason is required")
	}

	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	balances := map[string]models.Balance{}
	for _, id := range []string{first, second} {
		b, err := r.Balances.GetForUpdate(ctx, id)
		if err != nil {
			return none, none, translate(err, "balance")
		}
		balances[id] = b
	}
	if have := balances[fromID].Amount; have < amount {
		return none, none, apperr.New(apperr.CodeInsufficientFunds, "insufficient balance").
			WithDetails(map[string]any{"balance": have, "required": amount})
	}

	if _, err := r.Balances.UpdateAmount(ctx, fromID, -amount); err != nil {
		return none, none, translate(err, "balance")
	}
	if _, err := r.Balances.UpdateAmount(ctx, toID, amount); err != nil {
		return none, none, translate(err, "balance")
	}

	debit, err := r.Transactions.Create(ctx, models.Transaction{
		UserID:        fromID,
		Amount:        -amount,
		Reason:        reason,
		Type:          models.TxnSpent,
		CorrelationID: correlationID,
	})
	if err != nil {
		return none, none, translate(err, "transaction")
	}
	credit, err := r.Transactions.Create(ctx, models.Transaction{
		UserID:        toID,
		Amount:        amount,
		Reason:        reason,
		Type:          models.TxnEarned,
		CorrelationID: correlationID,
	})
	if err != nil {
		return none, none, translate(err, "transaction")
	}
	return debit, credit, nil
}

func creditTx(ctx context.Context, r repo.Repositories, userID string, amount int64, reason, correlationID string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, apperr.New(apperr.CodeValidation, "amount must be > 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Transaction{}, apperr.New(apperr.CodeValidation, "reason is required")
	}
	if _, err := r.Balances.GetForUpdate(ctx, userID); err != nil {
		return models.Transaction{}, translate(err, "balance")
	}
	if _, err := r.Balances.UpdateAmount(ctx, userID, amount); err != nil {
		return models.Transaction{}, translate(err, "balance")
	}
	txn, err := r.Transactions.Create(ctx, models.Transaction{
		UserID:        userID,
		Amount:        amount,
		Reason:        reason,
		Type:          models.TxnEarned,
		CorrelationID: correlationID,
	})
	return txn, translate(err, "transaction")
}
