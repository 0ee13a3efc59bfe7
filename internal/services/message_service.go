package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

const maxMessageBody = 2000

type MessageService struct {
	store repo.Store
	log   *slog.Logger
}

func NewMessageService(store repo.Store, log *slog.Logger) *MessageService {
	if log == nil {
		log = slog.Default()
	}
	return &MessageService{store: store, log: log}
}

// Send delivers body from senderID to recipientID. A referenced swap request
// must be between exactly these two users.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, body string, swapID *string) (models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > maxMessageBody {
		return models.Message{}, apperr.Newf(apperr.CodeValidation, "body must be 1..%d characters", maxMessageBody)
	}
	if senderID == recipientID {
		return models.Message{}, apperr.New(apperr.CodeValidation, "cannot message yourself")
	}

	r := s.store.Repos()
	recipient, err := r.Users.GetByID(ctx, recipientID)
	if err != nil {
		return models.Message{}, translate(err, "recipient")
	}
	if recipient.Blocked {
		return models.Message{}, apperr.New(apperr.CodeForbidden, "recipient is blocked")
	}
	if swapID != nil && *swapID != "" {
		req, err := r.Swaps.GetByID(ctx, *swapID)
		if err != nil {
			return models.Message{}, translate(err, "swap request")
		}
		parties := map[string]bool{req.RequesterID: true, req.ReceiverID: true}
		if !parties[senderID] || !parties[recipientID] {
			return models.Message{}, apperr.New(apperr.CodeForbidden, "swap request does not involve both users")
		}
	} else {
		swapID = nil
	}

	m, err := r.Messages.Create(ctx, models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		SwapID:      swapID,
		Body:        body,
	})
	if err != nil {
		return models.Message{}, translate(err, "message")
	}
	s.log.Debug("message sent", "message_id", m.ID, "sender_id", senderID, "recipient_id", recipientID)
	return m, nil
}

// ListForUser returns messages sent or received by userID, newest first.
func (s *MessageService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Message, error) {
	limit, offset = clampPage(limit, offset)
	out, err := s.store.Repos().Messages.ListForUser(ctx, userID, limit, offset)
	return out, translate(err, "messages")
}
