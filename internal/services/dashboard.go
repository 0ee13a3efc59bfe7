package services

import (
	"context"

	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

const recentTransactions = 10

type Dashboard struct {
	User               models.User               `json:"user"`
	Balance            int64                     `json:"balance"`
	ItemsByStatus      map[models.ItemStatus]int `json:"items_by_status"`
	IncomingPending    []models.SwapRequest      `json:"incoming_pending"`
	OutgoingPending    []models.SwapRequest      `json:"outgoing_pending"`
	RecentTransactions []models.Transaction      `json:"recent_transactions"`
}

type DashboardService struct {
	store repo.Store
}

func NewDashboardService(store repo.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Summary is a read-only view; its parts are read separately and may straddle
// a concurrent write.
func (s *DashboardService) Summary(ctx context.Context, userID string) (Dashboard, error) {
	r := s.store.Repos()
	u, err := r.Users.GetByID(ctx, userID)
	if err != nil {
		return Dashboard{}, translate(err, "user")
	}
	bal, err := r.Balances.GetOrCreate(ctx, userID)
	if err != nil {
		return Dashboard{}, translate(err, "balance")
	}
	items, err := r.Items.List(ctx, models.ItemFilter{OwnerID: userID})
	if err != nil {
		return Dashboard{}, translate(err, "items")
	}
	byStatus := map[models.ItemStatus]int{}
	for _, it := range items {
		byStatus[it.Status]++
	}
	incoming, err := r.Swaps.ListByUser(ctx, userID, models.SwapRoleIncoming, models.SwapPending, maxLimit, 0)
	if err != nil {
		return Dashboard{}, translate(err, "swap requests")
	}
	outgoing, err := r.Swaps.ListByUser(ctx, userID, models.SwapRoleOutgoing, models.SwapPending, maxLimit, 0)
	if err != nil {
		return Dashboard{}, translate(err, "swap requests")
	}
	txns, err := r.Transactions.ListByUser(ctx, userID, recentTransactions, 0)
	if err != nil {
		return Dashboard{}, translate(err, "transactions")
	}
	return Dashboard{
		User:               u,
		Balance:            bal.Amount,
		ItemsByStatus:      byStatus,
		IncomingPending:    incoming,
		OutgoingPending:    outgoing,
		RecentTransactions: txns,
	}, nil
}
