package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/baharkarakas/rewear-backend/internal/models"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
)

type usersRepo struct{ a access }

func (r *usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	err := r.a.write(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return repo.ErrDuplicate
			}
		}
		if u.ID == "" {
			u.ID = r.a.newID()
		}
		u.CreatedAt = r.a.stamp()
		u.UpdatedAt = u.CreatedAt
		st.users[u.ID] = u
		return nil
	})
	return u, err
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	var u models.User
	err := r.a.read(func(st *state) error {
		found, ok := st.users[id]
		if !ok {
			return repo.ErrNotFound
		}
		u = found
		return nil
	})
	return u, err
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	var u models.User
	err := r.a.read(func(st *state) error {
		for _, candidate := range st.users {
			if strings.EqualFold(candidate.Email, email) {
				u = candidate
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return u, err
}

func (r *usersRepo) List(_ context.Context, limit, offset int) ([]models.User, error) {
	var out []models.User
	err := r.a.read(func(st *state) error {
		all := make([]models.User, 0, len(st.users))
		for _, u := range st.users {
			all = append(all, u)
		}
		slices.SortFunc(all, func(a, b models.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *usersRepo) SetBlocked(_ context.Context, id string, blocked bool) (models.User, error) {
	var u models.User
	err := r.a.write(func(st *state) error {
		found, ok := st.users[id]
		if !ok {
			return repo.ErrNotFound
		}
		found.Blocked = blocked
		found.UpdatedAt = r.a.stamp()
		st.users[id] = found
		u = found
		return nil
	})
	return u, err
}

type itemsRepo struct{ a access }

func (r *itemsRepo) Create(_ context.Context, it models.Item) (models.Item, error) {
	err := r.a.write(func(st *state) error {
		if it.ID == "" {
			it.ID = r.a.newID()
		}
		it.Version = 1
		it.CreatedAt = r.a.stamp()
		it.UpdatedAt = it.CreatedAt
		st.items[it.ID] = it
		return nil
	})
	return it, err
}

func (r *itemsRepo) GetByID(_ context.Context, id string) (models.Item, error) {
	var it models.Item
	err := r.a.read(func(st *state) error {
		found, ok := st.items[id]
		if !ok {
			return repo.ErrNotFound
		}
		it = found
		return nil
	})
	return it, err
}

// GetForUpdate needs no row lock: a transaction already owns the whole store.
func (r *itemsRepo) GetForUpdate(ctx context.Context, id string) (models.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *itemsRepo) List(_ context.Context, f models.ItemFilter) ([]models.Item, error) {
	var out []models.Item
	err := r.a.read(func(st *state) error {
		all := []models.Item{}
		for _, it := range st.items {
			if f.OwnerID != "" && it.OwnerID != f.OwnerID {
				continue
			}
			if f.Status != "" && it.Status != f.Status {
				continue
			}
			if f.Category != "" && !strings.EqualFold(it.Category, f.Category) {
				continue
			}
			all = append(all, it)
		}
		slices.SortFunc(all, func(a, b models.Item) int { return b.CreatedAt.Compare(a.CreatedAt) })
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *itemsRepo) Update(_ context.Context, it models.Item) (models.Item, error) {
	err := r.a.write(func(st *state) error {
		stored, ok := st.items[it.ID]
		if !ok {
			return repo.ErrNotFound
		}
		if stored.Version != it.Version {
			return repo.ErrConflict
		}
		it.OwnerID = stored.OwnerID
		it.CreatedAt = stored.CreatedAt
		it.Version = stored.Version + 1
		it.UpdatedAt = r.a.stamp()
		st.items[it.ID] = it
		return nil
	})
	return it, err
}

type swapsRepo struct{ a access }

func (r *swapsRepo) Create(_ context.Context, s models.SwapRequest) (models.SwapRequest, error) {
	err := r.a.write(func(st *state) error {
		if s.ID == "" {
			s.ID = r.a.newID()
		}
		s.CreatedAt = r.a.stamp()
		s.UpdatedAt = s.CreatedAt
		st.swaps[s.ID] = s
		return nil
	})
	return s, err
}

func (r *swapsRepo) GetByID(_ context.Context, id string) (models.SwapRequest, error) {
	var s models.SwapRequest
	err := r.a.read(func(st *state) error {
		found, ok := st.swaps[id]
		if !ok {
			return repo.ErrNotFound
		}
		s = found
		return nil
	})
	return s, err
}

func (r *swapsRepo) GetForUpdate(ctx context.Context, id string) (models.SwapRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *swapsRepo) filter(match func(models.SwapRequest) bool, newestFirst bool) func(st *state) []models.SwapRequest {
	return func(st *state) []models.SwapRequest {
		out := []models.SwapRequest{}
		for _, s := range st.swaps {
			if match(s) {
				out = append(out, s)
			}
		}
		slices.SortFunc(out, func(a, b models.SwapRequest) int {
			if newestFirst {
				return b.CreatedAt.Compare(a.CreatedAt)
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		return out
	}
}

func (r *swapsRepo) ListByItem(_ context.Context, itemID string, status models.SwapStatus) ([]models.SwapRequest, error) {
	var out []models.SwapRequest
	err := r.a.read(func(st *state) error {
		out = r.filter(func(s models.SwapRequest) bool {
			return s.ItemID == itemID && (status == "" || s.Status == status)
		}, false)(st)
		return nil
	})
	return out, err
}

func (r *swapsRepo) ListByUser(_ context.Context, userID string, role models.SwapRole, status models.SwapStatus, limit, offset int) ([]models.SwapRequest, error) {
	var out []models.SwapRequest
	err := r.a.read(func(st *state) error {
		all := r.filter(func(s models.SwapRequest) bool {
			if status != "" && s.Status != status {
				return false
			}
			switch role {
			case models.SwapRoleIncoming:
				return s.ReceiverID == userID
			case models.SwapRoleOutgoing:
				return s.RequesterID == userID
			default:
				return s.ReceiverID == userID || s.RequesterID == userID
			}
		}, true)(st)
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *swapsRepo) HasPending(_ context.Context, itemID, requesterID string) (bool, error) {
	var found bool
	err := r.a.read(func(st *state) error {
		for _, s := range st.swaps {
			if s.ItemID == itemID && s.RequesterID == requesterID && s.Status == models.SwapPending {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *swapsRepo) UpdateStatus(_ context.Context, id string, from, to models.SwapStatus) (models.SwapRequest, error) {
	var s models.SwapRequest
	err := r.a.write(func(st *state) error {
		stored, ok := st.swaps[id]
		if !ok {
			return repo.ErrNotFound
		}
		if stored.Status != from {
			return repo.ErrConflict
		}
		stored.Status = to
		stored.UpdatedAt = r.a.stamp()
		st.swaps[id] = stored
		s = stored
		return nil
	})
	return s, err
}

type balancesRepo struct{ a access }

func (r *balancesRepo) GetOrCreate(_ context.Context, userID string) (models.Balance, error) {
	var b models.Balance
	err := r.a.write(func(st *state) error {
		found, ok := st.balances[userID]
		if !ok {
			found = models.Balance{UserID: userID, LastUpdatedAt: r.a.stamp()}
			st.balances[userID] = found
		}
		b = found
		return nil
	})
	return b, err
}

func (r *balancesRepo) GetForUpdate(ctx context.Context, userID string) (models.Balance, error) {
	return r.GetOrCreate(ctx, userID)
}

func (r *balancesRepo) UpdateAmount(_ context.Context, userID string, delta int64) (models.Balance, error) {
	var b models.Balance
	err := r.a.write(func(st *state) error {
		found, ok := st.balances[userID]
		if !ok {
			return repo.ErrNotFound
		}
		if found.Amount+delta < 0 {
			// mirrors the balances_amount_check constraint
			return repo.ErrConflict
		}
		found.Amount += delta
		found.LastUpdatedAt = r.a.stamp()
		st.balances[userID] = found
		b = found
		return nil
	})
	return b, err
}

type transactionsRepo struct{ a access }

func (r *transactionsRepo) Create(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	err := r.a.write(func(st *state) error {
		if tx.ID == "" {
			tx.ID = r.a.newID()
		}
		tx.CreatedAt = r.a.stamp()
		st.txns = append(st.txns, tx)
		return nil
	})
	return tx, err
}

func (r *transactionsRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.a.read(func(st *state) error {
		all := []models.Transaction{}
		for i := len(st.txns) - 1; i >= 0; i-- {
			if st.txns[i].UserID == userID {
				all = append(all, st.txns[i])
			}
		}
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *transactionsRepo) ListByCorrelation(_ context.Context, correlationID string) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.a.read(func(st *state) error {
		out = []models.Transaction{}
		for _, tx := range st.txns {
			if tx.CorrelationID == correlationID {
				out = append(out, tx)
			}
		}
		slices.SortFunc(out, func(a, b models.Transaction) int { return cmp.Compare(a.Amount, b.Amount) })
		return nil
	})
	return out, err
}

type auditLogsRepo struct{ a access }

func (r *auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	return r.a.write(func(st *state) error {
		if l.ID == "" {
			l.ID = r.a.newID()
		}
		l.CreatedAt = r.a.stamp()
		st.audit = append(st.audit, l)
		return nil
	})
}

func (r *auditLogsRepo) ListByEntity(_ context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	var out []models.AuditLog
	err := r.a.read(func(st *state) error {
		out = []models.AuditLog{}
		for _, l := range st.audit {
			if l.EntityType == entityType && l.EntityID != nil && *l.EntityID == entityID {
				out = append(out, l)
			}
		}
		return nil
	})
	return out, err
}

type messagesRepo struct{ a access }

func (r *messagesRepo) Create(_ context.Context, m models.Message) (models.Message, error) {
	err := r.a.write(func(st *state) error {
		if m.ID == "" {
			m.ID = r.a.newID()
		}
		m.CreatedAt = r.a.stamp()
		st.messages = append(st.messages, m)
		return nil
	})
	return m, err
}

func (r *messagesRepo) ListForUser(_ context.Context, userID string, limit, offset int) ([]models.Message, error) {
	var out []models.Message
	err := r.a.read(func(st *state) error {
		all := []models.Message{}
		for i := len(st.messages) - 1; i >= 0; i-- {
			m := st.messages[i]
			if m.SenderID == userID || m.RecipientID == userID {
				all = append(all, m)
			}
		}
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}
