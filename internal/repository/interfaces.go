package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/rewear-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("concurrent update conflict")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (models.User, error)
}

type Items interface {
	Create(ctx context.Context, it models.Item) (models.Item, error)
	GetByID(ctx context.Context, id string) (models.Item, error)
	// GetForUpdate locks the item until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (models.Item, error)
	List(ctx context.Context, f models.ItemFilter) ([]models.Item, error)
	// Update stores it only if the stored version still equals it.Version and
	// returns the row with the bumped version. A stale version is ErrConflict.
	Update(ctx context.Context, it models.Item) (models.Item, error)
}

type Swaps interface {
	Create(ctx context.Context, s models.SwapRequest) (models.SwapRequest, error)
	GetByID(ctx context.Context, id string) (models.SwapRequest, error)
	GetForUpdate(ctx context.Context, id string) (models.SwapRequest, error)
	// ListByItem returns the item's requests, oldest first. An empty status
	// matches every status.
	ListByItem(ctx context.Context, itemID string, status models.SwapStatus) ([]models.SwapRequest, error)
	ListByUser(ctx context.Context, userID string, role models.SwapRole, status models.SwapStatus, limit, offset int) ([]models.SwapRequest, error)
	HasPending(ctx context.Context, itemID, requesterID string) (bool, error)
	// UpdateStatus moves the request from -> to. ErrConflict when the stored
	// status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.SwapStatus) (models.SwapRequest, error)
}

type Balances interface {
	GetOrCreate(ctx context.Context, userID string) (models.Balance, error)
	// GetForUpdate creates the balance row when missing and locks it.
	GetForUpdate(ctx context.Context, userID string) (models.Balance, error)
	UpdateAmount(ctx context.Context, userID string, delta int64) (models.Balance, error)
}

type Transactions interface {
	Create(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
	ListByCorrelation(ctx context.Context, correlationID string) ([]models.Transaction, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error)
}

type Messages interface {
	Create(ctx context.Context, m models.Message) (models.Message, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Message, error)
}

type Repositories struct {
	Users        Users
	Items        Items
	Swaps        Swaps
	Balances     Balances
	Transactions Transactions
	AuditLogs    AuditLogs
	Messages     Messages
}

// TxFunc runs against repositories bound to one transaction.
type TxFunc func(ctx context.Context, r Repositories) error

// Store is the storage collaborator of the ledger. WithTx commits every write
// made by fn or none of them; fn must only use the repositories it is given.
type Store interface {
	Repos() Repositories
	WithTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close() error
}
