package shared

import (
	"context"
	"time"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/user"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for candidate selection outside transactions
	CommandReads() CommandReads
}

// Tx exposes repositories bound to one transaction.
type Tx interface {
	Lendings() LendingRepository
	Inventory() InventoryRepository
	Maintenance() MaintenanceRepository
	Notifications() NotificationRepository
	Reads() CommandReads
}

type CommandReads interface {
	// OverdueLendings: due_at < now, not returned, overdue flag unset
	OverdueLendings(ctx context.Context, now time.Time) ([]*lending.Lending, error)
	// DueSoonLendings: now < due_at <= now+window, not returned, reminder flag unset
	DueSoonLendings(ctx context.Context, now time.Time, window time.Duration) ([]*lending.Lending, error)
	// LowStockItems: quantity <= minimum_quantity, low-stock flag unset
	LowStockItems(ctx context.Context) ([]*inventory.Item, error)
	// UpcomingMaintenance: now < next_due_at <= now+window, reminder flag unset
	UpcomingMaintenance(ctx context.Context, now time.Time, window time.Duration) ([]*inventory.MaintenanceRecord, error)

	UsersWithRoles(ctx context.Context, roles []user.Role) ([]*user.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	BookByID(ctx context.Context, id uuid.UUID) (*lending.Book, error)
	ItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]*inventory.Item, error)
}

type LendingRepository interface {
	// LockByID reads the lending with a row lock held until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*lending.Lending, error)
	// Update persists fine and notification flags.
	Update(ctx context.Context, l *lending.Lending) error
}

type InventoryRepository interface {
	LockItems(ctx context.Context, ids []uuid.UUID) ([]*inventory.Item, error)
	MarkLowStockNotified(ctx context.Context, ids []uuid.UUID) error
}

type MaintenanceRepository interface {
	LockRecords(ctx context.Context, ids []uuid.UUID) ([]*inventory.MaintenanceRecord, error)
	MarkReminderSent(ctx context.Context, ids []uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n InAppNotification) (uuid.UUID, error)
}
