package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Queries holds every SQL statement the repositories run. Methods take the
// DBTX explicitly so the same Queries serves pool and transaction callers.
type Queries struct{}

func New() *Queries {
	return &Queries{}
}

const lendingColumns = `id, book_id, user_id, checkout_date, due_date, return_date,
	fine_amount_cents, overdue_notified, reminder_notified`

const listOverdueLendings = `SELECT ` + lendingColumns + `
FROM book_lendings
WHERE return_date IS NULL AND due_date < $1 AND NOT overdue_notified
ORDER BY due_date, id`

func (q *Queries) ListOverdueLendings(ctx context.Context, db DBTX, now time.Time) ([]BookLending, error) {
	return collect[BookLending](db.Query(ctx, listOverdueLendings, now))
}

const listDueSoonLendings = `SELECT ` + lendingColumns + `
FROM book_lendings
WHERE return_date IS NULL AND due_date > $1 AND due_date <= $2 AND NOT reminder_notified
ORDER BY due_date, id`

func (q *Queries) ListDueSoonLendings(ctx context.Context, db DBTX, arg WindowParams) ([]BookLending, error) {
	return collect[BookLending](db.Query(ctx, listDueSoonLendings, arg.Now, arg.Until))
}

const lockLending = `SELECT ` + lendingColumns + `
FROM book_lendings
WHERE id = $1
FOR UPDATE`

func (q *Queries) LockLending(ctx context.Context, db DBTX, id uuid.UUID) (BookLending, error) {
	return collectOne[BookLending](db.Query(ctx, lockLending, id))
}

const updateLendingNoticeState = `UPDATE book_lendings
SET fine_amount_cents = $2, overdue_notified = $3, reminder_notified = $4
WHERE id = $1`

func (q *Queries) UpdateLendingNoticeState(ctx context.Context, db DBTX, arg UpdateLendingNoticeStateParams) (int64, error) {
	tag, err := db.Exec(ctx, updateLendingNoticeState, arg.ID, arg.FineAmountCents, arg.OverdueNotified, arg.ReminderNotified)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const findBookByID = `SELECT id, title, author FROM books WHERE id = $1`

func (q *Queries) FindBookByID(ctx context.Context, db DBTX, id uuid.UUID) (Book, error) {
	return collectOne[Book](db.Query(ctx, findBookByID, id))
}

const userColumns = `id, first_name, last_name, email, role, created_at`

const findUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) FindUserByID(ctx context.Context, db DBTX, id uuid.UUID) (User, error) {
	return collectOne[User](db.Query(ctx, findUserByID, id))
}

const listUsersByRoles = `SELECT ` + userColumns + `
FROM users
WHERE role = ANY($1)
ORDER BY created_at, id`

func (q *Queries) ListUsersByRoles(ctx context.Context, db DBTX, roles []string) ([]User, error) {
	return collect[User](db.Query(ctx, listUsersByRoles, roles))
}

const itemColumns = `id, name, category, quantity, unit, minimum_quantity, location, supplier, low_stock_notified`

const listLowStockItems = `SELECT ` + itemColumns + `
FROM inventory_items
WHERE quantity <= minimum_quantity AND NOT low_stock_notified
ORDER BY name, id`

func (q *Queries) ListLowStockItems(ctx context.Context, db DBTX) ([]InventoryItem, error) {
	return collect[InventoryItem](db.Query(ctx, listLowStockItems))
}

const listItemsByIDs = `SELECT ` + itemColumns + `
FROM inventory_items
WHERE id = ANY($1)
ORDER BY name, id`

func (q *Queries) ListItemsByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) ([]InventoryItem, error) {
	return collect[InventoryItem](db.Query(ctx, listItemsByIDs, ids))
}

// Rows are locked in id order so concurrent batches cannot deadlock.
const lockItemsByIDs = `SELECT ` + itemColumns + `
FROM inventory_items
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`

func (q *Queries) LockItemsByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) ([]InventoryItem, error) {
	return collect[InventoryItem](db.Query(ctx, lockItemsByIDs, ids))
}

const markItemsLowStockNotified = `UPDATE inventory_items SET low_stock_notified = TRUE WHERE id = ANY($1)`

func (q *Queries) MarkItemsLowStockNotified(ctx context.Context, db DBTX, ids []uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, markItemsLowStockNotified, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const maintenanceColumns = `id, item_id, maintenance_type, next_maintenance_date, maintenance_reminder_sent`

const listUpcomingMaintenance = `SELECT ` + maintenanceColumns + `
FROM maintenance_records
WHERE next_maintenance_date > $1 AND next_maintenance_date <= $2 AND NOT maintenance_reminder_sent
ORDER BY next_maintenance_date, id`

func (q *Queries) ListUpcomingMaintenance(ctx context.Context, db DBTX, arg WindowParams) ([]MaintenanceRecord, error) {
	return collect[MaintenanceRecord](db.Query(ctx, listUpcomingMaintenance, arg.Now, arg.Until))
}

const lockMaintenanceByIDs = `SELECT ` + maintenanceColumns + `
FROM maintenance_records
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`

func (q *Queries) LockMaintenanceByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) ([]MaintenanceRecord, error) {
	return collect[MaintenanceRecord](db.Query(ctx, lockMaintenanceByIDs, ids))
}

const markMaintenanceReminderSent = `UPDATE maintenance_records SET maintenance_reminder_sent = TRUE WHERE id = ANY($1)`

func (q *Queries) MarkMaintenanceReminderSent(ctx context.Context, db DBTX, ids []uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, markMaintenanceReminderSent, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const createNotification = `INSERT INTO notifications (user_id, title, content, type, reference_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

func (q *Queries) CreateNotification(ctx context.Context, db DBTX, arg CreateNotificationParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, createNotification,
		arg.UserID, arg.Title, arg.Content, arg.Type, arg.ReferenceID, arg.CreatedAt,
	).Scan(&id)
	return id, err
}

func collect[T any](rows pgx.Rows, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

func collectOne[T any](rows pgx.Rows, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
}
