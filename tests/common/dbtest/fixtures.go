//go:build unit || e2e

package dbtest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"school-notifier/internal/infra/db"
	"school-notifier/internal/pkg/errs"
	"school-notifier/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func InsertUser(t *testing.T, conn db.DBTX, b *builder.UserBuilder) uuid.UUID {
	t.Helper()

	_, err := conn.Exec(context.Background(),
		"INSERT INTO users (id, first_name, last_name, email, role) VALUES ($1, $2, $3, $4, $5)",
		b.ID, b.FirstName, b.LastName, b.Email, string(b.Role))
	require.NoError(t, err)
	return b.ID
}

func InsertBook(t *testing.T, conn db.DBTX, title, author string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := conn.Exec(context.Background(),
		"INSERT INTO books (id, title, author) VALUES ($1, $2, $3)", id, title, author)
	require.NoError(t, err)
	return id
}

func InsertLending(t *testing.T, conn db.DBTX, b *builder.LendingBuilder) uuid.UUID {
	t.Helper()

	_, err := conn.Exec(context.Background(), `
		INSERT INTO book_lendings
		    (id, book_id, user_id, checkout_date, due_date, return_date, fine_amount_cents, overdue_notified, reminder_notified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.BookID, b.BorrowerID, b.CheckoutAt, b.DueAt, b.ReturnedAt, b.FineCents, b.OverdueNotified, b.ReminderNotified)
	require.NoError(t, err)
	return b.ID
}

func InsertItem(t *testing.T, conn db.DBTX, b *builder.ItemBuilder) uuid.UUID {
	t.Helper()

	_, err := conn.Exec(context.Background(), `
		INSERT INTO inventory_items
		    (id, name, category, quantity, unit, minimum_quantity, location, supplier, low_stock_notified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.Name, b.Category, b.Quantity, b.Unit, b.MinimumQuantity, b.Location, b.Supplier, b.LowStockNotified)
	require.NoError(t, err)
	return b.ID
}

func InsertMaintenance(t *testing.T, conn db.DBTX, b *builder.MaintenanceBuilder) uuid.UUID {
	t.Helper()

	_, err := conn.Exec(context.Background(), `
		INSERT INTO maintenance_records (id, item_id, maintenance_type, next_maintenance_date, maintenance_reminder_sent)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.ItemID, b.Type, b.NextDueAt, b.ReminderSent)
	require.NoError(t, err)
	return b.ID
}

type LendingState struct {
	FineCents        int64
	OverdueNotified  bool
	ReminderNotified bool
}

func GetLendingState(t *testing.T, conn db.DBTX, id uuid.UUID) LendingState {
	t.Helper()

	var s LendingState
	err := conn.QueryRow(context.Background(),
		"SELECT fine_amount_cents, overdue_notified, reminder_notified FROM book_lendings WHERE id = $1", id).
		Scan(&s.FineCents, &s.OverdueNotified, &s.ReminderNotified)
	require.NoError(t, err)
	return s
}

func IsLowStockNotified(t *testing.T, conn db.DBTX, id uuid.UUID) bool {
	t.Helper()

	var notified bool
	err := conn.QueryRow(context.Background(),
		"SELECT low_stock_notified FROM inventory_items WHERE id = $1", id).Scan(&notified)
	require.NoError(t, err)
	return notified
}

func IsMaintenanceReminderSent(t *testing.T, conn db.DBTX, id uuid.UUID) bool {
	t.Helper()

	var sent bool
	err := conn.QueryRow(context.Background(),
		"SELECT maintenance_reminder_sent FROM maintenance_records WHERE id = $1", id).Scan(&sent)
	require.NoError(t, err)
	return sent
}

func CountNotifications(t *testing.T, conn db.DBTX, userID uuid.UUID, kind string) int {
	t.Helper()

	var n int
	err := conn.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND type = $2", userID, kind).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	truncateMu  sync.Mutex
	truncateSQL string
)

// ResetDB truncates every application table, leaving goose's version table intact.
// The table list is read once per process; migrations do not change during a run.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmt, err := truncateStatement(ctx, pool)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return errs.Wrap(err, "truncate tables")
	}
	return nil
}

func truncateStatement(ctx context.Context, pool *pgxpool.Pool) (string, error) {
	truncateMu.Lock()
	defer truncateMu.Unlock()
	if truncateSQL != "" {
		return truncateSQL, nil
	}

	rows, err := pool.Query(ctx, `
		SELECT 'public.' || quote_ident(tablename)
		FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'goose_db_version'`)
	if err != nil {
		return "", errs.Wrap(err, "list tables")
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return "", errs.Wrap(err, "scan table names")
	}
	if len(tables) == 0 {
		return "", errs.New("no application tables found; were migrations applied?")
	}

	truncateSQL = "TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
	return truncateSQL, nil
}
