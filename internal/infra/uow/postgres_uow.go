package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/infra/db"
	"school-notifier/internal/infra/readstore"
	"school-notifier/internal/infra/repository"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
	q    *db.Queries
}

func NewPostgresUoW(pool *pgxpool.Pool, q *db.Queries) shared.UnitOfWork {
	return &PostgresUoW{
		pool: pool,
		q:    q,
	}
}

// ReadCommitted plus explicit row locks: candidates are re-read FOR UPDATE
// inside the transaction, so concurrent runs serialize per record.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{uow: u, dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{
			dbtx: pgxTx,
			uow:  u,
		}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errs.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errs.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX
	uow  *PostgresUoW

	// Lazy-initialized repositories
	lendingRepo      shared.LendingRepository
	inventoryRepo    shared.InventoryRepository
	maintenanceRepo  shared.MaintenanceRepository
	notificationRepo shared.NotificationRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) Lendings() shared.LendingRepository {
	if t.lendingRepo == nil {
		t.lendingRepo = repository.NewLendingRepository(t.uow.q, t.dbtx)
	}
	return t.lendingRepo
}

func (t *pgTx) Inventory() shared.InventoryRepository {
	if t.inventoryRepo == nil {
		t.inventoryRepo = repository.NewInventoryRepository(t.uow.q, t.dbtx)
	}
	return t.inventoryRepo
}

func (t *pgTx) Maintenance() shared.MaintenanceRepository {
	if t.maintenanceRepo == nil {
		t.maintenanceRepo = repository.NewMaintenanceRepository(t.uow.q, t.dbtx)
	}
	return t.maintenanceRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.uow.q, t.dbtx)
	}
	return t.notificationRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{
			uow:  t.uow,
			dbtx: t.dbtx,
		}
	}
	return t.commandReads
}

type commandReads struct {
	uow  *PostgresUoW
	dbtx db.DBTX

	// Lazy-initialized readstores
	lendingStore   *readstore.LendingReadStore
	userStore      *readstore.UserReadStore
	inventoryStore *readstore.InventoryReadStore
}

func (r *commandReads) lendings() *readstore.LendingReadStore {
	if r.lendingStore == nil {
		r.lendingStore = readstore.NewLendingReadStore(r.uow.q, r.dbtx)
	}
	return r.lendingStore
}

func (r *commandReads) users() *readstore.UserReadStore {
	if r.userStore == nil {
		r.userStore = readstore.NewUserReadStore(r.uow.q, r.dbtx)
	}
	return r.userStore
}

func (r *commandReads) inventory() *readstore.InventoryReadStore {
	if r.inventoryStore == nil {
		r.inventoryStore = readstore.NewInventoryReadStore(r.uow.q, r.dbtx)
	}
	return r.inventoryStore
}

func (r *commandReads) OverdueLendings(ctx context.Context, now time.Time) ([]*lending.Lending, error) {
	return r.lendings().Overdue(ctx, now)
}

func (r *commandReads) DueSoonLendings(ctx context.Context, now time.Time, window time.Duration) ([]*lending.Lending, error) {
	return r.lendings().DueSoon(ctx, now, window)
}

func (r *commandReads) LowStockItems(ctx context.Context) ([]*inventory.Item, error) {
	return r.inventory().LowStock(ctx)
}

func (r *commandReads) UpcomingMaintenance(ctx context.Context, now time.Time, window time.Duration) ([]*inventory.MaintenanceRecord, error) {
	return r.inventory().UpcomingMaintenance(ctx, now, window)
}

func (r *commandReads) UsersWithRoles(ctx context.Context, roles []user.Role) ([]*user.User, error) {
	return r.users().WithRoles(ctx, roles)
}

func (r *commandReads) UserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.users().FindByID(ctx, id)
}

func (r *commandReads) BookByID(ctx context.Context, id uuid.UUID) (*lending.Book, error) {
	return r.lendings().BookByID(ctx, id)
}

func (r *commandReads) ItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]*inventory.Item, error) {
	return r.inventory().ByIDs(ctx, ids)
}
