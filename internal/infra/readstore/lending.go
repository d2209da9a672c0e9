package readstore

import (
	"context"
	"time"

	"school-notifier/internal/domain/lending"
	"school-notifier/internal/infra"
	"school-notifier/internal/infra/converter"
	"school-notifier/internal/infra/db"

	"github.com/google/uuid"
)

type LendingReadQueries interface {
	ListOverdueLendings(ctx context.Context, db db.DBTX, now time.Time) ([]db.BookLending, error)
	ListDueSoonLendings(ctx context.Context, db db.DBTX, arg db.WindowParams) ([]db.BookLending, error)
	FindBookByID(ctx context.Context, db db.DBTX, id uuid.UUID) (db.Book, error)
}

type LendingReadStore struct {
	queries LendingReadQueries
	db      db.DBTX
}

func NewLendingReadStore(queries LendingReadQueries, db db.DBTX) *LendingReadStore {
	return &LendingReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *LendingReadStore) Overdue(ctx context.Context, now time.Time) ([]*lending.Lending, error) {
	rows, err := r.queries.ListOverdueLendings(ctx, r.db, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list overdue lendings", err)
	}
	return r.toDomain(rows)
}

func (r *LendingReadStore) DueSoon(ctx context.Context, now time.Time, window time.Duration) ([]*lending.Lending, error) {
	rows, err := r.queries.ListDueSoonLendings(ctx, r.db, db.WindowParams{Now: now, Until: now.Add(window)})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list due soon lendings", err)
	}
	return r.toDomain(rows)
}

func (r *LendingReadStore) BookByID(ctx context.Context, id uuid.UUID) (*lending.Book, error) {
	row, err := r.queries.FindBookByID(ctx, r.db, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find book", err)
	}
	return converter.BookToDomain(row), nil
}

func (r *LendingReadStore) toDomain(rows []db.BookLending) ([]*lending.Lending, error) {
	out, err := converter.LendingsToDomain(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert lendings", err)
	}
	return out, nil
}
