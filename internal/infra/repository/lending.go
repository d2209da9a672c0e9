package repository

import (
	"context"

	"school-notifier/internal/domain/lending"
	"school-notifier/internal/infra"
	"school-notifier/internal/infra/converter"
	"school-notifier/internal/infra/db"

	"github.com/google/uuid"
)

type LendingWriteQueries interface {
	LockLending(ctx context.Context, db db.DBTX, id uuid.UUID) (db.BookLending, error)
	UpdateLendingNoticeState(ctx context.Context, db db.DBTX, arg db.UpdateLendingNoticeStateParams) (int64, error)
}

type LendingRepository struct {
	queries LendingWriteQueries
	db      db.DBTX
}

func NewLendingRepository(queries LendingWriteQueries, db db.DBTX) *LendingRepository {
	return &LendingRepository{
		queries: queries,
		db:      db,
	}
}

func (r *LendingRepository) LockByID(ctx context.Context, id uuid.UUID) (*lending.Lending, error) {
	row, err := r.queries.LockLending(ctx, r.db, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock lending", err)
	}

	l, err := converter.LendingToDomain(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert lending", err)
	}
	return l, nil
}

func (r *LendingRepository) Update(ctx context.Context, l *lending.Lending) error {
	affected, err := r.queries.UpdateLendingNoticeState(ctx, r.db, converter.LendingToNoticeState(l))
	if err != nil {
		return infra.WrapRepoErr("failed to update lending", err)
	}
	if affected == 0 {
		return infra.WrapRepoErr("lending not found", nil, infra.KindNotFound)
	}
	return nil
}
