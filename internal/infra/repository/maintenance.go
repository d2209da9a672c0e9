package repository

import (
	"context"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/infra"
	"school-notifier/internal/infra/converter"
	"school-notifier/internal/infra/db"

	"github.com/google/uuid"
)

type MaintenanceWriteQueries interface {
	LockMaintenanceByIDs(ctx context.Context, db db.DBTX, ids []uuid.UUID) ([]db.MaintenanceRecord, error)
	MarkMaintenanceReminderSent(ctx context.Context, db db.DBTX, ids []uuid.UUID) (int64, error)
}

type MaintenanceRepository struct {
	queries MaintenanceWriteQueries
	db      db.DBTX
}

func NewMaintenanceRepository(queries MaintenanceWriteQueries, db db.DBTX) *MaintenanceRepository {
	return &MaintenanceRepository{
		queries: queries,
		db:      db,
	}
}

func (r *MaintenanceRepository) LockRecords(ctx context.Context, ids []uuid.UUID) ([]*inventory.MaintenanceRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.queries.LockMaintenanceByIDs(ctx, r.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock maintenance records", err)
	}
	return converter.MaintenanceListToDomain(rows), nil
}

func (r *MaintenanceRepository) MarkReminderSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	affected, err := r.queries.MarkMaintenanceReminderSent(ctx, r.db, ids)
	if err != nil {
		return infra.WrapRepoErr("failed to flag maintenance reminders", err)
	}
	if affected != int64(len(ids)) {
		return infra.WrapRepoErr("maintenance record disappeared while flagging", nil, infra.KindNotFound)
	}
	return nil
}
