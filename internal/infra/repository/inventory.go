package repository

import (
	"context"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/infra"
	"school-notifier/internal/infra/converter"
	"school-notifier/internal/infra/db"

	"github.com/google/uuid"
)

type InventoryWriteQueries interface {
	LockItemsByIDs(ctx context.Context, db db.DBTX, ids []uuid.UUID) ([]db.InventoryItem, error)
	MarkItemsLowStockNotified(ctx context.Context, db db.DBTX, ids []uuid.UUID) (int64, error)
}

type InventoryRepository struct {
	queries InventoryWriteQueries
	db      db.DBTX
}

func NewInventoryRepository(queries InventoryWriteQueries, db db.DBTX) *InventoryRepository {
	return &InventoryRepository{
		queries: queries,
		db:      db,
	}
}

func (r *InventoryRepository) LockItems(ctx context.Context, ids []uuid.UUID) ([]*inventory.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.queries.LockItemsByIDs(ctx, r.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock inventory items", err)
	}
	return converter.ItemsToDomain(rows), nil
}

func (r *InventoryRepository) MarkLowStockNotified(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	affected, err := r.queries.MarkItemsLowStockNotified(ctx, r.db, ids)
	if err != nil {
		return infra.WrapRepoErr("failed to flag low stock items", err)
	}
	if affected != int64(len(ids)) {
		return infra.WrapRepoErr("inventory item disappeared while flagging", nil, infra.KindNotFound)
	}
	return nil
}
