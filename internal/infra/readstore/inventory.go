package readstore

import (
	"context"
	"time"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/infra"
	"school-notifier/internal/infra/converter"
	"school-notifier/internal/infra/db"

	"github.com/google/uuid"
)

type InventoryReadQueries interface {
	ListLowStockItems(ctx context.Context, db db.DBTX) ([]db.InventoryItem, error)
	ListItemsByIDs(ctx context.Context, db db.DBTX, ids []uuid.UUID) ([]db.InventoryItem, error)
	ListUpcomingMaintenance(ctx context.Context, db db.DBTX, arg db.WindowParams) ([]db.MaintenanceRecord, error)
}

type InventoryReadStore struct {
	queries InventoryReadQueries
	db      db.DBTX
}

func NewInventoryReadStore(queries InventoryReadQueries, db db.DBTX) *InventoryReadStore {
	return &InventoryReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *InventoryReadStore) LowStock(ctx context.Context) ([]*inventory.Item, error) {
	rows, err := r.queries.ListLowStockItems(ctx, r.db)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list low stock items", err)
	}
	return converter.ItemsToDomain(rows), nil
}

func (r *InventoryReadStore) ByIDs(ctx context.Context, ids []uuid.UUID) ([]*inventory.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.queries.ListItemsByIDs(ctx, r.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list items by ID", err)
	}
	return converter.ItemsToDomain(rows), nil
}

func (r *InventoryReadStore) UpcomingMaintenance(ctx context.Context, now time.Time, window time.Duration) ([]*inventory.MaintenanceRecord, error) {
	rows, err := r.queries.ListUpcomingMaintenance(ctx, r.db, db.WindowParams{Now: now, Until: now.Add(window)})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list upcoming maintenance", err)
	}
	return converter.MaintenanceListToDomain(rows), nil
}
