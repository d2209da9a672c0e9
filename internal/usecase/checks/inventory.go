package checks

import (
	"context"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/notice"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
)

// CheckLowStock sends one alert listing every unflagged item at or below its
// minimum quantity to the admins.
func (s *Service) CheckLowStock(ctx context.Context) (Result, error) {
	res := s.begin(notice.KindLowStock, s.clock.Now())

	err := scanBatch(ctx, s, &res, batchScan[*inventory.Item]{
		kind:  notice.KindLowStock,
		roles: user.StockAlertRoles,
		candidates: func(ctx context.Context, reads shared.CommandReads) ([]*inventory.Item, error) {
			return reads.LowStockItems(ctx)
		},
		id: (*inventory.Item).ID,
		lock: func(ctx context.Context, tx shared.Tx, ids []uuid.UUID) ([]*inventory.Item, error) {
			return tx.Inventory().LockItems(ctx, ids)
		},
		eligible: (*inventory.Item).NeedsLowStockAlert,
		compose: func(_ context.Context, _ shared.Tx, to []string, items []*inventory.Item) (notice.Message, error) {
			return s.composer.LowStockAlert(to, items)
		},
		mark: func(ctx context.Context, tx shared.Tx, items []*inventory.Item) error {
			ids := make([]uuid.UUID, 0, len(items))
			for _, it := range items {
				if err := it.MarkLowStockNotified(); err != nil {
					return err
				}
				ids = append(ids, it.ID())
			}
			return tx.Inventory().MarkLowStockNotified(ctx, ids)
		},
	})
	return s.finish(res, err)
}

// CheckUpcomingMaintenance sends one reminder listing maintenance due within
// the window to admins and maintenance staff.
func (s *Service) CheckUpcomingMaintenance(ctx context.Context) (Result, error) {
	now := s.clock.Now()
	res := s.begin(notice.KindUpcomingMaintenance, now)
	window := s.opts.MaintenanceWindow

	err := scanBatch(ctx, s, &res, batchScan[*inventory.MaintenanceRecord]{
		kind:  notice.KindUpcomingMaintenance,
		roles: user.MaintenanceRoles,
		candidates: func(ctx context.Context, reads shared.CommandReads) ([]*inventory.MaintenanceRecord, error) {
			return reads.UpcomingMaintenance(ctx, now, window)
		},
		id: (*inventory.MaintenanceRecord).ID,
		lock: func(ctx context.Context, tx shared.Tx, ids []uuid.UUID) ([]*inventory.MaintenanceRecord, error) {
			return tx.Maintenance().LockRecords(ctx, ids)
		},
		eligible: func(m *inventory.MaintenanceRecord) bool {
			return m.NeedsReminder(now, window)
		},
		compose: s.composeMaintenance,
		mark: func(ctx context.Context, tx shared.Tx, recs []*inventory.MaintenanceRecord) error {
			ids := make([]uuid.UUID, 0, len(recs))
			for _, m := range recs {
				if err := m.MarkReminderSent(); err != nil {
					return err
				}
				ids = append(ids, m.ID())
			}
			return tx.Maintenance().MarkReminderSent(ctx, ids)
		},
	})
	return s.finish(res, err)
}

func (s *Service) composeMaintenance(ctx context.Context, tx shared.Tx, to []string, recs []*inventory.MaintenanceRecord) (notice.Message, error) {
	itemIDs := make([]uuid.UUID, 0, len(recs))
	for _, m := range recs {
		itemIDs = append(itemIDs, m.ItemID())
	}
	items, err := tx.Reads().ItemsByIDs(ctx, itemIDs)
	if err != nil {
		return notice.Message{}, err
	}
	byID := make(map[uuid.UUID]*inventory.Item, len(items))
	for _, it := range items {
		byID[it.ID()] = it
	}

	entries := make([]notice.MaintenanceEntry, 0, len(recs))
	for _, m := range recs {
		entries = append(entries, notice.MaintenanceEntry{Record: m, Item: byID[m.ItemID()]})
	}
	return s.composer.MaintenanceReminder(to, entries)
}
