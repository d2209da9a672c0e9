//go:build unit || e2e

package memstore

import (
	"context"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/lending"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
)

type memTx struct {
	store *Store
	st    *state
}

func (t *memTx) Lendings() shared.LendingRepository           { return (*lendingRepo)(t) }
func (t *memTx) Inventory() shared.InventoryRepository        { return (*inventoryRepo)(t) }
func (t *memTx) Maintenance() shared.MaintenanceRepository    { return (*maintenanceRepo)(t) }
func (t *memTx) Notifications() shared.NotificationRepository { return (*notificationRepo)(t) }
func (t *memTx) Reads() shared.CommandReads                   { return &reads{st: t.st, store: t.store} }

func (t *memTx) beforeWrite(op string) error {
	if t.store.WriteHook != nil {
		return t.store.WriteHook(op)
	}
	return nil
}

type lendingRepo memTx

func (r *lendingRepo) LockByID(_ context.Context, id uuid.UUID) (*lending.Lending, error) {
	row, ok := r.st.lendings[id]
	if !ok {
		return nil, errs.Mark(errs.New("lending not found"), shared.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *lendingRepo) Update(_ context.Context, l *lending.Lending) error {
	if err := (*memTx)(r).beforeWrite(OpLendingUpdate); err != nil {
		return err
	}
	if r.store.FailWrites != nil {
		return r.store.FailWrites
	}
	row, ok := r.st.lendings[l.ID()]
	if !ok {
		return errs.Mark(errs.New("lending not found"), shared.ErrNotFound)
	}
	row.FineCents = l.Fine().Cents()
	row.OverdueNotified = l.OverdueNotified()
	row.ReminderNotified = l.ReminderNotified()
	r.st.lendings[l.ID()] = row
	return nil
}

type inventoryRepo memTx

func (r *inventoryRepo) LockItems(_ context.Context, ids []uuid.UUID) ([]*inventory.Item, error) {
	out := make([]*inventory.Item, 0, len(ids))
	for _, id := range ids {
		if row, ok := r.st.items[id]; ok {
			out = append(out, row.toDomain())
		}
	}
	return out, nil
}

func (r *inventoryRepo) MarkLowStockNotified(_ context.Context, ids []uuid.UUID) error {
	if err := (*memTx)(r).beforeWrite(OpMarkLowStock); err != nil {
		return err
	}
	if r.store.FailWrites != nil {
		return r.store.FailWrites
	}
	for _, id := range ids {
		row := r.st.items[id]
		row.LowStockNotified = true
		r.st.items[id] = row
	}
	return nil
}

type maintenanceRepo memTx

func (r *maintenanceRepo) LockRecords(_ context.Context, ids []uuid.UUID) ([]*inventory.MaintenanceRecord, error) {
	out := make([]*inventory.MaintenanceRecord, 0, len(ids))
	for _, id := range ids {
		if row, ok := r.st.maintenance[id]; ok {
			out = append(out, row.toDomain())
		}
	}
	return out, nil
}

func (r *maintenanceRepo) MarkReminderSent(_ context.Context, ids []uuid.UUID) error {
	if err := (*memTx)(r).beforeWrite(OpMarkMaintenance); err != nil {
		return err
	}
	if r.store.FailWrites != nil {
		return r.store.FailWrites
	}
	for _, id := range ids {
		row := r.st.maintenance[id]
		row.ReminderSent = true
		r.st.maintenance[id] = row
	}
	return nil
}

type notificationRepo memTx

func (r *notificationRepo) Create(_ context.Context, n shared.InAppNotification) (uuid.UUID, error) {
	if err := (*memTx)(r).beforeWrite(OpCreateNotification); err != nil {
		return uuid.Nil, err
	}
	if r.store.FailWrites != nil {
		return uuid.Nil, r.store.FailWrites
	}
	r.st.notifications = append(r.st.notifications, n)
	return uuid.New(), nil
}
