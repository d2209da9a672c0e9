package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAlreadyNotified = errors.New("already notified")

type Item struct {
	id               uuid.UUID
	name             string
	category         string
	quantity         int
	unit             string
	minimumQuantity  int
	location         string
	supplier         string
	lowStockNotified bool
}

func ReconstructItem(
	id uuid.UUID,
	name, category string,
	quantity int,
	unit string,
	minimumQuantity int,
	location, supplier string,
	lowStockNotified bool,
) *Item {
	return &Item{
		id:               id,
		name:             name,
		category:         category,
		quantity:         quantity,
		unit:             unit,
		minimumQuantity:  minimumQuantity,
		location:         location,
		supplier:         supplier,
		lowStockNotified: lowStockNotified,
	}
}

func (i *Item) ID() uuid.UUID          { return i.id }
func (i *Item) Name() string           { return i.name }
func (i *Item) Category() string       { return i.category }
func (i *Item) Quantity() int          { return i.quantity }
func (i *Item) Unit() string           { return i.unit }
func (i *Item) MinimumQuantity() int   { return i.minimumQuantity }
func (i *Item) Location() string       { return i.location }
func (i *Item) Supplier() string       { return i.supplier }
func (i *Item) LowStockNotified() bool { return i.lowStockNotified }

// IsLowStock uses an inclusive threshold: quantity == minimum counts as low.
func (i *Item) IsLowStock() bool {
	return i.quantity <= i.minimumQuantity
}

func (i *Item) NeedsLowStockAlert() bool {
	return i.IsLowStock() && !i.lowStockNotified
}

// The flag is cleared only by a restock, which happens outside the notifier.
func (i *Item) MarkLowStockNotified() error {
	if i.lowStockNotified {
		return ErrAlreadyNotified
	}
	i.lowStockNotified = true
	return nil
}

type MaintenanceRecord struct {
	id              uuid.UUID
	itemID          uuid.UUID
	maintenanceType string
	nextDueAt       *time.Time
	reminderSent    bool
}

func ReconstructMaintenanceRecord(id, itemID uuid.UUID, maintenanceType string, nextDueAt *time.Time, reminderSent bool) *MaintenanceRecord {
	return &MaintenanceRecord{
		id:              id,
		itemID:          itemID,
		maintenanceType: maintenanceType,
		nextDueAt:       nextDueAt,
		reminderSent:    reminderSent,
	}
}

func (m *MaintenanceRecord) ID() uuid.UUID         { return m.id }
func (m *MaintenanceRecord) ItemID() uuid.UUID     { return m.itemID }
func (m *MaintenanceRecord) Type() string          { return m.maintenanceType }
func (m *MaintenanceRecord) NextDueAt() *time.Time { return m.nextDueAt }
func (m *MaintenanceRecord) ReminderSent() bool    { return m.reminderSent }

// IsUpcoming reports now < next due <= now+window. Records without a next due date never match.
func (m *MaintenanceRecord) IsUpcoming(now time.Time, window time.Duration) bool {
	if m.nextDueAt == nil {
		return false
	}
	return m.nextDueAt.After(now) && !m.nextDueAt.After(now.Add(window))
}

func (m *MaintenanceRecord) NeedsReminder(now time.Time, window time.Duration) bool {
	return m.IsUpcoming(now, window) && !m.reminderSent
}

func (m *MaintenanceRecord) MarkReminderSent() error {
	if m.reminderSent {
		return ErrAlreadyNotified
	}
	m.reminderSent = true
	return nil
}
