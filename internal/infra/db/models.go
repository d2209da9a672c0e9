package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID        uuid.UUID `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

type Book struct {
	ID     uuid.UUID `db:"id"`
	Title  string    `db:"title"`
	Author string    `db:"author"`
}

type BookLending struct {
	ID               uuid.UUID          `db:"id"`
	BookID           uuid.UUID          `db:"book_id"`
	UserID           uuid.UUID          `db:"user_id"`
	CheckoutDate     time.Time          `db:"checkout_date"`
	DueDate          time.Time          `db:"due_date"`
	ReturnDate       pgtype.Timestamptz `db:"return_date"`
	FineAmountCents  int64              `db:"fine_amount_cents"`
	OverdueNotified  bool               `db:"overdue_notified"`
	ReminderNotified bool               `db:"reminder_notified"`
}

type InventoryItem struct {
	ID               uuid.UUID `db:"id"`
	Name             string    `db:"name"`
	Category         string    `db:"category"`
	Quantity         int32     `db:"quantity"`
	Unit             string    `db:"unit"`
	MinimumQuantity  int32     `db:"minimum_quantity"`
	Location         string    `db:"location"`
	Supplier         string    `db:"supplier"`
	LowStockNotified bool      `db:"low_stock_notified"`
}

type MaintenanceRecord struct {
	ID                      uuid.UUID          `db:"id"`
	ItemID                  uuid.UUID          `db:"item_id"`
	MaintenanceType         string             `db:"maintenance_type"`
	NextMaintenanceDate     pgtype.Timestamptz `db:"next_maintenance_date"`
	MaintenanceReminderSent bool               `db:"maintenance_reminder_sent"`
}

type WindowParams struct {
	Now   time.Time
	Until time.Time
}

type UpdateLendingNoticeStateParams struct {
	ID               uuid.UUID
	FineAmountCents  int64
	OverdueNotified  bool
	ReminderNotified bool
}

type CreateNotificationParams struct {
	UserID      uuid.UUID
	Title       string
	Content     string
	Type        string
	ReferenceID pgtype.UUID
	CreatedAt   time.Time
}
