//go:build unit || e2e

package builder

import (
	"time"

	"school-notifier/internal/domain/user"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Role      user.Role
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:        uuid.New(),
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Role:      user.RoleStudent,
	}
}

func (b *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(b)
	return b
}

type LendingBuilder struct {
	ID               uuid.UUID
	BookID           uuid.UUID
	BorrowerID       uuid.UUID
	CheckoutAt       time.Time
	DueAt            time.Time
	ReturnedAt       *time.Time
	FineCents        int64
	OverdueNotified  bool
	ReminderNotified bool
}

// NewLendingBuilder returns an open lending due at dueAt, checked out two weeks earlier.
func NewLendingBuilder(bookID, borrowerID uuid.UUID, dueAt time.Time) *LendingBuilder {
	return &LendingBuilder{
		ID:         uuid.New(),
		BookID:     bookID,
		BorrowerID: borrowerID,
		CheckoutAt: dueAt.Add(-14 * 24 * time.Hour),
		DueAt:      dueAt,
	}
}

func (b *LendingBuilder) With(mutate func(*LendingBuilder)) *LendingBuilder {
	mutate(b)
	return b
}

type ItemBuilder struct {
	ID               uuid.UUID
	Name             string
	Category         string
	Quantity         int
	Unit             string
	MinimumQuantity  int
	Location         string
	Supplier         string
	LowStockNotified bool
}

func NewItemBuilder(name string, quantity, minimum int) *ItemBuilder {
	return &ItemBuilder{
		ID:              uuid.New(),
		Name:            name,
		Category:        "supplies",
		Quantity:        quantity,
		Unit:            "box",
		MinimumQuantity: minimum,
		Location:        "Storeroom A",
		Supplier:        "Acme School Supply",
	}
}

func (b *ItemBuilder) With(mutate func(*ItemBuilder)) *ItemBuilder {
	mutate(b)
	return b
}

type MaintenanceBuilder struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	Type         string
	NextDueAt    *time.Time
	ReminderSent bool
}

func NewMaintenanceBuilder(itemID uuid.UUID, nextDue time.Time) *MaintenanceBuilder {
	return &MaintenanceBuilder{
		ID:        uuid.New(),
		ItemID:    itemID,
		Type:      "inspection",
		NextDueAt: &nextDue,
	}
}

func (b *MaintenanceBuilder) With(mutate func(*MaintenanceBuilder)) *MaintenanceBuilder {
	mutate(b)
	return b
}
