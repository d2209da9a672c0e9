package converter

import (
	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/infra/db"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/pkg/pgconv"
	"school-notifier/internal/usecase/shared"
)

func LendingToDomain(row db.BookLending) (*lending.Lending, error) {
	fine, err := lending.NewMoney(row.FineAmountCents)
	if err != nil {
		return nil, errs.Wrapf(err, "lending %s", row.ID)
	}
	return lending.ReconstructLending(
		row.ID, row.BookID, row.UserID,
		row.CheckoutDate, row.DueDate,
		pgconv.TimePtrFromPgtype(row.ReturnDate),
		fine,
		row.OverdueNotified, row.ReminderNotified,
	), nil
}

func LendingsToDomain(rows []db.BookLending) ([]*lending.Lending, error) {
	out := make([]*lending.Lending, 0, len(rows))
	for _, row := range rows {
		l, err := LendingToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func LendingToNoticeState(l *lending.Lending) db.UpdateLendingNoticeStateParams {
	return db.UpdateLendingNoticeStateParams{
		ID:               l.ID(),
		FineAmountCents:  l.Fine().Cents(),
		OverdueNotified:  l.OverdueNotified(),
		ReminderNotified: l.ReminderNotified(),
	}
}

func BookToDomain(row db.Book) *lending.Book {
	return &lending.Book{ID: row.ID, Title: row.Title, Author: row.Author}
}

// UserToDomain trusts the role column; the table constrains its values.
func UserToDomain(row db.User) *user.User {
	return user.ReconstructUser(row.ID, row.FirstName, row.LastName, row.Email, user.Role(row.Role), row.CreatedAt)
}

func UsersToDomain(rows []db.User) []*user.User {
	out := make([]*user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserToDomain(row))
	}
	return out
}

func RolesToInfra(roles []user.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.String())
	}
	return out
}

func ItemToDomain(row db.InventoryItem) *inventory.Item {
	return inventory.ReconstructItem(
		row.ID, row.Name, row.Category,
		int(row.Quantity), row.Unit, int(row.MinimumQuantity),
		row.Location, row.Supplier,
		row.LowStockNotified,
	)
}

func ItemsToDomain(rows []db.InventoryItem) []*inventory.Item {
	out := make([]*inventory.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, ItemToDomain(row))
	}
	return out
}

func MaintenanceToDomain(row db.MaintenanceRecord) *inventory.MaintenanceRecord {
	return inventory.ReconstructMaintenanceRecord(
		row.ID, row.ItemID, row.MaintenanceType,
		pgconv.TimePtrFromPgtype(row.NextMaintenanceDate),
		row.MaintenanceReminderSent,
	)
}

func MaintenanceListToDomain(rows []db.MaintenanceRecord) []*inventory.MaintenanceRecord {
	out := make([]*inventory.MaintenanceRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, MaintenanceToDomain(row))
	}
	return out
}

func NotificationToInfra(n shared.InAppNotification) db.CreateNotificationParams {
	return db.CreateNotificationParams{
		UserID:      n.UserID,
		Title:       n.Title,
		Content:     n.Content,
		Type:        n.Kind,
		ReferenceID: pgconv.UUIDPtrToPgtype(n.ReferenceID),
		CreatedAt:   n.CreatedAt,
	}
}
