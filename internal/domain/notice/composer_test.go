//go:build unit

package notice_test

import (
	"testing"
	"time"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/notice"
	"school-notifier/internal/domain/user"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComposer(t *testing.T) *notice.Composer {
	t.Helper()
	c, err := notice.NewComposer(time.UTC)
	require.NoError(t, err)
	return c
}

func borrower(email string) *user.User {
	return user.ReconstructUser(uuid.New(), "Ada", "Lovelace", email, user.RoleStudent, time.Time{})
}

func TestOverdueNotice(t *testing.T) {
	c := newComposer(t)
	fine, _ := lending.NewMoney(300)
	l := lending.ReconstructLending(uuid.New(), uuid.New(), uuid.New(),
		time.Date(2023, 12, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		nil, fine, false, false)
	book := lending.Book{ID: l.BookID(), Title: "Dune", Author: "Frank Herbert"}

	msg, err := c.OverdueNotice(borrower("ada@school.com"), book, l)
	require.NoError(t, err)

	expected := notice.Message{
		Kind:    notice.KindOverdueLending,
		Subject: "Library Book Overdue Notice",
		To:      []string{"ada@school.com"},
		Body: `Dear Ada Lovelace,

The following book is overdue:
Title: Dune
Due Date: 2024-01-01

Please return the book as soon as possible to avoid additional fines.
Current fine amount: $3.00

Best regards,
Library Management
`,
	}
	if diff := cmp.Diff(expected, msg); diff != "" {
		t.Errorf("Message mismatch (-want +got):\n%s", diff)
	}

	again, err := c.OverdueNotice(borrower("ada@school.com"), book, l)
	require.NoError(t, err)
	assert.Equal(t, msg.Body, again.Body, "同じ入力からは同じ本文")
}

func TestDueSoonReminder(t *testing.T) {
	c := newComposer(t)
	l := lending.ReconstructLending(uuid.New(), uuid.New(), uuid.New(),
		time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC),
		nil, lending.Money{}, false, false)

	msg, err := c.DueSoonReminder(borrower("ada@school.com"), lending.Book{Title: "Emma"}, l)
	require.NoError(t, err)

	assert.Equal(t, "Library Book Due Date Reminder", msg.Subject)
	assert.Equal(t, `Dear Ada Lovelace,

This is a reminder that the following book is due soon:
Title: Emma
Due Date: 2024-03-02

Please return the book by the due date to avoid fines.

Best regards,
Library Management
`, msg.Body)
}

func TestLendingNoticeWithoutEmail(t *testing.T) {
	c := newComposer(t)
	l := lending.ReconstructLending(uuid.New(), uuid.New(), uuid.New(),
		time.Now(), time.Now(), nil, lending.Money{}, false, false)

	msg, err := c.OverdueNotice(borrower(""), lending.Book{Title: "Emma"}, l)
	require.NoError(t, err)
	assert.Empty(t, msg.To)
	assert.ErrorIs(t, msg.Validate(), notice.ErrNoRecipients)
}

func TestComposerUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	c, err := notice.NewComposer(tokyo)
	require.NoError(t, err)

	l := lending.ReconstructLending(uuid.New(), uuid.New(), uuid.New(),
		time.Time{}, time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), nil, lending.Money{}, false, false)

	msg, err := c.DueSoonReminder(borrower("ada@school.com"), lending.Book{Title: "Emma"}, l)
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Due Date: 2024-01-02")
}

func TestLowStockAlert(t *testing.T) {
	c := newComposer(t)
	items := []*inventory.Item{
		inventory.ReconstructItem(uuid.New(), "Chalk", "supplies", 2, "box", 5, "Store room", "Acme", false),
		inventory.ReconstructItem(uuid.New(), "Paper", "supplies", 10, "", 10, "", "", false),
	}

	msg, err := c.LowStockAlert([]string{"admin@school.com"}, items)
	require.NoError(t, err)

	assert.Equal(t, notice.KindLowStock, msg.Kind)
	assert.Equal(t, "Low Stock Alert", msg.Subject)
	assert.Equal(t, []string{"admin@school.com"}, msg.To)
	assert.Equal(t, `The following items are running low:

Item: Chalk
Current Quantity: 2 box
Minimum Quantity: 5 box
Location: Store room
Supplier: Acme

Item: Paper
Current Quantity: 10
Minimum Quantity: 10
Location: -
Supplier: -

Please restock these items soon.
`, msg.Body)
}

func TestMaintenanceReminder(t *testing.T) {
	c := newComposer(t)
	projector := inventory.ReconstructItem(uuid.New(), "Projector", "equipment", 1, "unit", 0, "Room 101", "", false)
	due := time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)
	entries := []notice.MaintenanceEntry{
		{Record: inventory.ReconstructMaintenanceRecord(uuid.New(), projector.ID(), "lamp replacement", &due, false), Item: projector},
	}

	msg, err := c.MaintenanceReminder([]string{"admin@school.com", "maint@school.com"}, entries)
	require.NoError(t, err)

	assert.Equal(t, "Upcoming Maintenance Tasks", msg.Subject)
	assert.Equal(t, `The following items require maintenance soon:

Item: Projector
Maintenance Type: lamp replacement
Due Date: 2024-03-06
Location: Room 101

Please schedule these maintenance tasks.
`, msg.Body)
	assert.NoError(t, msg.Validate())
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"overdue_lending", "due-soon-lending", " low_stock ", "upcoming_maintenance"} {
		k, err := notice.ParseKind(s)
		require.NoError(t, err, s)
		assert.True(t, k.IsValid())
	}
	_, err := notice.ParseKind("weekly_digest")
	assert.ErrorIs(t, err, notice.ErrUnknownKind)

	assert.True(t, notice.KindLowStock.IsBatch())
	assert.True(t, notice.KindUpcomingMaintenance.IsBatch())
	assert.False(t, notice.KindOverdueLending.IsBatch())
}
