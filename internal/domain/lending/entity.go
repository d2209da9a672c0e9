package lending

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyNotified = errors.New("lending already notified")
	ErrReturned        = errors.New("lending already returned")
	ErrNotOverdue      = errors.New("lending is not overdue")
)

type Book struct {
	ID     uuid.UUID
	Title  string
	Author string
}

type Lending struct {
	id               uuid.UUID
	bookID           uuid.UUID
	borrowerID       uuid.UUID
	checkoutAt       time.Time
	dueAt            time.Time
	returnedAt       *time.Time
	fine             Money
	overdueNotified  bool
	reminderNotified bool
}

func ReconstructLending(
	id, bookID, borrowerID uuid.UUID,
	checkoutAt, dueAt time.Time,
	returnedAt *time.Time,
	fine Money,
	overdueNotified, reminderNotified bool,
) *Lending {
	return &Lending{
		id:               id,
		bookID:           bookID,
		borrowerID:       borrowerID,
		checkoutAt:       checkoutAt,
		dueAt:            dueAt,
		returnedAt:       returnedAt,
		fine:             fine,
		overdueNotified:  overdueNotified,
		reminderNotified: reminderNotified,
	}
}

func (l *Lending) ID() uuid.UUID          { return l.id }
func (l *Lending) BookID() uuid.UUID      { return l.bookID }
func (l *Lending) BorrowerID() uuid.UUID  { return l.borrowerID }
func (l *Lending) CheckoutAt() time.Time  { return l.checkoutAt }
func (l *Lending) DueAt() time.Time       { return l.dueAt }
func (l *Lending) ReturnedAt() *time.Time { return l.returnedAt }
func (l *Lending) Fine() Money            { return l.fine }
func (l *Lending) OverdueNotified() bool  { return l.overdueNotified }
func (l *Lending) ReminderNotified() bool { return l.reminderNotified }
func (l *Lending) IsReturned() bool       { return l.returnedAt != nil }

// IsOverdue reports due < now on an open lending.
func (l *Lending) IsOverdue(now time.Time) bool {
	return !l.IsReturned() && l.dueAt.Before(now)
}

// IsDueSoon reports now < due <= now+window on an open lending.
// It never holds together with IsOverdue for the same instant.
func (l *Lending) IsDueSoon(now time.Time, window time.Duration) bool {
	return !l.IsReturned() && l.dueAt.After(now) && !l.dueAt.After(now.Add(window))
}

func (l *Lending) NeedsOverdueNotice(now time.Time) bool {
	return l.IsOverdue(now) && !l.overdueNotified
}

func (l *Lending) NeedsDueSoonReminder(now time.Time, window time.Duration) bool {
	return l.IsDueSoon(now, window) && !l.reminderNotified
}

// AssessFine overwrites the stored fine with policy.FineFor(due, now).
func (l *Lending) AssessFine(policy FinePolicy, now time.Time) (Money, error) {
	if l.IsReturned() {
		return Money{}, ErrReturned
	}
	if !l.IsOverdue(now) {
		return Money{}, ErrNotOverdue
	}
	l.fine = policy.FineFor(l.dueAt, now)
	return l.fine, nil
}

func (l *Lending) MarkOverdueNotified() error {
	if l.overdueNotified {
		return ErrAlreadyNotified
	}
	l.overdueNotified = true
	return nil
}

func (l *Lending) MarkReminderNotified() error {
	if l.reminderNotified {
		return ErrAlreadyNotified
	}
	l.reminderNotified = true
	return nil
}
