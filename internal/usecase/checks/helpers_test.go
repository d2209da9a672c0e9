//go:build unit

package checks_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/notice"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/pkg/clock"
	"school-notifier/internal/usecase/checks"
	"school-notifier/tests/common/memstore"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg notice.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockSender) sent() []notice.Message {
	var out []notice.Message
	for _, c := range m.Calls {
		if c.Method == "Send" {
			out = append(out, c.Arguments.Get(1).(notice.Message))
		}
	}
	return out
}

type fixture struct {
	store  *memstore.Store
	sender *mockSender
	clock  *clock.MockClock
	svc    *checks.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	composer, err := notice.NewComposer(time.UTC)
	require.NoError(t, err)

	f := &fixture{
		store:  memstore.New(),
		sender: &mockSender{},
		clock:  clock.NewMockClock(now),
	}
	f.svc = checks.NewService(f.store, f.sender, composer, f.clock, checks.DefaultOptions(), discardLogger())
	return f
}

func (f *fixture) acceptAll() {
	f.sender.On("Send", mock.Anything, mock.Anything).Return(nil)
}

func (f *fixture) rejectAll(err error) {
	f.sender.On("Send", mock.Anything, mock.Anything).Return(err)
}

func (f *fixture) borrower(email string) memstore.User {
	return f.store.PutUser(memstore.User{FirstName: "Hanako", LastName: "Sato", Email: email, Role: user.RoleStudent})
}

func (f *fixture) staff(role user.Role, email string) memstore.User {
	return f.store.PutUser(memstore.User{FirstName: "Staff", LastName: string(role), Email: email, Role: role})
}

func (f *fixture) openLending(borrower memstore.User, dueAt time.Time) memstore.Lending {
	book := f.store.PutBook(lending.Book{Title: "The Go Programming Language", Author: "Donovan"})
	return f.store.PutLending(memstore.Lending{
		BookID:     book.ID,
		BorrowerID: borrower.ID,
		CheckoutAt: dueAt.Add(-14 * 24 * time.Hour),
		DueAt:      dueAt,
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// conflictOnce fails the first write of op with a retryable conflict, so the
// store rolls back and re-runs the transaction callback.
func (f *fixture) conflictOnce(op string) *int {
	var hits int
	f.store.WriteHook = func(got string) error {
		if got != op {
			return nil
		}
		hits++
		if hits == 1 {
			return memstore.ErrConflict
		}
		return nil
	}
	return &hits
}
