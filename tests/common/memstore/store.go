//go:build unit || e2e

// Package memstore is an in-memory shared.UnitOfWork. Each transaction works
// on a copy of the state that replaces the committed state only when the
// callback returns nil, so rollbacks are observable from tests.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"school-notifier/internal/domain/inventory"
	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Role      user.Role
}

type Lending struct {
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

type Item struct {
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

type Maintenance struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	Type         string
	NextDueAt    *time.Time
	ReminderSent bool
}

type state struct {
	users         map[uuid.UUID]User
	books         map[uuid.UUID]lending.Book
	lendings      map[uuid.UUID]Lending
	items         map[uuid.UUID]Item
	maintenance   map[uuid.UUID]Maintenance
	notifications []shared.InAppNotification
}

func newState() *state {
	return &state{
		users:       map[uuid.UUID]User{},
		books:       map[uuid.UUID]lending.Book{},
		lendings:    map[uuid.UUID]Lending{},
		items:       map[uuid.UUID]Item{},
		maintenance: map[uuid.UUID]Maintenance{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[uuid.UUID]User, len(s.users)),
		books:         make(map[uuid.UUID]lending.Book, len(s.books)),
		lendings:      make(map[uuid.UUID]Lending, len(s.lendings)),
		items:         make(map[uuid.UUID]Item, len(s.items)),
		maintenance:   make(map[uuid.UUID]Maintenance, len(s.maintenance)),
		notifications: slices.Clone(s.notifications),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.lendings {
		c.lendings[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.maintenance {
		c.maintenance[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state

	// FailReads makes every candidate query return the error.
	FailReads error
	// FailWrites makes every repository write return the error.
	FailWrites error
	// WriteHook runs before each repository write; a non-nil error aborts it.
	// Returning ErrConflict makes Within retry the callback like PostgresUoW does.
	WriteHook func(op string) error

	commits   int
	rollbacks int
}

var _ shared.UnitOfWork = (*Store)(nil)

// ErrConflict stands in for a serialization failure or deadlock.
var ErrConflict = errs.New("memstore: transaction conflict")

const maxRetries = 3

// Write operation names passed to WriteHook.
const (
	OpLendingUpdate      = "lending.update"
	OpMarkLowStock       = "inventory.mark_low_stock"
	OpMarkMaintenance    = "maintenance.mark_reminder_sent"
	OpCreateNotification = "notification.create"
)

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		work := s.state.clone()
		err := fn(ctx, &memTx{store: s, st: work})
		if err == nil {
			s.state = work
			s.commits++
			return nil
		}
		s.rollbacks++
		if !errs.Is(err, ErrConflict) || attempt == maxRetries {
			return err
		}
	}
}

func (s *Store) CommandReads() shared.CommandReads {
	return &lockedReads{store: s}
}

func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Store) Rollbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// ---- seeding and inspection ----

func (s *Store) PutUser(u User) User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
	return u
}

func (s *Store) PutBook(b lending.Book) lending.Book {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.books[b.ID] = b
	return b
}

func (s *Store) PutLending(l Lending) Lending {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.lendings[l.ID] = l
	return l
}

func (s *Store) PutItem(it Item) Item {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.items[it.ID] = it
	return it
}

func (s *Store) PutMaintenance(m Maintenance) Maintenance {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.maintenance[m.ID] = m
	return m
}

func (s *Store) Lending(id uuid.UUID) Lending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.lendings[id]
}

func (s *Store) Item(id uuid.UUID) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.items[id]
}

func (s *Store) Maintenance(id uuid.UUID) Maintenance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.maintenance[id]
}

func (s *Store) Notifications() []shared.InAppNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.notifications)
}

// ---- reads ----

type lockedReads struct {
	store *Store
}

func (r *lockedReads) with(fn func(rd *reads) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(&reads{st: r.store.state, store: r.store})
}

func (r *lockedReads) OverdueLendings(ctx context.Context, now time.Time) (out []*lending.Lending, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.OverdueLendings(ctx, now)
		return err
	})
	return out, err
}

func (r *lockedReads) DueSoonLendings(ctx context.Context, now time.Time, window time.Duration) (out []*lending.Lending, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.DueSoonLendings(ctx, now, window)
		return err
	})
	return out, err
}

func (r *lockedReads) LowStockItems(ctx context.Context) (out []*inventory.Item, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.LowStockItems(ctx)
		return err
	})
	return out, err
}

func (r *lockedReads) UpcomingMaintenance(ctx context.Context, now time.Time, window time.Duration) (out []*inventory.MaintenanceRecord, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.UpcomingMaintenance(ctx, now, window)
		return err
	})
	return out, err
}

func (r *lockedReads) UsersWithRoles(ctx context.Context, roles []user.Role) (out []*user.User, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.UsersWithRoles(ctx, roles)
		return err
	})
	return out, err
}

func (r *lockedReads) UserByID(ctx context.Context, id uuid.UUID) (out *user.User, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.UserByID(ctx, id)
		return err
	})
	return out, err
}

func (r *lockedReads) BookByID(ctx context.Context, id uuid.UUID) (out *lending.Book, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.BookByID(ctx, id)
		return err
	})
	return out, err
}

func (r *lockedReads) ItemsByIDs(ctx context.Context, ids []uuid.UUID) (out []*inventory.Item, err error) {
	err = r.with(func(rd *reads) error {
		out, err = rd.ItemsByIDs(ctx, ids)
		return err
	})
	return out, err
}

type reads struct {
	st    *state
	store *Store
}

func (r *reads) OverdueLendings(_ context.Context, now time.Time) ([]*lending.Lending, error) {
	if r.store.FailReads != nil {
		return nil, r.store.FailReads
	}
	var out []*lending.Lending
	for _, row := range r.st.lendings {
		if row.ReturnedAt == nil && row.DueAt.Before(now) && !row.OverdueNotified {
			out = append(out, row.toDomain())
		}
	}
	sortLendings(out)
	return out, nil
}

func (r *reads) DueSoonLendings(_ context.Context, now time.Time, window time.Duration) ([]*lending.Lending, error) {
	if r.store.FailReads != nil {
		return nil, r.store.FailReads
	}
	var out []*lending.Lending
	for _, row := range r.st.lendings {
		if row.ReturnedAt == nil && row.DueAt.After(now) && !row.DueAt.After(now.Add(window)) && !row.ReminderNotified {
			out = append(out, row.toDomain())
		}
	}
	sortLendings(out)
	return out, nil
}

func (r *reads) LowStockItems(_ context.Context) ([]*inventory.Item, error) {
	if r.store.FailReads != nil {
		return nil, r.store.FailReads
	}
	var out []*inventory.Item
	for _, row := range r.st.items {
		if row.Quantity <= row.MinimumQuantity && !row.LowStockNotified {
			out = append(out, row.toDomain())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *reads) UpcomingMaintenance(_ context.Context, now time.Time, window time.Duration) ([]*inventory.MaintenanceRecord, error) {
	if r.store.FailReads != nil {
		return nil, r.store.FailReads
	}
	var out []*inventory.MaintenanceRecord
	for _, row := range r.st.maintenance {
		if row.NextDueAt != nil && row.NextDueAt.After(now) && !row.NextDueAt.After(now.Add(window)) && !row.ReminderSent {
			out = append(out, row.toDomain())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextDueAt().Before(*out[j].NextDueAt()) })
	return out, nil
}

func (r *reads) UsersWithRoles(_ context.Context, roles []user.Role) ([]*user.User, error) {
	if r.store.FailReads != nil {
		return nil, r.store.FailReads
	}
	var out []*user.User
	for _, row := range r.st.users {
		if slices.Contains(roles, row.Role) {
			out = append(out, row.toDomain())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email().Value() < out[j].Email().Value() })
	return out, nil
}

func (r *reads) UserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	row, ok := r.st.users[id]
	if !ok {
		return nil, errs.Mark(errs.New("user not found"), shared.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (r *reads) BookByID(_ context.Context, id uuid.UUID) (*lending.Book, error) {
	b, ok := r.st.books[id]
	if !ok {
		return nil, errs.Mark(errs.New("book not found"), shared.ErrNotFound)
	}
	return &b, nil
}

func (r *reads) ItemsByIDs(_ context.Context, ids []uuid.UUID) ([]*inventory.Item, error) {
	out := make([]*inventory.Item, 0, len(ids))
	for _, id := range ids {
		if row, ok := r.st.items[id]; ok {
			out = append(out, row.toDomain())
		}
	}
	return out, nil
}

func sortLendings(ls []*lending.Lending) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].DueAt().Before(ls[j].DueAt()) })
}

func (u User) toDomain() *user.User {
	return user.ReconstructUser(u.ID, u.FirstName, u.LastName, u.Email, u.Role, time.Time{})
}

func (l Lending) toDomain() *lending.Lending {
	fine, _ := lending.NewMoney(l.FineCents)
	return lending.ReconstructLending(l.ID, l.BookID, l.BorrowerID, l.CheckoutAt, l.DueAt, l.ReturnedAt, fine, l.OverdueNotified, l.ReminderNotified)
}

func (it Item) toDomain() *inventory.Item {
	return inventory.ReconstructItem(it.ID, it.Name, it.Category, it.Quantity, it.Unit, it.MinimumQuantity, it.Location, it.Supplier, it.LowStockNotified)
}

func (m Maintenance) toDomain() *inventory.MaintenanceRecord {
	return inventory.ReconstructMaintenanceRecord(m.ID, m.ItemID, m.Type, m.NextDueAt, m.ReminderSent)
}
