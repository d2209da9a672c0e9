//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"school-notifier/internal/domain/lending"
	"school-notifier/internal/infra"
	"school-notifier/internal/infra/db"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLendingWriteQueries struct {
	mock.Mock
}

func (m *MockLendingWriteQueries) LockLending(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (db.BookLending, error) {
	args := m.Called(ctx, dbtx, id)
	return args.Get(0).(db.BookLending), args.Error(1)
}

func (m *MockLendingWriteQueries) UpdateLendingNoticeState(ctx context.Context, dbtx db.DBTX, arg db.UpdateLendingNoticeStateParams) (int64, error) {
	args := m.Called(ctx, dbtx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func TestLendingRepository_LockByID(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	returned := due.Add(-time.Hour)
	row := db.BookLending{
		ID:              uuid.New(),
		BookID:          uuid.New(),
		UserID:          uuid.New(),
		CheckoutDate:    due.Add(-14 * 24 * time.Hour),
		DueDate:         due,
		ReturnDate:      pgtype.Timestamptz{Time: returned, Valid: true},
		FineAmountCents: 250,
		OverdueNotified: true,
	}

	tests := []struct {
		name         string
		mockReturn   db.BookLending
		mockError    error
		wantError    bool
		wantNotFound bool
	}{
		{name: "success", mockReturn: row},
		{name: "not found", mockReturn: db.BookLending{}, mockError: pgx.ErrNoRows, wantError: true, wantNotFound: true},
		{name: "database error", mockReturn: db.BookLending{}, mockError: assert.AnError, wantError: true},
		{name: "negative fine is rejected", mockReturn: db.BookLending{ID: row.ID, FineAmountCents: -1}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockLendingWriteQueries)
			mockQueries.On("LockLending", mock.Anything, mock.Anything, row.ID).Return(tt.mockReturn, tt.mockError)

			repo := NewLendingRepository(mockQueries, nil)
			got, err := repo.LockByID(context.Background(), row.ID)

			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, tt.wantNotFound, errs.Is(err, shared.ErrNotFound))
				assert.Equal(t, tt.wantNotFound, infra.IsKind(err, infra.KindNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, row.ID, got.ID())
			assert.Equal(t, row.DueDate, got.DueAt())
			require.NotNil(t, got.ReturnedAt())
			assert.Equal(t, returned, *got.ReturnedAt())
			assert.Equal(t, int64(250), got.Fine().Cents())
			assert.True(t, got.OverdueNotified())
			assert.False(t, got.ReminderNotified())
			mockQueries.AssertExpectations(t)
		})
	}
}

func TestLendingRepository_Update(t *testing.T) {
	fine, err := lending.NewMoney(300)
	require.NoError(t, err)
	l := lending.ReconstructLending(uuid.New(), uuid.New(), uuid.New(), time.Now(), time.Now(), nil, fine, true, false)
	expectedParams := db.UpdateLendingNoticeStateParams{
		ID:              l.ID(),
		FineAmountCents: 300,
		OverdueNotified: true,
	}

	tests := []struct {
		name         string
		affected     int64
		mockError    error
		wantError    bool
		wantNotFound bool
	}{
		{name: "success", affected: 1},
		{name: "row vanished", affected: 0, wantError: true, wantNotFound: true},
		{name: "database error", mockError: assert.AnError, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockLendingWriteQueries)
			mockQueries.On("UpdateLendingNoticeState", mock.Anything, mock.Anything, mock.MatchedBy(func(arg db.UpdateLendingNoticeStateParams) bool {
				return cmp.Diff(expectedParams, arg) == ""
			})).Return(tt.affected, tt.mockError)

			repo := NewLendingRepository(mockQueries, nil)
			err := repo.Update(context.Background(), l)

			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, tt.wantNotFound, infra.IsKind(err, infra.KindNotFound))
				if !tt.wantNotFound {
					assert.True(t, infra.IsKind(err, infra.KindDBFailure))
				}
			} else {
				assert.NoError(t, err)
			}
			mockQueries.AssertExpectations(t)
		})
	}
}
