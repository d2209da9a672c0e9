//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"school-notifier/internal/infra"
	"school-notifier/internal/infra/db"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInventoryWriteQueries struct {
	mock.Mock
}

func (m *MockInventoryWriteQueries) LockItemsByIDs(ctx context.Context, dbtx db.DBTX, ids []uuid.UUID) ([]db.InventoryItem, error) {
	args := m.Called(ctx, dbtx, ids)
	return args.Get(0).([]db.InventoryItem), args.Error(1)
}

func (m *MockInventoryWriteQueries) MarkItemsLowStockNotified(ctx context.Context, dbtx db.DBTX, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, dbtx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockMaintenanceWriteQueries struct {
	mock.Mock
}

func (m *MockMaintenanceWriteQueries) LockMaintenanceByIDs(ctx context.Context, dbtx db.DBTX, ids []uuid.UUID) ([]db.MaintenanceRecord, error) {
	args := m.Called(ctx, dbtx, ids)
	return args.Get(0).([]db.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceWriteQueries) MarkMaintenanceReminderSent(ctx context.Context, dbtx db.DBTX, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, dbtx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotificationWriteQueries struct {
	mock.Mock
}

func (m *MockNotificationWriteQueries) CreateNotification(ctx context.Context, dbtx db.DBTX, arg db.CreateNotificationParams) (uuid.UUID, error) {
	args := m.Called(ctx, dbtx, arg)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestInventoryRepository_LockItems(t *testing.T) {
	id := uuid.New()
	mockQueries := new(MockInventoryWriteQueries)
	mockQueries.On("LockItemsByIDs", mock.Anything, mock.Anything, []uuid.UUID{id}).Return([]db.InventoryItem{
		{ID: id, Name: "Chalk", Quantity: 2, Unit: "box", MinimumQuantity: 5},
	}, nil)

	repo := NewInventoryRepository(mockQueries, nil)
	items, err := repo.LockItems(context.Background(), []uuid.UUID{id})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chalk", items[0].Name())
	assert.True(t, items[0].NeedsLowStockAlert())

	t.Run("empty ids skip the query", func(t *testing.T) {
		items, err := repo.LockItems(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, items)
		mockQueries.AssertNumberOfCalls(t, "LockItemsByIDs", 1)
	})
}

func TestInventoryRepository_MarkLowStockNotified(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	tests := []struct {
		name      string
		affected  int64
		mockError error
		wantKind  infra.RepositoryErrorKind
	}{
		{name: "success", affected: 2},
		{name: "partial update", affected: 1, wantKind: infra.KindNotFound},
		{name: "database error", mockError: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockInventoryWriteQueries)
			mockQueries.On("MarkItemsLowStockNotified", mock.Anything, mock.Anything, ids).Return(tt.affected, tt.mockError)

			err := NewInventoryRepository(mockQueries, nil).MarkLowStockNotified(context.Background(), ids)

			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, infra.IsKind(err, tt.wantKind))
			}
			mockQueries.AssertExpectations(t)
		})
	}
}

func TestMaintenanceRepository(t *testing.T) {
	id := uuid.New()
	due := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	mockQueries := new(MockMaintenanceWriteQueries)
	mockQueries.On("LockMaintenanceByIDs", mock.Anything, mock.Anything, []uuid.UUID{id}).Return([]db.MaintenanceRecord{
		{ID: id, ItemID: uuid.New(), MaintenanceType: "Inspection", NextMaintenanceDate: pgtype.Timestamptz{Time: due, Valid: true}},
	}, nil)
	mockQueries.On("MarkMaintenanceReminderSent", mock.Anything, mock.Anything, []uuid.UUID{id}).Return(int64(1), nil)

	repo := NewMaintenanceRepository(mockQueries, nil)

	records, err := repo.LockRecords(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].NextDueAt())
	assert.Equal(t, due, *records[0].NextDueAt())
	assert.Equal(t, "Inspection", records[0].Type())

	require.NoError(t, repo.MarkReminderSent(context.Background(), []uuid.UUID{id}))
	mockQueries.AssertExpectations(t)
}

func TestNotificationRepository_Create(t *testing.T) {
	ref := uuid.New()
	input := shared.InAppNotification{
		UserID:      uuid.New(),
		Kind:        "overdue_lending",
		Title:       "Library Book Overdue Notice",
		Content:     "body",
		ReferenceID: &ref,
		CreatedAt:   time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC),
	}
	newID := uuid.New()

	mockQueries := new(MockNotificationWriteQueries)
	mockQueries.On("CreateNotification", mock.Anything, mock.Anything, mock.MatchedBy(func(arg db.CreateNotificationParams) bool {
		return arg.UserID == input.UserID && arg.Type == input.Kind && arg.ReferenceID.Valid && arg.ReferenceID.Bytes == ref
	})).Return(newID, nil)

	id, err := NewNotificationRepository(mockQueries, nil).Create(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, newID, id)
	mockQueries.AssertExpectations(t)
}
