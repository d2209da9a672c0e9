package repository

import (
	"context"

	"school-notifier/internal/infra"
	"school-notifier/internal/infra/converter"
	"school-notifier/internal/infra/db"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
)

type NotificationWriteQueries interface {
	CreateNotification(ctx context.Context, db db.DBTX, arg db.CreateNotificationParams) (uuid.UUID, error)
}

type NotificationRepository struct {
	queries NotificationWriteQueries
	db      db.DBTX
}

func NewNotificationRepository(queries NotificationWriteQueries, db db.DBTX) *NotificationRepository {
	return &NotificationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n shared.InAppNotification) (uuid.UUID, error) {
	id, err := r.queries.CreateNotification(ctx, r.db, converter.NotificationToInfra(n))
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create notification", err)
	}
	return id, nil
}
