package readstore

import (
	"context"

	"school-notifier/internal/domain/user"
	"school-notifier/internal/infra"
	"school-notifier/internal/infra/converter"
	"school-notifier/internal/infra/db"

	"github.com/google/uuid"
)

type UserReadQueries interface {
	FindUserByID(ctx context.Context, db db.DBTX, id uuid.UUID) (db.User, error)
	ListUsersByRoles(ctx context.Context, db db.DBTX, roles []string) ([]db.User, error)
}

type UserReadStore struct {
	queries UserReadQueries
	db      db.DBTX
}

func NewUserReadStore(queries UserReadQueries, db db.DBTX) *UserReadStore {
	return &UserReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row, err := r.queries.FindUserByID(ctx, r.db, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return converter.UserToDomain(row), nil
}

func (r *UserReadStore) WithRoles(ctx context.Context, roles []user.Role) ([]*user.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	rows, err := r.queries.ListUsersByRoles(ctx, r.db, converter.RolesToInfra(roles))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list users by role", err)
	}
	return converter.UsersToDomain(rows), nil
}
