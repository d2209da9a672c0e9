package components

import (
	"school-notifier/internal/infra/db"
	"school-notifier/internal/infra/uow"
	"school-notifier/internal/usecase/shared"

	"go.uber.org/fx"
)

// Repositories and read stores are created per transaction by the unit of
// work, so only the shared query set and the UoW itself are provided here.
var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		db.New,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
	),
)
