package components

import (
	"school-notifier/internal/handler"
	"school-notifier/internal/handler/api"
	"school-notifier/internal/handler/middleware"
	"school-notifier/internal/infra/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCheckHandler,
		middleware.NewAuthMiddleware,
		NewHealthFunc,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHealthFunc(pool *pgxpool.Pool) handler.HealthFunc {
	return handler.HealthFunc(db.Healthcheck(pool))
}
