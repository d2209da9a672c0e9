package bootstrap

import (
	"context"
	"log/slog"

	"school-notifier/internal/infra/runlock"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/usecase/checks"

	"go.uber.org/fx"
)

var RunLockModule = fx.Module("runlock",
	fx.Provide(
		NewRunnerConfig,
	),
)

// NewRunnerConfig adds a redis lock when REDIS_URL is set. Without it the
// runner only excludes overlapping runs inside this process.
func NewRunnerConfig(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (checks.RunnerConfig, error) {
	rc := checks.RunnerConfig{
		Timeout: cfg.Checks.RunTimeout,
		LockTTL: cfg.Redis.LockTTL,
	}
	if cfg.Redis.URL == "" {
		return rc, nil
	}

	client, err := runlock.Connect(context.Background(), cfg.Redis)
	if err != nil {
		return checks.RunnerConfig{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	rc.Locker = runlock.NewRedisLocker(client)
	logger.Info("redis run lock enabled", "lock_ttl", cfg.Redis.LockTTL)
	return rc, nil
}
