package bootstrap

import (
	"context"
	"log/slog"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/infra/scheduler"
	"school-notifier/internal/pkg/clock"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/usecase/checks"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		NewScheduler,
	),
	fx.Invoke(StartScheduler),
)

// Schedules maps each check to its cadence from config.
func Schedules(cfg config.ChecksConfig) (map[notice.Kind]scheduler.Schedule, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return map[notice.Kind]scheduler.Schedule{
		notice.KindOverdueLending:      scheduler.DailyAt(cfg.OverdueHour, 0, loc),
		notice.KindDueSoonLending:      scheduler.DailyAt(cfg.DueSoonHour, 0, loc),
		notice.KindLowStock:            scheduler.Every(cfg.LowStockInterval),
		notice.KindUpcomingMaintenance: scheduler.DailyAt(cfg.MaintenanceHour, 0, loc),
	}, nil
}

func NewScheduler(cfg config.Config, runner *checks.Runner, clk clock.Clock, logger *slog.Logger) (*scheduler.Scheduler, error) {
	schedules, err := Schedules(cfg.Checks)
	if err != nil {
		return nil, err
	}

	s := scheduler.New(clk, logger)
	for _, kind := range runner.Kinds() {
		if err := s.Add(kind.String(), schedules[kind], func(ctx context.Context) error {
			_, err := runner.Run(ctx, kind)
			return err
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func StartScheduler(lc fx.Lifecycle, cfg config.Config, s *scheduler.Scheduler, logger *slog.Logger) {
	if !cfg.Checks.Enabled {
		logger.Info("scheduled checks disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			for _, e := range s.Entries() {
				logger.Info("check scheduled", "check", e.Name, "schedule", e.Schedule.String())
			}
			return s.Start(context.Background())
		},
		OnStop: func(_ context.Context) error {
			return s.Stop()
		},
	})
}
