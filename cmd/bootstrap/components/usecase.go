package components

import (
	"log/slog"

	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/clock"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/usecase"
	"school-notifier/internal/usecase/checks"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseChecksModule,
	usecaseValidatorsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewComposer,
	NewCheckOptions,
)

var usecaseChecksModule = fx.Module("usecase/checks",
	fx.Provide(
		checks.NewService,
		fx.Annotate(
			checks.NewRunner,
			fx.As(fx.Self()),
			fx.As(new(checks.Invoker)),
		),
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

// Daily cadences and the dates in message bodies share the checks time zone.
func NewComposer(cfg config.ChecksConfig) (*notice.Composer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return notice.NewComposer(loc)
}

func NewCheckOptions(cfg config.ChecksConfig, logger *slog.Logger) (checks.Options, error) {
	rate, err := lending.NewMoney(cfg.FinePerDayCents)
	if err != nil {
		return checks.Options{}, err
	}
	logger.Debug("check options loaded",
		"fine_per_day", rate.String(),
		"due_soon_window", cfg.DueSoonWindow,
		"maintenance_window", cfg.MaintenanceWindow)
	return checks.Options{
		FinePerDay:        rate,
		DueSoonWindow:     cfg.DueSoonWindow,
		MaintenanceWindow: cfg.MaintenanceWindow,
	}, nil
}
