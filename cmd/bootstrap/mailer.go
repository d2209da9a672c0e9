package bootstrap

import (
	"log/slog"

	"school-notifier/internal/infra/mailer"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/usecase/checks"

	"go.uber.org/fx"
)

var MailerModule = fx.Module("mailer",
	fx.Provide(
		NewSender,
	),
)

func NewSender(cfg config.MailConfig, logger *slog.Logger) (checks.Sender, error) {
	sender, err := mailer.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("mail transport configured", "transport", cfg.Transport, "from", cfg.FromAddress)
	return sender, nil
}
