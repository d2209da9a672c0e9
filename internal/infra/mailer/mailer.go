package mailer

import (
	"log/slog"
	"net/mail"
	"strings"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/checks"
)

var (
	ErrInvalidConfig = errs.New("invalid mailer config")
	ErrSendFailed    = errs.New("failed to send email")
)

// New returns the Sender selected by cfg.Transport.
func New(cfg config.MailConfig, logger *slog.Logger) (checks.Sender, error) {
	switch cfg.Transport {
	case config.MailTransportLog, "":
		return NewLogSender(logger), nil
	case config.MailTransportPostmark:
		return NewPostmarkSender(cfg)
	case config.MailTransportSendgrid:
		return NewSendgridSender(cfg)
	default:
		return nil, errs.Wrapf(ErrInvalidConfig, "unknown transport %q", cfg.Transport)
	}
}

func validate(msg notice.Message) error {
	if err := msg.Validate(); err != nil {
		return errs.Wrapf(err, "%s notice", msg.Kind)
	}
	return nil
}

func tag(msg notice.Message) string {
	return strings.ReplaceAll(msg.Kind.String(), "_", "-")
}

func checkSender(cfg config.MailConfig) error {
	if cfg.FromAddress == "" {
		return errs.Wrap(ErrInvalidConfig, "from address is required")
	}
	if _, err := mail.ParseAddress(cfg.FromAddress); err != nil {
		return errs.Wrap(ErrInvalidConfig, "from address must be a valid email address")
	}
	return nil
}
