package mailer

import (
	"context"
	"net/http"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/pkg/errs"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridSender struct {
	key  string
	host string
	from *sgmail.Email
	// replyTo is nil when not configured.
	replyTo *sgmail.Email
}

func NewSendgridSender(cfg config.MailConfig) (*SendgridSender, error) {
	if cfg.SendgridAPIKey == "" {
		return nil, errs.Wrap(ErrInvalidConfig, "sendgrid api key is required")
	}
	if err := checkSender(cfg); err != nil {
		return nil, err
	}

	s := &SendgridSender{
		key:  cfg.SendgridAPIKey,
		host: sendgridHost,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
	if cfg.ReplyTo != "" {
		s.replyTo = sgmail.NewEmail("", cfg.ReplyTo)
	}
	return s, nil
}

// WithHost points the sender at another API host.
func (s *SendgridSender) WithHost(host string) *SendgridSender {
	s.host = host
	return s
}

func (s *SendgridSender) prepare(msg notice.Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	if s.replyTo != nil {
		m.SetReplyTo(s.replyTo)
	}
	m.AddPersonalizations(p)
	m.AddCategories(tag(msg))
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return m
}

func (s *SendgridSender) Send(ctx context.Context, msg notice.Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "sendgrid request"), ErrSendFailed)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errs.Mark(errs.Newf("sendgrid error: %d - %s", res.StatusCode, res.Body), ErrSendFailed)
	}
	return nil
}
