package mailer

import (
	"context"
	"strings"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/pkg/errs"

	"github.com/mrz1836/postmark"
)

type PostmarkSender struct {
	client  *postmark.Client
	from    string
	replyTo string
}

func NewPostmarkSender(cfg config.MailConfig) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, errs.Wrap(ErrInvalidConfig, "postmark server token is required")
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, errs.Wrap(ErrInvalidConfig, "postmark account token is required")
	}
	if err := checkSender(cfg); err != nil {
		return nil, err
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = cfg.FromName + " <" + cfg.FromAddress + ">"
	}
	return &PostmarkSender{
		client:  postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:    from,
		replyTo: cfg.ReplyTo,
	}, nil
}

func (s *PostmarkSender) Send(ctx context.Context, msg notice.Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		ReplyTo:  s.replyTo,
		To:       strings.Join(msg.To, ","),
		Subject:  msg.Subject,
		Tag:      tag(msg),
		TextBody: msg.Body,
	})
	if err != nil {
		return errs.Mark(errs.Wrap(err, "postmark request"), ErrSendFailed)
	}
	if resp.ErrorCode > 0 {
		return errs.Mark(errs.Newf("postmark error: %d - %s", resp.ErrorCode, resp.Message), ErrSendFailed)
	}
	return nil
}
