package checks

import (
	"context"
	"log/slog"
	"time"

	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/clock"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
)

type Options struct {
	FinePerDay        lending.Money
	DueSoonWindow     time.Duration
	MaintenanceWindow time.Duration
}

func DefaultOptions() Options {
	rate, _ := lending.NewMoney(DefaultFinePerDayCents)
	return Options{
		FinePerDay:        rate,
		DueSoonWindow:     DueSoonWindow,
		MaintenanceWindow: MaintenanceWindow,
	}
}

// Service holds the four condition checks. Each check is safe to invoke
// repeatedly: records are flagged only after delivery succeeds, so a rerun
// picks up exactly what is still pending.
type Service struct {
	uow      shared.UnitOfWork
	sender   Sender
	composer *notice.Composer
	clock    clock.Clock
	opts     Options
	logger   *slog.Logger
}

func NewService(uow shared.UnitOfWork, sender Sender, composer *notice.Composer, clk clock.Clock, opts Options, logger *slog.Logger) *Service {
	def := DefaultOptions()
	if opts.DueSoonWindow <= 0 {
		opts.DueSoonWindow = def.DueSoonWindow
	}
	if opts.MaintenanceWindow <= 0 {
		opts.MaintenanceWindow = def.MaintenanceWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:      uow,
		sender:   sender,
		composer: composer,
		clock:    clk,
		opts:     opts,
		logger:   logger,
	}
}

func (s *Service) finePolicy() lending.FinePolicy {
	return lending.NewFinePolicy(s.opts.FinePerDay)
}

func (s *Service) begin(kind notice.Kind, now time.Time) Result {
	return Result{Check: kind, StartedAt: now}
}

func (s *Service) finish(res Result, err error) (Result, error) {
	res.FinishedAt = s.clock.Now()
	res.Err = err
	return res, err
}

func (s *Service) recordInbox(ctx context.Context, tx shared.Tx, msg notice.Message, userIDs []uuid.UUID, ref *uuid.UUID) error {
	now := s.clock.Now()
	for _, id := range userIDs {
		_, err := tx.Notifications().Create(ctx, shared.InAppNotification{
			UserID:      id,
			Kind:        msg.Kind.String(),
			Title:       msg.Subject,
			Content:     msg.Body,
			ReferenceID: ref,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

type ctxLoggerKey struct{}

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return s.logger
}
