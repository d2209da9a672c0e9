package checks

import (
	"context"

	"school-notifier/internal/domain/lending"
	"school-notifier/internal/domain/notice"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
)

const unknownTitle = "(unknown title)"

// CheckOverdueLendings notifies borrowers of open lendings past their due date.
// The fine is recomputed as DaysOverdue(now) * rate and stored on every
// attempt, including attempts whose delivery fails.
func (s *Service) CheckOverdueLendings(ctx context.Context) (Result, error) {
	now := s.clock.Now()
	res := s.begin(notice.KindOverdueLending, now)
	policy := s.finePolicy()

	err := scanEach(ctx, s, &res, recordScan[*lending.Lending]{
		kind: notice.KindOverdueLending,
		candidates: func(ctx context.Context, reads shared.CommandReads) ([]*lending.Lending, error) {
			return reads.OverdueLendings(ctx, now)
		},
		id:   (*lending.Lending).ID,
		lock: lockLending,
		eligible: func(l *lending.Lending) bool {
			return l.NeedsOverdueNotice(now)
		},
		prepare: func(ctx context.Context, tx shared.Tx, l *lending.Lending) error {
			if _, err := l.AssessFine(policy, now); err != nil {
				return err
			}
			return tx.Lendings().Update(ctx, l)
		},
		compose: func(ctx context.Context, tx shared.Tx, l *lending.Lending) (notice.Message, []uuid.UUID, error) {
			return s.composeLending(ctx, tx, l, s.composer.OverdueNotice)
		},
		mark: func(ctx context.Context, tx shared.Tx, l *lending.Lending) error {
			if err := l.MarkOverdueNotified(); err != nil {
				return err
			}
			return tx.Lendings().Update(ctx, l)
		},
	})
	return s.finish(res, err)
}

// CheckDueSoonLendings reminds borrowers whose lending falls due within the window.
func (s *Service) CheckDueSoonLendings(ctx context.Context) (Result, error) {
	now := s.clock.Now()
	res := s.begin(notice.KindDueSoonLending, now)
	window := s.opts.DueSoonWindow

	err := scanEach(ctx, s, &res, recordScan[*lending.Lending]{
		kind: notice.KindDueSoonLending,
		candidates: func(ctx context.Context, reads shared.CommandReads) ([]*lending.Lending, error) {
			return reads.DueSoonLendings(ctx, now, window)
		},
		id:   (*lending.Lending).ID,
		lock: lockLending,
		eligible: func(l *lending.Lending) bool {
			return l.NeedsDueSoonReminder(now, window)
		},
		compose: func(ctx context.Context, tx shared.Tx, l *lending.Lending) (notice.Message, []uuid.UUID, error) {
			return s.composeLending(ctx, tx, l, s.composer.DueSoonReminder)
		},
		mark: func(ctx context.Context, tx shared.Tx, l *lending.Lending) error {
			if err := l.MarkReminderNotified(); err != nil {
				return err
			}
			return tx.Lendings().Update(ctx, l)
		},
	})
	return s.finish(res, err)
}

func lockLending(ctx context.Context, tx shared.Tx, id uuid.UUID) (*lending.Lending, error) {
	return tx.Lendings().LockByID(ctx, id)
}

type lendingComposer func(borrower *user.User, book lending.Book, l *lending.Lending) (notice.Message, error)

func (s *Service) composeLending(ctx context.Context, tx shared.Tx, l *lending.Lending, compose lendingComposer) (notice.Message, []uuid.UUID, error) {
	borrower, err := tx.Reads().UserByID(ctx, l.BorrowerID())
	if err != nil {
		if errs.Is(err, shared.ErrNotFound) {
			return notice.Message{}, nil, nil
		}
		return notice.Message{}, nil, err
	}
	if !borrower.HasEmail() {
		return notice.Message{}, nil, nil
	}

	book, err := tx.Reads().BookByID(ctx, l.BookID())
	if err != nil {
		if !errs.Is(err, shared.ErrNotFound) {
			return notice.Message{}, nil, err
		}
		book = &lending.Book{ID: l.BookID(), Title: unknownTitle}
	}

	msg, err := compose(borrower, *book, l)
	if err != nil {
		return notice.Message{}, nil, err
	}
	return msg, []uuid.UUID{borrower.ID()}, nil
}
