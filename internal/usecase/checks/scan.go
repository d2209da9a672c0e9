package checks

import (
	"context"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/domain/user"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/shared"

	"github.com/google/uuid"
)

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeNotified
	outcomeFailed
)

// recordScan is a per-record check. Every candidate gets its own transaction
// in which the row is locked, re-checked, optionally prepared, delivered and
// flagged. A failure on one record never affects another.
type recordScan[T any] struct {
	kind       notice.Kind
	candidates func(ctx context.Context, reads shared.CommandReads) ([]T, error)
	id         func(T) uuid.UUID
	lock       func(ctx context.Context, tx shared.Tx, id uuid.UUID) (T, error)
	eligible   func(T) bool
	// prepare runs before delivery and is committed even when delivery fails.
	prepare func(ctx context.Context, tx shared.Tx, rec T) error
	// compose returns a message with no recipients to skip the record.
	compose func(ctx context.Context, tx shared.Tx, rec T) (notice.Message, []uuid.UUID, error)
	mark    func(ctx context.Context, tx shared.Tx, rec T) error
}

func scanEach[T any](ctx context.Context, s *Service, res *Result, plan recordScan[T]) error {
	cands, err := plan.candidates(ctx, s.uow.CommandReads())
	if err != nil {
		return errs.Mark(errs.Wrapf(err, "select %s candidates", plan.kind), ErrQueryFailed)
	}
	res.Candidates = len(cands)

	for _, cand := range cands {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := plan.id(cand)
		out, err := processRecord(ctx, s, plan, id)
		switch out {
		case outcomeNotified:
			res.Notified++
			res.Sent++
		case outcomeFailed:
			res.Failed++
			s.log(ctx).Warn("notice not delivered", "record_id", id.String(), "error", err.Error())
		default:
			res.Skipped++
		}
	}
	return nil
}

// processRecord sends at most once per call. The unit of work may re-run the
// callback after a retryable conflict; once the sink has accepted the notice a
// retry only re-applies the flag and inbox writes.
func processRecord[T any](ctx context.Context, s *Service, plan recordScan[T], id uuid.UUID) (outcome, error) {
	var (
		out       outcome
		sendErr   error
		delivered *notice.Message
	)
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		out, sendErr = outcomeSkipped, nil

		rec, err := plan.lock(ctx, tx, id)
		if err != nil {
			if errs.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		if !plan.eligible(rec) {
			return nil
		}
		if plan.prepare != nil {
			if err := plan.prepare(ctx, tx, rec); err != nil {
				return err
			}
		}

		msg, inbox, err := plan.compose(ctx, tx, rec)
		if err != nil {
			return err
		}
		if len(msg.To) == 0 {
			s.log(ctx).Debug("no address on file, skipping", "record_id", id.String())
			return nil
		}

		if delivered == nil {
			if err := s.sender.Send(ctx, msg); err != nil {
				out, sendErr = outcomeFailed, errs.Mark(err, ErrDeliveryFailed)
				return nil
			}
			delivered = &msg
		} else {
			msg = *delivered
			s.log(ctx).Warn("transaction retried after delivery, not resending", "record_id", id.String())
		}

		if err := plan.mark(ctx, tx, rec); err != nil {
			return err
		}
		if err := s.recordInbox(ctx, tx, msg, inbox, &id); err != nil {
			return err
		}
		out = outcomeNotified
		return nil
	})
	if err != nil {
		return outcomeFailed, err
	}
	return out, sendErr
}

// batchScan is an aggregate check: all matches go into one message for a
// role-based recipient group, and every match is flagged in the same
// transaction only after the message is accepted.
type batchScan[T any] struct {
	kind       notice.Kind
	roles      []user.Role
	candidates func(ctx context.Context, reads shared.CommandReads) ([]T, error)
	id         func(T) uuid.UUID
	lock       func(ctx context.Context, tx shared.Tx, ids []uuid.UUID) ([]T, error)
	eligible   func(T) bool
	compose    func(ctx context.Context, tx shared.Tx, to []string, recs []T) (notice.Message, error)
	mark       func(ctx context.Context, tx shared.Tx, recs []T) error
}

func scanBatch[T any](ctx context.Context, s *Service, res *Result, plan batchScan[T]) error {
	reads := s.uow.CommandReads()

	cands, err := plan.candidates(ctx, reads)
	if err != nil {
		return errs.Mark(errs.Wrapf(err, "select %s candidates", plan.kind), ErrQueryFailed)
	}
	res.Candidates = len(cands)
	if len(cands) == 0 {
		return nil
	}

	users, err := reads.UsersWithRoles(ctx, plan.roles)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "resolve recipients"), ErrQueryFailed)
	}
	to := user.Recipients(users)
	if len(to) == 0 {
		// Left unflagged so the next run retries once someone has an address.
		res.Skipped = len(cands)
		s.log(ctx).Warn("no recipients with an email address", "roles", plan.roles, "pending", len(cands))
		return nil
	}
	inbox := inboxUserIDs(users)

	ids := make([]uuid.UUID, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, plan.id(c))
	}

	var (
		batch     int
		delivered *notice.Message
	)
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		batch = 0

		locked, err := plan.lock(ctx, tx, ids)
		if err != nil {
			return err
		}
		pending := make([]T, 0, len(locked))
		for _, rec := range locked {
			if plan.eligible(rec) {
				pending = append(pending, rec)
			}
		}
		if len(pending) == 0 {
			return nil
		}

		batch = len(pending)
		// After a delivered attempt rolled back, flag what is still pending
		// without sending the aggregate again.
		var msg notice.Message
		if delivered != nil {
			msg = *delivered
			s.log(ctx).Warn("transaction retried after delivery, not resending", "records", batch)
		} else {
			msg, err = plan.compose(ctx, tx, to, pending)
			if err != nil {
				return err
			}
			if err := s.sender.Send(ctx, msg); err != nil {
				return errs.Mark(err, ErrDeliveryFailed)
			}
			delivered = &msg
		}
		if err := plan.mark(ctx, tx, pending); err != nil {
			return err
		}
		return s.recordInbox(ctx, tx, msg, inbox, nil)
	})
	if err != nil {
		if errs.Is(err, ErrDeliveryFailed) {
			res.Failed = batch
			res.Skipped = res.Candidates - batch
			s.log(ctx).Warn("batch notice not delivered", "records", batch, "error", err.Error())
			return nil
		}
		return err
	}

	res.Notified = batch
	res.Skipped = res.Candidates - batch
	if delivered != nil {
		res.Sent = 1
	}
	return nil
}

func inboxUserIDs(users []*user.User) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(users))
	out := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		if u == nil || !u.HasEmail() {
			continue
		}
		if _, dup := seen[u.ID()]; dup {
			continue
		}
		seen[u.ID()] = struct{}{}
		out = append(out, u.ID())
	}
	return out
}
