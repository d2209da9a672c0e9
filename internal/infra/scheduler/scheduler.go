package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"school-notifier/internal/pkg/clock"
	"school-notifier/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

var (
	ErrAlreadyStarted = errs.New("scheduler already started")
	ErrDuplicateJob   = errs.New("job already registered")
	ErrInvalidJob     = errs.New("invalid job")
)

type Job func(ctx context.Context) error

type Entry struct {
	Name     string
	Schedule Schedule
}

type entry struct {
	Entry
	job Job
}

// Scheduler runs each registered job on its own goroutine. A job's next
// firing is computed only after the previous run returns, so a job never
// overlaps with itself.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	entries []entry
	cancel  context.CancelFunc
	group   *errgroup.Group
}

func New(clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{clock: clk, logger: logger}
}

func (s *Scheduler) Add(name string, schedule Schedule, job Job) error {
	if name == "" || schedule == nil || job == nil {
		return errs.Wrapf(ErrInvalidJob, "add %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.group != nil {
		return ErrAlreadyStarted
	}
	for _, e := range s.entries {
		if e.Name == name {
			return errs.Wrapf(ErrDuplicateJob, "add %q", name)
		}
	}
	s.entries = append(s.entries, entry{Entry: Entry{Name: name, Schedule: schedule}, job: job})
	return nil
}

func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Entry)
	}
	return out
}

// Start returns immediately. Jobs stop when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.group != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	for _, e := range s.entries {
		g.Go(func() error {
			s.loop(gctx, e)
			return nil
		})
	}
	s.cancel = cancel
	s.group = g

	s.logger.Info("scheduler started", "jobs", len(s.entries))
	return nil
}

// Stop cancels every job and waits for in-flight runs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel, g := s.cancel, s.group
	s.mu.Unlock()

	if g == nil {
		return nil
	}
	cancel()
	err := g.Wait()
	s.logger.Info("scheduler stopped")
	return err
}

func (s *Scheduler) loop(ctx context.Context, e entry) {
	logger := s.logger.With("job", e.Name, "schedule", e.Schedule.String())
	for {
		now := s.clock.Now()
		next := e.Schedule.Next(now)
		logger.Debug("next run scheduled", "at", next)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.run(ctx, logger, e)
	}
}

func (s *Scheduler) run(ctx context.Context, logger *slog.Logger, e entry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled job panicked", "panic", fmt.Sprint(r))
		}
	}()

	if err := e.job(ctx); err != nil {
		logger.Warn("scheduled job returned error", "error", err.Error())
	}
}
