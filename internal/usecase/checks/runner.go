package checks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/errs"

	"github.com/oklog/ulid/v2"
)

type CheckFunc func(ctx context.Context) (Result, error)

type RunnerConfig struct {
	// Timeout bounds a single check invocation.
	Timeout time.Duration
	// Locker optionally extends exclusion across processes.
	Locker  Locker
	LockTTL time.Duration
}

var _ Invoker = (*Runner)(nil)

// Runner is the single entry point for scheduled and manual invocations.
// A check never overlaps with itself; different checks may run concurrently.
type Runner struct {
	checks  map[notice.Kind]CheckFunc
	running map[notice.Kind]*sync.Mutex
	cfg     RunnerConfig
	logger  *slog.Logger
}

func NewRunner(svc *Service, cfg RunnerConfig, logger *slog.Logger) *Runner {
	return NewRunnerWithChecks(map[notice.Kind]CheckFunc{
		notice.KindOverdueLending:      svc.CheckOverdueLendings,
		notice.KindDueSoonLending:      svc.CheckDueSoonLendings,
		notice.KindLowStock:            svc.CheckLowStock,
		notice.KindUpcomingMaintenance: svc.CheckUpcomingMaintenance,
	}, cfg, logger)
}

func NewRunnerWithChecks(checks map[notice.Kind]CheckFunc, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRunTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * cfg.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	running := make(map[notice.Kind]*sync.Mutex, len(checks))
	for kind := range checks {
		running[kind] = &sync.Mutex{}
	}
	return &Runner{
		checks:  checks,
		running: running,
		cfg:     cfg,
		logger:  logger,
	}
}

// Kinds returns the registered checks in run-all order.
func (r *Runner) Kinds() []notice.Kind {
	out := make([]notice.Kind, 0, len(r.checks))
	for _, k := range notice.Kinds {
		if _, ok := r.checks[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (r *Runner) Run(ctx context.Context, kind notice.Kind) (Result, error) {
	check, ok := r.checks[kind]
	if !ok {
		return Result{Check: kind, Err: ErrUnknownCheck}, ErrUnknownCheck
	}

	mu := r.running[kind]
	if !mu.TryLock() {
		return Result{Check: kind, Err: ErrCheckRunning}, ErrCheckRunning
	}
	defer mu.Unlock()

	if r.cfg.Locker != nil {
		release, acquired, err := r.cfg.Locker.TryLock(ctx, lockKey(kind), r.cfg.LockTTL)
		if err != nil {
			err = errs.Wrap(err, "acquire run lock")
			return Result{Check: kind, Err: err}, err
		}
		if !acquired {
			return Result{Check: kind, Err: ErrCheckRunning}, ErrCheckRunning
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("failed to release run lock", "check", kind.String(), "error", err.Error())
			}
		}()
	}

	runID := ulid.Make().String()
	logger := r.logger.With(slog.String("check", kind.String()), slog.String("run_id", runID))

	runCtx, cancel := context.WithTimeout(withLogger(ctx, logger), r.cfg.Timeout)
	defer cancel()

	logger.Info("check started")
	res, err := check(runCtx)
	res.Check = kind
	res.RunID = runID

	if err != nil && errs.Is(err, context.DeadlineExceeded) && errs.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = errs.Mark(err, ErrRunTimeout)
	}
	res.Err = err

	attrs := []any{
		"candidates", res.Candidates,
		"notified", res.Notified,
		"sent", res.Sent,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"duration", res.Duration(),
	}
	switch {
	case errs.Is(err, ErrRunTimeout):
		logger.Warn("check timed out", append(attrs, "timeout", r.cfg.Timeout)...)
	case err != nil:
		logger.Error("check failed", append(attrs, "error", err.Error())...)
	case res.Failed > 0:
		logger.Warn("check completed with delivery failures", attrs...)
	default:
		logger.Info("check completed", attrs...)
	}
	return res, err
}

// RunAll invokes every check once, sequentially, in notice.Kinds order.
// An error in one check is recorded in its Result and does not stop the rest.
func (r *Runner) RunAll(ctx context.Context) Report {
	return r.RunSelected(ctx, r.Kinds())
}

func (r *Runner) RunSelected(ctx context.Context, kinds []notice.Kind) Report {
	report := Report{Results: make([]Result, 0, len(kinds))}
	for _, kind := range kinds {
		res, _ := r.Run(ctx, kind)
		report.Results = append(report.Results, res)
	}
	return report
}

func lockKey(kind notice.Kind) string {
	return "checks:" + kind.String()
}
