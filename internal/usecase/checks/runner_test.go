//go:build unit

package checks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/checks"
	checksmock "school-notifier/tests/mock/checks"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func okCheck(calls *int) checks.CheckFunc {
	return func(ctx context.Context) (checks.Result, error) {
		*calls++
		return checks.Result{Candidates: 1, Notified: 1, Sent: 1}, nil
	}
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("未登録のチェックはErrUnknownCheck", func(t *testing.T) {
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{}, checks.RunnerConfig{}, discardLogger())

		_, err := r.Run(ctx, notice.KindLowStock)

		assert.True(t, errs.Is(err, checks.ErrUnknownCheck))
	})

	t.Run("結果に種別と実行IDを付与する", func(t *testing.T) {
		var calls int
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindLowStock: okCheck(&calls),
		}, checks.RunnerConfig{}, discardLogger())

		res, err := r.Run(ctx, notice.KindLowStock)
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Equal(t, notice.KindLowStock, res.Check)
		_, parseErr := ulid.Parse(res.RunID)
		assert.NoError(t, parseErr)
	})

	t.Run("同じチェックは重複して実行されない", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var (
			otherCalls   int
			overdueCalls atomic.Int32
		)
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindOverdueLending: func(ctx context.Context) (checks.Result, error) {
				if overdueCalls.Add(1) == 1 {
					close(started)
					<-release
				}
				return checks.Result{}, nil
			},
			notice.KindLowStock: okCheck(&otherCalls),
		}, checks.RunnerConfig{}, discardLogger())

		done := make(chan error, 1)
		go func() {
			_, err := r.Run(ctx, notice.KindOverdueLending)
			done <- err
		}()
		<-started

		_, err := r.Run(ctx, notice.KindOverdueLending)
		assert.True(t, errs.Is(err, checks.ErrCheckRunning))

		_, err = r.Run(ctx, notice.KindLowStock)
		assert.NoError(t, err, "different checks may run concurrently")
		assert.Equal(t, 1, otherCalls)

		close(release)
		require.NoError(t, <-done)

		_, err = r.Run(ctx, notice.KindOverdueLending)
		assert.NoError(t, err, "the check can run again once the first run finished")
		assert.Equal(t, int32(2), overdueCalls.Load())
	})

	t.Run("タイムアウトするとErrRunTimeoutを返す", func(t *testing.T) {
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindDueSoonLending: func(ctx context.Context) (checks.Result, error) {
				<-ctx.Done()
				return checks.Result{Candidates: 3, Notified: 1}, ctx.Err()
			},
		}, checks.RunnerConfig{Timeout: 20 * time.Millisecond}, discardLogger())

		res, err := r.Run(ctx, notice.KindDueSoonLending)

		require.Error(t, err)
		assert.True(t, errs.Is(err, checks.ErrRunTimeout))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Equal(t, 1, res.Notified)
	})

	t.Run("呼び出し元のキャンセルはタイムアウト扱いにしない", func(t *testing.T) {
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindDueSoonLending: func(ctx context.Context) (checks.Result, error) {
				return checks.Result{}, ctx.Err()
			},
		}, checks.RunnerConfig{}, discardLogger())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := r.Run(cctx, notice.KindDueSoonLending)

		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, errs.Is(err, checks.ErrRunTimeout))
	})

	t.Run("分散ロックを取得できなければ実行しない", func(t *testing.T) {
		var calls int
		locker := checksmock.NewMockLocker(gomock.NewController(t))
		locker.EXPECT().TryLock(gomock.Any(), "checks:low_stock", gomock.Any()).Return(nil, false, nil)
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindLowStock: okCheck(&calls),
		}, checks.RunnerConfig{Locker: locker}, discardLogger())

		_, err := r.Run(ctx, notice.KindLowStock)

		assert.True(t, errs.Is(err, checks.ErrCheckRunning))
		assert.Equal(t, 0, calls)
	})

	t.Run("分散ロックは実行後に解放される", func(t *testing.T) {
		var calls int
		var released int
		locker := checksmock.NewMockLocker(gomock.NewController(t))
		locker.EXPECT().TryLock(gomock.Any(), "checks:low_stock", gomock.Any()).
			Return(func(context.Context) error {
				released++
				return nil
			}, true, nil)
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindLowStock: okCheck(&calls),
		}, checks.RunnerConfig{Locker: locker}, discardLogger())

		_, err := r.Run(ctx, notice.KindLowStock)
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, released)
	})

	t.Run("ロック取得のエラーはそのまま返す", func(t *testing.T) {
		var calls int
		locker := checksmock.NewMockLocker(gomock.NewController(t))
		locker.EXPECT().TryLock(gomock.Any(), "checks:low_stock", gomock.Any()).
			Return(nil, false, errors.New("redis: connection refused"))
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindLowStock: okCheck(&calls),
		}, checks.RunnerConfig{Locker: locker}, discardLogger())

		_, err := r.Run(ctx, notice.KindLowStock)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, 0, calls)
	})
}

func TestRunner_RunAll(t *testing.T) {
	ctx := context.Background()

	t.Run("1つのチェックが失敗しても残りを実行する", func(t *testing.T) {
		var order []notice.Kind
		record := func(kind notice.Kind, err error) checks.CheckFunc {
			return func(ctx context.Context) (checks.Result, error) {
				order = append(order, kind)
				return checks.Result{}, err
			}
		}
		boom := errors.New("boom")
		r := checks.NewRunnerWithChecks(map[notice.Kind]checks.CheckFunc{
			notice.KindOverdueLending:      record(notice.KindOverdueLending, boom),
			notice.KindDueSoonLending:      record(notice.KindDueSoonLending, nil),
			notice.KindLowStock:            record(notice.KindLowStock, nil),
			notice.KindUpcomingMaintenance: record(notice.KindUpcomingMaintenance, nil),
		}, checks.RunnerConfig{}, discardLogger())

		report := r.RunAll(ctx)

		assert.Equal(t, notice.Kinds, order)
		require.Len(t, report.Results, 4)
		assert.False(t, report.OK())

		failed, ok := report.Result(notice.KindOverdueLending)
		require.True(t, ok)
		assert.ErrorIs(t, failed.Err, boom)

		low, ok := report.Result(notice.KindLowStock)
		require.True(t, ok)
		assert.NoError(t, low.Err)
	})

	t.Run("実際のサービスで全チェックを実行できる", func(t *testing.T) {
		f := newFixture(t)
		f.acceptAll()
		r := checks.NewRunner(f.svc, checks.RunnerConfig{}, discardLogger())

		report := r.RunAll(ctx)

		assert.True(t, report.OK())
		assert.Equal(t, notice.Kinds, r.Kinds())
		require.Len(t, report.Results, len(notice.Kinds))
		for i, res := range report.Results {
			assert.Equal(t, notice.Kinds[i], res.Check)
			assert.NotEmpty(t, res.RunID)
		}
	})
}
