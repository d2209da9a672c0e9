//go:build e2e

package runlock_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/infra/runlock"
	"school-notifier/internal/usecase/checks"
	"school-notifier/tests/common/authtest"
	"school-notifier/tests/common/httptest"
	"school-notifier/tests/e2e"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RunLockSuite struct {
	e2e.SharedSuite
	client *redis.Client
	locker *runlock.RedisLocker
}

func (s *RunLockSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()

	client, err := runlock.Connect(context.Background(), s.Config.Redis)
	require.NoError(s.T(), err, "Redis接続に失敗")
	s.client = client
	s.locker = runlock.NewRedisLocker(client)
}

func (s *RunLockSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *RunLockSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
	require.NoError(s.T(), s.client.FlushDB(context.Background()).Err())
}

func TestRunLockSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RunLockSuite))
}

func (s *RunLockSuite) TestRedisLocker() {
	ctx := context.Background()

	s.Run("Normal case: second holder is refused until release", func() {
		t := s.T()
		release, ok, err := s.locker.TryLock(ctx, "checks:test", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = s.locker.TryLock(ctx, "checks:test", time.Minute)
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, release(ctx))

		release, ok, err = s.locker.TryLock(ctx, "checks:test", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, release(ctx))
	})

	s.Run("Edge case: stale release does not free a lock taken over after expiry", func() {
		t := s.T()
		staleRelease, ok, err := s.locker.TryLock(ctx, "checks:ttl", 50*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		require.Eventually(t, func() bool {
			_, ok, err := s.locker.TryLock(ctx, "checks:ttl", time.Minute)
			return err == nil && ok
		}, 2*time.Second, 20*time.Millisecond)

		require.NoError(t, staleRelease(ctx))

		_, ok, err = s.locker.TryLock(ctx, "checks:ttl", time.Minute)
		require.NoError(t, err)
		require.False(t, ok, "current holder must keep the lock")
	})
}

func (s *RunLockSuite) TestRunnerHonoursRedisLock() {
	ctx := context.Background()

	s.Run("Error case: check held by another replica answers 409", func() {
		t := s.T()
		release, ok, err := s.locker.TryLock(ctx, "checks:"+notice.KindLowStock.String(), time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = s.Runner.Run(ctx, notice.KindLowStock)
		require.ErrorIs(t, err, checks.ErrCheckRunning)

		token := authtest.NewJWTHelper(s.Config.JWT).AdminToken(t)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("/api/checks/%s/run", notice.KindLowStock), nil, token)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "already running")

		require.NoError(t, release(ctx))

		res, err := s.Runner.Run(ctx, notice.KindLowStock)
		require.NoError(t, err)
		require.True(t, res.OK())
	})

	s.Run("Normal case: runner releases its lock after the run", func() {
		t := s.T()
		_, err := s.Runner.Run(ctx, notice.KindOverdueLending)
		require.NoError(t, err)

		release, ok, err := s.locker.TryLock(ctx, "checks:"+notice.KindOverdueLending.String(), time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, release(ctx))
	})
}
