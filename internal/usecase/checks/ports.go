package checks

import (
	"context"
	"time"

	"school-notifier/internal/domain/notice"
)

// Sender delivers a composed notice. A nil error means the transport accepted it.
type Sender interface {
	Send(ctx context.Context, msg notice.Message) error
}

// Locker excludes concurrent runs of the same check across processes.
// TryLock returns ok=false when another holder owns key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Invoker triggers checks on demand. Runner implements it.
type Invoker interface {
	Run(ctx context.Context, kind notice.Kind) (Result, error)
	RunAll(ctx context.Context) Report
	RunSelected(ctx context.Context, kinds []notice.Kind) Report
}
