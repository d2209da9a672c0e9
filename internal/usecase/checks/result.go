package checks

import (
	"time"

	"school-notifier/internal/domain/notice"
)

// Result summarises one invocation of a check.
//
// Notified counts records whose flag was set. Sent counts delivered messages,
// which differs from Notified for the batch checks. Skipped counts candidates
// that no longer matched under lock or had no address on file. Failed counts
// per-record delivery or store errors.
type Result struct {
	Check      notice.Kind
	RunID      string
	Candidates int
	Notified   int
	Sent       int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r Result) OK() bool {
	return r.Err == nil && r.Failed == 0
}

// Report is the outcome of a run-all invocation, in execution order.
type Report struct {
	Results []Result
}

func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

func (r Report) Result(kind notice.Kind) (Result, bool) {
	for _, res := range r.Results {
		if res.Check == kind {
			return res, true
		}
	}
	return Result{}, false
}
