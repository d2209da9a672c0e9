package checks

import "school-notifier/internal/pkg/errs"

var (
	ErrQueryFailed    = errs.New("candidate query failed")
	ErrDeliveryFailed = errs.New("notice delivery failed")
	ErrCheckRunning   = errs.New("check already running")
	ErrUnknownCheck   = errs.New("unknown check")
	ErrRunTimeout     = errs.New("check run timed out")
)
