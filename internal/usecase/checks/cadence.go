package checks

import "time"

// Default cadences and windows. Config may override each one.
const (
	OverdueCheckHour      = 9
	DueSoonCheckHour      = 10
	LowStockCheckInterval = 4 * time.Hour
	MaintenanceCheckHour  = 8

	DueSoonWindow     = 48 * time.Hour
	MaintenanceWindow = 7 * 24 * time.Hour

	DefaultFinePerDayCents = 100
	DefaultRunTimeout      = 2 * time.Minute
)
