package scheduler

import (
	"fmt"
	"time"
)

// Schedule computes the next firing strictly after from.
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

type dailySchedule struct {
	hour   int
	minute int
	loc    *time.Location
}

// DailyAt fires once a day at hour:minute in loc. A nil loc means UTC.
func DailyAt(hour, minute int, loc *time.Location) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	return dailySchedule{hour: hour, minute: minute, loc: loc}
}

func (d dailySchedule) Next(from time.Time) time.Time {
	local := from.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(from) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, d.minute, 0, 0, d.loc)
	}
	return next
}

func (d dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d %s", d.hour, d.minute, d.loc)
}

type intervalSchedule struct {
	every time.Duration
}

// Every fires d after the previous run finished.
func Every(d time.Duration) Schedule {
	return intervalSchedule{every: d}
}

func (i intervalSchedule) Next(from time.Time) time.Time {
	return from.Add(i.every)
}

func (i intervalSchedule) String() string {
	return "every " + i.every.String()
}
