package lending

import (
	"errors"
	"fmt"
	"time"
)

var ErrNegativeMoney = errors.New("money cannot be negative")

const day = 24 * time.Hour

// Money is an amount in cents.
type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeMoney
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Times(n int64) Money {
	if n <= 0 {
		return Money{}
	}
	return Money{cents: m.cents * n}
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

// String renders the amount as dollars, e.g. "$3.00".
func (m Money) String() string {
	return fmt.Sprintf("$%d.%02d", m.cents/100, m.cents%100)
}

// FinePolicy charges a flat rate per whole day past the due date.
//
// The fine is a pure function of the due date and the current time. It is
// recomputed from scratch on every assessment and never accumulated, so
// assessing twice with the same inputs yields the same amount.
type FinePolicy struct {
	perDay Money
}

func NewFinePolicy(perDay Money) FinePolicy {
	return FinePolicy{perDay: perDay}
}

func (p FinePolicy) PerDay() Money {
	return p.perDay
}

func (p FinePolicy) FineFor(dueAt, now time.Time) Money {
	return p.perDay.Times(DaysOverdue(dueAt, now))
}

// DaysOverdue is floor((now - dueAt) / 24h), or 0 when now is not past dueAt.
func DaysOverdue(dueAt, now time.Time) int64 {
	if !now.After(dueAt) {
		return 0
	}
	return int64(now.Sub(dueAt) / day)
}
