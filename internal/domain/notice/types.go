package notice

import (
	"errors"
	"strings"
)

var (
	ErrUnknownKind  = errors.New("unknown notice kind")
	ErrNoRecipients = errors.New("message has no recipients")
	ErrEmptySubject = errors.New("message has no subject")
)

type Kind string

const (
	KindOverdueLending      Kind = "overdue_lending"
	KindDueSoonLending      Kind = "due_soon_lending"
	KindLowStock            Kind = "low_stock"
	KindUpcomingMaintenance Kind = "upcoming_maintenance"
)

// Kinds lists every kind in run-all order.
var Kinds = []Kind{
	KindOverdueLending,
	KindDueSoonLending,
	KindLowStock,
	KindUpcomingMaintenance,
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindOverdueLending, KindDueSoonLending, KindLowStock, KindUpcomingMaintenance:
		return true
	default:
		return false
	}
}

// IsBatch reports whether the kind aggregates all matches into one message.
func (k Kind) IsBatch() bool {
	return k == KindLowStock || k == KindUpcomingMaintenance
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	if !k.IsValid() {
		return "", ErrUnknownKind
	}
	return k, nil
}

// Message is a plain-text notice ready for delivery.
type Message struct {
	Kind    Kind
	Subject string
	To      []string
	Body    string
}

func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}
