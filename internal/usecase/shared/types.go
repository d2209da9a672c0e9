package shared

import (
	"time"

	"school-notifier/internal/pkg/errs"

	"github.com/google/uuid"
)

// InAppNotification is the inbox row written alongside a delivered notice.
type InAppNotification struct {
	UserID      uuid.UUID
	Kind        string
	Title       string
	Content     string
	ReferenceID *uuid.UUID
	CreatedAt   time.Time
}

// ErrNotFound is matched by repository errors for missing rows.
var ErrNotFound = errs.New("record not found")
