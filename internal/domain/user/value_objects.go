package user

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInvalidRole  = errors.New("invalid role")
)

// Email is a bare address. The zero value means no address is on file.
type Email struct {
	value string
}

// NewEmail accepts a bare address only; display-name forms are rejected so the
// stored value can be handed to any mail transport as-is.
func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return Email{}, ErrInvalidEmail
	}
	at := strings.LastIndexByte(s, '@')
	if !strings.Contains(s[at+1:], ".") {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: s}, nil
}

func (e Email) Value() string { return e.value }

func (e Email) IsEmpty() bool { return e.value == "" }

func (e Email) String() string { return e.value }
