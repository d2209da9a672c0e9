package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is read-only to the notifier. It is only used to address notices.
type User struct {
	id        uuid.UUID
	firstName string
	lastName  string
	email     Email
	role      Role
	createdAt time.Time
}

func NewUser(firstName, lastName string, email Email, role Role) *User {
	return &User{
		id:        uuid.New(),
		firstName: firstName,
		lastName:  lastName,
		email:     email,
		role:      role,
	}
}

// ReconstructUser trusts the stored address; an empty address means none is on file.
func ReconstructUser(id uuid.UUID, firstName, lastName, email string, role Role, createdAt time.Time) *User {
	return &User{
		id:        id,
		firstName: firstName,
		lastName:  lastName,
		email:     Email{value: strings.TrimSpace(email)},
		role:      role,
		createdAt: createdAt,
	}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) FirstName() string    { return u.firstName }
func (u *User) LastName() string     { return u.lastName }
func (u *User) Email() Email         { return u.email }
func (u *User) Role() Role           { return u.role }
func (u *User) CreatedAt() time.Time { return u.createdAt }

func (u *User) HasEmail() bool {
	return !u.email.IsEmpty()
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

// Recipients returns the distinct non-empty addresses of users, in input order.
func Recipients(users []*User) []string {
	seen := make(map[string]struct{}, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u == nil || !u.HasEmail() {
			continue
		}
		addr := u.email.Value()
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}
