//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"school-notifier/internal/domain/user"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTHelper mints tokens the way the school backend does for the admin surface.
type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) service(t *testing.T, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	return jwt.NewService(h.cfg.Secret, duration, append([]jwt.Option{jwt.WithIssuer(h.cfg.Issuer)}, opts...)...)
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := h.service(t).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) AdminToken(t *testing.T) string {
	t.Helper()
	return h.GenerateToken(t, uuid.New(), user.RoleAdmin)
}

// CreateExpiredToken issues a token that expired a day ago.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	past := func() time.Time { return time.Now().Add(-24 * time.Hour) }
	token, err := h.service(t, jwt.WithNow(past)).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}
