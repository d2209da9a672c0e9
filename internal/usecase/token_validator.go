package usecase

import (
	"school-notifier/internal/domain/user"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator resolves a bearer token to the caller's identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, user.Role, error)
}

type jwtTokenValidator struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &jwtTokenValidator{jwtService: jwtService}
}

// ValidateToken rejects tokens whose role claim is not a known role, so a
// token minted for another system cannot pass RequireRole by accident.
func (v *jwtTokenValidator) ValidateToken(tokenString string) (uuid.UUID, user.Role, error) {
	claims, err := v.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", errs.Wrap(err, "validate access token")
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", errs.Wrapf(err, "token for %s", claims.UserID)
	}
	return claims.UserID, role, nil
}
