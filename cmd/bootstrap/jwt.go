package bootstrap

import (
	"time"

	"school-notifier/internal/pkg/config"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

// Tolerated clock skew against the token issuer.
const jwtLeeway = 30 * time.Second

func NewJWTService(cfg config.JWTConfig) (*jwt.Service, error) {
	duration, err := time.ParseDuration(cfg.Duration)
	if err != nil {
		return nil, errs.Wrap(err, "invalid JWT_DURATION")
	}
	return jwt.NewService(cfg.Secret, duration,
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithLeeway(jwtLeeway),
	), nil
}
