package bootstrap

import (
	"school-notifier/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
	ConfigSections,
)

// ConfigSections exposes the sections components depend on, so a test can
// provide its own config.Config and keep the rest of the graph unchanged.
var ConfigSections = fx.Provide(
	func(c config.Config) config.ChecksConfig { return c.Checks },
	func(c config.Config) config.MailConfig { return c.Mail },
	func(c config.Config) config.JWTConfig { return c.JWT },
)
