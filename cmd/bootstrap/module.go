package bootstrap

import (
	"school-notifier/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// CoreModule wires everything a one-shot check run needs.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	AutoMigrateModule,
	MailerModule,
	RunLockModule,
	JWTModule,
	components.PersistenceModule,
	components.UseCaseModule,
)

// Module is the long-running server: core plus scheduler and HTTP surface.
var Module = fx.Options(
	CoreModule,
	SchedulerModule,
	components.HandlerModule,
)
