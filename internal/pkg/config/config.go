package config

import (
	"fmt"
	"time"

	"school-notifier/internal/pkg/errs"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	JWT    JWTConfig
	Mail   MailConfig
	Checks ChecksConfig
	Redis  RedisConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	DBName      string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone    string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
	// Issuer is checked on every admin token when non-empty.
	Issuer string `envconfig:"JWT_ISSUER" default:"school-notifier"`
}

const (
	MailTransportLog      = "log"
	MailTransportPostmark = "postmark"
	MailTransportSendgrid = "sendgrid"
)

type MailConfig struct {
	Transport            string `envconfig:"MAIL_TRANSPORT" default:"log"`
	FromName             string `envconfig:"MAIL_FROM_NAME" default:"School Administration"`
	FromAddress          string `envconfig:"MAIL_FROM_ADDRESS" default:"noreply@school.com"`
	ReplyTo              string `envconfig:"MAIL_REPLY_TO"`
	PostmarkServerToken  string `envconfig:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `envconfig:"POSTMARK_ACCOUNT_TOKEN"`
	SendgridAPIKey       string `envconfig:"SENDGRID_API_KEY"`
}

// Defaults mirror the cadence constants in usecase/checks.
type ChecksConfig struct {
	Enabled           bool          `envconfig:"CHECKS_ENABLED" default:"true"`
	TimeZone          string        `envconfig:"CHECKS_TIMEZONE" default:"UTC"`
	OverdueHour       int           `envconfig:"CHECKS_OVERDUE_HOUR" default:"9"`
	DueSoonHour       int           `envconfig:"CHECKS_DUE_SOON_HOUR" default:"10"`
	LowStockInterval  time.Duration `envconfig:"CHECKS_LOW_STOCK_INTERVAL" default:"4h"`
	MaintenanceHour   int           `envconfig:"CHECKS_MAINTENANCE_HOUR" default:"8"`
	DueSoonWindow     time.Duration `envconfig:"CHECKS_DUE_SOON_WINDOW" default:"48h"`
	MaintenanceWindow time.Duration `envconfig:"CHECKS_MAINTENANCE_WINDOW" default:"168h"`
	FinePerDayCents   int64         `envconfig:"CHECKS_FINE_PER_DAY_CENTS" default:"100"`
	RunTimeout        time.Duration `envconfig:"CHECKS_RUN_TIMEOUT" default:"2m"`
}

type RedisConfig struct {
	URL     string        `envconfig:"REDIS_URL"`
	LockTTL time.Duration `envconfig:"REDIS_LOCK_TTL" default:"10m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c ChecksConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mail),
		validation.Field(&c.Checks),
	)
}

func (c MailConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Transport, validation.Required,
			validation.In(MailTransportLog, MailTransportPostmark, MailTransportSendgrid)),
		validation.Field(&c.FromAddress, validation.Required),
		validation.Field(&c.PostmarkServerToken,
			validation.When(c.Transport == MailTransportPostmark, validation.Required)),
		validation.Field(&c.PostmarkAccountToken,
			validation.When(c.Transport == MailTransportPostmark, validation.Required)),
		validation.Field(&c.SendgridAPIKey,
			validation.When(c.Transport == MailTransportSendgrid, validation.Required)),
	)
}

func (c ChecksConfig) Validate() error {
	hour := []validation.Rule{validation.Min(0), validation.Max(23)}
	positive := []validation.Rule{validation.Required, validation.Min(time.Second)}
	return validation.ValidateStruct(&c,
		validation.Field(&c.TimeZone, validation.Required, validation.By(validLocation)),
		validation.Field(&c.OverdueHour, hour...),
		validation.Field(&c.DueSoonHour, hour...),
		validation.Field(&c.MaintenanceHour, hour...),
		validation.Field(&c.LowStockInterval, positive...),
		validation.Field(&c.DueSoonWindow, positive...),
		validation.Field(&c.MaintenanceWindow, positive...),
		validation.Field(&c.RunTimeout, positive...),
		validation.Field(&c.FinePerDayCents, validation.Min(int64(0))),
	)
}

func validLocation(value any) error {
	name, _ := value.(string)
	if _, err := time.LoadLocation(name); err != nil {
		return validation.NewError("validation_timezone", "must be a valid IANA time zone")
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, errs.Wrap(err, "failed to process env config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errs.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 5,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
			Issuer:   "school-notifier",
		},
		Mail: MailConfig{
			Transport:   MailTransportLog,
			FromName:    "School Administration",
			FromAddress: "noreply@school.com",
		},
		Checks: ChecksConfig{
			Enabled:           false,
			TimeZone:          "UTC",
			OverdueHour:       9,
			DueSoonHour:       10,
			LowStockInterval:  4 * time.Hour,
			MaintenanceHour:   8,
			DueSoonWindow:     48 * time.Hour,
			MaintenanceWindow: 7 * 24 * time.Hour,
			FinePerDayCents:   100,
			RunTimeout:        30 * time.Second,
		},
		Redis: RedisConfig{
			LockTTL: time.Minute,
		},
	}
}
