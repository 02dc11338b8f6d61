package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "USERMGMT"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "USERMGMT_APP_ENV"
	EnvPort     = "USERMGMT_APP_PORT"
	EnvDBDSN    = "USERMGMT_DB_DSN"
	EnvDBHost   = "USERMGMT_DB_HOST"
	EnvDBUser   = "USERMGMT_DB_USER"
	EnvDBName   = "USERMGMT_DB_NAME"
	EnvRedisURL = "USERMGMT_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Mailer       MailerConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"USERMGMT_APP_ENV" required:"true"`
	Port         string `envconfig:"USERMGMT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"USERMGMT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"USERMGMT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"USERMGMT_DB_DSN"`
	Driver string `envconfig:"USERMGMT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"USERMGMT_DB_HOST"`
	LegacyPort     int    `envconfig:"USERMGMT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"USERMGMT_DB_USER"`
	LegacyPassword string `envconfig:"USERMGMT_DB_PASSWORD"`
	LegacyName     string `envconfig:"USERMGMT_DB_NAME"`
	LegacySSLMode  string `envconfig:"USERMGMT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"USERMGMT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"USERMGMT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"USERMGMT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"USERMGMT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"USERMGMT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"USERMGMT_REDIS_ADDR"`
	Password     string        `envconfig:"USERMGMT_REDIS_PASSWORD"`
	DB           int           `envconfig:"USERMGMT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"USERMGMT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"USERMGMT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"USERMGMT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"USERMGMT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"USERMGMT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MailerConfig struct {
	Driver      string `envconfig:"USERMGMT_MAILER_DRIVER" default:"log"`
	FromName    string `envconfig:"USERMGMT_MAILER_FROM_NAME" default:"User Management"`
	FromAddress string `envconfig:"USERMGMT_MAILER_FROM_ADDRESS" default:"no-reply@usermgmt.local"`

	AWSRegion    string `envconfig:"USERMGMT_AWS_REGION" default:"us-east-1"`
	AWSAccessKey string `envconfig:"USERMGMT_AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `envconfig:"USERMGMT_AWS_SECRET_ACCESS_KEY"`
}

// UsesSES reports whether the SES driver is selected.
func (m MailerConfig) UsesSES() bool {
	return strings.EqualFold(m.Driver, "ses")
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"USERMGMT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
