package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "BREWTAB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Tables       TablesConfig
	Pricing      PricingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"BREWTAB_APP_ENV" required:"true"`
	Port         string `envconfig:"BREWTAB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BREWTAB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREWTAB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BREWTAB_DB_DSN"`
	Driver string `envconfig:"BREWTAB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BREWTAB_DB_HOST"`
	Port     int    `envconfig:"BREWTAB_DB_PORT" default:"5432"`
	User     string `envconfig:"BREWTAB_DB_USER"`
	Password string `envconfig:"BREWTAB_DB_PASSWORD"`
	Name     string `envconfig:"BREWTAB_DB_NAME"`
	SSLMode  string `envconfig:"BREWTAB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREWTAB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREWTAB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREWTAB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREWTAB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREWTAB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREWTAB_REDIS_ADDR"`
	Password     string        `envconfig:"BREWTAB_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREWTAB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREWTAB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREWTAB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREWTAB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREWTAB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREWTAB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BREWTAB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BREWTAB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BREWTAB_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"BREWTAB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type TablesConfig struct {
	SessionTTL time.Duration `envconfig:"BREWTAB_TABLE_SESSION_TTL" default:"3h"`
}

type PricingConfig struct {
	Currency    string        `envconfig:"BREWTAB_PRICING_CURRENCY" default:"USD"`
	SnapshotTTL time.Duration `envconfig:"BREWTAB_PRICING_SNAPSHOT_TTL" default:"30s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BREWTAB_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"BREWTAB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"BREWTAB_PUBSUB_ORDERS_TOPIC" default:"bt-order-events"`
	OrdersSubscription string `envconfig:"BREWTAB_PUBSUB_ORDERS_SUBSCRIPTION" default:"bt-order-events-notify"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BREWTAB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, pair := range []struct {
		env   string
		value string
	}{
		{"BREWTAB_DB_HOST", db.Host},
		{"BREWTAB_DB_USER", db.User},
		{"BREWTAB_DB_NAME", db.Name},
	} {
		if pair.value == "" {
			missing = append(missing, pair.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either BREWTAB_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
