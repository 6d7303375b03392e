package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "zapflow"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ZAPFLOW_DB_DSN"
	EnvDBHost = "ZAPFLOW_DB_HOST"
	EnvDBUser = "ZAPFLOW_DB_USER"
	EnvDBName = "ZAPFLOW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Geocoding    GeocodingConfig
	Routing      RoutingConfig
	MercadoPago  MercadoPagoConfig
	Board        BoardConfig
	Checkout     CheckoutConfig
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
	Env          string `envconfig:"ZAPFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"ZAPFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ZAPFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ZAPFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ZAPFLOW_DB_DSN"`
	Driver string `envconfig:"ZAPFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ZAPFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"ZAPFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ZAPFLOW_DB_USER"`
	LegacyPassword string `envconfig:"ZAPFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"ZAPFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"ZAPFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ZAPFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ZAPFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ZAPFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZAPFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZAPFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ZAPFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"ZAPFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZAPFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZAPFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZAPFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZAPFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZAPFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZAPFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GeocodingConfig struct {
	BaseURL string        `envconfig:"ZAPFLOW_GEOCODING_BASE_URL" default:"https://cep.awesomeapi.com.br"`
	Timeout time.Duration `envconfig:"ZAPFLOW_GEOCODING_TIMEOUT" default:"5s"`
}

type RoutingConfig struct {
	BaseURL string        `envconfig:"ZAPFLOW_ROUTING_BASE_URL" default:"https://router.project-osrm.org"`
	Timeout time.Duration `envconfig:"ZAPFLOW_ROUTING_TIMEOUT" default:"5s"`
}

type MercadoPagoConfig struct {
	BaseURL string        `envconfig:"ZAPFLOW_MERCADOPAGO_BASE_URL" default:"https://api.mercadopago.com"`
	Timeout time.Duration `envconfig:"ZAPFLOW_MERCADOPAGO_TIMEOUT" default:"10s"`
}

type BoardConfig struct {
	EventBuffer       int           `envconfig:"ZAPFLOW_BOARD_EVENT_BUFFER" default:"64"`
	HeartbeatInterval time.Duration `envconfig:"ZAPFLOW_BOARD_HEARTBEAT_INTERVAL" default:"25s"`
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"ZAPFLOW_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate  bool `envconfig:"ZAPFLOW_AUTO_MIGRATE" default:"false"`
	EnforceHours bool `envconfig:"ZAPFLOW_ENFORCE_BUSINESS_HOURS" default:"true"`
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
