package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
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
	Env          string `envconfig:"NOORMART_APP_ENV" required:"true"`
	Port         string `envconfig:"NOORMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NOORMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOORMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NOORMART_DB_DSN"`
	Driver string `envconfig:"NOORMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NOORMART_DB_HOST"`
	LegacyPort     int    `envconfig:"NOORMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NOORMART_DB_USER"`
	LegacyPassword string `envconfig:"NOORMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"NOORMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"NOORMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NOORMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOORMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOORMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOORMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOORMART_REDIS_URL"`
	Address      string        `envconfig:"NOORMART_REDIS_ADDR"`
	Password     string        `envconfig:"NOORMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOORMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOORMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOORMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOORMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOORMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOORMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CheckoutConfig struct {
	DraftTTLMinutes int `envconfig:"NOORMART_CHECKOUT_DRAFT_TTL_MINUTES" default:"15"`
}

// DraftTTL returns the checkout draft lifetime configured in minutes.
func (c CheckoutConfig) DraftTTL() time.Duration {
	if c.DraftTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.DraftTTLMinutes) * time.Minute
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"NOORMART_CRON_INTERVAL" default:"5m"`
	LockTTL         time.Duration `envconfig:"NOORMART_CRON_LOCK_TTL" default:"4m"`
	ExpiryBatchSize int           `envconfig:"NOORMART_CRON_EXPIRY_BATCH_SIZE" default:"200"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NOORMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NOORMART_AUTO_MIGRATE" default:"false"`
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
