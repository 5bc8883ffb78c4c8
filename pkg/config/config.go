package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	TableSession TableSessionConfig
	Password     PasswordConfig
	Rates        RatesConfig
	Razorpay     RazorpayConfig
	Cleanup      CleanupConfig
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
	if err := cfg.Rates.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SERVEX_APP_ENV" required:"true"`
	Port         string `envconfig:"SERVEX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SERVEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SERVEX_LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"SERVEX_FRONTEND_URL" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SERVEX_DB_DSN"`
	Driver string `envconfig:"SERVEX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SERVEX_DB_HOST"`
	LegacyPort     int    `envconfig:"SERVEX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SERVEX_DB_USER"`
	LegacyPassword string `envconfig:"SERVEX_DB_PASSWORD"`
	LegacyName     string `envconfig:"SERVEX_DB_NAME"`
	LegacySSLMode  string `envconfig:"SERVEX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SERVEX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SERVEX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SERVEX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SERVEX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SERVEX_REDIS_URL"`
	Address      string        `envconfig:"SERVEX_REDIS_ADDR"`
	Password     string        `envconfig:"SERVEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"SERVEX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SERVEX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SERVEX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SERVEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SERVEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERVEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SERVEX_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SERVEX_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SERVEX_JWT_EXPIRATION_MINUTES" default:"480"`
	RefreshTokenTTLMinutes int    `envconfig:"SERVEX_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// TableSessionConfig controls the server-issued token binding a cart to a
// single table visit.
type TableSessionConfig struct {
	TTLMinutes int `envconfig:"SERVEX_TABLE_SESSION_TTL_MINUTES" default:"180"`
}

func (t TableSessionConfig) TTL() time.Duration {
	if t.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(t.TTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SERVEX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SERVEX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SERVEX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SERVEX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SERVEX_ARGON_KEY_LEN" default:"32"`
}

// RatesConfig holds the fixed tax and service-charge rates applied to every
// order. Totals are always recomputed server-side from these.
type RatesConfig struct {
	Tax           string `envconfig:"SERVEX_TAX_RATE" default:"0.05"`
	ServiceCharge string `envconfig:"SERVEX_SERVICE_CHARGE_RATE" default:"0.05"`
}

func (r RatesConfig) validate() error {
	for _, raw := range []string{r.Tax, r.ServiceCharge} {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("parsing rate %q: %w", raw, err)
		}
		if rate.IsNegative() {
			return fmt.Errorf("rate %q must be non-negative", raw)
		}
	}
	return nil
}

// TaxRate returns the parsed tax rate. validate() guarantees it parses.
func (r RatesConfig) TaxRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(r.Tax)
	return rate
}

// ServiceChargeRate returns the parsed service-charge rate.
func (r RatesConfig) ServiceChargeRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(r.ServiceCharge)
	return rate
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"SERVEX_RAZORPAY_KEY_ID"`
	KeySecret string        `envconfig:"SERVEX_RAZORPAY_KEY_SECRET"`
	Currency  string        `envconfig:"SERVEX_RAZORPAY_CURRENCY" default:"INR"`
	Timeout   time.Duration `envconfig:"SERVEX_RAZORPAY_TIMEOUT" default:"10s"`
}

type CleanupConfig struct {
	Interval    time.Duration `envconfig:"SERVEX_CLEANUP_INTERVAL" default:"5m"`
	StaleAfter  time.Duration `envconfig:"SERVEX_CLEANUP_STALE_AFTER" default:"30m"`
	MetricsPort string        `envconfig:"SERVEX_CLEANUP_METRICS_PORT" default:"9090"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SERVEX_AUTO_MIGRATE" default:"false"`
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
