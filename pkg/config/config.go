package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "TRADELINK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TRADELINK_DB_DSN"
	EnvDBHost = "TRADELINK_DB_HOST"
	EnvDBUser = "TRADELINK_DB_USER"
	EnvDBName = "TRADELINK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Settlement    SettlementConfig
	Identity      IdentityConfig
	Cache         CacheConfig
	Flags         FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Settlement.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRADELINK_APP_ENV" required:"true"`
	Port         string `envconfig:"TRADELINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRADELINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRADELINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRADELINK_DB_DSN"`
	Driver string `envconfig:"TRADELINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRADELINK_DB_HOST"`
	LegacyPort     int    `envconfig:"TRADELINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRADELINK_DB_USER"`
	LegacyPassword string `envconfig:"TRADELINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRADELINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRADELINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRADELINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRADELINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRADELINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRADELINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRADELINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRADELINK_REDIS_ADDR"`
	Password     string        `envconfig:"TRADELINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRADELINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRADELINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRADELINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRADELINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRADELINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRADELINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TRADELINK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TRADELINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TRADELINK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TRADELINK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	SignInWindow        time.Duration `envconfig:"TRADELINK_AUTH_RATE_LIMIT_SIGNIN_WINDOW" default:"1m"`
	SignInIPLimit       int           `envconfig:"TRADELINK_AUTH_RATE_LIMIT_SIGNIN_IP_LIMIT" default:"20"`
	AdminLoginWindow    time.Duration `envconfig:"TRADELINK_AUTH_RATE_LIMIT_ADMIN_LOGIN_WINDOW" default:"1m"`
	AdminLoginIPLimit   int           `envconfig:"TRADELINK_AUTH_RATE_LIMIT_ADMIN_LOGIN_IP_LIMIT" default:"20"`
	AdminLoginUserLimit int           `envconfig:"TRADELINK_AUTH_RATE_LIMIT_ADMIN_LOGIN_EMAIL_LIMIT" default:"5"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TRADELINK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TRADELINK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TRADELINK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TRADELINK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TRADELINK_ARGON_KEY_LEN" default:"32"`
}

// SettlementConfig carries the platform-wide payout parameters.
type SettlementConfig struct {
	PlatformFeeRate  string `envconfig:"TRADELINK_SETTLEMENT_FEE_RATE" default:"0.05"`
	PayoutOffsetDays int    `envconfig:"TRADELINK_SETTLEMENT_PAYOUT_OFFSET_DAYS" default:"7"`
}

// FeeRate parses the configured platform fee rate.
func (s SettlementConfig) FeeRate() decimal.Decimal {
	rate, err := decimal.NewFromString(s.PlatformFeeRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (s SettlementConfig) validate() error {
	rate, err := decimal.NewFromString(s.PlatformFeeRate)
	if err != nil {
		return fmt.Errorf("invalid settlement fee rate %q: %w", s.PlatformFeeRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("settlement fee rate %q must be within [0, 1]", s.PlatformFeeRate)
	}
	if s.PayoutOffsetDays < 0 {
		return fmt.Errorf("payout offset days must not be negative")
	}
	return nil
}

// IdentityConfig points at the external identity provider used for
// sign-in token exchange and account removal.
type IdentityConfig struct {
	BaseURL string        `envconfig:"TRADELINK_IDENTITY_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"TRADELINK_IDENTITY_API_KEY" required:"true"`
	Timeout time.Duration `envconfig:"TRADELINK_IDENTITY_TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	InvalidationChannel string `envconfig:"TRADELINK_CACHE_INVALIDATION_CHANNEL" default:"tl:invalidations"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRADELINK_AUTO_MIGRATE" default:"false"`
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
