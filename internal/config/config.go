package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Accounts     AccountsConfig
	Applications ApplicationsConfig
	Session      SessionConfig
	Notification NotificationConfig
	Media        MediaConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicURL             string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
	Env     string
	Version string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	// TokenSecret keys the emailed verification and reset links.
	TokenSecret        string
	VerifyTokenTTL     time.Duration
	ResetTokenTTL      time.Duration
	TokenBucket        time.Duration
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
}

// AccountsConfig gates registration.
type AccountsConfig struct {
	EnforceMinAge     bool
	MinimumAgeAllowed int
}

// ApplicationsConfig controls the intake form.
type ApplicationsConfig struct {
	MinDaysAllowed int
	IdempotencyTTL time.Duration
}

// SessionConfig configures the cookie session used by the link flows.
type SessionConfig struct {
	CookieName   string
	Expiration   time.Duration
	CookieSecure bool
}

// NotificationConfig holds outbound mail settings.
type NotificationConfig struct {
	EmailFrom string
}

// MediaConfig points at the object store for profile pictures.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UploadURLTTL   time.Duration
	MaxPictureSize int64
}

// Enabled reports whether picture uploads are configured.
func (m MediaConfig) Enabled() bool {
	return m.Bucket != ""
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	env := getEnv("APP_ENV", "development")
	port := getEnv("APP_PORT", "8080")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "recruitment-service"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  port,
			Version:               getEnv("APP_VERSION", "dev"),
			PublicURL:             strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:"+port), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "rs"),
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("APP_NAME", "recruitment-service"),
			Env:     env,
			Version: getEnv("APP_VERSION", "dev"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			TokenSecret:           getEnv("AUTH_TOKEN_SECRET", "dev-token-secret"),
			VerifyTokenTTL:        getEnvAsDuration("AUTH_VERIFY_TOKEN_TTL", 72*time.Hour),
			ResetTokenTTL:         getEnvAsDuration("AUTH_RESET_TOKEN_TTL", 24*time.Hour),
			TokenBucket:           getEnvAsDuration("AUTH_TOKEN_BUCKET", time.Minute),
			LoginMaxAttempts:      getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 10),
			LoginAttemptWindow:    getEnvAsDuration("AUTH_LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
		},
		Accounts: AccountsConfig{
			EnforceMinAge:     getEnvAsBool("ENFORCE_MIN_AGE", true),
			MinimumAgeAllowed: getEnvAsInt("MINIMUM_AGE_ALLOWED", 18),
		},
		Applications: ApplicationsConfig{
			MinDaysAllowed: getEnvAsInt("MIN_DAYS_ALLOWED", 30),
			IdempotencyTTL: getEnvAsDuration("APPLICATIONS_IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "session_id"),
			Expiration:   getEnvAsDuration("SESSION_EXPIRATION", 2*time.Hour),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", env == "production"),
		},
		Notification: NotificationConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
		},
		Media: MediaConfig{
			Bucket:         os.Getenv("MEDIA_S3_BUCKET"),
			Region:         getEnv("MEDIA_S3_REGION", "us-east-1"),
			Endpoint:       os.Getenv("MEDIA_S3_ENDPOINT"),
			AccessKey:      os.Getenv("MEDIA_S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("MEDIA_S3_SECRET_KEY"),
			UploadURLTTL:   getEnvAsDuration("MEDIA_UPLOAD_URL_TTL", 15*time.Minute),
			MaxPictureSize: int64(getEnvAsInt("MEDIA_MAX_PICTURE_BYTES", 5<<20)),
		},
	}

	if cfg.App.Env == "production" {
		if cfg.Auth.JWTSecret == "dev-secret" || cfg.Auth.TokenSecret == "dev-token-secret" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET and AUTH_TOKEN_SECRET must be set in production")
		}
	}
	if cfg.Applications.MinDaysAllowed < 0 {
		return nil, fmt.Errorf("invalid MIN_DAYS_ALLOWED: %d", cfg.Applications.MinDaysAllowed)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
