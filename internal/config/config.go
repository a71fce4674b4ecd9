package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Notification NotificationConfig
	Email        EmailConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(c.DBHost),
		strings.TrimSpace(c.DBPort),
		strings.TrimSpace(c.DBUser),
		c.DBPassword,
		strings.TrimSpace(c.DBName),
		strings.TrimSpace(c.DBSSLMode),
	)
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	TTL       time.Duration
	InboxSize int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

type NotificationConfig struct {
	Workers        int
	QueueSize      int
	RatePerSecond  int
	DeliverTimeout time.Duration
}

type EmailConfig struct {
	SendGridAPIKey  string
	SendGridBaseURL string
	FromEmail       string
	FromName        string
	Timeout         time.Duration
	MaxRetries      int
	PublicBaseURL   string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func setDefaults(v *viper.Viper) {

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("DB_POOL_MAX_CONNS", 10)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_TTL", "720h")
	v.SetDefault("REDIS_INBOX_SIZE", 100)

	v.SetDefault("JWT_ACCESS_EXPIRES_IN", "15m")

	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 1024)
	v.SetDefault("NOTIFY_RATE_PER_SECOND", 0)
	v.SetDefault("NOTIFY_DELIVER_TIMEOUT", "10s")

	v.SetDefault("SENDGRID_BASE_URL", "https://api.sendgrid.com")
	v.SetDefault("SENDGRID_TIMEOUT", "30s")
	v.SetDefault("SENDGRID_MAX_RETRIES", 4)
}

// Load reads configuration from the environment, optionally overlaid on a
// config.yaml found in the working directory.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg.App = AppConfig{
		AppName:       req("APP_NAME"),
		Environment:   req("APP_ENV"),
		HTTPPort:      req("HTTP_PORT"),
		MigrationsDir: opt("MIGRATIONS_DIR"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
	}

	cfg.Redis = RedisConfig{
		Host:      opt("REDIS_HOST"),
		Port:      opt("REDIS_PORT"),
		Password:  opt("REDIS_PASSWORD"),
		TTL:       v.GetDuration("REDIS_TTL"),
		InboxSize: v.GetInt("REDIS_INBOX_SIZE"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: v.GetDuration("JWT_ACCESS_EXPIRES_IN"),
	}

	cfg.Notification = NotificationConfig{
		Workers:        v.GetInt("NOTIFY_WORKERS"),
		QueueSize:      v.GetInt("NOTIFY_QUEUE_SIZE"),
		RatePerSecond:  v.GetInt("NOTIFY_RATE_PER_SECOND"),
		DeliverTimeout: v.GetDuration("NOTIFY_DELIVER_TIMEOUT"),
	}

	cfg.Email = EmailConfig{
		SendGridAPIKey:  opt("SENDGRID_API_KEY"),
		SendGridBaseURL: opt("SENDGRID_BASE_URL"),
		FromEmail:       opt("SENDGRID_FROM_EMAIL"),
		FromName:        opt("SENDGRID_FROM_NAME"),
		Timeout:         v.GetDuration("SENDGRID_TIMEOUT"),
		MaxRetries:      v.GetInt("SENDGRID_MAX_RETRIES"),
		PublicBaseURL:   opt("PUBLIC_BASE_URL"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(c.App.Environment) {
	case "prod", "production":
		return true
	default:
		return false
	}
}
