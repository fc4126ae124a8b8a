package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultAppEnv             = "dev"
	defaultHTTPAddr           = ":8080"
	defaultDatabaseURL        = "trustmrr.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultJWTTTL             = "24h"
	defaultLogLevel           = "info"
	defaultTimezone           = "Asia/Kolkata"
	defaultShutdownTimeout    = "10s"
	defaultCalendarCacheTTL   = "60s"
	defaultNotificationsTopic = "ads.notifications"
	defaultBlobBackend        = "local"
	defaultUploadsDir         = "./uploads"
	defaultStaticBase         = "/static/uploads"
	defaultNotifyTimeout      = "15s"
	defaultNotifyFrom         = "noreply@trustmrr.com"
	defaultAdminEmail         = "admin@trustmrr.com"
	defaultPayPalAPIBase      = "https://api-m.paypal.com"
	defaultRevenueWindow      = "720h"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	JWTTTL             time.Duration
	LogLevel           string
	Timezone           string
	Location           *time.Location
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	Redis     RedisConfig
	Kafka     KafkaConfig
	Blob      BlobConfig
	Notify    NotifyConfig
	Providers ProvidersConfig
}

type RedisConfig struct {
	URL         string
	CalendarTTL time.Duration
}

type KafkaConfig struct {
	Brokers            []string
	NotificationsTopic string
}

type BlobConfig struct {
	Backend    string
	UploadsDir string
	StaticBase string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

type NotifyConfig struct {
	Timeout    time.Duration
	From       string
	AdminEmail string
}

type ProvidersConfig struct {
	PayPalAPIBase string
	RevenueWindow time.Duration
}

// fileConfig mirrors the optional TOML file. Every value is a fallback for
// the matching environment variable.
type fileConfig struct {
	App struct {
		Env                string   `toml:"env"`
		HTTPAddr           string   `toml:"http_addr"`
		LogLevel           string   `toml:"log_level"`
		Timezone           string   `toml:"timezone"`
		CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
		ShutdownTimeout    string   `toml:"shutdown_timeout"`
	} `toml:"app"`
	Database struct {
		URL string `toml:"url"`
	} `toml:"database"`
	Auth struct {
		JWTSecret string `toml:"jwt_secret"`
		JWTTTL    string `toml:"jwt_ttl"`
	} `toml:"auth"`
	Redis struct {
		URL         string `toml:"url"`
		CalendarTTL string `toml:"calendar_ttl"`
	} `toml:"redis"`
	Kafka struct {
		Brokers            []string `toml:"brokers"`
		NotificationsTopic string   `toml:"notifications_topic"`
	} `toml:"kafka"`
	Blob struct {
		Backend    string `toml:"backend"`
		UploadsDir string `toml:"uploads_dir"`
		StaticBase string `toml:"static_base"`
		S3         struct {
			Bucket        string `toml:"bucket"`
			Region        string `toml:"region"`
			Endpoint      string `toml:"endpoint"`
			AccessKey     string `toml:"access_key"`
			SecretKey     string `toml:"secret_key"`
			PublicBaseURL string `toml:"public_base_url"`
		} `toml:"s3"`
	} `toml:"blob"`
	Notify struct {
		Timeout    string `toml:"timeout"`
		From       string `toml:"from"`
		AdminEmail string `toml:"admin_email"`
	} `toml:"notify"`
	Providers struct {
		PayPalAPIBase string `toml:"paypal_api_base"`
		RevenueWindow string `toml:"revenue_window"`
	} `toml:"providers"`
}

// Load reads .env (if present), then the TOML file named by CONFIG_FILE (if
// set), then the environment. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return build(&fc)
}

func build(fc *fileConfig) (*Config, error) {
	cfg := &Config{}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(pick("APP_ENV", fc.App.Env, defaultAppEnv)))
	cfg.HTTPAddr = strings.TrimSpace(pick("HTTP_ADDR", fc.App.HTTPAddr, defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(pick("DATABASE_URL", fc.Database.URL, defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(pick("JWT_SECRET", fc.Auth.JWTSecret, defaultJWTSecret))
	cfg.LogLevel = strings.TrimSpace(pick("LOG_LEVEL", fc.App.LogLevel, defaultLogLevel))
	cfg.Timezone = strings.TrimSpace(pick("APP_TIMEZONE", fc.App.Timezone, defaultTimezone))
	cfg.CORSAllowedOrigins = pickList("CORS_ALLOWED_ORIGINS", fc.App.CORSAllowedOrigins)

	cfg.Redis.URL = strings.TrimSpace(pick("REDIS_URL", fc.Redis.URL, ""))
	cfg.Kafka.Brokers = pickList("KAFKA_BROKERS", fc.Kafka.Brokers)
	cfg.Kafka.NotificationsTopic = strings.TrimSpace(pick("KAFKA_NOTIFICATIONS_TOPIC", fc.Kafka.NotificationsTopic, defaultNotificationsTopic))

	cfg.Blob.Backend = strings.ToLower(strings.TrimSpace(pick("BLOB_BACKEND", fc.Blob.Backend, defaultBlobBackend)))
	cfg.Blob.UploadsDir = strings.TrimSpace(pick("UPLOADS_DIR", fc.Blob.UploadsDir, defaultUploadsDir))
	cfg.Blob.StaticBase = strings.TrimSpace(pick("UPLOADS_STATIC_BASE", fc.Blob.StaticBase, defaultStaticBase))
	cfg.Blob.S3Bucket = strings.TrimSpace(pick("S3_BUCKET", fc.Blob.S3.Bucket, ""))
	cfg.Blob.S3Region = strings.TrimSpace(pick("S3_REGION", fc.Blob.S3.Region, "us-east-1"))
	cfg.Blob.S3Endpoint = strings.TrimSpace(pick("S3_ENDPOINT", fc.Blob.S3.Endpoint, ""))
	cfg.Blob.S3AccessKey = strings.TrimSpace(pick("S3_ACCESS_KEY", fc.Blob.S3.AccessKey, ""))
	cfg.Blob.S3SecretKey = strings.TrimSpace(pick("S3_SECRET_KEY", fc.Blob.S3.SecretKey, ""))
	cfg.Blob.S3PublicBaseURL = strings.TrimSpace(pick("S3_PUBLIC_BASE_URL", fc.Blob.S3.PublicBaseURL, ""))

	cfg.Notify.From = strings.TrimSpace(pick("NOTIFY_FROM", fc.Notify.From, defaultNotifyFrom))
	cfg.Notify.AdminEmail = strings.TrimSpace(pick("NOTIFY_ADMIN_EMAIL", fc.Notify.AdminEmail, defaultAdminEmail))
	cfg.Providers.PayPalAPIBase = strings.TrimSpace(pick("PAYPAL_API_BASE", fc.Providers.PayPalAPIBase, defaultPayPalAPIBase))

	var err error
	if cfg.JWTTTL, err = parseDuration("JWT_TTL", fc.Auth.JWTTTL, defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", fc.App.ShutdownTimeout, defaultShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.Redis.CalendarTTL, err = parseDuration("CALENDAR_CACHE_TTL", fc.Redis.CalendarTTL, defaultCalendarCacheTTL); err != nil {
		return nil, err
	}
	if cfg.Notify.Timeout, err = parseDuration("NOTIFY_TIMEOUT", fc.Notify.Timeout, defaultNotifyTimeout); err != nil {
		return nil, err
	}
	if cfg.Providers.RevenueWindow, err = parseDuration("REVENUE_WINDOW", fc.Providers.RevenueWindow, defaultRevenueWindow); err != nil {
		return nil, err
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.Redis.CalendarTTL <= 0 {
		return fmt.Errorf("CALENDAR_CACHE_TTL must be > 0")
	}
	if cfg.Notify.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be > 0")
	}
	if cfg.Providers.RevenueWindow < 24*time.Hour {
		return fmt.Errorf("REVENUE_WINDOW must be at least 24h")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	switch cfg.Blob.Backend {
	case "local":
		if cfg.Blob.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR must not be empty for the local blob backend")
		}
	case "s3":
		if cfg.Blob.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be one of: local, s3")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(name, fileValue, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(pick(name, fileValue, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func pick(name, fileValue, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

// pickList reads a comma separated env var, falling back to the file list.
func pickList(name string, fileValue []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fileValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
