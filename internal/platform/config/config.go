// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration, grouped by concern.
type Config struct {
	Env       string
	Server    Server
	Auth      Auth
	Database  Database
	Redis     RedisConfig
	Kafka     Kafka
	Storage   Storage
	Donation  Donation
	Reminder  Reminder
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Auth struct {
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	BcryptCost    int
}

// Database is optional; an empty URL selects the in-memory stores.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

// RedisConfig is optional; an empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// Kafka is optional; without brokers notifications are logged.
type Kafka struct {
	Brokers           []string
	NotificationTopic string
}

// Storage selects where certificate PDFs are uploaded: "s3", "gcs" or
// "memory".
type Storage struct {
	Backend       string
	Bucket        string
	Region        string
	Endpoint      string
	Prefix        string
	PublicBaseURL string
}

type Donation struct {
	// Facility is where approved emergency donations are booked.
	Facility         string
	NotifyQueueSize  int
	NotifyWorkers    int
	MaxCollectVolume int
}

type Reminder struct {
	Schedule     string
	CooldownDays int
}

type RateLimit struct {
	PerMinute int
	Burst     int
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Missing files are fine; real environment variables still apply.
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Env: getString("BLOODLINK_ENV", "development"),
		Server: Server{
			Addr:            getString("BLOODLINK_ADDR", ":8080"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: Auth{
			// Use a default for development - should be overridden in production
			JWTSigningKey: getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     getString("JWT_ISSUER", "bloodlink"),
			TokenTTL:      getDuration("JWT_TTL", 12*time.Hour),
			BcryptCost:    getInt("BCRYPT_COST", 12),
		},
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			TxTimeout:       getDuration("DB_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     getDuration("REDIS_CACHE_TTL", 10*time.Minute),
		},
		Kafka: Kafka{
			Brokers:           getList("KAFKA_BROKERS"),
			NotificationTopic: getString("KAFKA_NOTIFICATION_TOPIC", "bloodlink.notifications"),
		},
		Storage: Storage{
			Backend:       strings.ToLower(getString("CERT_STORAGE", "memory")),
			Bucket:        getString("CERT_BUCKET", "bloodlink-certificates"),
			Region:        getString("CERT_REGION", "us-east-1"),
			Endpoint:      os.Getenv("CERT_ENDPOINT"),
			Prefix:        getString("CERT_PREFIX", "certificates/"),
			PublicBaseURL: os.Getenv("CERT_PUBLIC_BASE_URL"),
		},
		Donation: Donation{
			Facility:         getString("DONATION_FACILITY", "Central Blood Donation Center"),
			NotifyQueueSize:  getInt("NOTIFY_QUEUE_SIZE", 256),
			NotifyWorkers:    getInt("NOTIFY_WORKERS", 4),
			MaxCollectVolume: getInt("MAX_COLLECT_VOLUME_ML", 650),
		},
		Reminder: Reminder{
			Schedule:     getString("REMINDER_SCHEDULE", "0 0 9 * * *"),
			CooldownDays: getInt("DONATION_COOLDOWN_DAYS", 90),
		},
		RateLimit: RateLimit{
			PerMinute: getInt("RATE_LIMIT_PER_MINUTE", 30),
			Burst:     getInt("RATE_LIMIT_BURST", 10),
		},
	}
}

// IsProduction reports whether BLOODLINK_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
