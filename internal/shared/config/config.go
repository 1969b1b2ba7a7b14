package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Platform fee defaults
	Fees FeesConfig

	// Background jobs
	Jobs JobsConfig

	// Logging
	Log LogConfig

	// External services
	Kafka KafkaConfig
	Email EmailConfig

	// Internal callbacks (payment processor webhooks)
	Internal InternalConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	CacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Issuer string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled          bool          `json:"enabled"`
	WindowDuration   time.Duration `json:"window_duration"`
	DefaultRequests  int           `json:"default_requests"`
	SplitRequests    int           `json:"split_requests"`
	SplitWrites      int           `json:"split_writes"`
	InternalRequests int           `json:"internal_requests"`
	HealthRequests   int           `json:"health_requests"`
	WhitelistedIPs   []string      `json:"whitelisted_ips"`
}

// FeesConfig holds the platform fee fallback used when no platform_settings row exists
type FeesConfig struct {
	PlatformFeeBps        int
	PlatformFeeFixedCents int
	DefaultFeeMode        string
	DefaultCurrency       string
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	Enabled             bool
	SplitExpiryInterval time.Duration
	BatchSize           int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled            bool
	Brokers            []string
	SplitTopic         string
	ConsumerGroupID    string
	NumConsumerWorkers int
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// InternalConfig holds settings for service-to-service routes
type InternalConfig struct {
	WebhookSecret string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "organizer_db"),
			User:            getEnv("DB_USER", "organizer_user"),
			Password:        getEnv("DB_PASSWORD", "organizer_password"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			AutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 5*time.Minute),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			Issuer: getEnv("JWT_ISSUER", ""),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:          getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:   getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:  getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			SplitRequests:    getIntEnv("RATE_LIMIT_SPLIT_REQUESTS", 120),
			SplitWrites:      getIntEnv("RATE_LIMIT_SPLIT_WRITES", 20),
			InternalRequests: getIntEnv("RATE_LIMIT_INTERNAL_REQUESTS", 600),
			HealthRequests:   getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:   getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Platform fee defaults
		Fees: FeesConfig{
			PlatformFeeBps:        getIntEnv("PLATFORM_FEE_BPS", 500),
			PlatformFeeFixedCents: getIntEnv("PLATFORM_FEE_FIXED_CENTS", 30),
			DefaultFeeMode:        strings.ToUpper(getEnv("PLATFORM_DEFAULT_FEE_MODE", "ADDED")),
			DefaultCurrency:       strings.ToUpper(getEnv("DEFAULT_CURRENCY", "EUR")),
		},

		// Background jobs
		Jobs: JobsConfig{
			Enabled:             getBoolEnv("JOBS_ENABLED", true),
			SplitExpiryInterval: getDurationEnv("SPLIT_EXPIRY_INTERVAL", time.Minute),
			BatchSize:           getIntEnv("SPLIT_EXPIRY_BATCH_SIZE", 100),
		},

		// Logging
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "debug"),
			FilePath:   getEnv("LOG_FILE", ""),
			MaxSizeMB:  getIntEnv("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getIntEnv("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getIntEnv("LOG_MAX_AGE_DAYS", 28),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Enabled:            getBoolEnv("KAFKA_ENABLED", false),
			Brokers:            getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			SplitTopic:         getEnv("SPLIT_NOTIFICATION_TOPIC", "booking-split-events"),
			ConsumerGroupID:    getEnv("CONSUMER_GROUP_ID", "organizer-split-notifiers"),
			NumConsumerWorkers: getIntEnv("NUM_CONSUMER_WORKERS", 2),
		},

		// Email configuration
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@organizer.local"),
			FromName:     getEnv("SMTP_FROM_NAME", "Organizer"),
		},

		Internal: InternalConfig{
			WebhookSecret: getEnv("INTERNAL_WEBHOOK_SECRET", ""),
		},
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
