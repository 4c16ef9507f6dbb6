package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration. It is loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Company identity rendered into operator notifications
	CompanyName     string
	SiteURL         string
	CompanyTimezone string

	// reCAPTCHA verification gate
	RecaptchaSecretKey string
	RecaptchaVerifyURL string
	RecaptchaTimeout   time.Duration
	RecaptchaMinScore  float64
	RecaptchaStrict    bool

	// Notification dispatch
	EmailProvider    string
	NotifyRecipients []string
	NotifyFromEmail  string
	NotifyFromName   string
	NotifyTimeout    time.Duration
	SendGridAPIKey   string

	// AWS (SES, SQS, S3)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LeadEventsQueueURL  string

	// Submission archive
	DatabaseURL    string
	ArchiveBucket  string
	ArchiveTimeout time.Duration

	// Rate limiting
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	RateLimitPerMinute int
	RateLimitBurst     int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CompanyName:     getEnv("COMPANY_NAME", "Garden State Security Pros"),
		SiteURL:         getEnv("SITE_URL", "https://www.gardenstatesecurity.com"),
		CompanyTimezone: getEnv("COMPANY_TIMEZONE", "America/New_York"),

		RecaptchaSecretKey: getEnv("RECAPTCHA_SECRET_KEY", ""),
		RecaptchaVerifyURL: getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		RecaptchaTimeout:   getEnvAsDuration("RECAPTCHA_TIMEOUT", 5*time.Second),
		RecaptchaMinScore:  getEnvAsFloat("RECAPTCHA_MIN_SCORE", 0),
		RecaptchaStrict:    getEnvAsBool("RECAPTCHA_STRICT", false),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "log"))),
		NotifyRecipients: getEnvAsList("NOTIFY_RECIPIENTS", []string{"info@gardenstatesecurity.com"}),
		NotifyFromEmail:  getEnv("NOTIFY_FROM_EMAIL", "noreply@gardenstatesecurity.com"),
		NotifyFromName:   getEnv("NOTIFY_FROM_NAME", "Website Forms"),
		NotifyTimeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LeadEventsQueueURL:  getEnv("LEAD_EVENTS_QUEUE_URL", ""),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ArchiveBucket:  getEnv("ARCHIVE_BUCKET", ""),
		ArchiveTimeout: getEnvAsDuration("ARCHIVE_TIMEOUT", 5*time.Second),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
