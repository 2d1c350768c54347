package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort    string
	PostgresDSN string
	RedisAddr   string
	JWTSecret   string

	PaystackSecretKey string
	PaystackBaseURL   string
	PaymentCallback   string
	Currency          string
	PhonePrefix       string
	GatewayTimeout    time.Duration

	ReminderInterval  time.Duration
	ReminderStaleness time.Duration
	ReminderMax       int

	MailerBaseURL     string
	MailerInternalKey string

	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxIdle  time.Duration
	DBConnMaxLife  time.Duration
	RequestTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		PostgresDSN: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaymentCallback:   getEnv("PAYMENT_CALLBACK_URL", ""),
		Currency:          getEnv("PAYMENT_CURRENCY", "KES"),
		PhonePrefix:       getEnv("PHONE_COUNTRY_PREFIX", "254"),
		GatewayTimeout:    getDuration("GATEWAY_TIMEOUT", 30*time.Second),

		ReminderInterval:  getDuration("REMINDER_INTERVAL", time.Hour),
		ReminderStaleness: getDuration("REMINDER_STALENESS", 72*time.Hour),
		ReminderMax:       getInt("REMINDER_MAX_PER_APPLICATION", 2),

		MailerBaseURL:     getEnv("MAILER_BASE_URL", ""),
		MailerInternalKey: getEnv("MAILER_INTERNAL_KEY", ""),

		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:  getDuration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:  getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
	}

	if cfg.PostgresDSN == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.PaystackSecretKey == "" {
		log.Fatal("PAYSTACK_SECRET_KEY is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
