package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	DatabaseDSN string

	JWTSecret string
	TokenTTL  time.Duration

	TracerServiceName string
	TracerEndpoint    string
	TracerAPIKey      string

	PayPalAPIKey     string
	PayPalAPISecret  string
	VisaAPIKey       string
	MastercardAPIKey string

	PlatformFeePercentage float64

	JobsEnabled    bool
	RenewalHour    int
	RenewalMinute  int
	ReminderHour   int
	ReminderMinute int
}

// Load reads configuration from the environment. Every key has a development
// default so the server starts with an empty environment.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8081")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("DATABASE_DSN", "host=localhost user=dinehub password='' dbname=dinehub port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "dev-only-secret")
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("AEONIS_SERVICE_NAME", "dinehub")
	v.SetDefault("AEONIS_ENDPOINT", "http://localhost:8000/v1/traces")
	v.SetDefault("AEONIS_API_KEY", "")
	v.SetDefault("PAYPAL_API_KEY", "")
	v.SetDefault("PAYPAL_API_SECRET", "")
	v.SetDefault("VISA_API_KEY", "")
	v.SetDefault("MASTERCARD_API_KEY", "")
	v.SetDefault("PLATFORM_FEE_PERCENTAGE", 0.15)
	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("RENEWAL_JOB_HOUR", 1)
	v.SetDefault("RENEWAL_JOB_MINUTE", 0)
	v.SetDefault("REMINDER_JOB_HOUR", 2)
	v.SetDefault("REMINDER_JOB_MINUTE", 0)

	return &Config{
		Port:                  v.GetString("PORT"),
		AllowedOrigins:        v.GetStringSlice("ALLOWED_ORIGINS"),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		TokenTTL:              time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		TracerServiceName:     v.GetString("AEONIS_SERVICE_NAME"),
		TracerEndpoint:        v.GetString("AEONIS_ENDPOINT"),
		TracerAPIKey:          v.GetString("AEONIS_API_KEY"),
		PayPalAPIKey:          v.GetString("PAYPAL_API_KEY"),
		PayPalAPISecret:       v.GetString("PAYPAL_API_SECRET"),
		VisaAPIKey:            v.GetString("VISA_API_KEY"),
		MastercardAPIKey:      v.GetString("MASTERCARD_API_KEY"),
		PlatformFeePercentage: v.GetFloat64("PLATFORM_FEE_PERCENTAGE"),
		JobsEnabled:           v.GetBool("JOBS_ENABLED"),
		RenewalHour:           v.GetInt("RENEWAL_JOB_HOUR"),
		RenewalMinute:         v.GetInt("RENEWAL_JOB_MINUTE"),
		ReminderHour:          v.GetInt("REMINDER_JOB_HOUR"),
		ReminderMinute:        v.GetInt("REMINDER_JOB_MINUTE"),
	}
}
