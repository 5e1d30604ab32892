package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Identity provider
	IdentityURL          string
	IdentityAPIKey       string
	IdentityJWTSecret    string
	IdentityOIDCIssuer   string
	IdentityOIDCClientID string
	IdentityTimeout      time.Duration
	IdentityRPS          float64

	// Admin
	AdminEmails   string
	AdminSubjects string
	AdminToken    string

	// Server
	Port        string
	CORSOrigins string

	// Billing processor
	BillingWebhookSecret string

	// Events
	NATSURL           string
	NATSSubjectPrefix string

	// Object storage (invoice PDFs)
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// Observability
	SentryDSN string
	AppEnv    string
}

var defaults = map[string]string{
	"DB_HOST":      "localhost",
	"DB_PORT":      "5432",
	"DB_USER":      "postgres",
	"DB_NAME":      "sqb_db",
	"DB_SSLMODE":   "disable",
	"PORT":         "8080",
	"CORS_ORIGINS": "*",

	"IDENTITY_TIMEOUT": "10s",
	"IDENTITY_RPS":     "50",

	"NATS_SUBJECT_PREFIX": "sqb",
	"S3_REGION":           "us-east-1",
	"APP_ENV":             "development",
}

// Load reads configuration from the environment. When SQB_CONFIG points to a
// file, its values are used as a base and the environment still wins.
func Load() *Config {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := v.GetString("SQB_CONFIG"); path != "" {
		v.SetConfigFile(path)
		// Missing or broken file falls back to env + defaults.
		_ = v.ReadInConfig()
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		IdentityURL:          strings.TrimRight(v.GetString("IDENTITY_URL"), "/"),
		IdentityAPIKey:       v.GetString("IDENTITY_API_KEY"),
		IdentityJWTSecret:    v.GetString("IDENTITY_JWT_SECRET"),
		IdentityOIDCIssuer:   v.GetString("IDENTITY_OIDC_ISSUER"),
		IdentityOIDCClientID: v.GetString("IDENTITY_OIDC_CLIENT_ID"),
		IdentityTimeout:      parseDuration(v.GetString("IDENTITY_TIMEOUT")),
		IdentityRPS:          v.GetFloat64("IDENTITY_RPS"),

		AdminEmails:   v.GetString("ADMIN_EMAILS"),
		AdminSubjects: v.GetString("ADMIN_SUBJECTS"),
		AdminToken:    v.GetString("ADMIN_TOKEN"),

		Port:        v.GetString("PORT"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),

		BillingWebhookSecret: v.GetString("BILLING_WEBHOOK_SECRET"),

		NATSURL:           v.GetString("NATS_URL"),
		NATSSubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),

		S3Bucket:    v.GetString("S3_BUCKET"),
		S3Region:    v.GetString("S3_REGION"),
		S3Endpoint:  v.GetString("S3_ENDPOINT"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),

		SentryDSN: v.GetString("SENTRY_DSN"),
		AppEnv:    v.GetString("APP_ENV"),
	}
}

// IdentityMode reports which verifier the configuration selects:
// "http", "jwt", "oidc" or "" when none is configured.
func (c *Config) IdentityMode() string {
	switch {
	case c.IdentityURL != "" && c.IdentityAPIKey != "":
		return "http"
	case c.IdentityOIDCIssuer != "":
		return "oidc"
	case c.IdentityJWTSecret != "":
		return "jwt"
	default:
		return ""
	}
}

// Validate returns the first configuration gap that must stop startup.
func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	if c.IdentityMode() == "" {
		return errors.New("identity provider is not configured: set IDENTITY_URL and IDENTITY_API_KEY, IDENTITY_OIDC_ISSUER, or IDENTITY_JWT_SECRET")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
