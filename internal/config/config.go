// Package config loads runtime settings from the environment, an optional
// .env file and command-line flags bound into viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr             string
	DatabaseDriver       string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	SessionSecret string
	CookieSecure  bool

	NoteTTL      time.Duration
	ReapInterval time.Duration

	// Verify attempts per second and burst, per note and session.
	VerifyRate  float64
	VerifyBurst int

	LogLevel string
}

// Defaults registers every key with its default value.
func Defaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", false)
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("NOTE_TTL", 5*time.Minute)
	v.SetDefault("REAP_INTERVAL", 30*time.Second)
	v.SetDefault("VERIFY_RATE", 1.0)
	v.SetDefault("VERIFY_BURST", 5)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	v := viper.New()
	Defaults(v)
	return LoadFrom(v)
}

// LoadFrom builds a Config from a viper instance that may already have flags
// bound to it.
func LoadFrom(v *viper.Viper) (Config, error) {
	_ = godotenv.Load()
	v.AutomaticEnv()

	cfg := Config{
		HTTPAddr:             strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseDriver:       strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:          strings.TrimSpace(v.GetString("DATABASE_URL")),
		CORSAllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
		SessionSecret:        strings.TrimSpace(v.GetString("SESSION_SECRET")),
		CookieSecure:         v.GetBool("COOKIE_SECURE"),
		NoteTTL:              v.GetDuration("NOTE_TTL"),
		ReapInterval:         v.GetDuration("REAP_INTERVAL"),
		VerifyRate:           v.GetFloat64("VERIFY_RATE"),
		VerifyBurst:          v.GetInt("VERIFY_BURST"),
		LogLevel:             strings.TrimSpace(v.GetString("LOG_LEVEL")),
	}

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing env: DATABASE_URL"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("missing env: SESSION_SECRET"))
	}
	if c.NoteTTL <= 0 {
		errs = append(errs, errors.New("NOTE_TTL must be positive"))
	}
	if c.ReapInterval <= 0 {
		errs = append(errs, errors.New("REAP_INTERVAL must be positive"))
	}
	if c.VerifyRate <= 0 || c.VerifyBurst <= 0 {
		errs = append(errs, errors.New("VERIFY_RATE and VERIFY_BURST must be positive"))
	}
	return errors.Join(errs...)
}
