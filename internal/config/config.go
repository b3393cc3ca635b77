package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `validate:"required"`

	StoreDriver string `validate:"oneof=memory sqlite postgres"`
	DBDSN       string
	SiteID      string `validate:"required"`

	CORSOrigins []string `validate:"dive,required"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	MetricsEnabled bool
	StaticDir      string

	RequestTimeout time.Duration `validate:"gt=0"`
}

// Load reads an optional .env file and then builds the config from the
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":3000"
		}
	}
	return Config{
		HTTPAddr:       addr,
		StoreDriver:    strings.ToLower(envOr("STORE_DRIVER", "memory")),
		DBDSN:          envOr("DB_DSN", ""),
		SiteID:         envOr("SITE_ID", "local"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
		LogLevel:       strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(envOr("LOG_FORMAT", "text")),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
		StaticDir:      envOr("STATIC_DIR", ""),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
