package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends understood by GPOWER_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendREST     = "rest"
)

var ErrMissingSetting = errors.New("missing required setting")

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	Backend     string
	DatabaseURL string
	AutoMigrate bool

	SupabaseURL string
	SupabaseKey string
	HTTPTimeout time.Duration

	JWTSecret    string
	CookieSecure bool
	CORSOrigins  string

	LogLevel  string
	LogFormat string

	FormRate  float64
	FormBurst int
}

// Load reads a .env file when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests don't touch the
// real environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:         orDefault(getenv("GPOWER_ADDR"), ":8080"),
		Backend:      strings.ToLower(orDefault(getenv("GPOWER_BACKEND"), BackendMemory)),
		DatabaseURL:  getenv("DATABASE_URL"),
		AutoMigrate:  getenv("GPOWER_AUTO_MIGRATE") == "1",
		SupabaseURL:  getenv("SUPABASE_URL"),
		SupabaseKey:  getenv("SUPABASE_ANON_KEY"),
		JWTSecret:    getenv("JWT_SECRET"),
		CookieSecure: getenv("GPOWER_COOKIE_SECURE") == "1",
		CORSOrigins:  orDefault(getenv("GPOWER_CORS_ORIGINS"), "*"),
		LogLevel:     orDefault(getenv("GPOWER_LOG_LEVEL"), "info"),
		LogFormat:    orDefault(getenv("GPOWER_LOG_FORMAT"), "text"),
		HTTPTimeout:  10 * time.Second,
		FormRate:     1,
		FormBurst:    5,
	}

	if v := getenv("GPOWER_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("GPOWER_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := getenv("GPOWER_FORM_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GPOWER_FORM_RATE: %w", err)
		}
		cfg.FormRate = f
	}
	if v := getenv("GPOWER_FORM_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("GPOWER_FORM_BURST: %w", err)
		}
		cfg.FormBurst = n
	}

	switch cfg.Backend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("%w: DATABASE_URL", ErrMissingSetting)
		}
	case BackendREST:
		if cfg.SupabaseURL == "" {
			return Config{}, fmt.Errorf("%w: SUPABASE_URL", ErrMissingSetting)
		}
		if cfg.SupabaseKey == "" {
			return Config{}, fmt.Errorf("%w: SUPABASE_ANON_KEY", ErrMissingSetting)
		}
	default:
		return Config{}, fmt.Errorf("unknown GPOWER_BACKEND %q", cfg.Backend)
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
