// Package config loads the service settings from environment variables.
// Every setting has a default except API_KEY; unparseable values fall back to
// the default and Validate rejects values that are out of range.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-cafe-api/internal/sysutil"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// CORSConfig lists browser origins allowed to call the API. Empty means any.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig controls Strict-Transport-Security.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig configures trace export over OTLP/gRPC.
type OTELConfig struct {
	Enabled     bool
	Endpoint    string // host:port of the collector
	Insecure    bool   // plaintext gRPC
	ServiceName string
	SampleRatio float64 // 0..1
}

// DBConfig selects and locates the record store.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file, created when missing
	DSN    string // Postgres DSN
}

// Config is the full service configuration.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	LogLevel       string
	LogPretty      bool
	LogRedact      bool // scrub PII and secrets from access logs
	SwaggerEnabled bool
	APIBasePath    string

	DB     DBConfig
	APIKey string // shared secret expected in the api-key header

	RateRPS   float64
	RateBurst int

	CORS     CORSConfig
	Security SecurityConfig

	// IdempotencyTTL is how long a stored /add response is replayed.
	IdempotencyTTL time.Duration

	OTEL OTELConfig
}

// Addr is the listen address for http.Server.
func (c Config) Addr() string {
	return net.JoinHostPort("", c.Port)
}

// Load reads the environment, normalizes a few spellings and validates.
// On a validation error the partially filled Config is returned with it.
func Load() (Config, error) {
	cfg := Config{
		Port:              str("PORT", "5000"),
		ReadTimeout:       env("READ_TIMEOUT", 15*time.Second, time.ParseDuration),
		ReadHeaderTimeout: env("READ_HEADER_TIMEOUT", 10*time.Second, time.ParseDuration),
		WriteTimeout:      env("WRITE_TIMEOUT", 20*time.Second, time.ParseDuration),
		IdleTimeout:       env("IDLE_TIMEOUT", 60*time.Second, time.ParseDuration),
		MaxHeaderBytes:    env("MAX_HEADER_BYTES", 1<<20, strconv.Atoi),
		GinMode:           lower("GIN_MODE", "release"),

		LogLevel:       lower("LOG_LEVEL", "info"),
		LogPretty:      env("LOG_PRETTY", false, parseBool),
		LogRedact:      env("LOG_REDACT", true, parseBool),
		SwaggerEnabled: env("SWAGGER_ENABLED", false, parseBool),
		APIBasePath:    basePath(os.Getenv("API_BASE_PATH")),

		DB: DBConfig{
			Driver: lower("DB_DRIVER", DriverSQLite),
			Path:   str("DB_PATH", "cafes.db"),
			DSN:    os.Getenv("DATABASE_DSN"),
		},
		APIKey: os.Getenv("API_KEY"),

		RateRPS:   env("RATE_RPS", 10.0, parseFloat),
		RateBurst: env("RATE_BURST", 20, strconv.Atoi),

		CORS: CORSConfig{AllowedOrigins: csv(os.Getenv("CORS_ALLOWED_ORIGINS"))},
		Security: SecurityConfig{
			EnableHSTS: env("ENABLE_HSTS", false, parseBool),
			HSTSMaxAge: env("HSTS_MAX_AGE", 180*24*time.Hour, time.ParseDuration),
		},

		IdempotencyTTL: env("IDEMPOTENCY_TTL", 24*time.Hour, time.ParseDuration),

		OTEL: OTELConfig{
			Enabled:     env("OTEL_ENABLED", false, parseBool),
			Endpoint:    str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    env("OTEL_EXPORTER_OTLP_INSECURE", true, parseBool),
			ServiceName: str("OTEL_SERVICE_NAME", "cafe-api"),
			SampleRatio: env("OTEL_TRACES_SAMPLER_ARG", 1.0, parseFloat),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if cfg.DB.Driver == "sqlite3" {
		cfg.DB.Driver = DriverSQLite
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once, joined.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"server timeouts must be positive")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DB.Driver {
	case DriverSQLite:
		check(strings.TrimSpace(c.DB.Path) != "", "DB_PATH must not be empty")
	case DriverPostgres:
		check(strings.TrimSpace(c.DB.DSN) != "", "DATABASE_DSN is required when DB_DRIVER=postgres")
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres", c.DB.Driver))
	}

	check(strings.TrimSpace(c.APIKey) != "", "API_KEY must not be empty")
	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

// env parses the variable k with parse. Unset, empty or unparseable values
// yield def.
func env[T any](k string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func str(k, def string) string {
	return env(k, def, func(s string) (string, error) { return s, nil })
}

func lower(k, def string) string {
	return strings.ToLower(str(k, def))
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

var errNotBool = errors.New("not a boolean")

// parseBool accepts the sysutil truthy and falsy spellings.
func parseBool(s string) (bool, error) {
	switch {
	case sysutil.IsTruthy(s):
		return true, nil
	case sysutil.IsFalsy(s):
		return false, nil
	}
	return false, errNotBool
}

func csv(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// basePath yields "/" or a slash-led prefix without trailing slashes.
func basePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}
