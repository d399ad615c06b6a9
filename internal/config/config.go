package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	CatalogSourceStatic = "static"
	CatalogSourceFile   = "file"
	CatalogSourceMySQL  = "mysql"

	defaultHTTPPort        = "3000"
	defaultGRPCPort        = "50051"
	defaultLogLevel        = "info"
	defaultQuoteTTL        = 10 * time.Minute
	defaultShutdownTimeout = 5 * time.Second
)

// Config captures runtime configuration grouped by concern.
type Config struct {
	Environment     string
	HTTPPort        string
	GRPCPort        string
	LogLevel        string
	ShutdownTimeout time.Duration
	Catalog         CatalogConfig
	MySQL           MySQLConfig
	Redis           RedisConfig
	Pricing         PricingConfig
}

type CatalogConfig struct {
	Source string
	File   string
}

type MySQLConfig struct {
	DSN string
}

// RedisConfig enables the quote cache when Addr is set.
type RedisConfig struct {
	Addr     string
	QuoteTTL time.Duration
}

type PricingConfig struct {
	SeasonalSaleActive bool
}

// ValidationError is returned when configuration values are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var invalid []string

	duration := func(key string, def time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}

	boolean := func(key string, def bool) bool {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return b
	}

	cfg := Config{
		Environment:     strings.ToLower(get("APP_ENV", EnvDevelopment)),
		HTTPPort:        get("HTTP_PORT", defaultHTTPPort),
		GRPCPort:        get("GRPC_PORT", defaultGRPCPort),
		LogLevel:        get("LOG_LEVEL", defaultLogLevel),
		ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		Catalog: CatalogConfig{
			Source: strings.ToLower(get("CATALOG_SOURCE", CatalogSourceStatic)),
			File:   get("CATALOG_FILE", ""),
		},
		MySQL: MySQLConfig{
			DSN: get("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     get("REDIS_ADDR", ""),
			QuoteTTL: duration("QUOTE_CACHE_TTL", defaultQuoteTTL),
		},
		Pricing: PricingConfig{
			SeasonalSaleActive: boolean("SEASONAL_SALE_ACTIVE", true),
		},
	}

	if !validPort(cfg.HTTPPort) {
		invalid = append(invalid, "HTTP_PORT")
	}
	if v, ok := lookup("GRPC_PORT"); ok && strings.TrimSpace(v) == "" {
		cfg.GRPCPort = ""
	} else if !validPort(cfg.GRPCPort) {
		invalid = append(invalid, "GRPC_PORT")
	}

	switch cfg.Catalog.Source {
	case CatalogSourceStatic:
	case CatalogSourceFile:
		if cfg.Catalog.File == "" {
			invalid = append(invalid, "CATALOG_FILE")
		}
	case CatalogSourceMySQL:
		if cfg.MySQL.DSN == "" {
			invalid = append(invalid, "MYSQL_DSN")
		}
	default:
		invalid = append(invalid, "CATALOG_SOURCE")
	}

	if len(invalid) > 0 {
		return cfg, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

// IsProduction reports whether internal error details must stay hidden.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GRPCEnabled reports whether a gRPC listener should start.
func (c Config) GRPCEnabled() bool {
	return c.GRPCPort != ""
}

func validPort(port string) bool {
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
