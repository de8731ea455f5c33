// Package config reads server settings from the environment and command-line
// flags. Flags win over environment variables, which win over defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"solar-sizer/calculator"
)

const (
	StorageMemory   = "memory"
	StorageCSV      = "csv"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	Addr          string
	Storage       string
	CSVPath       string
	SQLitePath    string
	PostgresDSN   string
	RedisAddr     string
	NATSURL       string
	OTLPEndpoint  string
	AdminUser     string
	AdminPassword string
	SecureCookies bool
	RatePerMinute int
	RateBurst     int
	LogLevel      string

	// FuelPrice overrides the diesel price of the tables when set.
	FuelPrice  string
	TablesFile string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// Load builds the configuration from the environment and args (without the
// program name).
func Load(args []string) (Config, error) {
	var c Config
	fs := pflag.NewFlagSet("solar-sizer", pflag.ContinueOnError)

	fs.StringVarP(&c.Addr, "addr", "a", envOr("SOLAR_ADDR", ":8080"), "listen address")
	fs.StringVar(&c.Storage, "storage", envOr("SOLAR_STORAGE", StorageMemory), "application store: memory, csv, sqlite or postgres")
	fs.StringVar(&c.CSVPath, "csv-path", envOr("SOLAR_CSV_PATH", "data/loan_applications.csv"), "CSV store file")
	fs.StringVar(&c.SQLitePath, "sqlite-path", envOr("SOLAR_SQLITE_PATH", "data/solar.db"), "SQLite database file")
	fs.StringVar(&c.PostgresDSN, "postgres-dsn", envOr("DATABASE_URL", ""), "Postgres connection string")
	fs.StringVar(&c.RedisAddr, "redis-addr", envOr("REDIS_ADDR", ""), "Redis address for sessions; empty keeps them in memory")
	fs.StringVar(&c.NATSURL, "nats-url", envOr("NATS_URL", ""), "NATS server for application events; empty disables them")
	fs.StringVar(&c.OTLPEndpoint, "otlp-endpoint", envOr("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "OTLP/HTTP trace endpoint; empty disables tracing")
	fs.StringVar(&c.AdminUser, "admin-user", envOr("SOLAR_ADMIN_USER", "admin"), "admin user name")
	fs.StringVar(&c.AdminPassword, "admin-password", envOr("SOLAR_ADMIN_PASSWORD", ""), "admin password; empty locks the admin pages")
	fs.BoolVar(&c.SecureCookies, "secure-cookies", envBool("SOLAR_SECURE_COOKIES", false), "mark session cookies Secure")
	fs.IntVar(&c.RatePerMinute, "rate-per-minute", envInt("SOLAR_RATE_PER_MINUTE", 30), "requests per minute per client")
	fs.IntVar(&c.RateBurst, "rate-burst", envInt("SOLAR_RATE_BURST", 10), "request burst per client")
	fs.StringVar(&c.LogLevel, "log-level", envOr("SOLAR_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&c.FuelPrice, "fuel-price", envOr("SOLAR_FUEL_PRICE", ""), "diesel price in naira per litre")
	fs.StringVar(&c.TablesFile, "tables", envOr("SOLAR_TABLES_FILE", ""), "JSON file overriding the price tables")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StorageMemory, StorageCSV, StorageSQLite:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres storage needs --postgres-dsn or DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if c.RatePerMinute < 1 {
		errs = append(errs, errors.New("rate-per-minute must be at least 1"))
	}
	if c.RateBurst < 1 {
		errs = append(errs, errors.New("rate-burst must be at least 1"))
	}
	if c.FuelPrice != "" {
		if d, err := decimal.NewFromString(c.FuelPrice); err != nil || d.IsNegative() {
			errs = append(errs, fmt.Errorf("invalid fuel price %q", c.FuelPrice))
		}
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}

// Tables returns the price tables after applying the tables file and the
// fuel price override.
func (c Config) Tables() (calculator.Tables, error) {
	t := calculator.DefaultTables()
	if c.TablesFile != "" {
		var err error
		if t, err = LoadTablesFile(c.TablesFile); err != nil {
			return calculator.Tables{}, err
		}
	}
	if c.FuelPrice != "" {
		d, err := decimal.NewFromString(c.FuelPrice)
		if err != nil {
			return calculator.Tables{}, fmt.Errorf("fuel price: %w", err)
		}
		t.FuelPricePerLiter = d
	}
	return t, t.Validate()
}

// LoadTablesFile reads a JSON document over the default tables. Map entries
// in the file are added to, or replace, the default entries; other fields
// replace the defaults when present.
func LoadTablesFile(path string) (calculator.Tables, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return calculator.Tables{}, err
	}
	t := calculator.DefaultTables()
	if err := json.Unmarshal(blob, &t); err != nil {
		return calculator.Tables{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}
