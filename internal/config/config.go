package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Money-related values stay in decimal form until
// the pricing engine consumes them.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	StoreDriver string // "mysql" or "memory"

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret      string          // secret used to verify staff tokens
	AccessTTLMin   int             // staff token time-to-live in minutes
	TaxRate        decimal.Decimal // sales tax rate, e.g. 0.13
	ManagerPINHash string          // bcrypt hash of the manager override PIN (optional)

	EventsEnabled         bool   // publish order events to RabbitMQ
	RabbitMQURL           string // AMQP connection string
	EventsConsumerEnabled bool   // run the order log consumer in-process
	LogDir                string // directory the consumer appends to
}

// Dev reports whether the application runs in development mode.
func (c Config) Dev() bool { return c.Env == "dev" }

// Load reads configuration values from environment variables.  Instead of
// stopping at the first problem it collects every missing or malformed key
// and reports them together.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:         envStr("APP_ENV", "dev"),
		Port:        l.must("APP_PORT"),
		StoreDriver: strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),

		DBPass: os.Getenv("DB_PASS"),

		JWTSecret:      l.must("JWT_SECRET"),
		AccessTTLMin:   l.intOr("ACCESS_TOKEN_TTL_MIN", 720),
		TaxRate:        l.decimalOr("TAX_RATE", "0.13"),
		ManagerPINHash: os.Getenv("MANAGER_PIN_HASH"),

		EventsEnabled:         envBool("EVENTS_ENABLED", false),
		EventsConsumerEnabled: envBool("EVENTS_CONSUMER_ENABLED", false),
		LogDir:                envStr("LOG_DIR", "logs"),
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.must("DB_PORT")
		cfg.DBName = l.must("DB_NAME")
	case DriverMemory:
	default:
		l.invalid("STORE_DRIVER", cfg.StoreDriver)
	}
	if cfg.EventsEnabled || cfg.EventsConsumerEnabled {
		cfg.RabbitMQURL = l.must("RABBITMQ_URL")
	}
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		l.invalid("TAX_RATE", cfg.TaxRate.String())
	}

	if err := l.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN builds the MySQL data source name for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// loader accumulates configuration problems while Load walks the keys.
type loader struct {
	missing []string
	bad     []string
}

func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.missing = append(l.missing, key)
	}
	return v
}

func (l *loader) invalid(key, value string) {
	l.bad = append(l.bad, fmt.Sprintf("%s=%q", key, value))
}

func (l *loader) intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		l.invalid(key, v)
		return def
	}
	return n
}

func (l *loader) decimalOr(key, def string) decimal.Decimal {
	v := envStr(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		l.invalid(key, v)
		return decimal.RequireFromString(def)
	}
	return d
}

func (l *loader) err() error {
	var parts []string
	if len(l.missing) > 0 {
		parts = append(parts, "missing required env vars: "+strings.Join(l.missing, ", "))
	}
	if len(l.bad) > 0 {
		parts = append(parts, "invalid env vars: "+strings.Join(l.bad, ", "))
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("config: %s", strings.Join(parts, "; "))
}
