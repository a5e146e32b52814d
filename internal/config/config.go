package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"

	"github.com/sirupsen/logrus" // logrus reports configuration errors and halts execution
)

// Supported values for Config.DBDriver.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Supported values for Config.FlashStore.
const (
	FlashCookie = "cookie"
	FlashRedis  = "redis"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database credentials are only required when the
// MySQL driver is selected; the SQLite driver only needs a file path.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBDriver       string // "mysql" or "sqlite"
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	SQLitePath     string // database file used with the sqlite driver
	Migrate        bool   // apply the schema at startup
	FlashSecret    string // secret used to sign flash cookies
	FlashStore     string // "cookie" or "redis"
	AMQPURL        string // broker URL for listing events (empty disables publishing)
	LogLevel       string // logrus level name
	LogFormat      string // "text" or "json"
	MetricsEnabled bool   // expose GET /metrics
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),  // environment (dev/test/prod)
		Port:           must("APP_PORT"), // port to bind the HTTP server
		DBDriver:       strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		SQLitePath:     envStr("SQLITE_PATH", "fyyur.db"),
		Migrate:        envBool("DB_MIGRATE", true),
		FlashSecret:    must("FLASH_SECRET"),
		FlashStore:     strings.ToLower(envStr("FLASH_STORE", FlashCookie)),
		AMQPURL:        amqpURL(),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFormat:      envStr("LOG_FORMAT", "text"),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}
	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = strconv.Itoa(mustInt("DB_PORT"))
		cfg.DBName = must("DB_NAME")
	case DriverSQLite:
	default:
		logrus.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	switch cfg.FlashStore {
	case FlashCookie, FlashRedis:
	default:
		logrus.Fatalf("unsupported FLASH_STORE: %q", cfg.FlashStore)
	}
	return cfg
}

// amqpURL prefers RABBITMQ_URL and falls back to AMQP_URL.  Unlike the
// rest of the broker settings there is no localhost default: an empty value
// means events are not published.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logrus.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		logrus.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
