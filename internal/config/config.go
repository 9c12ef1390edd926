package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the web client.  BackendURL is the
// fixed base address of the booking REST backend; every API call is resolved
// against it.  Session settings control the signed cookie that carries the
// session id to the browser.
type Config struct {
	Env            string        // application environment (dev/test/prod)
	Port           string        // HTTP port to listen on
	BackendURL     string        // base address of the booking backend
	BackendTimeout time.Duration // timeout applied to outbound API calls; 0 disables it
	SessionSecret  string        // key used to sign the session cookie
	SessionName    string        // cookie name
	SessionTTL     time.Duration // lifetime of a stored session
	CookieSecure   bool          // mark the cookie Secure (HTTPS only)
	PaymentMethod  string        // payment method sent with every booking
	LogLevel       string        // debug, info, warn, error
	PublicURL      string        // address browsers reach this server at
	SeatPoolTTL    time.Duration // idle lifetime of a cached seat page
}

// DBConfig is only needed by the attempt log consumer, which persists
// reserve-attempt events into MySQL.
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// LoadDotEnv reads a .env file when present.  A missing file is not an error;
// real environment variables always win over the file.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("config: could not load %s: %v", f, err)
		}
	}
}

// Load reads configuration values from environment variables and returns a
// Config.  SESSION_SECRET is required; everything else has a default that
// matches a local development setup.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		BackendURL:     strings.TrimRight(envStr("BACKEND_BASE_URL", "http://localhost:8000"), "/"),
		BackendTimeout: envDur("BACKEND_TIMEOUT", 0),
		SessionSecret:  must("SESSION_SECRET"),
		SessionName:    envStr("SESSION_NAME", "matchday_session"),
		SessionTTL:     envDur("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:   envBool("SESSION_COOKIE_SECURE", false),
		PaymentMethod:  envStr("PAYMENT_METHOD", "card"),
		LogLevel:       strings.ToLower(envStr("LOG_LEVEL", "info")),
		PublicURL:      strings.TrimRight(envStr("PUBLIC_URL", "http://localhost:"+envStr("APP_PORT", "8080")), "/"),
		SeatPoolTTL:    envDur("SEAT_POOL_TTL", 10*time.Minute),
	}
}

// LoadDBConfig reads the MySQL settings.  Missing required values cause the
// program to exit with a fatal log message.
func LoadDBConfig() DBConfig {
	return DBConfig{
		User: must("DB_USER"),
		Pass: os.Getenv("DB_PASS"), // empty allowed
		Host: must("DB_HOST"),
		Port: envStr("DB_PORT", "3306"),
		Name: must("DB_NAME"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
