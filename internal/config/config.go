package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Database settings are
// required; the reservation knobs fall back to the documented
// defaults so a bare environment still runs.
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    ReservationTTL time.Duration // how long an unconfirmed reservation holds inventory
    SweepInterval  time.Duration // how often the cleanup worker runs
    Retention      time.Duration // how long inactive reservations are kept before purge
    SeedData       bool          // insert the sample event on startup (dev only)
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must();
// missing values cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        ReservationTTL: duration("RESERVATION_TTL", 5*time.Minute),
        SweepInterval:  duration("SWEEP_INTERVAL", time.Minute),
        Retention:      duration("RESERVATION_RETENTION", 24*time.Hour),
        SeedData:       boolean("SEED_DATA", false),
    }
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func duration(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    d, err := time.ParseDuration(v)
    if err != nil || d <= 0 {
        log.Fatalf("invalid duration for %s: %q", key, v)
    }
    return d
}

func boolean(key string, def bool) bool {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    b, err := strconv.ParseBool(v)
    if err != nil {
        log.Fatalf("invalid bool for %s: %q", key, v)
    }
    return b
}
