package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the HR portal service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	SessionTTL        time.Duration
	MinPasswordLength int
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is applied first when present; real
// environment variables win over file entries. Every value has a default, so
// the service starts with an empty environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:hrportal.db",
		SessionTTL:        24 * time.Hour,
		MinPasswordLength: 6,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("HRPORTAL_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "HRPORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("HRPORTAL_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("HRPORTAL_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "HRPORTAL_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if lengthValue := strings.TrimSpace(os.Getenv("HRPORTAL_MIN_PASSWORD_LENGTH")); lengthValue != "" {
		length, err := strconv.Atoi(lengthValue)
		if err != nil || length <= 0 {
			invalid = append(invalid, "HRPORTAL_MIN_PASSWORD_LENGTH")
		} else {
			cfg.MinPasswordLength = length
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
