package formdesk

import (
	"fmt"
	"os"
	"strconv"

	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/joho/godotenv"
)

// Config containing all the configuration values for a service.
type Config struct {
	Port        uint16
	DBDriver    string
	DBPath      string
	Debug       bool
	LogFile     string
	QueueLength int
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Port:        3000,
		DBDriver:    db.SQLite,
		DBPath:      "./formdesk.db",
		QueueLength: 100,
	}
}

// LoadConfig reads the configuration from the environment, after loading
// the given env files (".env" by default, which may be missing). Variables
// already set in the environment win over the files.
func LoadConfig(envfiles ...string) (Config, error) {
	cfg := DefaultConfig()
	if len(envfiles) == 0 {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := godotenv.Load(envfiles...); err != nil {
		return cfg, fmt.Errorf("failed to read env files: %w", err)
	}

	if v := os.Getenv("FORMDESK_PORT"); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return cfg, fmt.Errorf("invalid FORMDESK_PORT %q: %w", v, err)
		}
		cfg.Port = uint16(port)
	}
	if v := os.Getenv("FORMDESK_DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := os.Getenv("FORMDESK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FORMDESK_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid FORMDESK_DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	cfg.LogFile = os.Getenv("FORMDESK_LOG_FILE")
	if v := os.Getenv("FORMDESK_QUEUE_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid FORMDESK_QUEUE_LENGTH %q", v)
		}
		cfg.QueueLength = n
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be used to start the service.
func (cfg Config) Validate() error {
	if cfg.DBDriver != db.SQLite && cfg.DBDriver != db.Postgres {
		return fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	return nil
}
