package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the reference poll server's configuration.
type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
}

// ClientConfig is the pollsync CLI's configuration.
type ClientConfig struct {
	APIURL    string
	StoreKind string
	StoreDSN  string
	Timeout   time.Duration
	Verbose   bool
}

const (
	DefaultPort    = 3318
	DefaultAPIURL  = "http://localhost:3318/api"
	DefaultTimeout = 15 * time.Second
)

// ParseServerFlags validates flags and sets port number
func ParseServerFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("pollserver", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (want sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:pollserver.db"
	}

	return cfg, nil
}

// ParseClientFlags parses the global flags that precede a CLI subcommand and
// returns the remaining arguments.
func ParseClientFlags(args []string) (ClientConfig, []string, error) {
	var cfg ClientConfig
	var timeout string

	fs := flag.NewFlagSet("pollsync", flag.ContinueOnError)

	fs.StringVar(&cfg.APIURL, "api", "", "Poll API base URL")
	fs.StringVar(&cfg.StoreKind, "store", "", "Local state backend (file, sqlite, postgres or memory)")
	fs.StringVar(&cfg.StoreDSN, "store-dsn", "", "Local state path or connection string")
	fs.StringVar(&timeout, "timeout", "", "Request timeout (e.g. 10s)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return ClientConfig{}, nil, err
	}

	if cfg.APIURL == "" {
		cfg.APIURL = os.Getenv("POLLSYNC_API_URL")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if cfg.StoreKind == "" {
		cfg.StoreKind = os.Getenv("POLLSYNC_STORE")
	}
	if cfg.StoreKind == "" {
		cfg.StoreKind = "file"
	}

	if cfg.StoreDSN == "" {
		cfg.StoreDSN = os.Getenv("POLLSYNC_STORE_DSN")
	}
	if cfg.StoreDSN == "" {
		switch cfg.StoreKind {
		case "file":
			cfg.StoreDSN = defaultStatePath("state.json")
		case "sqlite":
			cfg.StoreDSN = "file:" + defaultStatePath("state.db")
		case "postgres":
			return ClientConfig{}, nil, errors.New("store DSN required for postgres (use -store-dsn or POLLSYNC_STORE_DSN env)")
		}
	}

	if timeout == "" {
		timeout = os.Getenv("POLLSYNC_TIMEOUT")
	}
	cfg.Timeout = DefaultTimeout
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return ClientConfig{}, nil, fmt.Errorf("invalid timeout %q", timeout)
		}
		cfg.Timeout = d
	}

	return cfg, fs.Args(), nil
}

// defaultStatePath places local state under the user's config directory,
// falling back to the working directory.
func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "pollsync", name)
}
