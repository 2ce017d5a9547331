// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	FlowKeySalt  string

	ExitURL        string
	FetchTimeout   time.Duration
	FetchRetries   int
	PreloadTimeout time.Duration
	ServerPreload  bool
	FlowIdleTTL    time.Duration
}

// LoadEnv reads .env style files into the process environment. Variables
// already set win. Missing files are skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("photo-swap", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.FlowKeySalt, "flow-salt", "", "Flow key salt (prefer env)")

	// Flow behaviour
	fs.StringVar(&cfg.ExitURL, "exit-url", "", "Where participants go when they cannot continue")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 10*time.Second, "Timeout for each data fetch")
	fs.IntVar(&cfg.FetchRetries, "fetch-retries", 3, "Retries for a failed submission fetch")
	fs.DurationVar(&cfg.PreloadTimeout, "preload-timeout", 30*time.Second, "Timeout for a server-side photo preload")
	fs.BoolVar(&cfg.ServerPreload, "server-preload", false, "Preload photos on the server instead of the client")
	fs.DurationVar(&cfg.FlowIdleTTL, "flow-idle-ttl", 30*time.Minute, "Drop flows untouched for this long (0 keeps them until deleted)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.FlowKeySalt == "" {
		cfg.FlowKeySalt = os.Getenv("FLOW_KEY_SALT")
	}
	if cfg.FlowKeySalt == "" {
		return Config{}, errors.New("FLOW_KEY_SALT required")
	}

	if cfg.ExitURL == "" {
		cfg.ExitURL = os.Getenv("EXIT_URL")
		if cfg.ExitURL == "" {
			cfg.ExitURL = "/"
		}
	}

	if !set["fetch-timeout"] {
		if err := durationEnv("FETCH_TIMEOUT", &cfg.FetchTimeout); err != nil {
			return Config{}, err
		}
	}
	if !set["preload-timeout"] {
		if err := durationEnv("PRELOAD_TIMEOUT", &cfg.PreloadTimeout); err != nil {
			return Config{}, err
		}
	}
	if !set["flow-idle-ttl"] {
		if err := durationEnv("FLOW_IDLE_TTL", &cfg.FlowIdleTTL); err != nil {
			return Config{}, err
		}
	}
	if !set["fetch-retries"] {
		if v := os.Getenv("FETCH_RETRIES"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid FETCH_RETRIES env variable")
			}
			cfg.FetchRetries = n
		}
	}
	if !set["server-preload"] {
		if v := os.Getenv("SERVER_PRELOAD"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid SERVER_PRELOAD env variable")
			}
			cfg.ServerPreload = b
		}
	}

	if cfg.FetchTimeout <= 0 {
		return Config{}, errors.New("fetch timeout must be positive")
	}
	if cfg.PreloadTimeout <= 0 {
		return Config{}, errors.New("preload timeout must be positive")
	}
	if cfg.FlowIdleTTL < 0 {
		return Config{}, errors.New("flow idle ttl cannot be negative")
	}
	if cfg.FetchRetries < 0 {
		return Config{}, errors.New("fetch retries cannot be negative")
	}

	return cfg, nil
}

func durationEnv(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	*dst = d
	return nil
}
