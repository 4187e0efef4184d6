// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/atinyakov/catalog/internal/docstore"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address" env:"SERVER_ADDRESS"`

	// DatabaseDriver selects the backing medium: "postgres" or "sqlite".
	DatabaseDriver string `json:"database_driver" env:"DATABASE_DRIVER"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// LogLevel is the minimum zap level that is written.
	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// HealthInterval is the period of the background store probe.
	HealthInterval time.Duration `json:"health_interval" env:"HEALTH_INTERVAL"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// UnmarshalJSON accepts health_interval as a duration string ("30s").
func (o *Options) UnmarshalJSON(data []byte) error {
	type plain Options
	aux := struct {
		*plain
		HealthInterval string `json:"health_interval"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.HealthInterval != "" {
		d, err := time.ParseDuration(aux.HealthInterval)
		if err != nil {
			return fmt.Errorf("health_interval: %w", err)
		}
		o.HealthInterval = d
	}
	return nil
}

// Parse parses the process flags and environment and returns the resulting
// Options. It exits the process on invalid configuration.
func Parse() *Options {
	options, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return options
}

// ParseArgs builds Options from args. Values are layered: flag defaults and
// flags first, then the JSON config file, then environment variables.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	flags := flag.NewFlagSet("catalog", flag.ContinueOnError)
	flags.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flags.StringVar(&options.DatabaseDriver, "driver", docstore.DriverSQLite, "database driver (postgres or sqlite)")
	flags.StringVar(&options.DatabaseDSN, "d", "file:catalog.db", "db address")
	flags.StringVar(&options.LogLevel, "l", "info", "log level")
	flags.DurationVar(&options.HealthInterval, "health-interval", 30*time.Second, "store health probe interval")
	flags.StringVar(&options.Config, "config", "config.json", "path to config file")
	flags.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// CONFIG picks the file before anything else is read from the environment.
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options); err != nil {
		return nil, err
	}

	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// loadFile overlays the JSON file at options.Config. A missing file is not
// an error.
func loadFile(options *Options) error {
	if options.Config == "" {
		return nil
	}
	data, err := os.ReadFile(options.Config)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, options); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func (o *Options) validate() error {
	switch o.DatabaseDriver {
	case docstore.DriverPostgres, docstore.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", o.DatabaseDriver)
	}
	if o.DatabaseDSN == "" {
		return errors.New("database dsn is required")
	}
	if o.HealthInterval <= 0 {
		return errors.New("health interval must be positive")
	}
	return nil
}
