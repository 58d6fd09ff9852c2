// Package config handles loading and parsing application configuration.
// It supports these sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. No file at all: defaults from the env-default tags below,
//     overridden by environment variables.
//
// A .env file in the working directory, if present, is loaded into the
// process environment before any of the above.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"students.db"`

	HTTPServer `yaml:"http_server"`
	Auth       `yaml:"auth"`
	CORS       `yaml:"cors"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on.
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:":3000"`
}

// Auth configures the shared-secret header gate.
type Auth struct {
	Header string `yaml:"header"  env:"AUTH_HEADER"  env-default:"x-api-key"`
	APIKey string `yaml:"api_key" env:"AUTH_API_KEY" env-default:"abc123"`
}

// CORS lists the browser origins allowed to call the API.
//
// AllowedOrigins apply to every route. ReadOrigins are additionally
// allowed on GET /students/{id} only.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://127.0.0.1:5500"`
	ReadOrigins    []string `yaml:"read_origins"    env:"CORS_READ_ORIGINS"    env-default:"http://127.0.0.1:9999"`
}

// Load reads the config file at path, or only the environment when path
// is empty, and returns the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config.Load: config file %s: %w", path, err)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
	}

	return &cfg, nil
}

// MustLoad resolves the config path, reads, and returns the application
// config. It exits the process if the configuration cannot be read.
func MustLoad() *Config {
	// A missing .env is normal; anything else (bad syntax) is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("cannot load .env: %s", err.Error())
	}

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}
