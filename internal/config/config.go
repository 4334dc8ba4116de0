package config

import (
	"errors"
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var ErrMissingJWTSecret = errors.New("no JWT_SECRET provided")
var ErrMissingDatabaseDSN = errors.New("missing DB_CONNECTION_STRING in environment variables")

// Config holds the full application configuration, populated from
// environment variables (optionally seeded from a .env file).
type Config struct {
	HTTPPort       string `env:"HTTP_PORT" env-default:"8080"`
	DatabaseDSN    string `env:"DB_CONNECTION_STRING"`
	JWTSecret      string `env:"JWT_SECRET"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"file://migrations"`
	LogLevel       string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the .env file if one exists and then populates the
// configuration from the environment. Both the database DSN and the
// JWT secret are required.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == "" {
		return nil, ErrMissingDatabaseDSN
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return &cfg, nil
}
