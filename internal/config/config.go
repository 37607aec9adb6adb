package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries everything the server reads from the environment.
type Config struct {
	DBDSN             string   `envconfig:"DB_DSN" required:"true"`
	Port              string   `envconfig:"PORT" default:"8080"`
	BaseURL           string   `envconfig:"BASE_URL" default:"http://localhost:8080"`
	JWTSecret         string   `envconfig:"JWT_SECRET" required:"true"`
	GeminiAPIKey      string   `envconfig:"GEMINI_API_KEY"`
	AllowRegistration bool     `envconfig:"ALLOW_REGISTRATION" default:"false"`
	LogMode           string   `envconfig:"LOG_MODE" default:"dev"`
	CORSOrigins       []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

// Load reads .env if present, then the process environment. A missing .env
// is fine in deployed environments where variables come from the platform.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
