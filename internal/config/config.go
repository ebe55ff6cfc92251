package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// DevSessionSecret signs sessions when SESSION_SECRET is unset. Production
// refuses to start with it.
const DevSessionSecret = "not-so-secret-now-is-it?"

var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set in production")

type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `env:"R2_BUCKET_NAME"`
	Region          string `env:"R2_REGION" env-default:"auto"`
}

// Enabled reports whether enough is set to talk to the bucket.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.BucketName != "" && c.AccessKeyID != ""
}

type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER" env-default:"postgres"`
	DB_URL        string `env:"DB_URL"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" env-default:"folio"`
}

type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL" env-default:"http://localhost:8080/user/auth/google"`
}

type Config struct {
	Port          string        `env:"PORT" env-default:"8080"`
	Environment   string        `env:"ENV" env-default:"development"`
	SessionSecret string        `env:"SESSION_SECRET" env-default:"not-so-secret-now-is-it?"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" env-default:"6000000s"`
	CorsOrigins   []string      `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	Store         StoreConfig
	Google        GoogleConfig
	R2            R2Config
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads an optional .env file (ENV_FILE overrides the path) and then
// decodes the process environment into a Config.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// a missing file is fine, the environment may already be populated
	_ = godotenv.Load(envFile)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.IsProduction() && (cfg.SessionSecret == "" || cfg.SessionSecret == DevSessionSecret) {
		return Config{}, fmt.Errorf("config.Load: %w", ErrInsecureSessionSecret)
	}
	return cfg, nil
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic("Failed to read config: " + err.Error())
	}
	return cfg
}

func CorsConfig(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
