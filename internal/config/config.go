package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultChargeReuseHours is how long an existing unpaid Coinbase charge may
// be handed back instead of creating a new one. 0 disables reuse.
const DefaultChargeReuseHours = 1

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	AppBaseURL string
	JWTSecret  string

	CoinbaseAPIKey        string
	CoinbaseWebhookSecret string
	CoinbaseTestMode      bool
	ChargeReuseHours      int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
		AppBaseURL: os.Getenv("APP_BASE_URL"),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		CoinbaseAPIKey:        os.Getenv("COINBASE_API_KEY"),
		CoinbaseWebhookSecret: os.Getenv("COINBASE_WEBHOOK_SECRET"),
		CoinbaseTestMode:      envBool("COINBASE_TEST_MODE"),
		ChargeReuseHours:      envInt("CHARGE_REUSE_HOURS", DefaultChargeReuseHours),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
