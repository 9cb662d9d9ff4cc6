package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int

	DatabaseURL string

	JWTSecret []byte

	LogLevel string

	KafkaBrokers []string
}

// Load reads .env when present, then the environment. The JWT secret and
// database URL have no defaults: a process without them must not start.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment variables")
	}

	cfg := Config{
		ServerPort:   EnvIntDefault("SERVER_PORT", 8080),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		LogLevel:     EnvDefault("LOG_LEVEL", "info"),
		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
	}

	MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return cfg
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
