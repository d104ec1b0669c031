package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort           string
	DatabaseURL        string
	ClientURL          string        // Frontend origin allowed by CORS
	SampleDataDir      string        // Directory of recorded webhook payloads for replay
	ReplayDelay        time.Duration // Delay between replayed payloads
	ReplayStartupDelay time.Duration // Delay after boot before replay starts
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")
	dbURL := getEnv("DATABASE_URL", "") // No default, should fail if not set
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	clientURL := getEnv("CLIENT_URL", "http://localhost:5173")
	sampleDir := getEnv("SAMPLE_DATA_DIR", "./sample-data")

	cfg := &Config{
		HTTPPort:           port,
		DatabaseURL:        dbURL,
		ClientURL:          clientURL,
		SampleDataDir:      sampleDir,
		ReplayDelay:        time.Duration(getEnvInt("REPLAY_DELAY_MS", 100)) * time.Millisecond,
		ReplayStartupDelay: time.Duration(getEnvInt("REPLAY_STARTUP_DELAY_MS", 2000)) * time.Millisecond,
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, SampleDataDir=%s, ReplayDelay=%s",
		cfg.HTTPPort, cfg.SampleDataDir, cfg.ReplayDelay)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, value, fallback, err)
		return fallback
	}
	return n
}
