package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string
	Environment      string
	FirebaseProject  string
	StorageBackend   string // "memory" or "firestore"
	MaxMessageLength int
	TypingTTL        time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		FirebaseProject:  getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBackend:   getEnv("STORAGE_BACKEND", "memory"),
		MaxMessageLength: getEnvAsInt("MAX_MESSAGE_LENGTH", 4000),
		TypingTTL:        time.Duration(getEnvAsInt("TYPING_TTL_SECONDS", 6)) * time.Second,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
