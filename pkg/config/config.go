package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	StorageBucket           string
	StoreDriver             string
	MongoURI                string
	PostgresConnStr         string
	ChatDriver              string
	StreamAPIKey            string
	StreamAPISecret         string
	ChatTokenTTL            time.Duration
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		StoreDriver:             getEnv("STORE_DRIVER", "firestore"),
		MongoURI:                getEnv("MONGO_URI", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		ChatDriver:              getEnv("CHAT_DRIVER", "stream"),
		StreamAPIKey:            getEnv("STREAM_API_KEY", ""),
		StreamAPISecret:         getEnv("STREAM_API_SECRET", ""),
		ChatTokenTTL:            getEnvDuration("CHAT_TOKEN_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if hours, err := strconv.Atoi(value); err == nil {
		return time.Duration(hours) * time.Hour
	}
	return defaultValue
}
