package config

import (
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	FileStoreDisk  = "disk"
	FileStoreMinio = "minio"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Config holds everything the server needs at start-up. Secrets are only
// ever read from the environment.
type Config struct {
	Port          string
	DBDriver      string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	FileStore     string
	ImageDir      string
	Minio         MinioConfig
	CORSOrigins   string
	CookieSecret  string
	BodyLimit     int
}

// Load reads .env (if any) and the process environment into a Config
func Load() Config {
	// .env is optional, production sets real env vars
	_ = godotenv.Load()

	cfg := Config{
		Port:          GetEnv("PORT", "8081"),
		DBDriver:      strings.ToLower(GetEnv("DB_DRIVER", DriverMongo)),
		MongoURI:      GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: GetEnv("MONGO_DB", "photoshare"),
		DatabaseURL:   GetEnv("DATABASE_URL", ""),
		FileStore:     strings.ToLower(GetEnv("FILE_STORE", FileStoreDisk)),
		ImageDir:      GetEnv("IMAGE_DIR", "public/images"),
		Minio: MinioConfig{
			Endpoint:  GetEnv("S3_ENDPOINT", ""),
			AccessKey: GetEnv("S3_ACCESS_KEY", ""),
			SecretKey: GetEnv("S3_SECRET_KEY", ""),
			Bucket:    GetEnv("S3_BUCKET", "images"),
		},
		CORSOrigins:  GetEnv("CORS_ORIGINS", "*"),
		CookieSecret: GetEnv("COOKIE_SECRET", ""),
		BodyLimit:    GetEnvInt("BODY_LIMIT_MB", 16) * 1024 * 1024,
	}

	if cfg.DBDriver == DriverPostgres && cfg.DatabaseURL == "" {
		// Fallback to individual vars
		cfg.DatabaseURL = "postgres://" + GetEnv("POSTGRES_USER", "postgres") + ":" +
			GetEnv("POSTGRES_PASSWORD", "postgres") + "@" +
			GetEnv("POSTGRES_HOST", "localhost") + ":" +
			GetEnv("POSTGRES_PORT", "5432") + "/" +
			GetEnv("POSTGRES_DB", "photoshare") + "?sslmode=disable"
	}

	if cfg.CookieSecret == "" {
		log.Println("Warning: COOKIE_SECRET not set, generating an ephemeral key")
		cfg.CookieSecret = encryptcookie.GenerateKey()
	} else if !validCookieKey(cfg.CookieSecret) {
		log.Println("Warning: COOKIE_SECRET must be a base64 AES key, generating an ephemeral key")
		cfg.CookieSecret = encryptcookie.GenerateKey()
	}

	return cfg
}

func validCookieKey(key string) bool {
	b, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return false
	}
	switch len(b) {
	case 16, 24, 32:
		return true
	}
	return false
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt is GetEnv for integers; unparsable values fall back to the default
func GetEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
