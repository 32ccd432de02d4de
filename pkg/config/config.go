package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Port                string
	Environment         string // "development", "staging", "production"
	LogLevel            string
	JWTSecret           string
	SessionLifespan     time.Duration
	ResetTokenLifespan  time.Duration
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBSSLMode           string
	ExternalBaseURL     string // absolute base for links embedded in emails
	AWSRegion           string
	AWSSESEmailSender   string
	FileStorageProvider string // "local", "s3", "gcs" or "minio"
	StaticDir           string
	AWSS3Bucket         string
	GCSProjectID        string
	GCSBucketName       string
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool
}

var Cfg AppConfig

// LoadConfig populates Cfg from environment variables.
// A .env file is loaded first when present, for local development.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables:", err)
	}

	Cfg.Port = getEnv("PORT", "8080")
	Cfg.Environment = getEnv("APP_ENV", "development")
	Cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	Cfg.JWTSecret = getEnv("JWT_SECRET_KEY", "")

	sessionHours, err := strconv.Atoi(getEnv("SESSION_LIFESPAN_HOURS", "24"))
	if err != nil || sessionHours <= 0 {
		log.Printf("Invalid SESSION_LIFESPAN_HOURS, using default 24h (err: %v)", err)
		sessionHours = 24
	}
	Cfg.SessionLifespan = time.Duration(sessionHours) * time.Hour

	resetMinutes, err := strconv.Atoi(getEnv("RESET_TOKEN_LIFESPAN_MINUTES", "30"))
	if err != nil || resetMinutes <= 0 {
		log.Printf("Invalid RESET_TOKEN_LIFESPAN_MINUTES, using default 30m (err: %v)", err)
		resetMinutes = 30
	}
	Cfg.ResetTokenLifespan = time.Duration(resetMinutes) * time.Minute

	Cfg.DBHost = getEnv("DB_HOST", "localhost")
	Cfg.DBPort = getEnv("DB_PORT", "5432")
	Cfg.DBUser = getEnv("DB_USER", "tastebook")
	Cfg.DBPassword = getEnv("DB_PASSWORD", "tastebook")
	Cfg.DBName = getEnv("DB_NAME", "tastebook_db")
	Cfg.DBSSLMode = getEnv("DB_SSLMODE", "disable")

	Cfg.ExternalBaseURL = getEnv("EXTERNAL_BASE_URL", "http://localhost:8080")

	Cfg.AWSRegion = getEnv("AWS_REGION", "")
	Cfg.AWSSESEmailSender = getEnv("AWS_SES_EMAIL_SENDER", "")

	Cfg.FileStorageProvider = getEnv("FILE_STORAGE_PROVIDER", "local")
	Cfg.StaticDir = getEnv("STATIC_DIR", "static")
	Cfg.AWSS3Bucket = getEnv("AWS_S3_BUCKET", "")
	Cfg.GCSProjectID = getEnv("GCS_PROJECT_ID", "")
	Cfg.GCSBucketName = getEnv("GCS_BUCKET_NAME", "")
	Cfg.MinioEndpoint = getEnv("MINIO_ENDPOINT", "")
	Cfg.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", "")
	Cfg.MinioSecretKey = getEnv("MINIO_SECRET_KEY", "")
	Cfg.MinioBucket = getEnv("MINIO_BUCKET", "")
	Cfg.MinioUseSSL = getEnvAsBool("MINIO_USE_SSL", false)

	log.Printf("Configuration loaded for environment: %s", Cfg.Environment)
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsBool returns the boolean value of an environment variable or a default.
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid boolean for '%s': '%s', using default: %t", key, valStr, defaultValue)
		return defaultValue
	}
	return valBool
}

func init() {
	LoadConfig()
}
