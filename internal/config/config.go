package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// File storage: "local" or "s3"
	StorageDriver string
	UploadRoot    string // local driver: directory served as the public disk
	PublicBaseURL string // local driver: URL prefix for stored files
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string

	// Chat assistant
	ChatAPIKey string
	ChatModel  string

	// Outbound mail (empty host = log-only mailer)
	SMTPHost string
	SMTPPort string
	SMTPFrom string
	SMTPPass string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=lankatrails port=5432 sslmode=disable"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		UploadRoot:    getEnv("UPLOAD_ROOT", "./public/storage"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080/storage"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		ChatAPIKey:    getEnv("CHAT_API_KEY", ""),
		ChatModel:     getEnv("CHAT_MODEL", "gpt-4o-mini"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPFrom:      getEnv("SMTP_FROM", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.StorageDriver == "s3" && cfg.S3Bucket == "" {
		log.Fatal("[FATAL] STORAGE_DRIVER=s3 requires S3_BUCKET")
	}
	if cfg.ChatAPIKey == "" {
		log.Println("[WARN] CHAT_API_KEY not set, assistant replies will fall back to an apology")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
