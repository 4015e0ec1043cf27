// Package config centralizes how the questionnaire service reads environment
// variables and exposes them as strongly typed Go values.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration shared by the API server, the
// delivery worker and the CLI.
type Config struct {
	Address        string
	MaxUploadBytes int64
	SigningSecret  []byte
	SignedURLTTL   time.Duration
	CatalogFile    string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Workers       int

	R2Endpoint      string
	R2AccessKey     string
	R2SecretKey     string
	R2Bucket        string
	R2PublicBaseURL string
	R2UseSSL        bool

	NotifyMode      string
	NotifyPrimary   string
	NotifySecondary string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SMTPFromEmail string
}

// Notification delivery modes.
const (
	NotifyDirect = "direct"
	NotifyQueue  = "queue"
)

const (
	defaultAddress        = ":8080"
	defaultMaxUploadBytes = 220 << 20 // 200 MiB of images plus multipart overhead
	defaultSignedTTL      = 30 * time.Minute
	defaultRedisAddr      = "localhost:6379"
	defaultWorkerCount    = 2
	defaultBucket         = "creative-direction-decks"
	defaultSMTPPort       = 587
	defaultFromName       = "Creative Direction Team"
)

// Load reads configuration from the environment falling back to defaults. A
// .env file in the working directory is honoured when present; variables that
// are already set win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{
		Address:        readEnv("BRIEF_ADDRESS", defaultAddress),
		MaxUploadBytes: parseInt64("BRIEF_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		SigningSecret:  parseSecret("BRIEF_SIGNING_SECRET"),
		SignedURLTTL:   parseDuration("BRIEF_SIGNED_TTL", defaultSignedTTL),
		CatalogFile:    readEnv("BRIEF_CATALOG_FILE", ""),

		DatabaseURL:   readEnv("DATABASE_URL", ""),
		RedisAddr:     readEnv("REDIS_ADDR", defaultRedisAddr),
		RedisPassword: readEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt("REDIS_DB", 0),
		Workers:       parseInt("BRIEF_WORKERS", defaultWorkerCount),

		R2Endpoint:      readEnv("R2_ENDPOINT", ""),
		R2AccessKey:     readEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretKey:     readEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:        readEnv("R2_BUCKET", defaultBucket),
		R2PublicBaseURL: strings.TrimRight(readEnv("R2_PUBLIC_BASE_URL", ""), "/"),
		R2UseSSL:        parseBool("R2_USE_SSL", true),

		NotifyMode:      strings.ToLower(readEnv("BRIEF_NOTIFY_MODE", NotifyDirect)),
		NotifyPrimary:   strings.ToLower(readEnv("BRIEF_NOTIFY_PRIMARY", "sendgrid")),
		NotifySecondary: strings.ToLower(readEnv("BRIEF_NOTIFY_SECONDARY", "smtp")),

		SendGridAPIKey:    readEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: readEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  readEnv("SENDGRID_FROM_NAME", defaultFromName),

		SMTPHost:      readEnv("SMTP_HOST", ""),
		SMTPPort:      parseInt("SMTP_PORT", defaultSMTPPort),
		SMTPUser:      readEnv("SMTP_USER", ""),
		SMTPPassword:  readEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: readEnv("SMTP_FROM_EMAIL", ""),
	}
	if cfg.SigningSecret == nil {
		// Export links only need to survive for the life of the process, so a
		// random secret is acceptable when none is configured.
		cfg.SigningSecret = randomSecret()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = defaultSignedTTL
	}
	if cfg.NotifyMode != NotifyQueue {
		cfg.NotifyMode = NotifyDirect
	}
	if cfg.SMTPFromEmail == "" {
		cfg.SMTPFromEmail = cfg.SMTPUser
	}
	return cfg, nil
}

// StorageConfigured reports whether R2 credentials are present.
func (c *Config) StorageConfigured() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != ""
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	// time.ParseDuration understands inputs like "5m" or "30s".
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseSecret(key string) []byte {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return []byte(v)
	}
	return nil
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return []byte(hex.EncodeToString([]byte("fallbacksecret")))
	}
	return buf
}
