// Package config loads the application configuration from environment
// variables. A .env file next to the binary is read first when present
// (godotenv), real environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the root configuration, grouped by concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Log      LogConfig
	Email    EmailConfig
	Push     PushConfig
	Redis    RedisConfig
	Sweep    SweepConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DatabaseConfig struct {
	Path string // SQLite file, e.g. ./data/workdesk.db
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // days
}

type AppConfig struct {
	// URL is the public address of the frontend, used in emails and push links.
	URL        string
	Timezone   string
	PolicyPath string
	// EncryptionKey is 64 hex chars; when set, push subscription keys are encrypted at rest.
	EncryptionKey  string
	ReportCacheTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json | console
}

type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
}

// Enabled reports whether outbound email is configured.
func (c EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != ""
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string
}

// Enabled reports whether web push is configured.
func (c PushConfig) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

type RedisConfig struct {
	Addr     string
	Password string
}

type SweepConfig struct {
	Interval      time.Duration
	ReminderAfter time.Duration
}

// AdminConfig bootstraps the first admin account on an empty database.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Load reads the configuration. JWT_SECRET is the only required variable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("SERVER_PORT", 9090)
	if err != nil {
		return nil, err
	}
	accessExpiry, err := getInt("JWT_ACCESS_EXPIRY_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	refreshExpiry, err := getInt("JWT_REFRESH_EXPIRY_DAYS", 7)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getInt("REPORT_CACHE_TTL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	sweepMinutes, err := getInt("SWEEP_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	reminderHours, err := getInt("REMINDER_AFTER_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if sweepMinutes <= 0 || reminderHours <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES and REMINDER_AFTER_HOURS must be positive")
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        port,
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/workdesk.db"),
		},
		JWT: JWTConfig{
			Secret:             jwtSecret,
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: refreshExpiry,
		},
		App: AppConfig{
			URL:            strings.TrimRight(getEnv("APP_URL", "http://localhost:5173"), "/"),
			Timezone:       getEnv("APP_TIMEZONE", "Asia/Kolkata"),
			PolicyPath:     getEnv("LEAVE_POLICY_PATH", ""),
			EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
			ReportCacheTTL: time.Duration(cacheTTL) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("RESEND_FROM", ""),
		},
		Push: PushConfig{
			VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
			Subject:         getEnv("VAPID_SUBJECT", "mailto:admin@localhost"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Sweep: SweepConfig{
			Interval:      time.Duration(sweepMinutes) * time.Minute,
			ReminderAfter: time.Duration(reminderHours) * time.Hour,
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
	}

	return cfg, nil
}

// Addr is host:port for http.Server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
