// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"your-secret-key-change-in-production",
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DataDir        string        `env:"CAL_DATA_DIR" envDefault:"./data"`
	SessionSecret  string        `env:"CAL_SESSION_SECRET"`
	ServerHost     string        `env:"CAL_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int           `env:"CAL_SERVER_PORT" envDefault:"3000"`
	Env            string        `env:"CAL_ENV" envDefault:"development"`
	LogLevel       string        `env:"CAL_LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"CAL_REQUEST_TIMEOUT" envDefault:"30s"`

	// Session configuration
	SessionLifetime time.Duration `env:"CAL_SESSION_LIFETIME" envDefault:"24h"`
	SessionDBPath   string        `env:"CAL_SESSION_DB"` // Optional SQLite file for persistent sessions

	// Chat configuration
	RedisURL         string `env:"CAL_REDIS_URL"`                           // Optional Redis URL for chat transcripts
	RedisPrefix      string `env:"CAL_REDIS_PREFIX" envDefault:"calendar:"` // Redis key prefix
	ChatHistoryLimit int    `env:"CAL_CHAT_HISTORY_LIMIT" envDefault:"100"`

	// CORS
	AllowedOrigins []string `env:"CAL_ALLOWED_ORIGINS" envSeparator:","`

	// Backups
	BackupSchedule string `env:"CAL_BACKUP_SCHEDULE"` // Cron expression, empty disables backups
	BackupDir      string `env:"CAL_BACKUP_DIR" envDefault:"./data/backups"`
	BackupRetain   int    `env:"CAL_BACKUP_RETAIN" envDefault:"7"`

	MetricsEnabled bool `env:"CAL_METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisChat returns true if chat transcripts should be kept in Redis.
func (c Config) UseRedisChat() bool {
	return c.RedisURL != ""
}

// UseSQLiteSessions returns true if sessions should survive restarts.
func (c Config) UseSQLiteSessions() bool {
	return c.SessionDBPath != ""
}

// BackupsEnabled returns true if a backup schedule is configured.
func (c Config) BackupsEnabled() bool {
	return c.BackupSchedule != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ChatHistoryLimit <= 0 {
		return nil, fmt.Errorf("CAL_CHAT_HISTORY_LIMIT must be positive, got %d", cfg.ChatHistoryLimit)
	}
	if cfg.SessionLifetime <= 0 {
		return nil, fmt.Errorf("CAL_SESSION_LIFETIME must be positive, got %s", cfg.SessionLifetime)
	}

	// Development runs without a configured secret get a throwaway one.
	if cfg.SessionSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("CAL_SESSION_SECRET is required outside development; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
		cfg.SessionSecret = secret
		slog.Warn("CAL_SESSION_SECRET not set; using a random secret for this process")
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CAL_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("CAL_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CAL_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// ParseLogLevel maps a config value to a slog level. Unknown values map to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
