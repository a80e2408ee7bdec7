// Package config builds the process-wide configuration once at startup.
// Components receive the pieces they need by injection; nothing reads the
// environment after FromEnv returns.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration for the offboarding service.
type Config struct {
	Addr          string
	LogLevel      slog.Level
	JWTSigningKey string

	DatabaseURL string
	ExportDir   string

	// CleanupSchedule is a cron expression; the default purges daily at 03:00.
	CleanupSchedule string

	// StepTimeout bounds each external deactivation call.
	StepTimeout time.Duration

	Redis      RedisConfig
	Kafka      KafkaConfig
	Directory  DirectoryConfig
	HRPlatform HRPlatformConfig
	Turnstiles []TurnstileSite
	SMTP       SMTPConfig
}

// RedisConfig configures the optional redis client used to serialize the
// retention purge across replicas. Empty URL disables it.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event mirror. Empty broker list
// disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// DirectoryConfig configures the LDAP directory collaborator.
type DirectoryConfig struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
	DisabledOU   string
	Timeout      time.Duration
}

// HRPlatformConfig configures the HR/communications platform collaborator.
type HRPlatformConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// TurnstileSite is one physical access-control endpoint.
type TurnstileSite struct {
	Name    string
	URL     string
	Session string
}

// SMTPConfig configures the notification mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
	Receiver string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:            envOr("OFFBOARD_ADDR", ":8080"),
		LogLevel:        parseLogLevel(os.Getenv("OFFBOARD_LOG_LEVEL")),
		JWTSigningKey:   envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:     envOr("DATABASE_URL", "postgres://localhost:5432/offboard?sslmode=disable"),
		ExportDir:       envOr("EXPORT_DIR", "/var/lib/offboard/exports"),
		CleanupSchedule: envOr("CLEANUP_SCHEDULE", "0 3 * * *"),
		StepTimeout:     envDurationOr("STEP_TIMEOUT", 10*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "offboard.audit"),
		},
		Directory: DirectoryConfig{
			URL:          os.Getenv("AD_URL"),
			BindDN:       os.Getenv("AD_BIND_DN"),
			BindPassword: os.Getenv("AD_BIND_PASSWORD"),
			BaseDN:       os.Getenv("AD_BASE_DN"),
			DisabledOU:   os.Getenv("AD_DISABLED_OU"),
			Timeout:      envDurationOr("AD_TIMEOUT", 10*time.Second),
		},
		HRPlatform: HRPlatformConfig{
			BaseURL: os.Getenv("INTOUCH_URL"),
			Token:   os.Getenv("INTOUCH_TOKEN"),
			Timeout: envDurationOr("INTOUCH_TIMEOUT", 10*time.Second),
		},
		Turnstiles: parseTurnstiles(os.Getenv("TURNSTILE_SITES")),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envIntOr("SMTP_PORT", 587),
			Sender:   os.Getenv("SMTP_SENDER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Receiver: os.Getenv("SMTP_RECEIVER"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTurnstiles reads "name|url|session;name|url|session".
func parseTurnstiles(s string) []TurnstileSite {
	var sites []TurnstileSite
	for _, entry := range splitNonEmpty(s, ";") {
		fields := strings.SplitN(entry, "|", 3)
		if len(fields) != 3 {
			continue
		}
		sites = append(sites, TurnstileSite{
			Name:    strings.TrimSpace(fields[0]),
			URL:     strings.TrimSpace(fields[1]),
			Session: strings.TrimSpace(fields[2]),
		})
	}
	return sites
}
