package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string

	// DBDSN empty means demo mode: all state lives in process memory.
	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	SessionCookieName    string
	SessionLifetimeHours int
	SessionSweepMinutes  int
	SessionDBTimeoutMS   int
	SessionRedisAddr     string
	CookieSecure         bool

	TrustProxy         bool
	CORSAllowedOrigins []string

	PasswordMinLength int
	PasswordMaxLength int

	ResetTokenMinutes    int
	PasswordResetSender  string
	PasswordResetFrom    string
	PasswordResetBaseURL string
	SMTPHost             string
	SMTPPort             int

	HTTPReadTimeoutSec       int
	HTTPReadHeaderTimeoutSec int
	HTTPWriteTimeoutSec      int
	HTTPIdleTimeoutSec       int

	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	StaticDir string
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:               env("LISTEN_ADDR", ":8080"),
		DBDriver:                 strings.ToLower(env("DB_DRIVER", "sqlite")),
		DBDSN:                    env("DB_DSN", ""),
		DBMaxOpenConns:           envInt("DB_MAX_OPEN_CONNS", 4),
		DBMaxIdleConns:           envInt("DB_MAX_IDLE_CONNS", 2),
		DBConnMaxLifetime:        time.Duration(envInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		SessionCookieName:        env("SESSION_COOKIE_NAME", "session"),
		SessionLifetimeHours:     envInt("SESSION_LIFETIME_HOURS", 7*24),
		SessionSweepMinutes:      envInt("SESSION_SWEEP_MINUTES", 60),
		SessionDBTimeoutMS:       envInt("SESSION_DB_TIMEOUT_MS", 2000),
		SessionRedisAddr:         env("SESSION_REDIS_ADDR", ""),
		CookieSecure:             envBool("COOKIE_SECURE", false),
		TrustProxy:               envBool("TRUST_PROXY", false),
		CORSAllowedOrigins:       envCSV("CORS_ALLOWED_ORIGINS"),
		PasswordMinLength:        envInt("PASSWORD_MIN_LENGTH", 8),
		PasswordMaxLength:        envInt("PASSWORD_MAX_LENGTH", 128),
		ResetTokenMinutes:        envInt("RESET_TOKEN_MINUTES", 60),
		PasswordResetSender:      strings.ToLower(env("PASSWORD_RESET_SENDER", "log")),
		PasswordResetFrom:        env("PASSWORD_RESET_FROM", "hr@example.com"),
		PasswordResetBaseURL:     env("PASSWORD_RESET_BASE_URL", ""),
		SMTPHost:                 env("SMTP_HOST", "127.0.0.1"),
		SMTPPort:                 envInt("SMTP_PORT", 587),
		HTTPReadTimeoutSec:       envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPReadHeaderTimeoutSec: envInt("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		HTTPWriteTimeoutSec:      envInt("HTTP_WRITE_TIMEOUT_SEC", 30),
		HTTPIdleTimeoutSec:       envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
		BootstrapAdminEmail:      env("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword:   env("BOOTSTRAP_ADMIN_PASSWORD", ""),
		StaticDir:                env("STATIC_DIR", "web"),
	}

	switch cfg.DBDriver {
	case "sqlite", "mysql", "pgx":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be one of: sqlite, mysql, pgx")
	}
	if cfg.SessionLifetimeHours <= 0 || cfg.SessionSweepMinutes <= 0 {
		return Config{}, fmt.Errorf("session lifetime and sweep interval must be positive")
	}
	if cfg.SessionDBTimeoutMS <= 0 {
		return Config{}, fmt.Errorf("SESSION_DB_TIMEOUT_MS must be positive")
	}
	if cfg.DBMaxOpenConns <= 0 || cfg.DBMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("invalid DB pool config")
	}
	if cfg.PasswordMinLength < 8 {
		return Config{}, fmt.Errorf("password min length must be >= 8")
	}
	if cfg.PasswordMaxLength < cfg.PasswordMinLength {
		return Config{}, fmt.Errorf("password max length must be >= min length")
	}
	if cfg.ResetTokenMinutes <= 0 {
		return Config{}, fmt.Errorf("RESET_TOKEN_MINUTES must be positive")
	}
	switch cfg.PasswordResetSender {
	case "log", "smtp":
	default:
		return Config{}, fmt.Errorf("PASSWORD_RESET_SENDER must be one of: log, smtp")
	}
	if !cfg.CookieSecure && !isLocalListen(cfg.ListenAddr) {
		return Config{}, fmt.Errorf("COOKIE_SECURE=false is allowed only for local listen addresses")
	}
	return cfg, nil
}

func (c Config) DemoMode() bool {
	return strings.TrimSpace(c.DBDSN) == ""
}

func (c Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeHours) * time.Hour
}

func (c Config) SessionSweepInterval() time.Duration {
	return time.Duration(c.SessionSweepMinutes) * time.Minute
}

func (c Config) SessionDBTimeout() time.Duration {
	return time.Duration(c.SessionDBTimeoutMS) * time.Millisecond
}

func (c Config) ResetTokenLifetime() time.Duration {
	return time.Duration(c.ResetTokenMinutes) * time.Minute
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envCSV(k string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isLocalListen(addr string) bool {
	a := strings.ToLower(strings.TrimSpace(addr))
	return strings.Contains(a, "127.0.0.1") || strings.Contains(a, "localhost") || strings.Contains(a, "[::1]") || strings.HasPrefix(a, ":")
}
