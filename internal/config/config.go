package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionTTL is the lifetime of every issued session token.
	SessionTTL = 7 * 24 * time.Hour
	// OTPTTL is how long an emailed code stays valid.
	OTPTTL = 10 * time.Minute
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var adminPINPattern = regexp.MustCompile(`^\d{4}$`)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	CORSOrigins []string

	StorageDriver string
	DatabaseURL   string

	JWTSecret string
	JWTIssuer string
	AdminPIN  string

	RedisURL           string
	OTPRequestLimit    int
	OTPRequestWindow   time.Duration
	LoginFailureLimit  int
	LoginFailureWindow time.Duration

	MailFrom    string
	MailLogBody bool
	BcryptCost  int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		StorageDriver: strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), StoragePostgres)),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "marketplace-auth"),
		AdminPIN:      strings.TrimSpace(os.Getenv("ADMIN_PIN")),
		RedisURL:      strings.TrimSpace(os.Getenv("REDIS_URL")),
		MailFrom:      fallback(os.Getenv("MAIL_FROM"), "no-reply@marketplace.local"),
	}

	var err error
	if cfg.OTPRequestLimit, err = positiveInt("OTP_REQUEST_LIMIT", 5); err != nil {
		return Config{}, err
	}
	if cfg.OTPRequestWindow, err = minutes("OTP_REQUEST_WINDOW_MINUTES", 15); err != nil {
		return Config{}, err
	}
	if cfg.LoginFailureLimit, err = positiveInt("LOGIN_FAILURE_LIMIT", 10); err != nil {
		return Config{}, err
	}
	if cfg.LoginFailureWindow, err = minutes("LOGIN_FAILURE_WINDOW_MINUTES", 15); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = positiveInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if raw := strings.TrimSpace(os.Getenv("MAIL_LOG_BODY")); raw != "" {
		if cfg.MailLogBody, err = strconv.ParseBool(raw); err != nil {
			return Config{}, fmt.Errorf("invalid MAIL_LOG_BODY value: %q", raw)
		}
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case StorageMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.AdminPIN != "" && !adminPINPattern.MatchString(cfg.AdminPIN) {
		return Config{}, errors.New("ADMIN_PIN must be exactly 4 digits")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value: %q", key, raw)
	}
	return n, nil
}

func minutes(key string, def int) (time.Duration, error) {
	n, err := positiveInt(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Minute, nil
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
