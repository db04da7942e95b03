package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// It is loaded once at startup and passed to constructors; business logic never
// reads the environment directly.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	// FeeBps is the platform fee in basis points applied to every donation.
	FeeBps int

	// WebhookSecrets maps a payment provider name to its shared webhook
	// signing secret, parsed from WEBHOOK_SECRETS_JSON.
	WebhookSecrets map[string]string

	// BootstrapAdminEmails are promoted from user to admin on first
	// authorization, comma separated in BOOTSTRAP_ADMIN_EMAILS.
	BootstrapAdminEmails []string

	// ChainConfigJSON is the raw chain registry configuration. Parsing and
	// validation happen in the chain package at startup.
	ChainConfigJSON string

	ConfirmTimeout    time.Duration
	ReconcileInterval time.Duration
	ReconcileGiveUp   time.Duration
	ReceiptQueueSize  int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		FeeBps:               getEnvInt("FEE_BPS", 100),
		BootstrapAdminEmails: splitList(os.Getenv("BOOTSTRAP_ADMIN_EMAILS")),
		ChainConfigJSON:      os.Getenv("CHAIN_CONFIG_JSON"),
		ConfirmTimeout:       time.Second * time.Duration(getEnvInt("CHAIN_CONFIRM_TIMEOUT_SECONDS", 120)),
		ReconcileInterval:    time.Second * time.Duration(getEnvInt("RECONCILE_INTERVAL_SECONDS", 60)),
		ReconcileGiveUp:      time.Hour * time.Duration(getEnvInt("RECONCILE_GIVEUP_HOURS", 24)),
		ReceiptQueueSize:     getEnvInt("RECEIPT_QUEUE_SIZE", 256),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.FeeBps < 0 || cfg.FeeBps > 10000 {
		return nil, fmt.Errorf("FEE_BPS must be between 0 and 10000, got %d", cfg.FeeBps)
	}

	secrets, err := parseWebhookSecrets(os.Getenv("WEBHOOK_SECRETS_JSON"))
	if err != nil {
		return nil, err
	}
	cfg.WebhookSecrets = secrets

	return cfg, nil
}

func parseWebhookSecrets(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRETS_JSON is required")
	}
	secrets := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &secrets); err != nil {
		return nil, fmt.Errorf("parse WEBHOOK_SECRETS_JSON: %w", err)
	}
	for provider, secret := range secrets {
		if strings.TrimSpace(secret) == "" {
			return nil, fmt.Errorf("WEBHOOK_SECRETS_JSON: empty secret for provider %q", provider)
		}
	}
	return secrets, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
